package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"simpleTwitter/domain"
	"simpleTwitter/errs"
)

// ImageService stores uploaded avatars and covers in the filesystem.
// It implements the domain.ImageStore interface.
type ImageService struct {
	imageValidator
}

// imageValidator runs validations on incoming Image data.
// On success, it passes the data on to imageFS.
// Otherwise, it returns the error of the validation that has failed.
type imageValidator struct {
	imageFS
}

// imageFS writes validated images into the filesystem.
type imageFS struct {
	// dir is the directory that contains the ImagesBaseDir directory.
	dir string
	// baseURL is prepended to an image's path to build its public URL.
	baseURL string
}

// NewImageService returns an instance of ImageService storing images below dir
// and handing out URLs starting with baseURL.
func NewImageService(dir, baseURL string) *ImageService {
	return &ImageService{
		imageValidator{
			imageFS{
				dir:     dir,
				baseURL: strings.TrimSuffix(baseURL, "/"),
			},
		},
	}
}

// Ensure the ImageService struct properly implements the domain.ImageStore interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.ImageStore = &ImageService{}

// Upload validates and stores an uploaded user image and returns its public URL.
// A nil file header means nothing was uploaded, which returns the empty string.
func (iv *imageValidator) Upload(ctx context.Context, ownerID int, fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", nil
	}
	file, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	img := &domain.Image{
		OwnerType: domain.OwnerTypeUser,
		OwnerID:   ownerID,
		File:      file,
		Filename:  fh.Filename,
	}
	err = runImageValFns(img,
		iv.extensionValid,
		iv.contentTypeValid,
		iv.contentTypeExtensionMatch,
		iv.belowMaxSize,
		iv.fileNameUnique,
	)
	if err != nil {
		return "", err
	}
	if err := iv.imageFS.create(img); err != nil {
		return "", err
	}
	return iv.baseURL + img.Path(), nil
}

// Delete removes an image previously stored by Upload. The empty string and images
// that are already gone are ignored.
func (iv *imageValidator) Delete(ctx context.Context, url string) error {
	if url == "" {
		return nil
	}
	rel := strings.TrimPrefix(url, iv.baseURL+"/"+domain.ImagesBaseDir+"/")
	if rel == url {
		return errs.Errorf(errs.EINVALID, "Image %s is not stored here.", url)
	}
	root := filepath.Join(iv.dir, domain.ImagesBaseDir)
	path := filepath.Join(root, filepath.FromSlash(rel))
	if !strings.HasPrefix(path, root+string(filepath.Separator)) {
		return errs.Errorf(errs.EINVALID, "Image %s is not stored here.", url)
	}
	return iv.imageFS.remove(path)
}

// runImageValFns runs any number of functions of type imageValFn on the passed in Image object.
func runImageValFns(img *domain.Image, fns ...imageValFn) error {
	for _, fn := range fns {
		if err := fn(img); err != nil {
			return err
		}
	}
	return nil
}

// A imageValFn is any function that takes in a pointer to a domain.Image object and returns an error.
type imageValFn func(img *domain.Image) error

// belowMaxSize makes sure that the image to be uploaded does not exceed MaxUploadSize.
func (iv *imageValidator) belowMaxSize(img *domain.Image) error {
	size, err := img.File.Seek(0, io.SeekEnd)
	if err != nil {
		return err
	}
	if err = resetFilePointer(img); err != nil {
		return err
	}
	if size > domain.MaxUploadSize {
		return errs.Errorf(
			errs.EINVALID,
			"Image %s exceeds upload size limit of %sMB.",
			img.Filename, strconv.FormatInt(domain.MaxUploadSize>>20, 10),
		)
	}
	return nil
}

// contentTypeValid makes sure that the image to be uploaded is a valid jpeg or png file.
func (iv *imageValidator) contentTypeValid(img *domain.Image) error {
	buffer := make([]byte, 512)
	n, err := img.File.Read(buffer)
	if err != nil && err != io.EOF {
		return err
	}
	if err = resetFilePointer(img); err != nil {
		return err
	}
	contentType := http.DetectContentType(buffer[:n])
	if contentType != "image/jpeg" && contentType != "image/png" {
		return errs.Errorf(errs.EINVALID, "Image %s invalid content-type, must be image/jpeg or image/png.", img.Filename)
	}
	img.ContentType = contentType
	return nil
}

// contentTypeExtensionMatch makes sure that the image's filename extension and content type match.
func (iv *imageValidator) contentTypeExtensionMatch(img *domain.Image) error {
	contentType := strings.TrimPrefix(img.ContentType, "image/")
	ext := strings.TrimPrefix(img.Extension, ".")
	if contentType != ext {
		return errs.Errorf(
			errs.EINVALID,
			"Image %s content-type %s does not match extension %s.",
			img.Filename, img.ContentType, img.Extension,
		)
	}
	return nil
}

// extensionValid makes sure that the image to be uploaded has the extension .jpeg,
// .jpg or .png. If the extension is .jpg it will be renamed to .jpeg for consistency.
func (iv *imageValidator) extensionValid(img *domain.Image) error {
	ext := strings.ToLower(filepath.Ext(img.Filename))
	if ext != ".png" && ext != ".jpg" && ext != ".jpeg" {
		return errs.Errorf(errs.EINVALID, "Image %s invalid extension, must be .jpeg or .png", img.Filename)
	}
	if ext == ".jpg" {
		ext = ".jpeg"
	}
	img.Extension = ext
	return nil
}

// fileNameUnique replaces the image's name with a random uuid.
func (iv *imageValidator) fileNameUnique(img *domain.Image) error {
	img.Filename = uuid.NewString() + img.Extension
	return nil
}

// resetFilePointer sets the file pointer back to beginning of the file,
// so that subsequent reads can properly read from the beginning again.
func resetFilePointer(img *domain.Image) error {
	_, err := img.File.Seek(0, io.SeekStart)
	return err
}

// create makes the image's directory if needed and copies the uploaded data into
// a new file inside it, e.g. <dir>/images/user/1/<uuid>.png.
func (fs *imageFS) create(img *domain.Image) error {
	path, err := fs.mkImagePath(img.OwnerType, img.OwnerID)
	if err != nil {
		return err
	}
	dst, err := os.Create(filepath.Join(path, img.Filename))
	if err != nil {
		return err
	}
	defer dst.Close()
	_, err = io.Copy(dst, img.File)
	return err
}

// remove deletes an image file. A missing file is not an error.
func (fs *imageFS) remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// mkImagePath creates the directory of an owner's images.
func (fs *imageFS) mkImagePath(ownerType string, ownerID int) (string, error) {
	imagePath := fs.imagePath(ownerType, ownerID)
	if err := os.MkdirAll(imagePath, 0755); err != nil {
		return "", err
	}
	return imagePath, nil
}

// imagePath builds the directory name of an owner's images.
func (fs *imageFS) imagePath(ownerType string, ownerID int) string {
	return filepath.Join(fs.dir, domain.ImagesBaseDir, ownerType, fmt.Sprint(ownerID))
}
