package domain

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/url"
)

const (
	// OwnerTypeUser expresses that an Image belongs to a User.
	OwnerTypeUser = "user"
	// ImagesBaseDir determines the general storage location of uploaded images.
	ImagesBaseDir = "images"
	// MaxUploadSize determines the maximum filesize of an image to be uploaded.
	MaxUploadSize int64 = 5 << 20 // 5 Megabyte
)

// Image represents an uploaded avatar or cover. Images are only stored as files and
// have no dedicated table in the database; the users table stores their public URLs.
// An Image belonging to the User with ID 1 will be stored in: images/user/1/unique_name.jpeg.
type Image struct {
	OwnerType   string
	OwnerID     int
	File        multipart.File
	Filename    string
	Extension   string
	ContentType string
}

// ImageStore stores uploaded images and hands out their public URLs.
// Uploading a nil file header is a no-op returning the empty string.
// Delete removes the image behind a URL returned by Upload.
type ImageStore interface {
	Upload(ctx context.Context, ownerID int, fh *multipart.FileHeader) (string, error)
	Delete(ctx context.Context, url string) error
}

// Path returns the url path an image is served under.
func (i *Image) Path() string {
	temp := url.URL{
		Path: "/" + i.RelativePath(),
	}
	return temp.String()
}

// RelativePath returns the path of an image relative to the images directory's parent.
func (i *Image) RelativePath() string {
	return fmt.Sprintf("%v/%v/%v/%v", ImagesBaseDir, i.OwnerType, i.OwnerID, i.Filename)
}
