package storage

import (
	"bytes"
	"context"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simpleTwitter/errs"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

// fileHeader builds the header of an uploaded file the way a parsed multipart form does.
func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("avatar", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	form, err := multipart.NewReader(&body, mw.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["avatar"][0]
}

func TestUpload(t *testing.T) {
	dir := t.TempDir()
	is := NewImageService(dir, "http://localhost:3000/")

	url, err := is.Upload(context.Background(), 7, fileHeader(t, "me.png", pngHeader))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:3000/images/user/7/"), url)
	assert.True(t, strings.HasSuffix(url, ".png"), url)

	stored := filepath.Join(dir, strings.TrimPrefix(url, "http://localhost:3000/"))
	data, err := os.ReadFile(stored)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)

	// Every upload gets its own name.
	other, err := is.Upload(context.Background(), 7, fileHeader(t, "me.png", pngHeader))
	require.NoError(t, err)
	assert.NotEqual(t, url, other)
}

func TestUploadNothing(t *testing.T) {
	is := NewImageService(t.TempDir(), "http://localhost:3000")
	url, err := is.Upload(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Empty(t, url)
}

func TestUploadRejectsInvalidImages(t *testing.T) {
	is := NewImageService(t.TempDir(), "http://localhost:3000")

	tests := []struct {
		name     string
		filename string
		content  []byte
	}{
		{"wrong extension", "me.gif", pngHeader},
		{"not an image", "me.png", []byte("just some text")},
		{"extension does not match content", "me.jpg", pngHeader},
		{"too large", "me.png", append(append([]byte{}, pngHeader...), make([]byte, 5<<20)...)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := is.Upload(context.Background(), 1, fileHeader(t, tt.filename, tt.content))
			assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
		})
	}
}

func TestDelete(t *testing.T) {
	dir := t.TempDir()
	is := NewImageService(dir, "http://localhost:3000")
	ctx := context.Background()

	url, err := is.Upload(ctx, 3, fileHeader(t, "me.png", pngHeader))
	require.NoError(t, err)
	stored := filepath.Join(dir, strings.TrimPrefix(url, "http://localhost:3000/"))
	require.FileExists(t, stored)

	require.NoError(t, is.Delete(ctx, url))
	assert.NoFileExists(t, stored)
	// Deleting twice is fine, and so is deleting nothing.
	assert.NoError(t, is.Delete(ctx, url))
	assert.NoError(t, is.Delete(ctx, ""))

	for _, foreign := range []string{
		"http://elsewhere.test/images/user/3/x.png",
		"http://localhost:3000/images/../../secret.png",
	} {
		assert.Equal(t, errs.EINVALID, errs.ErrorCode(is.Delete(ctx, foreign)), foreign)
	}
}
