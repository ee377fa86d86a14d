package storage

import (
	"errors"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var ErrNotImage = errors.New("file is not an image")

// RequireImage sniffs the upload content and rejects anything that is not an image.
func RequireImage(fh *multipart.FileHeader) error {
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(mt.String(), "image/") {
		return ErrNotImage
	}
	return nil
}
