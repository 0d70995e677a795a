package validation

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
)

var ErrFileTooLarge = errors.New("file too large")

// FileConstraints defines validation rules for file uploads
type FileConstraints struct {
	MaxSize int64
}

// PhotoConstraints limits food photos. Content is not checked here;
// undecodable images are left to the compressor and the model.
func PhotoConstraints(maxSize int64) FileConstraints {
	return FileConstraints{MaxSize: maxSize}
}

// ValidateFile checks the upload against the constraints before it is read.
func ValidateFile(header *multipart.FileHeader, c FileConstraints) error {
	if c.MaxSize > 0 && header.Size > c.MaxSize {
		return fmt.Errorf("%w: maximum size is %d MB", ErrFileTooLarge, c.MaxSize/(1<<20))
	}
	return nil
}

// SniffImageType detects the MIME type from magic numbers.
// It returns "" unless the content looks like an image.
func SniffImageType(data []byte) string {
	if len(data) > 512 {
		data = data[:512]
	}
	detected := http.DetectContentType(data)
	if !strings.HasPrefix(detected, "image/") {
		return ""
	}
	return detected
}
