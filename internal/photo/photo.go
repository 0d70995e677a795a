package photo

import (
	"encoding/base64"
	"fmt"
	"path"
	"regexp"
	"time"

	"github.com/bitelog/bite/internal/validation"
)

const (
	defaultContentType = "image/jpeg"
	defaultExtension   = "jpg"
)

var extensionPattern = regexp.MustCompile(`^[A-Za-z0-9]{1,10}$`)

// Photo is an uploaded image ready for storage and analysis. Request scoped.
type Photo struct {
	Filename    string
	ContentType string
	Data        []byte
	DataURL     string
	Path        string // {userId}/photo-{unixMillis}.{ext}
}

// Process derives the storage path and data URL for a form upload.
func Process(userID string, form *Form, now time.Time) *Photo {
	contentType := form.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = validation.SniffImageType(form.Data)
	}
	if contentType == "" {
		contentType = defaultContentType
	}

	return &Photo{
		Filename:    form.Filename,
		ContentType: contentType,
		Data:        form.Data,
		DataURL:     DataURL(contentType, form.Data),
		Path:        StoragePath(userID, form.Filename, now),
	}
}

// StoragePath builds {userId}/photo-{unixMillis}.{ext}. The extension is taken
// from the filename and defaults to jpg.
func StoragePath(userID, filename string, now time.Time) string {
	ext := path.Ext(filename)
	if len(ext) > 0 {
		ext = ext[1:]
	}
	if !extensionPattern.MatchString(ext) {
		ext = defaultExtension
	}
	return fmt.Sprintf("%s/photo-%d.%s", userID, now.UnixMilli(), ext)
}

func DataURL(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
