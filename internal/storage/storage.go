package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/bitelog/bite/internal/config"
)

var (
	// ErrObjectExists is returned when an upload targets a path that is already taken.
	ErrObjectExists = errors.New("object already exists")
)

// Storage is a non-overwriting object store with public URLs.
type Storage interface {
	// Upload writes data at path. It never replaces an existing object.
	Upload(ctx context.Context, path string, data []byte, opts UploadOptions) error

	// PublicURL returns the public URL for path. It performs no I/O
	// and does not check that the object exists.
	PublicURL(path string) string
}

type UploadOptions struct {
	ContentType  string
	CacheControl string // Seconds, e.g. "3600"
}

// UploadError wraps any failure of Upload.
type UploadError struct {
	Path string
	Err  error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("failed to upload %s: %v", e.Path, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// New creates the storage driver selected by config.
func New(ctx context.Context, c *config.Config) (Storage, error) {
	switch c.StorageDriver {
	case "local":
		return NewLocalStorage(c.LocalStoragePath, c.LocalStorageURL)
	case "s3":
		return NewS3Storage(ctx, S3Config{
			Region:    c.S3Region,
			Bucket:    c.StorageBucket,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
			Endpoint:  c.S3Endpoint,
			PublicURL: c.S3PublicURL,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
}
