package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage keeps objects on disk. Intended for development and tests.
type LocalStorage struct {
	root      string
	publicURL string
}

func NewLocalStorage(root, publicURL string) (*LocalStorage, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage root: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &LocalStorage{root: abs, publicURL: strings.TrimSuffix(publicURL, "/")}, nil
}

func (s *LocalStorage) Upload(ctx context.Context, path string, data []byte, _ UploadOptions) error {
	if err := ctx.Err(); err != nil {
		return &UploadError{Path: path, Err: err}
	}

	full, err := s.resolve(path)
	if err != nil {
		return &UploadError{Path: path, Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return &UploadError{Path: path, Err: err}
	}

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if errors.Is(err, os.ErrExist) {
		return &UploadError{Path: path, Err: ErrObjectExists}
	}
	if err != nil {
		return &UploadError{Path: path, Err: err}
	}

	_, err = f.Write(data)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(full)
		return &UploadError{Path: path, Err: err}
	}
	return nil
}

func (s *LocalStorage) PublicURL(path string) string {
	return s.publicURL + "/" + path
}

// Handler serves stored objects; mount it under the prefix of the public URL.
func (s *LocalStorage) Handler(cacheControl string) http.Handler {
	files := http.FileServer(http.Dir(s.root))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cacheControl != "" {
			w.Header().Set("Cache-Control", cacheControlHeader(cacheControl))
		}
		files.ServeHTTP(w, r)
	})
}

func (s *LocalStorage) resolve(path string) (string, error) {
	if path == "" || strings.HasPrefix(path, "/") {
		return "", fmt.Errorf("invalid object path %q", path)
	}
	full := filepath.Join(s.root, filepath.FromSlash(path))
	if !strings.HasPrefix(full, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid object path %q", path)
	}
	return full, nil
}
