package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/bitelog/bite/internal/compress"
	"github.com/bitelog/bite/internal/metrics"
	"github.com/bitelog/bite/internal/photo"
	"github.com/bitelog/bite/internal/storage"
)

// PhotoStore applies the compression policy and uploads the result.
type PhotoStore struct {
	storage      storage.Storage
	policy       compress.Policy
	cacheControl string
}

func NewPhotoStore(s storage.Storage, policy compress.Policy, cacheControl string) *PhotoStore {
	if policy == nil {
		policy = compress.None{}
	}
	return &PhotoStore{
		storage:      s,
		policy:       policy,
		cacheControl: cacheControl,
	}
}

// Store uploads the photo under p.Path. A compression failure never blocks the
// upload; the original bytes are stored instead.
func (s *PhotoStore) Store(ctx context.Context, p *photo.Photo) error {
	data, contentType := s.prepare(p)

	started := time.Now()
	err := s.storage.Upload(ctx, p.Path, data, storage.UploadOptions{
		ContentType:  contentType,
		CacheControl: s.cacheControl,
	})
	metrics.ObserveStage(StageUpload, started)
	return err
}

// PublicURL is pure and never fails.
func (s *PhotoStore) PublicURL(path string) string {
	return s.storage.PublicURL(path)
}

func (s *PhotoStore) prepare(p *photo.Photo) ([]byte, string) {
	started := time.Now()
	res, err := s.policy.Compress(p.Data)
	metrics.ObserveStage("compress", started)
	if err != nil {
		metrics.CompressionFallbacks.Inc()
		slog.Warn("compression failed, storing original", "error", err, "path", p.Path, "policy", s.policy.Name())
		return p.Data, p.ContentType
	}

	// Passed through untouched
	if res.ContentType == "" {
		return res.Data, p.ContentType
	}

	if len(p.Data) > 0 {
		metrics.CompressionRatio.Observe(float64(len(res.Data)) / float64(len(p.Data)))
	}
	metrics.CompressionAttempts.Observe(float64(res.Attempts))
	slog.Debug("photo compressed",
		"path", p.Path,
		"original_bytes", len(p.Data),
		"stored_bytes", len(res.Data),
		"quality", res.Quality,
		"attempts", res.Attempts,
		"resized", res.Resized,
	)
	return res.Data, res.ContentType
}
