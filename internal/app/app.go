package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/bitelog/bite/internal/compress"
	"github.com/bitelog/bite/internal/config"
	"github.com/bitelog/bite/internal/db"
	"github.com/bitelog/bite/internal/identity"
	"github.com/bitelog/bite/internal/llm"
	"github.com/bitelog/bite/internal/middleware"
	"github.com/bitelog/bite/internal/reconcile"
	"github.com/bitelog/bite/internal/repository"
	"github.com/bitelog/bite/internal/service"
	"github.com/bitelog/bite/internal/storage"
	"github.com/jmoiron/sqlx"
)

type App struct {
	Cfg                    *config.Config
	DB                     *sqlx.DB
	Storage                storage.Storage
	LLM                    llm.Client
	Identity               identity.Provider
	Orphans                reconcile.Reporter
	EatenProductRepository repository.EatenProductRepository
	FoodPhotoService       *service.FoodPhotoService

	// Optional, nil when the limit is disabled
	UserLimiter *middleware.RateLimiter
	IPLimiter   *middleware.RateLimiter
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	err = db.RunMigrations(ctx, database.DB, cfg.DBDriver)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	a := &App{Cfg: cfg, DB: database}

	// Storage
	a.Storage, err = storage.New(ctx, cfg)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// LLM
	a.LLM, err = llm.New(ctx, cfg)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to initialize LLM provider: %w", err)
	}

	// Identity
	a.Identity, err = identity.New(cfg)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to initialize identity provider: %w", err)
	}

	a.Orphans = reconcile.New(cfg)

	// Repositories
	a.EatenProductRepository = repository.NewEatenProductRepository(database)

	// Services
	photoStore := service.NewPhotoStore(a.Storage, compress.New(cfg), cfg.StorageCacheControl)
	a.FoodPhotoService = service.NewFoodPhotoService(cfg, photoStore, a.LLM, a.EatenProductRepository, a.Orphans)

	// Rate limiters
	if cfg.AnalyzeRateLimit > 0 {
		a.UserLimiter = middleware.NewRateLimiter(cfg.AnalyzeRateLimit, cfg.AnalyzeRateWindow)
	}
	if cfg.AnalyzeIPRateLimit > 0 {
		a.IPLimiter = middleware.NewRateLimiter(cfg.AnalyzeIPRateLimit, cfg.AnalyzeRateWindow)
	}

	return a, nil
}

func (a *App) Close() error {
	for _, limiter := range []*middleware.RateLimiter{a.UserLimiter, a.IPLimiter} {
		if limiter != nil {
			limiter.Stop()
		}
	}

	var errs []error
	if a.Orphans != nil {
		errs = append(errs, a.Orphans.Close())
	}
	if closer, ok := a.LLM.(io.Closer); ok {
		errs = append(errs, closer.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}
