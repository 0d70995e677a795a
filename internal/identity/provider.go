package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/bitelog/bite/internal/config"
	"github.com/bitelog/bite/internal/model"
)

const (
	ProviderSupabase = "supabase"
	ProviderJWT      = "jwt"
)

// ErrUnauthorized covers every way a token can fail.
var ErrUnauthorized = errors.New("unauthorized")

// Provider resolves a bearer token to the user it belongs to.
type Provider interface {
	User(ctx context.Context, token string) (*model.User, error)
}

// New creates an identity provider based on configuration
func New(cfg *config.Config) (Provider, error) {
	slog.Info("initializing identity provider", "provider", cfg.AuthProvider)

	switch cfg.AuthProvider {
	case ProviderSupabase:
		if cfg.SupabaseURL == "" || cfg.SupabaseAnonKey == "" {
			return nil, fmt.Errorf("SUPABASE_URL and SUPABASE_ANON_KEY are required when using Supabase provider")
		}
		return NewSupabaseProvider(cfg.SupabaseURL, cfg.SupabaseAnonKey, &http.Client{Timeout: 10 * time.Second}), nil

	case ProviderJWT:
		if cfg.JWTSecret == "" {
			return nil, fmt.Errorf("JWT_SECRET is required when using JWT provider")
		}
		return NewJWTProvider(cfg.JWTSecret), nil

	default:
		return nil, fmt.Errorf("unknown identity provider: %s (supported: supabase, jwt)", cfg.AuthProvider)
	}
}
