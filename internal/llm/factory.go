package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bitelog/bite/internal/config"
)

// New creates the LLM client selected by configuration.
func New(ctx context.Context, cfg *config.Config) (Client, error) {
	slog.Info("initializing LLM provider", "provider", cfg.LLMProvider, "model", cfg.LLMModel)

	var client Client
	switch cfg.LLMProvider {
	case ProviderOpenRouter:
		if cfg.OpenRouterAPIKey == "" {
			return nil, fmt.Errorf("OPENROUTER_API_KEY is required when using OpenRouter provider")
		}
		client = NewOpenRouterClient(ctx, OpenRouterConfig{
			BaseURL:  cfg.OpenRouterBaseURL,
			APIKey:   cfg.OpenRouterAPIKey,
			Model:    cfg.LLMModel,
			SiteURL:  cfg.SiteURL,
			SiteName: cfg.SiteName,
		})

	case ProviderVertex:
		vertex, err := NewVertexClient(ctx, VertexConfig{
			ProjectID:       cfg.VertexProjectID,
			Location:        cfg.VertexLocation,
			CredentialsFile: cfg.VertexCredentials,
			Model:           cfg.LLMModel,
		})
		if err != nil {
			return nil, err
		}
		client = vertex

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openrouter, vertex)", cfg.LLMProvider)
	}

	if cfg.LLMCircuitBreaker {
		client = NewBreakerClient(client)
	}
	return client, nil
}
