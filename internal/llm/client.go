package llm

import (
	"context"
	"fmt"
)

const (
	ProviderOpenRouter = "openrouter"
	ProviderVertex     = "vertex"
)

// Client defines the interface that all LLM providers must implement
type Client interface {
	// Complete sends the food photo with the analysis prompt and returns the
	// raw completion text. It never fills in defaults. A reply without any
	// content is an empty completion, not an error.
	Complete(ctx context.Context, img Image) (string, error)

	// Name returns the provider name (e.g., "openrouter", "vertex")
	Name() string
}

// Image is the photo as sent to a provider. URL, when the provider can fetch
// it, takes precedence over the inline data.
type Image struct {
	MIMEType string
	Data     []byte
	DataURL  string // data:<mime>;base64,...
	URL      string // Public URL of the stored object
}

// APIError is a non-2xx answer from the provider.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("LLM API error: %d", e.StatusCode)
}
