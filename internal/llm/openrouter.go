package llm

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"
	"golang.org/x/oauth2"
)

type OpenRouterConfig struct {
	BaseURL  string // e.g. https://openrouter.ai/api/v1
	APIKey   string
	Model    string
	SiteURL  string // Sent as HTTP-Referer
	SiteName string // Sent as X-Title
}

// OpenRouterClient talks to an OpenAI-compatible chat completions endpoint.
type OpenRouterClient struct {
	httpClient *http.Client
	endpoint   string
	model      string
	siteURL    string
	siteName   string
}

func NewOpenRouterClient(ctx context.Context, cfg OpenRouterConfig) *OpenRouterClient {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.APIKey, TokenType: "Bearer"})
	httpClient := oauth2.NewClient(ctx, src)

	return &OpenRouterClient{
		httpClient: httpClient,
		endpoint:   strings.TrimSuffix(cfg.BaseURL, "/") + "/chat/completions",
		model:      cfg.Model,
		siteURL:    cfg.SiteURL,
		siteName:   cfg.SiteName,
	}
}

func (c *OpenRouterClient) Name() string {
	return ProviderOpenRouter
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *OpenRouterClient) Complete(ctx context.Context, img Image) (string, error) {
	resp, err := c.send(ctx, img)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	return completionFromResponse(resp)
}

// send posts the prompt and image and returns the raw HTTP response.
func (c *OpenRouterClient) send(ctx context.Context, img Image) (*http.Response, error) {
	url := img.URL
	if url == "" {
		url = img.DataURL
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: Prompt},
				{Type: "image_url", ImageURL: &imageURL{URL: url}},
			},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode LLM request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build LLM request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("HTTP-Referer", c.siteURL)
	req.Header.Set("X-Title", c.siteName)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call LLM: %w", err)
	}
	return resp, nil
}

// completionFromResponse checks the status and extracts choices[0].message.content.
// No choices yields an empty completion.
func completionFromResponse(resp *http.Response) (string, error) {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		slog.Error("LLM API error", "status", resp.StatusCode, "body", string(body))
		return "", &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var out chatResponse
	err := json.NewDecoder(resp.Body).Decode(&out)
	if err != nil {
		return "", fmt.Errorf("failed to decode LLM response: %w", err)
	}
	if len(out.Choices) == 0 {
		slog.Warn("LLM response has no choices")
		return "", nil
	}

	return out.Choices[0].Message.Content, nil
}
