package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/option"
)

type VertexConfig struct {
	ProjectID       string
	Location        string
	CredentialsFile string // Optional: falls back to application default credentials
	Model           string
}

// VertexClient calls Gemini through Vertex AI.
type VertexClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewVertexClient(ctx context.Context, cfg VertexConfig) (*VertexClient, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := genai.NewClient(ctx, cfg.ProjectID, cfg.Location, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex client: %w", err)
	}

	return &VertexClient{
		client: client,
		model:  client.GenerativeModel(vertexModelName(cfg.Model)),
	}, nil
}

func (c *VertexClient) Name() string {
	return ProviderVertex
}

func (c *VertexClient) Complete(ctx context.Context, img Image) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(Prompt), vertexImagePart(img))
	if err != nil {
		return "", fmt.Errorf("failed to call vertex: %w", err)
	}
	return completionText(resp)
}

// vertexImagePart references Cloud Storage objects by URI. Vertex does not
// fetch http(s) URLs, so any other image is sent inline.
func vertexImagePart(img Image) genai.Part {
	if strings.HasPrefix(img.URL, "gs://") {
		return genai.FileData{MIMEType: img.MIMEType, FileURI: img.URL}
	}
	return genai.Blob{MIMEType: img.MIMEType, Data: img.Data}
}

func (c *VertexClient) Close() error {
	return c.client.Close()
}

// completionText joins the text parts of the first candidate. A response
// without candidates yields an empty completion.
func completionText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		slog.Warn("vertex response has no candidates")
		return "", nil
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String(), nil
}

// vertexModelName strips an OpenRouter-style vendor prefix.
func vertexModelName(model string) string {
	if i := strings.LastIndex(model, "/"); i >= 0 {
		return model[i+1:]
	}
	return model
}
