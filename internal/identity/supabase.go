package identity

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/bitelog/bite/internal/model"
	json "github.com/goccy/go-json"
)

// SupabaseProvider asks the Supabase auth server who owns the token.
type SupabaseProvider struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
}

func NewSupabaseProvider(baseURL, anonKey string, httpClient *http.Client) *SupabaseProvider {
	return &SupabaseProvider{baseURL: baseURL, anonKey: anonKey, httpClient: httpClient}
}

type supabaseUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (p *SupabaseProvider) User(ctx context.Context, token string) (*model.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	req.Header.Set("apikey", p.anonKey)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		slog.Warn("identity service unreachable", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: identity service answered %d", ErrUnauthorized, resp.StatusCode)
	}

	var u supabaseUser
	err = json.NewDecoder(resp.Body).Decode(&u)
	if err != nil || u.ID == "" {
		return nil, fmt.Errorf("%w: malformed identity response", ErrUnauthorized)
	}

	return &model.User{ID: u.ID, Email: u.Email, Role: u.Role}, nil
}
