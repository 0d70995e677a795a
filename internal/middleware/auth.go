package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/bitelog/bite/internal/ctxkeys"
	"github.com/bitelog/bite/internal/identity"
	"github.com/bitelog/bite/internal/respond"
)

// RequireBearer resolves the Authorization bearer token to a user and adds
// it to the context. Any failure is answered with 401 before the handler runs.
func RequireBearer(provider identity.Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				respond.Error(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			user, err := provider.User(r.Context(), token)
			if err != nil {
				slog.Debug("authentication failed", "error", err, "path", r.URL.Path)
				respond.Error(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			ctx := ctxkeys.WithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
