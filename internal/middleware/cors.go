package middleware

import (
	"net/http"

	"github.com/bitelog/bite/internal/respond"
)

// CORS adds the shared CORS headers to every response and answers
// preflight requests with an empty 200.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond.ApplyCORS(w.Header())

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
