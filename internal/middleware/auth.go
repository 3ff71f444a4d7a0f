package middleware

import (
	"net/http"
	"strings"

	"github.com/josh-kwaku/accounting-service/internal/auth"
	"github.com/josh-kwaku/accounting-service/internal/handler"
	"github.com/josh-kwaku/accounting-service/internal/logging"
)

// Auth requires a bearer token signed with secret. Health probes and the API
// docs stay open, and webhooks authenticate with their own signature.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			if header == "" {
				handler.RespondAppError(w, handler.ErrMissingToken, nil)
				return
			}

			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || token == "" {
				handler.RespondAppError(w, handler.ErrInvalidToken, nil)
				return
			}

			claims, err := auth.ValidateToken(token, secret)
			if err != nil {
				handler.RespondAppError(w, handler.ErrInvalidToken, nil)
				return
			}

			ctx := auth.ContextWithSubject(r.Context(), claims.Subject)
			ctx = logging.WithLogger(ctx, logging.FromContext(ctx).With("operator", claims.Subject))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func isPublicPath(path string) bool {
	switch path {
	case "/health", "/docs":
		return true
	}
	for _, prefix := range []string{"/health/", "/docs/", "/webhooks/"} {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
