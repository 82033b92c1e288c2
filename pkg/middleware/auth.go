package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/orgsight/orgsight/modules/core/domain/entities/session"
	"github.com/orgsight/orgsight/pkg/composables"
	"github.com/orgsight/orgsight/pkg/httpapi"
)

// SessionStore is the session lookup surface needed by the middleware; the
// session service implements it.
type SessionStore interface {
	GetByToken(ctx context.Context, token string) (*session.Session, error)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// Authorize resolves the bearer token into a session and attaches it to the
// request context. Requests without a live session are rejected.
func Authorize(sessions SessionStore) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				_ = httpapi.WriteError(w, http.StatusUnauthorized, "SESSION_NOT_FOUND", "missing bearer token", nil)
				return
			}
			sess, err := sessions.GetByToken(r.Context(), token)
			if err != nil {
				_ = httpapi.WriteServiceError(w, err)
				return
			}
			ctx := composables.WithSession(r.Context(), sess)
			if params, ok := composables.UseParams(ctx); ok {
				params.Authenticated = true
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
