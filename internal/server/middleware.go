package server

import (
	"context"
	"net/http"
	"strings"
)

// Context keys
type contextKey string

const contextKeyOwner contextKey = "owner"

// requireOwner middleware resolves the Authorization header to an owner id
// and injects it into the request context. Requests without a verifiable
// identity get a 401.
func (s *Server) requireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if header == "" || token == header {
			writeError(w, http.StatusUnauthorized, ErrCodeUnauthenticated, "Bearer token required")
			return
		}

		ownerID, err := s.identity.Resolve(r.Context(), token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, ErrCodeUnauthenticated, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyOwner, ownerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ownerFrom returns the authenticated owner id from context.
func ownerFrom(ctx context.Context) string {
	if owner, ok := ctx.Value(contextKeyOwner).(string); ok {
		return owner
	}
	return ""
}
