package auth

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type adminContextKey struct{}

// Middleware guards the admin routes with a shared bearer token. An empty
// token disables every guarded route.
type Middleware struct {
	token string
}

func NewMiddleware(token string) Middleware {
	return Middleware{token: strings.TrimSpace(token)}
}

func (m Middleware) Guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.token == "" {
			http.Error(w, "admin access disabled", http.StatusForbidden)
			return
		}
		authz := r.Header.Get("Authorization")
		if authz == "" {
			http.Error(w, "missing authorization", http.StatusUnauthorized)
			return
		}
		const prefix = "Bearer "
		if !strings.HasPrefix(authz, prefix) || !Equal(strings.TrimPrefix(authz, prefix), m.token) {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		// each admin call gets an id so that audit log lines can be joined
		ctx := context.WithValue(r.Context(), adminContextKey{}, uuid.NewString())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminCallID reports the id assigned by Guard, if the request passed it.
func AdminCallID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(adminContextKey{}).(string)
	return id, ok
}

// Equal compares two secrets in constant time.
func Equal(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
