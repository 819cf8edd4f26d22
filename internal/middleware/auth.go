package middleware

import (
	"context"
	"net/http"
)

type contextKey string

// UserContextKey carries the authenticated username through the request.
const UserContextKey contextKey = "username"

// CredentialStore checks a username/password pair against the user store.
type CredentialStore interface {
	Authenticate(ctx context.Context, username, password string) error
}

// BasicAuth enforces HTTP Basic authentication on every wrapped request.
func BasicAuth(store CredentialStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, password, ok := r.BasicAuth()
			if !ok {
				unauthorized(w)
				return
			}

			if err := store.Authenticate(r.Context(), username, password); err != nil {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="finance"`)
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}
