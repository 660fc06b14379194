package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/taskly/taskly-go/internal/model"
)

type contextKey string

const (
	userKey  contextKey = "user"
	tokenKey contextKey = "token"
)

const unauthorizedMessage = "please authenticate"

// SessionResolver maps a bearer token to the user whose session it is.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*model.User, error)
}

// Authenticate returns middleware that requires a live session token in the
// Authorization header and stores the user and token in the request context.
func Authenticate(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			token = strings.TrimSpace(token)
			if !found || token == "" {
				writeJSONError(w, http.StatusUnauthorized, unauthorizedMessage)
				return
			}

			user, err := resolver.ResolveSession(r.Context(), token)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, unauthorizedMessage)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), user, token)))
		})
	}
}

// UserFromContext extracts the authenticated user from the request context.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userKey).(*model.User)
	return user, ok
}

// TokenFromContext extracts the raw session token the request was made with.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey).(string)
	return token, ok
}

// WithSession returns a copy of ctx carrying user and token, as Authenticate
// would set them.
func WithSession(ctx context.Context, user *model.User, token string) context.Context {
	ctx = context.WithValue(ctx, userKey, user)
	return context.WithValue(ctx, tokenKey, token)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
