package transport

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
)

// ErrUnauthorized indicates invalid or missing credentials.
var ErrUnauthorized = errors.New("unauthorized")

type principalKey struct{}

// PrincipalResolver resolves the caller name from a bearer token.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, token string) (string, error)
}

// PrincipalFromContext returns the authenticated caller, if present.
func PrincipalFromContext(ctx context.Context) (string, bool) {
	principal, ok := ctx.Value(principalKey{}).(string)
	return principal, ok
}

// WithPrincipal stores the authenticated caller in ctx.
func WithPrincipal(ctx context.Context, principal string) context.Context {
	return context.WithValue(ctx, principalKey{}, principal)
}

// AuthMiddleware enforces bearer token authentication.
func AuthMiddleware(resolver PrincipalResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if token == "" {
				writeError(w, http.StatusUnauthorized, "Autenticazione richiesta", nil)
				return
			}

			principal, err := resolver.ResolvePrincipal(r.Context(), token)
			if err != nil || principal == "" {
				writeError(w, http.StatusUnauthorized, "Token non valido", nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// StaticKeys resolves tokens against a fixed set of named keys. Only SHA-256
// digests are kept in memory.
type StaticKeys struct {
	keys map[string][sha256.Size]byte
}

// NewStaticKeys builds a resolver from name to token pairs.
func NewStaticKeys(tokens map[string]string) *StaticKeys {
	keys := make(map[string][sha256.Size]byte, len(tokens))
	for name, token := range tokens {
		keys[name] = sha256.Sum256([]byte(token))
	}
	return &StaticKeys{keys: keys}
}

// ResolvePrincipal implements PrincipalResolver.
func (s *StaticKeys) ResolvePrincipal(_ context.Context, token string) (string, error) {
	sum := sha256.Sum256([]byte(token))
	for name, key := range s.keys {
		if subtle.ConstantTimeCompare(sum[:], key[:]) == 1 {
			return name, nil
		}
	}
	return "", ErrUnauthorized
}
