package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// Identity is the caller resolved from a verified request.
type Identity struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	Role     string
}

// ErrUnauthorized is returned by verifiers for missing or bad credentials.
var ErrUnauthorized = errors.New("unauthorized")

// Verifier resolves request credentials to an identity. The analytics API
// only consumes this interface; token issuance and user management live in
// a separate service.
type Verifier interface {
	Verify(ctx context.Context, r *http.Request) (*Identity, error)
}

// StaticVerifier accepts a single bearer token. The tenant comes from the
// X-Tenant-ID header when present, otherwise the configured default.
type StaticVerifier struct {
	Token         string
	DefaultTenant uuid.UUID
}

func (v *StaticVerifier) Verify(ctx context.Context, r *http.Request) (*Identity, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" || token != v.Token {
		return nil, ErrUnauthorized
	}

	tenant := v.DefaultTenant
	if raw := r.Header.Get("X-Tenant-ID"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return nil, ErrUnauthorized
		}
		tenant = parsed
	}

	return &Identity{TenantID: tenant, Role: "viewer"}, nil
}

type identityKey struct{}

// Middleware verifies every request and injects the identity into the
// context. Failures are written as a problem document so the error shape
// matches the rest of the API.
func Middleware(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := v.Verify(r.Context(), r)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"type":"about:blank","title":"Unauthorized","detail":"missing or invalid credentials","status":401}`))
				return
			}
			ctx := context.WithValue(r.Context(), identityKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FromContext returns the verified identity, or nil outside the middleware.
func FromContext(ctx context.Context) *Identity {
	if id, ok := ctx.Value(identityKey{}).(*Identity); ok {
		return id
	}
	return nil
}
