// Package middleware implements bearer-token authentication as an
// AuthMiddleware with Required and Optional handlers over the
// in-process token.Service, stashing the verified identity in the
// request context. Logic methods read it back with FromContext at the
// top of the method.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/zeromicro/go-zero/rest/httpx"

	"github.com/sampleforge/vault/internal/token"
	"github.com/sampleforge/vault/internal/vaulterr"
)

const (
	authorizationHeaderKey = "Authorization"
	bearerPrefix           = "Bearer "
)

type contextKey string

const identityContextKey contextKey = "vault-identity"

// AuthMiddleware verifies the bearer token on incoming requests.
type AuthMiddleware struct {
	tokens        *token.Service
	versionLookup token.UserVersionLookup
	apiKeys       token.APIKeyChecker
}

// NewAuthMiddleware builds an AuthMiddleware.
func NewAuthMiddleware(tokens *token.Service, versionLookup token.UserVersionLookup, apiKeys token.APIKeyChecker) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, versionLookup: versionLookup, apiKeys: apiKeys}
}

// Required rejects requests with a missing or invalid bearer token.
func (m *AuthMiddleware) Required(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		verified, err := m.verify(r)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), identityContextKey, verified)))
	}
}

// Optional verifies the bearer token when present but lets anonymous
// requests through (used by read endpoints that behave differently for
// authenticated callers without requiring authentication).
func (m *AuthMiddleware) Optional(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(authorizationHeaderKey)
		if header == "" {
			next(w, r)
			return
		}
		verified, err := m.verify(r)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), identityContextKey, verified)))
	}
}

func (m *AuthMiddleware) verify(r *http.Request) (*token.Verified, error) {
	header := r.Header.Get(authorizationHeaderKey)
	if header == "" || !strings.HasPrefix(header, bearerPrefix) {
		return nil, vaulterr.New(vaulterr.Unauthenticated, "missing bearer token")
	}
	raw := strings.TrimPrefix(header, bearerPrefix)
	return m.tokens.Verify(r.Context(), raw, m.versionLookup, m.apiKeys)
}

// FromContext extracts the verified identity a middleware stashed,
// panicking if Required didn't run first — the handler tree is only
// reachable through its matching middleware.
func FromContext(ctx context.Context) *token.Verified {
	v, ok := ctx.Value(identityContextKey).(*token.Verified)
	if !ok {
		panic("middleware: no verified identity in context; Required/Optional did not run")
	}
	return v
}

// MaybeFromContext is FromContext's non-panicking counterpart, for
// handlers reachable through Optional.
func MaybeFromContext(ctx context.Context) (*token.Verified, bool) {
	v, ok := ctx.Value(identityContextKey).(*token.Verified)
	return v, ok
}
