// Copyright (c) 2026 TaskFlow. All rights reserved.

package middleware

import (
	"context"
	"net/http"

	"github.com/taskflowhq/taskflow/internal/platform/apperr"
	"github.com/taskflowhq/taskflow/internal/platform/constants"
	"github.com/taskflowhq/taskflow/internal/platform/ctxutil"
	"github.com/taskflowhq/taskflow/internal/platform/respond"
	"github.com/taskflowhq/taskflow/internal/platform/sec"
)

// TokenVerifier defines the interface needed to verify session tokens.
//
// # Why an interface?
//
// Defining TokenVerifier here decouples the middleware from the `sec`
// TokenService implementation, allowing us to easily inject mocks during
// unit testing.
type TokenVerifier interface {
	VerifySessionToken(tokenStr string) (*sec.SessionClaims, error)
}

// Resolver resolves a verified user id to a live public identity.
//
// Implemented by the auth service, which consults the Redis projection cache
// before falling back to PostgreSQL.
type Resolver interface {
	ResolveIdentity(ctx context.Context, userID string) (*sec.Identity, error)
}

// RequireSession blocks requests that do not carry a valid session cookie.
//
// # Flow
//  1. Extract the signed token from the session cookie.
//  2. Verify signature and expiry via [TokenVerifier].
//  3. Resolve the encoded user id to a live account (password hash excluded).
//  4. Inject the [*sec.Identity] into the request context.
//
// On any failure the request is short-circuited with HTTP 401 — no request
// reaches downstream handlers without a verified identity.
func RequireSession(verifier TokenVerifier, resolver Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// ── 1. Cookie Extraction ──────────────────────────────────────────
			cookie, err := request.Cookie(constants.SessionCookieName)
			if err != nil || cookie.Value == "" {
				respond.Error(writer, request, apperr.Unauthorized("Not authorized, no token"))
				return
			}

			// ── 2. Token Verification ─────────────────────────────────────────
			claims, err := verifier.VerifySessionToken(cookie.Value)
			if err != nil {
				respond.Error(writer, request, apperr.Unauthorized("Not authorized, token failed"))
				return
			}

			// ── 3. Identity Resolution ────────────────────────────────────────
			identity, err := resolver.ResolveIdentity(request.Context(), claims.UserID)
			if err != nil || identity == nil {
				respond.Error(writer, request, apperr.Unauthorized("Not authorized, user not found"))
				return
			}

			// ── 4. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithIdentity(request.Context(), identity)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}
