// Package middleware provides HTTP middleware for the Enzo API.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"enzo/internal/apperr"
	"enzo/internal/auth"
	"enzo/internal/envelope"
	"enzo/internal/logging"
	"enzo/internal/policy"
	"enzo/internal/user"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	identityContextKey contextKey = "identity"
	userContextKey     contextKey = "user"
)

// UserResolver maps a verified identity to a stored user, creating it on
// first sight.
type UserResolver interface {
	EnsureFromIdentity(ctx context.Context, identity auth.Identity) (*user.User, error)
}

// GetUser retrieves the authenticated user from the request context.
func GetUser(ctx context.Context) (*user.User, bool) {
	u, ok := ctx.Value(userContextKey).(*user.User)
	return u, ok
}

// GetIdentity retrieves the verified token identity from the request context.
func GetIdentity(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(auth.Identity)
	return id, ok
}

// WithUser returns a context carrying an authenticated user. Handlers
// mounted without RequireAuth can be tested with it.
func WithUser(ctx context.Context, u *user.User) context.Context {
	return context.WithValue(ctx, userContextKey, u)
}

// RequireAuth returns middleware that authenticates requests with a
// Firebase ID token and authorizes them with the given policy.
//
// Authentication flow:
//  1. Extract bearer token from Authorization header
//  2. Verify the token
//  3. Authorize the identity
//  4. Resolve the stored user and attach it to the request
//
// Error responses:
//   - 401 NOT_AUTHENTICATED: missing or malformed Authorization header
//   - 401 INVALID_ID_TOKEN: signature, expiry, audience or issuer check failed
//   - 403 FORBIDDEN_USER: policy denied the identity
//   - 503 UPSTREAM_UNAVAILABLE: signing keys or user store unreachable
func RequireAuth(verifier auth.TokenVerifier, pol policy.Policy, users UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			logger := logging.FromContext(ctx)

			// 1. Extract bearer token
			token, err := auth.ExtractBearerToken(r)
			if err != nil {
				logger.Debug("authentication missing", slog.String("reason", err.Error()))
				envelope.WriteError(w, apperr.New(apperr.KindMissingToken, "Not authenticated"))
				return
			}

			// 2. Verify
			identity, err := verifier.VerifyToken(ctx, token)
			if err != nil {
				if errors.Is(err, auth.ErrVerifierUnavailable) {
					logger.Warn("token verifier unavailable", slog.Any("error", err))
					envelope.WriteError(w, apperr.Wrap(apperr.KindUpstreamUnavailable, "Authentication service unavailable", err))
					return
				}
				logger.Info("token rejected", slog.String("reason", err.Error()))
				envelope.WriteError(w, &apperr.Error{
					Kind:    apperr.KindInvalidToken,
					Message: "Invalid ID token",
					Detail:  "The provided Firebase ID token is invalid or expired",
					Err:     err,
				})
				return
			}

			// 3. Authorize
			if decision := pol.Authorize(ctx, identity); !decision.Allowed {
				logger.Info("identity not authorized",
					slog.String("subject", identity.SubjectID),
					slog.String("reason", decision.Reason),
				)
				envelope.WriteError(w, &apperr.Error{
					Kind:    apperr.KindForbiddenUser,
					Message: "Forbidden user",
					Detail:  "This account is not allowed to access the API",
				})
				return
			}

			// 4. Resolve user
			u, err := users.EnsureFromIdentity(ctx, identity)
			if err != nil {
				logger.Error("failed to resolve user", slog.Any("error", err))
				envelope.WriteError(w, apperr.Wrap(apperr.KindUpstreamUnavailable, "Failed to retrieve user", err))
				return
			}

			ctx = context.WithValue(ctx, identityContextKey, identity)
			ctx = context.WithValue(ctx, userContextKey, u)
			ctx = logging.WithUserID(ctx, u.ID.String())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
