// Package auth defines verified identities and bearer token extraction.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// Sentinel errors for token extraction failures.
// These can be used for debugging/logging but should NOT be exposed in responses.
var (
	ErrMissingAuthHeader = errors.New("missing authorization header")
	ErrInvalidAuthScheme = errors.New("invalid authorization scheme: expected Bearer")
	ErrEmptyToken        = errors.New("empty bearer token")
)

// Verification failures. ErrVerifierUnavailable means the token could not be
// checked at all, e.g. the signing keys could not be fetched.
var (
	ErrInvalidToken        = errors.New("invalid id token")
	ErrVerifierUnavailable = errors.New("token verifier unavailable")
)

// Identity is the verified subject of a request.
type Identity struct {
	SubjectID     string
	Email         string
	Name          string
	EmailVerified bool
	Role          string
}

// TokenVerifier turns a bearer token into an Identity.
// Implementations return errors matching ErrInvalidToken or ErrVerifierUnavailable.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (Identity, error)
}

// ExtractBearerToken extracts the token from an "Authorization: Bearer <token>" header.
// Returns an error if the header is missing, uses wrong scheme, or token is empty.
func ExtractBearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", ErrMissingAuthHeader
	}

	const prefix = "Bearer "
	if !strings.HasPrefix(authHeader, prefix) {
		return "", ErrInvalidAuthScheme
	}

	token := strings.TrimSpace(strings.TrimPrefix(authHeader, prefix))
	if token == "" {
		return "", ErrEmptyToken
	}

	return token, nil
}
