// Package jwtauth verifies Firebase ID tokens.
package jwtauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"enzo/internal/auth"
)

const (
	issuerPrefix     = "https://securetoken.google.com/"
	maxSubjectLength = 128
	defaultLeeway    = 30 * time.Second
)

// Claims represents the claims of a Firebase ID token.
type Claims struct {
	jwt.RegisteredClaims
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty"`
	Name          string `json:"name,omitempty"`
	AuthTime      int64  `json:"auth_time,omitempty"`
	Role          string `json:"role,omitempty"`
}

// Config holds Firebase ID token verification configuration.
type Config struct {
	ProjectID  string
	JWKSURL    string
	Leeway     time.Duration
	HTTPClient *http.Client
}

// Verifier verifies RS256 ID tokens against the project's signing keys.
type Verifier struct {
	projectID string
	issuer    string
	leeway    time.Duration
	jwks      *JWKSCache
	now       func() time.Time
}

// NewVerifier creates a new Firebase ID token verifier.
func NewVerifier(cfg Config) (*Verifier, error) {
	if cfg.ProjectID == "" {
		return nil, errors.New("project ID is required")
	}
	if cfg.JWKSURL == "" {
		return nil, errors.New("JWKS URL is required")
	}
	leeway := cfg.Leeway
	if leeway <= 0 {
		leeway = defaultLeeway
	}

	jwks := NewJWKSCache(cfg.JWKSURL)
	if cfg.HTTPClient != nil {
		jwks.httpClient = cfg.HTTPClient
	}

	return &Verifier{
		projectID: cfg.ProjectID,
		issuer:    issuerPrefix + cfg.ProjectID,
		leeway:    leeway,
		jwks:      jwks,
		now:       time.Now,
	}, nil
}

// Verify parses tokenString and checks signature, algorithm, audience,
// issuer, expiry, issued-at and auth_time. Failures wrap
// auth.ErrInvalidToken, or auth.ErrVerifierUnavailable when no signing key
// could be obtained.
func (v *Verifier) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithAudience(v.projectID),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(v.leeway),
		jwt.WithTimeFunc(v.now),
	)

	token, err := parser.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		kid, ok := token.Header["kid"].(string)
		if !ok || kid == "" {
			return nil, errors.New("missing kid in token header")
		}
		return v.jwks.GetKey(ctx, kid)
	})
	if err != nil {
		if errors.Is(err, ErrKeysUnavailable) {
			return nil, fmt.Errorf("%w: %w", auth.ErrVerifierUnavailable, err)
		}
		return nil, fmt.Errorf("%w: %w", auth.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, auth.ErrInvalidToken
	}

	if claims.Subject == "" || len(claims.Subject) > maxSubjectLength {
		return nil, fmt.Errorf("%w: invalid subject", auth.ErrInvalidToken)
	}

	if claims.AuthTime != 0 && time.Unix(claims.AuthTime, 0).After(v.now().Add(v.leeway)) {
		return nil, fmt.Errorf("%w: auth_time is in the future", auth.ErrInvalidToken)
	}

	return claims, nil
}

// VerifyToken implements auth.TokenVerifier.
func (v *Verifier) VerifyToken(ctx context.Context, tokenString string) (auth.Identity, error) {
	claims, err := v.Verify(ctx, tokenString)
	if err != nil {
		return auth.Identity{}, err
	}
	return claims.Identity(), nil
}

// Identity maps the claims to a request identity.
func (c *Claims) Identity() auth.Identity {
	return auth.Identity{
		SubjectID:     c.Subject,
		Email:         c.Email,
		Name:          c.Name,
		EmailVerified: c.EmailVerified,
		Role:          c.Role,
	}
}
