package jwtauth

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

var (
	// ErrKeysUnavailable is returned when the key set could not be fetched
	// and no usable cached key exists.
	ErrKeysUnavailable = errors.New("signing keys unavailable")

	// ErrKeyNotFound is returned when a fresh key set has no key for the kid.
	ErrKeyNotFound = errors.New("signing key not found")
)

const (
	defaultKeyTTL      = time.Hour
	minRefreshInterval = time.Minute
	maxJWKSBodyBytes   = 1 << 20
)

// JWKSCache caches the identity provider's RSA signing keys. Expiry follows
// the Cache-Control max-age of the last response. Concurrent refreshes are
// collapsed into one fetch.
type JWKSCache struct {
	url        string
	mu         sync.RWMutex
	keys       map[string]*rsa.PublicKey
	lastFetch  time.Time
	expiresAt  time.Time
	httpClient *http.Client
	group      singleflight.Group
	now        func() time.Time
}

// NewJWKSCache creates a new JWKS cache.
func NewJWKSCache(jwksURL string) *JWKSCache {
	return &JWKSCache{
		url:  jwksURL,
		keys: make(map[string]*rsa.PublicKey),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		now: time.Now,
	}
}

// GetKey returns the public key for the given key ID.
func (c *JWKSCache) GetKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	c.mu.RLock()
	key, ok := c.keys[kid]
	now := c.now()
	fresh := now.Before(c.expiresAt)
	recentlyFetched := now.Sub(c.lastFetch) < minRefreshInterval
	c.mu.RUnlock()

	if ok && fresh {
		return key, nil
	}

	// An unknown kid against a fresh set only triggers a refetch once per
	// interval, so garbage tokens cannot hammer the key endpoint.
	if !ok && fresh && recentlyFetched {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, kid)
	}

	if err := c.refresh(ctx); err != nil {
		if ok {
			slog.WarnContext(ctx, "JWKS refresh failed, using cached key", slog.String("kid", kid), slog.Any("error", err))
			return key, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrKeysUnavailable, err)
	}

	c.mu.RLock()
	key, ok = c.keys[kid]
	c.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, kid)
	}
	return key, nil
}

// JWKS represents a JSON Web Key Set.
type JWKS struct {
	Keys []JWK `json:"keys"`
}

// JWK represents a JSON Web Key.
type JWK struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
	Alg string `json:"alg"`
}

// refresh fetches the key set once for all concurrent callers. The shared
// fetch is detached from any single caller's cancellation and bounded by
// the HTTP client timeout; each caller still stops waiting on its own ctx.
func (c *JWKSCache) refresh(ctx context.Context) error {
	ch := c.group.DoChan("jwks", func() (any, error) {
		return nil, c.fetch(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *JWKSCache) fetch(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("JWKS endpoint returned status %d", resp.StatusCode)
	}

	var jwks JWKS
	if err := decodeJSON(resp.Body, maxJWKSBodyBytes, &jwks); err != nil {
		return fmt.Errorf("failed to decode JWKS: %w", err)
	}

	newKeys := make(map[string]*rsa.PublicKey, len(jwks.Keys))
	for _, key := range jwks.Keys {
		if key.Kty != "RSA" || (key.Use != "" && key.Use != "sig") || key.Kid == "" {
			continue
		}
		publicKey, err := parseRSAPublicKey(key.N, key.E)
		if err != nil {
			slog.WarnContext(ctx, "skipping unparseable JWKS key", slog.String("kid", key.Kid), slog.Any("error", err))
			continue
		}
		newKeys[key.Kid] = publicKey
	}
	if len(newKeys) == 0 {
		return errors.New("JWKS contains no usable RSA signing keys")
	}

	ttl := maxAge(resp.Header.Get("Cache-Control"))
	if ttl <= 0 {
		ttl = defaultKeyTTL
	}

	now := c.now()
	c.mu.Lock()
	c.keys = newKeys
	c.lastFetch = now
	c.expiresAt = now.Add(ttl)
	c.mu.Unlock()

	slog.DebugContext(ctx, "JWKS refreshed", slog.Int("keys", len(newKeys)), slog.Duration("ttl", ttl))
	return nil
}

// maxAge extracts max-age from a Cache-Control header value.
func maxAge(cacheControl string) time.Duration {
	for _, directive := range strings.Split(cacheControl, ",") {
		name, value, found := strings.Cut(strings.TrimSpace(directive), "=")
		if !found || !strings.EqualFold(name, "max-age") {
			continue
		}
		seconds, err := strconv.Atoi(strings.Trim(value, `"`))
		if err != nil || seconds < 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}
	return 0
}
