// Package pagination implements the limit/skip page contract.
package pagination

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ErrInvalidPageRequest is returned for negative or non-integer limit/skip.
var ErrInvalidPageRequest = errors.New("invalid page request")

// Request is a resolved page: Limit is in [1, MaxLimit], Skip is >= 0.
type Request struct {
	Limit int `json:"limit"`
	Skip  int `json:"skip"`
}

// Policy holds the server-side defaults.
type Policy struct {
	DefaultLimit int
	MaxLimit     int
}

// DefaultPolicy returns limit=20 clamped to 100.
func DefaultPolicy() Policy {
	return Policy{DefaultLimit: DefaultLimit, MaxLimit: MaxLimit}
}

// Resolve applies defaults and the clamp. A nil or zero limit means the
// default; a nil skip means 0.
func (p Policy) Resolve(limit, skip *int) (Request, error) {
	req := Request{Limit: p.DefaultLimit}

	if limit != nil {
		if *limit < 0 {
			return Request{}, fmt.Errorf("%w: limit must not be negative", ErrInvalidPageRequest)
		}
		if *limit > 0 {
			req.Limit = *limit
		}
	}
	if req.Limit > p.MaxLimit {
		req.Limit = p.MaxLimit
	}

	if skip != nil {
		if *skip < 0 {
			return Request{}, fmt.Errorf("%w: skip must not be negative", ErrInvalidPageRequest)
		}
		req.Skip = *skip
	}

	return req, nil
}

// FromQuery reads limit and skip from query parameters.
func (p Policy) FromQuery(q url.Values) (Request, error) {
	limit, err := intParam(q, "limit")
	if err != nil {
		return Request{}, err
	}
	skip, err := intParam(q, "skip")
	if err != nil {
		return Request{}, err
	}
	return p.Resolve(limit, skip)
}

func intParam(q url.Values, name string) (*int, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be an integer", ErrInvalidPageRequest, name)
	}
	return &n, nil
}

// Apply returns the page of items selected by req.
func Apply[T any](items []T, req Request) []T {
	if req.Skip >= len(items) {
		return []T{}
	}
	end := req.Skip + req.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[req.Skip:end]
}
