// Package client is a layered Go client for the Enzo API: a remote source
// speaking HTTP, repositories over it, and use cases on top. Every layer
// returns a Result instead of panicking or leaking transport errors.
package client

import (
	"fmt"
	"net/http"
)

// FailureKind classifies why a call did not produce a value.
type FailureKind int

const (
	FailureUnknown FailureKind = iota
	FailureUnauthenticated
	FailureForbidden
	FailureNotFound
	FailureInvalidRequest
	FailureRateLimited
	FailureUnavailable
	FailureServer
	FailureNetwork
	FailureDecode
)

var failureKindNames = map[FailureKind]string{
	FailureUnknown:         "unknown",
	FailureUnauthenticated: "unauthenticated",
	FailureForbidden:       "forbidden",
	FailureNotFound:        "not_found",
	FailureInvalidRequest:  "invalid_request",
	FailureRateLimited:     "rate_limited",
	FailureUnavailable:     "unavailable",
	FailureServer:          "server",
	FailureNetwork:         "network",
	FailureDecode:          "decode",
}

func (k FailureKind) String() string {
	if name, ok := failureKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("FailureKind(%d)", int(k))
}

// Retryable reports whether the same call may succeed later.
func (k FailureKind) Retryable() bool {
	switch k {
	case FailureUnavailable, FailureNetwork, FailureRateLimited:
		return true
	default:
		return false
	}
}

// Failure describes a failed call. Code is the API's stable error code
// when the server answered with an envelope.
type Failure struct {
	Kind    FailureKind
	Code    string
	Status  int
	Message string
}

func (f *Failure) Error() string {
	if f.Code != "" {
		return fmt.Sprintf("%s (%s): %s", f.Kind, f.Code, f.Message)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

// kindForStatus maps an HTTP status onto a FailureKind.
func kindForStatus(status int) FailureKind {
	switch {
	case status == http.StatusUnauthorized:
		return FailureUnauthenticated
	case status == http.StatusForbidden:
		return FailureForbidden
	case status == http.StatusNotFound:
		return FailureNotFound
	case status == http.StatusTooManyRequests:
		return FailureRateLimited
	case status == http.StatusServiceUnavailable, status == http.StatusGatewayTimeout, status == http.StatusBadGateway:
		return FailureUnavailable
	case status >= 400 && status < 500:
		return FailureInvalidRequest
	case status >= 500:
		return FailureServer
	default:
		return FailureUnknown
	}
}

// Result is either a value or a Failure.
type Result[T any] struct {
	value   T
	failure *Failure
}

// Ok wraps a value.
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Fail wraps a failure.
func Fail[T any](f *Failure) Result[T] {
	return Result[T]{failure: f}
}

// IsOk reports whether the result holds a value.
func (r Result[T]) IsOk() bool {
	return r.failure == nil
}

// Value returns the value; it is the zero value on failure.
func (r Result[T]) Value() T {
	return r.value
}

// Failure returns the failure, or nil on success.
func (r Result[T]) Failure() *Failure {
	return r.failure
}

// Get returns the value and the failure as an error.
func (r Result[T]) Get() (T, error) {
	if r.failure != nil {
		return r.value, r.failure
	}
	return r.value, nil
}

// Map transforms the value of a successful result.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	if r.failure != nil {
		return Fail[U](r.failure)
	}
	return Ok(fn(r.value))
}
