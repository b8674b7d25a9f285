// Package apperr defines the error taxonomy surfaced to API clients.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure for the HTTP boundary.
type Kind int

const (
	KindInternal Kind = iota
	KindMissingToken
	KindInvalidToken
	KindForbiddenUser
	KindNotFound
	KindInvalidPageRequest
	KindValidation
	KindUpstreamUnavailable
	KindRateLimited
)

// Stable codes carried in the envelope's code field.
const (
	CodeNotAuthenticated    = "NOT_AUTHENTICATED"
	CodeInvalidIDToken      = "INVALID_ID_TOKEN"
	CodeForbiddenUser       = "FORBIDDEN_USER"
	CodeNotFound            = "NOT_FOUND"
	CodeFolderNotFound      = "FOLDER_NOT_FOUND"
	CodeWordNotFound        = "WORD_NOT_FOUND"
	CodeInvalidPageRequest  = "INVALID_PAGE_REQUEST"
	CodeValidation          = "VALIDATION_ERROR"
	CodeNoUpdateFields      = "NO_UPDATE_FIELDS"
	CodeInvalidID           = "INVALID_ID"
	CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	CodeRateLimited         = "RATE_LIMITED"
	CodeInternal            = "INTERNAL_ERROR"
)

// Status returns the HTTP status for the kind.
func (k Kind) Status() int {
	switch k {
	case KindMissingToken, KindInvalidToken:
		return http.StatusUnauthorized
	case KindForbiddenUser:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidPageRequest, KindValidation:
		return http.StatusBadRequest
	case KindUpstreamUnavailable:
		return http.StatusServiceUnavailable
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// DefaultCode returns the code used when an Error does not set one.
func (k Kind) DefaultCode() string {
	switch k {
	case KindMissingToken:
		return CodeNotAuthenticated
	case KindInvalidToken:
		return CodeInvalidIDToken
	case KindForbiddenUser:
		return CodeForbiddenUser
	case KindNotFound:
		return CodeNotFound
	case KindInvalidPageRequest:
		return CodeInvalidPageRequest
	case KindValidation:
		return CodeValidation
	case KindUpstreamUnavailable:
		return CodeUpstreamUnavailable
	case KindRateLimited:
		return CodeRateLimited
	default:
		return CodeInternal
	}
}

func (k Kind) String() string {
	return k.DefaultCode()
}

// Error is a classified failure. Message is shown to clients; Detail goes
// into error_message; Err is kept for logging and errors.Is.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Detail  string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.ResolvedCode()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ResolvedCode returns Code, falling back to the kind's default.
func (e *Error) ResolvedCode() string {
	if e.Code != "" {
		return e.Code
	}
	return e.Kind.DefaultCode()
}

// Status returns the HTTP status for the error.
func (e *Error) Status() int {
	return e.Kind.Status()
}

// New creates an Error with the kind's default code.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WithCode creates an Error with an explicit code.
func WithCode(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap creates an Error around a cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// ErrUpstreamUnavailable marks store or network failures that callers may retry.
var ErrUpstreamUnavailable = errors.New("upstream unavailable")

// Upstream wraps err so that it matches ErrUpstreamUnavailable as well as
// its own chain.
func Upstream(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUpstreamUnavailable, err)
}

// From classifies any error. Errors already classified are returned as is,
// deadlines and ErrUpstreamUnavailable become KindUpstreamUnavailable,
// everything else is internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, ErrUpstreamUnavailable) || errors.Is(err, context.DeadlineExceeded) {
		return Wrap(KindUpstreamUnavailable, "Service temporarily unavailable", err)
	}
	return Wrap(KindInternal, "Internal server error", err)
}
