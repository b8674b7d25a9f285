// Package envelope shapes every API response body.
package envelope

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"enzo/internal/apperr"
)

// TimestampLayout is ISO-8601 in UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Envelope is the uniform response body. Success is true iff ErrorCode is zero.
type Envelope struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	Data         any    `json:"data"`
	Code         string `json:"code,omitempty"`
	ErrorCode    int    `json:"error_code,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
	Timestamp    string `json:"timestamp"`
}

// Status returns the HTTP status mirroring ErrorCode, or 200.
func (e Envelope) Status() int {
	if e.ErrorCode != 0 {
		return e.ErrorCode
	}
	return http.StatusOK
}

// Builder stamps envelopes with the current time.
type Builder struct {
	now func() time.Time
}

// NewBuilder creates a Builder. A nil clock uses time.Now.
func NewBuilder(now func() time.Time) *Builder {
	if now == nil {
		now = time.Now
	}
	return &Builder{now: now}
}

func (b *Builder) timestamp() string {
	return b.now().UTC().Format(TimestampLayout)
}

// Success wraps a payload.
func (b *Builder) Success(message string, data any) Envelope {
	return Envelope{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: b.timestamp(),
	}
}

// Error wraps a failure. A zero errorCode becomes 500 so the result is
// never mistaken for a success.
func (b *Builder) Error(message, code string, errorCode int, errorMessage string) Envelope {
	if errorCode == 0 {
		errorCode = http.StatusInternalServerError
	}
	if errorMessage == "" {
		errorMessage = message
	}
	return Envelope{
		Success:      false,
		Message:      message,
		Code:         code,
		ErrorCode:    errorCode,
		ErrorMessage: errorMessage,
		Timestamp:    b.timestamp(),
	}
}

// FromError wraps a classified error.
func (b *Builder) FromError(err *apperr.Error) Envelope {
	detail := err.Detail
	if detail == "" {
		detail = err.Message
	}
	return b.Error(err.Message, err.ResolvedCode(), err.Status(), detail)
}

var defaultBuilder = NewBuilder(nil)

// Success wraps a payload with the default builder.
func Success(message string, data any) Envelope {
	return defaultBuilder.Success(message, data)
}

// FromError wraps a classified error with the default builder.
func FromError(err *apperr.Error) Envelope {
	return defaultBuilder.FromError(err)
}

// Write encodes env with the status it mirrors.
func Write(w http.ResponseWriter, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(env.Status())
	if err := json.NewEncoder(w).Encode(env); err != nil {
		slog.Error("failed to encode response", slog.Any("error", err))
	}
}

// WriteSuccess writes a 200 envelope around data.
func WriteSuccess(w http.ResponseWriter, message string, data any) {
	Write(w, Success(message, data))
}

// WriteError classifies err and writes the matching error envelope.
func WriteError(w http.ResponseWriter, err error) {
	Write(w, FromError(apperr.From(err)))
}
