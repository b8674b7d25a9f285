package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"enzo/internal/apperr"
	"enzo/internal/envelope"
	"enzo/internal/folder"
	"enzo/internal/imagestore"
	"enzo/internal/logging"
	"enzo/internal/middleware"
	"enzo/internal/pagination"
	"enzo/internal/user"
	"enzo/internal/word"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

var errNoUser = errors.New("no authenticated user in context")

// currentUser returns the user attached by RequireAuth.
func currentUser(r *http.Request) (*user.User, error) {
	u, ok := middleware.GetUser(r.Context())
	if !ok {
		return nil, errNoUser
	}
	return u, nil
}

// pathID parses a UUID path parameter.
func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, &apperr.Error{
			Kind:    apperr.KindValidation,
			Code:    apperr.CodeInvalidID,
			Message: "Invalid ID format",
			Detail:  name + " must be a UUID",
			Err:     err,
		}
	}
	return id, nil
}

// decodeBody reads a JSON request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		detail := "request body must be valid JSON"
		if errors.Is(err, io.EOF) {
			detail = "request body is empty"
		}
		return &apperr.Error{
			Kind:    apperr.KindValidation,
			Message: "Invalid request body",
			Detail:  detail,
			Err:     err,
		}
	}
	return nil
}

// classify maps domain errors onto the API error taxonomy.
func classify(err error) *apperr.Error {
	var appErr *apperr.Error
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, pagination.ErrInvalidPageRequest):
		return &apperr.Error{Kind: apperr.KindInvalidPageRequest, Message: "Invalid page request", Detail: err.Error(), Err: err}
	case errors.Is(err, folder.ErrNotFound):
		return apperr.WithCode(apperr.KindNotFound, apperr.CodeFolderNotFound, "Folder not found")
	case errors.Is(err, word.ErrNotFound):
		return apperr.WithCode(apperr.KindNotFound, apperr.CodeWordNotFound, "Word not found")
	case errors.Is(err, word.ErrNoImage):
		return apperr.New(apperr.KindNotFound, "Word has no image")
	case errors.Is(err, folder.ErrNoUpdateFields), errors.Is(err, word.ErrNoUpdateFields):
		return apperr.WithCode(apperr.KindValidation, apperr.CodeNoUpdateFields, "No fields to update")
	case errors.Is(err, folder.ErrValidation), errors.Is(err, word.ErrValidation),
		errors.Is(err, imagestore.ErrUnsupportedContentType):
		return &apperr.Error{Kind: apperr.KindValidation, Message: "Validation error", Detail: err.Error(), Err: err}
	default:
		return apperr.From(err)
	}
}

// writeError logs server-side failures and writes the error envelope.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := classify(err)
	if appErr.Status() >= http.StatusInternalServerError {
		logging.FromContext(r.Context()).Error("request failed",
			slog.String("code", appErr.ResolvedCode()),
			slog.Any("error", err),
		)
	}
	envelope.Write(w, envelope.FromError(appErr))
}
