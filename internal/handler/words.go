package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"enzo/internal/apperr"
	"enzo/internal/envelope"
	"enzo/internal/folder"
	"enzo/internal/imagestore"
	"enzo/internal/pagination"
	"enzo/internal/word"
)

// WordService is the word use-case surface the handlers need.
type WordService interface {
	ListByFolder(ctx context.Context, userID, folderID uuid.UUID, page pagination.Request) (*word.FolderWords, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*word.Word, error)
	Create(ctx context.Context, userID, folderID uuid.UUID, in word.CreateInput) (*word.Word, error)
	Update(ctx context.Context, userID, id uuid.UUID, in word.UpdateInput) (*word.Word, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	AttachImage(ctx context.Context, userID, id uuid.UUID, key string) error
	ImageKey(ctx context.Context, userID, id uuid.UUID) (string, error)
}

// ImageStore presigns word image transfers.
type ImageStore interface {
	PresignUpload(ctx context.Context, key, contentType string) (*imagestore.Upload, error)
	PresignDownload(ctx context.Context, key string) (*imagestore.Download, error)
}

// WordsHandler handles words and their images.
type WordsHandler struct {
	words  WordService
	images ImageStore
	pages  pagination.Policy
}

// NewWordsHandler creates a new words handler. images may be nil, in which
// case the image routes answer 503.
func NewWordsHandler(words WordService, images ImageStore, pages pagination.Policy) *WordsHandler {
	return &WordsHandler{words: words, images: images, pages: pages}
}

// folderScope resolves {userId}/{folderId}. A userId other than the
// caller's is reported as a missing folder.
func folderScope(r *http.Request) (userID, folderID uuid.UUID, err error) {
	u, err := currentUser(r)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	pathUser, err := pathID(r, "userId")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	folderID, err = pathID(r, "folderId")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	if pathUser != u.ID {
		return uuid.Nil, uuid.Nil, folder.ErrNotFound
	}
	return u.ID, folderID, nil
}

// ListByFolder handles GET /api/v1/users/{userId}/folders/{folderId}/wordlist
func (h *WordsHandler) ListByFolder(w http.ResponseWriter, r *http.Request) {
	userID, folderID, err := folderScope(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := h.pages.FromQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.words.ListByFolder(r.Context(), userID, folderID, page)
	if err != nil {
		writeError(w, r, err)
		return
	}

	envelope.WriteSuccess(w, fmt.Sprintf("Retrieved %d words from folder", len(result.Words)), result)
}

// Create handles POST /api/v1/users/{userId}/folders/{folderId}/words
func (h *WordsHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, folderID, err := folderScope(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in word.CreateInput
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	created, err := h.words.Create(r.Context(), userID, folderID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	envelope.WriteSuccess(w, "Word added to folder successfully", created)
}

// Get handles GET /api/v1/words/{wordId}
func (h *WordsHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "wordId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	wd, err := h.words.Get(r.Context(), u.ID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	envelope.WriteSuccess(w, "Word retrieved successfully", wd)
}

// Update handles PUT /api/v1/words/{wordId}
func (h *WordsHandler) Update(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "wordId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in word.UpdateInput
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := h.words.Update(r.Context(), u.ID, id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	envelope.WriteSuccess(w, "Word updated successfully", updated)
}

// Delete handles DELETE /api/v1/words/{wordId}
func (h *WordsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "wordId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.words.Delete(r.Context(), u.ID, id); err != nil {
		writeError(w, r, err)
		return
	}

	envelope.WriteSuccess(w, "Word deleted successfully", nil)
}

type imageUploadRequest struct {
	ContentType string `json:"content_type"`
}

var errImagesDisabled = apperr.WithCode(apperr.KindUpstreamUnavailable, apperr.CodeUpstreamUnavailable, "Image storage is not configured")

// UploadImage handles POST /api/v1/words/{wordId}/image
func (h *WordsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if h.images == nil {
		writeError(w, r, errImagesDisabled)
		return
	}
	u, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "wordId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req imageUploadRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	key, err := imagestore.ObjectKey(u.ID, id, req.ContentType)
	if err != nil {
		writeError(w, r, err)
		return
	}
	// Ownership is checked before anything is signed.
	if err := h.words.AttachImage(r.Context(), u.ID, id, key); err != nil {
		writeError(w, r, err)
		return
	}

	upload, err := h.images.PresignUpload(r.Context(), key, req.ContentType)
	if err != nil {
		writeError(w, r, apperr.Upstream("presign upload", err))
		return
	}

	envelope.WriteSuccess(w, "Image upload URL created", upload)
}

// GetImage handles GET /api/v1/words/{wordId}/image
func (h *WordsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	if h.images == nil {
		writeError(w, r, errImagesDisabled)
		return
	}
	u, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "wordId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	key, err := h.words.ImageKey(r.Context(), u.ID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	download, err := h.images.PresignDownload(r.Context(), key)
	if err != nil {
		writeError(w, r, apperr.Upstream("presign download", err))
		return
	}

	envelope.WriteSuccess(w, "Image URL retrieved successfully", download)
}
