package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"enzo/internal/envelope"
	"enzo/internal/folder"
	"enzo/internal/pagination"
)

// FolderService is the folder use-case surface the handlers need.
type FolderService interface {
	List(ctx context.Context, ownerID uuid.UUID, page pagination.Request) ([]*folder.Folder, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (*folder.Folder, error)
	Create(ctx context.Context, ownerID uuid.UUID, in folder.CreateInput) (*folder.Folder, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, in folder.UpdateInput) (*folder.Folder, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

// FoldersHandler handles the caller's folders.
type FoldersHandler struct {
	folders FolderService
	pages   pagination.Policy
}

// NewFoldersHandler creates a new folders handler.
func NewFoldersHandler(folders FolderService, pages pagination.Policy) *FoldersHandler {
	return &FoldersHandler{folders: folders, pages: pages}
}

// List handles GET /api/v1/folders
func (h *FoldersHandler) List(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := h.pages.FromQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}

	folders, err := h.folders.List(r.Context(), u.ID, page)
	if err != nil {
		writeError(w, r, err)
		return
	}

	envelope.WriteSuccess(w, fmt.Sprintf("Retrieved %d folder(s)", len(folders)), folders)
}

// Get handles GET /api/v1/folders/{folderId}
func (h *FoldersHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "folderId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	f, err := h.folders.Get(r.Context(), u.ID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	envelope.WriteSuccess(w, "Folder retrieved successfully", f)
}

// Create handles POST /api/v1/folders
func (h *FoldersHandler) Create(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in folder.CreateInput
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	f, err := h.folders.Create(r.Context(), u.ID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	envelope.WriteSuccess(w, "Folder created successfully", f)
}

// Update handles PUT /api/v1/folders/{folderId}
func (h *FoldersHandler) Update(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "folderId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in folder.UpdateInput
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	f, err := h.folders.Update(r.Context(), u.ID, id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	envelope.WriteSuccess(w, "Folder updated successfully", f)
}

// Delete handles DELETE /api/v1/folders/{folderId}
func (h *FoldersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "folderId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.folders.Delete(r.Context(), u.ID, id); err != nil {
		writeError(w, r, err)
		return
	}

	envelope.WriteSuccess(w, "Folder deleted successfully", nil)
}
