package word

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"enzo/internal/apperr"
	"enzo/internal/pagination"
)

// Domain errors returned by the Manager.
var (
	ErrNotFound       = errors.New("word not found")
	ErrNoImage        = errors.New("word has no image")
	ErrNoUpdateFields = errors.New("no fields to update")
)

// FolderOwnership checks that a folder belongs to a user. Implementations
// return their own not-found error, which the Manager passes through.
type FolderOwnership interface {
	EnsureOwned(ctx context.Context, ownerID, folderID uuid.UUID) error
}

// Manager handles business logic for words.
type Manager struct {
	ds      *Datastore
	folders FolderOwnership
}

// NewManager creates a new word manager.
func NewManager(ds *Datastore, folders FolderOwnership) *Manager {
	return &Manager{ds: ds, folders: folders}
}

// ListByFolder returns one page of the folder's words in creation order.
// The folder must belong to userID; otherwise the ownership error is returned
// and no words are read.
func (m *Manager) ListByFolder(ctx context.Context, userID, folderID uuid.UUID, page pagination.Request) (*FolderWords, error) {
	if err := m.folders.EnsureOwned(ctx, userID, folderID); err != nil {
		return nil, err
	}

	words, err := m.ds.ListByFolder(ctx, userID, folderID, page.Limit, page.Skip)
	if err != nil {
		return nil, apperr.Upstream("failed to list words", err)
	}

	return &FolderWords{
		FolderID: folderID,
		UserID:   userID,
		Words:    words,
		Limit:    page.Limit,
		Skip:     page.Skip,
	}, nil
}

// Get retrieves a word belonging to userID.
func (m *Manager) Get(ctx context.Context, userID, id uuid.UUID) (*Word, error) {
	w, err := m.ds.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, apperr.Upstream("failed to get word", err)
	}
	return w, nil
}

// Create validates and stores a word in an owned folder.
func (m *Manager) Create(ctx context.Context, userID, folderID uuid.UUID, in CreateInput) (*Word, error) {
	if err := in.Normalize(); err != nil {
		return nil, err
	}
	if err := m.folders.EnsureOwned(ctx, userID, folderID); err != nil {
		return nil, err
	}

	w, err := m.ds.Create(ctx, userID, folderID, in)
	if err != nil {
		return nil, apperr.Upstream("failed to create word", err)
	}
	return w, nil
}

// Update applies a partial update to a word belonging to userID.
func (m *Manager) Update(ctx context.Context, userID, id uuid.UUID, in UpdateInput) (*Word, error) {
	if in.IsEmpty() {
		return nil, ErrNoUpdateFields
	}
	if err := in.Normalize(); err != nil {
		return nil, err
	}

	w, err := m.ds.Update(ctx, userID, id, in)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, apperr.Upstream("failed to update word", err)
	}
	return w, nil
}

// Delete removes a word belonging to userID.
func (m *Manager) Delete(ctx context.Context, userID, id uuid.UUID) error {
	rowsAffected, err := m.ds.Delete(ctx, userID, id)
	if err != nil {
		return apperr.Upstream("failed to delete word", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AttachImage records the storage key of the word's image.
func (m *Manager) AttachImage(ctx context.Context, userID, id uuid.UUID, key string) error {
	rowsAffected, err := m.ds.SetImageKey(ctx, userID, id, key)
	if err != nil {
		return apperr.Upstream("failed to attach image", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ImageKey returns the storage key of the word's image.
func (m *Manager) ImageKey(ctx context.Context, userID, id uuid.UUID) (string, error) {
	w, err := m.Get(ctx, userID, id)
	if err != nil {
		return "", err
	}
	if w.ImageKey == nil || *w.ImageKey == "" {
		return "", ErrNoImage
	}
	return *w.ImageKey, nil
}
