package folder

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
	ErrNotFound       = errors.New("folder not found")
	ErrNoUpdateFields = errors.New("no fields to update")
)

// Manager handles business logic for folders.
// It coordinates operations and translates datastore errors to domain errors.
type Manager struct {
	ds *Datastore
}

// NewManager creates a new folder manager.
func NewManager(ds *Datastore) *Manager {
	return &Manager{ds: ds}
}

// List returns one page of the owner's folders in creation order.
func (m *Manager) List(ctx context.Context, ownerID uuid.UUID, page pagination.Request) ([]*Folder, error) {
	folders, err := m.ds.List(ctx, ownerID, page.Limit, page.Skip)
	if err != nil {
		return nil, apperr.Upstream("failed to list folders", err)
	}
	return folders, nil
}

// Get retrieves a folder owned by ownerID.
func (m *Manager) Get(ctx context.Context, ownerID, id uuid.UUID) (*Folder, error) {
	f, err := m.ds.GetByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, apperr.Upstream("failed to get folder", err)
	}
	return f, nil
}

// EnsureOwned returns ErrNotFound unless ownerID owns the folder.
func (m *Manager) EnsureOwned(ctx context.Context, ownerID, id uuid.UUID) error {
	exists, err := m.ds.Exists(ctx, ownerID, id)
	if err != nil {
		return apperr.Upstream("failed to check folder ownership", err)
	}
	if !exists {
		return ErrNotFound
	}
	return nil
}

// Create validates and stores a new folder.
func (m *Manager) Create(ctx context.Context, ownerID uuid.UUID, in CreateInput) (*Folder, error) {
	if err := in.Normalize(); err != nil {
		return nil, err
	}

	f, err := m.ds.Create(ctx, ownerID, in)
	if err != nil {
		return nil, apperr.Upstream("failed to create folder", err)
	}
	return f, nil
}

// Update applies a partial update to an owned folder.
func (m *Manager) Update(ctx context.Context, ownerID, id uuid.UUID, in UpdateInput) (*Folder, error) {
	if in.IsEmpty() {
		return nil, ErrNoUpdateFields
	}
	if err := in.Normalize(); err != nil {
		return nil, err
	}

	f, err := m.ds.Update(ctx, ownerID, id, in)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, apperr.Upstream("failed to update folder", err)
	}
	return f, nil
}

// Delete removes an owned folder and its words.
func (m *Manager) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	rowsAffected, err := m.ds.Delete(ctx, ownerID, id)
	if err != nil {
		return apperr.Upstream("failed to delete folder", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
