package user

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"enzo/internal/apperr"
	"enzo/internal/auth"
)

// Domain errors
var (
	ErrNotFound       = errors.New("user not found")
	ErrInvalidSubject = errors.New("identity has no subject")
)

// Manager handles business logic for users.
type Manager struct {
	ds *Datastore
}

// NewManager creates a new user manager.
func NewManager(ds *Datastore) *Manager {
	return &Manager{ds: ds}
}

// EnsureFromIdentity returns the user for a verified identity, creating it
// on first sight. Email and name come from the token; role comes from the
// token when it names a known role and defaults to RoleUser.
func (m *Manager) EnsureFromIdentity(ctx context.Context, identity auth.Identity) (*User, error) {
	if identity.SubjectID == "" {
		return nil, ErrInvalidSubject
	}

	u, err := m.ds.GetByFirebaseUID(ctx, identity.SubjectID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.Upstream("failed to get user", err)
	}

	role := strings.ToLower(strings.TrimSpace(identity.Role))
	if !ValidRole(role) {
		role = RoleUser
	}

	u = &User{
		Email:       strings.TrimSpace(identity.Email),
		Name:        strings.TrimSpace(identity.Name),
		FirebaseUID: identity.SubjectID,
		Role:        role,
	}

	err = m.ds.Insert(ctx, u)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.Upstream("failed to create user", err)
	}

	// Lost a race with a concurrent first request for the same subject.
	u, err = m.ds.GetByFirebaseUID(ctx, identity.SubjectID)
	if err != nil {
		return nil, apperr.Upstream("failed to get user", err)
	}
	return u, nil
}

// GetByID retrieves a user by ID.
func (m *Manager) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := m.ds.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, apperr.Upstream("failed to get user", err)
	}
	return u, nil
}
