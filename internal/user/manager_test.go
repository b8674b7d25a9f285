package user

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"enzo/internal/apperr"
	"enzo/internal/auth"
)

var userRowColumns = []string{"id", "email", "name", "firebase_uid", "role", "created_at"}

func newMockManager(t *testing.T) (*Manager, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewManager(NewDatastore(db)), mock
}

func TestManager_EnsureFromIdentity_Existing(t *testing.T) {
	mgr, mock := newMockManager(t)
	ctx := context.Background()

	id := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT .+ FROM users WHERE firebase_uid = \$1`).
		WithArgs("uid-1").
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(id.String(), "dinhthongchau@gmail.com", "Thong", "uid-1", RoleUser, now))

	u, err := mgr.EnsureFromIdentity(ctx, auth.Identity{SubjectID: "uid-1", Email: "dinhthongchau@gmail.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID != id {
		t.Errorf("expected ID %v, got %v", id, u.ID)
	}
	if u.Email != "dinhthongchau@gmail.com" {
		t.Errorf("expected email 'dinhthongchau@gmail.com', got %q", u.Email)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestManager_EnsureFromIdentity_CreatesOnFirstSight(t *testing.T) {
	mgr, mock := newMockManager(t)
	ctx := context.Background()
	now := time.Now()

	mock.ExpectQuery(`SELECT .+ FROM users WHERE firebase_uid = \$1`).
		WithArgs("uid-new").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(sqlmock.AnyArg(), "new@example.com", "New User", "uid-new", RoleUser, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(uuid.New().String(), now))

	u, err := mgr.EnsureFromIdentity(ctx, auth.Identity{
		SubjectID: "uid-new",
		Email:     " new@example.com ",
		Name:      "New User",
		Role:      "wizard",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Role != RoleUser {
		t.Errorf("unknown role should default to %q, got %q", RoleUser, u.Role)
	}
	if u.Email != "new@example.com" {
		t.Errorf("expected trimmed email, got %q", u.Email)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestManager_EnsureFromIdentity_ConcurrentInsert(t *testing.T) {
	mgr, mock := newMockManager(t)
	ctx := context.Background()
	id := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM users WHERE firebase_uid = \$1`).
		WithArgs("uid-race").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}))
	mock.ExpectQuery(`SELECT .+ FROM users WHERE firebase_uid = \$1`).
		WithArgs("uid-race").
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(id.String(), "race@example.com", "", "uid-race", RoleAdmin, time.Now()))

	u, err := mgr.EnsureFromIdentity(ctx, auth.Identity{SubjectID: "uid-race", Email: "race@example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID != id {
		t.Errorf("expected the winner's row, got %v", u.ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestManager_EnsureFromIdentity_StoreDown(t *testing.T) {
	mgr, mock := newMockManager(t)

	mock.ExpectQuery(`SELECT .+ FROM users`).
		WillReturnError(errors.New("connection refused"))

	_, err := mgr.EnsureFromIdentity(context.Background(), auth.Identity{SubjectID: "uid-1"})
	if !errors.Is(err, apperr.ErrUpstreamUnavailable) {
		t.Errorf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestManager_EnsureFromIdentity_EmptySubject(t *testing.T) {
	mgr := NewManager(NewDatastore(nil))

	_, err := mgr.EnsureFromIdentity(context.Background(), auth.Identity{Email: "x@example.com"})
	if err != ErrInvalidSubject {
		t.Errorf("expected ErrInvalidSubject, got %v", err)
	}
}

func TestManager_GetByID(t *testing.T) {
	mgr, mock := newMockManager(t)
	ctx := context.Background()
	id := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM users WHERE id = \$1`).
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	_, err := mgr.GetByID(ctx, id)
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestValidRole(t *testing.T) {
	for _, role := range []string{RoleSuperAdmin, RoleAdmin, RoleUser} {
		if !ValidRole(role) {
			t.Errorf("expected %q to be valid", role)
		}
	}
	if ValidRole("owner") {
		t.Error("expected 'owner' to be invalid")
	}
}
