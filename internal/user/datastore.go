package user

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// DBTX is the interface for database operations.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Datastore handles database operations for users.
type Datastore struct {
	db DBTX
}

// NewDatastore creates a new user datastore.
func NewDatastore(db DBTX) *Datastore {
	return &Datastore{db: db}
}

const userColumns = `id, email, name, firebase_uid, role, created_at`

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	u := &User{}
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.FirebaseUID, &u.Role, &u.CreatedAt); err != nil {
		return nil, err
	}
	return u, nil
}

// Insert creates a user unless one already exists for the Firebase UID.
// It returns sql.ErrNoRows when the row already existed.
func (ds *Datastore) Insert(ctx context.Context, u *User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO users (id, email, name, firebase_uid, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (firebase_uid) DO NOTHING
		RETURNING id, created_at`

	return ds.db.QueryRowContext(ctx, query,
		u.ID, u.Email, u.Name, u.FirebaseUID, u.Role, u.CreatedAt,
	).Scan(&u.ID, &u.CreatedAt)
}

// GetByID retrieves a user by ID.
func (ds *Datastore) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(ds.db.QueryRowContext(ctx, query, id))
}

// GetByFirebaseUID retrieves a user by Firebase UID.
func (ds *Datastore) GetByFirebaseUID(ctx context.Context, firebaseUID string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE firebase_uid = $1`
	return scanUser(ds.db.QueryRowContext(ctx, query, firebaseUID))
}
