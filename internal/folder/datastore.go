package folder

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

// Datastore handles persistence operations for folders.
// It performs only database operations and returns raw errors.
// Every query is scoped to the owning user.
type Datastore struct {
	db DBTX
}

// NewDatastore creates a new folder datastore.
func NewDatastore(db DBTX) *Datastore {
	return &Datastore{db: db}
}

const folderColumns = `id, owner_user_id, name, description, color, icon, created_at, updated_at`

func scanFolder(row interface{ Scan(...any) error }) (*Folder, error) {
	f := &Folder{}
	if err := row.Scan(
		&f.ID, &f.OwnerUserID, &f.Name, &f.Description, &f.Color, &f.Icon, &f.CreatedAt, &f.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return f, nil
}

// Create inserts a new folder.
func (ds *Datastore) Create(ctx context.Context, ownerID uuid.UUID, in CreateInput) (*Folder, error) {
	now := time.Now().UTC()
	f := &Folder{
		ID:          uuid.New(),
		OwnerUserID: ownerID,
		Name:        in.Name,
		Description: in.Description,
		Color:       in.Color,
		Icon:        in.Icon,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	query := `
		INSERT INTO folders (id, owner_user_id, name, description, color, icon, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	err := ds.db.QueryRowContext(ctx, query,
		f.ID, f.OwnerUserID, f.Name, f.Description, f.Color, f.Icon, f.CreatedAt, f.UpdatedAt,
	).Scan(&f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return f, nil
}

// GetByID retrieves a folder owned by ownerID.
// Returns sql.ErrNoRows if it does not exist or belongs to someone else.
func (ds *Datastore) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*Folder, error) {
	query := `
		SELECT ` + folderColumns + `
		FROM folders
		WHERE id = $1 AND owner_user_id = $2`

	return scanFolder(ds.db.QueryRowContext(ctx, query, id, ownerID))
}

// Exists reports whether ownerID owns the folder.
func (ds *Datastore) Exists(ctx context.Context, ownerID, id uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM folders WHERE id = $1 AND owner_user_id = $2)`
	var exists bool
	err := ds.db.QueryRowContext(ctx, query, id, ownerID).Scan(&exists)
	return exists, err
}

// Update applies the non-nil fields of in.
// Returns sql.ErrNoRows if the folder is not owned by ownerID.
func (ds *Datastore) Update(ctx context.Context, ownerID, id uuid.UUID, in UpdateInput) (*Folder, error) {
	query := `
		UPDATE folders
		SET name = COALESCE($3, name),
			description = COALESCE($4, description),
			color = COALESCE($5, color),
			icon = COALESCE($6, icon),
			updated_at = NOW()
		WHERE id = $1 AND owner_user_id = $2
		RETURNING ` + folderColumns

	return scanFolder(ds.db.QueryRowContext(ctx, query,
		id, ownerID, in.Name, in.Description, in.Color, in.Icon,
	))
}

// Delete removes a folder owned by ownerID. Words go with it.
// Returns rows affected count for caller to interpret.
func (ds *Datastore) Delete(ctx context.Context, ownerID, id uuid.UUID) (int64, error) {
	query := `DELETE FROM folders WHERE id = $1 AND owner_user_id = $2`

	result, err := ds.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// List retrieves a page of the owner's folders in creation order.
func (ds *Datastore) List(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*Folder, error) {
	query := `
		SELECT ` + folderColumns + `
		FROM folders
		WHERE owner_user_id = $1
		ORDER BY created_at ASC, id ASC
		LIMIT $2 OFFSET $3`

	rows, err := ds.db.QueryContext(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	folders := make([]*Folder, 0, limit)
	for rows.Next() {
		f, err := scanFolder(rows)
		if err != nil {
			return nil, err
		}
		folders = append(folders, f)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return folders, nil
}
