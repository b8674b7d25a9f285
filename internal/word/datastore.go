package word

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// DBTX is the interface for database operations.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Datastore handles persistence operations for words.
// It performs only database operations and returns raw errors.
type Datastore struct {
	db DBTX
}

// NewDatastore creates a new word datastore.
func NewDatastore(db DBTX) *Datastore {
	return &Datastore{db: db}
}

const wordColumns = `id, folder_id, user_id, text, definition, examples, image_urls,
	part_of_speech, pronunciation, notes, image_key, created_at, updated_at`

func scanWord(row interface{ Scan(...any) error }) (*Word, error) {
	w := &Word{}
	if err := row.Scan(
		&w.ID, &w.FolderID, &w.UserID, &w.Text, &w.Definition,
		pq.Array(&w.Examples), pq.Array(&w.ImageURLs),
		&w.PartOfSpeech, &w.Pronunciation, &w.Notes, &w.ImageKey,
		&w.CreatedAt, &w.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if w.Examples == nil {
		w.Examples = []string{}
	}
	if w.ImageURLs == nil {
		w.ImageURLs = []string{}
	}
	return w, nil
}

// Create inserts a new word into a folder.
func (ds *Datastore) Create(ctx context.Context, userID, folderID uuid.UUID, in CreateInput) (*Word, error) {
	now := time.Now().UTC()
	w := &Word{
		ID:            uuid.New(),
		FolderID:      folderID,
		UserID:        userID,
		Text:          in.Text,
		Definition:    in.Definition,
		Examples:      in.Examples,
		ImageURLs:     in.ImageURLs,
		PartOfSpeech:  in.PartOfSpeech,
		Pronunciation: in.Pronunciation,
		Notes:         in.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	query := `
		INSERT INTO words (id, folder_id, user_id, text, definition, examples, image_urls,
			part_of_speech, pronunciation, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at`

	err := ds.db.QueryRowContext(ctx, query,
		w.ID, w.FolderID, w.UserID, w.Text, w.Definition,
		pq.Array(w.Examples), pq.Array(w.ImageURLs),
		w.PartOfSpeech, w.Pronunciation, w.Notes, w.CreatedAt, w.UpdatedAt,
	).Scan(&w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return w, nil
}

// GetByID retrieves a word belonging to userID.
// Returns sql.ErrNoRows if not found.
func (ds *Datastore) GetByID(ctx context.Context, userID, id uuid.UUID) (*Word, error) {
	query := `
		SELECT ` + wordColumns + `
		FROM words
		WHERE id = $1 AND user_id = $2`

	return scanWord(ds.db.QueryRowContext(ctx, query, id, userID))
}

// ListByFolder retrieves a page of a folder's words in creation order.
func (ds *Datastore) ListByFolder(ctx context.Context, userID, folderID uuid.UUID, limit, offset int) ([]*Word, error) {
	query := `
		SELECT ` + wordColumns + `
		FROM words
		WHERE user_id = $1 AND folder_id = $2
		ORDER BY created_at ASC, id ASC
		LIMIT $3 OFFSET $4`

	rows, err := ds.db.QueryContext(ctx, query, userID, folderID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	words := make([]*Word, 0, limit)
	for rows.Next() {
		w, err := scanWord(rows)
		if err != nil {
			return nil, err
		}
		words = append(words, w)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return words, nil
}

// Update applies the non-nil fields of in to a word belonging to userID.
// Returns sql.ErrNoRows if not found.
func (ds *Datastore) Update(ctx context.Context, userID, id uuid.UUID, in UpdateInput) (*Word, error) {
	query := `
		UPDATE words
		SET text = COALESCE($3, text),
			definition = COALESCE($4, definition),
			examples = COALESCE($5::text[], examples),
			image_urls = COALESCE($6::text[], image_urls),
			part_of_speech = COALESCE($7, part_of_speech),
			pronunciation = COALESCE($8, pronunciation),
			notes = COALESCE($9, notes),
			updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + wordColumns

	return scanWord(ds.db.QueryRowContext(ctx, query,
		id, userID, in.Text, in.Definition,
		optionalArray(in.Examples), optionalArray(in.ImageURLs),
		in.PartOfSpeech, in.Pronunciation, in.Notes,
	))
}

// optionalArray binds an unset slice as NULL so COALESCE keeps the column.
func optionalArray(values *[]string) any {
	if values == nil {
		return nil
	}
	return pq.Array(*values)
}

// SetImageKey records the storage key of the word's image.
// Returns rows affected count for caller to interpret.
func (ds *Datastore) SetImageKey(ctx context.Context, userID, id uuid.UUID, key string) (int64, error) {
	query := `
		UPDATE words
		SET image_key = $3, updated_at = NOW()
		WHERE id = $1 AND user_id = $2`

	result, err := ds.db.ExecContext(ctx, query, id, userID, key)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// Delete removes a word belonging to userID.
// Returns rows affected count for caller to interpret.
func (ds *Datastore) Delete(ctx context.Context, userID, id uuid.UUID) (int64, error) {
	query := `DELETE FROM words WHERE id = $1 AND user_id = $2`

	result, err := ds.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
