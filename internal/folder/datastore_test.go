package folder

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
)

var folderRowColumns = []string{"id", "owner_user_id", "name", "description", "color", "icon", "created_at", "updated_at"}

func strPtr(s string) *string { return &s }

func TestDatastore_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	ds := NewDatastore(db)
	ctx := context.Background()
	owner := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO folders`).
		WithArgs(sqlmock.AnyArg(), owner, "Travel", nil, "#00FF00", nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	f, err := ds.Create(ctx, owner, CreateInput{Name: "Travel", Color: strPtr("#00FF00")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.Name != "Travel" {
		t.Errorf("expected name 'Travel', got %q", f.Name)
	}
	if f.OwnerUserID != owner {
		t.Errorf("expected owner %v, got %v", owner, f.OwnerUserID)
	}
	if f.ID == uuid.Nil {
		t.Error("expected an ID to be generated")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestDatastore_GetByID_ScopedToOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	ds := NewDatastore(db)
	ctx := context.Background()
	owner := uuid.New()
	id := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT .+ FROM folders WHERE id = \$1 AND owner_user_id = \$2`).
		WithArgs(id, owner).
		WillReturnRows(sqlmock.NewRows(folderRowColumns).
			AddRow(id.String(), owner.String(), "Travel", "Words for trips", nil, nil, now, now))

	f, err := ds.GetByID(ctx, owner, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Description == nil || *f.Description != "Words for trips" {
		t.Errorf("unexpected description: %v", f.Description)
	}
	if f.Color != nil {
		t.Errorf("expected nil color, got %v", *f.Color)
	}

	mock.ExpectQuery(`SELECT .+ FROM folders WHERE id = \$1 AND owner_user_id = \$2`).
		WithArgs(id, uuid.Nil).
		WillReturnError(sql.ErrNoRows)

	if _, err := ds.GetByID(ctx, uuid.Nil, id); err != sql.ErrNoRows {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestDatastore_List_CreationOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	ds := NewDatastore(db)
	ctx := context.Background()
	owner := uuid.New()
	base := time.Now()

	rows := sqlmock.NewRows(folderRowColumns).
		AddRow(uuid.New().String(), owner.String(), "First", nil, nil, nil, base, base).
		AddRow(uuid.New().String(), owner.String(), "Second", nil, nil, nil, base.Add(time.Second), base.Add(time.Second))

	mock.ExpectQuery(`SELECT .+ FROM folders WHERE owner_user_id = \$1 ORDER BY created_at ASC, id ASC LIMIT \$2 OFFSET \$3`).
		WithArgs(owner, 2, 0).
		WillReturnRows(rows)

	folders, err := ds.List(ctx, owner, 2, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(folders) != 2 {
		t.Fatalf("expected 2 folders, got %d", len(folders))
	}
	if folders[0].Name != "First" || folders[1].Name != "Second" {
		t.Errorf("unexpected order: %q, %q", folders[0].Name, folders[1].Name)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestDatastore_List_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	ds := NewDatastore(db)

	mock.ExpectQuery(`SELECT .+ FROM folders`).
		WillReturnRows(sqlmock.NewRows(folderRowColumns))

	folders, err := ds.List(context.Background(), uuid.New(), 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if folders == nil {
		t.Error("expected an empty slice, got nil")
	}
	if len(folders) != 0 {
		t.Errorf("expected 0 folders, got %d", len(folders))
	}
}

func TestDatastore_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	ds := NewDatastore(db)
	ctx := context.Background()
	owner := uuid.New()
	id := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`UPDATE folders`).
		WithArgs(id, owner, "Renamed", nil, nil, nil).
		WillReturnRows(sqlmock.NewRows(folderRowColumns).
			AddRow(id.String(), owner.String(), "Renamed", nil, nil, nil, now, now))

	f, err := ds.Update(ctx, owner, id, UpdateInput{Name: strPtr("Renamed")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Name != "Renamed" {
		t.Errorf("expected name 'Renamed', got %q", f.Name)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestDatastore_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	ds := NewDatastore(db)
	owner := uuid.New()
	id := uuid.New()

	mock.ExpectExec(`DELETE FROM folders WHERE id = \$1 AND owner_user_id = \$2`).
		WithArgs(id, owner).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := ds.Delete(context.Background(), owner, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 row affected, got %d", n)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestDatastore_Exists(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	ds := NewDatastore(db)
	owner := uuid.New()
	id := uuid.New()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(id, owner).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	exists, err := ds.Exists(context.Background(), owner, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exists {
		t.Error("expected folder not to exist for this owner")
	}
}
