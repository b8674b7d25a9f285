package client

import (
	"context"

	"github.com/google/uuid"

	"enzo/internal/folder"
	"enzo/internal/user"
	"enzo/internal/word"
)

// UserRepository reads the caller's account.
type UserRepository interface {
	CurrentUser(ctx context.Context) Result[*user.User]
}

// FolderRepository reads folders.
type FolderRepository interface {
	Folders(ctx context.Context, page Page) Result[[]*folder.Folder]
}

// WordRepository reads words.
type WordRepository interface {
	FolderWords(ctx context.Context, userID, folderID uuid.UUID, page Page) Result[*word.FolderWords]
	Word(ctx context.Context, id uuid.UUID) Result[*word.Word]
}

// RemoteSource satisfies every repository directly.
var (
	_ UserRepository   = (*RemoteSource)(nil)
	_ FolderRepository = (*RemoteSource)(nil)
	_ WordRepository   = (*RemoteSource)(nil)
)
