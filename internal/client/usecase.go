package client

import (
	"context"

	"github.com/google/uuid"

	"enzo/internal/folder"
	"enzo/internal/user"
	"enzo/internal/word"
)

func checkPage(p Page) *Failure {
	if p.Limit < 0 || p.Skip < 0 {
		return &Failure{Kind: FailureInvalidRequest, Code: "INVALID_PAGE_REQUEST", Message: "limit and skip must not be negative"}
	}
	return nil
}

// GetCurrentUser returns the signed-in user.
type GetCurrentUser struct {
	users UserRepository
}

func NewGetCurrentUser(users UserRepository) *GetCurrentUser {
	return &GetCurrentUser{users: users}
}

func (uc *GetCurrentUser) Execute(ctx context.Context) Result[*user.User] {
	return uc.users.CurrentUser(ctx)
}

// GetFolders returns one page of the user's folders.
type GetFolders struct {
	folders FolderRepository
}

func NewGetFolders(folders FolderRepository) *GetFolders {
	return &GetFolders{folders: folders}
}

func (uc *GetFolders) Execute(ctx context.Context, page Page) Result[[]*folder.Folder] {
	if f := checkPage(page); f != nil {
		return Fail[[]*folder.Folder](f)
	}
	return uc.folders.Folders(ctx, page)
}

// GetFolderWords returns one page of a folder's words. A nil userID is
// resolved to the signed-in user first.
type GetFolderWords struct {
	users UserRepository
	words WordRepository
}

func NewGetFolderWords(users UserRepository, words WordRepository) *GetFolderWords {
	return &GetFolderWords{users: users, words: words}
}

func (uc *GetFolderWords) Execute(ctx context.Context, userID, folderID uuid.UUID, page Page) Result[*word.FolderWords] {
	if f := checkPage(page); f != nil {
		return Fail[*word.FolderWords](f)
	}
	if userID == uuid.Nil {
		me := uc.users.CurrentUser(ctx)
		if !me.IsOk() {
			return Fail[*word.FolderWords](me.Failure())
		}
		userID = me.Value().ID
	}
	return uc.words.FolderWords(ctx, userID, folderID, page)
}

// GetWord returns a single word.
type GetWord struct {
	words WordRepository
}

func NewGetWord(words WordRepository) *GetWord {
	return &GetWord{words: words}
}

func (uc *GetWord) Execute(ctx context.Context, id uuid.UUID) Result[*word.Word] {
	return uc.words.Word(ctx, id)
}
