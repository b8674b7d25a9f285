package handler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"enzo/internal/auth"
	"enzo/internal/folder"
	"enzo/internal/imagestore"
	"enzo/internal/pagination"
	"enzo/internal/user"
	"enzo/internal/word"
)

const allowedEmail = "dinhthongchau@gmail.com"

// tokenVerifier accepts tokens of the form "token:<email>".
type tokenVerifier struct{}

func (tokenVerifier) VerifyToken(_ context.Context, token string) (auth.Identity, error) {
	email, ok := strings.CutPrefix(token, "token:")
	if !ok || email == "" {
		return auth.Identity{}, fmt.Errorf("%w: signature is invalid", auth.ErrInvalidToken)
	}
	return auth.Identity{SubjectID: "uid-" + email, Email: email, EmailVerified: true}, nil
}

type fakeUsers struct {
	mu    sync.Mutex
	bySub map[string]*user.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{bySub: make(map[string]*user.User)}
}

func (f *fakeUsers) EnsureFromIdentity(_ context.Context, identity auth.Identity) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.bySub[identity.SubjectID]; ok {
		return u, nil
	}
	u := &user.User{
		ID:          uuid.New(),
		Email:       identity.Email,
		FirebaseUID: identity.SubjectID,
		Role:        user.RoleUser,
		CreatedAt:   time.Now().UTC(),
	}
	f.bySub[identity.SubjectID] = u
	return u, nil
}

func (f *fakeUsers) idFor(email string) uuid.UUID {
	u, _ := f.EnsureFromIdentity(context.Background(), auth.Identity{SubjectID: "uid-" + email, Email: email})
	return u.ID
}

// fakeFolders keeps folders in creation order per owner.
type fakeFolders struct {
	mu      sync.Mutex
	byOwner map[uuid.UUID][]*folder.Folder
	err     error
}

func newFakeFolders() *fakeFolders {
	return &fakeFolders{byOwner: make(map[uuid.UUID][]*folder.Folder)}
}

func (f *fakeFolders) List(_ context.Context, ownerID uuid.UUID, page pagination.Request) ([]*folder.Folder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return pagination.Apply(f.byOwner[ownerID], page), nil
}

func (f *fakeFolders) Get(_ context.Context, ownerID, id uuid.UUID) (*folder.Folder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, fl := range f.byOwner[ownerID] {
		if fl.ID == id {
			return fl, nil
		}
	}
	return nil, folder.ErrNotFound
}

func (f *fakeFolders) EnsureOwned(ctx context.Context, ownerID, id uuid.UUID) error {
	_, err := f.Get(ctx, ownerID, id)
	return err
}

func (f *fakeFolders) Create(_ context.Context, ownerID uuid.UUID, in folder.CreateInput) (*folder.Folder, error) {
	if err := in.Normalize(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now().UTC()
	fl := &folder.Folder{
		ID:          uuid.New(),
		OwnerUserID: ownerID,
		Name:        in.Name,
		Description: in.Description,
		Color:       in.Color,
		Icon:        in.Icon,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.byOwner[ownerID] = append(f.byOwner[ownerID], fl)
	return fl, nil
}

func (f *fakeFolders) Update(ctx context.Context, ownerID, id uuid.UUID, in folder.UpdateInput) (*folder.Folder, error) {
	if in.IsEmpty() {
		return nil, folder.ErrNoUpdateFields
	}
	if err := in.Normalize(); err != nil {
		return nil, err
	}
	fl, err := f.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		fl.Name = *in.Name
	}
	return fl, nil
}

func (f *fakeFolders) Delete(_ context.Context, ownerID, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := f.byOwner[ownerID]
	for i, fl := range list {
		if fl.ID == id {
			f.byOwner[ownerID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return folder.ErrNotFound
}

// fakeWords stores words in creation order and checks folder ownership
// through fakeFolders.
type fakeWords struct {
	mu      sync.Mutex
	folders *fakeFolders
	words   []*word.Word
}

func (f *fakeWords) ListByFolder(ctx context.Context, userID, folderID uuid.UUID, page pagination.Request) (*word.FolderWords, error) {
	if err := f.folders.EnsureOwned(ctx, userID, folderID); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var inFolder []*word.Word
	for _, w := range f.words {
		if w.FolderID == folderID && w.UserID == userID {
			inFolder = append(inFolder, w)
		}
	}
	return &word.FolderWords{
		FolderID: folderID,
		UserID:   userID,
		Words:    pagination.Apply(inFolder, page),
		Limit:    page.Limit,
		Skip:     page.Skip,
	}, nil
}

func (f *fakeWords) Get(_ context.Context, userID, id uuid.UUID) (*word.Word, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, w := range f.words {
		if w.ID == id && w.UserID == userID {
			return w, nil
		}
	}
	return nil, word.ErrNotFound
}

func (f *fakeWords) Create(ctx context.Context, userID, folderID uuid.UUID, in word.CreateInput) (*word.Word, error) {
	if err := in.Normalize(); err != nil {
		return nil, err
	}
	if err := f.folders.EnsureOwned(ctx, userID, folderID); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now().UTC()
	w := &word.Word{
		ID:         uuid.New(),
		FolderID:   folderID,
		UserID:     userID,
		Text:       in.Text,
		Definition: in.Definition,
		Examples:   in.Examples,
		ImageURLs:  in.ImageURLs,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	f.words = append(f.words, w)
	return w, nil
}

func (f *fakeWords) Update(ctx context.Context, userID, id uuid.UUID, in word.UpdateInput) (*word.Word, error) {
	if in.IsEmpty() {
		return nil, word.ErrNoUpdateFields
	}
	if err := in.Normalize(); err != nil {
		return nil, err
	}
	w, err := f.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if in.Text != nil {
		w.Text = *in.Text
	}
	if in.Definition != nil {
		w.Definition = *in.Definition
	}
	if in.Examples != nil {
		w.Examples = *in.Examples
	}
	if in.ImageURLs != nil {
		w.ImageURLs = *in.ImageURLs
	}
	if in.PartOfSpeech != nil {
		w.PartOfSpeech = in.PartOfSpeech
	}
	if in.Pronunciation != nil {
		w.Pronunciation = in.Pronunciation
	}
	if in.Notes != nil {
		w.Notes = in.Notes
	}
	w.UpdatedAt = time.Now().UTC()
	return w, nil
}

func (f *fakeWords) Delete(_ context.Context, userID, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, w := range f.words {
		if w.ID == id && w.UserID == userID {
			f.words = append(f.words[:i], f.words[i+1:]...)
			return nil
		}
	}
	return word.ErrNotFound
}

func (f *fakeWords) AttachImage(ctx context.Context, userID, id uuid.UUID, key string) error {
	w, err := f.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	w.ImageKey = &key
	return nil
}

func (f *fakeWords) ImageKey(ctx context.Context, userID, id uuid.UUID) (string, error) {
	w, err := f.Get(ctx, userID, id)
	if err != nil {
		return "", err
	}
	if w.ImageKey == nil {
		return "", word.ErrNoImage
	}
	return *w.ImageKey, nil
}

type fakeImages struct{}

func (fakeImages) PresignUpload(_ context.Context, key, contentType string) (*imagestore.Upload, error) {
	return &imagestore.Upload{Key: key, URL: "https://s3.example/" + key, Method: "PUT"}, nil
}

func (fakeImages) PresignDownload(_ context.Context, key string) (*imagestore.Download, error) {
	return &imagestore.Download{URL: "https://s3.example/" + key}, nil
}

type fakePinger struct{ err error }

func (p fakePinger) Health(context.Context) error { return p.err }
