package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enzo/internal/apperr"
	"enzo/internal/envelope"
	"enzo/internal/folder"
	"enzo/internal/user"
	"enzo/internal/word"
)

const testToken = "id-token"

func newAPI(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+testToken {
			envelope.WriteError(w, apperr.New(apperr.KindMissingToken, "Not authenticated"))
			return
		}
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T, srv *httptest.Server, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithTokenProvider(StaticToken(testToken)), WithHTTPClient(srv.Client())}, opts...)
	c, err := New(srv.URL, opts...)
	require.NoError(t, err)
	return c
}

func TestCurrentUser(t *testing.T) {
	me := &user.User{ID: uuid.New(), Email: "dinhthongchau@gmail.com", Role: user.RoleUser}
	srv := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/current-user", r.URL.Path)
		envelope.WriteSuccess(w, "User retrieved successfully", me)
	})

	res := newClient(t, srv).CurrentUser.Execute(context.Background())
	require.True(t, res.IsOk(), "failure: %v", res.Failure())
	assert.Equal(t, me.Email, res.Value().Email)
	assert.Equal(t, me.ID, res.Value().ID)
}

func TestFolders_SendsPage(t *testing.T) {
	srv := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		assert.Equal(t, "4", r.URL.Query().Get("skip"))
		envelope.WriteSuccess(w, "Retrieved 1 folder(s)", []*folder.Folder{{ID: uuid.New(), Name: "Travel"}})
	})

	res := newClient(t, srv).Folders.Execute(context.Background(), Page{Limit: 2, Skip: 4})
	folders, err := res.Get()
	require.NoError(t, err)
	require.Len(t, folders, 1)
	assert.Equal(t, "Travel", folders[0].Name)
}

func TestFolders_NegativePageNeverCallsServer(t *testing.T) {
	var calls atomic.Int32
	srv := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	res := newClient(t, srv).Folders.Execute(context.Background(), Page{Limit: -1})
	require.False(t, res.IsOk())
	assert.Equal(t, FailureInvalidRequest, res.Failure().Kind)
	assert.Zero(t, calls.Load())
}

func TestFolderWords_ResolvesCurrentUser(t *testing.T) {
	me := uuid.New()
	folderID := uuid.New()
	srv := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/current-user":
			envelope.WriteSuccess(w, "ok", &user.User{ID: me})
		case "/api/v1/users/" + me.String() + "/folders/" + folderID.String() + "/wordlist":
			envelope.WriteSuccess(w, "ok", &word.FolderWords{
				FolderID: folderID,
				UserID:   me,
				Words:    []*word.Word{{ID: uuid.New(), Text: "sea"}},
				Limit:    20,
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			envelope.WriteError(w, apperr.New(apperr.KindNotFound, "Route not found"))
		}
	})

	res := newClient(t, srv).FolderWords.Execute(context.Background(), uuid.Nil, folderID, Page{})
	page, err := res.Get()
	require.NoError(t, err)
	assert.Equal(t, folderID, page.FolderID)
	require.Len(t, page.Words, 1)
	assert.Equal(t, "sea", page.Words[0].Text)
}

func TestFailures(t *testing.T) {
	tests := []struct {
		name     string
		err      *apperr.Error
		wantKind FailureKind
		wantCode string
	}{
		{name: "invalid token", err: apperr.New(apperr.KindInvalidToken, "Invalid ID token"), wantKind: FailureUnauthenticated, wantCode: "INVALID_ID_TOKEN"},
		{name: "forbidden", err: apperr.New(apperr.KindForbiddenUser, "Forbidden user"), wantKind: FailureForbidden, wantCode: "FORBIDDEN_USER"},
		{name: "not found", err: apperr.WithCode(apperr.KindNotFound, apperr.CodeWordNotFound, "Word not found"), wantKind: FailureNotFound, wantCode: "WORD_NOT_FOUND"},
		{name: "bad page", err: apperr.New(apperr.KindInvalidPageRequest, "Invalid page request"), wantKind: FailureInvalidRequest, wantCode: "INVALID_PAGE_REQUEST"},
		{name: "unavailable", err: apperr.New(apperr.KindUpstreamUnavailable, "Service temporarily unavailable"), wantKind: FailureUnavailable, wantCode: "UPSTREAM_UNAVAILABLE"},
		{name: "rate limited", err: apperr.New(apperr.KindRateLimited, "Too many requests"), wantKind: FailureRateLimited, wantCode: "RATE_LIMITED"},
		{name: "internal", err: apperr.New(apperr.KindInternal, "Internal server error"), wantKind: FailureServer, wantCode: "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
				envelope.WriteError(w, tt.err)
			})

			res := newClient(t, srv).Word.Execute(context.Background(), uuid.New())
			require.False(t, res.IsOk())
			f := res.Failure()
			assert.Equal(t, tt.wantKind, f.Kind)
			assert.Equal(t, tt.wantCode, f.Code)
			assert.Equal(t, tt.err.Status(), f.Status)
			assert.Nil(t, res.Value())
		})
	}
}

func TestMissingToken(t *testing.T) {
	srv := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run without a token")
	})

	c, err := New(srv.URL, WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	res := c.CurrentUser.Execute(context.Background())
	require.False(t, res.IsOk())
	assert.Equal(t, FailureUnauthenticated, res.Failure().Kind)
	assert.Equal(t, "NOT_AUTHENTICATED", res.Failure().Code)

	_, err = StaticToken("").Token(context.Background())
	assert.Error(t, err)
}

func TestTimeout(t *testing.T) {
	srv := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	res := newClient(t, srv, WithTimeout(50*time.Millisecond)).CurrentUser.Execute(context.Background())
	require.False(t, res.IsOk())
	assert.Equal(t, FailureNetwork, res.Failure().Kind)
	assert.True(t, res.Failure().Kind.Retryable())
}

func TestNonEnvelopeResponse(t *testing.T) {
	srv := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	res := newClient(t, srv).CurrentUser.Execute(context.Background())
	require.False(t, res.IsOk())
	assert.Equal(t, FailureUnavailable, res.Failure().Kind)
	assert.Equal(t, http.StatusBadGateway, res.Failure().Status)

	srv = newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	})
	res = newClient(t, srv).CurrentUser.Execute(context.Background())
	assert.Equal(t, FailureDecode, res.Failure().Kind)
}

func TestNewRemoteSource_InvalidURL(t *testing.T) {
	for _, raw := range []string{"", "localhost:8080", "ftp://x", "http://"} {
		_, err := NewRemoteSource(raw)
		assert.Error(t, err, raw)
	}
}

func TestResult(t *testing.T) {
	ok := Ok(2)
	doubled := Map(ok, func(v int) int { return v * 2 })
	v, err := doubled.Get()
	require.NoError(t, err)
	assert.Equal(t, 4, v)

	failed := Fail[int](&Failure{Kind: FailureNotFound, Message: "gone"})
	mapped := Map(failed, func(v int) string { return "never" })
	assert.False(t, mapped.IsOk())
	_, err = mapped.Get()
	var f *Failure
	require.True(t, errors.As(err, &f))
	assert.Equal(t, FailureNotFound, f.Kind)
	assert.Equal(t, "not_found", f.Kind.String())
}
