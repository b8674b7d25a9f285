package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"enzo/internal/folder"
	"enzo/internal/user"
	"enzo/internal/word"
)

// DefaultTimeout bounds every remote call.
const DefaultTimeout = 10 * time.Second

// maxResponseBytes bounds response bodies.
const maxResponseBytes = 4 << 20

// TokenProvider supplies the Firebase ID token for each call.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenProvider returning a fixed token.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) {
	if t == "" {
		return "", errors.New("no token configured")
	}
	return string(t), nil
}

// Page selects a page. Zero Limit lets the server pick its default.
type Page struct {
	Limit int
	Skip  int
}

func (p Page) query() url.Values {
	q := url.Values{}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Skip > 0 {
		q.Set("skip", strconv.Itoa(p.Skip))
	}
	return q
}

// apiEnvelope mirrors the server response body.
type apiEnvelope[T any] struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	Data         T      `json:"data"`
	Code         string `json:"code"`
	ErrorCode    int    `json:"error_code"`
	ErrorMessage string `json:"error_message"`
	Timestamp    string `json:"timestamp"`
}

// RemoteSource talks HTTP to the API.
type RemoteSource struct {
	baseURL    *url.URL
	httpClient *http.Client
	tokens     TokenProvider
	timeout    time.Duration
}

// Option configures a RemoteSource.
type Option func(*RemoteSource)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(rs *RemoteSource) { rs.httpClient = c }
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(rs *RemoteSource) { rs.timeout = d }
}

// WithTokenProvider sets where bearer tokens come from.
func WithTokenProvider(p TokenProvider) Option {
	return func(rs *RemoteSource) { rs.tokens = p }
}

// NewRemoteSource creates a RemoteSource for the API at baseURL.
func NewRemoteSource(baseURL string, opts ...Option) (*RemoteSource, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: must be http(s)://host", baseURL)
	}

	rs := &RemoteSource{
		baseURL:    u,
		httpClient: http.DefaultClient,
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(rs)
	}
	return rs, nil
}

// CurrentUser fetches the caller's account.
func (rs *RemoteSource) CurrentUser(ctx context.Context) Result[*user.User] {
	return get[*user.User](ctx, rs, "/api/v1/auth/current-user", nil)
}

// Folders fetches one page of the caller's folders.
func (rs *RemoteSource) Folders(ctx context.Context, page Page) Result[[]*folder.Folder] {
	return get[[]*folder.Folder](ctx, rs, "/api/v1/folders", page.query())
}

// FolderWords fetches one page of a folder's words.
func (rs *RemoteSource) FolderWords(ctx context.Context, userID, folderID uuid.UUID, page Page) Result[*word.FolderWords] {
	path := fmt.Sprintf("/api/v1/users/%s/folders/%s/wordlist", userID, folderID)
	return get[*word.FolderWords](ctx, rs, path, page.query())
}

// Word fetches one word.
func (rs *RemoteSource) Word(ctx context.Context, id uuid.UUID) Result[*word.Word] {
	return get[*word.Word](ctx, rs, "/api/v1/words/"+id.String(), nil)
}

func get[T any](ctx context.Context, rs *RemoteSource, path string, query url.Values) Result[T] {
	if rs.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, rs.timeout)
		defer cancel()
	}

	u := *rs.baseURL
	u.Path = rs.baseURL.Path + path
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Fail[T](&Failure{Kind: FailureInvalidRequest, Message: err.Error()})
	}
	req.Header.Set("Accept", "application/json")

	if rs.tokens != nil {
		token, err := rs.tokens.Token(ctx)
		if err != nil {
			return Fail[T](&Failure{Kind: FailureUnauthenticated, Message: err.Error()})
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := rs.httpClient.Do(req)
	if err != nil {
		return Fail[T](&Failure{Kind: FailureNetwork, Message: err.Error()})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Fail[T](&Failure{Kind: FailureNetwork, Status: resp.StatusCode, Message: err.Error()})
	}

	var env apiEnvelope[T]
	if err := json.Unmarshal(body, &env); err != nil {
		if resp.StatusCode >= 400 {
			return Fail[T](&Failure{Kind: kindForStatus(resp.StatusCode), Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)})
		}
		return Fail[T](&Failure{Kind: FailureDecode, Status: resp.StatusCode, Message: err.Error()})
	}

	if !env.Success || resp.StatusCode >= 400 {
		status := env.ErrorCode
		if status == 0 {
			status = resp.StatusCode
		}
		msg := env.ErrorMessage
		if msg == "" {
			msg = env.Message
		}
		return Fail[T](&Failure{Kind: kindForStatus(status), Code: env.Code, Status: status, Message: msg})
	}

	return Ok(env.Data)
}
