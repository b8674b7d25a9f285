package handler

import (
	"net/http"
	"time"

	"enzo/internal/apperr"
	"enzo/internal/auth"
	"enzo/internal/envelope"
	"enzo/internal/middleware"
	"enzo/internal/pagination"
	"enzo/internal/policy"
	"enzo/internal/ratelimit"
)

// Deps holds everything the router wires together.
type Deps struct {
	DB       Pinger
	Version  string
	Verifier auth.TokenVerifier
	Policy   policy.Policy
	Users    middleware.UserResolver
	Folders  FolderService
	Words    WordService
	Images   ImageStore // nil disables the image routes
	Pages    pagination.Policy

	Limiter         ratelimit.Limiter // nil disables rate limiting
	RateLimit       int               // per user
	ClientRateLimit int               // per client address, ahead of token verification
	RateLimitWindow time.Duration
	RequestTimeout  time.Duration
}

// NewRouter registers all routes and wraps them in the request middleware.
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()
	RegisterRoutes(mux, d)

	return middleware.Chain(mux,
		middleware.RequestID,
		middleware.AccessLog,
		middleware.Recover,
		middleware.Timeout(d.RequestTimeout),
	)
}

// RegisterRoutes registers all HTTP routes with the provided mux.
func RegisterRoutes(mux *http.ServeMux, d Deps) {
	pages := d.Pages
	if pages.DefaultLimit == 0 {
		pages = pagination.DefaultPolicy()
	}

	protect := func(h http.HandlerFunc) http.Handler {
		return middleware.Chain(h,
			middleware.ClientRateLimit(d.Limiter, d.ClientRateLimit, d.RateLimitWindow),
			middleware.RequireAuth(d.Verifier, d.Policy, d.Users),
			middleware.RateLimit(d.Limiter, d.RateLimit, d.RateLimitWindow),
		)
	}

	folders := NewFoldersHandler(d.Folders, pages)
	words := NewWordsHandler(d.Words, d.Images, pages)

	// Health (no auth required)
	mux.HandleFunc("GET /api/v1/health", HealthHandler(d.DB, d.Version))

	mux.Handle("GET /api/v1/auth/current-user", protect(CurrentUser))

	mux.Handle("GET /api/v1/folders", protect(folders.List))
	mux.Handle("POST /api/v1/folders", protect(folders.Create))
	mux.Handle("GET /api/v1/folders/{folderId}", protect(folders.Get))
	mux.Handle("PUT /api/v1/folders/{folderId}", protect(folders.Update))
	mux.Handle("DELETE /api/v1/folders/{folderId}", protect(folders.Delete))

	mux.Handle("GET /api/v1/users/{userId}/folders/{folderId}/wordlist", protect(words.ListByFolder))
	mux.Handle("POST /api/v1/users/{userId}/folders/{folderId}/words", protect(words.Create))

	mux.Handle("GET /api/v1/words/{wordId}", protect(words.Get))
	mux.Handle("PUT /api/v1/words/{wordId}", protect(words.Update))
	mux.Handle("DELETE /api/v1/words/{wordId}", protect(words.Delete))
	mux.Handle("POST /api/v1/words/{wordId}/image", protect(words.UploadImage))
	mux.Handle("GET /api/v1/words/{wordId}/image", protect(words.GetImage))

	// Everything else gets an envelope rather than the mux's plain-text 404.
	mux.HandleFunc("/", notFoundHandler)
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	envelope.WriteError(w, apperr.New(apperr.KindNotFound, "Route not found"))
}
