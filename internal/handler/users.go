package handler

import (
	"net/http"

	"enzo/internal/envelope"
)

// CurrentUser handles GET /api/v1/auth/current-user.
func CurrentUser(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	envelope.WriteSuccess(w, "User retrieved successfully", u)
}
