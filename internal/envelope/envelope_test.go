package envelope

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enzo/internal/apperr"
)

func fixedClock() time.Time {
	return time.Date(2025, 3, 14, 9, 26, 53, 589_793_238, time.FixedZone("ICT", 7*60*60))
}

func TestBuilder_Success(t *testing.T) {
	b := NewBuilder(fixedClock)

	env := b.Success("Folders retrieved", []string{"a", "b"})

	assert.True(t, env.Success)
	assert.Zero(t, env.ErrorCode)
	assert.Empty(t, env.Code)
	assert.Equal(t, "2025-03-14T02:26:53.589Z", env.Timestamp)
	assert.Equal(t, http.StatusOK, env.Status())
}

func TestBuilder_Error(t *testing.T) {
	b := NewBuilder(fixedClock)

	env := b.Error("Access denied", apperr.CodeForbiddenUser, http.StatusForbidden, "")

	assert.False(t, env.Success)
	assert.Nil(t, env.Data)
	assert.Equal(t, http.StatusForbidden, env.ErrorCode)
	assert.Equal(t, "Access denied", env.ErrorMessage)
	assert.Equal(t, http.StatusForbidden, env.Status())
}

func TestBuilder_ErrorZeroCodeIsNeverSuccess(t *testing.T) {
	env := NewBuilder(fixedClock).Error("oops", "", 0, "")

	assert.False(t, env.Success)
	assert.Equal(t, http.StatusInternalServerError, env.ErrorCode)
}

func TestSuccessIffNoErrorCode(t *testing.T) {
	b := NewBuilder(nil)
	envs := []Envelope{
		b.Success("ok", nil),
		b.Success("ok", map[string]int{"n": 1}),
		b.Error("bad", apperr.CodeValidation, http.StatusBadRequest, "name is required"),
		b.FromError(apperr.New(apperr.KindInvalidToken, "Invalid ID token")),
		b.FromError(apperr.From(errors.New("boom"))),
	}
	for _, env := range envs {
		assert.Equal(t, env.ErrorCode == 0, env.Success, "envelope %+v", env)
	}
}

func TestTimestampFormat(t *testing.T) {
	env := Success("ok", nil)

	parsed, err := time.Parse(TimestampLayout, env.Timestamp)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), parsed, 5*time.Second)
}

func TestFromError_Detail(t *testing.T) {
	appErr := apperr.WithCode(apperr.KindNotFound, apperr.CodeFolderNotFound, "Folder not found")
	appErr.Detail = "folder does not exist or is not yours"

	env := NewBuilder(fixedClock).FromError(appErr)

	assert.Equal(t, "Folder not found", env.Message)
	assert.Equal(t, apperr.CodeFolderNotFound, env.Code)
	assert.Equal(t, http.StatusNotFound, env.ErrorCode)
	assert.Equal(t, "folder does not exist or is not yours", env.ErrorMessage)
}

func TestWriteError_JSONShape(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteError(rec, apperr.New(apperr.KindMissingToken, "Not authenticated"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "NOT_AUTHENTICATED", body["code"])
	assert.Equal(t, float64(401), body["error_code"])
	assert.Contains(t, body, "data")
	assert.Contains(t, body, "timestamp")
}

func TestWriteSuccess_OmitsErrorFields(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteSuccess(rec, "ok", map[string]string{"status": "healthy"})

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.NotContains(t, body, "error_code")
	assert.NotContains(t, body, "error_message")
	assert.NotContains(t, body, "code")
}
