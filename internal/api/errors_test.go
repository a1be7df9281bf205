package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prismchat/prism/internal/usage"
)

func TestHandleError_QuotaError(t *testing.T) {
	rec := httptest.NewRecorder()
	resetAt := time.Now().Add(time.Hour).UTC().Truncate(time.Second)

	HandleError(rec, &usage.QuotaError{
		Kind:    usage.KindDailyLimit,
		Limit:   5,
		ResetAt: resetAt,
	})

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	var body QuotaResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "DAILY_LIMIT_REACHED", body.Kind)
	assert.Equal(t, 5, body.Limit)
	assert.Equal(t, 0, body.Remaining)
	assert.True(t, body.ResetAt.Equal(resetAt))
}

func TestHandleError_WrappedQuotaError(t *testing.T) {
	rec := httptest.NewRecorder()
	err := fmt.Errorf("checking pro usage: %w", &usage.QuotaError{Kind: usage.KindProLimit, Limit: 500})

	HandleError(rec, err)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	var body QuotaResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "DAILY_PRO_LIMIT_REACHED", body.Kind)
}

func TestHandleError_UserNotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, fmt.Errorf("loading record: %w", usage.ErrUserNotFound))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleError_AppError(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, ErrUnauthorized)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleError_UnknownErrorIs500(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, errors.New("connection refused"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal server error", body.Error, "store failures must not leak details")
}
