package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestNewAppError creates and validates an error
func TestNewAppError(t *testing.T) {
	cause := errors.New("underlying error")
	err := New(KindValidation, "Test error", cause)

	assert.Equal(t, KindValidation, err.Kind)
	assert.Equal(t, "Test error", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestWithSuggestion(t *testing.T) {
	err := New(KindValidation, "Test", nil).WithSuggestion("Try something else")

	assert.True(t, err.HasSuggestion())
	assert.Equal(t, "Try something else", err.Suggestion)
}

func TestFromStatus(t *testing.T) {
	tests := []struct {
		status int
		kind   Kind
	}{
		{http.StatusUnauthorized, KindAuth},
		{http.StatusForbidden, KindForbidden},
		{http.StatusNotFound, KindNotFound},
		{http.StatusInternalServerError, KindServer},
		{http.StatusServiceUnavailable, KindServer},
		{http.StatusBadRequest, KindValidation},
		{http.StatusConflict, KindValidation},
		{http.StatusUnprocessableEntity, KindValidation},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			err := FromStatus(tt.status, "")
			assert.Equal(t, tt.kind, err.Kind)
			assert.Equal(t, tt.status, err.StatusCode)
		})
	}
}

func TestFromStatusKeepsServerMessage(t *testing.T) {
	err := FromStatus(http.StatusBadRequest, "resolution note is required")
	assert.Equal(t, "resolution note is required", err.Message)
}

func TestFromTransport(t *testing.T) {
	assert.Nil(t, FromTransport(nil))
	assert.Equal(t, KindTimeout, FromTransport(context.DeadlineExceeded).Kind)
	assert.Equal(t, KindTimeout, FromTransport(fmt.Errorf("get: %w", context.DeadlineExceeded)).Kind)
	assert.Equal(t, KindNetwork, FromTransport(errors.New("dial tcp: connection refused")).Kind)

	biz := BusinessError("too many rows", "")
	assert.Same(t, biz, FromTransport(biz))
}

func TestIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("export: %w", BusinessError("too many rows", "narrow the filter"))

	assert.True(t, errors.Is(err, &AppError{Kind: KindBusiness}))
	assert.False(t, errors.Is(err, &AppError{Kind: KindServer}))
	assert.Equal(t, KindBusiness, KindOf(err))
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(TimeoutError(nil)))
	assert.True(t, IsTransient(ServerError(502, "")))
	assert.True(t, IsTransient(NetworkError(nil)))
	assert.False(t, IsTransient(SessionExpiredError()))
	assert.False(t, IsTransient(errors.New("plain")))
}

func TestFormatError(t *testing.T) {
	assert.Empty(t, FormatError(nil))

	out := FormatError(TimeoutError(nil))
	assert.Contains(t, out, "(timeout)")
	assert.Contains(t, out, "Suggestion:")

	plain := FormatError(errors.New("boom"))
	assert.Contains(t, plain, "Error: boom")
	assert.NotContains(t, plain, "(unknown)")
}
