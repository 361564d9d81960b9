package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errSentinel = New(http.StatusNotFound, "thing not found")

func TestAppError_IsMatchesSentinel(t *testing.T) {
	wrapped := fmt.Errorf("lookup: %w", errSentinel)
	assert.ErrorIs(t, wrapped, errSentinel)

	copyOf := New(http.StatusNotFound, "thing not found")
	assert.ErrorIs(t, copyOf, errSentinel)
	assert.NotErrorIs(t, New(http.StatusBadRequest, "thing not found"), errSentinel)
}

func TestWrapAndUnavailable(t *testing.T) {
	cause := errors.New("dial tcp: refused")

	err := Wrap(cause, http.StatusConflict, "conflict")
	assert.Equal(t, "conflict", err.Error())
	assert.ErrorIs(t, err, cause)

	var appErr *AppError
	require.ErrorAs(t, Unavailable(cause), &appErr)
	assert.Equal(t, http.StatusServiceUnavailable, appErr.Code)
	assert.ErrorIs(t, appErr, cause)
}
