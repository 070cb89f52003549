package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:   http.StatusBadRequest,
		KindBadRequest:   http.StatusBadRequest,
		KindConflict:     http.StatusBadRequest,
		KindNotFound:     http.StatusNotFound,
		KindUnauthorized: http.StatusUnauthorized,
		KindForbidden:    http.StatusForbidden,
		KindRateLimited:  http.StatusTooManyRequests,
		KindUnavailable:  http.StatusServiceUnavailable,
		KindInternal:     http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, kind.HTTPStatus(), kind)
	}
}

func TestIsMatchesByKind(t *testing.T) {
	err := fmt.Errorf("login: %w", Forbidden("Account is locked"))

	assert.True(t, errors.Is(err, Forbidden("")))
	assert.False(t, errors.Is(err, NotFound("")))
}

func TestFrom(t *testing.T) {
	cause := errors.New("connection refused")

	wrapped := From(fmt.Errorf("outer: %w", Internal("Registration failed", cause)))
	assert.Equal(t, KindInternal, wrapped.Kind)
	assert.Equal(t, "Registration failed", wrapped.Message)
	assert.ErrorIs(t, wrapped, cause)

	foreign := From(cause)
	assert.Equal(t, KindInternal, foreign.Kind)
	assert.Equal(t, "Internal server error", foreign.Message)
}
