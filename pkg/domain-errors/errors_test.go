package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodes(t *testing.T) {
	t.Run("wrap keeps the cause reachable", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := Wrap(cause, CodeUnavailable, "registration service unavailable")

		require.ErrorIs(t, err, cause)
		assert.True(t, HasCode(err, CodeUnavailable))
		assert.Equal(t, "registration service unavailable: connection refused", err.Error())
	})

	t.Run("wrap of nil is nil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, CodeInternal, "unused"))
	})

	t.Run("code survives fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("handler: %w", New(CodeNotFound, "session not found"))
		assert.True(t, Is(err, CodeNotFound))
		assert.False(t, Is(err, CodeConflict))
	})

	t.Run("plain errors carry no code", func(t *testing.T) {
		_, ok := From(errors.New("boom"))
		assert.False(t, ok)
	})
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeBadRequest:   http.StatusBadRequest,
		CodeValidation:   http.StatusUnprocessableEntity,
		CodeNotFound:     http.StatusNotFound,
		CodeConflict:     http.StatusConflict,
		CodeInvalidState: http.StatusConflict,
		CodeRateLimited:  http.StatusTooManyRequests,
		CodeUnavailable:  http.StatusBadGateway,
		CodeInternal:     http.StatusInternalServerError,
		Code("unknown"):  http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, HTTPStatus(code), "code %s", code)
	}
}
