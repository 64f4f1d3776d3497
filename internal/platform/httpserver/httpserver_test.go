package httpserver

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"artemiz/internal/platform/config"
)

func TestNew(t *testing.T) {
	h := http.NotFoundHandler()

	t.Run("zero config uses defaults", func(t *testing.T) {
		srv := New(":0", h, config.HTTPConfig{})
		assert.Equal(t, 5*time.Second, srv.ReadHeaderTimeout)
		assert.Equal(t, 15*time.Second, srv.ReadTimeout)
		assert.Equal(t, 30*time.Second, srv.WriteTimeout)
		assert.Equal(t, 60*time.Second, srv.IdleTimeout)
	})

	t.Run("configured timeouts win", func(t *testing.T) {
		srv := New(":0", h, config.HTTPConfig{ReadTimeout: time.Second, WriteTimeout: 2 * time.Second, IdleTimeout: 3 * time.Second})
		assert.Equal(t, time.Second, srv.ReadTimeout)
		assert.Equal(t, 2*time.Second, srv.WriteTimeout)
		assert.Equal(t, 3*time.Second, srv.IdleTimeout)
	})
}
