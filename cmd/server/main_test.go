package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"artemiz/internal/audit"
	"artemiz/internal/platform/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		catalogJSON = false
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCatalogCommand(t *testing.T) {
	t.Run("embedded catalog", func(t *testing.T) {
		out, err := runRoot(t, "catalog")
		require.NoError(t, err)
		assert.Contains(t, out, "ARTEMIZ")
		assert.Contains(t, out, "members:      6")
	})

	t.Run("broken file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "catalog.yaml")
		require.NoError(t, os.WriteFile(path, []byte("club: {name: x}\n"), 0o600))
		_, err := runRoot(t, "catalog", path)
		assert.Error(t, err)
	})
}

func TestMigrateRequiresDatabase(t *testing.T) {
	t.Setenv("ARTEMIZ_DATABASE_URL", "")
	_, err := runRoot(t, "migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ARTEMIZ_DATABASE_URL")
}

// shutdownServer stands in for *http.Server. Its Shutdown starts a wizard, the
// way a request still in flight at shutdown would.
type shutdownServer struct {
	app       *app
	done      chan struct{}
	sessionID string
}

func (s *shutdownServer) ListenAndServe() error {
	<-s.done
	return http.ErrServerClosed
}

func (s *shutdownServer) Shutdown(ctx context.Context) error {
	defer close(s.done)
	w, err := s.app.service.Start(ctx)
	if err != nil {
		return err
	}
	s.sessionID = w.ID.String()
	return nil
}

func TestRunPersistsAuditEventsEmittedDuringShutdown(t *testing.T) {
	for _, key := range []string{"ARTEMIZ_DATABASE_URL", "ARTEMIZ_REDIS_URL", "ARTEMIZ_KAFKA_BROKERS"} {
		t.Setenv(key, "")
	}
	cfg, err := config.FromEnv()
	require.NoError(t, err)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	a, err := newApp(context.Background(), cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	srv := &shutdownServer{app: a, done: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, a.run(ctx, srv, log))

	require.NotEmpty(t, srv.sessionID)
	events, err := a.auditStore.ListBySession(context.Background(), srv.sessionID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, audit.EventWizardStarted, events[0].Action)
}
