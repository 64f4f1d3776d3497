package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"artemiz/internal/audit"
	"artemiz/internal/registration/models"
	id "artemiz/pkg/domain"
	"artemiz/pkg/platform/sentinel"
)

// AuditPublisher accepts audit events without blocking.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Timer is the handle of a scheduled navigate-home.
type Timer interface {
	Stop() bool
}

// Scheduler runs fn once after d.
type Scheduler func(d time.Duration, fn func()) Timer

func afterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// LogNotifier writes notices to the log. The wizard view carries the notice
// to the browser, so the log line is the only server-side trace of it.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, sessionID id.SessionID, notice models.Notice) {
	level := slog.LevelInfo
	if notice.Kind == models.NoticeError {
		level = slog.LevelWarn
	}
	n.logger.Log(ctx, level, "registration notice",
		"session_id", sessionID.String(),
		"kind", string(notice.Kind),
		"title", notice.Title,
	)
}

// SessionReaper is the server half of navigate-home. The browser follows the
// redirect in the view; the session left behind is discarded here.
type SessionReaper struct {
	sessions SessionStore
}

func NewSessionReaper(sessions SessionStore) *SessionReaper {
	return &SessionReaper{sessions: sessions}
}

// NavigateHome deletes the session. A session that is already gone is fine.
func (r *SessionReaper) NavigateHome(ctx context.Context, sessionID id.SessionID) error {
	err := r.sessions.Delete(ctx, sessionID)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return err
	}
	return nil
}
