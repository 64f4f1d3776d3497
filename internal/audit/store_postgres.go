package audit

import (
	"context"
	"database/sql"
	"fmt"

	txcontext "artemiz/pkg/platform/tx"
)

const insertEvent = `
INSERT INTO audit_events (occurred_at, session_id, action, step, reason, request_id)
VALUES ($1, $2, $3, $4, $5, $6)`

const listEventsBySession = `
SELECT occurred_at, session_id, action, step, reason, request_id
FROM audit_events
WHERE session_id = $1
ORDER BY occurred_at, id`

// PostgresStore keeps the audit trail in the audit_events table. Appends join
// the transaction carried by ctx, if any.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	_, err := txcontext.ExecutorFor(ctx, s.db).ExecContext(ctx, insertEvent,
		event.Timestamp, event.SessionID, string(event.Action), event.Step, event.Reason, event.RequestID)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListBySession(ctx context.Context, sessionID string) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, listEventsBySession, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var (
			e      Event
			action string
		)
		if err := rows.Scan(&e.Timestamp, &e.SessionID, &action, &e.Step, &e.Reason, &e.RequestID); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Action = EventName(action)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return out, nil
}
