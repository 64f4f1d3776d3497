package audit

import (
	"context"
	"errors"
	"time"
)

// ErrBufferFull is returned by Emit when the worker has fallen behind.
var ErrBufferFull = errors.New("audit buffer full")

// Publisher hands events to the Worker through a buffered channel so request
// paths never block on the audit store.
type Publisher struct {
	inbox chan Event
	now   func() time.Time
}

// NewPublisher creates a publisher with room for buffer pending events.
func NewPublisher(buffer int) *Publisher {
	if buffer <= 0 {
		buffer = 256
	}
	return &Publisher{inbox: make(chan Event, buffer), now: time.Now}
}

// Emit enqueues base without blocking.
func (p *Publisher) Emit(_ context.Context, base Event) error {
	if base.Timestamp.IsZero() {
		base.Timestamp = p.now()
	}
	select {
	case p.inbox <- base:
		return nil
	default:
		return ErrBufferFull
	}
}

// Inbox is the channel the Worker drains.
func (p *Publisher) Inbox() <-chan Event {
	return p.inbox
}
