package audit

import (
	"context"
	"log/slog"
	"time"

	"clearform/pkg/requestcontext"
)

// Publisher hands audit events to the background worker. Emitting never
// blocks the request path: when the buffer is full the event is dropped and
// counted, because a slow audit sink must not fail a calculation.
type Publisher struct {
	inbox  chan Event
	logger *slog.Logger
}

// NewPublisher builds a Publisher with the given buffer capacity.
func NewPublisher(buffer int, logger *slog.Logger) *Publisher {
	if buffer <= 0 {
		buffer = 256
	}
	return &Publisher{
		inbox:  make(chan Event, buffer),
		logger: logger,
	}
}

// Emit queues an event, stamping timestamp and request ID from context.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}

	select {
	case p.inbox <- event:
	default:
		if p.logger != nil {
			p.logger.WarnContext(ctx, "audit buffer full, event dropped",
				"action", event.Action,
				"session_id", event.SessionID,
			)
		}
	}
}

// Inbox exposes the channel for the worker.
func (p *Publisher) Inbox() <-chan Event { return p.inbox }
