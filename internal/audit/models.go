package audit

import (
	"context"
	"time"

	id "clearform/pkg/domain"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time
	UserID    id.UserID
	SessionID id.SessionID
	Action    Action
	Detail    string
	RequestID string
}

// Action names an auditable domain action.
type Action string

const (
	ActionMeansTestCalculated Action = "means_test_calculated"
	ActionFormGenerated       Action = "form_generated"
	ActionFormDownloaded      Action = "form_downloaded"
	ActionFormFiled           Action = "form_filed"
)

// Store is an append-only sink for audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySession(ctx context.Context, sessionID id.SessionID) ([]Event, error)
}
