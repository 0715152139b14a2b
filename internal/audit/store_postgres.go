package audit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "clearform/pkg/domain"
)

// PostgresStore appends audit events to an append-only table. Rows are never
// updated or deleted by this service.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_events (id, occurred_at, user_id, session_id, action, detail, request_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.New(),
		event.Timestamp,
		nullUUID(uuid.UUID(event.UserID)),
		nullUUID(uuid.UUID(event.SessionID)),
		string(event.Action),
		event.Detail,
		event.RequestID,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListBySession(ctx context.Context, sessionID id.SessionID) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT occurred_at, user_id, session_id, action, detail, request_id
		FROM audit_events
		WHERE session_id = $1
		ORDER BY occurred_at`,
		uuid.UUID(sessionID),
	)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			event     Event
			userID    uuid.NullUUID
			sessID    uuid.NullUUID
			actionStr string
		)
		if err := rows.Scan(&event.Timestamp, &userID, &sessID, &actionStr, &event.Detail, &event.RequestID); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Action = Action(actionStr)
		if userID.Valid {
			event.UserID = id.UserID(userID.UUID)
		}
		if sessID.Valid {
			event.SessionID = id.SessionID(sessID.UUID)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func nullUUID(u uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: u, Valid: u != uuid.Nil}
}
