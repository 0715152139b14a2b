// Package store persists intake sessions and their step data.
package store

import (
	"context"

	"clearform/internal/intake/models"
	id "clearform/pkg/domain"
)

// SessionStore persists sessions and assembles snapshots for downstream
// services. Step writes are upserts: re-submitting a wizard step replaces
// the previous answer.
type SessionStore interface {
	Save(ctx context.Context, session *models.Session) error
	FindByID(ctx context.Context, sessionID id.SessionID) (*models.Session, error)
	SaveDebtor(ctx context.Context, info *models.DebtorInfo) error
	SaveIncome(ctx context.Context, info *models.IncomeInfo) error
	SetHasAssets(ctx context.Context, sessionID id.SessionID, has bool) error
	SetHasDebts(ctx context.Context, sessionID id.SessionID, has bool) error
	Snapshot(ctx context.Context, sessionID id.SessionID) (*models.Snapshot, error)
}
