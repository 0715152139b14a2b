// Package store persists means test results with one-result-per-session
// semantics.
package store

import (
	"context"

	"clearform/internal/eligibility/models"
	id "clearform/pkg/domain"
)

// ResultStore upserts and reads results. Upsert is atomic per session: a
// recalculation replaces the stored values but keeps the original result ID,
// and concurrent calculations for the same session cannot produce two rows.
// Upsert rewrites result.ID to the surviving identity.
type ResultStore interface {
	Upsert(ctx context.Context, result *models.Result) error
	FindBySession(ctx context.Context, sessionID id.SessionID) (*models.Result, error)
}
