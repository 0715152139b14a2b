// Package store persists generated forms with one-form-per-type-per-session
// semantics.
package store

import (
	"context"

	"clearform/internal/forms/models"
	id "clearform/pkg/domain"
)

// FormStore upserts and reads generated forms. Upsert is keyed by
// (session, form type): regeneration replaces the stored data and status but
// keeps the original form ID, which Upsert writes back into the record.
type FormStore interface {
	Upsert(ctx context.Context, form *models.GeneratedForm) error
	FindByID(ctx context.Context, formID id.FormID) (*models.GeneratedForm, error)
	FindBySessionAndType(ctx context.Context, sessionID id.SessionID, formType models.FormType) (*models.GeneratedForm, error)
	SetStatus(ctx context.Context, formID id.FormID, status models.Status) error
}
