package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"clearform/internal/forms/models"
	id "clearform/pkg/domain"
	"clearform/pkg/platform/sentinel"
)

// PostgresStore persists generated forms in PostgreSQL.
//
// Schema expectations:
//
//	generated_forms(id, session_id, form_type, status, form_data JSONB,
//	                generated_at, updated_at,
//	                UNIQUE (session_id, form_type))
//
// The unique constraint makes concurrent regeneration safe: two racing
// generations collapse onto one row.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Upsert(ctx context.Context, form *models.GeneratedForm) error {
	rawData, err := json.Marshal(form.Data)
	if err != nil {
		return fmt.Errorf("encode form data: %w", err)
	}

	var (
		survivingID uuid.UUID
		generatedAt sql.NullTime
	)
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO generated_forms (id, session_id, form_type, status, form_data, generated_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (session_id, form_type) DO UPDATE SET
			status = EXCLUDED.status,
			form_data = EXCLUDED.form_data,
			updated_at = EXCLUDED.updated_at
		RETURNING id, generated_at`,
		uuid.UUID(form.ID), uuid.UUID(form.SessionID), string(form.FormType),
		string(form.Status), rawData, form.GeneratedAt, form.UpdatedAt,
	).Scan(&survivingID, &generatedAt)
	if err != nil {
		return fmt.Errorf("upsert form: %w", err)
	}
	form.ID = id.FormID(survivingID)
	if generatedAt.Valid {
		form.GeneratedAt = generatedAt.Time
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, formID id.FormID) (*models.GeneratedForm, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, session_id, form_type, status, form_data, generated_at, updated_at
		FROM generated_forms WHERE id = $1`,
		uuid.UUID(formID),
	)
	return scanForm(row)
}

func (s *PostgresStore) FindBySessionAndType(ctx context.Context, sessionID id.SessionID, formType models.FormType) (*models.GeneratedForm, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, session_id, form_type, status, form_data, generated_at, updated_at
		FROM generated_forms WHERE session_id = $1 AND form_type = $2`,
		uuid.UUID(sessionID), string(formType),
	)
	return scanForm(row)
}

func scanForm(row *sql.Row) (*models.GeneratedForm, error) {
	var (
		form              models.GeneratedForm
		rawID, rawSession uuid.UUID
		formType, status  string
		rawData           []byte
	)
	err := row.Scan(&rawID, &rawSession, &formType, &status, &rawData,
		&form.GeneratedAt, &form.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan form: %w", err)
	}
	form.ID = id.FormID(rawID)
	form.SessionID = id.SessionID(rawSession)
	form.FormType = models.FormType(formType)
	form.Status = models.Status(status)
	if err := json.Unmarshal(rawData, &form.Data); err != nil {
		return nil, fmt.Errorf("decode form data: %w", err)
	}
	return &form, nil
}

func (s *PostgresStore) SetStatus(ctx context.Context, formID id.FormID, status models.Status) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE generated_forms SET status = $1, updated_at = now() WHERE id = $2`,
		string(status), uuid.UUID(formID),
	)
	if err != nil {
		return fmt.Errorf("set form status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set form status: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
