package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"clearform/internal/eligibility/models"
	id "clearform/pkg/domain"
	"clearform/pkg/platform/seal"
	"clearform/pkg/platform/sentinel"
)

// PostgresStore persists means test results in PostgreSQL. The calculation
// breakdown column is sealed before insert and opened on read; the raw
// income history never sits in the database in plaintext.
//
// Schema expectations:
//
//	means_test_results(id, session_id UNIQUE, district_id, cmi, threshold,
//	                   passes, fee_waiver, family_size, breakdown_sealed,
//	                   calculated_at)
//
// The UNIQUE constraint, not caller discipline, is what makes concurrent
// recalculation safe.
type PostgresStore struct {
	db     *sql.DB
	sealer *seal.Sealer
}

func NewPostgres(db *sql.DB, sealer *seal.Sealer) *PostgresStore {
	return &PostgresStore{db: db, sealer: sealer}
}

func (s *PostgresStore) Upsert(ctx context.Context, result *models.Result) error {
	rawBreakdown, err := json.Marshal(result.Breakdown)
	if err != nil {
		return fmt.Errorf("encode breakdown: %w", err)
	}
	sealedBreakdown, err := s.sealer.SealString(string(rawBreakdown))
	if err != nil {
		return fmt.Errorf("seal breakdown: %w", err)
	}

	var survivingID uuid.UUID
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO means_test_results (id, session_id, district_id, cmi, threshold,
			passes, fee_waiver, family_size, breakdown_sealed, calculated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (session_id) DO UPDATE SET
			district_id = EXCLUDED.district_id,
			cmi = EXCLUDED.cmi,
			threshold = EXCLUDED.threshold,
			passes = EXCLUDED.passes,
			fee_waiver = EXCLUDED.fee_waiver,
			family_size = EXCLUDED.family_size,
			breakdown_sealed = EXCLUDED.breakdown_sealed,
			calculated_at = EXCLUDED.calculated_at
		RETURNING id`,
		uuid.UUID(result.ID), uuid.UUID(result.SessionID), uuid.UUID(result.DistrictID),
		result.CMI.String(), result.Threshold.String(),
		result.Passes, result.FeeWaiver, result.FamilySize,
		sealedBreakdown, result.CalculatedAt,
	).Scan(&survivingID)
	if err != nil {
		return fmt.Errorf("upsert result: %w", err)
	}
	result.ID = id.ResultID(survivingID)
	return nil
}

func (s *PostgresStore) FindBySession(ctx context.Context, sessionID id.SessionID) (*models.Result, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, session_id, district_id, cmi, threshold,
			passes, fee_waiver, family_size, breakdown_sealed, calculated_at
		FROM means_test_results WHERE session_id = $1`,
		uuid.UUID(sessionID),
	)

	var (
		result                         models.Result
		rawID, rawSession, rawDistrict uuid.UUID
		cmi, threshold                 string
		sealedBreakdown                string
	)
	err := row.Scan(&rawID, &rawSession, &rawDistrict, &cmi, &threshold,
		&result.Passes, &result.FeeWaiver, &result.FamilySize,
		&sealedBreakdown, &result.CalculatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan result: %w", err)
	}
	result.ID = id.ResultID(rawID)
	result.SessionID = id.SessionID(rawSession)
	result.DistrictID = id.DistrictID(rawDistrict)
	if result.CMI, err = decimal.NewFromString(cmi); err != nil {
		return nil, fmt.Errorf("parse cmi: %w", err)
	}
	if result.Threshold, err = decimal.NewFromString(threshold); err != nil {
		return nil, fmt.Errorf("parse threshold: %w", err)
	}

	rawBreakdown, err := s.sealer.OpenString(sealedBreakdown)
	if err != nil {
		return nil, fmt.Errorf("open breakdown: %w", err)
	}
	if err := json.Unmarshal([]byte(rawBreakdown), &result.Breakdown); err != nil {
		return nil, fmt.Errorf("decode breakdown: %w", err)
	}
	return &result, nil
}
