package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"clearform/internal/district/models"
	id "clearform/pkg/domain"
	"clearform/pkg/platform/sentinel"
)

// PostgresStore persists district reference data in PostgreSQL.
//
// Schema expectations:
//
//	districts(id, code UNIQUE, name, state, court_name, pro_se_efiling_allowed,
//	          filing_fee_chapter_7, created_at, updated_at)
//	median_incomes(id, district_id, effective_date, family_size_1..family_size_8,
//	               family_size_additional, created_at,
//	               UNIQUE (district_id, effective_date))
//	exemption_schedules(district_id, exemption_type, amount, statute_citation, description)
//	local_rules(district_id, rule_number, title, description, effective_date)
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, d *models.District) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO districts (id, code, name, state, court_name, pro_se_efiling_allowed, filing_fee_chapter_7, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (code) DO UPDATE SET
			name = EXCLUDED.name,
			state = EXCLUDED.state,
			court_name = EXCLUDED.court_name,
			pro_se_efiling_allowed = EXCLUDED.pro_se_efiling_allowed,
			filing_fee_chapter_7 = EXCLUDED.filing_fee_chapter_7,
			updated_at = EXCLUDED.updated_at`,
		uuid.UUID(d.ID), strings.ToLower(d.Code), d.Name, d.State, d.CourtName,
		d.ProSeEFilingAllowed, d.FilingFeeChapter7.String(), d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save district: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, districtID id.DistrictID) (*models.District, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, code, name, state, court_name, pro_se_efiling_allowed, filing_fee_chapter_7, created_at, updated_at
		FROM districts WHERE id = $1`,
		uuid.UUID(districtID),
	)
	return scanDistrict(row)
}

func (s *PostgresStore) FindByCode(ctx context.Context, code string) (*models.District, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, code, name, state, court_name, pro_se_efiling_allowed, filing_fee_chapter_7, created_at, updated_at
		FROM districts WHERE code = $1`,
		strings.ToLower(code),
	)
	return scanDistrict(row)
}

func scanDistrict(row *sql.Row) (*models.District, error) {
	var (
		d         models.District
		rawID     uuid.UUID
		feeString string
	)
	err := row.Scan(&rawID, &d.Code, &d.Name, &d.State, &d.CourtName,
		&d.ProSeEFilingAllowed, &feeString, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan district: %w", err)
	}
	d.ID = id.DistrictID(rawID)
	fee, err := decimal.NewFromString(feeString)
	if err != nil {
		return nil, fmt.Errorf("parse filing fee: %w", err)
	}
	d.FilingFeeChapter7 = fee
	return &d, nil
}

func (s *PostgresStore) Put(ctx context.Context, t *models.MedianIncome) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO median_incomes (id, district_id, effective_date,
			family_size_1, family_size_2, family_size_3, family_size_4,
			family_size_5, family_size_6, family_size_7, family_size_8,
			family_size_additional, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		t.ID, uuid.UUID(t.DistrictID), t.EffectiveDate,
		t.FamilySizes[0].String(), t.FamilySizes[1].String(), t.FamilySizes[2].String(), t.FamilySizes[3].String(),
		t.FamilySizes[4].String(), t.FamilySizes[5].String(), t.FamilySizes[6].String(), t.FamilySizes[7].String(),
		t.AdditionalIncrement.String(), t.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("put median income: %w", err)
	}
	return nil
}

// LatestForDistrict orders by effective_date descending and takes the first
// row. No evaluation-date filter is applied; that is the lookup policy.
func (s *PostgresStore) LatestForDistrict(ctx context.Context, districtID id.DistrictID) (*models.MedianIncome, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, district_id, effective_date,
			family_size_1, family_size_2, family_size_3, family_size_4,
			family_size_5, family_size_6, family_size_7, family_size_8,
			family_size_additional, created_at
		FROM median_incomes
		WHERE district_id = $1
		ORDER BY effective_date DESC
		LIMIT 1`,
		uuid.UUID(districtID),
	)

	var (
		t       models.MedianIncome
		rawDist uuid.UUID
		amounts [8]string
		incr    string
	)
	err := row.Scan(&t.ID, &rawDist, &t.EffectiveDate,
		&amounts[0], &amounts[1], &amounts[2], &amounts[3],
		&amounts[4], &amounts[5], &amounts[6], &amounts[7],
		&incr, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan median income: %w", err)
	}
	t.DistrictID = id.DistrictID(rawDist)
	for i, raw := range amounts {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("parse family size %d amount: %w", i+1, err)
		}
		t.FamilySizes[i] = amount
	}
	increment, err := decimal.NewFromString(incr)
	if err != nil {
		return nil, fmt.Errorf("parse additional increment: %w", err)
	}
	t.AdditionalIncrement = increment
	return &t, nil
}

func (s *PostgresStore) ExemptionsForDistrict(ctx context.Context, districtID id.DistrictID) ([]models.ExemptionSchedule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT district_id, exemption_type, amount, statute_citation, description
		FROM exemption_schedules
		WHERE district_id = $1
		ORDER BY exemption_type`,
		uuid.UUID(districtID),
	)
	if err != nil {
		return nil, fmt.Errorf("list exemptions: %w", err)
	}
	defer rows.Close()

	var out []models.ExemptionSchedule
	for rows.Next() {
		var (
			e       models.ExemptionSchedule
			rawDist uuid.UUID
			typ     string
			amount  string
		)
		if err := rows.Scan(&rawDist, &typ, &amount, &e.StatuteCitation, &e.Description); err != nil {
			return nil, fmt.Errorf("scan exemption: %w", err)
		}
		e.DistrictID = id.DistrictID(rawDist)
		e.Type = models.ExemptionType(typ)
		if e.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parse exemption amount: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PostgresStore) LocalRulesForDistrict(ctx context.Context, districtID id.DistrictID) ([]models.LocalRule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT district_id, rule_number, title, description, effective_date
		FROM local_rules
		WHERE district_id = $1
		ORDER BY rule_number`,
		uuid.UUID(districtID),
	)
	if err != nil {
		return nil, fmt.Errorf("list local rules: %w", err)
	}
	defer rows.Close()

	var out []models.LocalRule
	for rows.Next() {
		var (
			r       models.LocalRule
			rawDist uuid.UUID
		)
		if err := rows.Scan(&rawDist, &r.RuleNumber, &r.Title, &r.Description, &r.EffectiveDate); err != nil {
			return nil, fmt.Errorf("scan local rule: %w", err)
		}
		r.DistrictID = id.DistrictID(rawDist)
		out = append(out, r)
	}
	return out, rows.Err()
}

// isUniqueViolation matches the PostgreSQL unique_violation SQLSTATE without
// binding the store to a specific driver error type.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
