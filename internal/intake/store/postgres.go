package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"clearform/internal/intake/models"
	id "clearform/pkg/domain"
	"clearform/pkg/platform/seal"
	"clearform/pkg/platform/sentinel"
)

// PostgresStore persists intake sessions in PostgreSQL. The SSN column is
// sealed before it leaves the process.
//
// Schema expectations:
//
//	intake_sessions(id, user_id, district_id, status, current_step,
//	                has_assets, has_debts, created_at, completed_at)
//	debtor_info(session_id UNIQUE, first_name, middle_name, last_name,
//	            ssn_sealed, date_of_birth, phone, email,
//	            street_address, city, state, zip_code)
//	income_info(session_id UNIQUE, marital_status, number_of_dependents,
//	            monthly_income JSONB, created_at)
type PostgresStore struct {
	db     *sql.DB
	sealer *seal.Sealer
}

func NewPostgres(db *sql.DB, sealer *seal.Sealer) *PostgresStore {
	return &PostgresStore{db: db, sealer: sealer}
}

func (s *PostgresStore) Save(ctx context.Context, session *models.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO intake_sessions (id, user_id, district_id, status, current_step, has_assets, has_debts, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, false, false, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			current_step = EXCLUDED.current_step,
			completed_at = EXCLUDED.completed_at`,
		uuid.UUID(session.ID), uuid.UUID(session.UserID), uuid.UUID(session.DistrictID),
		string(session.Status), session.CurrentStep, session.CreatedAt, session.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, sessionID id.SessionID) (*models.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, district_id, status, current_step, created_at, completed_at
		FROM intake_sessions WHERE id = $1`,
		uuid.UUID(sessionID),
	)
	return scanSession(row)
}

func scanSession(row *sql.Row) (*models.Session, error) {
	var (
		session               models.Session
		rawID, rawUser, rawDistrict uuid.UUID
		status                string
		completedAt           sql.NullTime
	)
	err := row.Scan(&rawID, &rawUser, &rawDistrict, &status, &session.CurrentStep,
		&session.CreatedAt, &completedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}
	session.ID = id.SessionID(rawID)
	session.UserID = id.UserID(rawUser)
	session.DistrictID = id.DistrictID(rawDistrict)
	session.Status = models.SessionStatus(status)
	if completedAt.Valid {
		t := completedAt.Time
		session.CompletedAt = &t
	}
	return &session, nil
}

func (s *PostgresStore) SaveDebtor(ctx context.Context, info *models.DebtorInfo) error {
	if err := s.requireSession(ctx, info.SessionID); err != nil {
		return err
	}
	sealedSSN, err := s.sealer.SealString(info.SSN)
	if err != nil {
		return fmt.Errorf("seal ssn: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO debtor_info (session_id, first_name, middle_name, last_name, ssn_sealed,
			date_of_birth, phone, email, street_address, city, state, zip_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (session_id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			middle_name = EXCLUDED.middle_name,
			last_name = EXCLUDED.last_name,
			ssn_sealed = EXCLUDED.ssn_sealed,
			date_of_birth = EXCLUDED.date_of_birth,
			phone = EXCLUDED.phone,
			email = EXCLUDED.email,
			street_address = EXCLUDED.street_address,
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			zip_code = EXCLUDED.zip_code`,
		uuid.UUID(info.SessionID), info.FirstName, info.MiddleName, info.LastName, sealedSSN,
		info.DateOfBirth, info.Phone, info.Email,
		info.StreetAddress, info.City, info.State, info.ZipCode,
	)
	if err != nil {
		return fmt.Errorf("save debtor info: %w", err)
	}
	return nil
}

func (s *PostgresStore) SaveIncome(ctx context.Context, info *models.IncomeInfo) error {
	if err := s.requireSession(ctx, info.SessionID); err != nil {
		return err
	}
	monthly := make([]string, len(info.MonthlyIncome))
	for i, amount := range info.MonthlyIncome {
		monthly[i] = amount.String()
	}
	raw, err := json.Marshal(monthly)
	if err != nil {
		return fmt.Errorf("encode monthly income: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO income_info (session_id, marital_status, number_of_dependents, monthly_income, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (session_id) DO UPDATE SET
			marital_status = EXCLUDED.marital_status,
			number_of_dependents = EXCLUDED.number_of_dependents,
			monthly_income = EXCLUDED.monthly_income,
			created_at = EXCLUDED.created_at`,
		uuid.UUID(info.SessionID), string(info.MaritalStatus), info.Dependents, raw, info.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save income info: %w", err)
	}
	return nil
}

func (s *PostgresStore) SetHasAssets(ctx context.Context, sessionID id.SessionID, has bool) error {
	return s.setFlag(ctx, sessionID, "has_assets", has)
}

func (s *PostgresStore) SetHasDebts(ctx context.Context, sessionID id.SessionID, has bool) error {
	return s.setFlag(ctx, sessionID, "has_debts", has)
}

func (s *PostgresStore) setFlag(ctx context.Context, sessionID id.SessionID, column string, has bool) error {
	// column is one of two fixed names, never caller input.
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE intake_sessions SET %s = $1 WHERE id = $2`, column),
		has, uuid.UUID(sessionID),
	)
	if err != nil {
		return fmt.Errorf("set %s: %w", column, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set %s: %w", column, err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Snapshot(ctx context.Context, sessionID id.SessionID) (*models.Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT user_id, district_id, has_assets, has_debts
		FROM intake_sessions WHERE id = $1`,
		uuid.UUID(sessionID),
	)
	var (
		rawUser, rawDistrict uuid.UUID
		snap                 models.Snapshot
	)
	if err := row.Scan(&rawUser, &rawDistrict, &snap.HasAssets, &snap.HasDebts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}
	snap.SessionID = sessionID
	snap.UserID = id.UserID(rawUser)
	snap.DistrictID = id.DistrictID(rawDistrict)

	debtor, err := s.findDebtor(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	snap.Debtor = debtor

	income, err := s.findIncome(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	snap.Income = income
	return &snap, nil
}

func (s *PostgresStore) findDebtor(ctx context.Context, sessionID id.SessionID) (*models.DebtorInfo, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT first_name, middle_name, last_name, ssn_sealed, date_of_birth, phone, email,
			street_address, city, state, zip_code
		FROM debtor_info WHERE session_id = $1`,
		uuid.UUID(sessionID),
	)
	var (
		info      models.DebtorInfo
		sealedSSN string
	)
	err := row.Scan(&info.FirstName, &info.MiddleName, &info.LastName, &sealedSSN,
		&info.DateOfBirth, &info.Phone, &info.Email,
		&info.StreetAddress, &info.City, &info.State, &info.ZipCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan debtor info: %w", err)
	}
	info.SessionID = sessionID
	if info.SSN, err = s.sealer.OpenString(sealedSSN); err != nil {
		return nil, fmt.Errorf("open ssn: %w", err)
	}
	return &info, nil
}

func (s *PostgresStore) findIncome(ctx context.Context, sessionID id.SessionID) (*models.IncomeInfo, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT marital_status, number_of_dependents, monthly_income, created_at
		FROM income_info WHERE session_id = $1`,
		uuid.UUID(sessionID),
	)
	var (
		info   models.IncomeInfo
		status string
		raw    []byte
	)
	err := row.Scan(&status, &info.Dependents, &raw, &info.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan income info: %w", err)
	}
	info.SessionID = sessionID
	info.MaritalStatus = models.MaritalStatus(status)

	var monthly []string
	if err := json.Unmarshal(raw, &monthly); err != nil {
		return nil, fmt.Errorf("decode monthly income: %w", err)
	}
	info.MonthlyIncome = make([]decimal.Decimal, len(monthly))
	for i, amount := range monthly {
		if info.MonthlyIncome[i], err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parse month %d income: %w", i+1, err)
		}
	}
	return &info, nil
}

func (s *PostgresStore) requireSession(ctx context.Context, sessionID id.SessionID) error {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM intake_sessions WHERE id = $1)`,
		uuid.UUID(sessionID),
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check session: %w", err)
	}
	if !exists {
		return sentinel.ErrNotFound
	}
	return nil
}
