//go:build integration

// Package containers provides shared test infrastructure for integration
// tests that need real backing services.
package containers

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

// schema mirrors the column expectations documented on each PostgresStore.
const schema = `
CREATE TABLE districts (
	id UUID PRIMARY KEY,
	code TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	state TEXT NOT NULL,
	court_name TEXT NOT NULL,
	pro_se_efiling_allowed BOOLEAN NOT NULL,
	filing_fee_chapter_7 TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE median_incomes (
	id UUID PRIMARY KEY,
	district_id UUID NOT NULL REFERENCES districts (id),
	effective_date DATE NOT NULL,
	family_size_1 TEXT NOT NULL,
	family_size_2 TEXT NOT NULL,
	family_size_3 TEXT NOT NULL,
	family_size_4 TEXT NOT NULL,
	family_size_5 TEXT NOT NULL,
	family_size_6 TEXT NOT NULL,
	family_size_7 TEXT NOT NULL,
	family_size_8 TEXT NOT NULL,
	family_size_additional TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	UNIQUE (district_id, effective_date)
);

CREATE TABLE exemption_schedules (
	district_id UUID NOT NULL REFERENCES districts (id),
	exemption_type TEXT NOT NULL,
	amount TEXT NOT NULL,
	statute_citation TEXT NOT NULL,
	description TEXT NOT NULL
);

CREATE TABLE local_rules (
	district_id UUID NOT NULL REFERENCES districts (id),
	rule_number TEXT NOT NULL,
	title TEXT NOT NULL,
	description TEXT NOT NULL,
	effective_date DATE NOT NULL
);

CREATE TABLE intake_sessions (
	id UUID PRIMARY KEY,
	user_id UUID NOT NULL,
	district_id UUID NOT NULL,
	status TEXT NOT NULL,
	current_step TEXT NOT NULL,
	has_assets BOOLEAN NOT NULL DEFAULT FALSE,
	has_debts BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL,
	completed_at TIMESTAMPTZ
);

CREATE TABLE debtor_info (
	session_id UUID NOT NULL UNIQUE REFERENCES intake_sessions (id),
	first_name TEXT NOT NULL,
	middle_name TEXT NOT NULL,
	last_name TEXT NOT NULL,
	ssn_sealed TEXT NOT NULL,
	date_of_birth DATE NOT NULL,
	phone TEXT NOT NULL,
	email TEXT NOT NULL,
	street_address TEXT NOT NULL,
	city TEXT NOT NULL,
	state TEXT NOT NULL,
	zip_code TEXT NOT NULL
);

CREATE TABLE income_info (
	session_id UUID NOT NULL UNIQUE REFERENCES intake_sessions (id),
	marital_status TEXT NOT NULL,
	number_of_dependents INTEGER NOT NULL,
	monthly_income JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE means_test_results (
	id UUID PRIMARY KEY,
	session_id UUID NOT NULL UNIQUE,
	district_id UUID NOT NULL,
	cmi TEXT NOT NULL,
	threshold TEXT NOT NULL,
	passes BOOLEAN NOT NULL,
	fee_waiver BOOLEAN NOT NULL,
	family_size INTEGER NOT NULL,
	breakdown_sealed TEXT NOT NULL,
	calculated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE generated_forms (
	id UUID PRIMARY KEY,
	session_id UUID NOT NULL,
	form_type TEXT NOT NULL,
	status TEXT NOT NULL,
	form_data JSONB NOT NULL,
	generated_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	UNIQUE (session_id, form_type)
);

CREATE TABLE audit_events (
	id UUID PRIMARY KEY,
	occurred_at TIMESTAMPTZ NOT NULL,
	user_id UUID,
	session_id UUID,
	action TEXT NOT NULL,
	detail TEXT NOT NULL,
	request_id TEXT NOT NULL
);
`

// PostgresContainer wraps a testcontainers PostgreSQL instance with the
// service schema already applied.
type PostgresContainer struct {
	Container testcontainers.Container
	URL       string
	DB        *sql.DB
}

// NewPostgresContainer starts a PostgreSQL container and applies the schema.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("clearform_test"),
		tcpostgres.WithUsername("clearform"),
		tcpostgres.WithPassword("clearform"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := sql.Open("pgx", url)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to open postgres connection: %v", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to ping postgres: %v", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to apply schema: %v", err)
	}

	pc := &PostgresContainer{
		Container: container,
		URL:       url,
		DB:        db,
	}
	t.Cleanup(func() {
		_ = db.Close()
		_ = container.Terminate(context.Background())
	})
	return pc
}

// Truncate clears the given tables between tests.
func (p *PostgresContainer) Truncate(ctx context.Context, tables ...string) error {
	for _, table := range tables {
		if _, err := p.DB.ExecContext(ctx, "TRUNCATE TABLE "+table+" CASCADE"); err != nil {
			return err
		}
	}
	return nil
}
