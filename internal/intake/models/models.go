// Package models defines the intake session and the per-step data collected
// from a pro se filer: personal details, income history, assets, and debts.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	id "clearform/pkg/domain"
	dErrors "clearform/pkg/domain-errors"
)

// SessionStatus tracks progress through the intake wizard.
type SessionStatus string

const (
	StatusStarted    SessionStatus = "started"
	StatusInProgress SessionStatus = "in_progress"
	StatusCompleted  SessionStatus = "completed"
	StatusAbandoned  SessionStatus = "abandoned"
)

// Session is one filer's walk through the intake wizard. All collected data
// hangs off the session, not the user, so a filer can abandon and restart.
type Session struct {
	ID          id.SessionID  `json:"id"`
	UserID      id.UserID     `json:"user_id"`
	DistrictID  id.DistrictID `json:"district_id"`
	Status      SessionStatus `json:"status"`
	CurrentStep int           `json:"current_step"`
	CreatedAt   time.Time     `json:"created_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
}

// DebtorInfo holds the filer's personal details. SSN is sensitive; stores
// are responsible for keeping it out of plaintext at rest.
type DebtorInfo struct {
	SessionID  id.SessionID `json:"session_id"`
	FirstName  string       `json:"first_name"`
	MiddleName string       `json:"middle_name,omitempty"`
	LastName   string       `json:"last_name"`
	SSN        string       `json:"-"`
	DateOfBirth time.Time   `json:"date_of_birth"`
	Phone      string       `json:"phone"`
	Email      string       `json:"email"`

	StreetAddress string `json:"street_address"`
	City          string `json:"city"`
	State         string `json:"state"`
	ZipCode       string `json:"zip_code"`
}

// Validate checks the fields the official form cannot do without.
func (d *DebtorInfo) Validate() error {
	switch {
	case strings.TrimSpace(d.FirstName) == "":
		return dErrors.New(dErrors.CodeInvalidInput, "first name is required")
	case strings.TrimSpace(d.LastName) == "":
		return dErrors.New(dErrors.CodeInvalidInput, "last name is required")
	case strings.TrimSpace(d.StreetAddress) == "":
		return dErrors.New(dErrors.CodeInvalidInput, "street address is required")
	case strings.TrimSpace(d.City) == "":
		return dErrors.New(dErrors.CodeInvalidInput, "city is required")
	case len(strings.TrimSpace(d.State)) != 2:
		return dErrors.New(dErrors.CodeInvalidInput, "state must be a two-letter abbreviation")
	case strings.TrimSpace(d.ZipCode) == "":
		return dErrors.New(dErrors.CodeInvalidInput, "zip code is required")
	}
	return nil
}

// FullName joins the name parts, collapsing runs of whitespace left by an
// empty middle name.
func (d *DebtorInfo) FullName() string {
	return strings.Join(strings.Fields(d.FirstName+" "+d.MiddleName+" "+d.LastName), " ")
}

// MaritalStatus is the filer's status for means test household sizing.
type MaritalStatus string

const (
	Single                  MaritalStatus = "single"
	MarriedFilingJointly    MaritalStatus = "married_filing_jointly"
	MarriedFilingSeparately MaritalStatus = "married_filing_separately"
)

// ParseMaritalStatus validates a wire value.
func ParseMaritalStatus(s string) (MaritalStatus, error) {
	switch MaritalStatus(s) {
	case Single, MarriedFilingJointly, MarriedFilingSeparately:
		return MaritalStatus(s), nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput,
			fmt.Sprintf("unknown marital status %q", s))
	}
}

// IsMarried reports whether the status adds a spouse to the household.
func (m MaritalStatus) IsMarried() bool {
	return m == MarriedFilingJointly || m == MarriedFilingSeparately
}

// monthsRequired is the look-back window for current monthly income under
// § 707(b)(7): the six calendar months before filing.
const monthsRequired = 6

// IncomeInfo is the income step of the wizard.
type IncomeInfo struct {
	SessionID     id.SessionID      `json:"session_id"`
	MaritalStatus MaritalStatus     `json:"marital_status"`
	Dependents    int               `json:"number_of_dependents"`
	MonthlyIncome []decimal.Decimal `json:"monthly_income"`
	CreatedAt     time.Time         `json:"created_at"`
}

// Validate enforces the six-month window and rejects negative entries,
// naming the offending month so the wizard can point at the field.
func (i *IncomeInfo) Validate() error {
	if _, err := ParseMaritalStatus(string(i.MaritalStatus)); err != nil {
		return err
	}
	if i.Dependents < 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "number of dependents cannot be negative")
	}
	if len(i.MonthlyIncome) != monthsRequired {
		return dErrors.New(dErrors.CodeInvalidInput,
			fmt.Sprintf("monthly income must cover exactly %d months, got %d", monthsRequired, len(i.MonthlyIncome)))
	}
	for n, amount := range i.MonthlyIncome {
		if amount.IsNegative() {
			return dErrors.New(dErrors.CodeInvalidInput,
				fmt.Sprintf("monthly income for month %d cannot be negative", n+1))
		}
	}
	return nil
}

// FamilySize is the household size used for the median income lookup: the
// filer, a spouse when married under either filing variant, and dependents.
func (i *IncomeInfo) FamilySize() int {
	size := 1 + i.Dependents
	if i.MaritalStatus.IsMarried() {
		size++
	}
	return size
}

// Snapshot is the read model handed to the eligibility and forms services.
// A nil section means the filer has not completed that step; callers branch
// on the pointer, never on zero values.
type Snapshot struct {
	SessionID  id.SessionID
	UserID     id.UserID
	DistrictID id.DistrictID
	Debtor     *DebtorInfo
	Income     *IncomeInfo
	HasAssets  bool
	HasDebts   bool
}
