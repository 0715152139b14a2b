// Package models defines generated court form records and the Form 101 data
// structure.
package models

import (
	"time"

	id "clearform/pkg/domain"
)

// FormType identifies an official bankruptcy form.
type FormType string

const (
	Form101       FormType = "form_101"
	ScheduleAB    FormType = "schedule_a_b"
	ScheduleC     FormType = "schedule_c"
	ScheduleD     FormType = "schedule_d"
	ScheduleEF    FormType = "schedule_e_f"
	ScheduleI     FormType = "schedule_i"
	ScheduleJ     FormType = "schedule_j"
	MeansTestForm FormType = "means_test"
)

// formNames maps form types to their official display names.
var formNames = map[FormType]string{
	Form101:       "Form 101 - Voluntary Petition",
	ScheduleAB:    "Schedule A/B - Property",
	ScheduleC:     "Schedule C - Exemptions",
	ScheduleD:     "Schedule D - Secured Creditors",
	ScheduleEF:    "Schedule E/F - Unsecured Creditors",
	ScheduleI:     "Schedule I - Income",
	ScheduleJ:     "Schedule J - Expenses",
	MeansTestForm: "Statement of Current Monthly Income (Means Test)",
}

// DisplayName returns the official name for the form type.
func (f FormType) DisplayName() string {
	if name, ok := formNames[f]; ok {
		return name
	}
	return string(f)
}

// Status tracks a form through its lifecycle. Transitions are deliberately
// lenient: marking an already-downloaded form downloaded is a no-op success,
// and filing is recordable from any state.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusGenerated  Status = "generated"
	StatusDownloaded Status = "downloaded"
	StatusFiled      Status = "filed"
)

// GeneratedForm is one generated court form for a session. A session holds
// at most one form per type; regeneration replaces the data in place.
type GeneratedForm struct {
	ID          id.FormID    `json:"form_id"`
	SessionID   id.SessionID `json:"session_id"`
	FormType    FormType     `json:"form_type"`
	Status      Status       `json:"status"`
	Data        FormData     `json:"data"`
	GeneratedAt time.Time    `json:"generated_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// FormData is the populated Form 101 field structure, shaped after the
// official form's parts and ready for PDF population.
type FormData struct {
	FormVersion         string          `json:"form_101_version"`
	DebtorName          DebtorName      `json:"debtor_name"`
	DebtorAddress       DebtorAddress   `json:"debtor_address"`
	CaseType            CaseType        `json:"case_type"`
	FilingInfo          FilingInfo      `json:"filing_info"`
	DebtorType          DebtorType      `json:"debtor_type"`
	StatisticalInfo     StatisticalInfo `json:"statistical_info"`
	MeansTest           MeansTestInfo   `json:"means_test"`
	FilingFeeAmount     string          `json:"filing_fee_amount"`
	SignatureDate       *time.Time      `json:"signature_date"`
	GeneratedForPreview bool            `json:"generated_for_preview"`
}

// DebtorName is Part 1 of Form 101.
type DebtorName struct {
	FirstName  string `json:"first_name"`
	MiddleName string `json:"middle_name"`
	LastName   string `json:"last_name"`
	FullName   string `json:"full_name"`
}

type DebtorAddress struct {
	Street string `json:"street"`
	City   string `json:"city"`
	State  string `json:"state"`
	Zip    string `json:"zip"`
}

// CaseType is Part 2. Only Chapter 7 is supported.
type CaseType struct {
	Chapter     string `json:"chapter"`
	ChapterName string `json:"chapter_name"`
}

// FilingInfo is Part 3, the district and filing location.
type FilingInfo struct {
	DistrictCode string `json:"district_code"`
	DistrictName string `json:"district_name"`
	CourtName    string `json:"court_name"`
}

// DebtorType is Part 4. Individuals only.
type DebtorType struct {
	Individual  bool `json:"individual"`
	Business    bool `json:"business"`
	Corporation bool `json:"corporation"`
}

// StatisticalInfo is Part 5, the administrative ranges.
type StatisticalInfo struct {
	FamilySize                int    `json:"family_size"`
	EstimatedAssetsRange      string `json:"estimated_assets_range"`
	EstimatedLiabilitiesRange string `json:"estimated_liabilities_range"`
}

// MeansTestInfo is Part 6, the means test declaration.
type MeansTestInfo struct {
	Calculated      bool   `json:"calculated"`
	PassesTest      bool   `json:"passes_test,omitempty"`
	CMI             string `json:"cmi,omitempty"`
	MedianThreshold string `json:"median_threshold,omitempty"`
	Declaration     string `json:"declaration"`
}
