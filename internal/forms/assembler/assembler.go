// Package assembler maps intake data onto the Official Form 101 structure
// (Voluntary Petition for Individuals Filing for Bankruptcy).
package assembler

import (
	"strings"

	districtmodels "clearform/internal/district/models"
	eligibilitymodels "clearform/internal/eligibility/models"
	"clearform/internal/forms/models"
	intakemodels "clearform/internal/intake/models"
	dErrors "clearform/pkg/domain-errors"
	"clearform/pkg/money"
)

// FormVersion is the official form revision the structure tracks.
const FormVersion = "12/20"

// FormName is the official title of Form 101.
const FormName = "Voluntary Petition for Individuals Filing for Bankruptcy"

// PreviewDisclaimer accompanies every preview. It is informational wording,
// distinct from the result message templates.
const PreviewDisclaimer = "This is a preview of your petition based on the information provided. " +
	"This software provides legal information, not legal advice. " +
	"You are responsible for reviewing all information for accuracy before filing."

// Statistical reporting buckets. Until per-record valuation lands these are
// coarse: no records means the bottom bucket, any records the next one up.
const (
	rangeLow = "$0-$50,000"
	rangeMid = "$50,000-$100,000"
)

// Build assembles Form 101 data from the session snapshot, the district, and
// the means test result when one exists. A nil result produces a pending
// declaration, not an error; missing debtor information is an error because
// the petition is unusable without Part 1.
func Build(snap *intakemodels.Snapshot, district *districtmodels.District, result *eligibilitymodels.Result) (models.FormData, error) {
	if snap.Debtor == nil {
		return models.FormData{}, dErrors.New(dErrors.CodeMissingReferenceData,
			"debtor information must be provided before generating Form 101")
	}

	familySize := 1
	if snap.Income != nil {
		familySize = snap.Income.FamilySize()
	}

	return models.FormData{
		FormVersion: FormVersion,
		DebtorName: models.DebtorName{
			FirstName:  snap.Debtor.FirstName,
			MiddleName: snap.Debtor.MiddleName,
			LastName:   snap.Debtor.LastName,
			FullName:   snap.Debtor.FullName(),
		},
		DebtorAddress: models.DebtorAddress{
			Street: snap.Debtor.StreetAddress,
			City:   snap.Debtor.City,
			State:  snap.Debtor.State,
			Zip:    snap.Debtor.ZipCode,
		},
		CaseType: models.CaseType{
			Chapter:     "7",
			ChapterName: "Chapter 7 - Liquidation",
		},
		FilingInfo: models.FilingInfo{
			DistrictCode: strings.ToUpper(district.Code),
			DistrictName: district.Name,
			CourtName:    district.CourtName,
		},
		DebtorType: models.DebtorType{
			Individual: true,
		},
		StatisticalInfo: models.StatisticalInfo{
			FamilySize:                familySize,
			EstimatedAssetsRange:      bucketFor(snap.HasAssets),
			EstimatedLiabilitiesRange: bucketFor(snap.HasDebts),
		},
		MeansTest:           declarationFor(result),
		FilingFeeAmount:     money.Format(district.FilingFeeChapter7),
		SignatureDate:       nil,
		GeneratedForPreview: true,
	}, nil
}

func bucketFor(hasRecords bool) string {
	if hasRecords {
		return rangeMid
	}
	return rangeLow
}

func declarationFor(result *eligibilitymodels.Result) models.MeansTestInfo {
	if result == nil {
		return models.MeansTestInfo{
			Calculated:  false,
			Declaration: "Means test calculation pending",
		}
	}
	declaration := "Debtor's income is below the median income for applicable family size"
	if !result.Passes {
		declaration = "Debtor's income is above the median income (additional means test calculations may be required)"
	}
	return models.MeansTestInfo{
		Calculated:      true,
		PassesTest:      result.Passes,
		CMI:             money.Format(result.CMI),
		MedianThreshold: money.Format(result.Threshold),
		Declaration:     declaration,
	}
}
