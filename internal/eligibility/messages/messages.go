// Package messages composes the informational result text shown to filers.
//
// The service provides legal information, never legal advice. Every template
// is vetted against a list of directive phrases before use, so a future
// wording change cannot ship advice by accident.
package messages

import (
	"fmt"
	"strings"

	dErrors "clearform/pkg/domain-errors"
)

// ForbiddenPhrases are directive formulations that would cross from
// information into advice. Matching is case-insensitive.
var ForbiddenPhrases = []string{
	"you should file",
	"I recommend",
	"you should choose",
	"my advice is",
	"you need to file",
	"based on your situation, file",
}

// Config holds the result message templates. Each template takes the
// district's state as its single formatting argument.
type Config struct {
	PassTemplate    string
	FailTemplate    string
	FeeWaiverSuffix string
}

// DefaultConfig returns the standard informational wording.
func DefaultConfig() Config {
	return Config{
		PassTemplate: "Based on the information provided, your income is below the median " +
			"income for a household of this size in %s. " +
			"This means you may be eligible to file Chapter 7 bankruptcy. " +
			"Chapter 7 typically allows debtors with income below the median to " +
			"discharge unsecured debts without a repayment plan.",
		FailTemplate: "Based on the information provided, your income is above the median " +
			"income for a household of this size in %s. " +
			"This means additional calculations may be needed to determine " +
			"Chapter 7 eligibility. Many filers with above-median income still " +
			"qualify for Chapter 7 if their allowable expenses are high enough. " +
			"You may also be eligible for Chapter 13 bankruptcy, which involves " +
			"a repayment plan.",
		FeeWaiverSuffix: " Additionally, you may qualify for a filing fee waiver under " +
			"28 U.S.C. § 1930(f), which waives the standard filing fee for " +
			"filers with very low income.",
	}
}

// Vet rejects a configuration whose templates contain a forbidden phrase.
func (c Config) Vet() error {
	for name, template := range map[string]string{
		"pass":       c.PassTemplate,
		"fail":       c.FailTemplate,
		"fee_waiver": c.FeeWaiverSuffix,
	} {
		if phrase := firstForbidden(template); phrase != "" {
			return dErrors.Newf(dErrors.CodeInvariantViolation,
				"%s template contains forbidden phrase %q", name, phrase)
		}
	}
	return nil
}

func firstForbidden(text string) string {
	lowered := strings.ToLower(text)
	for _, phrase := range ForbiddenPhrases {
		if strings.Contains(lowered, strings.ToLower(phrase)) {
			return phrase
		}
	}
	return ""
}

// Composer renders result messages from a vetted Config.
type Composer struct {
	cfg Config
}

// NewComposer vets the configuration and constructs a Composer.
func NewComposer(cfg Config) (*Composer, error) {
	if err := cfg.Vet(); err != nil {
		return nil, err
	}
	return &Composer{cfg: cfg}, nil
}

// MustDefaultComposer builds a Composer from DefaultConfig. The default
// wording is covered by tests, so a vet failure here is a programming error.
func MustDefaultComposer() *Composer {
	c, err := NewComposer(DefaultConfig())
	if err != nil {
		panic(err)
	}
	return c
}

// Compose selects the pass or fail message for the district's state and
// appends the fee waiver sentence when it applies. The fee waiver sentence
// is only reachable from the pass branch; below 60 percent of the median is
// necessarily below the median.
func (c *Composer) Compose(passes, feeWaiver bool, state string) string {
	if !passes {
		return fmt.Sprintf(c.cfg.FailTemplate, state)
	}
	message := fmt.Sprintf(c.cfg.PassTemplate, state)
	if feeWaiver {
		message += c.cfg.FeeWaiverSuffix
	}
	return message
}
