package messages

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "clearform/pkg/domain-errors"
)

func assertNoForbiddenPhrase(t *testing.T, message string) {
	t.Helper()
	lowered := strings.ToLower(message)
	for _, phrase := range ForbiddenPhrases {
		assert.NotContains(t, lowered, strings.ToLower(phrase))
	}
}

func TestComposePassBranch(t *testing.T) {
	composer := MustDefaultComposer()

	message := composer.Compose(true, false, "Illinois")
	require.Contains(t, message, "below the median")
	require.Contains(t, message, "in Illinois")
	require.Contains(t, message, "may be eligible to file Chapter 7")
	require.NotContains(t, message, "1930(f)")
	assertNoForbiddenPhrase(t, message)
}

func TestComposePassWithFeeWaiver(t *testing.T) {
	composer := MustDefaultComposer()

	message := composer.Compose(true, true, "Illinois")
	require.Contains(t, message, "may qualify for a filing fee waiver")
	require.Contains(t, message, "28 U.S.C. § 1930(f)")
	assertNoForbiddenPhrase(t, message)
}

func TestComposeFailBranch(t *testing.T) {
	composer := MustDefaultComposer()

	message := composer.Compose(false, false, "Texas")
	require.Contains(t, message, "above the median")
	require.Contains(t, message, "in Texas")
	require.Contains(t, message, "Chapter 13")
	require.NotContains(t, message, "1930(f)")
	assertNoForbiddenPhrase(t, message)
}

func TestVetRejectsDirectiveWording(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PassTemplate = "Good news, you should file Chapter 7 in %s."
	err := cfg.Vet()
	require.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	require.Contains(t, err.Error(), "you should file")
}

func TestVetIsCaseInsensitive(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FailTemplate = "My ADVICE Is to wait before filing in %s."
	require.Error(t, cfg.Vet())
}

func TestNewComposerVets(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FeeWaiverSuffix = " I recommend asking for a waiver."
	_, err := NewComposer(cfg)
	require.Error(t, err)
}

func TestDefaultConfigPassesVet(t *testing.T) {
	require.NoError(t, DefaultConfig().Vet())
}
