package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoute(t *testing.T) {
	tests := []struct {
		raw  string
		want Route
	}{
		{"/dashboard", Dashboard()},
		{"", Dashboard()},
		{"/invest-onboarding?step=3", Route{Screen: ScreenInvestOnboarding, Step: 3}},
		{"/invest-onboarding", Route{Screen: ScreenInvestOnboarding, Step: 1}},
		{"/invest-onboarding?step=9", Route{Screen: ScreenInvestOnboarding, Step: 1}},
		{"/invest-onboarding?step=abc", Route{Screen: ScreenInvestOnboarding, Step: 1}},
		{"/invest-confirmation?step=final", Route{Screen: ScreenInvestConfirmation, Final: true}},
		{"/invest-confirmation", Route{Screen: ScreenInvestConfirmation}},
		{"/invest-success", ScreenRoute(ScreenInvestSuccess)},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseRoute(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("unknown screen", func(t *testing.T) {
		_, err := ParseRoute("/settings")
		assert.Error(t, err)
	})
}

func TestRoute_PathRoundTrip(t *testing.T) {
	for _, r := range []Route{
		Dashboard(),
		OnboardingStep(4),
		Confirmation(false),
		Confirmation(true),
		ScreenRoute(ScreenInvestProcessing),
	} {
		parsed, err := ParseRoute(r.Path())
		require.NoError(t, err)
		assert.Equal(t, r, parsed)
	}
	assert.Equal(t, "/invest-onboarding?step=2", OnboardingStep(2).Path())
	assert.Equal(t, "/invest-confirmation?step=final", Confirmation(true).Path())
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "100.00", Money(10000).String())
	assert.Equal(t, "0.05", Money(5).String())
	assert.Equal(t, "-2.50", Money(-250).String())
	assert.Equal(t, Money(1999), MoneyFromMajor(19.99))
	assert.Equal(t, Money(5000), MoneyFromMajor(50))
	assert.Equal(t, Money(10), MoneyFromMajor(0.1))
	assert.Equal(t, 150.0, Money(15000).Major())
}

func TestFundCatalog(t *testing.T) {
	funds := Funds()
	require.Len(t, funds, 3)

	mmf, ok := FundByName("Money Market Fund")
	require.True(t, ok)
	assert.Equal(t, Money(1000), mmf.MinimumInvestment)

	funds[0].Name = "mutated"
	f, _ := FundByID(funds[0].ID)
	assert.Equal(t, "Balanced Growth Fund", f.Name)
}
