package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruralpay/investflow/internal/models"
)

func TestOnboarding_EnterNormalizesStep(t *testing.T) {
	f := newFlowFixture(t, succeedingProvider())

	for _, step := range []int{0, -1, 6, 99} {
		assert.Equal(t, models.OnboardingStep(1), f.onboarding.Enter(step))
		assert.Equal(t, 1, f.onboarding.Step())
	}
	assert.Equal(t, models.OnboardingStep(3), f.onboarding.Enter(3))
	assert.Equal(t, 3, f.store.Snapshot().OnboardingStep)
}

func TestOnboarding_StepGating(t *testing.T) {
	f := newFlowFixture(t, succeedingProvider())
	o := f.onboarding

	route, err := o.Next()
	require.NoError(t, err)
	assert.Equal(t, models.OnboardingStep(2), route)

	route, err = o.Next()
	assert.True(t, IsValidationError(err))
	assert.ErrorIs(t, err, ErrStepIncomplete)
	assert.Equal(t, models.OnboardingStep(2), route)

	require.NoError(t, o.SetRiskProfile(models.RiskProfile{InvestmentTimeline: "3-5"}))
	assert.False(t, o.CanProceed())
	require.NoError(t, o.SetRiskProfile(models.RiskProfile{InvestmentTimeline: "3-5", RiskComfort: "moderate"}))
	assert.True(t, o.CanProceed())

	route, err = o.Next()
	require.NoError(t, err)
	assert.Equal(t, models.OnboardingStep(3), route)

	_, err = o.Next()
	assert.ErrorIs(t, err, ErrStepIncomplete)

	selected, err := o.TogglePreference("shariah")
	require.NoError(t, err)
	assert.True(t, selected)

	route, err = o.Next()
	require.NoError(t, err)
	assert.Equal(t, models.OnboardingStep(4), route)

	_, err = o.Next()
	assert.ErrorIs(t, err, ErrStepIncomplete)
}

func TestOnboarding_RejectsUnknownOptions(t *testing.T) {
	f := newFlowFixture(t, succeedingProvider())
	o := f.onboarding

	assert.ErrorIs(t, o.SetRiskProfile(models.RiskProfile{InvestmentTimeline: "forever"}), ErrUnknownOption)
	assert.ErrorIs(t, o.SetRiskProfile(models.RiskProfile{RiskComfort: "reckless"}), ErrUnknownOption)
	assert.ErrorIs(t, o.SetPreferences([]string{"growth", "crypto"}), ErrUnknownOption)

	_, err := o.TogglePreference("crypto")
	assert.ErrorIs(t, err, ErrUnknownOption)
}

func TestOnboarding_TogglePreference(t *testing.T) {
	f := newFlowFixture(t, succeedingProvider())
	o := f.onboarding

	require.NoError(t, o.SetPreferences([]string{"growth", "growth", "income"}))
	assert.Equal(t, []string{"growth", "income"}, f.store.Snapshot().InvestmentPreferences)

	selected, err := o.TogglePreference("growth")
	require.NoError(t, err)
	assert.False(t, selected)
	assert.Equal(t, []string{"income"}, f.store.Snapshot().InvestmentPreferences)
}

func TestOnboarding_Back(t *testing.T) {
	f := newFlowFixture(t, succeedingProvider())
	o := f.onboarding

	route, err := o.Back()
	require.NoError(t, err)
	assert.Equal(t, models.Dashboard(), route)

	o.Enter(3)
	route, err = o.Back()
	require.NoError(t, err)
	assert.Equal(t, models.OnboardingStep(2), route)
}

func TestOnboarding_DirectEntryCannotComplete(t *testing.T) {
	f := newFlowFixture(t, succeedingProvider())
	o := f.onboarding

	o.Enter(5)
	o.UpdatePersonalInfo(DemoPersonalInfo())
	o.SetConfirmed(true)
	assert.True(t, o.CanProceed())

	_, err := o.Submit()
	assert.True(t, IsValidationError(err))
	assert.ErrorIs(t, err, ErrStepIncomplete)

	f.sched.Advance(time.Minute)
	assert.False(t, f.store.Snapshot().OnboardingComplete)
	assert.Empty(t, f.nav.routes)
}

func TestOnboarding_PersonalInfoStepNeedsEveryField(t *testing.T) {
	f := newFlowFixture(t, succeedingProvider())
	o := f.onboarding

	o.Enter(5)
	info := DemoPersonalInfo()
	info.Email = ""
	o.UpdatePersonalInfo(info)
	o.SetConfirmed(true)
	assert.False(t, o.CanProceed())

	info.Email = "user@example.com"
	o.UpdatePersonalInfo(info)
	assert.True(t, o.CanProceed())

	o.SetConfirmed(false)
	assert.False(t, o.CanProceed())
}

func completeOnboardingSteps(t *testing.T, f *flowFixture) {
	t.Helper()
	o := f.onboarding

	o.Enter(1)
	_, err := o.Next()
	require.NoError(t, err)
	require.NoError(t, o.SetRiskProfile(models.RiskProfile{InvestmentTimeline: "1-3", RiskComfort: "conservative"}))
	_, err = o.Next()
	require.NoError(t, err)
	require.NoError(t, o.SetPreferences([]string{"income"}))
	_, err = o.Next()
	require.NoError(t, err)

	require.NoError(t, f.verification.SelectBank("Public Bank"))
	require.NoError(t, f.verification.Proceed())
	f.sched.Advance(3500 * time.Millisecond)

	route, err := o.Next()
	require.NoError(t, err)
	require.Equal(t, models.OnboardingStep(5), route)
}

func TestOnboarding_FullFlow(t *testing.T) {
	f := newFlowFixture(t, succeedingProvider())
	o := f.onboarding

	completeOnboardingSteps(t, f)
	assert.Equal(t, DemoPersonalInfo(), o.View().PersonalInfo)

	_, err := o.Next()
	assert.ErrorIs(t, err, ErrStepIncomplete)

	o.SetConfirmed(true)
	_, err = o.Next()
	require.NoError(t, err)
	assert.True(t, o.View().Submitting)
	assert.False(t, o.CanProceed())

	_, err = o.Back()
	assert.ErrorIs(t, err, ErrInvalidTransition)

	f.sched.Advance(1999 * time.Millisecond)
	assert.False(t, f.store.Snapshot().OnboardingComplete)

	f.sched.Advance(time.Millisecond)
	snap := f.store.Snapshot()
	assert.True(t, snap.OnboardingComplete)
	assert.True(t, snap.EkycComplete)
	assert.Equal(t, models.ScreenRoute(models.ScreenInvestProducts), f.nav.last())
}

func TestOnboarding_CloseCancelsCompletion(t *testing.T) {
	f := newFlowFixture(t, succeedingProvider())
	o := f.onboarding

	completeOnboardingSteps(t, f)
	o.SetConfirmed(true)
	_, err := o.Submit()
	require.NoError(t, err)

	o.Close()
	f.sched.Advance(time.Minute)

	assert.False(t, f.store.Snapshot().OnboardingComplete)
	assert.Empty(t, f.nav.routes)
	assert.Equal(t, DemoPersonalInfo(), f.store.Snapshot().PersonalInfo)
}

func TestOnboarding_ReenteringVerificationResets(t *testing.T) {
	f := newFlowFixture(t, failingProvider())
	o := f.onboarding

	o.Enter(4)
	require.NoError(t, f.verification.SelectBank("Affin Bank"))
	require.NoError(t, f.verification.Proceed())
	f.sched.Advance(3500 * time.Millisecond)
	require.Equal(t, StageFailed, f.verification.View().Stage)

	o.Enter(3)
	o.Enter(4)
	view := o.View()
	require.NotNil(t, view.Verification)
	assert.Equal(t, StageSelection, view.Verification.Stage)
	assert.Empty(t, view.Verification.SelectedBank)
}

func TestOnboarding_ViewCarriesOptions(t *testing.T) {
	f := newFlowFixture(t, succeedingProvider())
	o := f.onboarding

	o.Enter(2)
	view := o.View()
	assert.Len(t, view.Timelines, 4)
	assert.Len(t, view.Comforts, 4)
	assert.Nil(t, view.Verification)

	o.Enter(3)
	assert.Len(t, o.View().PrefOptions, 4)
}
