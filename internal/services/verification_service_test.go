package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ruralpay/investflow/internal/models"
)

func TestVerification_BankRedirectSuccess(t *testing.T) {
	f := newFlowFixture(t, succeedingProvider())
	v := f.verification

	assert.False(t, v.View().CanProceed)
	require.NoError(t, v.SelectBank("Maybank"))
	assert.True(t, v.View().CanProceed)

	require.NoError(t, v.Proceed())
	assert.Equal(t, StageAuthenticating, v.View().Stage)

	f.sched.Advance(1500 * time.Millisecond)
	assert.Equal(t, StageVerificationProcessing, v.View().Stage)

	f.sched.Advance(2 * time.Second)
	view := v.View()
	assert.Equal(t, StageVerified, view.Stage)
	assert.True(t, view.CanContinue)

	snap := f.store.Snapshot()
	assert.Equal(t, models.VerificationSuccess, snap.BankVerificationStatus)
	assert.Equal(t, DemoPersonalInfo(), snap.PersonalInfo)
}

func TestVerification_ProceedRequiresBank(t *testing.T) {
	f := newFlowFixture(t, succeedingProvider())

	err := f.verification.Proceed()
	assert.True(t, IsValidationError(err))
	assert.ErrorIs(t, err, ErrBankNotSelected)

	assert.ErrorIs(t, f.verification.SelectBank("Bank of Nowhere"), ErrUnknownBank)
}

func TestVerification_SelectBankByCode(t *testing.T) {
	f := newFlowFixture(t, succeedingProvider())

	require.NoError(t, f.verification.SelectBank("hlb"))
	assert.Equal(t, "Hong Leong Bank", f.verification.View().SelectedBank)
}

func TestVerification_FailureThenRetry(t *testing.T) {
	provider := &MockBankProvider{}
	provider.On("InitiateVerification", mock.Anything, "CIMB").
		Return(VerificationResult{Reason: "Connection timeout"}, nil).Once()
	provider.On("InitiateVerification", mock.Anything, "CIMB").
		Return(VerificationResult{Success: true, PersonalInfo: DemoPersonalInfo()}, nil).Once()

	f := newFlowFixture(t, provider)
	v := f.verification

	require.NoError(t, v.SelectBank("CIMB"))
	require.NoError(t, v.Proceed())
	f.sched.Advance(3500 * time.Millisecond)

	view := v.View()
	assert.Equal(t, StageFailed, view.Stage)
	assert.Equal(t, "Connection timeout", view.FailureReason)
	assert.Equal(t, models.VerificationFailed, f.store.Snapshot().BankVerificationStatus)

	require.NoError(t, v.Retry())
	f.sched.Advance(3500 * time.Millisecond)
	assert.Equal(t, StageVerified, v.View().Stage)
	assert.Equal(t, 2, v.View().Attempts)
	provider.AssertExpectations(t)
}

func TestVerification_ProviderErrorFails(t *testing.T) {
	provider := &MockBankProvider{}
	provider.On("InitiateVerification", mock.Anything, "RHB").
		Return(VerificationResult{}, errors.New("upstream unavailable"))

	f := newFlowFixture(t, provider)
	require.NoError(t, f.verification.SelectBank("RHB"))
	require.NoError(t, f.verification.Proceed())
	f.sched.Advance(4 * time.Second)

	view := f.verification.View()
	assert.Equal(t, StageFailed, view.Stage)
	assert.Equal(t, "upstream unavailable", view.FailureReason)
}

func TestVerification_PhotoUploadIsDeterministic(t *testing.T) {
	for i := 0; i < 5; i++ {
		f := newFlowFixture(t, failingProvider())
		v := f.verification

		require.NoError(t, v.SelectBank("AmBank"))
		require.NoError(t, v.Proceed())
		f.sched.Advance(3500 * time.Millisecond)
		require.Equal(t, StageFailed, v.View().Stage)

		assert.ErrorIs(t, v.CapturePhoto(PhotoFront), ErrInvalidTransition)
		require.NoError(t, v.UsePhotoUpload())

		require.NoError(t, v.CapturePhoto(PhotoFront))
		assert.False(t, v.View().CanVerifyPhotos)
		err := v.VerifyPhotos()
		assert.True(t, IsValidationError(err))
		assert.ErrorIs(t, err, ErrPhotosMissing)

		require.NoError(t, v.CapturePhoto(PhotoBack))
		assert.True(t, v.View().CanVerifyPhotos)
		require.NoError(t, v.VerifyPhotos())

		assert.Equal(t, StageVerified, v.View().Stage)
		assert.Equal(t, models.VerificationSuccess, f.store.Snapshot().BankVerificationStatus)
		assert.Equal(t, DemoPersonalInfo(), f.store.Snapshot().PersonalInfo)
	}
}

func TestVerification_CloseCancelsTimers(t *testing.T) {
	f := newFlowFixture(t, succeedingProvider())
	v := f.verification

	require.NoError(t, v.SelectBank("Maybank"))
	require.NoError(t, v.Proceed())
	f.sched.Advance(time.Second)
	v.Close()
	f.sched.Advance(10 * time.Second)

	assert.Equal(t, StageAuthenticating, v.View().Stage)
	assert.Equal(t, models.VerificationPending, f.store.Snapshot().BankVerificationStatus)
}

func TestVerification_ResetKeepsSuccess(t *testing.T) {
	f := newFlowFixture(t, succeedingProvider())
	v := f.verification

	require.NoError(t, v.SelectBank("UOB Malaysia"))
	v.Reset()
	assert.Equal(t, StageSelection, v.View().Stage)
	assert.Empty(t, v.View().SelectedBank)

	f.store.SetVerification(models.VerificationSuccess)
	v.Reset()
	assert.Equal(t, StageVerified, v.View().Stage)
}

func TestProbabilityDecider(t *testing.T) {
	always := NewProbabilityDecider(1, 42)
	never := NewProbabilityDecider(0, 42)
	for i := 0; i < 20; i++ {
		assert.True(t, always.Succeed())
		assert.False(t, never.Succeed())
	}
}
