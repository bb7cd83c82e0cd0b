package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ruralpay/investflow/internal/audit"
	"github.com/ruralpay/investflow/internal/models"
	"github.com/ruralpay/investflow/internal/scheduler"
)

type investmentFixture struct {
	sched *scheduler.Manual
	store *SessionStore
	nav   *recordingNavigator
	svc   *InvestmentService
}

func newInvestmentFixture(t *testing.T, balance models.Money, ledger func(*SessionStore) Ledger, refs ReferenceGenerator) *investmentFixture {
	t.Helper()
	f := &investmentFixture{
		sched: scheduler.NewManual(fixedNow),
		store: NewSessionStore(sessionWithBalance(balance)),
		nav:   &recordingNavigator{},
	}
	var l Ledger = NewSessionLedger(f.store)
	if ledger != nil {
		l = ledger(f.store)
	}
	if refs == nil {
		refs = NewRandomReference("BF-2025-")
	}
	f.svc = NewInvestmentService("test", f.store, l, refs, f.nav, f.sched, testFlowConfig(), audit.NewLogger())
	t.Cleanup(f.svc.Close)
	return f
}

func (f *investmentFixture) readyToConfirm(t *testing.T, fundID string, amount models.Money) {
	t.Helper()
	_, err := f.svc.SelectFund(fundID, amount)
	require.NoError(t, err)
	_, err = f.svc.ProceedToFinal()
	require.NoError(t, err)
	for i := 0; i < models.ConfirmationCount; i++ {
		require.NoError(t, f.svc.SetCheckbox(i, true))
	}
}

func TestInvestment_SelectFund(t *testing.T) {
	f := newInvestmentFixture(t, 15000, nil, nil)

	_, err := f.svc.SelectFund("9", 5000)
	assert.ErrorIs(t, err, ErrUnknownFund)

	_, err = f.svc.SelectFund("2", 999)
	assert.True(t, IsValidationError(err))
	assert.ErrorIs(t, err, ErrBelowMinimum)
	assert.Nil(t, f.store.Snapshot().SelectedFund)

	route, err := f.svc.SelectFund("Money Market Fund", 1000)
	require.NoError(t, err)
	assert.Equal(t, models.Confirmation(false), route)
	assert.Equal(t, StageConfirmationReview, f.svc.Stage())
	assert.Equal(t, "2", f.store.Snapshot().SelectedFund.ID)
}

func TestInvestment_ReselectResetsCheckboxes(t *testing.T) {
	f := newInvestmentFixture(t, 15000, nil, nil)
	f.readyToConfirm(t, "1", 2000)
	assert.True(t, f.svc.CanConfirm())

	_, err := f.svc.SelectFund("3", 3000)
	require.NoError(t, err)
	assert.Equal(t, [models.ConfirmationCount]bool{}, f.store.Snapshot().ConfirmedCheckboxes)
	assert.False(t, f.svc.CanConfirm())
}

func TestInvestment_ConfirmGating(t *testing.T) {
	for mask := 0; mask < 1<<models.ConfirmationCount; mask++ {
		for _, amount := range []models.Money{5000, 15000, 15001} {
			t.Run(fmt.Sprintf("boxes=%03b amount=%d", mask, amount), func(t *testing.T) {
				f := newInvestmentFixture(t, 15000, nil, nil)
				_, err := f.svc.SelectFund("1", amount)
				require.NoError(t, err)
				_, err = f.svc.ProceedToFinal()
				require.NoError(t, err)
				for i := 0; i < models.ConfirmationCount; i++ {
					require.NoError(t, f.svc.SetCheckbox(i, mask&(1<<i) != 0))
				}

				allBoxes := mask == 1<<models.ConfirmationCount-1
				want := allBoxes && amount <= 15000
				assert.Equal(t, want, f.svc.CanConfirm())
				assert.Equal(t, want, f.svc.View().CanConfirm)

				route, err := f.svc.Confirm()
				switch {
				case !allBoxes:
					assert.ErrorIs(t, err, ErrAcknowledgementsMissing)
				case amount > 15000:
					assert.ErrorIs(t, err, ErrInsufficientBalance)
					assert.True(t, f.svc.View().InsufficientBalance)
				default:
					require.NoError(t, err)
					assert.Equal(t, models.ScreenRoute(models.ScreenInvestProcessing), route)
				}
			})
		}
	}
}

func TestInvestment_ToggleCheckbox(t *testing.T) {
	f := newInvestmentFixture(t, 15000, nil, nil)

	_, err := f.svc.ToggleCheckbox(0)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.svc.SelectFund("1", 1000)
	require.NoError(t, err)

	checked, err := f.svc.ToggleCheckbox(1)
	require.NoError(t, err)
	assert.True(t, checked)
	checked, err = f.svc.ToggleCheckbox(1)
	require.NoError(t, err)
	assert.False(t, checked)

	_, err = f.svc.ToggleCheckbox(3)
	assert.ErrorIs(t, err, ErrUnknownOption)
}

func TestInvestment_EndToEnd(t *testing.T) {
	f := newInvestmentFixture(t, 15000, nil, nil)
	f.readyToConfirm(t, "2", 5000)

	_, err := f.svc.Confirm()
	require.NoError(t, err)
	assert.Equal(t, StageProcessing, f.svc.Stage())
	assert.Equal(t, PhaseValidating, f.svc.View().Phase)

	f.sched.Advance(1500 * time.Millisecond)
	assert.Equal(t, PhaseCheckingBalance, f.svc.View().Phase)

	f.sched.Advance(1500 * time.Millisecond)
	assert.Equal(t, PhaseActivating, f.svc.View().Phase)
	assert.Equal(t, models.Money(15000), f.store.Balance())

	f.sched.Advance(2 * time.Second)
	assert.Equal(t, StageSuccess, f.svc.Stage())
	assert.Equal(t, models.ScreenRoute(models.ScreenInvestSuccess), f.nav.last())

	snap := f.store.Snapshot()
	assert.Equal(t, "100.00", snap.WalletBalance.String())
	assert.True(t, snap.HasInvested)
	require.Len(t, snap.Holdings, 1)
	assert.Equal(t, "2", snap.Holdings[0].FundID)
	assert.Equal(t, models.Money(5000), snap.Holdings[0].Amount)
	assert.NotEmpty(t, snap.Holdings[0].ID)

	receipt, err := f.svc.Receipt()
	require.NoError(t, err)
	assert.Regexp(t, `^BF-2025-\d{6}$`, receipt.ReferenceNumber)
	assert.Equal(t, snap.Holdings[0].ReferenceNumber, receipt.ReferenceNumber)
	assert.Equal(t, models.Money(10000), receipt.NewBalance)
	assert.Equal(t, fixedNow.Add(5*time.Second), receipt.Timestamp)
	assert.NotEmpty(t, receipt.QRCode)
}

func TestInvestment_BalanceConservation(t *testing.T) {
	for _, tc := range []struct{ balance, amount models.Money }{
		{15000, 1000},
		{15000, 15000},
		{1234567, 98765},
	} {
		f := newInvestmentFixture(t, tc.balance, nil, fixedReference("BF-2025-000001"))
		f.readyToConfirm(t, "3", tc.amount)
		_, err := f.svc.Confirm()
		require.NoError(t, err)
		f.sched.Advance(5 * time.Second)

		assert.Equal(t, tc.balance-tc.amount, f.store.Balance())
	}
}

func TestInvestment_DebitFailureReturnsToFinal(t *testing.T) {
	ledger := &MockLedger{}
	ledger.On("Debit", mock.Anything, "demo-user-001", "BF-2025-000007", models.Money(5000)).
		Return(models.Money(0), ErrInsufficientBalance)

	f := newInvestmentFixture(t, 15000, func(*SessionStore) Ledger { return ledger }, fixedReference("BF-2025-000007"))
	f.readyToConfirm(t, "1", 5000)
	_, err := f.svc.Confirm()
	require.NoError(t, err)

	f.sched.Advance(5 * time.Second)

	assert.Equal(t, StageConfirmationFinal, f.svc.Stage())
	assert.Equal(t, models.Confirmation(true), f.nav.last())
	assert.True(t, f.svc.View().InsufficientBalance)
	assert.False(t, f.store.Snapshot().HasInvested)
	assert.Equal(t, models.Money(15000), f.store.Balance())
	ledger.AssertExpectations(t)
}

func TestInvestment_ExternalLedgerBalanceIsMirrored(t *testing.T) {
	ledger := &MockLedger{}
	ledger.On("Debit", mock.Anything, "demo-user-001", "BF-2025-000008", models.Money(5000)).
		Return(models.Money(9000), nil)

	f := newInvestmentFixture(t, 15000, func(*SessionStore) Ledger { return ledger }, fixedReference("BF-2025-000008"))
	f.readyToConfirm(t, "1", 5000)
	_, err := f.svc.Confirm()
	require.NoError(t, err)
	f.sched.Advance(5 * time.Second)

	assert.Equal(t, models.Money(9000), f.store.Balance())
	assert.True(t, f.store.Snapshot().HasInvested)
}

func TestInvestment_ConfirmationWithoutFundRedirects(t *testing.T) {
	f := newInvestmentFixture(t, 15000, nil, nil)

	assert.Equal(t, models.ScreenRoute(models.ScreenInvestProducts), f.svc.EnterConfirmation(true))
	assert.Equal(t, StageFundSelection, f.svc.Stage())
	assert.Len(t, f.svc.View().Funds, 3)
}

func TestInvestment_StartAnother(t *testing.T) {
	f := newInvestmentFixture(t, 15000, nil, nil)

	_, err := f.svc.StartAnother()
	assert.ErrorIs(t, err, ErrInvalidTransition)

	f.readyToConfirm(t, "1", 1000)
	_, err = f.svc.Confirm()
	require.NoError(t, err)
	f.sched.Advance(5 * time.Second)

	route, err := f.svc.StartAnother()
	require.NoError(t, err)
	assert.Equal(t, models.ScreenRoute(models.ScreenInvestProducts), route)

	snap := f.store.Snapshot()
	assert.Nil(t, snap.SelectedFund)
	assert.Equal(t, [models.ConfirmationCount]bool{}, snap.ConfirmedCheckboxes)
	assert.Len(t, snap.Holdings, 1)
}

func TestInvestment_ProcessingCannotBeRestarted(t *testing.T) {
	f := newInvestmentFixture(t, 15000, nil, nil)
	f.readyToConfirm(t, "1", 1000)
	_, err := f.svc.Confirm()
	require.NoError(t, err)

	_, err = f.svc.SelectFund("2", 1000)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = f.svc.Confirm()
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, models.ScreenRoute(models.ScreenInvestProcessing), f.svc.EnterConfirmation(false))
}
