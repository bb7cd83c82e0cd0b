package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ruralpay/investflow/internal/audit"
	"github.com/ruralpay/investflow/internal/models"
	"github.com/ruralpay/investflow/internal/scheduler"
)

func newPaymentFixture(t *testing.T, balance models.Money) (*PaymentService, *SessionStore, *scheduler.Manual, *recordingNavigator) {
	t.Helper()
	sched := scheduler.NewManual(fixedNow)
	store := NewSessionStore(sessionWithBalance(balance))
	nav := &recordingNavigator{}
	svc := NewPaymentService("test", store, NewSessionLedger(store), nav, sched, testFlowConfig(), audit.NewLogger())
	t.Cleanup(svc.Close)
	return svc, store, sched, nav
}

func TestMerchant_Cashback(t *testing.T) {
	tests := []struct {
		merchant string
		amount   models.Money
		want     models.Money
	}{
		{"coffee-bean", 1000, 50},
		{"megamart", 2550, 77},
		{"noodle-house", 1250, 100},
		{"fashion-avenue", 12, 0},
		{"fashion-avenue", 13, 1},
	}
	for _, tt := range tests {
		m, ok := MerchantByID(tt.merchant)
		require.True(t, ok)
		assert.Equal(t, tt.want, m.Cashback(tt.amount), tt.merchant)
	}
}

func TestPayment_PayMerchant(t *testing.T) {
	svc, store, sched, nav := newPaymentFixture(t, 15000)

	route, err := svc.PayMerchant("coffee-bean", 1000)
	require.NoError(t, err)
	assert.Equal(t, models.ScreenRoute(models.ScreenMerchantPayment), route)
	assert.True(t, svc.View().Processing)

	_, err = svc.PayMerchant("coffee-bean", 1000)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	sched.Advance(1500 * time.Millisecond)

	assert.Equal(t, models.Money(14050), store.Balance())
	assert.Equal(t, models.ScreenRoute(models.ScreenCashbackConfirmation), nav.last())

	last, ok := svc.LastPayment()
	require.True(t, ok)
	assert.Equal(t, "Coffee Bean Cafe", last.Merchant.Name)
	assert.Equal(t, models.Money(1000), last.Amount)
	assert.Equal(t, models.Money(50), last.Cashback)
	assert.Equal(t, models.Money(14050), last.Balance)
	assert.False(t, svc.View().Processing)
}

func TestPayment_Rejections(t *testing.T) {
	svc, _, _, _ := newPaymentFixture(t, 1000)

	_, err := svc.PayMerchant("corner-shop", 100)
	assert.ErrorIs(t, err, ErrUnknownMerchant)

	_, err = svc.PayMerchant("megamart", 0)
	assert.True(t, IsValidationError(err))

	_, err = svc.PayMerchant("megamart", 1001)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	assert.True(t, svc.CanPay(1000))
	assert.False(t, svc.CanPay(1001))
	assert.False(t, svc.CanPay(0))
}

func TestPayment_CloseDropsPendingPayment(t *testing.T) {
	svc, store, sched, nav := newPaymentFixture(t, 15000)

	_, err := svc.PayMerchant("noodle-house", 2000)
	require.NoError(t, err)
	svc.Close()
	sched.Advance(time.Minute)

	assert.Equal(t, models.Money(15000), store.Balance())
	assert.Empty(t, nav.routes)
	_, ok := svc.LastPayment()
	assert.False(t, ok)
}

func TestPayment_CashbackCreditFailureKeepsDebit(t *testing.T) {
	sched := scheduler.NewManual(fixedNow)
	store := NewSessionStore(sessionWithBalance(15000))
	nav := &recordingNavigator{}
	ledger := &MockLedger{}
	ledger.On("Debit", mock.Anything, "demo-user-001", mock.AnythingOfType("string"), models.Money(2000)).
		Return(models.Money(13000), nil)
	ledger.On("Credit", mock.Anything, "demo-user-001", mock.AnythingOfType("string"), models.Money(160)).
		Return(models.Money(0), errors.New("cashback account locked"))

	svc := NewPaymentService("test", store, ledger, nav, sched, testFlowConfig(), audit.NewLogger())
	t.Cleanup(svc.Close)

	_, err := svc.PayMerchant("noodle-house", 2000)
	require.NoError(t, err)
	sched.Advance(1500 * time.Millisecond)

	assert.Equal(t, models.Money(13000), store.Balance())
	assert.Equal(t, models.ScreenRoute(models.ScreenCashbackConfirmation), nav.last())

	last, ok := svc.LastPayment()
	require.True(t, ok)
	assert.True(t, last.CashbackFailed)
	assert.Equal(t, models.Money(0), last.Cashback)
	assert.Equal(t, models.Money(13000), last.Balance)
	assert.False(t, svc.View().Processing)
	ledger.AssertExpectations(t)
}

func TestPayment_DebitFailureIsReported(t *testing.T) {
	sched := scheduler.NewManual(fixedNow)
	store := NewSessionStore(sessionWithBalance(15000))
	nav := &recordingNavigator{}
	ledger := &MockLedger{}
	ledger.On("Debit", mock.Anything, "demo-user-001", mock.AnythingOfType("string"), models.Money(2000)).
		Return(models.Money(0), ErrInsufficientBalance)

	svc := NewPaymentService("test", store, ledger, nav, sched, testFlowConfig(), audit.NewLogger())
	t.Cleanup(svc.Close)

	_, err := svc.PayMerchant("noodle-house", 2000)
	require.NoError(t, err)
	sched.Advance(1500 * time.Millisecond)

	view := svc.View()
	assert.False(t, view.Processing)
	assert.Equal(t, ErrInsufficientBalance.Error(), view.LastError)
	assert.Equal(t, models.Money(15000), store.Balance())
	assert.Empty(t, nav.routes)
	ledger.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
