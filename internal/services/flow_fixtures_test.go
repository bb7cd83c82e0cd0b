package services

import (
	"testing"
	"time"

	"github.com/ruralpay/investflow/internal/audit"
	"github.com/ruralpay/investflow/internal/config"
	"github.com/ruralpay/investflow/internal/models"
	"github.com/ruralpay/investflow/internal/scheduler"
)

func testFlowConfig() *config.FlowConfig {
	return &config.FlowConfig{
		AuthenticatingDelay:         1500 * time.Millisecond,
		VerificationProcessingDelay: 2 * time.Second,
		VerificationSuccessRate:     0.7,
		OnboardingCompleteDelay:     2 * time.Second,
		BalanceCheckDelay:           1500 * time.Millisecond,
		ActivationDelay:             1500 * time.Millisecond,
		CompletionDelay:             2 * time.Second,
		PaymentProcessingDelay:      1500 * time.Millisecond,
		ReferencePrefix:             "BF-2025-",
		WalletBannerThreshold:       2000,
		ReceiptQRSize:               128,
	}
}

type flowFixture struct {
	sched        *scheduler.Manual
	store        *SessionStore
	nav          *recordingNavigator
	cfg          *config.FlowConfig
	verification *VerificationService
	onboarding   *OnboardingService
}

func newFlowFixture(t *testing.T, provider BankVerificationProvider) *flowFixture {
	t.Helper()
	f := &flowFixture{
		sched: scheduler.NewManual(fixedNow),
		store: NewSessionStore(DefaultSession()),
		nav:   &recordingNavigator{},
		cfg:   testFlowConfig(),
	}
	f.verification = NewVerificationService("test", f.store, NewBankService(), provider, f.sched, f.cfg, audit.NewLogger())
	f.onboarding = NewOnboardingService("test", f.store, f.verification, f.nav, f.sched, f.cfg, audit.NewLogger())
	t.Cleanup(f.onboarding.Close)
	return f
}

func succeedingProvider() BankVerificationProvider {
	return NewSimulatedBankProvider(FixedDecider(true))
}

func failingProvider() BankVerificationProvider {
	return NewSimulatedBankProvider(FixedDecider(false))
}

func sessionWithBalance(balance models.Money) models.Session {
	s := DefaultSession()
	s.WalletBalance = balance
	return s
}
