package services

import (
	"fmt"
	"sync"

	"github.com/ruralpay/investflow/internal/models"
)

const defaultInvestmentAmount models.Money = 5000

// DefaultSession is the demo wallet every new session starts from.
func DefaultSession() models.Session {
	return models.Session{
		User: models.User{
			ID:    "demo-user-001",
			Email: "user@example.com",
			Name:  "Demo User",
			Phone: "+60123456789",
		},
		WalletBalance:          15000,
		OnboardingStep:         models.FirstOnboardingStep,
		BankVerificationStatus: models.VerificationPending,
		InvestmentAmount:       defaultInvestmentAmount,
		InvestmentPreferences:  []string{},
		Holdings:               []models.Investment{},
	}
}

// SessionStore is the single source of truth for one session. Every mutation
// goes through a method so balance and investment status writes are serialized.
type SessionStore struct {
	mu sync.RWMutex
	s  models.Session
}

func NewSessionStore(initial models.Session) *SessionStore {
	return &SessionStore{s: initial.Clone()}
}

func (st *SessionStore) Snapshot() models.Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.s.Clone()
}

func (st *SessionStore) Balance() models.Money {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.s.WalletBalance
}

func (st *SessionStore) UserID() string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.s.User.ID
}

func (st *SessionStore) SetOnboardingStep(step int) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.OnboardingStep = step
}

func (st *SessionStore) SetRiskProfile(p models.RiskProfile) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.RiskProfile = p
}

func (st *SessionStore) SetPreferences(prefs []string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.InvestmentPreferences = append([]string{}, prefs...)
}

func (st *SessionStore) SetVerification(status models.BankVerificationStatus) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.BankVerificationStatus = status
}

func (st *SessionStore) SetPersonalInfo(info models.PersonalInfo) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.PersonalInfo = info
}

// CompleteOnboarding persists the submitted personal info and unlocks investing.
func (st *SessionStore) CompleteOnboarding(info models.PersonalInfo) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.PersonalInfo = info
	st.s.OnboardingComplete = true
	st.s.EkycComplete = true
}

// SetSelection records the fund being invested in and starts a fresh set of
// acknowledgements.
func (st *SessionStore) SetSelection(fund models.Fund, amount models.Money) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.SelectedFund = &fund
	st.s.InvestmentAmount = amount
	st.s.ConfirmedCheckboxes = [models.ConfirmationCount]bool{}
}

func (st *SessionStore) ClearSelection() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.SelectedFund = nil
	st.s.InvestmentAmount = defaultInvestmentAmount
	st.s.ConfirmedCheckboxes = [models.ConfirmationCount]bool{}
}

func (st *SessionStore) ResetCheckboxes() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.ConfirmedCheckboxes = [models.ConfirmationCount]bool{}
}

func (st *SessionStore) SetCheckbox(index int, checked bool) error {
	if index < 0 || index >= models.ConfirmationCount {
		return fmt.Errorf("checkbox %d: %w", index, ErrUnknownOption)
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.ConfirmedCheckboxes[index] = checked
	return nil
}

func (st *SessionStore) ToggleCheckbox(index int) (bool, error) {
	if index < 0 || index >= models.ConfirmationCount {
		return false, fmt.Errorf("checkbox %d: %w", index, ErrUnknownOption)
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.ConfirmedCheckboxes[index] = !st.s.ConfirmedCheckboxes[index]
	return st.s.ConfirmedCheckboxes[index], nil
}

// Debit removes amount from the wallet atomically. The balance is untouched
// when amount exceeds it.
func (st *SessionStore) Debit(amount models.Money) (models.Money, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if amount > st.s.WalletBalance {
		return st.s.WalletBalance, ErrInsufficientBalance
	}
	st.s.WalletBalance -= amount
	return st.s.WalletBalance, nil
}

func (st *SessionStore) Credit(amount models.Money) (models.Money, error) {
	if amount < 0 {
		return 0, ErrInvalidAmount
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.WalletBalance += amount
	return st.s.WalletBalance, nil
}

// SetBalance mirrors a balance reported by an external ledger.
func (st *SessionStore) SetBalance(balance models.Money) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.WalletBalance = balance
}

// RecordInvestment marks the session as invested and appends the holding.
func (st *SessionStore) RecordInvestment(inv models.Investment) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.HasInvested = true
	st.s.Holdings = append(st.s.Holdings, inv)
}
