package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ruralpay/investflow/internal/audit"
	"github.com/ruralpay/investflow/internal/config"
	"github.com/ruralpay/investflow/internal/models"
	"github.com/ruralpay/investflow/internal/scheduler"
)

type InvestmentStage string

const (
	StageFundSelection      InvestmentStage = "fund-selection"
	StageConfirmationReview InvestmentStage = "confirmation-review"
	StageConfirmationFinal  InvestmentStage = "confirmation-final"
	StageProcessing         InvestmentStage = "processing"
	StageSuccess            InvestmentStage = "success"
)

type ProcessingPhase string

const (
	PhaseValidating      ProcessingPhase = "validating"
	PhaseCheckingBalance ProcessingPhase = "checking-balance"
	PhaseActivating      ProcessingPhase = "activating"
	PhaseComplete        ProcessingPhase = "complete"
)

// Receipt is what the success screen shows.
type Receipt struct {
	ReferenceNumber string       `json:"referenceNumber" example:"BF-2025-004217"`
	Timestamp       time.Time    `json:"timestamp"`
	FundID          string       `json:"fundId"`
	FundName        string       `json:"fundName"`
	Amount          models.Money `json:"amount"`
	NewBalance      models.Money `json:"newBalance"`
	QRCode          string       `json:"qrCode,omitempty"`
}

type InvestmentView struct {
	Stage               InvestmentStage                `json:"stage"`
	Phase               ProcessingPhase                `json:"phase,omitempty"`
	Funds               []models.Fund                  `json:"funds,omitempty"`
	SelectedFund        *models.Fund                   `json:"selectedFund,omitempty"`
	Amount              models.Money                   `json:"amount"`
	Balance             models.Money                   `json:"balance"`
	Checkboxes          [models.ConfirmationCount]bool `json:"checkboxes"`
	CanConfirm          bool                           `json:"canConfirm"`
	InsufficientBalance bool                           `json:"insufficientBalance"`
	Receipt             *Receipt                       `json:"receipt,omitempty"`
}

// InvestmentService runs fund selection through to a completed investment.
type InvestmentService struct {
	sessionID string
	store     *SessionStore
	ledger    Ledger
	mirror    bool
	refs      ReferenceGenerator
	nav       Navigator
	timers    *scheduler.Group
	cfg       *config.FlowConfig
	audit     *audit.Logger

	mu         sync.Mutex
	stage      InvestmentStage
	phase      ProcessingPhase
	failure    error
	receipt    *Receipt
	committing bool
}

func NewInvestmentService(sessionID string, store *SessionStore, ledger Ledger, refs ReferenceGenerator, nav Navigator, sched scheduler.Scheduler, cfg *config.FlowConfig, auditLogger *audit.Logger) *InvestmentService {
	_, sessionBacked := ledger.(*SessionLedger)
	return &InvestmentService{
		sessionID: sessionID,
		store:     store,
		ledger:    ledger,
		mirror:    !sessionBacked,
		refs:      refs,
		nav:       nav,
		timers:    scheduler.NewGroup(sched),
		cfg:       cfg,
		audit:     auditLogger,
		stage:     StageFundSelection,
	}
}

func (s *InvestmentService) Stage() InvestmentStage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

func (s *InvestmentService) setStageLocked(stage InvestmentStage) {
	if s.stage != stage {
		s.audit.LogTransition(s.sessionID, "investment", string(s.stage), string(stage))
	}
	s.stage = stage
}

// EnterProducts shows the fund list. A running investment is left alone.
func (s *InvestmentService) EnterProducts() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage == StageProcessing {
		return
	}
	s.failure = nil
	s.setStageLocked(StageFundSelection)
}

// EnterConfirmation shows review or final confirmation. Without a selected
// fund it redirects to the fund list.
func (s *InvestmentService) EnterConfirmation(final bool) models.Route {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stage == StageProcessing {
		return models.ScreenRoute(models.ScreenInvestProcessing)
	}
	if s.store.Snapshot().SelectedFund == nil {
		s.setStageLocked(StageFundSelection)
		return models.ScreenRoute(models.ScreenInvestProducts)
	}
	if final {
		s.setStageLocked(StageConfirmationFinal)
	} else {
		s.setStageLocked(StageConfirmationReview)
	}
	return models.Confirmation(final)
}

// SelectFund accepts a fund id or name and an amount no lower than the fund
// minimum. Any previous acknowledgements are cleared.
func (s *InvestmentService) SelectFund(fundRef string, amount models.Money) (models.Route, error) {
	fund, ok := models.FundByID(fundRef)
	if !ok {
		if fund, ok = models.FundByName(fundRef); !ok {
			return models.ScreenRoute(models.ScreenInvestProducts), ErrUnknownFund
		}
	}
	if amount < fund.MinimumInvestment {
		return models.ScreenRoute(models.ScreenInvestProducts), validationError("investment", string(StageFundSelection), ErrBelowMinimum)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage == StageProcessing {
		return models.ScreenRoute(models.ScreenInvestProcessing), ErrInvalidTransition
	}
	s.store.SetSelection(fund, amount)
	s.failure = nil
	s.receipt = nil
	s.setStageLocked(StageConfirmationReview)
	return models.Confirmation(false), nil
}

func (s *InvestmentService) ProceedToFinal() (models.Route, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage != StageConfirmationReview {
		return models.Route{}, ErrInvalidTransition
	}
	s.setStageLocked(StageConfirmationFinal)
	return models.Confirmation(true), nil
}

func (s *InvestmentService) ToggleCheckbox(index int) (bool, error) {
	if err := s.requireConfirmation(); err != nil {
		return false, err
	}
	return s.store.ToggleCheckbox(index)
}

func (s *InvestmentService) SetCheckbox(index int, checked bool) error {
	if err := s.requireConfirmation(); err != nil {
		return err
	}
	return s.store.SetCheckbox(index, checked)
}

func (s *InvestmentService) requireConfirmation() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage != StageConfirmationReview && s.stage != StageConfirmationFinal {
		return ErrInvalidTransition
	}
	return nil
}

func allChecked(boxes [models.ConfirmationCount]bool) bool {
	for _, b := range boxes {
		if !b {
			return false
		}
	}
	return true
}

// confirmError reports why the current selection cannot be confirmed, or nil.
func confirmError(snap models.Session) error {
	if snap.SelectedFund == nil {
		return ErrNoFundSelected
	}
	if !allChecked(snap.ConfirmedCheckboxes) {
		return validationError("investment", string(StageConfirmationFinal), ErrAcknowledgementsMissing)
	}
	if snap.InvestmentAmount > snap.WalletBalance {
		return ErrInsufficientBalance
	}
	return nil
}

// CanConfirm holds when all acknowledgements are ticked and the wallet covers
// the amount.
func (s *InvestmentService) CanConfirm() bool {
	return confirmError(s.store.Snapshot()) == nil
}

// Confirm starts processing. Once processing starts it cannot be cancelled.
func (s *InvestmentService) Confirm() (models.Route, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stage != StageConfirmationFinal {
		return models.Route{}, ErrInvalidTransition
	}
	if err := confirmError(s.store.Snapshot()); err != nil {
		if errors.Is(err, ErrInsufficientBalance) {
			s.failure = err
		}
		return models.Confirmation(true), err
	}

	s.failure = nil
	s.committing = false
	s.setStageLocked(StageProcessing)
	s.phase = PhaseValidating
	s.timers.After(s.cfg.BalanceCheckDelay, func() {
		s.advancePhase(PhaseCheckingBalance, s.cfg.ActivationDelay, func() {
			s.advancePhase(PhaseActivating, s.cfg.CompletionDelay, s.complete)
		})
	})
	return models.ScreenRoute(models.ScreenInvestProcessing), nil
}

func (s *InvestmentService) advancePhase(phase ProcessingPhase, next time.Duration, then func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage != StageProcessing {
		return
	}
	s.phase = phase
	s.timers.After(next, then)
}

func (s *InvestmentService) complete() {
	s.mu.Lock()
	if s.stage != StageProcessing {
		s.mu.Unlock()
		return
	}
	s.committing = true
	snap := s.store.Snapshot()
	s.mu.Unlock()

	reference := s.refs.Next()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	balance, err := s.ledger.Debit(ctx, snap.User.ID, reference, snap.InvestmentAmount)
	if err != nil {
		s.audit.LogInvestment(s.sessionID, reference, snap.SelectedFund.ID, int64(snap.InvestmentAmount), "FAILED")
		s.audit.LogError(s.sessionID, "investment debit", err)

		s.mu.Lock()
		s.phase = ""
		s.failure = err
		s.committing = false
		s.setStageLocked(StageConfirmationFinal)
		s.mu.Unlock()

		s.nav.Navigate(models.Confirmation(true))
		return
	}
	if s.mirror {
		s.store.SetBalance(balance)
	}

	now := s.timers.Now()
	fund := *snap.SelectedFund
	s.store.RecordInvestment(models.Investment{
		ID:              uuid.New().String(),
		FundID:          fund.ID,
		FundName:        fund.Name,
		FundCategory:    fund.Category,
		Amount:          snap.InvestmentAmount,
		CurrentValue:    snap.InvestmentAmount,
		Status:          "active",
		ReferenceNumber: reference,
		InvestedAt:      now,
	})
	s.audit.LogInvestment(s.sessionID, reference, fund.ID, int64(snap.InvestmentAmount), "SUCCESS")

	s.mu.Lock()
	s.phase = PhaseComplete
	s.receipt = &Receipt{
		ReferenceNumber: reference,
		Timestamp:       now,
		FundID:          fund.ID,
		FundName:        fund.Name,
		Amount:          snap.InvestmentAmount,
		NewBalance:      balance,
	}
	s.committing = false
	s.setStageLocked(StageSuccess)
	s.mu.Unlock()

	s.nav.Navigate(models.ScreenRoute(models.ScreenInvestSuccess))
}

// Receipt returns the completed investment's receipt with a QR code of its
// reference number.
func (s *InvestmentService) Receipt() (Receipt, error) {
	s.mu.Lock()
	if s.stage != StageSuccess || s.receipt == nil {
		s.mu.Unlock()
		return Receipt{}, ErrInvalidTransition
	}
	r := *s.receipt
	s.mu.Unlock()

	qr, err := ReceiptQRCode(r.ReferenceNumber, s.cfg.ReceiptQRSize)
	if err != nil {
		return Receipt{}, err
	}
	r.QRCode = qr
	return r, nil
}

// StartAnother goes back to the fund list with a cleared selection.
func (s *InvestmentService) StartAnother() (models.Route, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage != StageSuccess {
		return models.Route{}, ErrInvalidTransition
	}
	s.store.ClearSelection()
	s.receipt = nil
	s.phase = ""
	s.setStageLocked(StageFundSelection)
	return models.ScreenRoute(models.ScreenInvestProducts), nil
}

// BackTarget is where back leads from the current stage.
func (s *InvestmentService) BackTarget() models.Route {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage == StageConfirmationFinal {
		return models.Confirmation(false)
	}
	return models.ScreenRoute(models.ScreenInvestProducts)
}

// CurrentRoute is the screen that matches the flow's stage.
func (s *InvestmentService) CurrentRoute() models.Route {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.stage {
	case StageConfirmationReview:
		return models.Confirmation(false)
	case StageConfirmationFinal:
		return models.Confirmation(true)
	case StageProcessing:
		return models.ScreenRoute(models.ScreenInvestProcessing)
	case StageSuccess:
		if s.receipt != nil {
			return models.ScreenRoute(models.ScreenInvestSuccess)
		}
	}
	return models.ScreenRoute(models.ScreenInvestProducts)
}

// Abandon tears down a processing investment whose screen was left. Nothing
// has been debited yet, so the flow returns to final confirmation. Once the
// debit has started the investment runs to completion.
func (s *InvestmentService) Abandon() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage != StageProcessing || s.committing {
		return
	}
	s.timers.StopAll()
	s.phase = ""
	s.setStageLocked(StageConfirmationFinal)
}

func (s *InvestmentService) Close() {
	s.timers.StopAll()
}

func (s *InvestmentService) View() InvestmentView {
	s.mu.Lock()
	stage, phase, failure := s.stage, s.phase, s.failure
	var receipt *Receipt
	if s.receipt != nil {
		r := *s.receipt
		receipt = &r
	}
	s.mu.Unlock()

	snap := s.store.Snapshot()
	view := InvestmentView{
		Stage:        stage,
		Phase:        phase,
		SelectedFund: snap.SelectedFund,
		Amount:       snap.InvestmentAmount,
		Balance:      snap.WalletBalance,
		Checkboxes:   snap.ConfirmedCheckboxes,
		CanConfirm:   stage == StageConfirmationFinal && confirmError(snap) == nil,
		Receipt:      receipt,
	}
	view.InsufficientBalance = errors.Is(failure, ErrInsufficientBalance) ||
		(snap.SelectedFund != nil && snap.InvestmentAmount > snap.WalletBalance)
	if stage == StageFundSelection {
		view.Funds = models.Funds()
	}
	return view
}
