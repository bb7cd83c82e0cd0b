package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ruralpay/investflow/internal/audit"
	"github.com/ruralpay/investflow/internal/config"
	"github.com/ruralpay/investflow/internal/models"
	"github.com/ruralpay/investflow/internal/scheduler"
)

type Merchant struct {
	ID           string `json:"id" example:"coffee-bean"`
	Name         string `json:"name" example:"Coffee Bean Cafe"`
	Category     string `json:"category" example:"Food & Beverage"`
	CashbackRate int64  `json:"cashbackRate" example:"5"` // percent
}

var merchants = []Merchant{
	{ID: "coffee-bean", Name: "Coffee Bean Cafe", Category: "Food & Beverage", CashbackRate: 5},
	{ID: "megamart", Name: "MegaMart Supermarket", Category: "Groceries", CashbackRate: 3},
	{ID: "noodle-house", Name: "Noodle House Restaurant", Category: "Food & Beverage", CashbackRate: 8},
	{ID: "fashion-avenue", Name: "Fashion Avenue Store", Category: "Retail", CashbackRate: 4},
}

func Merchants() []Merchant {
	out := make([]Merchant, len(merchants))
	copy(out, merchants)
	return out
}

func MerchantByID(id string) (Merchant, bool) {
	for _, m := range merchants {
		if m.ID == id {
			return m, true
		}
	}
	return Merchant{}, false
}

// Cashback is rate percent of amount, rounded half up to the nearest sen.
func (m Merchant) Cashback(amount models.Money) models.Money {
	return (amount*models.Money(m.CashbackRate) + 50) / 100
}

type PaymentResult struct {
	Reference string       `json:"reference"`
	Merchant  Merchant     `json:"merchant"`
	Amount    models.Money `json:"amount"`
	Cashback  models.Money `json:"cashback"`
	Balance   models.Money `json:"balance"`
	PaidAt    time.Time    `json:"paidAt"`

	// CashbackFailed is set when the payment went through but the cashback
	// credit did not. Cashback is then zero.
	CashbackFailed bool `json:"cashbackFailed,omitempty"`
}

type PaymentView struct {
	Merchants  []Merchant     `json:"merchants"`
	Processing bool           `json:"processing"`
	Last       *PaymentResult `json:"lastPayment,omitempty"`
	LastError  string         `json:"lastError,omitempty"`
}

// PaymentService pays merchants from the wallet and credits their cashback.
type PaymentService struct {
	sessionID string
	store     *SessionStore
	ledger    Ledger
	mirror    bool
	nav       Navigator
	timers    *scheduler.Group
	cfg       *config.FlowConfig
	audit     *audit.Logger

	mu         sync.Mutex
	processing bool
	last       *PaymentResult
	failure    error
}

func NewPaymentService(sessionID string, store *SessionStore, ledger Ledger, nav Navigator, sched scheduler.Scheduler, cfg *config.FlowConfig, auditLogger *audit.Logger) *PaymentService {
	_, sessionBacked := ledger.(*SessionLedger)
	return &PaymentService{
		sessionID: sessionID,
		store:     store,
		ledger:    ledger,
		mirror:    !sessionBacked,
		nav:       nav,
		timers:    scheduler.NewGroup(sched),
		cfg:       cfg,
		audit:     auditLogger,
	}
}

// CanPay holds for 0 < amount <= balance.
func (p *PaymentService) CanPay(amount models.Money) bool {
	return amount > 0 && amount <= p.store.Balance()
}

// PayMerchant starts a payment. Settlement happens after the processing delay.
func (p *PaymentService) PayMerchant(merchantID string, amount models.Money) (models.Route, error) {
	route := models.ScreenRoute(models.ScreenMerchantPayment)
	merchant, ok := MerchantByID(merchantID)
	if !ok {
		return route, fmt.Errorf("merchant %q: %w", merchantID, ErrUnknownMerchant)
	}
	if amount <= 0 {
		return route, validationError("payment", merchantID, ErrInvalidAmount)
	}
	if amount > p.store.Balance() {
		return route, ErrInsufficientBalance
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.processing {
		return route, ErrInvalidTransition
	}
	p.processing = true
	p.timers.After(p.cfg.PaymentProcessingDelay, func() { p.settle(merchant, amount) })
	return route, nil
}

func (p *PaymentService) settle(merchant Merchant, amount models.Money) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID := p.store.UserID()
	reference := uuid.New().String()

	balance, err := p.ledger.Debit(ctx, userID, reference, amount)
	if err != nil {
		p.audit.LogError(p.sessionID, "merchant payment", err)
		p.mu.Lock()
		p.processing = false
		p.failure = err
		p.mu.Unlock()
		return
	}
	if p.mirror {
		p.store.SetBalance(balance)
	}

	result := PaymentResult{
		Reference: reference,
		Merchant:  merchant,
		Amount:    amount,
		Balance:   balance,
		PaidAt:    p.timers.Now(),
	}
	if cashback := merchant.Cashback(amount); cashback > 0 {
		credited, err := p.ledger.Credit(ctx, userID, reference, cashback)
		if err != nil {
			p.audit.LogError(p.sessionID, "merchant cashback", err)
			result.CashbackFailed = true
		} else {
			result.Cashback = cashback
			result.Balance = credited
			if p.mirror {
				p.store.SetBalance(credited)
			}
		}
	}

	p.mu.Lock()
	p.processing = false
	p.failure = nil
	p.last = &result
	p.mu.Unlock()

	p.audit.LogTransition(p.sessionID, "payment", string(models.ScreenMerchantPayment), string(models.ScreenCashbackConfirmation))
	p.nav.Navigate(models.ScreenRoute(models.ScreenCashbackConfirmation))
}

// LastPayment is the payment shown on the cashback confirmation screen.
func (p *PaymentService) LastPayment() (PaymentResult, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last == nil {
		return PaymentResult{}, false
	}
	return *p.last, true
}

// Close drops a payment that has not settled yet.
func (p *PaymentService) Close() {
	p.timers.StopAll()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.processing = false
}

func (p *PaymentService) View() PaymentView {
	p.mu.Lock()
	defer p.mu.Unlock()
	view := PaymentView{Merchants: Merchants(), Processing: p.processing}
	if p.failure != nil {
		view.LastError = p.failure.Error()
	}
	if p.last != nil {
		last := *p.last
		view.Last = &last
	}
	return view
}
