package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/ruralpay/investflow/internal/audit"
	"github.com/ruralpay/investflow/internal/config"
	"github.com/ruralpay/investflow/internal/models"
	"github.com/ruralpay/investflow/internal/scheduler"
)

// Deps are the collaborators shared by every session.
type Deps struct {
	Config     *config.FlowConfig
	Scheduler  scheduler.Scheduler
	Banks      *BankService
	Provider   BankVerificationProvider
	References ReferenceGenerator
	Prompts    PromptStore
	Audit      *audit.Logger

	// Ledger builds the wallet ledger for a session. Nil means the session
	// balance itself is the ledger.
	Ledger func(sessionID string, store *SessionStore) Ledger
}

// App is one signed-in session: its state store, every flow, and the screen
// it is currently on.
type App struct {
	ID           string
	Store        *SessionStore
	Onboarding   *OnboardingService
	Verification *VerificationService
	Investment   *InvestmentService
	Payments     *PaymentService
	Gate         *ExitGate
	Prompts      *PromptTracker

	cfg   *config.FlowConfig
	audit *audit.Logger

	mu          sync.Mutex
	route       models.Route
	scrollToTop bool
	lastQuery   string
}

type Banners struct {
	WalletBanner   bool `json:"walletBanner"`
	CashbackPrompt bool `json:"cashbackPrompt"`
	QuickCard      bool `json:"quickCard"`
	SearchCard     bool `json:"searchCard"`
}

type AppView struct {
	ID          string         `json:"id"`
	Route       models.Route   `json:"route"`
	Path        string         `json:"path"`
	Session     models.Session `json:"session"`
	ExitModal   bool           `json:"exitModalOpen"`
	ScrollToTop bool           `json:"scrollToTop"`
	Banners     Banners        `json:"banners"`
}

func NewApp(ctx context.Context, id string, initial models.Session, deps Deps) (*App, error) {
	store := NewSessionStore(initial)

	ledger := Ledger(NewSessionLedger(store))
	if deps.Ledger != nil {
		ledger = deps.Ledger(id, store)
	}

	prompts, err := NewPromptTracker(ctx, deps.Prompts, initial.User.ID, deps.Scheduler.Now)
	if err != nil {
		return nil, fmt.Errorf("load prompt state: %w", err)
	}

	a := &App{
		ID:      id,
		Store:   store,
		Gate:    NewExitGate(),
		Prompts: prompts,
		cfg:     deps.Config,
		audit:   deps.Audit,
		route:   models.Dashboard(),
	}
	a.Verification = NewVerificationService(id, store, deps.Banks, deps.Provider, deps.Scheduler, deps.Config, deps.Audit)
	a.Onboarding = NewOnboardingService(id, store, a.Verification, a, deps.Scheduler, deps.Config, deps.Audit)
	a.Investment = NewInvestmentService(id, store, ledger, deps.References, a, deps.Scheduler, deps.Config, deps.Audit)
	a.Payments = NewPaymentService(id, store, ledger, a, deps.Scheduler, deps.Config, deps.Audit)
	return a, nil
}

func (a *App) Route() models.Route {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.route
}

// Navigate moves to route and re-syncs the flow that owns it. Flows left
// behind are torn down so their timers cannot fire into the new screen.
func (a *App) Navigate(route models.Route) {
	a.mu.Lock()
	prev := a.route
	a.route = route
	a.scrollToTop = false
	a.mu.Unlock()

	if prev != route {
		a.Gate.Resume()
	}
	if prev.Screen != route.Screen {
		a.audit.LogTransition(a.ID, "navigation", prev.Path(), route.Path())
	}
	if prev.Screen == models.ScreenInvestOnboarding && route.Screen != models.ScreenInvestOnboarding {
		a.Onboarding.Close()
	}
	if prev.Screen == models.ScreenMerchantPayment && route.Screen != models.ScreenMerchantPayment &&
		route.Screen != models.ScreenCashbackConfirmation {
		a.Payments.Close()
	}
	if prev.Screen == models.ScreenInvestProcessing && route.Screen != models.ScreenInvestProcessing {
		a.Investment.Abandon()
	}

	switch route.Screen {
	case models.ScreenInvestOnboarding:
		if prev.Screen != models.ScreenInvestOnboarding || a.Onboarding.Step() != route.Step {
			a.Onboarding.Enter(route.Step)
		}
	case models.ScreenInvestProducts:
		a.Investment.EnterProducts()
	case models.ScreenInvestConfirmation:
		if target := a.Investment.EnterConfirmation(route.Final); target != route {
			a.redirect(target)
		}
	case models.ScreenInvestProcessing, models.ScreenInvestSuccess:
		if target := a.Investment.CurrentRoute(); target.Screen != route.Screen {
			a.redirect(target)
		}
	}
}

func (a *App) redirect(route models.Route) {
	a.mu.Lock()
	a.route = route
	a.mu.Unlock()
}

// leave navigates on the user's behalf. Leaving an unconfirmed investment
// opens the exit gate instead, with route as the pending destination.
func (a *App) leave(route models.Route) models.Route {
	current := a.Route()
	if current.InInvestmentFlow() && route.Screen != current.Screen {
		a.Gate.Open(route)
		return current
	}
	a.Navigate(route)
	return a.Route()
}

// NavigatePath parses a client path and navigates to it. From a confirmation
// screen the exit gate opens first.
func (a *App) NavigatePath(path string) (models.Route, error) {
	route, err := models.ParseRoute(path)
	if err != nil {
		return a.Route(), err
	}
	return a.leave(route), nil
}

// InvestEntry is where every "invest" call to action leads: onboarding until
// it is complete, the landing page after.
func (a *App) InvestEntry() models.Route {
	route := models.ScreenRoute(models.ScreenInvestLanding)
	if !a.Store.Snapshot().OnboardingComplete {
		route = models.OnboardingStep(models.FirstOnboardingStep)
	}
	return a.leave(route)
}

// StartInvesting is the landing page's call to action.
func (a *App) StartInvesting() models.Route {
	route := models.ScreenRoute(models.ScreenInvestProducts)
	if !a.Store.Snapshot().OnboardingComplete {
		route = models.OnboardingStep(models.FirstOnboardingStep)
	}
	return a.leave(route)
}

// Back handles the back control of the current screen. Leaving an unconfirmed
// investment opens the exit gate instead of navigating.
func (a *App) Back() (models.Route, error) {
	current := a.Route()
	switch current.Screen {
	case models.ScreenInvestOnboarding:
		route, err := a.Onboarding.Back()
		if err != nil {
			return current, err
		}
		a.Navigate(route)
	case models.ScreenInvestConfirmation:
		a.Gate.Open(a.Investment.BackTarget())
	case models.ScreenInvestProcessing:
		if a.Investment.Stage() == StageProcessing {
			return current, ErrInvalidTransition
		}
		a.Navigate(a.Investment.CurrentRoute())
	case models.ScreenInvestProducts:
		a.Navigate(models.ScreenRoute(models.ScreenInvestLanding))
	case models.ScreenCashbackConfirmation:
		a.Navigate(models.ScreenRoute(models.ScreenWallet))
	default:
		a.Navigate(models.Dashboard())
	}
	return a.Route(), nil
}

// Exit leaves for the dashboard, through the exit gate when an investment is
// being confirmed.
func (a *App) Exit() (models.Route, error) {
	current := a.Route()
	switch {
	case current.InInvestmentFlow():
		a.Gate.Open(models.Dashboard())
		return current, nil
	case current.Screen == models.ScreenInvestProcessing && a.Investment.Stage() == StageProcessing:
		return current, ErrInvalidTransition
	}
	a.Navigate(models.Dashboard())
	return a.Route(), nil
}

func (a *App) LeaveAnyway() (models.Route, error) {
	dest, err := a.Gate.LeaveAnyway()
	if err != nil {
		return a.Route(), err
	}
	a.Navigate(dest)
	return a.Route(), nil
}

func (a *App) Resume() models.Route {
	a.Gate.Resume()
	return a.Route()
}

func (a *App) LearnMore() models.Route {
	scroll := a.Gate.LearnMore()
	a.mu.Lock()
	defer a.mu.Unlock()
	a.scrollToTop = scroll
	return a.route
}

// Search records a query and moves to the search results.
func (a *App) Search(query string) models.Route {
	a.mu.Lock()
	a.lastQuery = query
	a.mu.Unlock()
	return a.leave(models.ScreenRoute(models.ScreenSearchResults))
}

// Banners decides which upsell prompts are visible. A prompt shows only while
// the user has not invested and has not dismissed it.
func (a *App) Banners() Banners {
	snap := a.Store.Snapshot()
	a.mu.Lock()
	query := a.lastQuery
	a.mu.Unlock()

	visible := func(promptType string, extra bool) bool {
		return !snap.HasInvested && !a.Prompts.IsDismissed(promptType) && extra
	}
	return Banners{
		WalletBanner:   visible(PromptWalletBanner, int64(snap.WalletBalance) >= a.cfg.WalletBannerThreshold),
		CashbackPrompt: visible(PromptCashback, true),
		QuickCard:      visible(PromptQuickCard, true),
		SearchCard:     visible(PromptSearchCard, MatchesInvestmentIntent(query)),
	}
}

func (a *App) DismissPrompt(ctx context.Context, promptType string) error {
	switch promptType {
	case PromptWalletBanner, PromptCashback, PromptQuickCard, PromptSearchCard:
	default:
		return fmt.Errorf("prompt %q: %w", promptType, ErrUnknownOption)
	}
	return a.Prompts.Dismiss(ctx, promptType)
}

func (a *App) View() AppView {
	a.mu.Lock()
	route, scroll := a.route, a.scrollToTop
	a.mu.Unlock()
	return AppView{
		ID:          a.ID,
		Route:       route,
		Path:        route.Path(),
		Session:     a.Store.Snapshot(),
		ExitModal:   a.Gate.IsOpen(),
		ScrollToTop: scroll,
		Banners:     a.Banners(),
	}
}

// Close cancels every pending timer of the session.
func (a *App) Close() {
	a.Onboarding.Close()
	a.Investment.Close()
	a.Payments.Close()
}
