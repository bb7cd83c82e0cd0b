package services

import (
	"fmt"
	"sync"

	"github.com/ruralpay/investflow/internal/audit"
	"github.com/ruralpay/investflow/internal/config"
	"github.com/ruralpay/investflow/internal/models"
	"github.com/ruralpay/investflow/internal/scheduler"
)

type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var (
	TimelineOptions = []Option{
		{Value: "less-than-1", Label: "Less than 1 year"},
		{Value: "1-3", Label: "1 - 3 years"},
		{Value: "3-5", Label: "3 - 5 years"},
		{Value: "more-than-5", Label: "More than 5 years"},
	}
	ComfortOptions = []Option{
		{Value: "very-conservative", Label: "Very conservative"},
		{Value: "conservative", Label: "Conservative"},
		{Value: "moderate", Label: "Moderate"},
		{Value: "aggressive", Label: "Aggressive"},
	}
	PreferenceOptions = []Option{
		{Value: "shariah", Label: "Shariah-compliant"},
		{Value: "growth", Label: "Growth"},
		{Value: "income", Label: "Income"},
		{Value: "conservative", Label: "Capital preservation"},
	}
)

func hasOption(opts []Option, v string) bool {
	for _, o := range opts {
		if o.Value == v {
			return true
		}
	}
	return false
}

type OnboardingView struct {
	Step         int                 `json:"step"`
	CanProceed   bool                `json:"canProceed"`
	CanGoBack    bool                `json:"canGoBack"`
	Submitting   bool                `json:"submitting"`
	Complete     bool                `json:"complete"`
	RiskProfile  models.RiskProfile  `json:"riskProfile"`
	Preferences  []string            `json:"preferences"`
	PersonalInfo models.PersonalInfo `json:"personalInfo"`
	Confirmed    bool                `json:"confirmed"`
	Verification *VerificationView   `json:"verification,omitempty"`
	Timelines    []Option            `json:"timelineOptions,omitempty"`
	Comforts     []Option            `json:"comfortOptions,omitempty"`
	PrefOptions  []Option            `json:"preferenceOptions,omitempty"`
}

// OnboardingService drives the five-step onboarding wizard. The current step
// always comes from the route, so entering at any step is tolerated.
type OnboardingService struct {
	sessionID    string
	store        *SessionStore
	verification *VerificationService
	nav          Navigator
	timers       *scheduler.Group
	cfg          *config.FlowConfig
	validator    *ValidationHelper
	audit        *audit.Logger

	mu         sync.Mutex
	step       int
	confirmed  bool
	submitting bool
}

func NewOnboardingService(sessionID string, store *SessionStore, verification *VerificationService, nav Navigator, sched scheduler.Scheduler, cfg *config.FlowConfig, auditLogger *audit.Logger) *OnboardingService {
	return &OnboardingService{
		sessionID:    sessionID,
		store:        store,
		verification: verification,
		nav:          nav,
		timers:       scheduler.NewGroup(sched),
		cfg:          cfg,
		validator:    NewValidationHelper(),
		audit:        auditLogger,
		step:         models.FirstOnboardingStep,
	}
}

// Enter re-derives the wizard from a step parameter. Unknown steps land on
// step 1.
func (o *OnboardingService) Enter(step int) models.Route {
	if step < models.FirstOnboardingStep || step > models.LastOnboardingStep {
		step = models.FirstOnboardingStep
	}

	o.mu.Lock()
	from := o.step
	o.step = step
	o.mu.Unlock()

	o.store.SetOnboardingStep(step)
	if step == 4 {
		o.verification.Reset()
	}
	o.audit.LogTransition(o.sessionID, "onboarding", fmt.Sprint(from), fmt.Sprint(step))
	return models.OnboardingStep(step)
}

func (o *OnboardingService) Step() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.step
}

func (o *OnboardingService) stepValid(step int, s models.Session, confirmed bool) bool {
	switch step {
	case 1:
		return true
	case 2:
		return s.RiskProfile.Complete()
	case 3:
		return len(s.InvestmentPreferences) > 0
	case 4:
		return s.BankVerificationStatus == models.VerificationSuccess
	case 5:
		return confirmed && len(o.validator.MissingPersonalInfo(s.PersonalInfo)) == 0
	}
	return false
}

func (o *OnboardingService) CanProceed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return !o.submitting && o.stepValid(o.step, o.store.Snapshot(), o.confirmed)
}

// SetRiskProfile records the step 2 answers. An empty field leaves that
// answer unset.
func (o *OnboardingService) SetRiskProfile(p models.RiskProfile) error {
	if p.InvestmentTimeline != "" && !hasOption(TimelineOptions, p.InvestmentTimeline) {
		return fmt.Errorf("timeline %q: %w", p.InvestmentTimeline, ErrUnknownOption)
	}
	if p.RiskComfort != "" && !hasOption(ComfortOptions, p.RiskComfort) {
		return fmt.Errorf("risk comfort %q: %w", p.RiskComfort, ErrUnknownOption)
	}
	o.store.SetRiskProfile(p)
	return nil
}

func (o *OnboardingService) SetPreferences(prefs []string) error {
	seen := make(map[string]bool, len(prefs))
	out := make([]string, 0, len(prefs))
	for _, p := range prefs {
		if !hasOption(PreferenceOptions, p) {
			return fmt.Errorf("preference %q: %w", p, ErrUnknownOption)
		}
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	o.store.SetPreferences(out)
	return nil
}

// TogglePreference adds or removes one preference and reports whether it is
// now selected.
func (o *OnboardingService) TogglePreference(pref string) (bool, error) {
	if !hasOption(PreferenceOptions, pref) {
		return false, fmt.Errorf("preference %q: %w", pref, ErrUnknownOption)
	}
	current := o.store.Snapshot().InvestmentPreferences
	out := make([]string, 0, len(current)+1)
	selected := true
	for _, p := range current {
		if p == pref {
			selected = false
			continue
		}
		out = append(out, p)
	}
	if selected {
		out = append(out, pref)
	}
	o.store.SetPreferences(out)
	return selected, nil
}

func (o *OnboardingService) UpdatePersonalInfo(info models.PersonalInfo) {
	o.store.SetPersonalInfo(info)
}

func (o *OnboardingService) SetConfirmed(confirmed bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.confirmed = confirmed
}

// Next advances past the current step when its predicate holds. On the last
// step it submits.
func (o *OnboardingService) Next() (models.Route, error) {
	o.mu.Lock()
	step := o.step
	if o.submitting {
		o.mu.Unlock()
		return models.OnboardingStep(step), ErrInvalidTransition
	}
	if step == models.LastOnboardingStep {
		o.mu.Unlock()
		return o.Submit()
	}
	valid := o.stepValid(step, o.store.Snapshot(), o.confirmed)
	o.mu.Unlock()

	if !valid {
		return models.OnboardingStep(step), validationError("onboarding", fmt.Sprintf("step %d", step), ErrStepIncomplete)
	}
	return o.Enter(step + 1), nil
}

// Back returns to the previous step, or to the dashboard from step 1.
func (o *OnboardingService) Back() (models.Route, error) {
	o.mu.Lock()
	step := o.step
	submitting := o.submitting
	o.mu.Unlock()

	if submitting {
		return models.OnboardingStep(step), ErrInvalidTransition
	}
	if step <= models.FirstOnboardingStep {
		o.Close()
		return models.Dashboard(), nil
	}
	return o.Enter(step - 1), nil
}

// Submit finishes onboarding from the last step. Every earlier step must hold
// as well, so jumping straight to step 5 cannot complete onboarding. Personal
// info is saved immediately and completion lands after the success screen.
func (o *OnboardingService) Submit() (models.Route, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	route := models.OnboardingStep(o.step)
	if o.step != models.LastOnboardingStep || o.submitting {
		return route, ErrInvalidTransition
	}

	snap := o.store.Snapshot()
	for step := models.FirstOnboardingStep; step <= models.LastOnboardingStep; step++ {
		if !o.stepValid(step, snap, o.confirmed) {
			return route, validationError("onboarding", fmt.Sprintf("step %d", step), ErrStepIncomplete)
		}
	}

	o.store.SetPersonalInfo(snap.PersonalInfo)
	o.submitting = true
	o.timers.After(o.cfg.OnboardingCompleteDelay, o.complete)
	o.audit.LogTransition(o.sessionID, "onboarding", "step 5", "submitting")
	return route, nil
}

func (o *OnboardingService) complete() {
	o.mu.Lock()
	if !o.submitting {
		o.mu.Unlock()
		return
	}
	o.submitting = false
	o.mu.Unlock()

	o.store.CompleteOnboarding(o.store.Snapshot().PersonalInfo)
	o.audit.LogTransition(o.sessionID, "onboarding", "submitting", "complete")
	o.nav.Navigate(models.ScreenRoute(models.ScreenInvestProducts))
}

// Close cancels a pending completion and any verification timers.
func (o *OnboardingService) Close() {
	o.timers.StopAll()
	o.verification.Close()

	o.mu.Lock()
	defer o.mu.Unlock()
	o.submitting = false
}

func (o *OnboardingService) View() OnboardingView {
	o.mu.Lock()
	step := o.step
	confirmed := o.confirmed
	submitting := o.submitting
	o.mu.Unlock()

	snap := o.store.Snapshot()
	view := OnboardingView{
		Step:         step,
		CanProceed:   !submitting && o.stepValid(step, snap, confirmed),
		CanGoBack:    !submitting,
		Submitting:   submitting,
		Complete:     snap.OnboardingComplete,
		RiskProfile:  snap.RiskProfile,
		Preferences:  snap.InvestmentPreferences,
		PersonalInfo: snap.PersonalInfo,
		Confirmed:    confirmed,
	}
	switch step {
	case 2:
		view.Timelines = TimelineOptions
		view.Comforts = ComfortOptions
	case 3:
		view.PrefOptions = PreferenceOptions
	case 4:
		v := o.verification.View()
		view.Verification = &v
	}
	return view
}
