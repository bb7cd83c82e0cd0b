package models

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

type Screen string

const (
	ScreenDashboard            Screen = "dashboard"
	ScreenWallet               Screen = "wallet"
	ScreenSearchResults        Screen = "search-results"
	ScreenMerchantPayment      Screen = "merchant-payment"
	ScreenCashbackConfirmation Screen = "cashback-confirmation"
	ScreenInvestLanding        Screen = "invest-landing"
	ScreenInvestOnboarding     Screen = "invest-onboarding"
	ScreenInvestProducts       Screen = "invest-products"
	ScreenInvestConfirmation   Screen = "invest-confirmation"
	ScreenInvestProcessing     Screen = "invest-processing"
	ScreenInvestSuccess        Screen = "invest-success"
)

const (
	FirstOnboardingStep = 1
	LastOnboardingStep  = 5
)

var screens = map[Screen]bool{
	ScreenDashboard:            true,
	ScreenWallet:               true,
	ScreenSearchResults:        true,
	ScreenMerchantPayment:      true,
	ScreenCashbackConfirmation: true,
	ScreenInvestLanding:        true,
	ScreenInvestOnboarding:     true,
	ScreenInvestProducts:       true,
	ScreenInvestConfirmation:   true,
	ScreenInvestProcessing:     true,
	ScreenInvestSuccess:        true,
}

// Route is a screen plus its navigation parameters. Step is only meaningful for
// the onboarding screen and Final only for the confirmation screen.
type Route struct {
	Screen Screen `json:"screen"`
	Step   int    `json:"step,omitempty"`
	Final  bool   `json:"final,omitempty"`
}

func Dashboard() Route { return Route{Screen: ScreenDashboard} }

func OnboardingStep(step int) Route {
	return Route{Screen: ScreenInvestOnboarding, Step: normalizeStep(step)}
}

func Confirmation(final bool) Route {
	return Route{Screen: ScreenInvestConfirmation, Final: final}
}

func ScreenRoute(s Screen) Route { return Route{Screen: s} }

// Path renders the route the way the client addresses screens.
func (r Route) Path() string {
	switch r.Screen {
	case ScreenInvestOnboarding:
		return fmt.Sprintf("/%s?step=%d", r.Screen, normalizeStep(r.Step))
	case ScreenInvestConfirmation:
		if r.Final {
			return fmt.Sprintf("/%s?step=final", r.Screen)
		}
	}
	return "/" + string(r.Screen)
}

func (r Route) String() string { return r.Path() }

// InInvestmentFlow reports whether leaving this route abandons an investment
// that has not been confirmed yet.
func (r Route) InInvestmentFlow() bool {
	return r.Screen == ScreenInvestConfirmation
}

// ParseRoute is the inverse of Path. Onboarding steps outside 1..5 (or missing)
// resolve to step 1.
func ParseRoute(raw string) (Route, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Route{}, fmt.Errorf("invalid route %q: %w", raw, err)
	}

	screen := Screen(strings.Trim(u.Path, "/"))
	if screen == "" {
		screen = ScreenDashboard
	}
	if !screens[screen] {
		return Route{}, fmt.Errorf("unknown screen %q", screen)
	}

	r := Route{Screen: screen}
	switch screen {
	case ScreenInvestOnboarding:
		step, _ := strconv.Atoi(u.Query().Get("step"))
		r.Step = normalizeStep(step)
	case ScreenInvestConfirmation:
		r.Final = u.Query().Get("step") == "final"
	}
	return r, nil
}

func normalizeStep(step int) int {
	if step < FirstOnboardingStep || step > LastOnboardingStep {
		return FirstOnboardingStep
	}
	return step
}
