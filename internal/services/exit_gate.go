package services

import (
	"sync"

	"github.com/ruralpay/investflow/internal/models"
)

// ExitGate is the "are you sure you want to leave" interstitial shown before
// abandoning an unconfirmed investment.
type ExitGate struct {
	mu      sync.Mutex
	open    bool
	pending models.Route
}

func NewExitGate() *ExitGate {
	return &ExitGate{}
}

// Open holds dest until the user decides.
func (g *ExitGate) Open(dest models.Route) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.open = true
	g.pending = dest
}

func (g *ExitGate) IsOpen() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.open
}

// Pending returns the held destination while the gate is open.
func (g *ExitGate) Pending() (models.Route, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pending, g.open
}

// Resume closes the gate and stays put.
func (g *ExitGate) Resume() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.open = false
	g.pending = models.Route{}
}

// LearnMore closes the gate and asks the screen to scroll back to the top.
func (g *ExitGate) LearnMore() (scrollToTop bool) {
	g.Resume()
	return true
}

// LeaveAnyway closes the gate and returns the held destination.
func (g *ExitGate) LeaveAnyway() (models.Route, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.open {
		return models.Route{}, ErrInvalidTransition
	}
	dest := g.pending
	g.open = false
	g.pending = models.Route{}
	return dest, nil
}
