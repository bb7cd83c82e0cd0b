// Package scheduler abstracts delayed callbacks so timed flow transitions can
// run against the wall clock in production and against virtual time in tests.
package scheduler

import (
	"sync"
	"time"
)

// Timer is a pending callback.
type Timer interface {
	// Stop prevents the callback from firing. It reports whether the call
	// stopped the timer.
	Stop() bool
}

// Scheduler runs f once after d elapses.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
	Now() time.Time
}

type realScheduler struct{}

// Real returns a Scheduler backed by time.AfterFunc.
func Real() Scheduler {
	return realScheduler{}
}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

func (realScheduler) Now() time.Time {
	return time.Now()
}

// Group tracks the timers owned by one screen so they can all be cancelled when
// the screen is torn down. Callbacks scheduled through a Group are dropped once
// StopAll has been called, even if they already started racing.
type Group struct {
	sched Scheduler

	mu     sync.Mutex
	gen    uint64
	timers map[uint64]Timer
	next   uint64
}

func NewGroup(s Scheduler) *Group {
	return &Group{sched: s, timers: make(map[uint64]Timer)}
}

// After schedules f on the group.
func (g *Group) After(d time.Duration, f func()) {
	g.mu.Lock()
	defer g.mu.Unlock()

	gen := g.gen
	id := g.next
	g.next++
	g.timers[id] = g.sched.AfterFunc(d, func() {
		g.mu.Lock()
		stale := gen != g.gen
		delete(g.timers, id)
		g.mu.Unlock()
		if stale {
			return
		}
		f()
	})
}

// StopAll cancels every pending timer.
func (g *Group) StopAll() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.gen++
	for id, t := range g.timers {
		t.Stop()
		delete(g.timers, id)
	}
}

// Pending returns the number of timers that have not fired yet.
func (g *Group) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.timers)
}

func (g *Group) Now() time.Time {
	return g.sched.Now()
}
