package services

import (
	"context"
	"strings"
	"sync"
	"time"
)

const (
	PromptWalletBanner = "walletBanner"
	PromptCashback     = "cashbackPrompt"
	PromptQuickCard    = "quickCard"
	PromptSearchCard   = "searchCard"
)

var investmentKeywords = []string{
	"invest", "investment", "gold", "returns", "save", "money",
	"extra money", "income", "fund", "profit", "grow", "finance",
}

// MatchesInvestmentIntent reports whether a search query should surface the
// investment card.
func MatchesInvestmentIntent(query string) bool {
	q := strings.ToLower(query)
	for _, k := range investmentKeywords {
		if strings.Contains(q, k) {
			return true
		}
	}
	return false
}

// PromptTracker records which upsell prompts an owner dismissed. State is
// loaded on construction and merged with the stored copy on every dismissal.
type PromptTracker struct {
	store PromptStore
	owner string
	now   func() time.Time

	mu    sync.RWMutex
	state PromptState
}

func NewPromptTracker(ctx context.Context, store PromptStore, owner string, now func() time.Time) (*PromptTracker, error) {
	if now == nil {
		now = time.Now
	}
	state, err := store.Load(ctx, owner)
	if err != nil {
		return nil, err
	}
	return &PromptTracker{store: store, owner: owner, now: now, state: state}, nil
}

func (p *PromptTracker) IsDismissed(promptType string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, d := range p.state.DismissedPrompts {
		if d == promptType {
			return true
		}
	}
	return false
}

// Dismiss records promptType once and refreshes its last-dismiss time. The
// stored state is reloaded first so dismissals made by other sessions of the
// same owner are kept.
func (p *PromptTracker) Dismiss(ctx context.Context, promptType string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	stored, err := p.store.Load(ctx, p.owner)
	if err != nil {
		return err
	}
	next := mergePromptState(stored, p.state)

	found := false
	for _, d := range next.DismissedPrompts {
		if d == promptType {
			found = true
			break
		}
	}
	if !found {
		next.DismissedPrompts = append(next.DismissedPrompts, promptType)
	}
	next.LastPromptDismissTime[promptType] = p.now().UnixMilli()

	if err := p.store.Save(ctx, p.owner, next); err != nil {
		return err
	}
	p.state = next
	return nil
}

// mergePromptState unions the dismissed lists in order of first appearance
// and keeps the latest timestamp per prompt.
func mergePromptState(a, b PromptState) PromptState {
	out := PromptState{
		DismissedPrompts:      make([]string, 0, len(a.DismissedPrompts)+len(b.DismissedPrompts)),
		LastPromptDismissTime: make(map[string]int64, len(a.LastPromptDismissTime)+len(b.LastPromptDismissTime)+1),
	}
	seen := make(map[string]bool)
	for _, list := range [][]string{a.DismissedPrompts, b.DismissedPrompts} {
		for _, d := range list {
			if !seen[d] {
				seen[d] = true
				out.DismissedPrompts = append(out.DismissedPrompts, d)
			}
		}
	}
	for _, times := range []map[string]int64{a.LastPromptDismissTime, b.LastPromptDismissTime} {
		for k, v := range times {
			if v > out.LastPromptDismissTime[k] {
				out.LastPromptDismissTime[k] = v
			}
		}
	}
	return out
}

// DismissedAt returns the last dismissal time of promptType.
func (p *PromptTracker) DismissedAt(promptType string) (time.Time, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ms, ok := p.state.LastPromptDismissTime[promptType]
	if !ok {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

func (p *PromptTracker) State() PromptState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := PromptState{
		DismissedPrompts:      append([]string{}, p.state.DismissedPrompts...),
		LastPromptDismissTime: make(map[string]int64, len(p.state.LastPromptDismissTime)),
	}
	for k, v := range p.state.LastPromptDismissTime {
		out.LastPromptDismissTime[k] = v
	}
	return out
}
