package workflow

import (
	"context"
	"errors"
	"sync"
)

// ErrNothingPending is returned when Confirm is called with no armed action.
var ErrNothingPending = errors.New("no action awaiting confirmation")

// ConfirmAction is the single deferred action a Gate can hold: a title and
// message for the kiosk's confirmation dialog plus the callback that commits
// the mutation.
type ConfirmAction struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	fn      func(ctx context.Context) error
}

// Gate defers mutating actions behind an explicit operator acknowledgment.
// It holds at most one pending action; arming it again replaces the previous
// action outright. This is the kiosk's only defense against misclicks and
// accidental double-submission, so every checkout and return passes through
// it before reaching the network.
type Gate struct {
	mu      sync.Mutex
	pending *ConfirmAction
}

func NewGate() *Gate {
	return &Gate{}
}

// Request arms the gate, replacing any prior pending action.
func (g *Gate) Request(title, message string, fn func(ctx context.Context) error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pending = &ConfirmAction{Title: title, Message: message, fn: fn}
}

// Pending returns a copy of the armed action for display, or nil.
func (g *Gate) Pending() *ConfirmAction {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pending == nil {
		return nil
	}
	return &ConfirmAction{Title: g.pending.Title, Message: g.pending.Message}
}

// Cancel clears the pending action without invoking it. It reports whether
// anything was pending.
func (g *Gate) Cancel() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	had := g.pending != nil
	g.pending = nil
	return had
}

// Confirm clears the pending action first, then invokes it. The ordering
// matters: a callback that re-arms the gate must not have its new action
// wiped by the clear step.
func (g *Gate) Confirm(ctx context.Context) error {
	g.mu.Lock()
	action := g.pending
	g.pending = nil
	g.mu.Unlock()

	if action == nil {
		return ErrNothingPending
	}
	return action.fn(ctx)
}
