package checkout

import (
	"context"
	"sync"
)

// RaceGuard orders overlapping asynchronous loads so that only the most
// recently started one may apply its result. Starting a new load cancels the
// previous one; closing the guard cancels everything and invalidates all
// tickets.
type RaceGuard struct {
	mu     sync.Mutex
	seq    uint64
	alive  bool
	cancel context.CancelFunc
}

// Ticket identifies one guarded load.
type Ticket struct {
	guard  *RaceGuard
	seq    uint64
	ctx    context.Context
	cancel context.CancelFunc
}

// NewRaceGuard returns a live guard.
func NewRaceGuard() *RaceGuard {
	return &RaceGuard{alive: true}
}

// Begin supersedes any outstanding ticket and issues a new one whose context
// derives from ctx.
func (g *RaceGuard) Begin(ctx context.Context) *Ticket {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cancel != nil {
		g.cancel()
	}
	g.seq++

	tctx, cancel := context.WithCancel(ctx)
	if !g.alive {
		cancel()
	}
	g.cancel = cancel
	return &Ticket{guard: g, seq: g.seq, ctx: tctx, cancel: cancel}
}

// Close tears the guard down. Every ticket becomes invalid.
func (g *RaceGuard) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.alive = false
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
}

// Alive reports whether Close has not been called.
func (g *RaceGuard) Alive() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.alive
}

// Context is cancelled when the ticket is superseded, the guard closes, or
// the ticket is released.
func (t *Ticket) Context() context.Context {
	return t.ctx
}

// Valid reports whether the ticket is still the latest and the guard is live.
func (t *Ticket) Valid() bool {
	t.guard.mu.Lock()
	defer t.guard.mu.Unlock()
	return t.validLocked()
}

// Commit runs apply only if the ticket is still valid, holding the guard so
// no newer ticket can be issued while apply runs. apply must not call back
// into the guard.
func (t *Ticket) Commit(apply func()) bool {
	t.guard.mu.Lock()
	defer t.guard.mu.Unlock()
	if !t.validLocked() {
		return false
	}
	apply()
	return true
}

// Release cancels the ticket's context once its work is finished.
func (t *Ticket) Release() {
	t.cancel()
}

func (t *Ticket) validLocked() bool {
	return t.guard.alive && t.guard.seq == t.seq
}
