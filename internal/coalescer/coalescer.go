// Package coalescer implements the RefreshCoalescer (spec §4.6): a
// 10ms debounce timer that one or more terminals can share, draining
// the set of terminals marked dirty since the last fire. Grounded on
// Neovim's own `refresh_timer`/`invalidated_terminals` design in
// `original_source/src/nvim/terminal.c`, generalized from a single
// process-wide C global to an injectable Go type.
package coalescer

import (
	"sync"
	"time"
)

const refreshDelay = 10 * time.Millisecond

// Flusher is anything the coalescer can invalidate and later flush —
// normally the root package's termFlusher, which wraps a
// *projection.Projection (spec §4.4), kept as a narrow interface here
// so internal/coalescer never imports internal/projection.
type Flusher interface {
	Flush()
}

// Coalescer owns one timer and the ordered set of terminals it must
// flush when that timer fires. Safe for concurrent Invalidate calls
// since a host may mark damage from more than one terminal's callback
// path, though in the reference single-threaded loop model all calls
// happen on the same goroutine.
type Coalescer struct {
	mu       sync.Mutex
	timer    *time.Timer
	order    []Flusher        // insertion order: first-marked-dirty flushes first
	queued   map[Flusher]bool // membership set so a repeat Invalidate doesn't re-append
	tornDown bool
}

// New returns an idle coalescer.
func New() *Coalescer {
	return &Coalescer{queued: make(map[Flusher]bool)}
}

// Invalidate marks f dirty. If the timer is idle, it is armed for
// refreshDelay; an already-running timer is left alone (spec: "On any
// damage from the parser side, if the timer is idle, start it").
func (c *Coalescer) Invalidate(f Flusher) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tornDown {
		return
	}
	if !c.queued[f] {
		c.queued[f] = true
		c.order = append(c.order, f)
	}
	if c.timer == nil {
		c.timer = time.AfterFunc(refreshDelay, c.fire)
	}
}

func (c *Coalescer) fire() {
	c.mu.Lock()
	if c.tornDown {
		c.mu.Unlock()
		return
	}
	batch := c.order
	c.order = nil
	c.queued = make(map[Flusher]bool)
	c.timer = nil
	c.mu.Unlock()

	// batch preserves the order terminals were first marked dirty
	// since the last fire, matching spec §4.6's ordering guarantee.
	for _, f := range batch {
		f.Flush()
	}
}

// Stop disables further firing; used during host teardown (spec §4.6:
// "the coalescer skips firing during host teardown").
func (c *Coalescer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tornDown = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.order = nil
	c.queued = nil
}
