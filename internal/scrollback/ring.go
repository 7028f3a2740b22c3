// Package scrollback implements the bounded scrollback ring (spec §4.3):
// a capacity-limited deque of rows evicted from the top of the primary
// screen, plus the sb_pending counter the projection layer consumes at
// flush time.
package scrollback

import "github.com/vtcore/vt/internal/cellmodel"

// Ring is a capacity-bounded FIFO of offscreen rows. Internally rows
// are stored most-recent-first; Line renders them oldest-first, which
// is the only externally visible ordering contract (spec §4.3).
type Ring struct {
	capacity int
	rows     []cellmodel.Row // rows[0] is most recent
	pending  int             // sb_pending: net rows scrolled off (+) or reclaimed (-) since last flush
}

// New returns an empty ring with the given capacity. A non-positive
// capacity disables scrollback entirely.
func New(capacity int) *Ring {
	if capacity < 0 {
		capacity = 0
	}
	return &Ring{capacity: capacity}
}

// Len returns the number of rows currently stored.
func (r *Ring) Len() int { return len(r.rows) }

// Capacity returns the current capacity bound.
func (r *Ring) Capacity() int { return r.capacity }

// Pending returns sb_pending without consuming it.
func (r *Ring) Pending() int { return r.pending }

// ConsumePending returns sb_pending and resets it to zero; called only
// by the projection layer at flush boundaries (spec §4.4 step 4).
func (r *Ring) ConsumePending() int {
	p := r.pending
	r.pending = 0
	return p
}

// Push stores a row that scrolled off the top of the primary screen.
// When full, the oldest row is evicted. Increments sb_pending by one,
// capped so it never exceeds capacity (a row can't be "pending" beyond
// what the ring can actually hold).
func (r *Ring) Push(row cellmodel.Row) {
	if r.capacity == 0 {
		return
	}
	r.rows = append([]cellmodel.Row{row}, r.rows...)
	if len(r.rows) > r.capacity {
		r.rows = r.rows[:r.capacity]
	}
	r.pending++
	if r.pending > r.capacity {
		r.pending = r.capacity
	}
}

// Pop removes and returns the single most-recently-pushed row, clipped
// or padded to targetWidth, for repopulating the primary grid during a
// height-growth resize (spec §4.3/§4.2). Decrements sb_pending
// (possibly to a negative value). Returns ok=false if scrollback is
// empty.
func (r *Ring) Pop(targetWidth int) (row cellmodel.Row, ok bool) {
	if len(r.rows) == 0 {
		return nil, false
	}
	row = r.rows[0]
	r.rows = r.rows[1:]
	r.pending--
	return resize(row, targetWidth), true
}

// Line returns scrollback row index, oldest-first (0 is the oldest
// line). Returns nil if out of range.
func (r *Ring) Line(index int) cellmodel.Row {
	n := len(r.rows)
	if index < 0 || index >= n {
		return nil
	}
	// rows is most-recent-first; oldest is at the end.
	return r.rows[n-1-index]
}

// TrimTo drops rows from the oldest end until the ring holds at most
// capacity rows, and updates the capacity bound itself. Returns the
// number of rows evicted, which the projection layer turns into a
// "delete top N lines" operation (spec §4.3).
func (r *Ring) TrimTo(capacity int) (evicted int) {
	if capacity < 0 {
		capacity = 0
	}
	r.capacity = capacity
	if len(r.rows) <= capacity {
		return 0
	}
	evicted = len(r.rows) - capacity
	r.rows = r.rows[:capacity]
	return evicted
}

// Clear empties the ring without changing its capacity.
func (r *Ring) Clear() {
	evicted := len(r.rows)
	r.rows = nil
	r.pending -= evicted
}

func resize(row cellmodel.Row, width int) cellmodel.Row {
	if len(row) == width {
		return row
	}
	out := make(cellmodel.Row, width)
	copy(out, row)
	for i := len(row); i < width; i++ {
		out[i].Reset()
	}
	return out
}
