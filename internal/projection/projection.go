// Package projection implements BufferProjection (spec §4.4): it
// mirrors a Screen plus its scrollback ring into a host-owned
// BufferSink, maintaining the invariant that the sink holds exactly
// scrollback_count + height lines and that line scrollback_count+r+1
// is the rendering of grid row r.
package projection

import (
	"github.com/vtcore/vt/internal/cellmodel"
	"github.com/vtcore/vt/internal/screen"
)

// Screen is the subset of internal/screen.Screen the projection reads.
type Screen interface {
	Height() int
	Line(row, width int) cellmodel.Row
	TakeDamage() screen.Damage
}

// Scrollback is the subset of internal/scrollback.Ring the projection
// reads to learn how many lines moved since the last flush.
type Scrollback interface {
	ConsumePending() int
	Len() int
	Line(index int) cellmodel.Row
	TrimTo(capacity int) (evicted int)
}

// Sink is the host collaborator (spec §6 BufferSink).
type Sink interface {
	AppendLines(text []string, attrs []AttrLine)
	ReplaceLine(line int, text string, attrs AttrLine)
	DeleteLines(start, count int)
	MarkDirty(startLine, endLine int)
	LineCount() int
	SetVariable(name, value string)
}

// AttrResolver turns a cell's visual attributes into a single host
// attribute id, per spec §4.4's "combine (fg, bg, pen-flags) via the
// host's attribute registry" plus a second URI layer.
type AttrResolver interface {
	Resolve(cell cellmodel.Cell, fgIndexed, bgIndexed bool) int
}

// AttrLine is the parallel sparse (col -> attr id) map for one
// rendered line, the "parallel sparse map the host may query at paint
// time" from spec §4.4.
type AttrLine map[int]int

// Projection owns the flush-time translation from Screen+Scrollback
// state into Sink calls.
type Projection struct {
	screen     Screen
	scrollback Scrollback
	sink       Sink
	attrs      AttrResolver
	palette    PaletteQuery

	scrollbackCount int // lines of scrollback already reflected in sink
}

// PaletteQuery reports whether a low palette slot (0..15) was
// overridden by the host, needed to decide indexed-vs-direct
// attribute translation (spec §4.4/§4.10).
type PaletteQuery interface {
	Overridden(i uint8) bool
}

// New wires a projection to its collaborators. scrollbackCount starts
// at sb.Len() so an already-populated ring (e.g. restored from a saved
// session) doesn't get re-appended on the first flush.
func New(screen Screen, sb Scrollback, sink Sink, attrs AttrResolver, palette PaletteQuery) *Projection {
	p := &Projection{screen: screen, scrollback: sb, sink: sink, attrs: attrs, palette: palette}
	if sb != nil {
		p.scrollbackCount = sb.Len()
	}
	return p
}

// LineOf implements line_of(row) = scrollback_count + row + 1 (1-based).
func (p *Projection) LineOf(row int) int {
	return p.scrollbackCount + row + 1
}

// Flush performs the four-step BufferSink synchronization from spec
// §4.4: apply pending scrollback growth/shrink, then re-render the
// damaged row range, then clear damage and pending. It reports the
// damaged rows' sink line range as 0-based, end-exclusive indexes
// [firstLine, lastLine) (firstLine is LineOf(start)-1) and whether
// anything changed at all, so a caller can fire a text-changed
// notification without re-deriving that range itself.
func (p *Projection) Flush() (firstLine, lastLine int, changed bool) {
	pending := 0
	if p.scrollback != nil {
		pending = p.scrollback.ConsumePending()
	}

	switch {
	case pending > 0:
		p.appendFromScrollback(pending)
		changed = true
	case pending < 0:
		p.deleteReclaimed(-pending)
		changed = true
	}

	p.reconcileHeight()

	damage := p.screen.TakeDamage()
	if !damage.IsNone() {
		p.renderRange(damage.Start, damage.End)
		changed = true
		firstLine, lastLine = p.LineOf(damage.Start)-1, p.LineOf(damage.End-1)
	}
	return firstLine, lastLine, changed
}

// appendFromScrollback reflects n newly-evicted rows by inserting them
// just above the live grid region, capping total lines at
// scrollback_count + height by trimming from the top if needed.
func (p *Projection) appendFromScrollback(n int) {
	texts := make([]string, 0, n)
	attrLines := make([]AttrLine, 0, n)
	for i := 0; i < n; i++ {
		row := p.scrollback.Line(p.scrollback.Len() - n + i)
		texts = append(texts, row.Text())
		attrLines = append(attrLines, p.attrLine(row))
	}
	// Drop the stale grid lines so the new rows land right after the
	// existing scrollback lines; the grid is re-rendered below them.
	if count := p.sink.LineCount(); n > 0 && count > p.scrollbackCount {
		p.sink.DeleteLines(p.scrollbackCount, count-p.scrollbackCount)
	}
	p.sink.AppendLines(texts, attrLines)
	p.scrollbackCount += n

	height := p.screen.Height()
	limit := p.scrollbackCount + height
	if p.sink.LineCount() > limit {
		overflow := p.sink.LineCount() - limit
		p.sink.DeleteLines(0, overflow)
		p.scrollbackCount -= overflow
	}
	if n > 0 {
		p.reconcileHeight()
		p.renderRange(0, height)
	}
}

// deleteReclaimed drops n lines from just above the grid region: rows
// the primary grid pulled back in during a height-growth resize no
// longer need a separate scrollback-backed line in the sink.
func (p *Projection) deleteReclaimed(n int) {
	if n > p.scrollbackCount {
		n = p.scrollbackCount
	}
	start := p.scrollbackCount - n
	p.sink.DeleteLines(start, n)
	p.scrollbackCount -= n
}

// reconcileHeight reconciles the sink's line count against
// scrollback_count+height in either direction (spec §4.4: "the
// projection must handle the case where BufferSink height mutation...
// has advanced outside the invariant"): trailing lines are truncated
// if the sink overshot, or grown with blank placeholders if it
// undershot — most notably on a brand new, empty BufferSink, where
// this is what gives renderRange lines to ReplaceLine into. A grower
// always coincides with damage over the same rows (construction and
// resize both force a full MarkAllDirty), so the placeholders are
// overwritten with real content by renderRange in the same Flush.
func (p *Projection) reconcileHeight() {
	limit := p.scrollbackCount + p.screen.Height()
	switch count := p.sink.LineCount(); {
	case count > limit:
		p.sink.DeleteLines(limit, count-limit)
	case count < limit:
		grow := limit - count
		p.sink.AppendLines(make([]string, grow), make([]AttrLine, grow))
	}
}

func (p *Projection) renderRange(start, end int) {
	for row := start; row < end; row++ {
		line := p.screen.Line(row, 0)
		p.sink.ReplaceLine(p.LineOf(row)-1, line.Text(), p.attrLine(line))
	}
	p.sink.MarkDirty(p.LineOf(start)-1, p.LineOf(end-1))
}

func (p *Projection) attrLine(row cellmodel.Row) AttrLine {
	if p.attrs == nil {
		return nil
	}
	out := make(AttrLine)
	for col, cell := range row {
		if cell.Glyph == ' ' || cell.Glyph == 0 {
			if cell.Fg.IsDefault() && cell.Bg.IsDefault() && cell.Pen == 0 {
				continue
			}
		}
		fgIdx, fgIsIndexed := cell.Fg.AsIndexed()
		bgIdx, bgIsIndexed := cell.Bg.AsIndexed()
		fgOverridden := fgIsIndexed && p.palette != nil && p.palette.Overridden(fgIdx)
		bgOverridden := bgIsIndexed && p.palette != nil && p.palette.Overridden(bgIdx)
		out[col] = p.attrs.Resolve(cell, fgIsIndexed && !fgOverridden, bgIsIndexed && !bgOverridden)
	}
	return out
}

// TrimScrollback implements the scrollback ring's mutable-capacity
// operation at runtime (spec §4.3: "capacity is mutable at runtime"):
// it tightens the ring's capacity bound and reflects any rows the new
// bound evicts as a top-of-buffer deletion in the sink. Returns the
// number of sink lines deleted, so a caller can decide whether a
// change notification is warranted.
func (p *Projection) TrimScrollback(capacity int) (deleted int) {
	if p.scrollback == nil {
		return 0
	}
	evicted := p.scrollback.TrimTo(capacity)
	if evicted <= 0 {
		return 0
	}
	if evicted > p.scrollbackCount {
		evicted = p.scrollbackCount
	}
	p.sink.DeleteLines(0, evicted)
	p.scrollbackCount -= evicted
	return evicted
}

// SetTitle implements the projection's set_title operation (spec
// §4.4): set a buffer-scoped variable, not a direct redraw signal —
// the host's own variable-watch triggers its statusline redraw.
func (p *Projection) SetTitle(title string) {
	p.sink.SetVariable("terminal_title", title)
}
