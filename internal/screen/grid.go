package screen

import "github.com/vtcore/vt/internal/cellmodel"

// ScrollbackSink is the capability a Grid needs from scrollback storage:
// push a row that scrolled off the top, and pop one back during a
// height-growth resize. internal/scrollback.Ring satisfies this
// structurally; screen never imports the scrollback package, which
// keeps the dependency graph a DAG (spec §9's registry/damage split
// applies the same discipline one level up).
type ScrollbackSink interface {
	Push(row cellmodel.Row)
	Pop(targetWidth int) (cellmodel.Row, bool)
}

type noopSink struct{}

func (noopSink) Push(cellmodel.Row)                        {}
func (noopSink) Pop(int) (cellmodel.Row, bool)              { return nil, false }

// Grid is one screen buffer: primary or alternate. It owns its own
// cursor, pen, tab stops, and scroll margins; the alternate grid is
// always constructed with a noop scrollback sink since alt-screen
// eviction never feeds scrollback (spec §4.2 "Alt-screen isolation").
type Grid struct {
	width, height int
	rows          []cellmodel.Row
	wrapped       []bool
	tabStops      []bool

	cursorRow, cursorCol int
	pendingWrap          bool
	pen                  cellmodel.Cell // template for new writes: Fg/Bg/Pen/Underline/URIAttr

	scrollTop, scrollBottom int // [top, bottom), bottom exclusive

	scrollback ScrollbackSink
	damage     Damage
}

// NewGrid allocates a grid of the given size. A nil sink is replaced
// with a noop (used for the alternate screen).
func NewGrid(width, height int, sink ScrollbackSink) *Grid {
	if sink == nil {
		sink = noopSink{}
	}
	g := &Grid{
		width: width, height: height,
		rows:         make([]cellmodel.Row, height),
		wrapped:      make([]bool, height),
		tabStops:     make([]bool, width),
		scrollTop:    0,
		scrollBottom: height,
		scrollback:   sink,
		pen:          cellmodel.Blank(),
		damage:       NoDamage(), // the zero Damage{} is NOT none: it reports a phantom [0,0) range
	}
	for i := range g.rows {
		g.rows[i] = cellmodel.NewRow(width)
	}
	g.resetTabStops()
	return g
}

func (g *Grid) resetTabStops() {
	for i := range g.tabStops {
		g.tabStops[i] = i%8 == 0
	}
}

func (g *Grid) markDamage(start, end int) {
	g.damage = g.damage.Union(Range(start, end))
}

// TakeDamage returns and clears the accumulated damage interval.
func (g *Grid) TakeDamage() Damage {
	d := g.damage
	g.damage = NoDamage()
	return d
}

// MarkAllDirty damages every row, forcing the next flush to re-resolve
// and re-send every line even though no cell actually changed (spec
// §4.10: a palette reload changes what an unchanged indexed color
// renders as, which is damage to the projection even though the grid
// itself is untouched).
func (g *Grid) MarkAllDirty() {
	g.markDamage(0, g.height)
}

func (g *Grid) cellAt(row, col int) *cellmodel.Cell {
	if row < 0 || row >= g.height || col < 0 || col >= g.width {
		return nil
	}
	return &g.rows[row][col]
}

// Line returns a defensive copy of a row, clipped or padded to width.
func (g *Grid) Line(row, width int) cellmodel.Row {
	if row < 0 || row >= g.height {
		return cellmodel.NewRow(width)
	}
	src := g.rows[row]
	if len(src) == width {
		return src.Clone()
	}
	out := make(cellmodel.Row, width)
	copy(out, src)
	for i := len(src); i < width; i++ {
		out[i].Reset()
	}
	return out
}

func (g *Grid) clearRange(row, startCol, endCol int) {
	if row < 0 || row >= g.height {
		return
	}
	if startCol < 0 {
		startCol = 0
	}
	if endCol > g.width {
		endCol = g.width
	}
	for c := startCol; c < endCol; c++ {
		g.rows[row][c].Reset()
	}
	g.markDamage(row, row+1)
}

func (g *Grid) clearRow(row int) { g.clearRange(row, 0, g.width) }

func (g *Grid) clearAll() {
	for r := 0; r < g.height; r++ {
		g.clearRow(r)
	}
}

// ScrollUp shifts rows [top,bottom) up by n, pushing evicted rows to
// scrollback only when the region is the full height (spec §4.2: "SU above the primary
// screen's top-of-region scrolls rows into scrollback only if region =
// full height; otherwise the rows are discarded").
func (g *Grid) ScrollUp(top, bottom, n int) {
	if n <= 0 || top >= bottom {
		return
	}
	if bottom > g.height {
		bottom = g.height
	}
	if n > bottom-top {
		n = bottom - top
	}

	if top == 0 && bottom == g.height {
		for i := 0; i < n; i++ {
			g.scrollback.Push(g.rows[i])
		}
	}

	for row := top; row < bottom-n; row++ {
		g.rows[row] = g.rows[row+n]
		g.wrapped[row] = g.wrapped[row+n]
	}
	for row := bottom - n; row < bottom; row++ {
		g.rows[row] = cellmodel.NewRow(g.width)
		g.wrapped[row] = false
	}
	g.markDamage(top, bottom)
}

// ScrollDown shifts rows [top,bottom) down by n; rows scrolled below
// bottom are discarded, top rows are cleared.
func (g *Grid) ScrollDown(top, bottom, n int) {
	if n <= 0 || top >= bottom {
		return
	}
	if bottom > g.height {
		bottom = g.height
	}
	if n > bottom-top {
		n = bottom - top
	}

	for row := bottom - 1; row >= top+n; row-- {
		g.rows[row] = g.rows[row-n]
		g.wrapped[row] = g.wrapped[row-n]
	}
	for row := top; row < top+n; row++ {
		g.rows[row] = cellmodel.NewRow(g.width)
		g.wrapped[row] = false
	}
	g.markDamage(top, bottom)
}

func (g *Grid) insertBlanks(row, col, n int) {
	if row < 0 || row >= g.height || col < 0 || col >= g.width || n <= 0 {
		return
	}
	for c := g.width - 1; c >= col+n; c-- {
		g.rows[row][c] = g.rows[row][c-n]
	}
	end := col + n
	if end > g.width {
		end = g.width
	}
	for c := col; c < end; c++ {
		g.rows[row][c].Reset()
	}
	g.markDamage(row, row+1)
}

func (g *Grid) deleteChars(row, col, n int) {
	if row < 0 || row >= g.height || col < 0 || col >= g.width || n <= 0 {
		return
	}
	for c := col; c < g.width-n; c++ {
		g.rows[row][c] = g.rows[row][c+n]
	}
	for c := g.width - n; c < g.width; c++ {
		if c >= 0 {
			g.rows[row][c].Reset()
		}
	}
	g.markDamage(row, row+1)
}

func (g *Grid) nextTabStop(col int) int {
	for c := col + 1; c < g.width; c++ {
		if g.tabStops[c] {
			return c
		}
	}
	return g.width - 1
}

func (g *Grid) prevTabStop(col int) int {
	for c := col - 1; c >= 0; c-- {
		if g.tabStops[c] {
			return c
		}
	}
	return 0
}

// resize truncates or pads the grid in place, keeping existing content
// top-left anchored. Height growth pulls rows back from scrollback
// (spec §4.2/§4.3). Height shrink keeps the rows nearest the cursor:
// if the cursor would fall outside the new height, the rows above it
// scroll into scrollback first, then the bottom rows are clipped.
// A width change rewraps soft-wrapped logical lines across row
// boundaries when reflow is true (spec.md:108, SPEC_FULL.md §4); a
// caller that wants the old clip/pad-per-row behavior (e.g. the
// alternate screen, which xterm never reflows) passes reflow=false.
func (g *Grid) resize(width, height int, reflow bool) {
	if width == g.width {
		g.resizeHeight(height)
	} else {
		if reflow {
			g.reflowWidth(width)
		} else {
			g.resizeWidth(width)
		}
		g.resizeTabStops(width)
		g.resizeHeight(height)
	}
	g.width = width
	g.height = height
	if g.scrollTop >= height {
		g.scrollTop = 0
	}
	g.scrollBottom = height
	if g.cursorRow >= height {
		g.cursorRow = height - 1
	}
	if g.cursorRow < 0 {
		g.cursorRow = 0
	}
	if g.cursorCol >= width {
		g.cursorCol = width - 1
	}
	if g.cursorCol < 0 {
		g.cursorCol = 0
	}
	g.pendingWrap = false
	g.markDamage(0, height)
}

func (g *Grid) resizeWidth(width int) {
	for i := range g.rows {
		g.rows[i] = g.Line(i, width)
	}
}

func (g *Grid) resizeTabStops(width int) {
	newTabs := make([]bool, width)
	copy(newTabs, g.tabStops)
	for i := len(g.tabStops); i < width; i++ {
		if i%8 == 0 {
			newTabs[i] = true
		}
	}
	g.tabStops = newTabs
}

// trimTrailingBlank drops trailing blank cells the same way Row.Text
// does, but returns cells instead of a string so a caller can carry
// colors/attributes across the trim. A wide glyph sitting at the new
// end keeps its paired tail cell.
func trimTrailingBlank(row cellmodel.Row) cellmodel.Row {
	last := -1
	for i := len(row) - 1; i >= 0; i-- {
		if row[i].Glyph != ' ' && row[i].Glyph != 0 {
			last = i
			break
		}
	}
	if last < 0 {
		return nil
	}
	end := last + 1
	if row[last].Width == 2 && end < len(row) {
		end++
	}
	return row[:end]
}

// reflowWidth rewraps the grid's logical lines — runs of rows chained
// by wrapped[] — to newWidth, instead of clipping or padding each row
// independently. A logical line longer than newWidth splits across
// more or fewer physical rows than before; lines that no longer fit in
// the grid's current height push their oldest reflowed rows into
// scrollback, the same as a normal scroll-up.
func (g *Grid) reflowWidth(newWidth int) {
	oldHeight := g.height

	// Flatten rows into logical lines. A row chained to the next via
	// wrapped[row]==true always contributes its full (old) width —
	// Input only sets wrapped when a row filled completely — so only
	// the last physical row of a line needs trailing-blank trimming.
	var lines [][]cellmodel.Cell
	cursorLine, cursorOffset := 0, 0
	var cells []cellmodel.Cell
	for row := 0; row < len(g.rows); row++ {
		if row == g.cursorRow {
			cursorLine = len(lines)
			cursorOffset = len(cells) + g.cursorCol
		}
		if row+1 < len(g.rows) && g.wrapped[row] {
			cells = append(cells, g.rows[row]...)
			continue
		}
		cells = append(cells, trimTrailingBlank(g.rows[row])...)
		lines = append(lines, cells)
		cells = nil
	}

	// Rewrap each logical line into newWidth-wide rows, never
	// splitting a wide glyph's tail cell across a row boundary.
	var newRows []cellmodel.Row
	var newWrapped []bool
	newCursorRow, newCursorCol := 0, 0
	for li, line := range lines {
		col := 0
		row := cellmodel.NewRow(newWidth)
		for ci := 0; ci <= len(line); ci++ {
			if li == cursorLine && ci == cursorOffset {
				newCursorRow, newCursorCol = len(newRows), col
			}
			if ci == len(line) {
				break
			}
			c := line[ci]
			if col >= newWidth || (c.Width == 2 && col == newWidth-1) {
				newRows = append(newRows, row)
				newWrapped = append(newWrapped, true)
				row = cellmodel.NewRow(newWidth)
				col = 0
			}
			row[col] = c
			col++
		}
		newRows = append(newRows, row)
		newWrapped = append(newWrapped, false)
	}
	if len(newRows) == 0 {
		newRows = append(newRows, cellmodel.NewRow(newWidth))
		newWrapped = append(newWrapped, false)
	}

	// Fit the reflowed lines back into oldHeight rows; overflow from
	// the top scrolls into scrollback exactly like ScrollUp does.
	if len(newRows) > oldHeight {
		overflow := len(newRows) - oldHeight
		for i := 0; i < overflow; i++ {
			g.scrollback.Push(newRows[i])
		}
		newRows = newRows[overflow:]
		newWrapped = newWrapped[overflow:]
		newCursorRow -= overflow
	}
	for len(newRows) < oldHeight {
		newRows = append(newRows, cellmodel.NewRow(newWidth))
		newWrapped = append(newWrapped, false)
	}
	if newCursorRow < 0 {
		newCursorRow = 0
	}
	if newCursorRow >= oldHeight {
		newCursorRow = oldHeight - 1
	}

	g.rows = newRows
	g.wrapped = newWrapped
	g.cursorRow = newCursorRow
	g.cursorCol = newCursorCol
}

// resizeHeight grows or shrinks the row count. Growth first tries to
// pull rows back from scrollback (spec §4.2: "rows pulled back in from
// scrollback during a height-growth fill the top of the primary grid,
// and sb_pending goes negative by that count").
func (g *Grid) resizeHeight(height int) {
	if height == g.height {
		return
	}
	if height > g.height {
		grow := height - g.height
		pulled := make([]cellmodel.Row, 0, grow)
		for i := 0; i < grow; i++ {
			row, ok := g.scrollback.Pop(g.width)
			if !ok {
				break
			}
			pulled = append(pulled, row)
		}
		// pulled is most-recent-first from the ring; reverse so the
		// oldest pulled row ends up furthest from the cursor.
		for i, j := 0, len(pulled)-1; i < j; i, j = i+1, j-1 {
			pulled[i], pulled[j] = pulled[j], pulled[i]
		}
		newRows := make([]cellmodel.Row, 0, height)
		newWrapped := make([]bool, 0, height)
		newRows = append(newRows, pulled...)
		for range pulled {
			newWrapped = append(newWrapped, false)
		}
		newRows = append(newRows, g.rows...)
		newWrapped = append(newWrapped, g.wrapped...)
		for len(newRows) < height {
			newRows = append(newRows, cellmodel.NewRow(g.width))
			newWrapped = append(newWrapped, false)
		}
		g.rows = newRows[:height]
		g.wrapped = newWrapped[:height]
		g.cursorRow += len(pulled)
	} else {
		shrink := g.height - height
		if g.cursorRow >= height {
			// Preserve content near the cursor: push the rows the
			// cursor is leaving behind into scrollback, same as a
			// plain scroll-up of the overflow amount.
			over := g.cursorRow - height + 1
			if over > shrink {
				over = shrink
			}
			g.ScrollUp(0, g.height, over)
			g.cursorRow -= over
			if g.cursorRow < 0 {
				g.cursorRow = 0
			}
		}
		if height > len(g.rows) {
			height = len(g.rows)
		}
		g.rows = g.rows[:height]
		g.wrapped = g.wrapped[:height]
	}
	g.height = height
}
