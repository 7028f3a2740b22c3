package screen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vtcore/vt/internal/cellmodel"
)

type recordingRing struct {
	rows []cellmodel.Row
}

func (r *recordingRing) Push(row cellmodel.Row) { r.rows = append(r.rows, row.Clone()) }

func (r *recordingRing) Pop(targetWidth int) (cellmodel.Row, bool) {
	if len(r.rows) == 0 {
		return nil, false
	}
	last := r.rows[len(r.rows)-1]
	r.rows = r.rows[:len(r.rows)-1]
	return last, true
}

func TestGridScrollUpPushesOnlyFromFullHeightRegion(t *testing.T) {
	ring := &recordingRing{}
	g := NewGrid(5, 3, ring)
	g.rows[0][0].Glyph = 'a'

	g.ScrollUp(1, 3, 1) // region doesn't include row 0: no scrollback push
	assert.Empty(t, ring.rows)

	g2 := NewGrid(5, 3, ring)
	g2.rows[0][0].Glyph = 'z'
	g2.ScrollUp(0, 3, 1)
	require.Len(t, ring.rows, 1)
	assert.Equal(t, 'z', ring.rows[0][0].Glyph)
}

func TestGridResizeHeightGrowthPullsFromScrollback(t *testing.T) {
	ring := &recordingRing{}
	old := cellmodel.NewRow(5)
	old[0].Glyph = 'x'
	ring.rows = append(ring.rows, old)

	g := NewGrid(5, 3, ring)
	g.resize(5, 4, false)

	assert.Equal(t, 4, g.height)
	assert.Equal(t, "x", g.Line(0, 5).Text())
	assert.Empty(t, ring.rows, "the pulled row is consumed from the ring")
}

func TestGridResizeHeightShrinkPreservesRowsNearCursor(t *testing.T) {
	g := NewGrid(5, 3, nil)
	g.rows[2][0].Glyph = 'c'
	g.cursorRow = 2

	g.resize(5, 2, false)

	assert.Equal(t, 2, g.height)
	assert.Equal(t, "c", g.Line(1, 5).Text(), "shrinking keeps the row the cursor was on")
}

func TestGridResizeWidthClipsContent(t *testing.T) {
	g := NewGrid(5, 1, nil)
	g.rows[0][0].Glyph = 'h'
	g.rows[0][1].Glyph = 'i'

	g.resize(2, 1, false)
	assert.Equal(t, "hi", g.Line(0, 2).Text())
}

func TestGridReflowWidthJoinsWrappedRowsOnWiden(t *testing.T) {
	g := NewGrid(3, 2, nil)
	g.rows[0][0].Glyph, g.rows[0][1].Glyph, g.rows[0][2].Glyph = 'a', 'b', 'c'
	g.wrapped[0] = true // row 0 was completely filled when it soft-wrapped
	g.rows[1][0].Glyph, g.rows[1][1].Glyph = 'd', 'e'
	g.cursorRow, g.cursorCol = 1, 2

	g.reflowWidth(5)

	assert.Equal(t, "abcde", g.Line(0, 5).Text(), "the two chained rows rejoin into one logical line at the wider width")
	assert.Equal(t, "", g.Line(1, 5).Text())
	assert.False(t, g.wrapped[0])
	assert.Equal(t, 0, g.cursorRow)
	assert.Equal(t, 5, g.cursorCol, "the cursor was at the end of the joined line")
}

func TestGridReflowWidthSplitsLineAndPushesOverflowToScrollback(t *testing.T) {
	ring := &recordingRing{}
	g := NewGrid(5, 1, ring)
	for i, r := range "abcde" {
		g.rows[0][i].Glyph = r
	}
	g.cursorRow, g.cursorCol = 0, 5

	g.reflowWidth(2)

	require.Len(t, ring.rows, 2, "narrowing beyond the grid's single row pushes the extra wrapped rows into scrollback")
	assert.Equal(t, "ab", ring.rows[0].Text(), "the topmost wrapped segment is evicted first, oldest-first")
	assert.Equal(t, "cd", ring.rows[1].Text())
	assert.Equal(t, "e", g.Line(0, 2).Text(), "only the row nearest the cursor remains in the grid")
	assert.Equal(t, 0, g.cursorRow)
	assert.Equal(t, 1, g.cursorCol)
}

func TestGridResizeWidthWithReflowTrueRewrapsInsteadOfClipping(t *testing.T) {
	g := NewGrid(3, 2, nil)
	g.rows[0][0].Glyph, g.rows[0][1].Glyph, g.rows[0][2].Glyph = 'a', 'b', 'c'
	g.wrapped[0] = true
	g.rows[1][0].Glyph = 'd'
	g.cursorRow, g.cursorCol = 1, 1

	g.resize(5, 2, true)

	assert.Equal(t, "abcd", g.Line(0, 5).Text())
}

func TestGridInsertBlanksShiftsRightAndTruncates(t *testing.T) {
	g := NewGrid(5, 1, nil)
	g.rows[0][0].Glyph = 'a'
	g.rows[0][1].Glyph = 'b'
	g.rows[0][2].Glyph = 'c'

	g.insertBlanks(0, 1, 2)
	assert.Equal(t, "a  bc", g.Line(0, 5).Text(), "b and c shift right two columns; the two trailing blanks are pushed past the grid width and dropped")
}

func TestGridDeleteCharsShiftsLeftAndClearsTail(t *testing.T) {
	g := NewGrid(5, 1, nil)
	g.rows[0][0].Glyph = 'a'
	g.rows[0][1].Glyph = 'b'
	g.rows[0][2].Glyph = 'c'

	g.deleteChars(0, 0, 1)
	assert.Equal(t, "bc", g.Line(0, 5).Text())
}

func TestGridTabStopsDefaultEveryEightColumns(t *testing.T) {
	g := NewGrid(20, 1, nil)
	assert.Equal(t, 8, g.nextTabStop(0))
	assert.Equal(t, 16, g.nextTabStop(8))
	assert.Equal(t, 0, g.prevTabStop(8))
}

func TestGridClearAllBlanksEveryRow(t *testing.T) {
	g := NewGrid(5, 2, nil)
	g.rows[0][0].Glyph = 'a'
	g.rows[1][0].Glyph = 'b'

	g.clearAll()
	assert.Equal(t, "", g.Line(0, 5).Text())
	assert.Equal(t, "", g.Line(1, 5).Text())
}

func TestGridLinePadsShortRowsToRequestedWidth(t *testing.T) {
	g := NewGrid(3, 1, nil)
	line := g.Line(0, 6)
	assert.Equal(t, 6, len(line))
}
