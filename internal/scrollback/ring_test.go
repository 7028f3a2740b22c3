package scrollback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vtcore/vt/internal/cellmodel"
)

func rowOf(s string) cellmodel.Row {
	row := cellmodel.NewRow(len(s))
	for i, r := range s {
		row[i].Glyph = r
	}
	return row
}

func TestRingPushOldestFirstOrdering(t *testing.T) {
	r := New(10)
	r.Push(rowOf("a"))
	r.Push(rowOf("b"))
	r.Push(rowOf("c"))

	require.Equal(t, 3, r.Len())
	assert.Equal(t, "a", r.Line(0).Text())
	assert.Equal(t, "b", r.Line(1).Text())
	assert.Equal(t, "c", r.Line(2).Text())
}

func TestRingPushPendingCapsAtCapacity(t *testing.T) {
	r := New(2)
	r.Push(rowOf("a"))
	r.Push(rowOf("b"))
	r.Push(rowOf("c")) // evicts "a"

	assert.Equal(t, 2, r.Len())
	assert.Equal(t, 2, r.Pending())
	assert.Equal(t, "b", r.Line(0).Text())
	assert.Equal(t, "c", r.Line(1).Text())
}

func TestRingConsumePendingResetsToZero(t *testing.T) {
	r := New(5)
	r.Push(rowOf("a"))
	r.Push(rowOf("b"))

	assert.Equal(t, 2, r.ConsumePending())
	assert.Equal(t, 0, r.Pending())
}

func TestRingPopReturnsMostRecentClippedToWidth(t *testing.T) {
	r := New(5)
	r.Push(rowOf("hello"))

	row, ok := r.Pop(3)
	require.True(t, ok)
	assert.Equal(t, 3, len(row))
	assert.Equal(t, "hel", row.Text())
	assert.Equal(t, -1, r.Pending())
}

func TestRingPopEmpty(t *testing.T) {
	r := New(5)
	_, ok := r.Pop(3)
	assert.False(t, ok)
}

func TestRingTrimToEvictsOldest(t *testing.T) {
	r := New(5)
	r.Push(rowOf("a"))
	r.Push(rowOf("b"))
	r.Push(rowOf("c"))

	evicted := r.TrimTo(1)
	assert.Equal(t, 2, evicted)
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, "c", r.Line(0).Text())
}

func TestRingZeroCapacityDisablesStorage(t *testing.T) {
	r := New(0)
	r.Push(rowOf("a"))
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 0, r.Pending())
}

func TestRingClear(t *testing.T) {
	r := New(5)
	r.Push(rowOf("a"))
	r.Push(rowOf("b"))
	r.Clear()

	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 0, r.Pending())
}
