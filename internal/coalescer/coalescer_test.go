package coalescer

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingFlusher struct {
	mu    sync.Mutex
	count int
}

func (f *countingFlusher) Flush() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count++
}

func (f *countingFlusher) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.count
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}

func TestCoalescerFlushesAfterDelay(t *testing.T) {
	c := New()
	f := &countingFlusher{}

	c.Invalidate(f)
	waitFor(t, func() bool { return f.Count() == 1 })
}

func TestCoalescerRepeatedInvalidateBeforeFireFlushesOnce(t *testing.T) {
	c := New()
	f := &countingFlusher{}

	c.Invalidate(f)
	c.Invalidate(f)
	c.Invalidate(f)
	waitFor(t, func() bool { return f.Count() == 1 })

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, f.Count(), "three Invalidate calls before the timer fires should coalesce into a single Flush")
}

func TestCoalescerMultipleFlushersAllFire(t *testing.T) {
	c := New()
	a := &countingFlusher{}
	b := &countingFlusher{}

	c.Invalidate(a)
	c.Invalidate(b)
	waitFor(t, func() bool { return a.Count() == 1 && b.Count() == 1 })
}

func TestCoalescerStopPreventsFurtherFiring(t *testing.T) {
	c := New()
	f := &countingFlusher{}

	c.Stop()
	c.Invalidate(f)

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 0, f.Count())
}

type orderRecordingFlusher struct {
	id    int
	order *[]int
	mu    *sync.Mutex
}

func (f orderRecordingFlusher) Flush() {
	f.mu.Lock()
	defer f.mu.Unlock()
	*f.order = append(*f.order, f.id)
}

func TestCoalescerFlushesInFirstMarkedDirtyOrder(t *testing.T) {
	c := New()
	var mu sync.Mutex
	var order []int

	for id := 0; id < 5; id++ {
		c.Invalidate(orderRecordingFlusher{id: id, order: &order, mu: &mu})
	}

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) == 5
	})

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestCoalescerInvalidateAgainAfterFireArmsANewTimer(t *testing.T) {
	c := New()
	f := &countingFlusher{}

	c.Invalidate(f)
	waitFor(t, func() bool { return f.Count() == 1 })

	c.Invalidate(f)
	waitFor(t, func() bool { return f.Count() == 2 })
}
