// Package registry implements the TerminalHandle indirection and
// refcount-gated teardown from spec §9, mirroring the process-wide
// terminal table in the Neovim original (`original_source/src/nvim/terminal.c`)
// generalized to a Go map guarded by its own mutex rather than a
// global protected by the editor's single main thread.
package registry

import (
	"sync"

	"github.com/google/uuid"
)

// Handle is an opaque terminal identifier a host can hold without
// pinning the terminal itself, letting registry.Lookup decide whether
// it's still valid (spec §9: a handle may outlive the terminal object
// across a host-teardown-during-callback, see internal/registry's
// revalidation contract below).
type Handle uint64

// Holder is the minimal shape a registered object needs: Retain/Release
// implement the refcount gate (spec §9), where the zero crossing frees
// the object's resources exactly once.
type Holder interface {
	Retain()
	Release()
}

// Registry maps handles to live Holders. All registry operations are
// expected to run on the single loop goroutine (spec §5); the mutex
// exists only to make a host's accidental cross-goroutine Lookup safe
// to observe, not to support genuine concurrent mutation.
type Registry struct {
	mu    sync.Mutex
	items map[Handle]Holder
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{items: make(map[Handle]Holder)}
}

// NextHandle generates a handle from a random UUID's low 64 bits, for
// a host that does not supply its own numbering scheme.
func NextHandle() Handle {
	id := uuid.New()
	var v uint64
	for _, b := range id[8:16] {
		v = v<<8 | uint64(b)
	}
	return Handle(v)
}

// Register adds h -> holder, retaining it once on behalf of the
// registry's own reference.
func (r *Registry) Register(h Handle, holder Holder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	holder.Retain()
	r.items[h] = holder
}

// Lookup resolves a handle to its live Holder. A handle whose Holder
// was unregistered (refcount reached zero) resolves to ok=false,
// matching the original's "terminal handle revalidated post-callback"
// behavior: code holding only a Handle across a host callback must
// re-Lookup rather than caching a bare pointer.
func (r *Registry) Lookup(h Handle) (Holder, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	holder, ok := r.items[h]
	return holder, ok
}

// Unregister drops the registry's own reference to h, releasing the
// holder; if that was the last reference the holder tears itself down.
func (r *Registry) Unregister(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	holder, ok := r.items[h]
	if !ok {
		return
	}
	delete(r.items, h)
	holder.Release()
}

// Refcount is an int32 refcount gate, embedded by the root Terminal
// type (spec §9: "Terminal.refcount... guarded by the loop goroutine,
// no atomics needed since everything is single-threaded").
type Refcount struct {
	n        int32
	teardown func()
}

// NewRefcount starts at zero references; teardown runs exactly once,
// when Release brings the count from 1 to 0.
func NewRefcount(teardown func()) *Refcount {
	return &Refcount{teardown: teardown}
}

func (r *Refcount) Retain() { r.n++ }

func (r *Refcount) Release() {
	r.n--
	if r.n <= 0 && r.teardown != nil {
		t := r.teardown
		r.teardown = nil
		t()
	}
}

// Count reports the current reference count, for tests.
func (r *Refcount) Count() int32 { return r.n }
