// Package request implements the Request Channel (spec §4.7): when a
// complete out-of-band payload assembles (the parser dispatches APC, PM
// and SOS strings through it), the host gets a synchronous
// callback and may itself call back into Send before returning. The
// pending-send queue guarantees that host-initiated writes made during
// that callback land on the wire after the application's own request,
// with nothing interleaved from unrelated writers.
package request

// Payload is a fully-assembled out-of-band sequence delivered to the
// host as a single TerminalRequest event.
type Payload struct {
	Kind string // sequence family; the parser sets "APC", "PM" or "SOS"
	Data []byte
}

// Sender is the thing that ultimately writes bytes to the PTY
// (spec §6 PtyChannel, narrowed to what the request channel needs).
type Sender interface {
	Send(data []byte) error
}

// Channel mediates between the assembled-payload dispatch and the
// PTY, swapping in a pending queue for the duration of each host
// callback.
type Channel struct {
	out     Sender
	pending *[][]byte // non-nil while a callback is in flight
}

// NewChannel wires the channel to its eventual PTY writer.
func NewChannel(out Sender) *Channel {
	return &Channel{out: out}
}

// Send writes bytes to the PTY, or — if a request callback is
// currently in flight — appends to the pending queue instead (spec
// §4.7: "the dispatcher atomically swaps the Terminal's outbound send
// path to a pending queue for the duration of the callback").
func (c *Channel) Send(data []byte) error {
	if c.pending != nil {
		buf := make([]byte, len(data))
		copy(buf, data)
		*c.pending = append(*c.pending, buf)
		return nil
	}
	return c.out.Send(data)
}

// Dispatch delivers payload to handler with the pending queue
// installed, then flushes whatever the handler (or anything it
// triggered) queued, in order, once the handler returns. This is the
// one place in the core that re-enters host code synchronously. It runs
// inside the Terminal.Write call that parsed the payload, so that call's
// remaining bytes are not parsed until it returns; this type adds no
// locking of its own.
func (c *Channel) Dispatch(payload Payload, handler func(Payload)) {
	var queue [][]byte
	prev := c.pending
	c.pending = &queue
	func() {
		defer func() { c.pending = prev }()
		handler(payload)
	}()
	for _, b := range queue {
		if prev != nil {
			*prev = append(*prev, b)
			continue
		}
		_ = c.out.Send(b)
	}
}
