package term

// EventKind distinguishes the typed events delivered to the host's
// EventSink (spec §6).
type EventKind uint8

const (
	EventTermOpen EventKind = iota
	EventTermClose
	EventTermEnter
	EventTermLeave
	EventTermRequest
	EventTextChanged
)

// TermOpenEvent fires when a terminal is created (spec §3 Lifecycles).
type TermOpenEvent struct {
	Handle Handle
	Width, Height int
}

// TermCloseEvent fires when the PTY process exits.
type TermCloseEvent struct {
	Handle     Handle
	ExitStatus int
}

// TermEnterEvent fires when the host focuses the terminal buffer
// (Normal -> Terminal in the FocusState machine, spec §4.7).
type TermEnterEvent struct {
	Handle Handle
}

// TermLeaveEvent fires when the host defocuses the terminal buffer.
type TermLeaveEvent struct {
	Handle Handle
}

// TermRequestEvent carries an assembled APC/PM/SOS payload the host
// may synchronously respond to (spec §4.7).
type TermRequestEvent struct {
	Handle Handle
	Kind   string // "APC", "PM" or "SOS"
	Data   []byte
}

// TextChangedEvent fires after a flush that mutated BufferSink lines,
// mirroring the host's usual "buffer text changed" notification.
type TextChangedEvent struct {
	Handle           Handle
	FirstLine, LastLine int
}

// EventSink is the host collaborator that receives typed terminal
// lifecycle events (spec §6).
type EventSink interface {
	OnTermOpen(TermOpenEvent)
	OnTermClose(TermCloseEvent)
	OnTermEnter(TermEnterEvent)
	OnTermLeave(TermLeaveEvent)
	OnTermRequest(TermRequestEvent) // may call back into Terminal.Send
	OnTextChanged(TextChangedEvent)
}

// NopEventSink implements EventSink with no-op methods, for a host
// that doesn't care about lifecycle notifications.
type NopEventSink struct{}

func (NopEventSink) OnTermOpen(TermOpenEvent)         {}
func (NopEventSink) OnTermClose(TermCloseEvent)       {}
func (NopEventSink) OnTermEnter(TermEnterEvent)       {}
func (NopEventSink) OnTermLeave(TermLeaveEvent)       {}
func (NopEventSink) OnTermRequest(TermRequestEvent)   {}
func (NopEventSink) OnTextChanged(TextChangedEvent)   {}
