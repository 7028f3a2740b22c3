// Package input implements the Input Dispatcher (spec §4.7): the
// FocusState machine (named to avoid colliding with internal/screen's
// DecMode bitmask, which is what spec.md calls "TerminalMode"), key
// encoding, paste filtering, and mouse-event translation.
package input

// FocusState is the focused-input state machine from spec §4.7.
type FocusState uint8

const (
	Normal FocusState = iota
	Terminal
	TerminalPrefix
	TerminalExited // read-only: PTY has exited, awaiting ack key
)

// Key is the minimal shape the dispatcher needs from a host key event;
// concrete decoding from the host's native key type happens in
// UIHost.DecodeKey (spec §6) before reaching here.
type Key struct {
	Rune  rune // 0 if this is a named key
	Named NamedKey
	Shift, Ctrl, Alt bool
}

// NamedKey enumerates the keys with no direct Unicode rendering.
type NamedKey uint8

const (
	KeyNone NamedKey = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyInsert
	KeyDelete
	KeyF1
	KeyBackslash // Ctrl-\ as a named key for prefix detection convenience
	KeyN
	KeyO
)

// Dispatcher drives the FocusState machine for one terminal.
type Dispatcher struct {
	state FocusState
}

// NewDispatcher starts in Normal.
func NewDispatcher() *Dispatcher { return &Dispatcher{state: Normal} }

// State returns the current FocusState.
func (d *Dispatcher) State() FocusState { return d.state }

// EnterTerminal transitions Normal -> Terminal (host focused the
// terminal buffer).
func (d *Dispatcher) EnterTerminal() {
	if d.state == Normal {
		d.state = Terminal
	}
}

// Leave transitions back to Normal from any state (host defocused the
// terminal buffer, e.g. window switch).
func (d *Dispatcher) Leave() { d.state = Normal }

// NotifyExited transitions Terminal -> TerminalExited when the PTY
// process exits while focused.
func (d *Dispatcher) NotifyExited() {
	if d.state == Terminal {
		d.state = TerminalExited
	}
}

// Action is what the dispatcher decided to do with a key, for the
// caller to act on.
type Action uint8

const (
	ActionForward Action = iota // send the key to the PTY
	ActionSwallow               // consume it, no PTY write (prefix wait, mode switch)
	ActionEmitPrefixAndKey       // TerminalPrefix --[other]--> forward the swallowed Ctrl-\ plus this key
	ActionAckExit                // acknowledge a dead PTY and return to Normal
)

// Dispatch advances the FocusState machine for one key press and
// reports what the caller should do with it. isPrefixKey/isResumeKey/
// isOneShotKey are supplied by the caller to classify the decoded Key (this package does
// not hardcode a keymap, since the prefix key is host-configurable in
// spirit even though spec.md names Ctrl-\ as the example).
func (d *Dispatcher) Dispatch(k Key, isPrefixKey, isResumeKey, isOneShotKey func(Key) bool) Action {
	switch d.state {
	case Terminal:
		if isPrefixKey(k) {
			d.state = TerminalPrefix
			return ActionSwallow
		}
		return ActionForward
	case TerminalPrefix:
		switch {
		case isResumeKey(k):
			d.state = Normal
			return ActionSwallow
		case isOneShotKey(k):
			d.state = Normal
			return ActionSwallow
		default:
			d.state = Terminal
			return ActionEmitPrefixAndKey
		}
	case TerminalExited:
		d.state = Normal
		return ActionAckExit
	default:
		return ActionSwallow
	}
}
