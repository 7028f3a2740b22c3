package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func isCtrlBackslash(k Key) bool { return k.Ctrl && k.Rune == '\\' }
func isN(k Key) bool             { return k.Named == KeyN }
func isO(k Key) bool             { return k.Named == KeyO }

func TestDispatcherStartsNormal(t *testing.T) {
	d := NewDispatcher()
	assert.Equal(t, Normal, d.State())
}

func TestEnterTerminalFromNormal(t *testing.T) {
	d := NewDispatcher()
	d.EnterTerminal()
	assert.Equal(t, Terminal, d.State())
}

func TestEnterTerminalIsNoopOutsideNormal(t *testing.T) {
	d := NewDispatcher()
	d.EnterTerminal()
	d.NotifyExited()
	d.EnterTerminal() // state is TerminalExited, not Normal; must not transition
	assert.Equal(t, TerminalExited, d.State())
}

func TestForwardsOrdinaryKeysWhileFocused(t *testing.T) {
	d := NewDispatcher()
	d.EnterTerminal()

	action := d.Dispatch(Key{Rune: 'a'}, isCtrlBackslash, isN, isO)
	assert.Equal(t, ActionForward, action)
	assert.Equal(t, Terminal, d.State())
}

func TestPrefixKeySwallowedAndEntersPrefixState(t *testing.T) {
	d := NewDispatcher()
	d.EnterTerminal()

	action := d.Dispatch(Key{Ctrl: true, Rune: '\\'}, isCtrlBackslash, isN, isO)
	assert.Equal(t, ActionSwallow, action)
	assert.Equal(t, TerminalPrefix, d.State())
}

func TestResumeKeyAfterPrefixReturnsToNormal(t *testing.T) {
	d := NewDispatcher()
	d.EnterTerminal()
	d.Dispatch(Key{Ctrl: true, Rune: '\\'}, isCtrlBackslash, isN, isO)

	action := d.Dispatch(Key{Named: KeyN}, isCtrlBackslash, isN, isO)
	assert.Equal(t, ActionSwallow, action)
	assert.Equal(t, Normal, d.State())
}

func TestOneShotKeyAfterPrefixReturnsToNormal(t *testing.T) {
	d := NewDispatcher()
	d.EnterTerminal()
	d.Dispatch(Key{Ctrl: true, Rune: '\\'}, isCtrlBackslash, isN, isO)

	action := d.Dispatch(Key{Named: KeyO}, isCtrlBackslash, isN, isO)
	assert.Equal(t, ActionSwallow, action)
	assert.Equal(t, Normal, d.State())
}

func TestOtherKeyAfterPrefixEmitsPrefixAndKeyThenStaysTerminal(t *testing.T) {
	d := NewDispatcher()
	d.EnterTerminal()
	d.Dispatch(Key{Ctrl: true, Rune: '\\'}, isCtrlBackslash, isN, isO)

	action := d.Dispatch(Key{Rune: 'x'}, isCtrlBackslash, isN, isO)
	assert.Equal(t, ActionEmitPrefixAndKey, action)
	assert.Equal(t, Terminal, d.State())
}

func TestNotifyExitedOnlyFromTerminal(t *testing.T) {
	d := NewDispatcher()
	d.NotifyExited() // still Normal, must be a noop
	assert.Equal(t, Normal, d.State())

	d.EnterTerminal()
	d.NotifyExited()
	assert.Equal(t, TerminalExited, d.State())
}

func TestTerminalExitedKeyAcksAndReturnsToNormal(t *testing.T) {
	d := NewDispatcher()
	d.EnterTerminal()
	d.NotifyExited()

	action := d.Dispatch(Key{Rune: ' '}, isCtrlBackslash, isN, isO)
	assert.Equal(t, ActionAckExit, action)
	assert.Equal(t, Normal, d.State())
}

func TestLeaveReturnsToNormalFromAnyState(t *testing.T) {
	d := NewDispatcher()
	d.EnterTerminal()
	d.Dispatch(Key{Ctrl: true, Rune: '\\'}, isCtrlBackslash, isN, isO)
	d.Leave()
	assert.Equal(t, Normal, d.State())
}
