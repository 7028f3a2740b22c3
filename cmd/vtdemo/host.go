package main

import (
	"runtime"
	"os/exec"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	sysclip "github.com/atotto/clipboard"
	"github.com/mattn/go-runewidth"

	vt "github.com/vtcore/vt"
	"github.com/vtcore/vt/internal/clipboard"
	"github.com/vtcore/vt/internal/input"
)

// ptyOutputMsg carries a chunk read from the shell's PTY.
type ptyOutputMsg struct{ data []byte }

// ptyClosedMsg reports the child process exited.
type ptyClosedMsg struct{ exitStatus int }

// model is the bubbletea Model; it also implements vt.UIHost and
// vt.ClipboardSink directly, the way a real embedding editor would
// wire its own window/pane object into both roles (spec §6).
type model struct {
	term *vt.Terminal
	sh   *shell
	buf  *lineBuffer

	program *tea.Program

	rows, cols int
	busy       bool
	mode       vt.ModeInfo
	statusMsg  string

	theme *themeWatcher
}

func newModel(t *vt.Terminal, sh *shell, buf *lineBuffer, rows, cols int, theme *themeWatcher) *model {
	return &model{term: t, sh: sh, buf: buf, rows: rows, cols: cols, theme: theme}
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(m.waitForPTY(), m.waitForTheme())
}

// waitForPTY blocks on the shell's read loop, one chunk at a time, the
// classic bubbletea "drive a blocking source through a channel" shape
// used for PTY output (grounded on the teacher corpus's own PTY reader
// loops, simplified here to a single unbuffered handoff per chunk).
func (m *model) waitForPTY() tea.Cmd {
	return func() tea.Msg {
		buf := make([]byte, 32*1024)
		n, err := m.sh.Read(buf)
		if err != nil {
			return ptyClosedMsg{exitStatus: m.sh.Wait()}
		}
		out := make([]byte, n)
		copy(out, buf[:n])
		return ptyOutputMsg{data: out}
	}
}

func (m *model) waitForTheme() tea.Cmd {
	if m.theme == nil {
		return nil
	}
	return func() tea.Msg {
		lookup, ok := <-m.theme.changed
		if !ok {
			return nil
		}
		return themeReloadedMsg{lookup: lookup}
	}
}

type themeReloadedMsg struct{ lookup func(string) (string, bool) }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.rows, m.cols = msg.Height-1, msg.Width
		m.term.Resize(m.cols, m.rows)
		_ = m.sh.Resize(m.rows, m.cols)
		return m, nil

	case ptyOutputMsg:
		// Write only invalidates the coalescer; the actual flush (and
		// the redrawMsg that follows it) arrives asynchronously off
		// OnTextChanged, exercising the real debounced path instead of
		// flushing synchronously on every chunk (spec §4.6).
		_, _ = m.term.Write(msg.data)
		return m, m.waitForPTY()

	case ptyClosedMsg:
		m.term.NotifyExited(msg.exitStatus)
		m.statusMsg = "shell exited"
		return m, nil

	case themeReloadedMsg:
		m.term.ReloadPalette(msg.lookup)
		return m, m.waitForTheme()

	case redrawMsg:
		return m, nil

	case tea.KeyPressMsg:
		if err := m.term.HandleKey(msg); err != nil {
			m.statusMsg = err.Error()
		}
		return m, nil

	case tea.MouseClickMsg:
		return m, m.forwardMouse(msg.X, msg.Y, mouseButtonOf(msg.Button), true, false)
	case tea.MouseReleaseMsg:
		return m, m.forwardMouse(msg.X, msg.Y, mouseButtonOf(msg.Button), false, false)
	case tea.MouseMotionMsg:
		return m, m.forwardMouse(msg.X, msg.Y, mouseButtonOf(msg.Button), true, true)
	case tea.MouseWheelMsg:
		btn := input.WheelUp
		if msg.Button == tea.MouseWheelDown {
			btn = input.WheelDown
		}
		return m, m.forwardMouse(msg.X, msg.Y, btn, true, false)

	case tea.PasteMsg:
		_ = m.term.SendPaste([]byte(msg.Content))
		return m, nil
	}
	return m, nil
}

func (m *model) forwardMouse(x, y int, btn input.MouseButton, pressed, motion bool) tea.Cmd {
	row, col, ok := m.TranslateMouse(x, y)
	if !ok {
		return nil
	}
	_ = m.term.SendMouse(input.MouseEvent{Row: row, Col: col, Button: btn, Pressed: pressed, Motion: motion})
	return nil
}

func mouseButtonOf(b tea.MouseButton) input.MouseButton {
	switch b {
	case tea.MouseLeft:
		return input.ButtonLeft
	case tea.MouseMiddle:
		return input.ButtonMiddle
	case tea.MouseRight:
		return input.ButtonRight
	default:
		return input.ButtonNone
	}
}

func (m *model) View() tea.View {
	var v tea.View
	v.AltScreen = true
	v.MouseMode = tea.MouseModeCellMotion
	v.KeyboardEnhancements.ReportEventTypes = true

	body := m.buf.render(m.rows, m.cols)
	status := m.renderStatus()
	v.SetContent(body + "\n" + status)
	return v
}

// renderStatus lays out a one-line status bar using go-runewidth for
// layout width -- deliberately distinct from internal/cellwidth's
// uniwidth-backed wire-accurate cell width, since this line never
// round-trips through the VT parser (spec §11).
func (m *model) renderStatus() string {
	row, col := m.term.CursorPosition()
	left := "vtdemo"
	if m.busy {
		left += " [busy]"
	}
	right := statusPos(row, col)
	if m.statusMsg != "" {
		right = m.statusMsg + "  " + right
	}
	pad := m.cols - runewidth.StringWidth(left) - runewidth.StringWidth(right)
	if pad < 1 {
		pad = 1
	}
	return lipgloss.NewStyle().Reverse(true).Render(left + strings.Repeat(" ", pad) + right)
}

func statusPos(row, col int) string {
	return "(" + itoa(row+1) + "," + itoa(col+1) + ")"
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [12]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// --- vt.UIHost ---

func (m *model) PushModeInfo(info vt.ModeInfo) { m.mode = info }

func (m *model) SetBusy(busy bool) { m.busy = busy }

func (m *model) DecodeKey(raw any) input.Key {
	msg, ok := raw.(tea.KeyPressMsg)
	if !ok {
		return input.Key{}
	}
	key := msg.Key()
	k := input.Key{
		Shift: key.Mod&tea.ModShift != 0,
		Ctrl:  key.Mod&tea.ModCtrl != 0,
		Alt:   key.Mod&tea.ModAlt != 0,
	}
	if named, ok := namedKeyOf(key.Code); ok {
		k.Named = named
		return k
	}
	if key.Text != "" {
		k.Rune = []rune(key.Text)[0]
		return k
	}
	k.Rune = rune(key.Code)
	return k
}

func namedKeyOf(code tea.KeyCode) (input.NamedKey, bool) {
	switch code {
	case tea.KeyUp:
		return input.KeyUp, true
	case tea.KeyDown:
		return input.KeyDown, true
	case tea.KeyLeft:
		return input.KeyLeft, true
	case tea.KeyRight:
		return input.KeyRight, true
	case tea.KeyHome:
		return input.KeyHome, true
	case tea.KeyEnd:
		return input.KeyEnd, true
	case tea.KeyPgUp:
		return input.KeyPageUp, true
	case tea.KeyPgDown:
		return input.KeyPageDown, true
	case tea.KeyDelete:
		return input.KeyDelete, true
	case tea.KeyInsert:
		return input.KeyInsert, true
	case tea.KeyF1:
		return input.KeyF1, true
	}
	return input.KeyNone, false
}

// TranslateMouse maps a host pixel/cell coordinate to a terminal
// row/col. The demo runs the terminal full-screen under AltScreen, so
// host coordinates already are cell coordinates.
func (m *model) TranslateMouse(x, y int) (row, col int, ok bool) {
	if x < 0 || y < 0 || x >= m.cols || y >= m.rows {
		return 0, 0, false
	}
	return y, x, true
}

// --- vt.ClipboardSink ---

func (m *model) SetClipboard(mask clipboard.Mask, data []byte) {
	if mask&clipboard.Clipboard == 0 && mask&clipboard.Primary == 0 {
		return
	}
	if runtime.GOOS == "darwin" {
		cmd := exec.Command("pbcopy")
		cmd.Stdin = strings.NewReader(string(data))
		if err := cmd.Run(); err == nil {
			return
		}
	}
	_ = sysclip.WriteAll(string(data))
}

// --- vt.EventSink ---

// redrawMsg asks bubbletea to re-render; sent from OnTextChanged,
// which the coalescer's background timer goroutine fires, decoupling
// the PTY read loop from the paint schedule (spec §4.6).
type redrawMsg struct{}

func (m *model) requestRedraw() {
	if m.program != nil {
		m.program.Send(redrawMsg{})
	}
}

func (m *model) OnTermOpen(vt.TermOpenEvent)       {}
func (m *model) OnTermClose(vt.TermCloseEvent)     {}
func (m *model) OnTermEnter(vt.TermEnterEvent)     {}
func (m *model) OnTermLeave(vt.TermLeaveEvent)     {}
func (m *model) OnTermRequest(vt.TermRequestEvent) {}
func (m *model) OnTextChanged(vt.TextChangedEvent) { m.requestRedraw() }
