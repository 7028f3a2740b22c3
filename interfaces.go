package term

import (
	"github.com/vtcore/vt/internal/clipboard"
	"github.com/vtcore/vt/internal/input"
)

// PtyChannel is the host's write path to the child process (spec §6).
// The core never implements it — only ever calls it.
type PtyChannel interface {
	Send(data []byte) error
}

// AttrLine is the parallel sparse (col -> attr id) map for a rendered
// line (spec §4.4).
type AttrLine map[int]int

// BufferSink is the host-owned text buffer the projection mirrors
// into (spec §6).
type BufferSink interface {
	AppendLines(text []string, attrs []AttrLine)
	ReplaceLine(line int, text string, attrs AttrLine)
	DeleteLines(start, count int)
	MarkDirty(startLine, endLine int)
	LineCount() int
	SetVariable(name, value string)
}

// AttrResolver turns a cell's visual attributes into a single host
// attribute id (spec §4.4).
type AttrResolver interface {
	Resolve(cell Cell, fgIndexed, bgIndexed bool) int
}

// CursorShape is the host-facing cursor presentation shape (spec §4.5),
// independent of the VT pending-wrap bit.
type CursorShape uint8

const (
	CursorBlock CursorShape = iota
	CursorUnderline
	CursorBar
)

// ModeInfo is the host-facing cursor presentation (spec §4.5), as
// reported by Terminal.ModeInfo on request. The core does not call
// UIHost.PushModeInfo or UIHost.SetBusy itself: flushes do not push
// cursor changes to the host.
type ModeInfo struct {
	Shape      CursorShape
	Visible    bool
	Blink      bool
	BlinkDelay int // ms; 0 means no blink
}

// UIHost is the host's cursor/input/mouse collaborator (spec §6).
type UIHost interface {
	PushModeInfo(info ModeInfo)
	SetBusy(busy bool)
	DecodeKey(raw any) input.Key
	TranslateMouse(x, y int) (row, col int, ok bool)
}

// ClipboardSink stores clipboard data set via OSC 52 (spec §6/§4.8).
type ClipboardSink interface {
	SetClipboard(mask clipboard.Mask, data []byte)
}
