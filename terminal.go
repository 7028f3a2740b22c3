package term

import (
	"errors"

	"github.com/danielgatis/go-ansicode"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vtcore/vt/internal/clipboard"
	"github.com/vtcore/vt/internal/coalescer"
	"github.com/vtcore/vt/internal/input"
	"github.com/vtcore/vt/internal/palette"
	"github.com/vtcore/vt/internal/parser"
	"github.com/vtcore/vt/internal/projection"
	"github.com/vtcore/vt/internal/registry"
	"github.com/vtcore/vt/internal/request"
	"github.com/vtcore/vt/internal/screen"
	"github.com/vtcore/vt/internal/scrollback"
)

const (
	defaultRows       = 24
	defaultCols       = 80
	defaultScrollback = 10000
)

// Handle is an opaque terminal identifier a host can hold without
// pinning the Terminal itself (spec §9).
type Handle = registry.Handle

// Terminal is the composition root: it owns one screen, scrollback
// ring, projection, and input dispatcher, and implements
// ansicode.Handler indirectly through internal/parser.Handler. A host
// builds one with [New] and drives it with [Terminal.Write],
// [Terminal.SendKey], and [Terminal.Resize].
type Terminal struct {
	rows, cols int

	screen     *screen.Screen
	scrollback *scrollback.Ring
	palette    *palette.Palette
	clipQueue  *clipboard.Queue
	req        *request.Channel
	hyperlinks *parser.Hyperlinks
	decoder    *ansicode.Decoder
	proj       *projection.Projection
	flusher    termFlusher
	coalesce      *coalescer.Coalescer
	ownsCoalescer bool
	dispatcher    *input.Dispatcher
	refcount      *registry.Refcount

	pty        PtyChannel
	uiHost     UIHost
	events     EventSink
	handle     Handle
	filterMask input.FilterMask
	forceCRLF  bool

	log zerolog.Logger
}

// cursorKeyMode/mouseMode/useSGRMouse/bracketed all mirror live DEC
// mode bits on the screen rather than caching separate state, so a
// DECSET/DECRST the application sends is reflected on the very next
// key or mouse event (spec §4.7: these modes belong to ScreenState,
// not the input layer).
func (t *Terminal) cursorKeyMode() input.CursorKeyMode {
	if t.screen.HasMode(screen.ModeCursorKeys) {
		return input.CursorKeysApplication
	}
	return input.CursorKeysNormal
}

func (t *Terminal) mouseMode() input.MouseMode {
	switch {
	case t.screen.HasMode(screen.ModeMouseMotion):
		return input.MouseMotion
	case t.screen.HasMode(screen.ModeMouseDrag):
		return input.MouseDrag
	case t.screen.HasMode(screen.ModeMouseClick):
		return input.MouseClick
	default:
		return input.MouseOff
	}
}

// prefix key convention: Ctrl-\ enters TerminalPrefix; 'n'/'o' resume
// or one-shot-forward, matching the worked example in spec §4.7.
func isPrefixKey(k input.Key) bool  { return k.Ctrl && k.Rune == '\\' }
func isResumeKey(k input.Key) bool  { return k.Rune == 'n' || k.Rune == 'N' }
func isOneShotKey(k input.Key) bool { return k.Rune == 'o' || k.Rune == 'O' }

// ptySender adapts PtyChannel (possibly nil) to internal/request.Sender.
type ptySender struct{ t *Terminal }

func (p ptySender) Send(data []byte) error {
	if p.t.pty == nil {
		return errors.New("term: no PtyChannel configured")
	}
	if p.t.forceCRLF {
		data = crlfify(data)
	}
	return p.t.pty.Send(data)
}

// crlfify rewrites bare '\n' bytes to "\r\n", matching hosts whose PTY
// layer doesn't itself run in cooked/raw mode consistently (spec §10,
// force_crlf).
func crlfify(data []byte) []byte {
	out := make([]byte, 0, len(data))
	for i, b := range data {
		if b == '\n' && (i == 0 || data[i-1] != '\r') {
			out = append(out, '\r')
		}
		out = append(out, b)
	}
	return out
}

// titleSink adapts EventSink's title-free surface; title text itself
// is reflected into BufferSink as a variable (spec §4.4 SetTitle), not
// as a typed event, so this only needs to satisfy parser.TitleSink.
type titleSink struct{ t *Terminal }

func (s titleSink) SetTitle(title string) {
	if s.t.proj != nil {
		s.t.proj.SetTitle(title)
	}
}

func (s titleSink) SetWorkingDirectory(uri string) {
	// No dedicated BufferSink slot for cwd: the URI is discarded and no
	// BufferSink variable is set for it.
}

// sinkAdapter bridges the public BufferSink/AttrResolver surface
// (term.AttrLine, term.Cell) onto internal/projection's own narrower
// Sink/AttrResolver interfaces (projection.AttrLine, cellmodel.Cell),
// since Cell and AttrLine are type aliases of the cellmodel types this
// is a zero-cost adaptation, not a translation.
type sinkAdapter struct {
	sink  BufferSink
	attrs AttrResolver
}

func (a sinkAdapter) AppendLines(text []string, attrs []projection.AttrLine) {
	a.sink.AppendLines(text, castAttrLines(attrs))
}

func (a sinkAdapter) ReplaceLine(line int, text string, attrs projection.AttrLine) {
	a.sink.ReplaceLine(line, text, AttrLine(attrs))
}

func (a sinkAdapter) DeleteLines(start, count int) { a.sink.DeleteLines(start, count) }
func (a sinkAdapter) MarkDirty(start, end int)     { a.sink.MarkDirty(start, end) }
func (a sinkAdapter) LineCount() int               { return a.sink.LineCount() }
func (a sinkAdapter) SetVariable(name, value string) { a.sink.SetVariable(name, value) }

func (a sinkAdapter) Resolve(cell Cell, fgIndexed, bgIndexed bool) int {
	if a.attrs == nil {
		return 0
	}
	return a.attrs.Resolve(cell, fgIndexed, bgIndexed)
}

func castAttrLines(attrs []projection.AttrLine) []AttrLine {
	out := make([]AttrLine, len(attrs))
	for i, a := range attrs {
		out[i] = AttrLine(a)
	}
	return out
}

// paletteQuery adapts *palette.Palette to projection.PaletteQuery (the
// single-method subset the projection needs).
type paletteQuery struct{ p *palette.Palette }

func (q paletteQuery) Overridden(i uint8) bool { return q.p.Overridden(i) }

// Options configures a Terminal at construction, grounded on the
// teacher's functional-options constructor generalized to this
// domain's collaborators (see terminal.go doc comment and DESIGN.md).
type Options struct {
	Rows, Cols      int
	ScrollbackLines int
	ForceCRLF       bool
	FilterMask      input.FilterMask

	BufferSink   BufferSink
	AttrResolver AttrResolver
	UIHost       UIHost
	Pty          PtyChannel
	EventSink    EventSink
	Clipboard    ClipboardSink
	PaletteSeed  palette.VariableLookup

	// Coalesce, when non-nil, shares one RefreshCoalescer's debounce
	// timer across every Terminal built against it (spec §4.6). A nil
	// value gives this Terminal its own.
	Coalesce *coalescer.Coalescer

	// Logger, when nil, falls back to zerolog's global log.Logger.
	Logger *zerolog.Logger
}

// New builds a Terminal from opts, applying the same kind of defaults
// (size, no-op collaborators) the teacher's New applies from its own
// Option list.
func New(opts Options) *Terminal {
	rows, cols := opts.Rows, opts.Cols
	if rows <= 0 {
		rows = defaultRows
	}
	if cols <= 0 {
		cols = defaultCols
	}

	sbLines := opts.ScrollbackLines
	if sbLines <= 0 {
		sbLines = defaultScrollback
	}

	t := &Terminal{
		rows: rows, cols: cols,
		pty:         opts.Pty,
		uiHost:      opts.UIHost,
		events:      opts.EventSink,
		filterMask:  opts.FilterMask,
		forceCRLF:   opts.ForceCRLF,
		dispatcher:  input.NewDispatcher(),
	}
	if t.events == nil {
		t.events = NopEventSink{}
	}
	if opts.Logger != nil {
		t.log = *opts.Logger
	} else {
		t.log = log.Logger
	}
	t.log = t.log.With().Str("component", "term.Terminal").Logger()

	t.scrollback = scrollback.New(sbLines)
	t.screen = screen.New(cols, rows, t.scrollback)
	t.palette = palette.New(opts.PaletteSeed)
	t.req = request.NewChannel(ptySender{t})

	var clipSink clipboard.Sink
	if opts.Clipboard != nil {
		clipSink = clipboardSinkAdapter{opts.Clipboard}
	}
	t.clipQueue = clipboard.NewQueue(clipSink)

	bufSink := opts.BufferSink
	if bufSink == nil {
		bufSink = nopBufferSink{}
	}
	t.proj = projection.New(t.screen, t.scrollback, sinkAdapter{bufSink, opts.AttrResolver}, sinkAdapter{bufSink, opts.AttrResolver}, paletteQuery{t.palette})
	t.flusher = termFlusher{proj: t.proj, events: t.events, handle: &t.handle}

	// BufferSink starts empty; damage every row so the first Flush
	// populates it with the live grid's blank lines (spec §4.4's
	// scrollback_count+height invariant must hold from the start).
	t.screen.MarkAllDirty()

	if opts.Coalesce != nil {
		t.coalesce = opts.Coalesce
	} else {
		t.coalesce = coalescer.New()
		t.ownsCoalescer = true
	}

	t.hyperlinks = parser.NewHyperlinks()
	handler := parser.NewHandler(t.screen, t.palette, t.clipQueue, t.req, titleSink{t}, runeWidth, t.onRequest, t.hyperlinks)
	t.decoder = ansicode.NewDecoder(handler)

	t.refcount = registry.NewRefcount(t.teardown)
	t.refcount.Retain()

	t.log.Debug().Int("rows", rows).Int("cols", cols).Msg("terminal opened")
	t.events.OnTermOpen(TermOpenEvent{Handle: t.handle, Width: cols, Height: rows})
	return t
}

// onRequest is the parser's callback for an assembled APC/PM/SOS
// payload; it's invoked from inside internal/request's pending-queue
// window (spec §4.7), so EventSink.OnTermRequest may itself call
// Terminal.Send before returning.
func (t *Terminal) onRequest(p request.Payload) {
	t.events.OnTermRequest(TermRequestEvent{Handle: t.handle, Kind: p.Kind, Data: p.Data})
}

// SetHandle assigns the handle a registry.Registry gave this terminal
// on registration; the zero value is used for a host that doesn't
// register terminals in a shared table.
func (t *Terminal) SetHandle(h Handle) { t.handle = h }

// Write feeds PTY output bytes through the VT parser. Every call may
// mutate the screen and mark the shared coalescer dirty; the actual
// BufferSink reflection happens on the next [Terminal.Flush] (normally
// driven by the coalescer's 10ms timer, spec §4.6).
func (t *Terminal) Write(p []byte) (int, error) {
	n, err := t.decoder.Write(p)
	t.coalesce.Invalidate(t.flusher)
	return n, err
}

// Flush forces an immediate BufferSink synchronization, bypassing the
// coalescer's debounce (e.g. for a host that wants to paint
// synchronously after a batch of Write calls).
func (t *Terminal) Flush() { t.flusher.Flush() }

// Resize changes the live grid's dimensions (spec §4.3 Resize).
func (t *Terminal) Resize(cols, rows int) {
	if rows <= 0 || cols <= 0 {
		return
	}
	t.rows, t.cols = rows, cols
	t.screen.Resize(cols, rows, true)
	t.coalesce.Invalidate(t.flusher)
}

// SetScrollbackLimit changes the scrollback bound at runtime (spec
// §4.3: "capacity is mutable at runtime"), trimming already-stored
// rows and reflecting any eviction as an immediate top-of-buffer
// deletion in the BufferSink.
func (t *Terminal) SetScrollbackLimit(capacity int) {
	if deleted := t.proj.TrimScrollback(capacity); deleted > 0 {
		t.events.OnTextChanged(TextChangedEvent{Handle: t.handle, FirstLine: 0, LastLine: deleted})
	}
}

// ReloadPalette re-seeds the 16-slot palette from lookup (spec §4.10)
// and damages the whole screen so the next flush re-resolves every
// cell's indexed colors against the new values.
func (t *Terminal) ReloadPalette(lookup palette.VariableLookup) {
	t.palette.Reseed(lookup)
	t.screen.MarkAllDirty()
	t.coalesce.Invalidate(t.flusher)
}

// termFlusher adapts Projection.Flush's (firstLine, lastLine, changed)
// result onto the coalescer's plain Flusher interface, firing
// OnTextChanged exactly when a flush actually touched the sink (spec
// §6: "TextChangedEvent fires after a flush that mutated BufferSink
// lines").
type termFlusher struct {
	proj   *projection.Projection
	events EventSink
	handle *Handle
}

func (f termFlusher) Flush() {
	first, last, changed := f.proj.Flush()
	if !changed {
		return
	}
	f.events.OnTextChanged(TextChangedEvent{Handle: *f.handle, FirstLine: first, LastLine: last})
}

// SendKey encodes k per the current DECCKM (cursor-key mode) state and
// forwards it to the PTY (spec §4.7).
func (t *Terminal) SendKey(k input.Key) error {
	bytes := input.Encode(k, t.cursorKeyMode())
	if bytes == nil {
		return nil
	}
	return t.req.Send(bytes)
}

// HandleKey decodes a raw host key event through UIHost and runs it
// through the FocusState machine before encoding and forwarding
// (spec §4.7): a prefix-key sequence (Ctrl-\) is swallowed, a resume
// or one-shot key returns focus to the host, and TerminalExited state
// is acknowledged rather than forwarded to a dead PTY.
func (t *Terminal) HandleKey(raw any) error {
	// Retain/Release bracket the whole dispatch so a host-triggered
	// Release made during it (e.g. from inside a UIHost callback) can't
	// drop the refcount to zero and run teardown underneath us (spec
	// §3). The refcount is not atomic, and Close bypasses it.
	t.Retain()
	defer t.Release()

	if t.uiHost == nil {
		return nil
	}
	k := t.uiHost.DecodeKey(raw)
	switch t.dispatcher.Dispatch(k, isPrefixKey, isResumeKey, isOneShotKey) {
	case input.ActionForward:
		return t.SendKey(k)
	case input.ActionEmitPrefixAndKey:
		if err := t.SendKey(input.Key{Rune: '\\', Ctrl: true}); err != nil {
			return err
		}
		return t.SendKey(k)
	case input.ActionAckExit:
		t.dispatcher.Leave()
		return nil
	default: // ActionSwallow
		return nil
	}
}

// SendMouse translates ev per the application's requested mouse
// protocol and forwards the report, or does nothing if the event isn't
// actionable in the current mode (spec §4.7).
func (t *Terminal) SendMouse(ev input.MouseEvent) error {
	useSGR := t.screen.HasMode(screen.ModeSGRMouse)
	report := input.TranslateMouse(ev, t.mouseMode(), useSGR)
	if report == nil {
		return nil
	}
	return t.req.Send(report)
}

// SendPaste wraps data per bracketed-paste mode (or filters it per the
// configured FilterMask) and forwards it (spec §4.7).
func (t *Terminal) SendPaste(data []byte) error {
	bracketed := t.screen.HasMode(screen.ModeBracketedPaste)
	return t.req.Send(input.WrapPaste(data, bracketed, t.filterMask))
}

// Send writes raw bytes to the PTY, honoring the pending-queue
// ordering guarantee if called from inside an EventSink callback
// (spec §4.7).
func (t *Terminal) Send(data []byte) error {
	return t.req.Send(data)
}

// EnterFocus transitions the host's FocusState machine into Terminal
// focus (spec §4.7) and notifies EventSink.
func (t *Terminal) EnterFocus() {
	t.dispatcher.EnterTerminal()
	t.events.OnTermEnter(TermEnterEvent{Handle: t.handle})
}

// LeaveFocus transitions back to Normal focus.
func (t *Terminal) LeaveFocus() {
	t.dispatcher.Leave()
	t.events.OnTermLeave(TermLeaveEvent{Handle: t.handle})
}

// FocusState reports the current input focus state.
func (t *Terminal) FocusState() input.FocusState { return t.dispatcher.State() }

// NotifyExited tells the focus dispatcher the PTY process exited.
func (t *Terminal) NotifyExited(exitStatus int) {
	t.dispatcher.NotifyExited()
	t.events.OnTermClose(TermCloseEvent{Handle: t.handle, ExitStatus: exitStatus})
}

// Retain/Release implement registry.Holder so a Registry can track
// this Terminal's lifetime by Handle (spec §9).
func (t *Terminal) Retain()  { t.refcount.Retain() }
func (t *Terminal) Release() { t.refcount.Release() }

func (t *Terminal) teardown() {
	t.clipQueue.Close()
	if t.ownsCoalescer {
		t.coalesce.Stop()
	}
}

// Close tears the terminal down immediately, bypassing the refcount
// gate; a host sharing a Terminal across multiple registry references
// should call Release instead.
func (t *Terminal) Close() { t.teardown() }

// Rows/Cols report the live grid dimensions.
func (t *Terminal) Rows() int { return t.rows }
func (t *Terminal) Cols() int { return t.cols }

// ResolveHyperlink resolves a cellmodel.Cell's URIAttr id back to the
// OSC 8 target URI a host clicked through (spec §3). ok is false for
// id 0 (no hyperlink) or an id this terminal never minted.
func (t *Terminal) ResolveHyperlink(id uint32) (uri string, ok bool) {
	return t.hyperlinks.Resolve(id)
}

// CursorPosition reports the 0-based cursor row/column in the active
// grid.
func (t *Terminal) CursorPosition() (row, col int) {
	return t.screen.CursorRow(), t.screen.CursorCol()
}

// ModeInfo reports the host-facing cursor presentation (spec §4.5).
func (t *Terminal) ModeInfo() ModeInfo {
	return ModeInfo{
		Shape:   CursorBlock,
		Visible: t.screen.CursorVisible(),
		Blink:   t.screen.HasMode(screen.ModeCursorBlink),
	}
}

type nopBufferSink struct{}

func (nopBufferSink) AppendLines(text []string, attrs []AttrLine)        {}
func (nopBufferSink) ReplaceLine(line int, text string, attrs AttrLine) {}
func (nopBufferSink) DeleteLines(start, count int)                     {}
func (nopBufferSink) MarkDirty(startLine, endLine int)                 {}
func (nopBufferSink) LineCount() int                                   { return 0 }
func (nopBufferSink) SetVariable(name, value string)                   {}

type clipboardSinkAdapter struct{ sink ClipboardSink }

func (a clipboardSinkAdapter) SetClipboard(mask clipboard.Mask, data []byte) {
	a.sink.SetClipboard(mask, data)
}
