package parser

import (
	"image/color"
	"testing"
	"time"

	"github.com/danielgatis/go-ansicode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vtcore/vt/internal/clipboard"
	"github.com/vtcore/vt/internal/palette"
	"github.com/vtcore/vt/internal/request"
	"github.com/vtcore/vt/internal/screen"
)

type recordingSender struct{ sent [][]byte }

func (r *recordingSender) Send(data []byte) error {
	r.sent = append(r.sent, append([]byte(nil), data...))
	return nil
}

type recordingTitleSink struct {
	title string
	cwd   string
}

func (r *recordingTitleSink) SetTitle(title string)           { r.title = title }
func (r *recordingTitleSink) SetWorkingDirectory(uri string) { r.cwd = uri }

type recordingClipSink struct {
	mask clipboard.Mask
	data []byte
}

func (r *recordingClipSink) SetClipboard(mask clipboard.Mask, data []byte) {
	r.mask, r.data = mask, data
}

func newTestHandler(t *testing.T) (*Handler, *screen.Screen, *recordingSender) {
	t.Helper()
	scr := screen.New(10, 5, nil)
	pal := palette.New(nil)
	clipQueue := clipboard.NewQueue(&recordingClipSink{})
	sender := &recordingSender{}
	req := request.NewChannel(sender)
	h := NewHandler(scr, pal, clipQueue, req, &recordingTitleSink{}, func(r rune) int { return 1 }, nil, NewHyperlinks())
	return h, scr, sender
}

func TestInputWritesGlyph(t *testing.T) {
	h, scr, _ := newTestHandler(t)
	h.Input('x')
	assert.Equal(t, "x", scr.Line(0, 10).Text())
}

func TestGotoMovesCursor(t *testing.T) {
	h, scr, _ := newTestHandler(t)
	h.Goto(2, 3)
	assert.Equal(t, 2, scr.CursorRow())
	assert.Equal(t, 3, scr.CursorCol())
}

func TestMoveDownCrMovesAndResetsColumn(t *testing.T) {
	h, scr, _ := newTestHandler(t)
	h.Goto(0, 4)
	h.MoveDownCr(1)
	assert.Equal(t, 1, scr.CursorRow())
	assert.Equal(t, 0, scr.CursorCol())
}

func TestClearLineTranslatesModes(t *testing.T) {
	h, scr, _ := newTestHandler(t)
	h.Input('a')
	h.Input('b')
	h.Input('c')
	h.Goto(0, 1)
	h.ClearLine(ansicode.LineClearModeLeft)
	assert.Equal(t, "  c", scr.Line(0, 10).Text(), "LineClearModeLeft erases columns up to and including the cursor")
}

func TestClearScreenSavedModeIsNoop(t *testing.T) {
	h, scr, _ := newTestHandler(t)
	h.Input('a')
	h.ClearScreen(ansicode.ClearModeSaved)
	assert.Equal(t, "a", scr.Line(0, 10).Text())
}

func TestSetScrollingRegionConvertsToZeroBased(t *testing.T) {
	h, scr, _ := newTestHandler(t)
	h.SetScrollingRegion(2, 4) // wire 1-based [2,4] becomes 0-based [1,4)
	h.Goto(1, 0)
	h.Input('y')
	h.InsertBlankLines(1)

	assert.Equal(t, "", scr.Line(1, 10).Text())
	assert.Equal(t, "y", scr.Line(2, 10).Text(), "insert within the converted region pushes row 1's content down to row 2")
}

func TestSetModeAndUnsetModeRoundTrip(t *testing.T) {
	h, scr, _ := newTestHandler(t)
	h.SetMode(ansicode.TerminalModeCursorKeys)
	assert.True(t, scr.HasMode(screen.ModeCursorKeys))
	h.UnsetMode(ansicode.TerminalModeCursorKeys)
	assert.False(t, scr.HasMode(screen.ModeCursorKeys))
}

func TestSetTerminalCharAttributeBoldSetsPenFlagOnNextWrite(t *testing.T) {
	h, scr, _ := newTestHandler(t)
	h.SetTerminalCharAttribute(ansicode.TerminalCharAttribute{Attr: ansicode.CharAttributeBold})
	h.Input('b')
	line := scr.Line(0, 10)
	assert.True(t, line[0].HasPen(1)) // PenBold == 1<<0
}

func TestSetTerminalCharAttributeForegroundRGB(t *testing.T) {
	h, scr, _ := newTestHandler(t)
	h.SetTerminalCharAttribute(ansicode.TerminalCharAttribute{
		Attr:     ansicode.CharAttributeForeground,
		RGBColor: &ansicode.RGBColor{R: 10, G: 20, B: 30},
	})
	h.Input('f')
	r, g, b, ok := scr.Line(0, 10)[0].Fg.AsRGB()
	require.True(t, ok)
	assert.Equal(t, uint8(10), r)
	assert.Equal(t, uint8(20), g)
	assert.Equal(t, uint8(30), b)
}

func TestDeviceStatusCursorPositionReport(t *testing.T) {
	h, _, sender := newTestHandler(t)
	h.Goto(1, 2)
	h.DeviceStatus(6)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "\x1b[2;3R", string(sender.sent[0]))
}

func TestDeviceStatusOK(t *testing.T) {
	h, _, sender := newTestHandler(t)
	h.DeviceStatus(5)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "\x1b[0n", string(sender.sent[0]))
}

func TestIdentifyTerminalReplies(t *testing.T) {
	h, _, sender := newTestHandler(t)
	h.IdentifyTerminal(0)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "\x1b[?62;c", string(sender.sent[0]))
}

func TestSetColorOverridesPaletteSlot(t *testing.T) {
	scr := screen.New(10, 5, nil)
	pal := palette.New(nil)
	clipQueue := clipboard.NewQueue(&recordingClipSink{})
	req := request.NewChannel(&recordingSender{})
	h := NewHandler(scr, pal, clipQueue, req, &recordingTitleSink{}, nil, nil, NewHyperlinks())

	h.SetColor(1, color.RGBA{R: 0x11, G: 0x22, B: 0x33, A: 0xff})

	assert.True(t, pal.Overridden(1))
	r, g, b, ok := pal.Color(1).AsRGB()
	require.True(t, ok)
	assert.Equal(t, uint8(0x11), r)
	assert.Equal(t, uint8(0x22), g)
	assert.Equal(t, uint8(0x33), b)
}

func TestSetDynamicColorRepliesWithRGBSpec(t *testing.T) {
	h, _, sender := newTestHandler(t)
	h.SetDynamicColor("10", 0, "\x07")
	require.Len(t, sender.sent, 1)
	assert.Contains(t, string(sender.sent[0]), "rgb:")
}

func TestClipboardStoreMapsRegisterToMask(t *testing.T) {
	scr := screen.New(10, 5, nil)
	pal := palette.New(nil)
	sink := &recordingClipSink{}
	clipQueue := clipboard.NewQueue(sink)
	req := request.NewChannel(&recordingSender{})
	h := NewHandler(scr, pal, clipQueue, req, &recordingTitleSink{}, nil, nil, NewHyperlinks())

	h.ClipboardStore('*', []byte("hi"))

	deadline := time.Now().Add(500 * time.Millisecond)
	for sink.data == nil && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	require.Equal(t, clipboard.Primary, sink.mask)
	assert.Equal(t, "hi", string(sink.data))
}

func TestApplicationCommandReceivedDispatchesThroughRequestChannel(t *testing.T) {
	scr := screen.New(10, 5, nil)
	pal := palette.New(nil)
	clipQueue := clipboard.NewQueue(&recordingClipSink{})
	sender := &recordingSender{}
	req := request.NewChannel(sender)

	var received request.Payload
	h := NewHandler(scr, pal, clipQueue, req, &recordingTitleSink{}, nil, func(p request.Payload) {
		received = p
	}, NewHyperlinks())

	h.ApplicationCommandReceived([]byte("hello"))
	assert.Equal(t, "APC", received.Kind)
	assert.Equal(t, "hello", string(received.Data))
}

func TestSetTitleForwardsToTitleSink(t *testing.T) {
	scr := screen.New(10, 5, nil)
	pal := palette.New(nil)
	clipQueue := clipboard.NewQueue(&recordingClipSink{})
	sender := &recordingSender{}
	req := request.NewChannel(sender)
	title := &recordingTitleSink{}
	h := NewHandler(scr, pal, clipQueue, req, title, nil, nil, NewHyperlinks())

	h.SetTitle("my title")
	assert.Equal(t, "my title", title.title)
}

func TestSetHyperlinkInternsURIAndClearingResetsURIAttrToZero(t *testing.T) {
	h, scr, _ := newTestHandler(t)

	h.SetHyperlink(&ansicode.Hyperlink{ID: "1", URI: "https://example.com"})
	h.Input('x')
	id := scr.Line(0, 10)[0].URIAttr
	require.NotZero(t, id)
	uri, ok := h.hyperlinks.Resolve(id)
	require.True(t, ok)
	assert.Equal(t, "https://example.com", uri)

	h.SetHyperlink(nil)
	h.Input('y')
	assert.Zero(t, scr.Line(0, 10)[1].URIAttr, "clearing the hyperlink resets the pen's URIAttr to 0")
}

func TestSetHyperlinkRepeatedURIReusesSameID(t *testing.T) {
	h, scr, _ := newTestHandler(t)

	h.SetHyperlink(&ansicode.Hyperlink{ID: "1", URI: "https://example.com"})
	h.Input('a')
	h.SetHyperlink(&ansicode.Hyperlink{ID: "2", URI: "https://example.com"})
	h.Input('b')

	line := scr.Line(0, 10)
	assert.Equal(t, line[0].URIAttr, line[1].URIAttr, "the same URI interns to the same id regardless of OSC 8's own id param")
}
