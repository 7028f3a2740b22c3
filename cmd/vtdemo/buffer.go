package main

import (
	"strconv"
	"strings"
	"sync"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	vt "github.com/vtcore/vt"
)

// styleKey is the comparable projection of a cell's visual attributes,
// used to intern repeated attribute combinations into a single
// lipgloss.Style rather than building one per cell (spec §4.4: "a
// single host attribute id" per distinct combination).
type styleKey struct {
	fgKind, bgKind     uint8
	fgIdx, bgIdx       uint8
	fgR, fgG, fgB      uint8
	bgR, bgG, bgB      uint8
	pen                vt.Pen
	underline          vt.UnderlineStyle
}

// lineBuffer implements vt.BufferSink and vt.AttrResolver: the host's
// text buffer that the projection mirrors into, and the attribute
// table it resolves against (spec §6). A real editor would keep this
// as its native rope/piece-table buffer; the demo keeps a plain slice
// since it only ever needs to render the tail of it.
type lineBuffer struct {
	mu sync.Mutex

	lines []string
	attrs []vt.AttrLine
	vars  map[string]string

	keyToID map[styleKey]int
	idToKey []styleKey
}

func newLineBuffer() *lineBuffer {
	return &lineBuffer{
		vars:    make(map[string]string),
		keyToID: make(map[styleKey]int),
	}
}

func (b *lineBuffer) AppendLines(text []string, attrs []vt.AttrLine) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = append(b.lines, text...)
	b.attrs = append(b.attrs, attrs...)
}

func (b *lineBuffer) ReplaceLine(line int, text string, attrs vt.AttrLine) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for line >= len(b.lines) {
		b.lines = append(b.lines, "")
		b.attrs = append(b.attrs, nil)
	}
	b.lines[line] = text
	b.attrs[line] = attrs
}

func (b *lineBuffer) DeleteLines(start, count int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if start < 0 || start >= len(b.lines) || count <= 0 {
		return
	}
	end := start + count
	if end > len(b.lines) {
		end = len(b.lines)
	}
	b.lines = append(b.lines[:start], b.lines[end:]...)
	b.attrs = append(b.attrs[:start], b.attrs[end:]...)
}

// MarkDirty is a no-op here: the demo re-renders the visible tail from
// scratch on every flush rather than tracking incremental paint damage.
func (b *lineBuffer) MarkDirty(startLine, endLine int) {}

func (b *lineBuffer) LineCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.lines)
}

func (b *lineBuffer) SetVariable(name, value string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.vars[name] = value
}

func (b *lineBuffer) variable(name string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.vars[name]
	return v, ok
}

// Resolve interns a cell's visual attributes into a style id. It
// renders cell.Fg/cell.Bg through lipgloss's own ANSI/256-color table
// rather than mirroring the core's low-16 override slots, since the
// host side of BufferSink never sees the live Palette — only whether a
// color happens to be indexed (spec §4.4's fgIndexed/bgIndexed are
// advisory, not required reading for a host that is content to let its
// terminal emulator's own color profile own the ANSI 16).
func (b *lineBuffer) Resolve(cell vt.Cell, fgIndexed, bgIndexed bool) int {
	key := styleKeyOf(cell)

	b.mu.Lock()
	defer b.mu.Unlock()
	if id, ok := b.keyToID[key]; ok {
		return id
	}
	id := len(b.idToKey)
	b.idToKey = append(b.idToKey, key)
	b.keyToID[key] = id
	return id
}

func styleKeyOf(cell vt.Cell) styleKey {
	k := styleKey{pen: cell.Pen, underline: cell.Underline}
	k.fgKind = uint8(cell.Fg.Kind)
	if idx, ok := cell.Fg.AsIndexed(); ok {
		k.fgIdx = idx
	} else if r, g, bch, ok := cell.Fg.AsRGB(); ok {
		k.fgR, k.fgG, k.fgB = r, g, bch
	}
	k.bgKind = uint8(cell.Bg.Kind)
	if idx, ok := cell.Bg.AsIndexed(); ok {
		k.bgIdx = idx
	} else if r, g, bch, ok := cell.Bg.AsRGB(); ok {
		k.bgR, k.bgG, k.bgB = r, g, bch
	}
	return k
}

// noAttrID marks a column absent from the sparse AttrLine map (default
// colors, no pen flags) -- distinct from a real interned style id,
// which can legitimately be 0.
const noAttrID = -1

func (b *lineBuffer) styleFor(id int) lipgloss.Style {
	if id == noAttrID {
		return lipgloss.NewStyle()
	}
	b.mu.Lock()
	if id < 0 || id >= len(b.idToKey) {
		b.mu.Unlock()
		return lipgloss.NewStyle()
	}
	key := b.idToKey[id]
	b.mu.Unlock()

	st := lipgloss.NewStyle()
	switch key.fgKind {
	case uint8(vtColorIndexed):
		st = st.Foreground(lipgloss.Color(strconv.Itoa(int(key.fgIdx))))
	case uint8(vtColorRGB):
		st = st.Foreground(lipgloss.Color(rgbHex(key.fgR, key.fgG, key.fgB)))
	}
	switch key.bgKind {
	case uint8(vtColorIndexed):
		st = st.Background(lipgloss.Color(strconv.Itoa(int(key.bgIdx))))
	case uint8(vtColorRGB):
		st = st.Background(lipgloss.Color(rgbHex(key.bgR, key.bgG, key.bgB)))
	}
	if key.pen&vt.PenBold != 0 {
		st = st.Bold(true)
	}
	if key.pen&vt.PenItalic != 0 {
		st = st.Italic(true)
	}
	if key.pen&vt.PenReverse != 0 {
		st = st.Reverse(true)
	}
	if key.pen&vt.PenStrike != 0 {
		st = st.Strikethrough(true)
	}
	if key.underline != vt.UnderlineNone {
		st = st.Underline(true)
	}
	return st
}

func rgbHex(r, g, bch uint8) string {
	const hexDigits = "0123456789abcdef"
	buf := [7]byte{'#'}
	put := func(off int, v uint8) {
		buf[off] = hexDigits[v>>4]
		buf[off+1] = hexDigits[v&0xf]
	}
	put(1, r)
	put(3, g)
	put(5, bch)
	return string(buf[:])
}

// render lays out the last `rows` lines (padded/truncated to `cols`
// wide), applying each cell's interned style per contiguous run.
func (b *lineBuffer) render(rows, cols int) string {
	b.mu.Lock()
	total := len(b.lines)
	start := total - rows
	if start < 0 {
		start = 0
	}
	lines := make([]string, 0, rows)
	for i := start; i < total; i++ {
		lines = append(lines, b.renderLineLocked(b.lines[i], b.attrs[i], cols))
	}
	b.mu.Unlock()

	for len(lines) < rows {
		lines = append(lines, strings.Repeat(" ", cols))
	}
	return strings.Join(lines, "\n")
}

func (b *lineBuffer) renderLineLocked(text string, attrs vt.AttrLine, cols int) string {
	// Pad/truncate by display width rather than rune count: a wide
	// (e.g. CJK) glyph in text occupies two terminal columns but is
	// one rune, so rune-count padding would under-fill the row.
	if ansi.StringWidth(text) > cols {
		text = ansi.Truncate(text, cols, "")
	}
	runes := []rune(text)
	for ansi.StringWidth(string(runes)) < cols {
		runes = append(runes, ' ')
	}
	if len(attrs) == 0 {
		return string(runes)
	}

	idAt := func(col int) int {
		if id, ok := attrs[col]; ok {
			return id
		}
		return noAttrID
	}

	var out strings.Builder
	runStart := 0
	runID := idAt(0)
	for col := 1; col <= len(runes); col++ {
		id := noAttrID
		if col < len(runes) {
			id = idAt(col)
		}
		if col < len(runes) && id == runID {
			continue
		}
		out.WriteString(b.styleFor(runID).Render(string(runes[runStart:col])))
		runStart = col
		runID = id
	}
	return out.String()
}

// Mirrors internal/cellmodel.ColorKind without importing the internal
// package, since the demo only needs the two non-default variants.
const (
	vtColorIndexed = 1
	vtColorRGB     = 2
)
