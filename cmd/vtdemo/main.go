// Command vtdemo hosts a real PTY-backed shell inside a
// bubbletea/lipgloss terminal UI, exercising every collaborator
// interface the term package defines (spec §6, §11 DOMAIN STACK).
package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "charm.land/bubbletea/v2"

	vt "github.com/vtcore/vt"
	"github.com/vtcore/vt/internal/palette"
)

const (
	initialRows = 24
	initialCols = 80
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "vtdemo:", err)
		os.Exit(1)
	}
}

func run() error {
	sh, err := spawnShell(initialRows, initialCols)
	if err != nil {
		return err
	}
	defer sh.Close()

	themePath := themeConfigPath()
	theme, lookup, err := newThemeWatcher(themePath)
	if err != nil {
		theme = nil // no live reload available; palette still seeds from Default()
	}
	defer theme.close()

	buf := newLineBuffer()
	m := newModel(nil, sh, buf, initialRows, initialCols, theme)

	term := vt.New(vt.Options{
		Rows: initialRows, Cols: initialCols,
		BufferSink:   buf,
		AttrResolver: buf,
		UIHost:       m,
		Pty:          sh,
		Clipboard:    m,
		PaletteSeed:  lookup,
		EventSink:    m,
	})
	defer term.Close()
	m.term = term
	term.EnterFocus()

	polarity := palette.ThemeLight
	if detectBackgroundPolarity() {
		polarity = palette.ThemeDark
	}
	_ = term.Send([]byte(polarity.Notification()))

	p := tea.NewProgram(m)
	m.program = p
	_, err = p.Run()
	return err
}

func themeConfigPath() string {
	if p := os.Getenv("VTDEMO_PALETTE"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "vtdemo-palette.yaml"
	}
	return filepath.Join(dir, "vtdemo", "palette.yaml")
}
