package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/muesli/termenv"

	"github.com/vtcore/vt/internal/config"
)

// themeWatcher watches a palette YAML file on disk (spec §4.10,
// §11 DOMAIN STACK) and republishes its VariableLookup whenever the
// file changes, so a host can call Terminal.ReloadPalette live.
type themeWatcher struct {
	path    string
	watcher *fsnotify.Watcher
	changed chan func(string) (string, bool)
}

// newThemeWatcher loads path once (if present) and arms an fsnotify
// watch on it; path need not exist yet, matching the teacher corpus's
// "watch, don't require" config-reload pattern.
func newThemeWatcher(path string) (*themeWatcher, func(string) (string, bool), error) {
	cfg := config.Default()
	if loaded, err := config.Load(path); err == nil {
		cfg = loaded
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, cfg.Lookup, err
	}
	dir := filepath.Dir(path)
	if dir == "" {
		dir = "."
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, cfg.Lookup, err
	}

	tw := &themeWatcher{path: path, watcher: w, changed: make(chan func(string) (string, bool), 1)}
	go tw.run()
	return tw, cfg.Lookup, nil
}

func (w *themeWatcher) run() {
	defer close(w.changed)
	var lastLoad time.Time
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if time.Since(lastLoad) < 100*time.Millisecond {
				continue
			}
			lastLoad = time.Now()
			cfg, err := config.Load(w.path)
			if err != nil {
				continue
			}
			select {
			case w.changed <- cfg.Lookup:
			default:
			}
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *themeWatcher) close() {
	if w == nil {
		return
	}
	w.watcher.Close()
}

// detectBackgroundPolarity asks termenv whether the real terminal
// hosting this process has a dark or light background, to seed an
// initial theme guess before any palette file is loaded (spec §4.10's
// theme-polarity notification starts from the host's own profile).
func detectBackgroundPolarity() bool {
	if !termenvIsTerminal() {
		return true
	}
	return termenv.NewOutput(os.Stdout).HasDarkBackground()
}

func termenvIsTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
