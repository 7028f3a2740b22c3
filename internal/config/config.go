// Package config implements the YAML-loadable terminal defaults (spec
// §10 AMBIENT STACK): a host that wants to persist terminal settings
// across restarts loads a Config and turns it into TerminalOptions,
// the way `dcosson-h2` and `ehrlich-b-wingthing` each load their own
// YAML-backed settings structs.
package config

import (
	"os"

	"github.com/vtcore/vt/internal/input"
	"gopkg.in/yaml.v3"
)

// Config mirrors the subset of TerminalOptions worth persisting.
type Config struct {
	ScrollbackLines int               `yaml:"scrollback_lines"`
	ForceCRLF       bool              `yaml:"force_crlf"`
	FilterMask      input.FilterMask  `yaml:"filter_mask"`
	PaletteSeed     map[string]string `yaml:"palette"` // "terminal_color_N" -> "#rrggbb"
}

// Default returns the built-in defaults used when no config file is
// present.
func Default() Config {
	return Config{
		ScrollbackLines: 10000,
		ForceCRLF:       false,
		FilterMask:      input.FilterC0 | input.FilterC1,
	}
}

// Load reads and parses a YAML config file, falling back to Default
// values for any field the file doesn't set.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Lookup adapts the loaded PaletteSeed map into a palette.VariableLookup.
func (c Config) Lookup(name string) (string, bool) {
	v, ok := c.PaletteSeed[name]
	return v, ok
}
