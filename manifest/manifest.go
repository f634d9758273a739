// Package manifest handles bfvm.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the manifest file looked up in a project directory.
const FileName = "bfvm.toml"

// Manifest represents a bfvm.toml project configuration.
type Manifest struct {
	Project Project       `toml:"project"`
	Tape    TapeConfig    `toml:"tape"`
	Run     RunConfig     `toml:"run"`
	Image   ImageConfig   `toml:"image"`
	History HistoryConfig `toml:"history"`

	// Dir is the directory containing the bfvm.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name string `toml:"name"`
}

// TapeConfig configures the memory tape.
type TapeConfig struct {
	Length int `toml:"length"`
}

// RunConfig configures execution limits and input.
type RunConfig struct {
	CycleLimit uint64 `toml:"cycle-limit"`
	Input      string `toml:"input"` // path to input bytes, relative to Dir
}

// ImageConfig configures tape image output.
type ImageConfig struct {
	Output string `toml:"output"` // path the final tape image is written to
}

// HistoryConfig configures the run history store.
type HistoryConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Load parses a bfvm.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	// Defaults
	if m.History.Path == "" {
		m.History.Path = filepath.Join(".bfvm", "history.db")
	}

	return &m, nil
}

// FindAndLoad walks up from startDir to find a bfvm.toml file, then loads and
// returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// InputPath returns the absolute path of the configured input file, or ""
// when no input is configured.
func (m *Manifest) InputPath() string {
	if m.Run.Input == "" {
		return ""
	}
	return m.resolve(m.Run.Input)
}

// ImageOutputPath returns the absolute path configured for tape image output,
// or "" when none is configured.
func (m *Manifest) ImageOutputPath() string {
	if m.Image.Output == "" {
		return ""
	}
	return m.resolve(m.Image.Output)
}

// HistoryPath returns the absolute path of the run history database.
func (m *Manifest) HistoryPath() string {
	return m.resolve(m.History.Path)
}

func (m *Manifest) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(m.Dir, path)
}
