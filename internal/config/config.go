// Package config loads fsyncprof.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the name searched for when no explicit path is given.
const FileName = "fsyncprof.toml"

// File mirrors the TOML layout. Every value is optional.
type File struct {
	Window  WindowConfig  `toml:"window"`
	Buckets BucketsConfig `toml:"buckets"`
	Reads   ReadsConfig   `toml:"reads"`
	Output  OutputConfig  `toml:"output"`
}

// WindowConfig holds the time window in seconds.
type WindowConfig struct {
	Start    float64 `toml:"start"`
	Duration float64 `toml:"duration"`
}

// BucketsConfig renames the timeline lanes.
type BucketsConfig struct {
	Wait   string `toml:"wait"`
	Signal string `toml:"signal"`
	Read   string `toml:"read"`
}

// ReadsConfig controls NtReadFile events.
type ReadsConfig struct {
	Enabled  *bool    `toml:"enabled"`
	Suppress []string `toml:"suppress"`
}

// OutputConfig selects the default output format.
type OutputConfig struct {
	Format string `toml:"format"`
}

// Loaded is a parsed file together with where it came from.
type Loaded struct {
	Path string
	File File
	meta toml.MetaData
}

// IsDefined reports whether the key path was present in the file.
func (l *Loaded) IsDefined(key ...string) bool {
	if l == nil {
		return false
	}
	return l.meta.IsDefined(key...)
}

// Find walks up from startDir looking for FileName.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load parses the file at path.
func Load(path string) (*Loaded, error) {
	var f File
	meta, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	if f.Window.Start < 0 || f.Window.Duration < 0 {
		return nil, fmt.Errorf("%s: [window] start and duration must not be negative", path)
	}
	return &Loaded{Path: path, File: f, meta: meta}, nil
}

// Discover loads the explicit path when given, otherwise the nearest
// FileName above startDir. It returns nil when nothing is found.
func Discover(explicit, startDir string) (*Loaded, error) {
	if explicit != "" {
		return Load(explicit)
	}
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return nil, err
	}
	return Load(path)
}
