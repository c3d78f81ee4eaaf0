// Package project loads the optional sclint.toml that holds CLI defaults.
// Rule behaviour is not configurable; the file only shapes how files are
// selected and how results are printed.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

// ErrNoConfig is returned by Load when no sclint.toml exists above the start directory.
var ErrNoConfig = errors.New("no sclint.toml found")

// Config is the decoded sclint.toml.
type Config struct {
	Lint   LintConfig   `toml:"lint"`
	Output OutputConfig `toml:"output"`
}

type LintConfig struct {
	Extensions     []string `toml:"extensions"`
	Exclude        []string `toml:"exclude"`
	Jobs           int      `toml:"jobs"`
	MaxDiagnostics int      `toml:"max_diagnostics"`
}

type OutputConfig struct {
	Format   string `toml:"format"`
	Color    string `toml:"color"`
	PathMode string `toml:"path_mode"`
}

// Manifest is a loaded configuration together with where it came from.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

var (
	validFormats   = []string{"pretty", "short", "json", "sarif", "msgpack"}
	validColors    = []string{"auto", "on", "off"}
	validPathModes = []string{"auto", "absolute", "relative", "basename"}
)

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Lint: LintConfig{
			Extensions:     []string{".js", ".mjs", ".cjs", ".jsx"},
			Exclude:        []string{"node_modules", ".git", "dist"},
			Jobs:           0,
			MaxDiagnostics: 100,
		},
		Output: OutputConfig{
			Format:   "pretty",
			Color:    "auto",
			PathMode: "auto",
		},
	}
}

// Load finds sclint.toml above startDir and decodes it.
func Load(startDir string) (*Manifest, error) {
	path, ok, err := FindConfig(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoConfig
	}
	return LoadFile(path)
}

// LoadFile decodes the given file. Keys missing from the file keep their
// Default values; unknown keys and invalid values are errors.
func LoadFile(path string) (*Manifest, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	// пустой массив в файле - осознанный выбор, но без расширений линтить нечего
	if meta.IsDefined("lint", "extensions") && len(cfg.Lint.Extensions) == 0 {
		return nil, fmt.Errorf("%s: [lint].extensions must not be empty", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return &Manifest{Path: abs, Root: filepath.Dir(abs), Config: cfg}, nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	if c.Lint.Jobs < 0 {
		return fmt.Errorf("[lint].jobs must be >= 0, got %d", c.Lint.Jobs)
	}
	if c.Lint.MaxDiagnostics < 0 {
		return fmt.Errorf("[lint].max_diagnostics must be >= 0, got %d", c.Lint.MaxDiagnostics)
	}
	for _, ext := range c.Lint.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("[lint].extensions: %q must start with a dot", ext)
		}
	}
	if !slices.Contains(validFormats, c.Output.Format) {
		return fmt.Errorf("[output].format: unknown format %q", c.Output.Format)
	}
	if !slices.Contains(validColors, c.Output.Color) {
		return fmt.Errorf("[output].color: unknown mode %q", c.Output.Color)
	}
	if !slices.Contains(validPathModes, c.Output.PathMode) {
		return fmt.Errorf("[output].path_mode: unknown mode %q", c.Output.PathMode)
	}
	return nil
}

// WriteDefault writes a default sclint.toml into dir and returns its path.
// An existing file is never overwritten.
func WriteDefault(dir string) (string, error) {
	path := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("already initialized: %s exists", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("failed to stat %q: %w", path, err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644) // #nosec G302 -- конфиг читают все
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	enc := toml.NewEncoder(f)
	enc.Indent = ""
	if err := enc.Encode(Default()); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
