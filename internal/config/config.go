// Package config loads malphas-unroll settings.
//
// Settings are layered: built-in defaults, then a TOML file named
// malphas-unroll.toml (searched for in the working directory and its
// parents), then MALPHAS_UNROLL_* environment variables. Command-line flags
// are applied last by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/pelletier/go-toml/v2"
	"github.com/xyproto/env/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"

	"github.com/malphas-lang/malphas-unroll/internal/printer"
	"github.com/malphas-lang/malphas-unroll/internal/rewrite"
	"github.com/malphas-lang/malphas-unroll/internal/unroll"
)

// FileName is the config file searched for.
const FileName = "malphas-unroll.toml"

// DefaultMaxIterations caps unrolling when nothing else is configured.
const DefaultMaxIterations = 1024

// Environment variables consulted by ApplyEnv.
const (
	EnvMarker        = "MALPHAS_UNROLL_MARKER"
	EnvScope         = "MALPHAS_UNROLL_SCOPE"
	EnvMaxIterations = "MALPHAS_UNROLL_MAX_ITERATIONS"
	EnvJobs          = "MALPHAS_UNROLL_JOBS"
	EnvLogLevel      = "MALPHAS_UNROLL_LOG_LEVEL"
)

// Config mirrors the config file. All fields are optional.
type Config struct {
	// Requires is a semver constraint the tool version must satisfy.
	Requires string `toml:"requires,omitempty"`

	Marker        *string  `toml:"marker,omitempty"`
	Scope         *string  `toml:"scope,omitempty"`
	MaxIterations *int64   `toml:"max_iterations,omitempty"`
	Jobs          *int     `toml:"jobs,omitempty"`
	Indent        *string  `toml:"indent,omitempty"`
	Extensions    []string `toml:"extensions,omitempty"`
	LogLevel      *string  `toml:"log_level,omitempty"`
}

// Settings is the resolved configuration.
type Settings struct {
	Marker        string
	Scope         unroll.Scope
	MaxIterations uint64
	Jobs          int
	Indent        string
	Extensions    []string
	LogLevel      string
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		Marker:        rewrite.DefaultMarker,
		Scope:         unroll.ScopeFull,
		MaxIterations: DefaultMaxIterations,
		Jobs:          runtime.GOMAXPROCS(0),
		Indent:        printer.DefaultIndent,
		Extensions:    []string{".mal", ".rs"},
		LogLevel:      "info",
	}
}

// RewriteOptions converts settings for the rewrite driver.
func (s Settings) RewriteOptions() rewrite.Options {
	return rewrite.Options{
		Marker:        s.Marker,
		Scope:         s.Scope,
		MaxIterations: s.MaxIterations,
		Indent:        s.Indent,
		Jobs:          s.Jobs,
	}
}

// MatchesExtension reports whether path has one of the configured extensions.
func (s Settings) MatchesExtension(path string) bool {
	ext := filepath.Ext(path)
	for _, want := range s.Extensions {
		if ext == want {
			return true
		}
	}
	return false
}

// Validate reports every invalid setting.
func (s Settings) Validate() error {
	var err error
	if s.Marker == "" {
		err = multierr.Append(err, errors.New("marker must not be empty"))
	}
	if s.Jobs < 1 {
		err = multierr.Append(err, fmt.Errorf("jobs must be at least 1, got %d", s.Jobs))
	}
	if len(s.Extensions) == 0 {
		err = multierr.Append(err, errors.New("at least one file extension is required"))
	}
	for _, ext := range s.Extensions {
		if !strings.HasPrefix(ext, ".") {
			err = multierr.Append(err, fmt.Errorf("extension %q must start with '.'", ext))
		}
	}
	if _, lerr := zapcore.ParseLevel(s.LogLevel); lerr != nil {
		err = multierr.Append(err, fmt.Errorf("log_level: %w", lerr))
	}
	return err
}

// Find searches for FileName starting at startDir and walking up to the
// filesystem root. It returns "" when no file exists.
func Find(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Load finds and loads the nearest config file. A missing file yields a nil
// Config and an empty path.
func Load(startDir string) (*Config, string, error) {
	path, err := Find(startDir)
	if err != nil || path == "" {
		return nil, "", err
	}
	cfg, err := LoadFile(path)
	return cfg, path, err
}

// LoadFile loads configuration from a specific file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return &cfg, nil
}

// Apply overlays the fields set in c onto s. A nil Config changes nothing.
func (c *Config) Apply(s *Settings) error {
	if c == nil {
		return nil
	}

	var err error
	if c.Marker != nil {
		s.Marker = *c.Marker
	}
	if c.Scope != nil {
		scope, ok := unroll.ParseScope(*c.Scope)
		if !ok {
			err = multierr.Append(err, fmt.Errorf("scope: unknown value %q (want full or loops)", *c.Scope))
		}
		s.Scope = scope
	}
	if c.MaxIterations != nil {
		if *c.MaxIterations < 0 {
			err = multierr.Append(err, fmt.Errorf("max_iterations must not be negative, got %d", *c.MaxIterations))
		} else {
			s.MaxIterations = uint64(*c.MaxIterations)
		}
	}
	if c.Jobs != nil {
		s.Jobs = *c.Jobs
	}
	if c.Indent != nil {
		s.Indent = *c.Indent
	}
	if len(c.Extensions) > 0 {
		s.Extensions = c.Extensions
	}
	if c.LogLevel != nil {
		s.LogLevel = *c.LogLevel
	}
	return err
}

// ApplyEnv overlays MALPHAS_UNROLL_* environment variables onto s. The
// environment is reread on every call.
func ApplyEnv(s *Settings) error {
	env.Load()

	var err error
	if env.Has(EnvMarker) {
		s.Marker = env.Str(EnvMarker)
	}
	if env.Has(EnvScope) {
		scope, ok := unroll.ParseScope(env.Str(EnvScope))
		if !ok {
			err = multierr.Append(err, fmt.Errorf("%s: unknown value %q", EnvScope, env.Str(EnvScope)))
		}
		s.Scope = scope
	}
	if env.Has(EnvMaxIterations) {
		n := env.Int(EnvMaxIterations, -1)
		if n < 0 {
			err = multierr.Append(err, fmt.Errorf("%s: want a non-negative integer, got %q", EnvMaxIterations, env.Str(EnvMaxIterations)))
		} else {
			s.MaxIterations = uint64(n)
		}
	}
	if env.Has(EnvJobs) {
		n := env.Int(EnvJobs, -1)
		if n < 1 {
			err = multierr.Append(err, fmt.Errorf("%s: want a positive integer, got %q", EnvJobs, env.Str(EnvJobs)))
		} else {
			s.Jobs = n
		}
	}
	if env.Has(EnvLogLevel) {
		s.LogLevel = env.Str(EnvLogLevel)
	}
	return err
}

// VersionError reports a config file that requires another tool version.
type VersionError struct {
	Path       string
	Constraint string
	Have       *semver.Version
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("%s requires malphas-unroll %s, have %s", e.Path, e.Constraint, e.Have)
}

// CheckRequires verifies the tool version against c.Requires.
func (c *Config) CheckRequires(path string, have *semver.Version) error {
	if c == nil || c.Requires == "" {
		return nil
	}
	constraint, err := semver.NewConstraint(c.Requires)
	if err != nil {
		return fmt.Errorf("%s: invalid requires constraint %q: %w", path, c.Requires, err)
	}
	if !constraint.Check(have) {
		return &VersionError{Path: path, Constraint: c.Requires, Have: have}
	}
	return nil
}
