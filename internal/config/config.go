// Package config holds runtime configuration: defaults, environment
// overrides, CLI flag parsing, and validation.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/shlex"
	"github.com/kelseyhightower/envconfig"
)

// envPrefix is the prefix for environment overrides (e.g. CRYOEM_FRAMES).
const envPrefix = "cryoem"

// --- Enum types for validated string fields ---

// PartialPolicy controls what happens to a trailing stack group with fewer
// than Frames files.
type PartialPolicy string

const (
	PartialProcess PartialPolicy = "process" // Stack the short group anyway (default).
	PartialSkip    PartialPolicy = "skip"    // Leave the short group for a later run.
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Config holds all runtime settings. It is populated by [DefaultConfig],
// optionally overridden from CRYOEM_* environment variables by [ApplyEnv],
// and then mutated by [ParseFlags] before being passed (by pointer) to the
// packages that need it.
type Config struct {
	// Paths.
	ProjectDir string `envconfig:"PROJECT"`
	Pattern    string `envconfig:"PATTERN"`
	ScratchDir string `envconfig:"SCRATCH"` // Default: /tmp/<project basename>, derived in Validate.
	StorageDir string `envconfig:"STORAGE"` // Empty disables export/verify.

	// Stacking.
	Frames        int           `envconfig:"FRAMES"`        // Default: 1 (pre-stacked input).
	PartialPolicy PartialPolicy `envconfig:"PARTIAL"`       // Default: "process".
	NewstackArgs  string        `envconfig:"NEWSTACK_ARGS"` // Extra newstack args, shell-quoted.

	// ExtraNewstackArgs is NewstackArgs split into argv form. Derived in
	// Validate; never set directly.
	ExtraNewstackArgs []string `ignored:"true"`

	// Stage behavior.
	Compress        bool `envconfig:"COMPRESS"`         // Default: true (lbzip2).
	CompressThreads int  `envconfig:"COMPRESS_THREADS"` // Default: 8, matching the acquisition box.
	Verify          bool `envconfig:"VERIFY"`           // Default: true. SHA-1 check after export.
	SettleAge       int  `envconfig:"SETTLE_AGE"`       // Seconds a file must be unmodified. 0 disables.
	SkipExisting    bool `ignored:"true"`               // Default: true. Cleared by --force.
	Force           bool `ignored:"true"`
	DryRun          bool `ignored:"true"`

	// Display and logging.
	Verbose       bool      `ignored:"true"`
	ShowFileStats bool      `envconfig:"FILE_STATS"` // Default: true. Per-file header probe output.
	ColorMode     ColorMode `envconfig:"COLOR"`
	LogFile       string    `envconfig:"LOG"`
	CheckOnly     bool      `ignored:"true"`
	ScipionOut    string    `ignored:"true"` // --scipion-config output path; non-empty triggers generator mode.
}

// DefaultConfig returns a Config with defaults matching the legacy
// acquisition workflow (frames pre-stacked, 15 s settle window, lbzip2 -n 8).
func DefaultConfig() Config {
	return Config{
		Frames:          1,
		PartialPolicy:   PartialProcess,
		Compress:        true,
		CompressThreads: 8,
		Verify:          true,
		SettleAge:       15,
		SkipExisting:    true,
		ShowFileStats:   true,
		ColorMode:       ColorAuto,
	}
}

// ApplyEnv overlays CRYOEM_* environment variables onto cfg. Called between
// DefaultConfig and ParseFlags so that flags win over the environment.
func ApplyEnv(cfg *Config) error {
	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return fmt.Errorf("environment config: %w", err)
	}
	return nil
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Validate checks enum fields and value ranges, derives the scratch
// directory default and the split newstack argument list. When not in
// CheckOnly or Scipion-generator mode, it also requires project and pattern.
func (c *Config) Validate() error {
	switch c.PartialPolicy {
	case PartialProcess, PartialSkip:
		// valid
	default:
		return errors.New("invalid partial policy (use 'process' or 'skip')")
	}

	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	}

	if c.Frames < 1 || c.Frames > 99 {
		return fmt.Errorf("frames must be between 1 and 99 (got %d)", c.Frames)
	}
	if c.SettleAge < 0 {
		return fmt.Errorf("settle age must not be negative (got %d)", c.SettleAge)
	}
	if c.CompressThreads < 1 {
		return fmt.Errorf("compress threads must be at least 1 (got %d)", c.CompressThreads)
	}

	extra, err := shlex.Split(c.NewstackArgs)
	if err != nil {
		return fmt.Errorf("invalid newstack args %q: %w", c.NewstackArgs, err)
	}
	c.ExtraNewstackArgs = extra

	if c.CheckOnly || c.ScipionOut != "" {
		return nil
	}
	if c.ProjectDir == "" {
		return errors.New("need --project <dir>")
	}
	if c.Pattern == "" {
		return errors.New("need --pattern <glob>")
	}

	c.ProjectDir = NormalizeDirArg(c.ProjectDir)
	if c.ScratchDir == "" {
		c.ScratchDir = filepath.Join("/tmp", filepath.Base(c.ProjectDir))
	}
	c.ScratchDir = NormalizeDirArg(c.ScratchDir)
	c.StorageDir = NormalizeDirArg(c.StorageDir)
	return nil
}

// ValidateLayout ensures the resolved scratch and storage directories are
// not inside (or equal to) the resolved project directory. This prevents the
// pipeline from discovering its own intermediate or archived output. All
// arguments must be absolute, symlink-resolved paths; empty storage is
// allowed (export disabled).
func (c *Config) ValidateLayout(projectAbs, scratchAbs, storageAbs string) error {
	if isWithin(projectAbs, scratchAbs) {
		return errors.New("scratch directory must not be inside the project directory")
	}
	if storageAbs != "" && isWithin(projectAbs, storageAbs) {
		return errors.New("storage directory must not be inside the project directory")
	}
	return nil
}

// isWithin reports whether path equals root or lives under it.
func isWithin(root, path string) bool {
	sep := string(filepath.Separator)
	return path == root || strings.HasPrefix(path+sep, root+sep)
}
