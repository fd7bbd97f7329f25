package config

// This file implements CLI flag parsing and help text.
// Flags are grouped into project, stacking, stages, display, and utility.
// Negated flags (e.g. --no-compress) are applied after Parse so Config
// defaults hold unless set.

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// ParseFlags parses os.Args into cfg. On --help or --version it prints and
// exits. On error it returns non-nil (e.g. unknown flag, stray positional).
func ParseFlags(cfg *Config, version string) error {
	fs := flag.NewFlagSet("cryoem-pipeline", flag.ContinueOnError)
	fs.Usage = func() { printUsage(fs, version) }

	// Negated/override flags: we capture bools then apply to cfg after Parse,
	// so that defaults from DefaultConfig() hold unless the user passes the flag.
	var negated negatedFlags

	defineProjectFlags(fs, cfg)
	defineStackingFlags(fs, cfg)
	defineStageFlags(fs, cfg, &negated)
	defineDisplayFlags(fs, cfg, &negated)
	defineUtilityFlags(fs, cfg, &negated)

	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}

	applyNegatedFlags(cfg, &negated)

	if negated.showHelp {
		printUsage(fs, version)
		os.Exit(0)
	}
	if negated.showVersion {
		fmt.Fprintln(os.Stdout, "cryoem-pipeline v"+version)
		os.Exit(0)
	}

	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected argument %q (all options are named flags)", fs.Arg(0))
	}
	return nil
}

// negatedFlags holds boolean flags that are applied after Parse.
// These either invert a default (e.g. noCompress -> Compress=false) or
// trigger exit (showHelp, showVersion).
type negatedFlags struct {
	noCompress  bool
	noVerify    bool
	noSettle    bool
	noStats     bool
	force       bool
	forceColor  bool
	noColor     bool
	showVersion bool
	showHelp    bool
}

// defineProjectFlags registers --project, --pattern, --scratch, --storage.
func defineProjectFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.ProjectDir, "project", cfg.ProjectDir, "Project directory holding raw micrographs")
	fs.StringVar(&cfg.ProjectDir, "P", cfg.ProjectDir, "Same as --project")
	fs.StringVar(&cfg.Pattern, "pattern", cfg.Pattern, "Glob pattern, relative to the project directory")
	fs.StringVar(&cfg.Pattern, "g", cfg.Pattern, "Same as --pattern")
	fs.StringVar(&cfg.ScratchDir, "scratch", cfg.ScratchDir, "Local working directory (default: /tmp/<project>)")
	fs.StringVar(&cfg.StorageDir, "storage", cfg.StorageDir, "Archival destination; empty disables export")
}

// defineStackingFlags registers --frames, --partial, --newstack-args.
func defineStackingFlags(fs *flag.FlagSet, cfg *Config) {
	fs.IntVar(&cfg.Frames, "frames", cfg.Frames, "Frames per movie stack (1 = pre-stacked)")
	fs.IntVar(&cfg.Frames, "n", cfg.Frames, "Same as --frames")
	fs.Var(&partialValue{&cfg.PartialPolicy}, "partial", "Trailing short group: process | skip")
	fs.StringVar(&cfg.NewstackArgs, "newstack-args", cfg.NewstackArgs, "Extra arguments passed to newstack")
}

// defineStageFlags registers stage toggles, settle window, force, dry-run.
func defineStageFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.BoolVar(&n.noCompress, "no-compress", false, "Skip lbzip2 compression")
	fs.IntVar(&cfg.CompressThreads, "compress-threads", cfg.CompressThreads, "lbzip2 worker threads")
	fs.BoolVar(&n.noVerify, "no-verify", false, "Skip SHA-1 verification after export")
	fs.IntVar(&cfg.SettleAge, "settle-age", cfg.SettleAge, "Seconds a file must be unmodified before import")
	fs.BoolVar(&n.noSettle, "no-settle", false, "Do not wait for files to settle")
	fs.BoolVar(&n.force, "force", false, "Reprocess units whose archived output already exists")
	fs.BoolVar(&n.force, "f", false, "Same as --force")
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "Preview only; do not stack, compress or export")
	fs.BoolVar(&cfg.DryRun, "d", false, "Same as --dry-run")
}

// defineDisplayFlags registers --color, --no-color, verbose, --check, --log.
func defineDisplayFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.BoolVar(&n.noStats, "no-stats", false, "Hide per-file micrograph header stats")
	fs.BoolVar(&n.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&n.noColor, "no-color", false, "Disable colored logs")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Verbose output")
	fs.BoolVar(&cfg.Verbose, "v", false, "Same as --verbose")
	fs.BoolVar(&cfg.CheckOnly, "check", false, "Run system diagnostics and exit")
	fs.BoolVar(&cfg.CheckOnly, "c", false, "Same as --check")
	fs.StringVar(&cfg.LogFile, "log", "", "Append logs to file")
	fs.StringVar(&cfg.LogFile, "l", "", "Same as --log")
}

// defineUtilityFlags registers --scipion-config, --version and --help.
func defineUtilityFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.StringVar(&cfg.ScipionOut, "scipion-config", "", "Generate a Scipion workflow config at <path> and exit")
	fs.BoolVar(&n.showVersion, "version", false, "Print version and exit")
	fs.BoolVar(&n.showVersion, "V", false, "Same as --version")
	fs.BoolVar(&n.showHelp, "help", false, "Show this help and exit")
	fs.BoolVar(&n.showHelp, "h", false, "Same as --help")
}

// applyNegatedFlags copies negated and override flag values into cfg
// (e.g. noCompress -> Compress=false).
func applyNegatedFlags(cfg *Config, n *negatedFlags) {
	if n.noCompress {
		cfg.Compress = false
	}
	if n.noVerify {
		cfg.Verify = false
	}
	if n.noSettle {
		cfg.SettleAge = 0
	}
	if n.noStats {
		cfg.ShowFileStats = false
	}
	if n.force {
		cfg.SkipExisting = false
		cfg.Force = true
	}
	if n.noColor {
		cfg.ColorMode = ColorNever
	} else if n.forceColor {
		cfg.ColorMode = ColorAlways
	}
}

// printUsage writes the help text to stderr. Column-aligned for readability.
func printUsage(fs *flag.FlagSet, version string) {
	const col1 = 30 // width of "  -x, --long-name <arg>  "
	lines := []struct {
		flags string
		desc  string
	}{
		{"", "cryoem-pipeline v" + version + " — EM micrograph stacking and archival pipeline"},
		{"", ""},
		{"  cryoem-pipeline [OPTIONS] --project <dir> --pattern <glob>", ""},
		{"", ""},
		{"Project", ""},
		{"  -P, --project <dir>", "Project directory holding raw micrographs"},
		{"  -g, --pattern <glob>", "Glob pattern relative to the project directory"},
		{"  --scratch <dir>", "Local working directory (default: /tmp/<project>)"},
		{"  --storage <dir>", "Archival destination (empty: no export)"},
		{"", ""},
		{"Stacking", ""},
		{"  -n, --frames <count>", "Frames per movie stack (default: 1, pre-stacked)"},
		{"  --partial <process|skip>", "Trailing short group policy (default: process)"},
		{"  --newstack-args <args>", "Extra arguments passed through to newstack"},
		{"", ""},
		{"Stages", ""},
		{"  --settle-age <sec>", "Seconds a file must be unmodified (default: 15)"},
		{"  --no-settle", "Do not wait for files to settle"},
		{"  --no-compress", "Skip lbzip2 compression"},
		{"  --compress-threads <n>", "lbzip2 worker threads (default: 8)"},
		{"  --no-verify", "Skip SHA-1 verification after export"},
		{"  -f, --force", "Reprocess existing archived outputs"},
		{"  -d, --dry-run", "Preview only; no stacking, compression or export"},
		{"", ""},
		{"Display", ""},
		{"  --no-stats", "Hide per-file micrograph header stats"},
		{"  --color", "Force colored logs"},
		{"  --no-color", "Disable colored logs"},
		{"  -v, --verbose", "Verbose output"},
		{"", ""},
		{"Utility", ""},
		{"  -l, --log <path>", "Append logs to file"},
		{"  -c, --check", "System diagnostics (IMOD, lbzip2, scratch, storage)"},
		{"  --scipion-config <path>", "Generate a Scipion workflow config and exit"},
		{"  -V, --version", "Print version and exit"},
		{"  -h, --help", "Show this help and exit"},
	}

	for _, l := range lines {
		if l.flags == "" && l.desc == "" {
			fmt.Fprintln(os.Stderr)
			continue
		}
		if l.desc == "" {
			fmt.Fprintln(os.Stderr, l.flags)
			continue
		}
		if l.flags == "" {
			fmt.Fprintln(os.Stderr, l.desc)
			continue
		}
		padding := col1 - len(l.flags)
		if padding < 1 {
			padding = 1
		}
		fmt.Fprintf(os.Stderr, "%s%*s%s\n", l.flags, padding, "", l.desc)
	}
}

// flag.Value adapter so the PartialPolicy enum works with flag.Var.

type partialValue struct{ p *PartialPolicy }

func (v *partialValue) String() string {
	if v.p == nil {
		return ""
	}
	return string(*v.p)
}

func (v *partialValue) Set(s string) error {
	switch strings.ToLower(s) {
	case "process":
		*v.p = PartialProcess
	case "skip":
		*v.p = PartialSkip
	default:
		return fmt.Errorf("invalid partial policy %q (use 'process' or 'skip')", s)
	}
	return nil
}
