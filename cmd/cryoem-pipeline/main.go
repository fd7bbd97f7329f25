// Command cryoem-pipeline is the CLI entrypoint for the EM micrograph
// stacking and archival pipeline.
//
// It parses flags, validates configuration and paths, and either runs
// system diagnostics (--check), the Scipion config generator
// (--scipion-config), or the batch pipeline.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/abcsFrederick/cryoem-pipeline/internal/check"
	"github.com/abcsFrederick/cryoem-pipeline/internal/config"
	"github.com/abcsFrederick/cryoem-pipeline/internal/display"
	"github.com/abcsFrederick/cryoem-pipeline/internal/logging"
	"github.com/abcsFrederick/cryoem-pipeline/internal/pipeline"
	"github.com/abcsFrederick/cryoem-pipeline/internal/scipion"
)

// version and commit are injected at build time via -ldflags.
// When built with plain "go build" (no make), these retain their defaults.
var (
	version = "1.0.0"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Phase 1: Bootstrap — the logger doesn't exist yet, so errors go
	// directly to stderr via fmt. Once NewLogger succeeds, all output
	// goes through the logger for consistent formatting and log-file capture.
	cfg := config.DefaultConfig()
	if err := config.ApplyEnv(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "cryoem-pipeline: %v\n", err)
		return 1
	}
	if err := config.ParseFlags(&cfg, version); err != nil {
		fmt.Fprintf(os.Stderr, "cryoem-pipeline: %v\n", err)
		return 1
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "cryoem-pipeline: %v\n", err)
		return 1
	}

	log, err := logging.NewLogger(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cryoem-pipeline: %v\n", err)
		return 1
	}
	defer log.Close()

	// Phase 2: Logger available — all output goes through log from here on.
	display.PrintBanner()

	if cfg.CheckOnly {
		if !check.RunCheck(&cfg, log) {
			return 1
		}
		return 0
	}

	if cfg.ScipionOut != "" {
		if err := scipion.Generate(os.Stdin, os.Stdout, cfg.ScipionOut, cfg.Force); err != nil {
			log.Error("%v", err)
			return 1
		}
		log.Success("Wrote Scipion workflow config: %s", cfg.ScipionOut)
		return 0
	}

	// Resolve and validate paths: the project must exist before anything
	// runs, scratch is created if needed, and neither scratch nor storage
	// may live inside the project (prevents re-discovering our own output).
	projectAbs, err := absPath(cfg.ProjectDir)
	if err != nil {
		log.Error("Project directory not found: %s", cfg.ProjectDir)
		return 1
	}
	if err := os.MkdirAll(cfg.ScratchDir, 0o755); err != nil {
		log.Error("Cannot create scratch directory: %s", cfg.ScratchDir)
		return 1
	}
	scratchAbs, err := absPath(cfg.ScratchDir)
	if err != nil {
		log.Error("Cannot resolve scratch path: %s", cfg.ScratchDir)
		return 1
	}
	storageAbs := ""
	if cfg.StorageDir != "" {
		if err := os.MkdirAll(cfg.StorageDir, 0o755); err != nil {
			log.Error("Cannot create storage directory: %s", cfg.StorageDir)
			return 1
		}
		if storageAbs, err = absPath(cfg.StorageDir); err != nil {
			log.Error("Cannot resolve storage path: %s", cfg.StorageDir)
			return 1
		}
	}
	if err := cfg.ValidateLayout(projectAbs, scratchAbs, storageAbs); err != nil {
		log.Error("%v", err)
		return 1
	}

	log.Info("=== cryoem-pipeline v%s (%s) ===", version, commit)

	// Fail fast if IMOD or lbzip2 are unavailable or too old.
	if err := check.CheckDeps(&cfg); err != nil {
		log.Error("%v", err)
		return 1
	}

	// Phase 3: Signal handling — cancel context on SIGINT/SIGTERM so the
	// pipeline can stop between units without leaving partial output.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Warn("Received interrupt, finishing current unit…")
		cancel()
	}()

	// Phase 4: Run pipeline (discover → group → per-unit stages).
	runner := pipeline.New(&cfg, log)
	stats, err := runner.Start(ctx)
	if err != nil {
		log.Error("%v", err)
		return 1
	}

	if stats.Failed > 0 {
		return 1
	}
	return 0
}

// absPath returns the absolute, symlink-resolved path for safe comparison
// of project vs scratch/storage hierarchies.
func absPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
