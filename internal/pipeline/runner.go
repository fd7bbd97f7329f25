package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abcsFrederick/cryoem-pipeline/internal/config"
	"github.com/abcsFrederick/cryoem-pipeline/internal/display"
	"github.com/abcsFrederick/cryoem-pipeline/internal/imod"
	"github.com/abcsFrederick/cryoem-pipeline/internal/lbzip2"
	"github.com/abcsFrederick/cryoem-pipeline/internal/logging"
	"github.com/abcsFrederick/cryoem-pipeline/internal/naming"
	"github.com/abcsFrederick/cryoem-pipeline/internal/plan"
	"github.com/abcsFrederick/cryoem-pipeline/internal/probe"
	"github.com/abcsFrederick/cryoem-pipeline/internal/transfer"
)

// settlePoll is how often a not-yet-settled file is re-checked.
const settlePoll = 2 * time.Second

// ErrAlreadyStarted is returned by Start on a Runner that has run before.
var ErrAlreadyStarted = errors.New("pipeline run has already been started")

type runState int

const (
	stateIdle runState = iota
	stateRunning
	stateCompleted
)

// Runner is the single-run batch controller. It moves Idle → Running on
// Start, processes every work unit strictly in discovery order, and ends
// Completed with the accumulated stats. A Runner cannot be reused.
type Runner struct {
	cfg   *config.Config
	log   *logging.Logger
	state runState
}

// New returns an idle Runner for one project invocation.
func New(cfg *config.Config, log *logging.Logger) *Runner {
	return &Runner{cfg: cfg, log: log}
}

// Start discovers and groups the full unit list up front, then processes
// units sequentially. Discovery failures are fatal and returned; per-unit
// failures are recorded in the stats and processing continues. Zero
// candidates completes immediately with an empty, successful result.
func (r *Runner) Start(ctx context.Context) (*RunStats, error) {
	if r.state != stateIdle {
		return nil, ErrAlreadyStarted
	}
	r.state = stateRunning
	defer func() { r.state = stateCompleted }()

	stats := &RunStats{RunID: uuid.NewString()}

	files, err := Discover(r.cfg.ProjectDir, r.cfg.Pattern)
	if err != nil {
		return nil, err
	}

	groups := plan.GroupFiles(files, r.cfg.Frames)
	plans := plan.BuildPlans(r.cfg, groups, naming.NewCollisionResolver())
	stats.Total = len(plans)

	r.logBatchHeader(stats, len(files))

	for _, p := range plans {
		if ctx.Err() != nil {
			r.log.Warn("Interrupted")
			break
		}

		stats.Current = p.Index
		r.processUnit(ctx, p, stats)
	}

	r.logSummary(stats)
	return stats, nil
}

// processUnit drives one work unit through settle → import → stack →
// compress → export → verify, recording exactly one UnitResult.
func (r *Runner) processUnit(ctx context.Context, p plan.UnitPlan, stats *RunStats) {
	cfg := r.cfg
	log := r.log

	frameLabel := "1 file"
	if len(p.Members) > 1 {
		frameLabel = fmt.Sprintf("%d frames", len(p.Members))
	}
	log.Info("[%d/%d] %s (%s)", p.Index, stats.Total, p.Name, frameLabel)

	if p.Partial {
		stats.PartialGroups++
		log.Warn("Partial group: %d of %d frames", len(p.Members), cfg.Frames)
	}
	if p.SkipPartial {
		log.Warn("Skip (partial group, --partial skip)")
		stats.record(UnitResult{Index: p.Index, Name: p.Name, Status: StatusSkipped,
			Stage: "group", Detail: "partial trailing group", Partial: true})
		fmt.Println()
		return
	}

	// Skip-existing check against the final artifact.
	if cfg.SkipExisting {
		final := p.StorageTarget
		if final == "" {
			final = p.FinalLocal
		}
		if _, err := os.Stat(final); err == nil {
			log.Warn("Skip (exists): %s", final)
			stats.record(UnitResult{Index: p.Index, Name: p.Name, Status: StatusSkipped,
				Stage: "existing", Partial: p.Partial})
			fmt.Println()
			return
		}
	}

	// Raw input size, and a cheap existence check before any work.
	var inputBytes int64
	for _, m := range p.Members {
		fi, err := os.Stat(m)
		if err != nil {
			r.fail(stats, p, "validate", fmt.Sprintf("file not found: %s", m), "")
			return
		}
		inputBytes += fi.Size()
	}

	if cfg.ShowFileStats {
		r.logFileStats(ctx, p)
	}

	if cfg.DryRun {
		if p.Stack {
			log.Success("[DRY] Would stack %d frames -> %s", len(p.Members), p.StackOutput)
		}
		if cfg.Compress {
			log.Success("[DRY] Would compress -> %s", naming.CompressedPath(p.CompressInput))
		}
		if p.StorageTarget != "" {
			log.Success("[DRY] Would export -> %s", p.StorageTarget)
		}
		stats.record(UnitResult{Index: p.Index, Name: p.Name, Status: StatusSucceeded, Partial: p.Partial})
		fmt.Println()
		return
	}

	start := time.Now()

	// --- Settle ---
	if cfg.SettleAge > 0 {
		for _, m := range p.Members {
			if err := waitSettled(ctx, m, time.Duration(cfg.SettleAge)*time.Second); err != nil {
				r.fail(stats, p, "settle", err.Error(), "")
				return
			}
		}
	}

	// --- Import: copy frames to scratch ---
	for i, m := range p.Members {
		if err := transfer.CopyFile(m, p.ScratchFrames[i]); err != nil {
			r.fail(stats, p, "import", err.Error(), "")
			return
		}
	}

	// --- Stack ---
	if p.Stack {
		res := imod.Execute(ctx, cfg.Verbose, imod.BuildStackArgs(cfg, p.ScratchFrames, p.StackOutput))
		if res.Err != nil {
			os.Remove(p.StackOutput)
			r.fail(stats, p, "stack", res.Output(), imod.Hint(res.Output()))
			return
		}
		// Frame copies are no longer needed once the stack exists.
		for _, m := range p.ScratchFrames {
			os.Remove(m)
		}
	}

	// --- Compress ---
	if cfg.Compress {
		res := lbzip2.Compress(ctx, cfg.Verbose, p.CompressInput, cfg.CompressThreads, cfg.Force)
		if res.Err != nil {
			os.Remove(naming.CompressedPath(p.CompressInput))
			r.fail(stats, p, "compress", res.Output(), imod.Hint(res.Output()))
			return
		}
	}

	finalInfo, err := os.Stat(p.FinalLocal)
	if err != nil {
		r.fail(stats, p, "compress", fmt.Sprintf("expected artifact missing: %v", err), "")
		return
	}

	// --- Export and verify ---
	if p.StorageTarget != "" {
		if err := transfer.CopyFile(p.FinalLocal, p.StorageTarget); err != nil {
			r.fail(stats, p, "export", err.Error(), "")
			return
		}
		if cfg.Verify {
			if err := transfer.VerifyCopy(p.FinalLocal, p.StorageTarget); err != nil {
				os.Remove(p.StorageTarget)
				r.fail(stats, p, "verify", err.Error(), "")
				return
			}
		}
	}

	stats.TotalInputBytes += inputBytes
	stats.TotalStoredBytes += finalInfo.Size()
	stats.record(UnitResult{Index: p.Index, Name: p.Name, Status: StatusSucceeded, Partial: p.Partial})

	ratio := int64(100)
	if inputBytes > 0 {
		ratio = finalInfo.Size() * 100 / inputBytes
	}
	log.Success("Done in %s (%d%% of raw input)", display.FormatDuration(time.Since(start)), ratio)
	fmt.Println()
}

// fail records a unit failure, logs the captured tool output tail, and lets
// the run continue with the next unit.
func (r *Runner) fail(stats *RunStats, p plan.UnitPlan, stage, detail, hint string) {
	r.log.Error("Stage %s failed: %s", stage, p.Name)
	if hint != "" {
		r.log.Error("  Hint: %s", hint)
	}
	r.logOutputTail(detail)
	stats.record(UnitResult{Index: p.Index, Name: p.Name, Status: StatusFailed,
		Stage: stage, Detail: detail, Hint: hint, Partial: p.Partial})
	fmt.Println()
}

// logOutputTail prints the last lines of captured tool output at ERROR level.
func (r *Runner) logOutputTail(output string) {
	output = strings.TrimSpace(output)
	if output == "" {
		return
	}
	lines := strings.Split(output, "\n")
	start := 0
	if len(lines) > 20 {
		start = len(lines) - 20
	}
	for _, l := range lines[start:] {
		r.log.Error("  %s", l)
	}
}

// logFileStats probes the first member's MRC header and logs dimensions.
// Probe failures are informational only.
func (r *Runner) logFileStats(ctx context.Context, p plan.UnitPlan) {
	pr, err := probe.Probe(ctx, p.Members[0])
	if err != nil {
		r.log.Debug(r.cfg.Verbose, "  header probe failed: %v", err)
		return
	}
	mode := fmt.Sprintf("mode %d", pr.Mode)
	if pr.ModeDesc != "" {
		mode = fmt.Sprintf("mode %d (%s)", pr.Mode, pr.ModeDesc)
	}
	if pr.PixelX > 0 {
		r.log.Info("  Image: %s | %s | %.3f A/px", pr.Dimensions(), mode, pr.PixelX)
	} else {
		r.log.Info("  Image: %s | %s", pr.Dimensions(), mode)
	}
}

// waitSettled blocks until path's mtime is at least minAge old, polling
// every settlePoll. Network filesystems make inotify unreliable here, so a
// plain mtime check is used instead.
func waitSettled(ctx context.Context, path string, minAge time.Duration) error {
	for {
		fi, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("settle check %s: %w", path, err)
		}
		age := time.Since(fi.ModTime())
		if age >= minAge {
			return nil
		}

		wait := minAge - age
		if wait > settlePoll {
			wait = settlePoll
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// --- Batch logging ---

func (r *Runner) logBatchHeader(stats *RunStats, fileCount int) {
	cfg := r.cfg
	log := r.log

	log.Info("Run %s", stats.RunID)
	log.Info("Found %d files, %d work units", fileCount, stats.Total)
	log.Info("Project: %s", cfg.ProjectDir)
	log.Info("Pattern: %s", cfg.Pattern)
	log.Info("Scratch: %s", cfg.ScratchDir)

	if cfg.Frames > 1 {
		log.Info("Stacking: %d frames per movie via newstack (partial groups: %s)",
			cfg.Frames, cfg.PartialPolicy)
	} else {
		log.Info("Stacking: off (input is pre-stacked)")
	}
	if cfg.Compress {
		log.Info("Compression: lbzip2 -n %d", cfg.CompressThreads)
	} else {
		log.Info("Compression: off")
	}
	if cfg.StorageDir != "" {
		verify := "with SHA-1 verification"
		if !cfg.Verify {
			verify = "unverified"
		}
		log.Info("Export: %s (%s)", cfg.StorageDir, verify)
	} else {
		log.Info("Export: off")
	}
	if cfg.SettleAge > 0 {
		log.Info("Settle window: %ds", cfg.SettleAge)
	}
	if cfg.DryRun {
		log.Warn("DRY RUN — no files will be written")
	}
	fmt.Println()
}

func (r *Runner) logSummary(stats *RunStats) {
	log := r.log

	log.Info("==============================")
	log.Info("Done: %d succeeded, %d skipped, %d failed", stats.Succeeded, stats.Skipped, stats.Failed)
	log.Info("  Work units processed: %d of %d", stats.Current, stats.Total)
	if stats.PartialGroups > 0 {
		log.Warn("  Partial groups: %d", stats.PartialGroups)
	}

	if r.cfg.DryRun {
		log.Info("  Archive size: n/a (dry run)")
	} else if stats.TotalInputBytes > 0 {
		saved := stats.SpaceSaved()
		if saved >= 0 {
			log.Success("  Archive size: %s (raw input %s, saved %s)",
				display.FormatBytes(stats.TotalStoredBytes),
				display.FormatBytes(stats.TotalInputBytes),
				display.FormatBytes(saved))
		} else {
			log.Warn("  Archive size: %s (grew by %s over raw input)",
				display.FormatBytes(stats.TotalStoredBytes),
				display.FormatBytes(-saved))
		}
	}

	if stats.Failed > 0 {
		log.Error("Failed units:")
		for _, res := range stats.Results {
			if res.Status != StatusFailed {
				continue
			}
			line := fmt.Sprintf("  #%d %s [%s]", res.Index, res.Name, res.Stage)
			if res.Hint != "" {
				line += ": " + res.Hint
			} else if res.Detail != "" {
				line += ": " + firstLine(res.Detail)
			}
			log.Error("%s", line)
		}
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.Index(s, "\n"); idx >= 0 {
		return s[:idx]
	}
	return s
}
