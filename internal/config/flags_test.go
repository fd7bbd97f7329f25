package config

import (
	"os"
	"testing"
)

// parseArgs runs ParseFlags against a synthetic command line.
func parseArgs(t *testing.T, args ...string) (Config, error) {
	t.Helper()
	oldArgs := os.Args
	t.Cleanup(func() { os.Args = oldArgs })
	os.Args = append([]string{"cryoem-pipeline"}, args...)

	cfg := DefaultConfig()
	err := ParseFlags(&cfg, "test")
	return cfg, err
}

func TestParseFlags_LongForms(t *testing.T) {
	cfg, err := parseArgs(t,
		"--project", "/data/session42",
		"--pattern", "GridSquare_*/Data/*.mrc",
		"--frames", "4",
		"--partial", "skip",
		"--storage", "/mnt/moab/session42",
		"--newstack-args", "-mode 2",
		"--compress-threads", "4",
		"--settle-age", "30",
	)
	if err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}

	if cfg.ProjectDir != "/data/session42" {
		t.Errorf("ProjectDir = %q", cfg.ProjectDir)
	}
	if cfg.Pattern != "GridSquare_*/Data/*.mrc" {
		t.Errorf("Pattern = %q", cfg.Pattern)
	}
	if cfg.Frames != 4 {
		t.Errorf("Frames = %d", cfg.Frames)
	}
	if cfg.PartialPolicy != PartialSkip {
		t.Errorf("PartialPolicy = %q", cfg.PartialPolicy)
	}
	if cfg.StorageDir != "/mnt/moab/session42" {
		t.Errorf("StorageDir = %q", cfg.StorageDir)
	}
	if cfg.NewstackArgs != "-mode 2" {
		t.Errorf("NewstackArgs = %q", cfg.NewstackArgs)
	}
	if cfg.CompressThreads != 4 {
		t.Errorf("CompressThreads = %d", cfg.CompressThreads)
	}
	if cfg.SettleAge != 30 {
		t.Errorf("SettleAge = %d", cfg.SettleAge)
	}
}

func TestParseFlags_ShortAliases(t *testing.T) {
	cfg, err := parseArgs(t, "-P", "/data/p", "-g", "*.mrc", "-n", "2", "-d", "-v")
	if err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}

	if cfg.ProjectDir != "/data/p" || cfg.Pattern != "*.mrc" || cfg.Frames != 2 {
		t.Errorf("short aliases not applied: %+v", cfg)
	}
	if !cfg.DryRun {
		t.Error("-d should enable DryRun")
	}
	if !cfg.Verbose {
		t.Error("-v should enable Verbose")
	}
}

func TestParseFlags_NegatedFlags(t *testing.T) {
	cfg, err := parseArgs(t, "--no-compress", "--no-verify", "--no-settle", "--no-stats")
	if err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}

	if cfg.Compress {
		t.Error("--no-compress should clear Compress")
	}
	if cfg.Verify {
		t.Error("--no-verify should clear Verify")
	}
	if cfg.SettleAge != 0 {
		t.Errorf("--no-settle should zero SettleAge, got %d", cfg.SettleAge)
	}
	if cfg.ShowFileStats {
		t.Error("--no-stats should clear ShowFileStats")
	}
}

func TestParseFlags_Force(t *testing.T) {
	cfg, err := parseArgs(t, "--force")
	if err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	if cfg.SkipExisting {
		t.Error("--force should clear SkipExisting")
	}
	if !cfg.Force {
		t.Error("--force should set Force")
	}
}

func TestParseFlags_ColorModes(t *testing.T) {
	cfg, err := parseArgs(t, "--color")
	if err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	if cfg.ColorMode != ColorAlways {
		t.Errorf("--color: ColorMode = %q, want always", cfg.ColorMode)
	}

	cfg, err = parseArgs(t, "--no-color")
	if err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	if cfg.ColorMode != ColorNever {
		t.Errorf("--no-color: ColorMode = %q, want never", cfg.ColorMode)
	}

	// --no-color wins when both are given.
	cfg, err = parseArgs(t, "--color", "--no-color")
	if err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	if cfg.ColorMode != ColorNever {
		t.Errorf("both: ColorMode = %q, want never", cfg.ColorMode)
	}
}

func TestParseFlags_RejectsPositionalArgs(t *testing.T) {
	_, err := parseArgs(t, "--frames", "2", "stray.mrc")
	if err == nil {
		t.Error("ParseFlags should reject positional arguments")
	}
}

func TestParseFlags_InvalidPartialPolicy(t *testing.T) {
	_, err := parseArgs(t, "--partial", "pad")
	if err == nil {
		t.Error("ParseFlags should reject unknown partial policy")
	}
}

func TestPartialValue(t *testing.T) {
	p := PartialProcess
	v := partialValue{&p}

	if v.String() != "process" {
		t.Errorf("String() = %q", v.String())
	}
	if err := v.Set("SKIP"); err != nil {
		t.Errorf("Set(SKIP): %v", err)
	}
	if p != PartialSkip {
		t.Errorf("policy = %q after Set", p)
	}
	if err := v.Set("invalid"); err == nil {
		t.Error("Set(invalid) should fail")
	}
}
