package check

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abcsFrederick/cryoem-pipeline/internal/config"
)

func installTool(t *testing.T, bin, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(bin, name), []byte("#!/bin/sh\nexit 0\n"), 0o755))
}

func installAllTools(t *testing.T) {
	t.Helper()
	bin := t.TempDir()
	for _, name := range []string{"newstack", "header", "lbzip2"} {
		installTool(t, bin, name)
	}
	t.Setenv("PATH", bin)
}

func setIMODVersion(t *testing.T, version string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "VERSION"), []byte(version+"\n"), 0o644))
	t.Setenv("IMOD_DIR", dir)
}

func TestIMODVersion(t *testing.T) {
	setIMODVersion(t, "4.11.24")

	v, err := IMODVersion()
	require.NoError(t, err)
	assert.Equal(t, "4.11.24", v.String())
}

func TestIMODVersion_Unset(t *testing.T) {
	t.Setenv("IMOD_DIR", "")

	_, err := IMODVersion()
	assert.ErrorIs(t, err, errIMODDirUnset)
}

func TestIMODVersion_MissingFile(t *testing.T) {
	t.Setenv("IMOD_DIR", t.TempDir())

	_, err := IMODVersion()
	assert.Error(t, err)
}

func TestIMODVersion_Garbage(t *testing.T) {
	setIMODVersion(t, "not a version")

	_, err := IMODVersion()
	assert.Error(t, err)
}

func TestCheckDeps_AllPresent(t *testing.T) {
	installAllTools(t)
	setIMODVersion(t, "4.11.24")

	cfg := config.DefaultConfig()
	assert.NoError(t, CheckDeps(&cfg))
}

func TestCheckDeps_CollectsEveryFailure(t *testing.T) {
	t.Setenv("PATH", t.TempDir()) // nothing resolvable
	t.Setenv("IMOD_DIR", "")

	cfg := config.DefaultConfig()
	err := CheckDeps(&cfg)
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrNewstackNotFound)
	assert.ErrorIs(t, err, ErrHeaderNotFound)
	assert.ErrorIs(t, err, ErrLbzip2NotFound)
}

func TestCheckDeps_Lbzip2OnlyWhenCompressing(t *testing.T) {
	bin := t.TempDir()
	installTool(t, bin, "newstack")
	installTool(t, bin, "header")
	t.Setenv("PATH", bin)
	t.Setenv("IMOD_DIR", "")

	cfg := config.DefaultConfig()
	cfg.Compress = false
	assert.NoError(t, CheckDeps(&cfg))

	cfg.Compress = true
	assert.ErrorIs(t, CheckDeps(&cfg), ErrLbzip2NotFound)
}

func TestCheckDeps_VersionFloor(t *testing.T) {
	installAllTools(t)

	setIMODVersion(t, "4.8.3")
	cfg := config.DefaultConfig()
	err := CheckDeps(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "older than required")

	setIMODVersion(t, "4.9.0")
	assert.NoError(t, CheckDeps(&cfg))
}

func TestCheckDeps_UnsetIMODDirIsNotFatal(t *testing.T) {
	installAllTools(t)
	t.Setenv("IMOD_DIR", "")

	cfg := config.DefaultConfig()
	assert.NoError(t, CheckDeps(&cfg))
}

// recordingLogger captures log lines per level for RunCheck assertions.
type recordingLogger struct {
	errors    int
	warns     int
	successes int
}

func (r *recordingLogger) Info(string, ...interface{})        {}
func (r *recordingLogger) Success(string, ...interface{})     { r.successes++ }
func (r *recordingLogger) Warn(string, ...interface{})        { r.warns++ }
func (r *recordingLogger) Error(string, ...interface{})       { r.errors++ }
func (r *recordingLogger) Debug(bool, string, ...interface{}) {}

func TestRunCheck_AllGreen(t *testing.T) {
	installAllTools(t)
	setIMODVersion(t, "4.11.24")

	cfg := config.DefaultConfig()
	cfg.ScratchDir = t.TempDir()
	cfg.StorageDir = t.TempDir()

	log := &recordingLogger{}
	assert.True(t, RunCheck(&cfg, log))
	assert.Zero(t, log.errors)
	// 3 tools + version + scratch + storage.
	assert.Equal(t, 6, log.successes)
}

func TestRunCheck_ReportsMissingTools(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	t.Setenv("IMOD_DIR", "")

	cfg := config.DefaultConfig()
	log := &recordingLogger{}
	assert.False(t, RunCheck(&cfg, log))
	assert.Equal(t, 3, log.errors)
	assert.Equal(t, 1, log.warns, "unset IMOD_DIR warns instead of failing")
}
