// Package check provides system diagnostics (--check mode) and pre-pipeline
// dependency validation (CheckDeps) for the IMOD tools, lbzip2, and the
// scratch/storage directories.
package check

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	goversion "github.com/hashicorp/go-version"

	"github.com/abcsFrederick/cryoem-pipeline/internal/config"
)

// MinIMODVersion is the oldest IMOD release whose newstack arguments this
// pipeline relies on.
const MinIMODVersion = "4.9.0"

// Sentinel errors returned by CheckDeps when a prerequisite is missing.
var (
	ErrNewstackNotFound = errors.New("newstack (IMOD) not found on PATH")
	ErrHeaderNotFound   = errors.New("header (IMOD) not found on PATH")
	ErrLbzip2NotFound   = errors.New("lbzip2 not found on PATH")
)

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(bool, string, ...interface{})
}

// RunCheck runs the interactive --check flow: prints availability of the
// IMOD tools, lbzip2, the installed IMOD version against the floor, and
// scratch/storage reachability. Returns false if any required item failed.
func RunCheck(cfg *config.Config, log Logger) bool {
	log.Info("=== System Check ===")

	ok := checkTool(log, "newstack")
	ok = checkTool(log, "header") && ok
	ok = checkTool(log, "lbzip2") && ok
	ok = checkIMODVersion(log) && ok
	checkDirs(cfg, log)
	return ok
}

// checkTool verifies a binary is on PATH and logs where it resolved.
func checkTool(log Logger, name string) bool {
	path, err := exec.LookPath(name)
	if err != nil {
		log.Error("%s not found on PATH", name)
		return false
	}
	log.Success("%s: %s", name, path)
	return true
}

// checkIMODVersion reads and compares the installed IMOD version. An unset
// IMOD_DIR is a warning, not a failure, since some sites put the tools on
// PATH without the standard install layout.
func checkIMODVersion(log Logger) bool {
	v, err := IMODVersion()
	if err != nil {
		if errors.Is(err, errIMODDirUnset) {
			log.Warn("IMOD_DIR not set; cannot verify IMOD >= %s", MinIMODVersion)
			return true
		}
		log.Error("IMOD version: %v", err)
		return false
	}
	floor := goversion.Must(goversion.NewVersion(MinIMODVersion))
	if v.LessThan(floor) {
		log.Error("IMOD %s is older than required %s", v, MinIMODVersion)
		return false
	}
	log.Success("IMOD %s (>= %s)", v, MinIMODVersion)
	return true
}

// checkDirs reports scratch writability and storage reachability.
func checkDirs(cfg *config.Config, log Logger) {
	if cfg.ScratchDir != "" {
		if err := writableDir(cfg.ScratchDir); err != nil {
			log.Warn("Scratch %s not writable: %v", cfg.ScratchDir, err)
		} else {
			log.Success("Scratch writable: %s", cfg.ScratchDir)
		}
	}
	if cfg.StorageDir != "" {
		if fi, err := os.Stat(cfg.StorageDir); err != nil || !fi.IsDir() {
			log.Warn("Storage not reachable: %s", cfg.StorageDir)
		} else {
			log.Success("Storage reachable: %s", cfg.StorageDir)
		}
	}
}

// CheckDeps is the pre-pipeline validation: newstack, header, and (when
// compression is enabled) lbzip2 must resolve on PATH, and the installed
// IMOD must meet the version floor when IMOD_DIR is set. Every failure is
// collected so the operator sees all missing prerequisites at once.
func CheckDeps(cfg *config.Config) error {
	var result *multierror.Error

	if _, err := exec.LookPath("newstack"); err != nil {
		result = multierror.Append(result, ErrNewstackNotFound)
	}
	if _, err := exec.LookPath("header"); err != nil {
		result = multierror.Append(result, ErrHeaderNotFound)
	}
	if cfg.Compress {
		if _, err := exec.LookPath("lbzip2"); err != nil {
			result = multierror.Append(result, ErrLbzip2NotFound)
		}
	}

	if v, err := IMODVersion(); err == nil {
		floor := goversion.Must(goversion.NewVersion(MinIMODVersion))
		if v.LessThan(floor) {
			result = multierror.Append(result,
				fmt.Errorf("IMOD %s is older than required %s", v, MinIMODVersion))
		}
	} else if !errors.Is(err, errIMODDirUnset) {
		result = multierror.Append(result, err)
	}

	return result.ErrorOrNil()
}

var errIMODDirUnset = errors.New("IMOD_DIR is not set")

// IMODVersion reads $IMOD_DIR/VERSION, the file every standard IMOD install
// carries, and parses it. Returns errIMODDirUnset when the env var is empty.
func IMODVersion() (*goversion.Version, error) {
	dir := os.Getenv("IMOD_DIR")
	if dir == "" {
		return nil, errIMODDirUnset
	}
	raw, err := os.ReadFile(filepath.Join(dir, "VERSION"))
	if err != nil {
		return nil, fmt.Errorf("read IMOD version: %w", err)
	}
	v, err := goversion.NewVersion(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("parse IMOD version %q: %w", strings.TrimSpace(string(raw)), err)
	}
	return v, nil
}

// writableDir verifies dir exists (creating it if needed) and accepts a
// temp file.
func writableDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".check-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
