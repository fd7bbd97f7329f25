package imod

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
)

// ExecResult holds the outcome of a single external-tool invocation.
type ExecResult struct {
	Stdout string
	Stderr string
	Err    error
}

// Execute runs the command described by args (args[0] is resolved on PATH)
// and blocks until it exits. Stdout and stderr are always captured; when
// verbose is set, stderr is additionally tee'd to os.Stderr in real time so
// the operator can watch newstack progress.
func Execute(ctx context.Context, verbose bool, args []string) ExecResult {
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	if verbose {
		cmd.Stderr = io.MultiWriter(&stderrBuf, os.Stderr)
	} else {
		cmd.Stderr = &stderrBuf
	}

	err := cmd.Run()
	return ExecResult{
		Stdout: stdoutBuf.String(),
		Stderr: stderrBuf.String(),
		Err:    err,
	}
}

// Output combines captured stdout and stderr for failure reporting. When
// both streams are empty (e.g. the binary could not be launched at all),
// the execution error stands in so the failure record is never blank.
func (r ExecResult) Output() string {
	if r.Stdout == "" && r.Stderr == "" {
		if r.Err != nil {
			return r.Err.Error()
		}
		return ""
	}
	if r.Stdout == "" {
		return r.Stderr
	}
	if r.Stderr == "" {
		return r.Stdout
	}
	return r.Stdout + "\n" + r.Stderr
}
