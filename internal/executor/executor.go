// Package executor spawns the target interpreter on a composite script and
// classifies the ways that can fail.
package executor

import (
	"context"
	"errors"
	"os"
	"os/exec"

	"envcap/internal/cmdexec"
	"envcap/internal/dialect"
)

// Execute runs script in the interpreter described by d and returns the
// captured stdout and stderr.
//
// A composed noop is appended to the script first, so the last executed
// statement is the same regardless of what the user input was. Failures are
// classified: *SpawnError when the interpreter could not be started at all,
// *ExecutionError when it ran and exited non-zero. Neither is retried; the
// user input already ran once and may not be idempotent.
func Execute(ctx context.Context, c cmdexec.Commander, d dialect.Dialect, script string) (stdout, stderr []byte, err error) {
	script += d.Compose(d.Noop)

	stdout, stderr, err = c.Run(ctx, d.Path, d.Args(script)...)
	if err != nil {
		if IsNotFound(err) || IsPermissionDenied(err) {
			return stdout, stderr, &SpawnError{Interpreter: d.Path, Err: err}
		}
		return stdout, stderr, &ExecutionError{Interpreter: d.Path, Stderr: stderr, Err: err}
	}
	return stdout, stderr, nil
}

// IsNotFound reports whether the error indicates the interpreter was not
// found on PATH.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist)
}

// IsPermissionDenied reports whether the error indicates the interpreter
// exists but is not executable.
func IsPermissionDenied(err error) bool {
	return errors.Is(err, os.ErrPermission)
}
