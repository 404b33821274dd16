// Package cmdexec abstracts subprocess execution for testability.
// Production code uses Commander; tests inject FakeCommander from testutil.
package cmdexec

import (
	"bytes"
	"context"
	"os/exec"
)

// Commander abstracts spawning an external interpreter.
type Commander interface {
	// Run executes the command and returns its captured stdout and
	// stderr. A non-nil err carries the spawn failure or the non-zero
	// exit; stdout/stderr are returned as captured either way.
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// RealCommander executes actual subprocesses via os/exec.
type RealCommander struct{}

// Run executes the command with exec.CommandContext, capturing stdout and
// stderr separately.
func (c *RealCommander) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err := cmd.Run()
	return outBuf.Bytes(), errBuf.Bytes(), err
}
