// Package capture orchestrates the environment-diff-via-subprocess
// protocol: snapshot the target interpreter's environment, run user input,
// snapshot again, and report which variables the input changed or added.
package capture

import (
	"context"
	"fmt"
	"os"

	"envcap/internal/cmdexec"
	"envcap/internal/dialect"
	"envcap/internal/diff"
	"envcap/internal/executor"
	"envcap/internal/snapshot"
)

// Options configures one capture run. Zero-valued slots fall back to
// defaults; Dialect is the only slot a caller normally sets.
type Options struct {
	// Dialect describes the target interpreter. Nil strategy slots are
	// filled with defaults before use.
	Dialect dialect.Dialect

	// Commander spawns the interpreter. Default: cmdexec.RealCommander.
	Commander cmdexec.Commander

	// ProbePath is the binary re-invoked by the default probe to
	// serialize the interpreter's environment. Default: os.Executable().
	ProbePath string

	// TempDir is where the two snapshot files are created.
	// Default: os.TempDir().
	TempDir string
}

// Result is the outcome of a successful capture.
type Result struct {
	// Vars maps each variable changed or added by the input to its new
	// value. Variables the input removed do not appear.
	Vars map[string]string

	// Stdout and Stderr are the interpreter's captured output, surfaced
	// for diagnostics only.
	Stdout []byte
	Stderr []byte
}

// TempFileError indicates a snapshot temp file could not be created.
// It is always fatal and always precedes the subprocess spawn.
type TempFileError struct {
	Path string
	Err  error
}

func (e *TempFileError) Error() string {
	return fmt.Sprintf("temp snapshot file %s: %v", e.Path, e.Err)
}

func (e *TempFileError) Unwrap() error { return e.Err }

// Run executes input inside the target interpreter and returns the
// variables that execution changed or added.
//
// The composite script is probe(before) + preprocess(input) + probe(after);
// the executor appends a fixed noop so shell-internal bookkeeping variables
// never differ just because the final command differed. Both snapshot files
// are removed on every exit path once created; removal is best-effort and
// never overrides an otherwise successful result. The caller's own process
// environment is never touched: all snapshotting happens inside the spawned
// interpreter.
//
// There is no internal timeout; ctx cancellation is the only way to bound a
// hanging subprocess.
func Run(ctx context.Context, input string, opts Options) (*Result, error) {
	d := opts.Dialect.WithDefaults()

	commander := opts.Commander
	if commander == nil {
		commander = &cmdexec.RealCommander{}
	}

	probePath := opts.ProbePath
	if probePath == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("resolve probe path: %w", err)
		}
		probePath = exe
	}

	beforeFile, err := tempSnapshotFile(opts.TempDir, "envcap-before-*.yaml")
	if err != nil {
		return nil, err
	}
	defer os.Remove(beforeFile)

	afterFile, err := tempSnapshotFile(opts.TempDir, "envcap-after-*.yaml")
	if err != nil {
		return nil, err
	}
	defer os.Remove(afterFile)

	script := d.Probe(probePath, beforeFile) +
		d.Preprocess(input) +
		d.Probe(probePath, afterFile)

	stdout, stderr, err := executor.Execute(ctx, commander, d, script)
	if err != nil {
		return nil, err
	}

	before, err := snapshot.Load(beforeFile)
	if err != nil {
		return nil, err
	}
	after, err := snapshot.Load(afterFile)
	if err != nil {
		return nil, err
	}

	return &Result{
		Vars:   diff.Changed(before, after),
		Stdout: stdout,
		Stderr: stderr,
	}, nil
}

// tempSnapshotFile allocates a uniquely-named file for one snapshot. The
// file is created empty here and overwritten by the probe; a file the probe
// never touched fails the later parse rather than reading as an empty
// environment.
func tempSnapshotFile(dir, pattern string) (string, error) {
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", &TempFileError{Path: pattern, Err: err}
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", &TempFileError{Path: path, Err: err}
	}
	return path, nil
}
