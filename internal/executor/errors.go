package executor

import (
	"fmt"
	"strings"
)

// SpawnError indicates the target interpreter could not be started: missing
// from PATH or not executable. Nothing ran, so no partial result exists.
type SpawnError struct {
	Interpreter string
	Err         error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("cannot spawn interpreter %s: %v", e.Interpreter, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// ExecutionError indicates the interpreter ran and failed: non-zero exit or
// a script error it reported. Stderr carries whatever diagnostics the
// interpreter produced.
type ExecutionError struct {
	Interpreter string
	Stderr      []byte
	Err         error
}

func (e *ExecutionError) Error() string {
	msg := fmt.Sprintf("interpreter %s failed: %v", e.Interpreter, e.Err)
	if diag := strings.TrimSpace(string(e.Stderr)); diag != "" {
		msg += "\n" + diag
	}
	return msg
}

func (e *ExecutionError) Unwrap() error { return e.Err }
