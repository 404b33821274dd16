// Package testutil provides test doubles shared across packages.
package testutil

import (
	"context"
	"fmt"
	"strings"
)

// Call records one invocation seen by FakeCommander.
type Call struct {
	Name string
	Args []string
}

// Script returns the last argument of the call, which for the interpreters
// under test is the composite script.
func (c Call) Script() string {
	if len(c.Args) == 0 {
		return ""
	}
	return c.Args[len(c.Args)-1]
}

// FakeCommander is a cmdexec.Commander that never spawns a process.
// The Hook, when set, runs in place of the subprocess and can create the
// side effects a real interpreter would (e.g. write snapshot files).
type FakeCommander struct {
	// Hook is invoked with each call; its return values become Run's.
	Hook func(call Call) (stdout, stderr []byte, err error)

	// Calls records every invocation, in order.
	Calls []Call
}

// Run records the call and delegates to Hook. Without a Hook, unmatched
// calls fail loudly so tests never silently succeed.
func (c *FakeCommander) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	call := Call{Name: name, Args: args}
	c.Calls = append(c.Calls, call)

	if c.Hook != nil {
		return c.Hook(call)
	}
	return nil, nil, fmt.Errorf("FakeCommander: no hook registered for %q", name+" "+strings.Join(args, " "))
}
