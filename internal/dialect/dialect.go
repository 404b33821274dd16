// Package dialect describes how to drive a particular shell interpreter:
// how to quote a command into a script fragment, how to preprocess raw user
// input, how to ask the interpreter to serialize its environment, and how to
// invoke the interpreter with a finished script.
//
// Every behavior is a strategy slot on Dialect with a late-bound default, so
// callers override only what a given shell does differently.
package dialect

import (
	"fmt"
	"strings"
)

// Dialect holds the per-shell strategies. Zero-valued slots are filled by
// WithDefaults; a Dialect built by hand is usable after one WithDefaults
// call.
type Dialect struct {
	// Name identifies the dialect ("bash", "fish", ...).
	Name string

	// Path is the interpreter executable name or path.
	Path string

	// Args builds the interpreter's argument vector for one script.
	// Default: ["-c", script].
	Args func(script string) []string

	// Compose converts command tokens into a script fragment for this
	// interpreter. The default wraps each token in single quotes, joins
	// with single spaces, and appends a newline. Tokens containing the
	// quote character itself are not escaped; that is a documented
	// limitation of the default policy, not an invariant to patch around.
	Compose func(command []string) string

	// Preprocess normalizes raw user input before it is embedded in the
	// composite script. Default: ensure a trailing newline, so the
	// fragment appended after the input never lands on the same source
	// line (an unterminated comment would otherwise swallow it).
	Preprocess func(raw string) string

	// Probe returns a script fragment that, when run by this interpreter,
	// serializes the interpreter's environment to file. The default
	// composes a re-invocation of the envcap binary itself
	// (`<probePath> env-dump <file>`): the child inherits the target
	// shell's environment and is the one known serializer available on
	// every platform. Shells with a better native mechanism override this.
	Probe func(probePath, file string) string

	// Noop is a trivial command appended after user input so the last
	// executed statement is identical across runs. Shells keep
	// per-command bookkeeping (status, duration counters) in the
	// environment; without a fixed epilogue those values would differ
	// solely because the final command differed.
	Noop []string
}

// WithDefaults returns a copy of d with every nil strategy slot bound to the
// default implementation.
func (d Dialect) WithDefaults() Dialect {
	if d.Args == nil {
		d.Args = func(script string) []string {
			return []string{"-c", script}
		}
	}
	if d.Compose == nil {
		d.Compose = PosixCompose
	}
	if d.Preprocess == nil {
		d.Preprocess = EnsureTrailingNewline
	}
	if d.Probe == nil {
		compose := d.Compose
		d.Probe = func(probePath, file string) string {
			return compose([]string{probePath, "env-dump", file})
		}
	}
	if d.Noop == nil {
		d.Noop = []string{"true"}
	}
	return d
}

// PosixCompose is the default token quoting: single quotes around each
// token, single spaces between, trailing newline. No escaping of embedded
// single quotes.
func PosixCompose(command []string) string {
	quoted := make([]string, len(command))
	for i, tok := range command {
		quoted[i] = "'" + tok + "'"
	}
	return strings.Join(quoted, " ") + "\n"
}

// PowerShellCompose quotes tokens for PowerShell's call operator: `& `
// prefix, single-quoted tokens with embedded quotes doubled.
func PowerShellCompose(command []string) string {
	quoted := make([]string, len(command))
	for i, tok := range command {
		quoted[i] = "'" + strings.ReplaceAll(tok, "'", "''") + "'"
	}
	return "& " + strings.Join(quoted, " ") + "\n"
}

// EnsureTrailingNewline appends a newline unless raw already ends with one.
func EnsureTrailingNewline(raw string) string {
	if strings.HasSuffix(raw, "\n") {
		return raw
	}
	return raw + "\n"
}

// powerShellProbe serializes the environment with PowerShell's own object
// serialization instead of re-invoking envcap. ConvertTo-Json output is
// valid YAML, so the regular snapshot loader reads it.
func powerShellProbe(_ string, file string) string {
	escaped := strings.ReplaceAll(file, "'", "''")
	return fmt.Sprintf(
		"$m = @{}; Get-ChildItem env: | ForEach-Object { $m[$_.Name] = $_.Value }; ConvertTo-Json $m | Set-Content -LiteralPath '%s'\n",
		escaped,
	)
}

func powerShellArgs(script string) []string {
	return []string{"-NoProfile", "-NonInteractive", "-Command", script}
}

func posix(name, path string) Dialect {
	return Dialect{Name: name, Path: path}.WithDefaults()
}

func powerShell(name, path string) Dialect {
	return Dialect{
		Name:    name,
		Path:    path,
		Args:    powerShellArgs,
		Compose: PowerShellCompose,
		Probe:   powerShellProbe,
		Noop:    []string{"cd", "."},
	}.WithDefaults()
}

// Builtins returns the dialects known out of the box, keyed by name.
func Builtins() map[string]Dialect {
	return map[string]Dialect{
		"sh":         posix("sh", "sh"),
		"bash":       posix("bash", "bash"),
		"zsh":        posix("zsh", "zsh"),
		"fish":       posix("fish", "fish"),
		"pwsh":       powerShell("pwsh", "pwsh"),
		"powershell": powerShell("powershell", "powershell"),
	}
}

// Lookup returns the built-in dialect with the given name.
func Lookup(name string) (Dialect, bool) {
	d, ok := Builtins()[name]
	return d, ok
}
