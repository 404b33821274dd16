// Package emit renders a capture result for application by a consumer
// shell. The capture core never filters variables; the conventional
// exclusions live here, on the apply side.
package emit

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultSkip lists variables consumers conventionally do not re-apply:
// process-position and shell-session bookkeeping that is correct for the
// probed subprocess but wrong for the caller.
var DefaultSkip = []string{"PWD", "OLDPWD", "SHLVL", "_"}

// Filter returns a copy of vars without the named keys.
func Filter(vars map[string]string, skip []string) map[string]string {
	drop := make(map[string]bool, len(skip))
	for _, name := range skip {
		drop[name] = true
	}

	kept := make(map[string]string, len(vars))
	for name, value := range vars {
		if drop[name] {
			continue
		}
		kept[name] = value
	}
	return kept
}

// Exports renders vars as shell statements that set them in the consumer's
// session: `set -gx` for fish, `export` for bash/zsh/sh. Keys are sorted so
// the output is deterministic.
func Exports(vars map[string]string, shellType string) string {
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		switch shellType {
		case "fish":
			fmt.Fprintf(&b, "set -gx %s %q\n", name, vars[name])
		default: // bash, zsh, sh
			fmt.Fprintf(&b, "export %s=%q\n", name, vars[name])
		}
	}
	return b.String()
}
