// Package diff compares two environment snapshots.
package diff

import "envcap/internal/snapshot"

// Changed returns the variables whose value is new or different in after.
// A key appears in the result exactly when it is present in after and either
// absent from before or bound to a different value. Comparison is plain
// string equality with no normalization.
//
// Variables removed between before and after are not reported: the result
// only ever communicates "set to this new value", never "unset".
func Changed(before, after snapshot.Snapshot) map[string]string {
	changed := make(map[string]string)
	for name, value := range after {
		if prev, ok := before[name]; ok && prev == value {
			continue
		}
		changed[name] = value
	}
	return changed
}
