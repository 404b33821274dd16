// Package snapshot reads and writes flat environment snapshots.
// A snapshot is one interpreter's full set of environment variables at a
// point in time, serialized to a file by the probe and parsed back by the
// orchestrator.
package snapshot

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrSnapshotMissing is returned when a snapshot file does not exist.
// The usual cause is a probe command that never ran inside the target
// interpreter.
var ErrSnapshotMissing = errors.New("snapshot file missing")

// Snapshot maps environment variable names to their values.
type Snapshot map[string]string

// ParseError indicates a snapshot file existed but could not be decoded.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("snapshot %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// FromEnviron converts a KEY=VALUE slice (as returned by os.Environ) into a
// Snapshot. Entries without '=' and entries with an empty name are skipped;
// Windows puts hidden per-drive entries like "=C:=C:\" in the environment.
func FromEnviron(environ []string) Snapshot {
	snap := make(Snapshot, len(environ))
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}
		snap[name] = value
	}
	return snap
}

// Write serializes the snapshot to path as YAML. It is called by the probe
// subcommand while running inside the target interpreter's environment.
func Write(path string, snap Snapshot) error {
	data, err := yaml.Marshal(snap)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// Load reads and decodes a snapshot file. A missing file maps to
// ErrSnapshotMissing; undecodable content maps to *ParseError. Load never
// returns a partial snapshot.
//
// The decoder is YAML, which is a superset of JSON, so probes that emit
// JSON (PowerShell's ConvertTo-Json) parse with the same call.
func Load(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSnapshotMissing, path)
		}
		return nil, err
	}

	// The probe always writes a complete document; even an empty
	// environment serializes as "{}". Empty content therefore means the
	// probe never ran, not that the environment was empty.
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &ParseError{Path: path, Err: errors.New("empty snapshot file")}
	}

	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	if snap == nil {
		snap = Snapshot{}
	}
	return snap, nil
}
