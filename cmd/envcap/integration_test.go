package main

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"envcap/internal/snapshot"
)

// Helper to build the envcap binary for integration tests
func buildEnvcapBinary(t *testing.T) string {
	t.Helper()
	tmpDir, err := os.MkdirTemp("", "envcap-bin-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	binPath := filepath.Join(tmpDir, "envcap")
	cmd := exec.Command("go", "build", "-o", binPath, ".")
	cmd.Dir = "."
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("Failed to build envcap binary: %v\nOutput: %s", err, output)
	}

	return binPath
}

func requireBash(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("bash"); err != nil {
		t.Skip("bash not available")
	}
}

// runEnvcap runs the built binary with an isolated temp dir, so the tests
// can assert snapshot cleanup.
func runEnvcap(t *testing.T, binPath, tmpDir string, args ...string) (string, string, error) {
	t.Helper()
	cmd := exec.Command(binPath, args...)
	cmd.Env = append(os.Environ(), "TMPDIR="+tmpDir, "ENVCAP_CONFIG="+filepath.Join(tmpDir, "no-config.toml"))

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func TestCaptureSingleAddition_Integration(t *testing.T) {
	requireBash(t)
	binPath := buildEnvcapBinary(t)
	tmpDir := t.TempDir()

	stdout, stderr, err := runEnvcap(t, binPath, tmpDir,
		"capture", "--shell", "bash", "--format", "json", "export ENVCAP_IT_FOO=bar")
	if err != nil {
		t.Fatalf("envcap capture failed: %v\nstderr: %s", err, stderr)
	}

	var vars map[string]string
	if err := json.Unmarshal([]byte(stdout), &vars); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, stdout)
	}
	if vars["ENVCAP_IT_FOO"] != "bar" {
		t.Errorf("vars = %v, want ENVCAP_IT_FOO=bar", vars)
	}
	if len(vars) != 1 {
		t.Errorf("vars = %v, want exactly one entry", vars)
	}
	if _, present := os.LookupEnv("ENVCAP_IT_FOO"); present {
		t.Error("test process environment was mutated")
	}

	assertNoSnapshotsLeft(t, tmpDir)
}

func TestCaptureNoop_Integration(t *testing.T) {
	requireBash(t)
	binPath := buildEnvcapBinary(t)
	tmpDir := t.TempDir()

	stdout, stderr, err := runEnvcap(t, binPath, tmpDir,
		"capture", "--shell", "bash", "--format", "json", "true")
	if err != nil {
		t.Fatalf("envcap capture failed: %v\nstderr: %s", err, stderr)
	}

	var vars map[string]string
	if err := json.Unmarshal([]byte(stdout), &vars); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, stdout)
	}
	if len(vars) != 0 {
		t.Errorf("vars = %v, want empty diff for noop input", vars)
	}

	assertNoSnapshotsLeft(t, tmpDir)
}

func TestCaptureOverwrite_Integration(t *testing.T) {
	requireBash(t)
	binPath := buildEnvcapBinary(t)
	tmpDir := t.TempDir()

	// Re-setting a variable to the value it already has must not appear.
	home := os.Getenv("HOME")
	stdout, stderr, err := runEnvcap(t, binPath, tmpDir,
		"capture", "--shell", "bash", "--format", "json", "export HOME="+home)
	if err != nil {
		t.Fatalf("envcap capture failed: %v\nstderr: %s", err, stderr)
	}

	var vars map[string]string
	if err := json.Unmarshal([]byte(stdout), &vars); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, stdout)
	}
	if _, ok := vars["HOME"]; ok {
		t.Errorf("vars = %v, unchanged HOME must not be reported", vars)
	}
}

func TestCaptureRemovalInvisible_Integration(t *testing.T) {
	requireBash(t)
	binPath := buildEnvcapBinary(t)
	tmpDir := t.TempDir()

	cmd := exec.Command(binPath, "capture", "--shell", "bash", "--format", "json", "unset ENVCAP_IT_DOOMED")
	cmd.Env = append(os.Environ(),
		"TMPDIR="+tmpDir,
		"ENVCAP_CONFIG="+filepath.Join(tmpDir, "no-config.toml"),
		"ENVCAP_IT_DOOMED=present")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("envcap capture failed: %v\nstderr: %s", err, stderr.String())
	}

	var vars map[string]string
	if err := json.Unmarshal(stdout.Bytes(), &vars); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, stdout.String())
	}
	if _, ok := vars["ENVCAP_IT_DOOMED"]; ok {
		t.Errorf("vars = %v, removed variables are not reported", vars)
	}
}

func TestCaptureFailingScript_Integration(t *testing.T) {
	requireBash(t)
	binPath := buildEnvcapBinary(t)
	tmpDir := t.TempDir()

	_, stderr, err := runEnvcap(t, binPath, tmpDir,
		"capture", "--shell", "bash", "exit 3")
	if err == nil {
		t.Fatal("envcap should fail when the script exits non-zero")
	}
	if stderr == "" {
		t.Error("expected diagnostic output on stderr")
	}

	assertNoSnapshotsLeft(t, tmpDir)
}

func TestCaptureUnknownShell_Integration(t *testing.T) {
	binPath := buildEnvcapBinary(t)
	tmpDir := t.TempDir()

	_, stderr, err := runEnvcap(t, binPath, tmpDir,
		"capture", "--shell", "klingon", "true")
	if err == nil {
		t.Fatal("envcap should reject unknown shell dialects")
	}
	if stderr == "" {
		t.Error("expected diagnostic output on stderr")
	}
}

func TestEnvDump_Integration(t *testing.T) {
	binPath := buildEnvcapBinary(t)
	tmpDir := t.TempDir()
	dumpFile := filepath.Join(tmpDir, "env.yaml")

	cmd := exec.Command(binPath, "env-dump", dumpFile)
	cmd.Env = append(os.Environ(), "ENVCAP_IT_MARKER=42")
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("env-dump failed: %v\n%s", err, output)
	}

	snap, err := snapshot.Load(dumpFile)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if snap["ENVCAP_IT_MARKER"] != "42" {
		t.Errorf("marker = %q, want 42", snap["ENVCAP_IT_MARKER"])
	}
}

// assertNoSnapshotsLeft verifies the cleanup discipline: no envcap snapshot
// files remain in the temp dir after a call, success or failure.
func assertNoSnapshotsLeft(t *testing.T, tmpDir string) {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(tmpDir, "envcap-*"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("snapshot files left behind: %v", matches)
	}
}
