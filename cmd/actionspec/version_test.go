package main

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestVersionCommandRegistered(t *testing.T) {
	for _, cmd := range rootCmd.Commands() {
		if cmd.Use == "version" {
			if cmd.Run == nil {
				t.Error("version command has no Run function")
			}
			return
		}
	}
	t.Fatal("version command is not registered on the root command")
}

func TestVersionCommandOutput(t *testing.T) {
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	Version, GitCommit, BuildDate = "9.9.9-test", "deadbeef", "2026-08-01"
	defer func() {
		Version, GitCommit, BuildDate = origVersion, origCommit, origDate
	}()

	out := captureStdout(t, func() {
		versionCmd.Run(versionCmd, nil)
	})

	for _, want := range []string{
		"Sentinel 9.9.9-test",
		"Git Commit: deadbeef",
		"Build Date: 2026-08-01",
		"Go Version: go",
		"OS/Arch: ",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("version output missing %q:\n%s", want, out)
		}
	}
}

func TestRootCommandCarriesVersion(t *testing.T) {
	if rootCmd.Version != Version {
		t.Errorf("rootCmd.Version = %q, want %q", rootCmd.Version, Version)
	}
}

// captureStdout redirects os.Stdout around fn. The version command prints
// with fmt.Printf, so SetOut on the cobra command is not enough.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()

	if err := w.Close(); err != nil {
		t.Fatalf("failed to close pipe writer: %v", err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		t.Fatalf("failed to read captured output: %v", err)
	}
	return buf.String()
}
