package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.HasPrefix(out.String(), "agentchat dev (") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestNewLoggerWritesToFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "chat.log")
	logger, closeLog, err := newLogger(path)
	if err != nil {
		t.Fatalf("newLogger failed: %v", err)
	}
	logger.Info("hello", "k", "v")
	closeLog()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"hello"`) {
		t.Fatalf("unexpected log %q", data)
	}
}

func TestNewLoggerDiscardsWithoutFile(t *testing.T) {
	t.Parallel()

	logger, closeLog, err := newLogger("")
	if err != nil || logger == nil {
		t.Fatalf("expected a discard logger, got %v", err)
	}
	closeLog()
}
