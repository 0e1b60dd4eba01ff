package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetupAndWrite(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	if err := SetupLogger(logPath); err != nil {
		t.Fatalf("SetupLogger() error: %v", err)
	}

	LogInfo("info message %d", 42)
	DebugLog("debug message")
	LogWarning("warning message")
	LogError("error message")
	LogImageProcessed("/photos/a.png", true, "")
	LogImageProcessed("/photos/b.png", false, "decode failed")

	CloseLogger()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("cannot read log file: %v", err)
	}
	content := string(data)

	for _, want := range []string{
		"info message 42",
		"debug message",
		"warning message",
		"error message",
		"PROCESSED: /photos/a.png",
		"FAILED: /photos/b.png",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("log file missing %q", want)
		}
	}
}

func TestLoggingWithoutSetup(t *testing.T) {
	// Must not panic when no logger is configured.
	LogInfo("dropped")
	DebugLog("dropped")
	LogError("dropped")
	LogWarning("dropped")
	LogImageProcessed("/x.png", true, "")
}

func TestSetupTwice(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	if err := SetupLogger(logPath); err != nil {
		t.Fatalf("SetupLogger() error: %v", err)
	}
	defer CloseLogger()

	if err := SetupLogger(filepath.Join(t.TempDir(), "other.log")); err != nil {
		t.Errorf("second SetupLogger() error: %v", err)
	}
}
