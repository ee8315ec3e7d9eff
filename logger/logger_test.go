package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"phoneprice/config"
)

func TestNewWritesRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "phoneprice.log")
	log, err := New(config.LogConfig{Level: "info", File: path, MaxSizeMB: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	log.Info("model loaded")
	log.Debug("hidden below info")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(data), "model loaded") {
		t.Fatalf("expected log line in file, got %q", data)
	}
	if strings.Contains(string(data), "hidden below info") {
		t.Fatalf("debug line should be filtered at info level")
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New(config.LogConfig{Level: "chatty"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
