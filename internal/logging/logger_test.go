package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "run.log")

	log, err := New(path, LevelDebug)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Info("operation started", "tasks", 3)
	log.WithTask("copy").Debug("unit credited", "delta", 1)
	if err := log.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d log lines, want 2", len(lines))
	}

	var first map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("first line is not JSON: %v", err)
	}
	if first["msg"] != "operation started" {
		t.Errorf("msg = %v, want %q", first["msg"], "operation started")
	}

	var second map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("second line is not JSON: %v", err)
	}
	if second["task"] != "copy" {
		t.Errorf("task attr = %v, want %q", second["task"], "copy")
	}
}

func TestLevelFiltering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")

	log, err := New(path, LevelWarn)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Debug("dropped")
	log.Info("dropped too")
	log.Warn("kept")
	if err := log.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := strings.TrimSpace(string(data))
	if strings.Count(content, "\n")+1 != 1 {
		t.Errorf("got %q, want a single WARN line", content)
	}
	if !strings.Contains(content, "kept") {
		t.Errorf("WARN line missing: %q", content)
	}
}

func TestNopDiscards(t *testing.T) {
	log := Nop()
	log.Info("nowhere")
	if err := log.Close(); err != nil {
		t.Errorf("Close on nop logger: %v", err)
	}
}
