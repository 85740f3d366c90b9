package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/worktally/worktally/internal/progress"
)

const validManifest = `
operation: "Copying files"
tasks:
  - key: scan
    units: 40
    weight: 1
  - key: copy
    units: 1200
    weight: 8
  - key: verify
    units: 40
    weight: 1
`

func TestParse(t *testing.T) {
	m, err := Parse([]byte(validManifest))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if m.Operation != "Copying files" {
		t.Errorf("Operation = %q, want %q", m.Operation, "Copying files")
	}
	if len(m.Tasks) != 3 {
		t.Fatalf("len(Tasks) = %d, want 3", len(m.Tasks))
	}
	if m.Tasks[1].Key != "copy" || m.Tasks[1].Units != 1200 || m.Tasks[1].Weight != 8 {
		t.Errorf("Tasks[1] = %+v, want copy/1200/8", m.Tasks[1])
	}
	if m.TotalWeight() != 10 {
		t.Errorf("TotalWeight = %d, want 10", m.TotalWeight())
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"no tasks", "operation: x\ntasks: []\n"},
		{"empty key", "tasks:\n  - key: \"\"\n    units: 1\n    weight: 1\n"},
		{"duplicate key", "tasks:\n  - key: a\n    units: 1\n    weight: 1\n  - key: a\n    units: 2\n    weight: 2\n"},
		{"zero units", "tasks:\n  - key: a\n    units: 0\n    weight: 1\n"},
		{"negative weight", "tasks:\n  - key: a\n    units: 1\n    weight: -1\n"},
		{"bad yaml", "tasks: ["},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if err == nil {
				t.Fatal("Parse should fail")
			}
			if tt.name != "bad yaml" && !errors.Is(err, ErrInvalidManifest) {
				t.Errorf("error = %v, want ErrInvalidManifest", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.yaml")
	if err := os.WriteFile(path, []byte(validManifest), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(m.Tasks) != 3 {
		t.Errorf("len(Tasks) = %d, want 3", len(m.Tasks))
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("Load should fail for a missing file")
	}
}

func TestTree(t *testing.T) {
	m, err := Parse([]byte(validManifest))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	tree, err := m.Tree()
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}

	if got := tree.Root().Total; got != 10 {
		t.Errorf("root total = %d, want 10", got)
	}
	keys := tree.Keys()
	want := []string{"scan", "copy", "verify"}
	for i, key := range want {
		if keys[i] != key {
			t.Errorf("keys[%d] = %q, want %q (declaration order)", i, keys[i], key)
		}
	}
	if desc, ok := tree.Metadata(progress.MetaDescription); !ok || desc != "Copying files" {
		t.Errorf("description metadata = %v, %v; want %q, true", desc, ok, "Copying files")
	}
}
