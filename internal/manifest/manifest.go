// Package manifest loads the YAML task manifest that declares an operation's
// child trackers: task keys, unit totals, and root weights. The manifest is
// the ordered construction input for a progress tree; the core itself never
// reads files.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/worktally/worktally/internal/progress"
)

// ErrInvalidManifest wraps all validation failures.
var ErrInvalidManifest = errors.New("invalid manifest")

// TaskSpec declares one child tracker.
type TaskSpec struct {
	// Key is the unique task identifier.
	Key string `yaml:"key"`

	// Units is the task's own unit total. Must be >= 1.
	Units int64 `yaml:"units"`

	// Weight is the task's worth toward the root. Must be >= 0.
	Weight int64 `yaml:"weight"`
}

// Manifest is a parsed task manifest.
type Manifest struct {
	// Operation is free-form display text for the overall operation.
	Operation string `yaml:"operation"`

	// Tasks lists the child trackers in display order.
	Tasks []TaskSpec `yaml:"tasks"`
}

// Load reads and validates a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates manifest bytes.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) validate() error {
	var problems []string

	if len(m.Tasks) == 0 {
		problems = append(problems, "at least one task must be declared")
	}
	seen := make(map[string]bool, len(m.Tasks))
	for i, task := range m.Tasks {
		if strings.TrimSpace(task.Key) == "" {
			problems = append(problems, fmt.Sprintf("tasks[%d]: key must not be empty", i))
			continue
		}
		if seen[task.Key] {
			problems = append(problems, fmt.Sprintf("tasks[%d]: duplicate key %q", i, task.Key))
		}
		seen[task.Key] = true
		if task.Units < 1 {
			problems = append(problems, fmt.Sprintf("tasks[%d] (%s): units must be >= 1, got %d", i, task.Key, task.Units))
		}
		if task.Weight < 0 {
			problems = append(problems, fmt.Sprintf("tasks[%d] (%s): weight must be >= 0, got %d", i, task.Key, task.Weight))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidManifest, strings.Join(problems, "; "))
	}
	return nil
}

// TotalWeight returns the sum of all task weights, which becomes the root's
// total unit count.
func (m *Manifest) TotalWeight() int64 {
	var sum int64
	for _, task := range m.Tasks {
		sum += task.Weight
	}
	return sum
}

// Descriptors returns the manifest's tasks as ordered tree-construction
// input.
func (m *Manifest) Descriptors() []progress.Task[string] {
	tasks := make([]progress.Task[string], 0, len(m.Tasks))
	for _, task := range m.Tasks {
		tasks = append(tasks, progress.Task[string]{
			Key:  task.Key,
			Desc: progress.Units{Child: task.Units, Parent: task.Weight},
		})
	}
	return tasks
}

// Tree builds a progress tree from the manifest, preserving declaration
// order.
func (m *Manifest) Tree() (*progress.Tree[string], error) {
	tree, err := progress.NewOrdered(m.Descriptors())
	if err != nil {
		return nil, err
	}
	if m.Operation != "" {
		tree.SetMetadata(progress.MetaDescription, m.Operation)
	}
	return tree, nil
}
