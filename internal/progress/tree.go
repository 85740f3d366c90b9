package progress

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrDuplicateKey is returned by NewOrdered when the task list names the same
// key twice. Map-based construction cannot hit this.
var ErrDuplicateKey = errors.New("duplicate task key")

// Tree is a two-level weighted progress tree: one root aggregate plus a fixed
// set of keyed child trackers. The tree exclusively owns its nodes; callers
// mutate and query through the tree, which serializes writers via an internal
// mutex. Safe for concurrent use.
type Tree[K comparable] struct {
	mu       sync.RWMutex
	root     *node
	children map[K]*node

	// keys preserves construction order for diagnostics. For map-based
	// construction this is whatever order the map iterated in.
	keys []K

	meta map[MetadataKey]any
}

// New builds a tree from a mapping of task keys to descriptors. The root's
// total is the sum of every descriptor's parent units; each child starts at
// zero completed units with its descriptor's child units as its total.
func New[K comparable](tasks map[K]Descriptor) *Tree[K] {
	t := newEmpty[K](len(tasks))
	for key, desc := range tasks {
		t.addChild(key, desc.ChildUnits(), desc.ParentUnits())
	}
	t.root.refresh()
	return t
}

// NewOrdered builds a tree from an ordered task list, preserving the given
// order for diagnostics and key listing. Returns ErrDuplicateKey if a key
// repeats.
func NewOrdered[K comparable](tasks []Task[K]) (*Tree[K], error) {
	t := newEmpty[K](len(tasks))
	for _, task := range tasks {
		if _, exists := t.children[task.Key]; exists {
			return nil, fmt.Errorf("%w: %v", ErrDuplicateKey, task.Key)
		}
		t.addChild(task.Key, task.Desc.ChildUnits(), task.Desc.ParentUnits())
	}
	t.root.refresh()
	return t, nil
}

// NewCompleted builds a tree that starts fully complete. Every key gets one
// child unit and one parent unit unless overridden per key, and each child's
// completed count is immediately set to its total. This suits workflows where
// task sizing is not yet known: callers resize children with SetChildTotal
// and reset counts before tracking for real.
func NewCompleted[K comparable](keys []K, overrides map[K]Descriptor) *Tree[K] {
	t := newEmpty[K](len(keys))
	for _, key := range keys {
		if _, exists := t.children[key]; exists {
			continue
		}
		child, parent := int64(1), int64(1)
		if desc, ok := overrides[key]; ok {
			child, parent = desc.ChildUnits(), desc.ParentUnits()
		}
		n := t.addChild(key, child, parent)
		n.completed = n.total
	}
	t.root.refresh()
	return t
}

func newEmpty[K comparable](capacity int) *Tree[K] {
	return &Tree[K]{
		root:     &node{},
		children: make(map[K]*node, capacity),
		keys:     make([]K, 0, capacity),
		meta:     make(map[MetadataKey]any),
	}
}

// addChild links a new child node to the root and grows the root's total by
// the child's weight. Construction only; never called after New returns.
func (t *Tree[K]) addChild(key K, total, weight int64) *node {
	n := &node{
		total:  total,
		weight: weight,
		parent: t.root,
	}
	t.children[key] = n
	t.keys = append(t.keys, key)
	t.root.children = append(t.root.children, n)
	t.root.total += weight
	return n
}

// SetCompleted writes an absolute completed count on the named child.
// Unknown keys are silently ignored.
func (t *Tree[K]) SetCompleted(key K, value int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n, ok := t.children[key]; ok {
		n.setCompleted(value)
	}
}

// AddCompleted adds a delta to the named child's completed count. There is no
// upper clamp against the child's total. Unknown keys are silently ignored.
func (t *Tree[K]) AddCompleted(key K, delta int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n, ok := t.children[key]; ok {
		n.setCompleted(n.completed + delta)
	}
}

// UpdateCompleted reads the named child's completed count, applies the
// caller's transform, and writes the result back as a single serialized
// read-modify-write. The transform must be pure. Unknown keys are silently
// ignored and the transform is not called.
func (t *Tree[K]) UpdateCompleted(key K, transform func(int64) int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n, ok := t.children[key]; ok {
		n.setCompleted(transform(n.completed))
	}
}

// SetChildTotal resizes the named child's total unit count. The child's
// weight toward the root and the root's total are unaffected. Unknown keys
// are silently ignored.
func (t *Tree[K]) SetChildTotal(key K, total int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n, ok := t.children[key]; ok {
		n.setTotal(total)
	}
}

// ResetAll zeroes every child's completed count. The root is not touched
// directly; its derived state moves only through the refresh each child write
// triggers. Applying ResetAll twice yields the same state as applying it
// once.
func (t *Tree[K]) ResetAll() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, n := range t.children {
		n.setCompleted(0)
	}
}

// Child returns a snapshot of the named child, or ok=false if the key is
// unknown. No error is raised for a missing key.
func (t *Tree[K]) Child(key K) (Snapshot, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n, ok := t.children[key]
	if !ok {
		return Snapshot{}, false
	}
	return n.snapshot(), true
}

// Root returns a snapshot of the root aggregate.
func (t *Tree[K]) Root() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.root.snapshot()
}

// Keys returns the task keys in construction order.
func (t *Tree[K]) Keys() []K {
	t.mu.RLock()
	defer t.mu.RUnlock()

	keys := make([]K, len(t.keys))
	copy(keys, t.keys)
	return keys
}

// Len returns the number of child trackers.
func (t *Tree[K]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.children)
}

// String renders a diagnostic multi-line view: one line for the root followed
// by one line per child in construction order.
func (t *Tree[K]) String() string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var b strings.Builder
	fmt.Fprintf(&b, "Parent progress: %d/%d\n", t.root.completed, t.root.total)
	for _, key := range t.keys {
		n := t.children[key]
		fmt.Fprintf(&b, "Child progress (%v): %d/%d\n", key, n.completed, n.total)
	}
	return b.String()
}
