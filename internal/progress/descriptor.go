package progress

// Descriptor is a read-only capability describing how much work a task
// requires and how much it is worth to the root once complete. A descriptor
// is consulted exactly once, during tree construction; resizing a child later
// neither re-reads nor updates it.
type Descriptor interface {
	// ChildUnits is the number of units the task itself requires.
	// Expected to be >= 1.
	ChildUnits() int64

	// ParentUnits is the number of units of the root's budget the task is
	// worth once fully complete. Expected to be >= 0.
	ParentUnits() int64
}

// Units is the standard Descriptor implementation: a plain pair of unit
// counts.
type Units struct {
	// Child is the task's own unit total.
	Child int64

	// Parent is the task's weight toward the root.
	Parent int64
}

// ChildUnits returns the task's own unit total.
func (u Units) ChildUnits() int64 { return u.Child }

// ParentUnits returns the task's weight toward the root.
func (u Units) ParentUnits() int64 { return u.Parent }

// Task pairs a key with its descriptor for order-preserving construction.
type Task[K comparable] struct {
	Key  K
	Desc Descriptor
}

var _ Descriptor = Units{}
