package observe

import "time"

// Property identifies one observable quantity on a node.
type Property string

const (
	// PropertyFraction is the continuous completion fraction.
	PropertyFraction Property = "fraction_completed"

	// PropertyCompleted is the integer completed unit count.
	PropertyCompleted Property = "completed_unit_count"

	// PropertyTotal is the integer total unit count.
	PropertyTotal Property = "total_unit_count"

	// PropertyMetadata carries forwarded metadata writes on the root.
	PropertyMetadata Property = "metadata"
)

// Update is the latest value of one observed property at publication time.
type Update struct {
	// Property identifies which quantity changed.
	Property Property

	// Fraction is the node's raw completion fraction. Set for
	// PropertyFraction.
	Fraction float64

	// Units is the node's unit count. Set for PropertyCompleted and
	// PropertyTotal.
	Units int64

	// Value is the forwarded metadata value. Set for PropertyMetadata.
	Value any

	// Absent marks the single terminal update delivered when subscribing
	// with a task key the tree does not know. The stream closes after it.
	Absent bool

	// At is when the update was published.
	At time.Time
}
