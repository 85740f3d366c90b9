package progress

// node is a single mutable progress counter pair. The root node additionally
// owns the child list it aggregates over and caches its derived fraction.
// Nodes are created at tree construction and live for the tree's lifetime;
// all access is serialized by the owning Tree's mutex.
type node struct {
	completed int64
	total     int64

	// weight is the number of root units this node is worth at completion.
	// Unused on the root.
	weight int64

	// parent is a non-owning back-reference used only to trigger the
	// one-level-up refresh. Nil on the root.
	parent *node

	// children is populated only on the root.
	children []*node

	// fraction is the cached derived fraction. Maintained by refresh on the
	// root; child fractions are computed on read.
	fraction float64
}

// fractionCompleted returns the node's raw completion fraction: 1.0 when the
// total is zero, otherwise completed/total without clamping.
func (n *node) fractionCompleted() float64 {
	if n.total == 0 {
		return 1.0
	}
	return float64(n.completed) / float64(n.total)
}

// setCompleted writes the completed count and refreshes the parent aggregate.
// No clamping against total: overshoot is preserved.
func (n *node) setCompleted(v int64) {
	n.completed = v
	if n.parent != nil {
		n.parent.refresh()
	}
}

// setTotal resizes the node's denominator. The node's weight toward its
// parent is untouched, so the parent's total never moves.
func (n *node) setTotal(v int64) {
	n.total = v
	if n.parent != nil {
		n.parent.refresh()
	}
}

// refresh recomputes the root's derived state from its children.
//
// The fraction is continuous: sum(weight * childFraction) / total. The
// completed count is step-wise: each child contributes its full weight only
// once its fraction has reached 1.0.
func (n *node) refresh() {
	var acc float64
	var done int64
	for _, c := range n.children {
		f := c.fractionCompleted()
		acc += float64(c.weight) * f
		if f >= 1.0 {
			done += c.weight
		}
	}
	if n.total == 0 {
		n.fraction = 1.0
	} else {
		n.fraction = acc / float64(n.total)
	}
	n.completed = done
}

// Snapshot is an immutable copy of one node's state at a point in time.
// Lookups return snapshots rather than live nodes so readers never race
// writers on the internal counters.
type Snapshot struct {
	// Completed is the node's completed unit count.
	Completed int64

	// Total is the node's total unit count.
	Total int64

	// Weight is the node's worth toward the root. Zero for the root itself.
	Weight int64

	// Fraction is the node's completion fraction at snapshot time. Raw, not
	// clamped to [0, 1].
	Fraction float64
}

// snapshot builds a Snapshot from the node under the tree lock.
func (n *node) snapshot() Snapshot {
	f := n.fraction
	if n.parent != nil {
		f = n.fractionCompleted()
	}
	return Snapshot{
		Completed: n.completed,
		Total:     n.total,
		Weight:    n.weight,
		Fraction:  f,
	}
}
