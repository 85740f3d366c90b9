// Package progress implements a two-level weighted progress tree: one root
// aggregate and a fixed set of named child trackers, each counting its own
// unit of work and contributing a weighted share to the root's completion
// fraction.
//
// The tree's shape (task keys and weights) is fixed at construction. Only the
// counters mutate afterward: a child's completed units and, for resizable
// tasks, its total units. Every child mutation refreshes the root's derived
// state, which is deliberately dual-natured:
//
//   - The root's fraction is continuous: sum(weight_i * fraction_i) / total,
//     moving as soon as any child makes partial progress.
//   - The root's completed unit count is step-wise: a child credits its full
//     weight only once its own fraction reaches 1.0. Partial progress never
//     shows up in the integer count.
//
// The core type is [Tree], generic over the caller's task-key type. All
// mutation goes through the tree, which serializes writers internally;
// lookups return snapshot copies rather than live nodes.
//
// Mutations addressed to a key the tree does not know are silent no-ops, not
// errors. The tree also never clamps counters: overshoot (completed > total)
// and negative values are preserved, and fractions are computed raw. Display
// layers are responsible for clamping to [0, 1].
//
// Usage:
//
//	tree := progress.New(map[string]progress.Descriptor{
//	    "download": progress.Units{Child: 100, Parent: 3},
//	    "install":  progress.Units{Child: 10, Parent: 2},
//	})
//
//	tree.AddCompleted("download", 25)
//	fmt.Println(tree.Root().Fraction) // 0.15
//
// Change observation lives in the observe package, which wraps a Tree and
// publishes per-property updates.
package progress
