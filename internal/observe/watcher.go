package observe

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/worktally/worktally/internal/progress"
)

// target addresses one node: the root, or the child with the given key.
type target[K comparable] struct {
	root bool
	key  K
}

// Watcher wraps a progress tree and publishes per-property updates after
// every mutation routed through it. Mutations are serialized by the watcher's
// mutex so subscribers observe a consistent ordering of child and root
// updates. Safe for concurrent use.
//
// Mutations applied directly to the underlying tree bypass publication;
// writers that want observers notified must go through the watcher.
type Watcher[K comparable] struct {
	mu     sync.Mutex
	tree   *progress.Tree[K]
	subs   map[target[K]]map[Property]map[uint64]*Subscription
	nextID atomic.Uint64
}

// NewWatcher creates a Watcher over the given tree.
func NewWatcher[K comparable](tree *progress.Tree[K]) *Watcher[K] {
	return &Watcher[K]{
		tree: tree,
		subs: make(map[target[K]]map[Property]map[uint64]*Subscription),
	}
}

// Tree returns the underlying progress tree for read access.
func (w *Watcher[K]) Tree() *progress.Tree[K] {
	return w.tree
}

// Root returns a snapshot of the root aggregate.
func (w *Watcher[K]) Root() progress.Snapshot {
	return w.tree.Root()
}

// Child returns a snapshot of the named child, or ok=false if unknown.
func (w *Watcher[K]) Child(key K) (progress.Snapshot, bool) {
	return w.tree.Child(key)
}

// Keys returns the task keys in construction order.
func (w *Watcher[K]) Keys() []K {
	return w.tree.Keys()
}

// WatchRoot subscribes to one property of the root aggregate.
func (w *Watcher[K]) WatchRoot(prop Property) *Subscription {
	return w.watch(target[K]{root: true}, prop)
}

// WatchTask subscribes to one property of the named child. If the key is
// unknown, the returned subscription delivers a single terminal update with
// Absent set and is then closed; no error is raised.
func (w *Watcher[K]) WatchTask(key K, prop Property) *Subscription {
	if _, ok := w.tree.Child(key); !ok {
		sub := &Subscription{ch: make(chan Update, subscriptionBuffer)}
		sub.deliver(Update{Property: prop, Absent: true, At: time.Now()})
		sub.close()
		return sub
	}
	return w.watch(target[K]{key: key}, prop)
}

func (w *Watcher[K]) watch(tg target[K], prop Property) *Subscription {
	w.mu.Lock()
	defer w.mu.Unlock()

	sub := &Subscription{
		id: w.nextID.Add(1),
		ch: make(chan Update, subscriptionBuffer),
		detach: func(id uint64) {
			w.mu.Lock()
			defer w.mu.Unlock()
			if props, ok := w.subs[tg]; ok {
				delete(props[prop], id)
			}
		},
	}

	props, ok := w.subs[tg]
	if !ok {
		props = make(map[Property]map[uint64]*Subscription)
		w.subs[tg] = props
	}
	byID, ok := props[prop]
	if !ok {
		byID = make(map[uint64]*Subscription)
		props[prop] = byID
	}
	byID[sub.id] = sub
	return sub
}

// SetCompleted mirrors Tree.SetCompleted and publishes the resulting updates.
// Unknown keys are silent no-ops with no publication.
func (w *Watcher[K]) SetCompleted(key K, value int64) {
	w.mutateChild(key, func() {
		w.tree.SetCompleted(key, value)
	})
}

// AddCompleted mirrors Tree.AddCompleted and publishes the resulting updates.
func (w *Watcher[K]) AddCompleted(key K, delta int64) {
	w.mutateChild(key, func() {
		w.tree.AddCompleted(key, delta)
	})
}

// UpdateCompleted mirrors Tree.UpdateCompleted and publishes the resulting
// updates.
func (w *Watcher[K]) UpdateCompleted(key K, transform func(int64) int64) {
	w.mutateChild(key, func() {
		w.tree.UpdateCompleted(key, transform)
	})
}

// SetChildTotal mirrors Tree.SetChildTotal and publishes the resulting
// updates, including the child's total-unit change.
func (w *Watcher[K]) SetChildTotal(key K, total int64) {
	w.mutateChild(key, func() {
		w.tree.SetChildTotal(key, total)
	})
}

// ResetAll mirrors Tree.ResetAll, publishing updates for every child and for
// the root once.
func (w *Watcher[K]) ResetAll() {
	w.mu.Lock()
	defer w.mu.Unlock()

	keys := w.tree.Keys()
	before := make(map[K]progress.Snapshot, len(keys))
	for _, key := range keys {
		if snap, ok := w.tree.Child(key); ok {
			before[key] = snap
		}
	}
	rootBefore := w.tree.Root()

	w.tree.ResetAll()

	now := time.Now()
	for _, key := range keys {
		w.publishChild(key, before[key], now)
	}
	w.publishRoot(rootBefore, now)
}

// SetMetadata stores a metadata value on the tree and forwards it verbatim to
// root metadata subscribers.
func (w *Watcher[K]) SetMetadata(key progress.MetadataKey, value any) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.tree.SetMetadata(key, value)
	w.publish(target[K]{root: true}, Update{
		Property: PropertyMetadata,
		Value:    value,
		At:       time.Now(),
	})
}

// mutateChild runs one child mutation under the watcher lock and publishes
// the child's and the root's resulting updates. Unknown keys publish nothing.
func (w *Watcher[K]) mutateChild(key K, apply func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	childBefore, ok := w.tree.Child(key)
	if !ok {
		return
	}
	rootBefore := w.tree.Root()

	apply()

	now := time.Now()
	w.publishChild(key, childBefore, now)
	w.publishRoot(rootBefore, now)
}

// publishChild fires the child's fraction unconditionally and its integer
// properties only when they changed. Caller must hold w.mu.
func (w *Watcher[K]) publishChild(key K, before progress.Snapshot, now time.Time) {
	after, ok := w.tree.Child(key)
	if !ok {
		return
	}
	tg := target[K]{key: key}

	w.publish(tg, Update{Property: PropertyFraction, Fraction: after.Fraction, At: now})
	if after.Completed != before.Completed {
		w.publish(tg, Update{Property: PropertyCompleted, Units: after.Completed, At: now})
	}
	if after.Total != before.Total {
		w.publish(tg, Update{Property: PropertyTotal, Units: after.Total, At: now})
	}
}

// publishRoot fires the root's fraction on every recomputation and its
// completed count only when a child crossed the fully-complete threshold.
// Caller must hold w.mu.
func (w *Watcher[K]) publishRoot(before progress.Snapshot, now time.Time) {
	after := w.tree.Root()
	tg := target[K]{root: true}

	w.publish(tg, Update{Property: PropertyFraction, Fraction: after.Fraction, At: now})
	if after.Completed != before.Completed {
		w.publish(tg, Update{Property: PropertyCompleted, Units: after.Completed, At: now})
	}
	if after.Total != before.Total {
		w.publish(tg, Update{Property: PropertyTotal, Units: after.Total, At: now})
	}
}

// publish delivers an update to every subscription on the target property.
// Delivery conflates and never blocks. Caller must hold w.mu.
func (w *Watcher[K]) publish(tg target[K], u Update) {
	props, ok := w.subs[tg]
	if !ok {
		return
	}
	for _, sub := range props[u.Property] {
		sub.deliver(u)
	}
}
