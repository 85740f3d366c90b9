// Package observe layers change notification over a progress tree.
//
// A [Watcher] wraps a progress.Tree and mirrors its mutation surface; every
// mutation routed through the watcher is followed by update publication to
// the subscriptions it affects. Three numeric properties are observable per
// node, with deliberately different fire rates:
//
//   - [PropertyFraction] fires on every recomputation, however small the
//     delta. This is the continuous signal display layers animate from.
//   - [PropertyTotal] fires only when a node's denominator is resized.
//   - [PropertyCompleted] fires only on integer-valued changes. For the root
//     that means only when a child crosses into fully complete, never on
//     partial progress.
//
// Metadata writes are forwarded on [PropertyMetadata].
//
// Subscriptions are conflating channel streams: each carries at most one
// undelivered update, and a newer value evicts an older one that was never
// read. Slow readers therefore see the latest state, not a replay, and
// writers are never blocked. Subscribing with a task key the tree does not
// know yields a single terminal update with Absent set, after which the
// channel is closed; no error is returned.
//
// Canceling a subscription only stops delivery. It has no effect on the
// underlying tree.
package observe
