// Package store implements the priority-queued resource stores that
// facility processes exchange material through.
//
// Two store kinds share one machinery:
//
//   - QuantityStore holds a continuous bulk level (kg of a compound) bounded
//     by an optional capacity.
//   - ItemStore holds discrete items retrievable by predicate, served in
//     arrival order.
//
// Both accept asynchronous orders via SubmitOrder, which returns a sim.Event
// the caller waits on. Orders are resolved once per tick, in strict
// (priority, submission sequence) order, after a timestep barrier has
// collected every order submitted during the tick. Partial fulfillment,
// including an empty grant, is a normal outcome delivered through the
// event, never an error.
//
// The barrier works by counting submissions still settling: each SubmitOrder
// spawns a zero-duration wait; when the count returns to zero all same-tick
// submissions are in, the tick-local ready event fires, and a single
// fulfillment pass drains the order queue. A per-store fulfilling flag keeps
// passes from overlapping; an order submitted after a pass has already
// finished starts a fresh pass within the same tick.
package store
