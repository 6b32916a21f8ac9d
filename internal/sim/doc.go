// Package sim implements the cooperative discrete-time scheduler that
// drives a matflow simulation.
//
// ARCHITECTURE:
//
// Single-Runner Cooperative Loop:
// All processes execute in a strictly interleaved, logically single-threaded
// fashion. Each Process is backed by a goroutine, but exactly one goroutine
// (the scheduler's or one process's) is ever runnable: control is handed off
// over unbuffered channels. This ensures:
// - No data races on shared store state by construction
// - Deterministic resumption order (no goroutine scheduling races)
// - Reproducible runs for golden trace comparison
//
// Suspension points are exactly:
//   - Wait(n): resume n ticks later; Wait(0) resumes within the same tick,
//     after all activity already queued for that tick has run
//   - WaitEvent(ev): resume when ev is resolved, receiving its value
//
// The wakeup queue is a binary heap keyed (tick, seq) with a monotonic seq
// counter, so same-tick wakeups run in strict FIFO order. The clock advances
// only when no wakeup remains at the current tick.
//
// Cancellation is not supported: a process runs to completion or forever.
// A process failure (returned error or recovered panic) is fatal to that
// process only; the scheduler logs it and keeps running unless constructed
// with WithPropagateErrors.
package sim
