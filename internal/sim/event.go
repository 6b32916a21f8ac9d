package sim

// Event is a one-shot signal that processes can wait on.
//
// An Event transitions pending → resolved exactly once, carrying an optional
// result value. Processes suspended in WaitEvent are rescheduled in the order
// they began waiting, at the tick the event resolves. Events are never
// reused: mint a fresh one per wait cycle.
//
// Events are owned by a single Scheduler and must only be touched from
// within its run (from a process body or before Run starts).
type Event struct {
	sched    *Scheduler
	resolved bool
	value    any
	waiters  []*Process
}

// NewEvent mints a pending event bound to this scheduler.
func (s *Scheduler) NewEvent() *Event {
	return &Event{sched: s}
}

// Resolved reports whether the event has been resolved.
func (e *Event) Resolved() bool {
	return e.resolved
}

// Value returns the result the event was resolved with (nil while pending).
func (e *Event) Value() any {
	return e.value
}

// Resolve marks the event resolved and wakes all waiters at the current
// tick, in the order they began waiting. Resolving twice is a programming
// bug and panics.
func (e *Event) Resolve(value any) {
	if e.resolved {
		panic("sim: event resolved twice")
	}
	e.resolved = true
	e.value = value
	for _, p := range e.waiters {
		e.sched.schedule(p, e.sched.now, value)
	}
	e.waiters = nil
}
