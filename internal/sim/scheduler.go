package sim

import (
	"container/heap"
	"fmt"
	"log/slog"
)

// Scheduler drives all simulation processes tick by tick.
//
// INVARIANTS:
//   - now is monotonically non-decreasing and advances only inside Run
//   - at most one process body executes at any instant (strict handoff)
//   - same-tick wakeups run in FIFO order of scheduling (seq counter)
type Scheduler struct {
	now   int64
	seq   int64
	queue wakeupHeap
	yield chan yieldMsg

	propagate bool
	failed    int // processes that died with an error
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithPropagateErrors makes Run return the first process error instead of
// logging it and continuing. Useful for tests and strict runs.
func WithPropagateErrors() Option {
	return func(s *Scheduler) {
		s.propagate = true
	}
}

// New creates a scheduler with the clock at tick 0.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		queue: make(wakeupHeap, 0, 64),
		yield: make(chan yieldMsg),
	}
	heap.Init(&s.queue)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the current tick.
func (s *Scheduler) Now() int64 { return s.now }

// FailedProcesses returns how many processes terminated with an error.
func (s *Scheduler) FailedProcesses() int { return s.failed }

// Spawn registers fn as a new process. The process's first activation is
// queued at the current tick, after activity already queued for it.
//
// Spawn may be called before Run or from within a running process body; the
// strict handoff guarantees no two goroutines touch the queue concurrently.
func (s *Scheduler) Spawn(name string, fn ProcessFunc) *Process {
	p := &Process{name: name, sched: s, resume: make(chan any)}
	go func() {
		<-p.resume // first activation
		err := run(p, fn)
		s.yield <- yieldMsg{proc: p, kind: yieldDone, err: err}
	}()
	s.schedule(p, s.now, nil)
	return p
}

// schedule queues a resumption for p at tick, stamping the next seq so
// same-tick wakeups keep submission order.
func (s *Scheduler) schedule(p *Process, tick int64, value any) {
	s.seq++
	heap.Push(&s.queue, &wakeup{tick: tick, seq: s.seq, proc: p, value: value})
}

// Run processes all wakeups scheduled strictly before until, advancing the
// clock as it goes, then leaves the clock at until. All processes resumable
// at a tick run to their next suspension point before the clock advances.
//
// Returns the first process error when the scheduler was built with
// WithPropagateErrors; otherwise process errors are logged and Run returns
// nil once no runnable work remains.
func (s *Scheduler) Run(until int64) error {
	if until < s.now {
		return fmt.Errorf("sim: run until %d is before current tick %d", until, s.now)
	}
	for s.queue.Len() > 0 {
		next := s.queue[0]
		if next.tick >= until {
			break
		}
		if next.tick > s.now {
			s.now = next.tick
		}
		w := heap.Pop(&s.queue).(*wakeup)
		if err := s.step(w); err != nil {
			s.failed++
			if s.propagate {
				return err
			}
			slog.Error("process failed", "process", w.proc.name, "tick", s.now, "error", err)
		}
	}
	s.now = until
	return nil
}

// step resumes one process and files its next suspension.
func (s *Scheduler) step(w *wakeup) error {
	w.proc.resume <- w.value
	msg := <-s.yield

	switch msg.kind {
	case yieldTimed:
		s.schedule(msg.proc, s.now+msg.delay, nil)
	case yieldEvent:
		ev := msg.event
		if ev.resolved {
			// Resolved events still cost a same-tick yield, so a burst of
			// already-satisfied waits cannot starve queued activity.
			s.schedule(msg.proc, s.now, ev.value)
		} else {
			ev.waiters = append(ev.waiters, msg.proc)
		}
	case yieldDone:
		return msg.err
	}
	return nil
}
