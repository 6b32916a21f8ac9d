package sim

import "fmt"

// ProcessFunc is a process body. It runs cooperatively: every call to Wait
// or WaitEvent suspends it and hands control back to the scheduler.
type ProcessFunc func(p *Process) error

// yieldKind tags a process's suspension request.
type yieldKind int

const (
	yieldTimed yieldKind = iota // suspend for a fixed number of ticks
	yieldEvent                  // suspend until an event resolves
	yieldDone                   // process body returned
)

type yieldMsg struct {
	proc  *Process
	kind  yieldKind
	delay int64
	event *Event
	err   error
}

// Process is a resumable task managed by a Scheduler.
//
// Process methods must only be called from within the process's own body.
type Process struct {
	name   string
	sched  *Scheduler
	resume chan any
}

// Name returns the process name given at Spawn.
func (p *Process) Name() string { return p.name }

// Now returns the current simulation tick.
func (p *Process) Now() int64 { return p.sched.now }

// Scheduler returns the scheduler this process runs under.
func (p *Process) Scheduler() *Scheduler { return p.sched }

// Wait suspends the process for ticks ticks. Wait(0) yields: the process
// resumes within the same tick, after everything already queued for the
// tick has run. Negative durations are a programming bug and panic.
func (p *Process) Wait(ticks int64) {
	if ticks < 0 {
		panic(fmt.Sprintf("sim: negative wait %d in process %s", ticks, p.name))
	}
	p.sched.yield <- yieldMsg{proc: p, kind: yieldTimed, delay: ticks}
	<-p.resume
}

// WaitEvent suspends the process until ev resolves and returns the value it
// was resolved with. Waiting on an already-resolved event resumes within the
// same tick, after already-queued activity.
func (p *Process) WaitEvent(ev *Event) any {
	p.sched.yield <- yieldMsg{proc: p, kind: yieldEvent, event: ev}
	return <-p.resume
}

// run executes the process body, converting panics into errors so one
// misbehaving process cannot take down the scheduler.
func run(p *Process, fn ProcessFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("process %s panicked: %v", p.name, r)
		}
	}()
	return fn(p)
}
