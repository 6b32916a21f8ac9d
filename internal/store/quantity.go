package store

import (
	"fmt"
	"math"

	"github.com/matflow/matflow/internal/sim"
)

// QuantityStore holds a continuous bulk level, in kilograms by convention,
// optionally bounded by a capacity.
type QuantityStore struct {
	sched    *sim.Scheduler
	name     string
	capacity float64
	level    float64

	ins  float64 // deposits since the last snapshot
	outs float64 // withdrawals and grants since the last snapshot

	queue orderQueue
	bar   *barrier
	snaps []Snapshot
}

// QuantityOption configures a QuantityStore at construction.
type QuantityOption func(*QuantityStore)

// WithCapacity bounds the store. Unbounded without it.
func WithCapacity(capacity float64) QuantityOption {
	return func(s *QuantityStore) {
		s.capacity = capacity
	}
}

// WithInitialLevel seeds the store's level. The seed is not counted as an
// inflow.
func WithInitialLevel(level float64) QuantityOption {
	return func(s *QuantityStore) {
		s.level = level
	}
}

// NewQuantityStore creates a bulk store bound to the scheduler. An initial
// level above the capacity is a configuration bug and panics.
func NewQuantityStore(sched *sim.Scheduler, name string, opts ...QuantityOption) *QuantityStore {
	s := &QuantityStore{
		sched:    sched,
		name:     name,
		capacity: math.Inf(1),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.level > s.capacity {
		panic(fmt.Sprintf("store: %s initial level %v exceeds capacity %v", name, s.level, s.capacity))
	}
	s.bar = newBarrier(sched, name, s.drainOrders)
	return s
}

// Name returns the store name.
func (s *QuantityStore) Name() string { return s.name }

// Level returns the current bulk level.
func (s *QuantityStore) Level() float64 { return s.level }

// Capacity returns the configured capacity, +Inf when unbounded.
func (s *QuantityStore) Capacity() float64 { return s.capacity }

// Deposit adds amount to the level. A deposit that would exceed the capacity
// is rejected whole: the level is unchanged and a CapacityExceeded error is
// returned. Negative amounts are a programming bug and panic.
func (s *QuantityStore) Deposit(amount float64) error {
	if amount < 0 {
		panic(fmt.Sprintf("store: negative deposit %v into %s", amount, s.name))
	}
	if s.level+amount > s.capacity {
		return newCapacityError(s.name, s.level, amount, s.capacity)
	}
	s.level += amount
	s.ins += amount
	return nil
}

// Withdraw removes amount from the level immediately, bypassing the order
// queue. Returns InsufficientQuantity when the level cannot cover it.
func (s *QuantityStore) Withdraw(amount float64) error {
	if amount < 0 {
		panic(fmt.Sprintf("store: negative withdrawal %v from %s", amount, s.name))
	}
	if amount > s.level {
		return newInsufficientError(s.name, s.level, amount)
	}
	s.level -= amount
	s.outs += amount
	return nil
}

// SubmitOrder queues an asynchronous request for quantity at the given
// priority (lower value is served first) and returns the event it will be
// resolved through. The event's value is the granted amount as a float64:
// the full quantity, a partial grant when the level runs short, or zero.
//
// Must be called from a process body or before the scheduler runs.
func (s *QuantityStore) SubmitOrder(quantity float64, priority int) *sim.Event {
	if quantity < 0 {
		panic(fmt.Sprintf("store: negative order %v on %s", quantity, s.name))
	}
	ev := s.sched.NewEvent()
	s.queue.push(&order{priority: priority, amount: quantity, result: ev})
	s.bar.submitted()
	return ev
}

// QueuedOrders returns how many orders await the current fulfillment pass.
func (s *QuantityStore) QueuedOrders() int { return s.queue.Len() }

// drainOrders resolves every queued order in (priority, sequence) order,
// granting as much of each request as the remaining level covers.
func (s *QuantityStore) drainOrders(p *sim.Process) {
	for s.queue.Len() > 0 {
		o := s.queue.pop()
		granted := o.amount
		if granted > s.level {
			granted = s.level
		}
		s.level -= granted
		s.outs += granted
		o.result.Resolve(granted)
	}
}

// TakeSnapshot records the store's state at a tick and resets the in/out
// counters, closing one accounting window.
func (s *QuantityStore) TakeSnapshot(tick int64) {
	s.snaps = append(s.snaps, Snapshot{
		Tick:  tick,
		Level: s.level,
		Ins:   s.ins,
		Outs:  s.outs,
	})
	s.ins = 0
	s.outs = 0
}

// Snapshots returns all snapshots taken so far, oldest first.
func (s *QuantityStore) Snapshots() []Snapshot { return s.snaps }
