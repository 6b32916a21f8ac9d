package store

import (
	"container/heap"

	"github.com/matflow/matflow/internal/material"
	"github.com/matflow/matflow/internal/sim"
)

// Predicate selects items from an ItemStore. A nil Predicate matches
// everything.
type Predicate func(*material.Item) bool

// MatchKind returns a predicate selecting items of one kind.
func MatchKind(kind string) Predicate {
	return func(it *material.Item) bool { return it.Kind == kind }
}

// MatchMaterial returns a predicate selecting items by material name.
func MatchMaterial(name string) Predicate {
	return func(it *material.Item) bool { return it.Material.Name == name }
}

func matches(pred Predicate, it *material.Item) bool {
	return pred == nil || pred(it)
}

// order is one queued request against a store. amount is used by quantity
// stores, count and pred by item stores.
type order struct {
	priority int
	seq      int64
	amount   float64
	count    int
	pred     Predicate
	result   *sim.Event
}

// orderQueue is a min-heap over (priority, seq): lower priority value first,
// submission order breaking ties.
type orderQueue struct {
	orders  []*order
	nextSeq int64
}

func (q *orderQueue) Len() int { return len(q.orders) }

func (q *orderQueue) Less(i, j int) bool {
	a, b := q.orders[i], q.orders[j]
	if a.priority != b.priority {
		return a.priority < b.priority
	}
	return a.seq < b.seq
}

func (q *orderQueue) Swap(i, j int) {
	q.orders[i], q.orders[j] = q.orders[j], q.orders[i]
}

func (q *orderQueue) Push(x any) {
	q.orders = append(q.orders, x.(*order))
}

func (q *orderQueue) Pop() any {
	old := q.orders
	n := len(old)
	o := old[n-1]
	old[n-1] = nil
	q.orders = old[:n-1]
	return o
}

// push stamps the submission sequence and queues the order.
func (q *orderQueue) push(o *order) {
	q.nextSeq++
	o.seq = q.nextSeq
	heap.Push(q, o)
}

// pop removes and returns the highest-priority order.
func (q *orderQueue) pop() *order {
	return heap.Pop(q).(*order)
}

// barrier implements the per-tick order collection protocol shared by both
// store kinds.
//
// Every submission increments pending and spawns a settle process that yields
// once (a zero-tick wait) before decrementing it. Because the settle wakeup
// is queued after all activity already scheduled for the tick, pending only
// returns to zero once every process that will submit this tick has done so.
// At that point the tick-local ready event fires and is replaced.
//
// The first submission while no pass is active also spawns the fulfillment
// process, which waits for ready and then drains the queue exactly once. The
// fulfilling flag keeps concurrent passes from being spawned; submissions
// landing after a pass finished start a fresh one, so late same-tick orders
// are served in a second pass rather than dropped.
type barrier struct {
	sched      *sim.Scheduler
	name       string
	pending    int
	ready      *sim.Event
	fulfilling bool
	drain      func(p *sim.Process)
}

func newBarrier(sched *sim.Scheduler, name string, drain func(p *sim.Process)) *barrier {
	return &barrier{
		sched: sched,
		name:  name,
		ready: sched.NewEvent(),
		drain: drain,
	}
}

// submitted registers one new order with the barrier. Call after the order
// is already in the queue.
func (b *barrier) submitted() {
	b.pending++
	b.sched.Spawn(b.name+"/settle", func(p *sim.Process) error {
		p.Wait(0)
		b.pending--
		if b.pending == 0 {
			ev := b.ready
			b.ready = b.sched.NewEvent()
			ev.Resolve(nil)
		}
		return nil
	})

	if b.fulfilling {
		return
	}
	b.fulfilling = true
	ready := b.ready
	b.sched.Spawn(b.name+"/fulfill", func(p *sim.Process) error {
		defer func() { b.fulfilling = false }()
		p.WaitEvent(ready)
		b.drain(p)
		return nil
	})
}
