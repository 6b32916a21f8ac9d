package store

import (
	"fmt"

	"github.com/matflow/matflow/internal/material"
	"github.com/matflow/matflow/internal/sim"
)

// ItemStore holds discrete items in arrival order. Retrieval, whether direct
// or through the order queue, serves the oldest matching items first and
// never serves an item during the tick it arrived.
type ItemStore struct {
	sched *sim.Scheduler
	name  string

	items []*material.Item // arrival order
	index map[material.Key]struct{}

	ins  int64 // inserts since the last snapshot
	outs int64 // removals since the last snapshot

	queue orderQueue
	bar   *barrier
	snaps []Snapshot
}

// NewItemStore creates an empty item store bound to the scheduler.
func NewItemStore(sched *sim.Scheduler, name string) *ItemStore {
	s := &ItemStore{
		sched: sched,
		name:  name,
		index: make(map[material.Key]struct{}),
	}
	s.bar = newBarrier(sched, name, s.drainOrders)
	return s
}

// Name returns the store name.
func (s *ItemStore) Name() string { return s.name }

// Count returns the number of matching items held, including same-tick
// arrivals. A nil predicate counts everything.
func (s *ItemStore) Count(pred Predicate) int {
	n := 0
	for _, it := range s.items {
		if matches(pred, it) {
			n++
		}
	}
	return n
}

// CountAvailable returns the number of matching items retrievable this tick,
// i.e. those that arrived on an earlier tick. This is what facility
// processes size their orders with.
func (s *ItemStore) CountAvailable(pred Predicate) int {
	now := s.sched.Now()
	n := 0
	for _, it := range s.items {
		if it.Arrival >= now {
			break
		}
		if matches(pred, it) {
			n++
		}
	}
	return n
}

// Items returns the held items in arrival order. The slice is a copy; the
// items are not.
func (s *ItemStore) Items() []*material.Item {
	out := make([]*material.Item, len(s.items))
	copy(out, s.items)
	return out
}

// Weight returns the total mass held, in kg.
func (s *ItemStore) Weight() float64 {
	var w float64
	for _, it := range s.items {
		w += it.Weight
	}
	return w
}

// Insert adds an item, stamping its arrival at the current tick. Inserting
// an identity already present returns a DuplicateItem error.
func (s *ItemStore) Insert(it *material.Item) error {
	key := it.Key()
	if _, ok := s.index[key]; ok {
		return newDuplicateError(s.name, key.String())
	}
	it.Arrival = s.sched.Now()
	s.index[key] = struct{}{}
	s.items = append(s.items, it)
	s.ins++
	return nil
}

// RemoveMatching removes and returns the oldest available item matching the
// predicate, bypassing the order queue. Items that arrived this tick are not
// considered. Returns NotFound when nothing matches.
func (s *ItemStore) RemoveMatching(pred Predicate) (*material.Item, error) {
	now := s.sched.Now()
	for i, it := range s.items {
		if it.Arrival >= now {
			break
		}
		if matches(pred, it) {
			s.removeAt(i)
			s.outs++
			return it, nil
		}
	}
	return nil, newNotFoundError(s.name)
}

// SubmitOrder queues an asynchronous request for count items matching pred
// (nil matches everything) at the given priority, and returns the event it
// will be resolved through. The event's value is the granted items as a
// []*material.Item: up to count of the oldest available matches, nil when
// none were available, and an empty non-nil slice for a zero-count order.
//
// Must be called from a process body or before the scheduler runs.
func (s *ItemStore) SubmitOrder(count int, priority int, pred Predicate) *sim.Event {
	if count < 0 {
		panic(fmt.Sprintf("store: negative order count %d on %s", count, s.name))
	}
	ev := s.sched.NewEvent()
	s.queue.push(&order{priority: priority, count: count, pred: pred, result: ev})
	s.bar.submitted()
	return ev
}

// QueuedOrders returns how many orders await the current fulfillment pass.
func (s *ItemStore) QueuedOrders() int { return s.queue.Len() }

// drainOrders resolves every queued order in (priority, sequence) order,
// granting up to the requested count of the oldest available matches.
func (s *ItemStore) drainOrders(p *sim.Process) {
	now := p.Now()
	for s.queue.Len() > 0 {
		o := s.queue.pop()
		if o.count == 0 {
			o.result.Resolve([]*material.Item{})
			continue
		}

		var granted []*material.Item
		i := 0
		for i < len(s.items) && len(granted) < o.count {
			it := s.items[i]
			if it.Arrival >= now {
				break
			}
			if matches(o.pred, it) {
				granted = append(granted, it)
				s.removeAt(i)
				continue
			}
			i++
		}
		s.outs += int64(len(granted))
		o.result.Resolve(granted)
	}
}

// removeAt removes the item at index i, preserving arrival order.
func (s *ItemStore) removeAt(i int) {
	it := s.items[i]
	delete(s.index, it.Key())
	copy(s.items[i:], s.items[i+1:])
	s.items[len(s.items)-1] = nil
	s.items = s.items[:len(s.items)-1]
}

// TakeSnapshot records the store's state at a tick and resets the in/out
// counters, closing one accounting window.
func (s *ItemStore) TakeSnapshot(tick int64) {
	s.snaps = append(s.snaps, Snapshot{
		Tick:  tick,
		Level: s.Weight(),
		Count: len(s.items),
		Ins:   float64(s.ins),
		Outs:  float64(s.outs),
	})
	s.ins = 0
	s.outs = 0
}

// Snapshots returns all snapshots taken so far, oldest first.
func (s *ItemStore) Snapshots() []Snapshot { return s.snaps }
