package material

import (
	"fmt"
	"sync"
)

// Item kinds used across the simulation. Facilities may introduce more; the
// engine only ever compares kinds as opaque strings.
const (
	KindDrum     = "drum"
	KindCylinder = "cylinder"
	KindPellet   = "pellet_batch"
	KindRod      = "rod"
	KindAssembly = "fuel_assembly"
)

// Key identifies an item uniquely across the whole simulation:
// serial numbers are per-kind (see Indexer).
type Key struct {
	Kind   string
	Serial int64
}

func (k Key) String() string {
	return fmt.Sprintf("%s-%d", k.Kind, k.Serial)
}

// Movement is one hop of an item's shipping history.
type Movement struct {
	Tick     int64
	Facility string
}

// Item is a discrete simulation entity: a drum of ore concentrate, a batch
// of pellets, a fuel assembly. An item belongs to exactly one store at a
// time; ownership transfers atomically when an order is fulfilled.
type Item struct {
	Kind     string
	Serial   int64
	Weight   float64 // kg of material
	Created  int64   // tick the item was created
	Origin   string  // facility that created it
	Material Material

	// Arrival is the tick the item arrived at its current location. Stamped
	// by the receiving store; items that arrived this tick are not served
	// to same-tick retrieval orders.
	Arrival  int64
	Location string

	history []Movement
}

// Key returns the item's identity.
func (it *Item) Key() Key {
	return Key{Kind: it.Kind, Serial: it.Serial}
}

// Relocate records a shipment: the previous stay is appended to the history
// and the arrival stamp moves to the new facility at the given tick.
func (it *Item) Relocate(tick int64, facility string) {
	it.history = append(it.history, Movement{Tick: it.Arrival, Facility: it.Location})
	it.Arrival = tick
	it.Location = facility
}

// History returns the item's past stays, oldest first.
func (it *Item) History() []Movement {
	return it.history
}

func (it *Item) String() string {
	return fmt.Sprintf("%s w=%.3fkg at=%s mat=%s", it.Key(), it.Weight, it.Location, it.Material.Name)
}

// Indexer hands out per-kind serial numbers so every item created anywhere
// in the simulation has a unique identity.
//
// Safe for concurrent use, though the scheduler's handoff means calls never
// actually overlap.
type Indexer struct {
	mu   sync.Mutex
	next map[string]int64
}

// NewIndexer creates an indexer with all counters at zero.
func NewIndexer() *Indexer {
	return &Indexer{next: make(map[string]int64)}
}

// Next returns the next serial for a kind, starting at 1.
func (ix *Indexer) Next(kind string) int64 {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.next[kind]++
	return ix.next[kind]
}

// NewItem mints an item of the given kind at a facility.
func (ix *Indexer) NewItem(kind string, weight float64, tick int64, facility string, mat Material) *Item {
	return &Item{
		Kind:     kind,
		Serial:   ix.Next(kind),
		Weight:   weight,
		Created:  tick,
		Origin:   facility,
		Material: mat,
		Arrival:  tick,
		Location: facility,
	}
}
