// Package facility implements the fuel cycle facilities that exchange
// material through stores: a mine, a converter, an enrichment plant, a fuel
// fabricator and a reactor. Each facility owns its stores and spawns one or
// more scheduler processes on a weekly (one tick) cycle.
package facility

import (
	"fmt"
	"sort"

	"github.com/matflow/matflow/internal/material"
	"github.com/matflow/matflow/internal/sim"
	"github.com/matflow/matflow/internal/store"
)

// Facility is one node of the fuel cycle.
type Facility interface {
	// Name returns the facility's unique name.
	Name() string

	// Stores returns the facility's stores keyed by a stable store name,
	// for the inventory monitor and the recorder.
	Stores() map[string]store.Inventory

	// Start spawns the facility's processes. facilities maps every facility
	// in the run by name, so downstream facilities can resolve their source.
	Start(sched *sim.Scheduler, facilities map[string]Facility) error
}

// Shipper is a facility with an outbound item store that downstream
// facilities order from.
type Shipper interface {
	Facility
	Shipping() *store.ItemStore
}

// resolveShipper looks up a facility's configured source and checks it can
// ship items.
func resolveShipper(facilities map[string]Facility, name, source string) (Shipper, error) {
	if source == "" {
		return nil, fmt.Errorf("facility %s: no source configured", name)
	}
	f, ok := facilities[source]
	if !ok {
		return nil, fmt.Errorf("facility %s: source %q not found", name, source)
	}
	sh, ok := f.(Shipper)
	if !ok {
		return nil, fmt.Errorf("facility %s: source %q does not ship items", name, source)
	}
	return sh, nil
}

// receive places granted items into a receiving store, updating each item's
// location history.
func receive(dst *store.ItemStore, facility string, tick int64, items []*material.Item) error {
	for _, it := range items {
		it.Relocate(tick, facility)
		if err := dst.Insert(it); err != nil {
			return err
		}
	}
	return nil
}

// sortedStoreNames returns the store names in a stable order, so monitoring
// and recording iterate deterministically.
func sortedStoreNames(stores map[string]store.Inventory) []string {
	names := make([]string, 0, len(stores))
	for name := range stores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
