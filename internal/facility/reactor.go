package facility

import (
	"fmt"
	"log/slog"

	"github.com/matflow/matflow/internal/material"
	"github.com/matflow/matflow/internal/sim"
	"github.com/matflow/matflow/internal/store"
)

// ReactorConfig parameterizes a Reactor facility.
type ReactorConfig struct {
	// Source names the upstream shipper assemblies are ordered from.
	Source string
	// Priority of this facility's orders.
	Priority int
	// ReceivingThroughput caps assemblies ordered per tick.
	ReceivingThroughput int
	// ReceivingMaxInventory caps the fresh fuel store, in assemblies.
	ReceivingMaxInventory int
	// ReloadBatchSize is the assemblies moved into the core per reload.
	ReloadBatchSize int
	// CoreCapacity is the assemblies in a full core.
	CoreCapacity int
	// LoadTicks is the ticks between reload operations.
	LoadTicks int64
	// SpentPuFraction is the mass fraction transmuted to plutonium over one
	// stay in the core.
	SpentPuFraction float64
}

func (c *ReactorConfig) applyDefaults() {
	if c.Priority == 0 {
		c.Priority = 1
	}
	if c.ReceivingThroughput == 0 {
		c.ReceivingThroughput = 112
	}
	if c.ReceivingMaxInventory == 0 {
		c.ReceivingMaxInventory = 300
	}
	if c.ReloadBatchSize == 0 {
		c.ReloadBatchSize = 112
	}
	if c.CoreCapacity == 0 {
		c.CoreCapacity = 4560
	}
	if c.LoadTicks == 0 {
		c.LoadTicks = 1
	}
	if c.SpentPuFraction == 0 {
		c.SpentPuFraction = 0.0023
	}
}

// Reactor receives fresh fuel assemblies and cycles them through a
// fixed-capacity core. Once the core is full, loading a fresh assembly first
// unloads the oldest one, irradiates its material and moves it to the spent
// fuel store.
type Reactor struct {
	name string
	cfg  ReactorConfig

	receiving *store.ItemStore
	core      *store.ItemStore
	spent     *store.ItemStore

	online bool
}

// NewReactor builds a reactor and its stores.
func NewReactor(sched *sim.Scheduler, name string, cfg ReactorConfig) (*Reactor, error) {
	cfg.applyDefaults()
	if cfg.ReloadBatchSize > cfg.CoreCapacity {
		return nil, fmt.Errorf("facility %s: reload batch %d exceeds core capacity %d", name, cfg.ReloadBatchSize, cfg.CoreCapacity)
	}
	return &Reactor{
		name:      name,
		cfg:       cfg,
		receiving: store.NewItemStore(sched, name+"/receiving"),
		core:      store.NewItemStore(sched, name+"/core"),
		spent:     store.NewItemStore(sched, name+"/spent_fuel"),
	}, nil
}

func (r *Reactor) Name() string { return r.name }

// Online reports whether the core has reached capacity at least once.
func (r *Reactor) Online() bool { return r.online }

func (r *Reactor) Stores() map[string]store.Inventory {
	return map[string]store.Inventory{
		"receiving":  r.receiving,
		"core":       r.core,
		"spent_fuel": r.spent,
	}
}

// Start spawns the receiving and core loading processes.
func (r *Reactor) Start(sched *sim.Scheduler, facilities map[string]Facility) error {
	shipper, err := resolveShipper(facilities, r.name, r.cfg.Source)
	if err != nil {
		return err
	}

	assemblies := store.MatchKind(material.KindAssembly)

	sched.Spawn(r.name+"/receiving", func(p *sim.Process) error {
		for {
			n := r.cfg.ReceivingThroughput
			if room := r.cfg.ReceivingMaxInventory - r.receiving.CountAvailable(nil); room < n {
				n = room
			}
			if n > 0 {
				got := p.WaitEvent(shipper.Shipping().SubmitOrder(n, r.cfg.Priority, assemblies)).([]*material.Item)
				if err := receive(r.receiving, r.name, p.Now(), got); err != nil {
					return err
				}
			}
			p.Wait(1)
		}
	})

	sched.Spawn(r.name+"/load", func(p *sim.Process) error {
		for {
			if err := r.loadCore(p, assemblies); err != nil {
				return err
			}
			p.Wait(r.cfg.LoadTicks)
		}
	})
	return nil
}

// loadCore moves one reload batch from the fresh fuel store into the core,
// displacing the oldest assemblies to spent fuel when the core is full.
func (r *Reactor) loadCore(p *sim.Process, assemblies store.Predicate) error {
	fresh := p.WaitEvent(r.receiving.SubmitOrder(r.cfg.ReloadBatchSize, r.cfg.Priority, assemblies)).([]*material.Item)
	for _, next := range fresh {
		if r.core.Count(nil) >= r.cfg.CoreCapacity {
			spent, err := r.core.RemoveMatching(nil)
			if err != nil {
				return err
			}
			irradiated, err := material.Irradiate(spent.Material, r.cfg.SpentPuFraction)
			if err != nil {
				return err
			}
			spent.Material = irradiated
			spent.Relocate(p.Now(), r.name+"/spent_fuel")
			if err := r.spent.Insert(spent); err != nil {
				return err
			}
		}
		next.Relocate(p.Now(), r.name+"/core")
		if err := r.core.Insert(next); err != nil {
			return err
		}
		if !r.online && r.core.Count(nil) >= r.cfg.CoreCapacity {
			r.online = true
			slog.Info("reactor online", "facility", r.name, "tick", p.Now())
		}
	}
	if len(fresh) > 0 {
		slog.Debug("core loaded", "facility", r.name, "tick", p.Now(),
			"loaded", len(fresh), "core", r.core.Count(nil))
	}
	return nil
}
