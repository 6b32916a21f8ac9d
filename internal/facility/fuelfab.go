package facility

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/matflow/matflow/internal/material"
	"github.com/matflow/matflow/internal/sim"
	"github.com/matflow/matflow/internal/store"
)

// FuelFabConfig parameterizes a FuelFab facility.
type FuelFabConfig struct {
	// Source names the upstream shipper drums are ordered from.
	Source string
	// Priority of this facility's orders.
	Priority int
	// InMaterial names the powder compound drums carry.
	InMaterial string
	// ReceivingThroughput caps drums ordered per tick.
	ReceivingThroughput int
	// ReceivingMaxInventory caps the receiving store, in drums.
	ReceivingMaxInventory int
	// ThroughputPellets caps pellets pressed per tick.
	ThroughputPellets int
	// PelletWeightKG is the weight of one pellet.
	PelletWeightKG float64
	// PelletBatchSize is the pellets per pellet batch item.
	PelletBatchSize int
	// ThroughputRods caps rods filled per tick.
	ThroughputRods int
	// PelletsPerRod is the pellets loaded into one rod.
	PelletsPerRod int
	// ThroughputAssemblies caps assemblies built per tick.
	ThroughputAssemblies int
	// RodsPerAssembly is the rods bundled into one assembly.
	RodsPerAssembly int
}

func (c *FuelFabConfig) applyDefaults() {
	if c.Priority == 0 {
		c.Priority = 1
	}
	if c.InMaterial == "" {
		c.InMaterial = "UO2"
	}
	if c.ReceivingThroughput == 0 {
		c.ReceivingThroughput = 7
	}
	if c.ReceivingMaxInventory == 0 {
		c.ReceivingMaxInventory = 40
	}
	if c.ThroughputPellets == 0 {
		c.ThroughputPellets = 124320
	}
	if c.PelletWeightKG == 0 {
		c.PelletWeightKG = 0.02
	}
	if c.PelletBatchSize == 0 {
		c.PelletBatchSize = 600
	}
	if c.ThroughputRods == 0 {
		c.ThroughputRods = 4144
	}
	if c.PelletsPerRod == 0 {
		c.PelletsPerRod = 30
	}
	if c.ThroughputAssemblies == 0 {
		c.ThroughputAssemblies = 112
	}
	if c.RodsPerAssembly == 0 {
		c.RodsPerAssembly = 37
	}
}

// FuelFab turns received powder drums into pellet batches, rods and finally
// fuel assemblies: drums → powder (bulk) → pellet batches → rods →
// assemblies in the shipping store.
type FuelFab struct {
	name string
	ix   *material.Indexer
	cfg  FuelFabConfig

	in material.Material

	receiving *store.ItemStore
	powder    *store.QuantityStore
	pellets   *store.ItemStore
	rods      *store.ItemStore
	shipping  *store.ItemStore
}

// NewFuelFab builds a fuel fabrication plant and its stores.
func NewFuelFab(sched *sim.Scheduler, name string, ix *material.Indexer, cfg FuelFabConfig) (*FuelFab, error) {
	cfg.applyDefaults()
	in, err := material.ByName(cfg.InMaterial)
	if err != nil {
		return nil, fmt.Errorf("facility %s: %w", name, err)
	}
	return &FuelFab{
		name:      name,
		ix:        ix,
		cfg:       cfg,
		in:        in,
		receiving: store.NewItemStore(sched, name+"/receiving"),
		powder:    store.NewQuantityStore(sched, name+"/powder"),
		pellets:   store.NewItemStore(sched, name+"/pellets"),
		rods:      store.NewItemStore(sched, name+"/rods"),
		shipping:  store.NewItemStore(sched, name+"/shipping"),
	}, nil
}

func (f *FuelFab) Name() string { return f.name }

func (f *FuelFab) Shipping() *store.ItemStore { return f.shipping }

func (f *FuelFab) Stores() map[string]store.Inventory {
	return map[string]store.Inventory{
		"receiving": f.receiving,
		"powder":    f.powder,
		"pellets":   f.pellets,
		"rods":      f.rods,
		"shipping":  f.shipping,
	}
}

// Start spawns the receiving, pellet press, rod fill and assembly processes.
func (f *FuelFab) Start(sched *sim.Scheduler, facilities map[string]Facility) error {
	shipper, err := resolveShipper(facilities, f.name, f.cfg.Source)
	if err != nil {
		return err
	}

	sched.Spawn(f.name+"/receiving", func(p *sim.Process) error {
		for {
			n := f.cfg.ReceivingThroughput
			if room := f.cfg.ReceivingMaxInventory - f.receiving.CountAvailable(nil); room < n {
				n = room
			}
			if n > 0 {
				got := p.WaitEvent(shipper.Shipping().SubmitOrder(n, f.cfg.Priority, nil)).([]*material.Item)
				if err := receive(f.receiving, f.name, p.Now(), got); err != nil {
					return err
				}
			}
			p.Wait(1)
		}
	})

	sched.Spawn(f.name+"/pellet-press", func(p *sim.Process) error {
		for {
			if err := f.pressPellets(p); err != nil {
				return err
			}
			p.Wait(1)
		}
	})

	sched.Spawn(f.name+"/rod-fill", func(p *sim.Process) error {
		var pelletBuffer int // pellets on hand from granted batches
		for {
			if err := f.fillRods(p, &pelletBuffer); err != nil {
				return err
			}
			p.Wait(1)
		}
	})

	sched.Spawn(f.name+"/assembler", func(p *sim.Process) error {
		var rodBuffer []*material.Item
		for {
			if err := f.assemble(p, &rodBuffer); err != nil {
				return err
			}
			p.Wait(1)
		}
	})
	return nil
}

// pressPellets opens received drums into the powder store and presses the
// powder into pellet batch items.
func (f *FuelFab) pressPellets(p *sim.Process) error {
	batchWeight := float64(f.cfg.PelletBatchSize) * f.cfg.PelletWeightKG

	n := f.receiving.CountAvailable(nil)
	if n > 0 {
		opened := p.WaitEvent(f.receiving.SubmitOrder(n, f.cfg.Priority, nil)).([]*material.Item)
		for _, drum := range opened {
			if err := f.powder.Deposit(drum.Weight); err != nil {
				return err
			}
		}
	}

	pellets := int(math.Floor(f.powder.Level() / f.cfg.PelletWeightKG))
	if pellets > f.cfg.ThroughputPellets {
		pellets = f.cfg.ThroughputPellets
	}
	batches := pellets / f.cfg.PelletBatchSize
	for i := 0; i < batches; i++ {
		if err := f.powder.Withdraw(batchWeight); err != nil {
			return err
		}
		batch := f.ix.NewItem(material.KindPellet, batchWeight, p.Now(), f.name, f.in)
		if err := f.pellets.Insert(batch); err != nil {
			return err
		}
	}
	if batches > 0 {
		slog.Debug("pellet batches pressed", "facility", f.name, "tick", p.Now(), "count", batches)
	}
	return nil
}

// fillRods orders pellet batches and fills rods from the buffered pellets.
func (f *FuelFab) fillRods(p *sim.Process, pelletBuffer *int) error {
	batchesNeeded := f.cfg.ThroughputRods * f.cfg.PelletsPerRod / f.cfg.PelletBatchSize
	granted := p.WaitEvent(f.pellets.SubmitOrder(batchesNeeded, f.cfg.Priority, nil)).([]*material.Item)
	*pelletBuffer += len(granted) * f.cfg.PelletBatchSize

	rodsToMake := *pelletBuffer / f.cfg.PelletsPerRod
	if rodsToMake > f.cfg.ThroughputRods {
		rodsToMake = f.cfg.ThroughputRods
	}
	rodWeight := float64(f.cfg.PelletsPerRod) * f.cfg.PelletWeightKG
	for i := 0; i < rodsToMake; i++ {
		rod := f.ix.NewItem(material.KindRod, rodWeight, p.Now(), f.name, f.in)
		if err := f.rods.Insert(rod); err != nil {
			return err
		}
	}
	*pelletBuffer -= rodsToMake * f.cfg.PelletsPerRod
	if rodsToMake > 0 {
		slog.Debug("rods filled", "facility", f.name, "tick", p.Now(), "count", rodsToMake)
	}
	return nil
}

// assemble orders rods and bundles them into fuel assemblies.
func (f *FuelFab) assemble(p *sim.Process, rodBuffer *[]*material.Item) error {
	want := f.cfg.ThroughputAssemblies*f.cfg.RodsPerAssembly - len(*rodBuffer)
	if want > 0 {
		granted := p.WaitEvent(f.rods.SubmitOrder(want, f.cfg.Priority, nil)).([]*material.Item)
		*rodBuffer = append(*rodBuffer, granted...)
	}

	built := 0
	for len(*rodBuffer) >= f.cfg.RodsPerAssembly && built < f.cfg.ThroughputAssemblies {
		bundle := (*rodBuffer)[:f.cfg.RodsPerAssembly]
		*rodBuffer = (*rodBuffer)[f.cfg.RodsPerAssembly:]

		var weight float64
		for _, rod := range bundle {
			weight += rod.Weight
		}
		assembly := f.ix.NewItem(material.KindAssembly, weight, p.Now(), f.name, f.in)
		if err := f.shipping.Insert(assembly); err != nil {
			return err
		}
		built++
	}
	if built > 0 {
		slog.Debug("assemblies built", "facility", f.name, "tick", p.Now(), "count", built)
	}
	return nil
}
