package facility

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/matflow/matflow/internal/material"
	"github.com/matflow/matflow/internal/sim"
	"github.com/matflow/matflow/internal/store"
)

// ConversionConfig parameterizes a Conversion facility.
type ConversionConfig struct {
	// Source names the upstream shipper drums are ordered from.
	Source string
	// Priority of this facility's orders, lower is served first.
	Priority int
	// InMaterial and OutMaterial name the converted compounds.
	InMaterial  string
	OutMaterial string
	// DrumWeightKG is the weight of each output drum.
	DrumWeightKG float64
	// ReceivingThroughput caps drums ordered per tick.
	ReceivingThroughput int
	// ReceivingMaxInventory caps the receiving store, in drums.
	ReceivingMaxInventory int
	// MaxDrumThroughput caps drums opened and drums filled per tick.
	MaxDrumThroughput int
	// ShippingMaxInventory caps the shipping store, in drums.
	ShippingMaxInventory int
	// ProcessCapacityKG bounds each in-process component store.
	ProcessCapacityKG float64
}

func (c *ConversionConfig) applyDefaults() {
	if c.Priority == 0 {
		c.Priority = 1
	}
	if c.InMaterial == "" {
		c.InMaterial = "U3O8"
	}
	if c.OutMaterial == "" {
		c.OutMaterial = "UF6"
	}
	if c.DrumWeightKG == 0 {
		c.DrumWeightKG = 400
	}
	if c.ReceivingThroughput == 0 {
		c.ReceivingThroughput = 7
	}
	if c.ReceivingMaxInventory == 0 {
		c.ReceivingMaxInventory = 40
	}
	if c.MaxDrumThroughput == 0 {
		c.MaxDrumThroughput = 6
	}
	if c.ShippingMaxInventory == 0 {
		c.ShippingMaxInventory = 30
	}
	if c.ProcessCapacityKG == 0 {
		c.ProcessCapacityKG = 50000
	}
}

// Conversion receives drums of its input compound, opens them into
// per-component bulk stores, and packs the components shared with the output
// compound into fresh output drums.
type Conversion struct {
	name string
	ix   *material.Indexer
	cfg  ConversionConfig

	in  material.Material
	out material.Material
	// components shared by both compounds; everything else is a byproduct
	// that never enters the process stores.
	components []string

	receiving *store.ItemStore
	process   map[string]*store.QuantityStore
	shipping  *store.ItemStore
}

// NewConversion builds a conversion facility and its stores.
func NewConversion(sched *sim.Scheduler, name string, ix *material.Indexer, cfg ConversionConfig) (*Conversion, error) {
	cfg.applyDefaults()
	in, err := material.ByName(cfg.InMaterial)
	if err != nil {
		return nil, fmt.Errorf("facility %s: %w", name, err)
	}
	out, err := material.ByName(cfg.OutMaterial)
	if err != nil {
		return nil, fmt.Errorf("facility %s: %w", name, err)
	}

	c := &Conversion{
		name:       name,
		ix:         ix,
		cfg:        cfg,
		in:         in,
		out:        out,
		components: material.CommonComponents(in, out),
		receiving:  store.NewItemStore(sched, name+"/receiving"),
		process:    make(map[string]*store.QuantityStore),
		shipping:   store.NewItemStore(sched, name+"/shipping"),
	}
	if len(c.components) == 0 {
		return nil, fmt.Errorf("facility %s: %s and %s share no components", name, cfg.InMaterial, cfg.OutMaterial)
	}
	for _, comp := range c.components {
		c.process[comp] = store.NewQuantityStore(sched, name+"/"+comp+"_in_process",
			store.WithCapacity(cfg.ProcessCapacityKG))
	}
	return c, nil
}

func (c *Conversion) Name() string { return c.name }

func (c *Conversion) Shipping() *store.ItemStore { return c.shipping }

func (c *Conversion) Stores() map[string]store.Inventory {
	stores := map[string]store.Inventory{
		"receiving": c.receiving,
		"shipping":  c.shipping,
	}
	for comp, qs := range c.process {
		stores[comp+"_in_process"] = qs
	}
	return stores
}

// Start spawns the receiving and chemistry processes.
func (c *Conversion) Start(sched *sim.Scheduler, facilities map[string]Facility) error {
	shipper, err := resolveShipper(facilities, c.name, c.cfg.Source)
	if err != nil {
		return err
	}

	sched.Spawn(c.name+"/receiving", func(p *sim.Process) error {
		for {
			n := c.cfg.ReceivingThroughput
			if room := c.cfg.ReceivingMaxInventory - c.receiving.CountAvailable(nil); room < n {
				n = room
			}
			if n > 0 && c.shipping.Count(nil) < c.cfg.ShippingMaxInventory {
				got := p.WaitEvent(shipper.Shipping().SubmitOrder(n, c.cfg.Priority, nil)).([]*material.Item)
				if err := receive(c.receiving, c.name, p.Now(), got); err != nil {
					return err
				}
				slog.Debug("drums received", "facility", c.name, "tick", p.Now(), "count", len(got))
			}
			p.Wait(1)
		}
	})

	sched.Spawn(c.name+"/chemistry", func(p *sim.Process) error {
		for {
			if err := c.openDrums(p); err != nil {
				return err
			}
			if err := c.fillDrums(p); err != nil {
				return err
			}
			p.Wait(1)
		}
	})
	return nil
}

// openDrums moves drums from receiving into the per-component process
// stores, limited by throughput and by the process stores' headroom.
func (c *Conversion) openDrums(p *sim.Process) error {
	n := c.receiving.CountAvailable(nil)
	if n > c.cfg.MaxDrumThroughput {
		n = c.cfg.MaxDrumThroughput
	}
	// One drum deposits drumWeight*fraction into each component store; do
	// not open more than the tightest store can absorb.
	for _, comp := range c.components {
		perDrum := c.cfg.DrumWeightKG * c.in.Fraction(comp)
		if perDrum <= 0 {
			continue
		}
		headroom := c.process[comp].Capacity() - c.process[comp].Level()
		if fit := int(math.Floor(headroom / perDrum)); fit < n {
			n = fit
		}
	}
	if n <= 0 {
		return nil
	}

	opened := p.WaitEvent(c.receiving.SubmitOrder(n, c.cfg.Priority, nil)).([]*material.Item)
	for _, drum := range opened {
		for _, comp := range c.components {
			if err := c.process[comp].Deposit(drum.Weight * drum.Material.Fraction(comp)); err != nil {
				return err
			}
		}
	}
	slog.Debug("drums opened", "facility", c.name, "tick", p.Now(), "count", len(opened))
	return nil
}

// fillDrums packs output drums from the process stores until throughput,
// shipping inventory, or a component store runs out.
func (c *Conversion) fillDrums(p *sim.Process) error {
	filled := 0
	for filled < c.cfg.MaxDrumThroughput && c.shipping.Count(nil) < c.cfg.ShippingMaxInventory {
		covered := true
		for _, comp := range c.components {
			if c.process[comp].Level() < c.cfg.DrumWeightKG*c.out.Fraction(comp) {
				covered = false
				break
			}
		}
		if !covered {
			break
		}
		for _, comp := range c.components {
			if err := c.process[comp].Withdraw(c.cfg.DrumWeightKG * c.out.Fraction(comp)); err != nil {
				return err
			}
		}
		drum := c.ix.NewItem(material.KindDrum, c.cfg.DrumWeightKG, p.Now(), c.name, c.out)
		if err := c.shipping.Insert(drum); err != nil {
			return err
		}
		filled++
	}
	slog.Debug("drums filled", "facility", c.name, "tick", p.Now(), "count", filled)
	return nil
}
