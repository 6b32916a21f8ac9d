package facility

import (
	"fmt"
	"log/slog"

	"github.com/matflow/matflow/internal/material"
	"github.com/matflow/matflow/internal/sim"
	"github.com/matflow/matflow/internal/store"
)

// MineConfig parameterizes a Mine.
type MineConfig struct {
	// DrumThroughput is how many drums are filled per tick.
	DrumThroughput int
	// DrumWeightKG is the weight of each filled drum.
	DrumWeightKG float64
	// OutMaterial names the mined compound, U3O8 unless overridden.
	OutMaterial string
}

func (c *MineConfig) applyDefaults() {
	if c.DrumThroughput == 0 {
		c.DrumThroughput = 7
	}
	if c.DrumWeightKG == 0 {
		c.DrumWeightKG = 400
	}
	if c.OutMaterial == "" {
		c.OutMaterial = "U3O8"
	}
}

// Mine produces drums of ore concentrate into its shipping store.
type Mine struct {
	name     string
	ix       *material.Indexer
	cfg      MineConfig
	out      material.Material
	shipping *store.ItemStore
}

// NewMine builds a mine and its shipping store.
func NewMine(sched *sim.Scheduler, name string, ix *material.Indexer, cfg MineConfig) (*Mine, error) {
	cfg.applyDefaults()
	out, err := material.ByName(cfg.OutMaterial)
	if err != nil {
		return nil, fmt.Errorf("facility %s: %w", name, err)
	}
	return &Mine{
		name:     name,
		ix:       ix,
		cfg:      cfg,
		out:      out,
		shipping: store.NewItemStore(sched, name+"/shipping"),
	}, nil
}

func (m *Mine) Name() string { return m.name }

func (m *Mine) Shipping() *store.ItemStore { return m.shipping }

func (m *Mine) Stores() map[string]store.Inventory {
	return map[string]store.Inventory{"shipping": m.shipping}
}

// Start spawns the drum fill process: every tick the mine packs its
// throughput of fresh drums into the shipping store.
func (m *Mine) Start(sched *sim.Scheduler, _ map[string]Facility) error {
	sched.Spawn(m.name+"/drum-fill", func(p *sim.Process) error {
		for {
			for i := 0; i < m.cfg.DrumThroughput; i++ {
				drum := m.ix.NewItem(material.KindDrum, m.cfg.DrumWeightKG, p.Now(), m.name, m.out)
				if err := m.shipping.Insert(drum); err != nil {
					return err
				}
			}
			slog.Debug("drums mined", "facility", m.name, "tick", p.Now(), "count", m.cfg.DrumThroughput)
			p.Wait(1)
		}
	})
	return nil
}
