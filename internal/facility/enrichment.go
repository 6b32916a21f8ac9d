package facility

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/matflow/matflow/internal/material"
	"github.com/matflow/matflow/internal/sim"
	"github.com/matflow/matflow/internal/store"
)

// EnrichmentConfig parameterizes an Enrichment facility.
type EnrichmentConfig struct {
	// Source names the upstream shipper feed containers are ordered from.
	Source string
	// Priority of this facility's orders.
	Priority int
	// FeedMaterial names the cascade feed compound.
	FeedMaterial string
	// ProductEnrichment is the product U235 fraction of uranium content.
	ProductEnrichment float64
	// TailDepletion is the tails U235 fraction of uranium content.
	TailDepletion float64
	// ProductRateKG caps enriched product produced per tick.
	ProductRateKG float64
	// CylinderWeightKG is the weight of each filled product cylinder.
	CylinderWeightKG float64
	// FeedContainerWeightKG is the nominal weight of inbound containers,
	// used to size feed orders.
	FeedContainerWeightKG float64
	// MaxCylinderThroughput caps cylinders filled per tick.
	MaxCylinderThroughput int
	// ReceivingThroughput caps containers ordered per tick.
	ReceivingThroughput int
	// ReceivingMaxInventory caps the receiving store, in containers.
	ReceivingMaxInventory int
}

func (c *EnrichmentConfig) applyDefaults() {
	if c.Priority == 0 {
		c.Priority = 1
	}
	if c.FeedMaterial == "" {
		c.FeedMaterial = "UF6"
	}
	if c.ProductEnrichment == 0 {
		c.ProductEnrichment = 0.05
	}
	if c.TailDepletion == 0 {
		c.TailDepletion = 0.003
	}
	if c.ProductRateKG == 0 {
		c.ProductRateKG = 36822
	}
	if c.CylinderWeightKG == 0 {
		c.CylinderWeightKG = 2277
	}
	if c.FeedContainerWeightKG == 0 {
		c.FeedContainerWeightKG = 400
	}
	if c.MaxCylinderThroughput == 0 {
		c.MaxCylinderThroughput = 10
	}
	if c.ReceivingThroughput == 0 {
		c.ReceivingThroughput = 7
	}
	if c.ReceivingMaxInventory == 0 {
		c.ReceivingMaxInventory = 40
	}
}

// Enrichment feeds received containers into a cascade that splits uranium
// into an enriched product stream and a depleted tails stream by a fixed cut
// fraction, then packs product cylinders for shipping.
type Enrichment struct {
	name string
	ix   *material.Indexer
	cfg  EnrichmentConfig

	feedMat    material.Material
	productMat material.Material
	tailMat    material.Material
	// cut is the product share of the feed stream, derived from the feed,
	// product and tail U235 fractions.
	cut float64
	// feedRateKG is the feed consumed per tick to sustain ProductRateKG.
	feedRateKG float64

	receiving *store.ItemStore
	feed      *store.QuantityStore
	product   *store.QuantityStore
	tails     *store.QuantityStore
	shipping  *store.ItemStore
}

// NewEnrichment builds an enrichment plant and its stores.
func NewEnrichment(sched *sim.Scheduler, name string, ix *material.Indexer, cfg EnrichmentConfig) (*Enrichment, error) {
	cfg.applyDefaults()
	feedMat, err := material.ByName(cfg.FeedMaterial)
	if err != nil {
		return nil, fmt.Errorf("facility %s: %w", name, err)
	}
	productMat, err := material.Enrich(feedMat, cfg.ProductEnrichment)
	if err != nil {
		return nil, fmt.Errorf("facility %s: %w", name, err)
	}
	tailMat, err := material.Deplete(feedMat, cfg.TailDepletion)
	if err != nil {
		return nil, fmt.Errorf("facility %s: %w", name, err)
	}

	cut := (feedMat.Fraction("U235") - tailMat.Fraction("U235")) /
		(productMat.Fraction("U235") - tailMat.Fraction("U235"))
	if cut <= 0 || cut >= 1 {
		return nil, fmt.Errorf("facility %s: cascade cut %v out of range; check enrichment and depletion", name, cut)
	}

	return &Enrichment{
		name:       name,
		ix:         ix,
		cfg:        cfg,
		feedMat:    feedMat,
		productMat: productMat,
		tailMat:    tailMat,
		cut:        cut,
		feedRateKG: cfg.ProductRateKG / cut,
		receiving:  store.NewItemStore(sched, name+"/receiving"),
		feed:       store.NewQuantityStore(sched, name+"/cascade_feed"),
		product:    store.NewQuantityStore(sched, name+"/cascade_product"),
		tails:      store.NewQuantityStore(sched, name+"/tails"),
		shipping:   store.NewItemStore(sched, name+"/shipping"),
	}, nil
}

func (e *Enrichment) Name() string { return e.name }

func (e *Enrichment) Shipping() *store.ItemStore { return e.shipping }

func (e *Enrichment) Stores() map[string]store.Inventory {
	return map[string]store.Inventory{
		"receiving":       e.receiving,
		"cascade_feed":    e.feed,
		"cascade_product": e.product,
		"tails":           e.tails,
		"shipping":        e.shipping,
	}
}

// Start spawns the receiving and cascade processes.
func (e *Enrichment) Start(sched *sim.Scheduler, facilities map[string]Facility) error {
	shipper, err := resolveShipper(facilities, e.name, e.cfg.Source)
	if err != nil {
		return err
	}

	sched.Spawn(e.name+"/receiving", func(p *sim.Process) error {
		for {
			n := e.cfg.ReceivingThroughput
			if room := e.cfg.ReceivingMaxInventory - e.receiving.CountAvailable(nil); room < n {
				n = room
			}
			if n > 0 {
				got := p.WaitEvent(shipper.Shipping().SubmitOrder(n, e.cfg.Priority, nil)).([]*material.Item)
				if err := receive(e.receiving, e.name, p.Now(), got); err != nil {
					return err
				}
				slog.Debug("feed received", "facility", e.name, "tick", p.Now(), "count", len(got))
			}
			p.Wait(1)
		}
	})

	sched.Spawn(e.name+"/cascade", func(p *sim.Process) error {
		for {
			if err := e.runCascade(p); err != nil {
				return err
			}
			p.Wait(1)
		}
	})
	return nil
}

// runCascade executes one tick of the cascade: open enough feed containers
// to sustain the feed rate, split the feed into product and tails, and pack
// product cylinders.
func (e *Enrichment) runCascade(p *sim.Process) error {
	// Open feed containers into the feed store.
	want := int(math.Ceil((e.feedRateKG - e.feed.Level()) / e.cfg.FeedContainerWeightKG))
	n := e.receiving.CountAvailable(nil)
	if want < n {
		n = want
	}
	if n > 0 {
		opened := p.WaitEvent(e.receiving.SubmitOrder(n, e.cfg.Priority, nil)).([]*material.Item)
		for _, it := range opened {
			if err := e.feed.Deposit(it.Weight); err != nil {
				return err
			}
		}
	}

	// Feed the cascade and split the stream.
	feedKG := e.feedRateKG
	if level := e.feed.Level(); level < feedKG {
		feedKG = level
	}
	if feedKG > 0 {
		if err := e.feed.Withdraw(feedKG); err != nil {
			return err
		}
		if err := e.product.Deposit(feedKG * e.cut); err != nil {
			return err
		}
		if err := e.tails.Deposit(feedKG * (1 - e.cut)); err != nil {
			return err
		}
	}

	// Pack product cylinders.
	filled := 0
	for filled < e.cfg.MaxCylinderThroughput && e.product.Level() >= e.cfg.CylinderWeightKG {
		if err := e.product.Withdraw(e.cfg.CylinderWeightKG); err != nil {
			return err
		}
		cyl := e.ix.NewItem(material.KindCylinder, e.cfg.CylinderWeightKG, p.Now(), e.name, e.productMat)
		if err := e.shipping.Insert(cyl); err != nil {
			return err
		}
		filled++
	}
	slog.Debug("cascade cycled", "facility", e.name, "tick", p.Now(),
		"fed_kg", feedKG, "cylinders", filled)
	return nil
}
