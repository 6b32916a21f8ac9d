package scenario

import (
	"fmt"

	"github.com/matflow/matflow/internal/facility"
	"github.com/matflow/matflow/internal/material"
	"github.com/matflow/matflow/internal/sim"
)

// Build constructs the scenario's facilities against a scheduler, in
// declaration order. The caller starts them.
func Build(sched *sim.Scheduler, ix *material.Indexer, sc *Scenario) ([]facility.Facility, error) {
	out := make([]facility.Facility, 0, len(sc.Facilities))
	for _, fc := range sc.Facilities {
		f, err := buildOne(sched, ix, fc)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// Start wires and launches the facilities plus their inventory monitors.
func Start(sched *sim.Scheduler, facilities []facility.Facility) error {
	byName := make(map[string]facility.Facility, len(facilities))
	for _, f := range facilities {
		byName[f.Name()] = f
	}
	for _, f := range facilities {
		if err := f.Start(sched, byName); err != nil {
			return err
		}
		facility.MonitorInventory(sched, f)
	}
	return nil
}

func buildOne(sched *sim.Scheduler, ix *material.Indexer, fc FacilityConfig) (facility.Facility, error) {
	p := fc.Parameters
	switch fc.Type {
	case "Mine":
		return facility.NewMine(sched, fc.Name, ix, facility.MineConfig{
			DrumThroughput: p.DrumThroughput,
			DrumWeightKG:   p.DrumWeightKG,
			OutMaterial:    p.OutMaterial,
		})
	case "Conversion":
		return facility.NewConversion(sched, fc.Name, ix, facility.ConversionConfig{
			Source:                p.Source,
			Priority:              p.Priority,
			InMaterial:            p.InMaterial,
			OutMaterial:           p.OutMaterial,
			DrumWeightKG:          p.DrumWeightKG,
			ReceivingThroughput:   p.ReceivingThroughput,
			ReceivingMaxInventory: p.ReceivingMaxInventory,
			MaxDrumThroughput:     p.MaxDrumThroughput,
			ShippingMaxInventory:  p.ShippingMaxInventory,
			ProcessCapacityKG:     p.ProcessCapacityKG,
		})
	case "Enrichment":
		return facility.NewEnrichment(sched, fc.Name, ix, facility.EnrichmentConfig{
			Source:                p.Source,
			Priority:              p.Priority,
			FeedMaterial:          p.FeedMaterial,
			ProductEnrichment:     p.ProductEnrichment,
			TailDepletion:         p.TailDepletion,
			ProductRateKG:         p.ProductRateKG,
			CylinderWeightKG:      p.CylinderWeightKG,
			FeedContainerWeightKG: p.FeedContainerWeightKG,
			MaxCylinderThroughput: p.MaxCylinderThroughput,
			ReceivingThroughput:   p.ReceivingThroughput,
			ReceivingMaxInventory: p.ReceivingMaxInventory,
		})
	case "FuelFab":
		return facility.NewFuelFab(sched, fc.Name, ix, facility.FuelFabConfig{
			Source:                p.Source,
			Priority:              p.Priority,
			InMaterial:            p.InMaterial,
			ReceivingThroughput:   p.ReceivingThroughput,
			ReceivingMaxInventory: p.ReceivingMaxInventory,
			ThroughputPellets:     p.ThroughputPellets,
			PelletWeightKG:        p.PelletWeightKG,
			PelletBatchSize:       p.PelletBatchSize,
			ThroughputRods:        p.ThroughputRods,
			PelletsPerRod:         p.PelletsPerRod,
			ThroughputAssemblies:  p.ThroughputAssemblies,
			RodsPerAssembly:       p.RodsPerAssembly,
		})
	case "Reactor":
		return facility.NewReactor(sched, fc.Name, facility.ReactorConfig{
			Source:                p.Source,
			Priority:              p.Priority,
			ReceivingThroughput:   p.ReceivingThroughput,
			ReceivingMaxInventory: p.ReceivingMaxInventory,
			ReloadBatchSize:       p.ReloadBatchSize,
			CoreCapacity:          p.CoreCapacity,
			LoadTicks:             p.LoadTicks,
			SpentPuFraction:       p.SpentPuFraction,
		})
	default:
		return nil, fmt.Errorf("facility %q: unknown type %q", fc.Name, fc.Type)
	}
}
