// Package scenario loads and validates fuel cycle run definitions: the run
// name, its duration in ticks, and the facility graph with per-facility
// parameters. Files are YAML, checked twice: a strict decode rejects unknown
// fields (typos), then the embedded CUE schema checks types and bounds.
package scenario

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE []byte

// Scenario is one simulation run definition.
type Scenario struct {
	// Name identifies the run.
	Name string `yaml:"name"`

	// Duration is the number of ticks to simulate.
	Duration int64 `yaml:"duration"`

	// Facilities lists the fuel cycle facilities in declaration order.
	// Downstream facilities reference their source by name.
	Facilities []FacilityConfig `yaml:"facilities"`
}

// FacilityConfig declares one facility.
type FacilityConfig struct {
	Name       string     `yaml:"name"`
	Type       string     `yaml:"type"`
	Parameters Parameters `yaml:"parameters,omitempty"`
}

// Parameters is the union of all facility knobs. Zero values mean "use the
// facility default".
type Parameters struct {
	Source   string `yaml:"source,omitempty"`
	Priority int    `yaml:"priority,omitempty"`

	InMaterial   string `yaml:"in_material,omitempty"`
	OutMaterial  string `yaml:"out_material,omitempty"`
	FeedMaterial string `yaml:"feed_material,omitempty"`

	DrumThroughput        int     `yaml:"drum_throughput,omitempty"`
	DrumWeightKG          float64 `yaml:"drum_weight_kg,omitempty"`
	ReceivingThroughput   int     `yaml:"receiving_throughput,omitempty"`
	ReceivingMaxInventory int     `yaml:"receiving_max_inventory,omitempty"`
	MaxDrumThroughput     int     `yaml:"max_drum_throughput,omitempty"`
	ShippingMaxInventory  int     `yaml:"shipping_max_inventory,omitempty"`
	ProcessCapacityKG     float64 `yaml:"process_capacity_kg,omitempty"`

	ProductEnrichment     float64 `yaml:"product_enrichment,omitempty"`
	TailDepletion         float64 `yaml:"tail_depletion,omitempty"`
	ProductRateKG         float64 `yaml:"product_rate_kg,omitempty"`
	CylinderWeightKG      float64 `yaml:"cylinder_weight_kg,omitempty"`
	FeedContainerWeightKG float64 `yaml:"feed_container_weight_kg,omitempty"`
	MaxCylinderThroughput int     `yaml:"max_cylinder_throughput,omitempty"`

	ThroughputPellets    int     `yaml:"throughput_pellets,omitempty"`
	PelletWeightKG       float64 `yaml:"pellet_weight_kg,omitempty"`
	PelletBatchSize      int     `yaml:"pellet_batch_size,omitempty"`
	ThroughputRods       int     `yaml:"throughput_rods,omitempty"`
	PelletsPerRod        int     `yaml:"pellets_per_rod,omitempty"`
	ThroughputAssemblies int     `yaml:"throughput_assemblies,omitempty"`
	RodsPerAssembly      int     `yaml:"rods_per_assembly,omitempty"`

	ReloadBatchSize int     `yaml:"reload_batch_size,omitempty"`
	CoreCapacity    int     `yaml:"core_capacity,omitempty"`
	LoadTicks       int64   `yaml:"load_ticks,omitempty"`
	SpentPuFraction float64 `yaml:"spent_pu_fraction,omitempty"`
}

// Load reads, parses and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return Parse(data)
}

// Parse parses and validates scenario YAML.
func Parse(data []byte) (*Scenario, error) {
	// Strict decode catches typos like "facilites:".
	var sc Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&sc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateSchema(data); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	if err := validateScenario(&sc); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &sc, nil
}

// validateSchema unifies the raw document with the embedded CUE schema, so
// type and bound violations are reported with field paths.
func validateSchema(data []byte) error {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}

	ctx := cuecontext.New()
	schema := ctx.CompileBytes(schemaCUE)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("schema compile: %w", err)
	}

	unified := schema.Unify(ctx.Encode(doc))
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return err
	}
	return nil
}

// validateScenario checks requirements the schema cannot express across
// fields: unique names and resolvable source references.
func validateScenario(sc *Scenario) error {
	if sc.Name == "" {
		return fmt.Errorf("name is required")
	}
	if sc.Duration <= 0 {
		return fmt.Errorf("duration must be positive")
	}
	if len(sc.Facilities) == 0 {
		return fmt.Errorf("at least one facility is required")
	}

	seen := make(map[string]bool, len(sc.Facilities))
	for _, fc := range sc.Facilities {
		if fc.Name == "" {
			return fmt.Errorf("facility name is required")
		}
		if seen[fc.Name] {
			return fmt.Errorf("duplicate facility name %q", fc.Name)
		}
		seen[fc.Name] = true
	}
	for _, fc := range sc.Facilities {
		if src := fc.Parameters.Source; src != "" && !seen[src] {
			return fmt.Errorf("facility %q: source %q is not declared", fc.Name, src)
		}
	}
	return nil
}
