// Package material models the bulk compounds and discrete items that move
// between facility stores during a simulation.
package material

import (
	"fmt"
	"sort"
	"strings"
)

// Material is a specific chemical composition of a bulk resource. Name is
// conventionally the compound formula (e.g. "U3O8"); Composition maps each
// component to its mass fraction of the whole.
type Material struct {
	Name        string
	Composition map[string]float64
	Enriched    bool
	Irradiated  bool
}

// Clone returns a deep copy. Items that transform their contents (reactor
// irradiation) must not alias a shared composition map.
func (m Material) Clone() Material {
	comp := make(map[string]float64, len(m.Composition))
	for k, v := range m.Composition {
		comp[k] = v
	}
	m.Composition = comp
	return m
}

// Fraction returns the mass fraction of a component, 0 if absent.
func (m Material) Fraction(component string) float64 {
	return m.Composition[component]
}

// Components returns the component names in sorted order, for deterministic
// iteration when deriving per-component stores.
func (m Material) Components() []string {
	out := make([]string, 0, len(m.Composition))
	for k := range m.Composition {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// CommonComponents returns the components present in both materials, sorted.
func CommonComponents(a, b Material) []string {
	out := make([]string, 0, len(a.Composition))
	for k := range a.Composition {
		if _, ok := b.Composition[k]; ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func (m Material) String() string {
	var sb strings.Builder
	sb.WriteString(m.Name)
	if m.Enriched {
		sb.WriteString(" (enriched)")
	}
	if m.Irradiated {
		sb.WriteString(" (irradiated)")
	}
	return sb.String()
}

// Natural compositions for the compounds the simulation ships between
// facilities. Fractions are mass fractions summing to ~1.
var (
	// TriuraniumOctoxide is natural U3O8, the mined ore concentrate.
	TriuraniumOctoxide = Material{
		Name:        "U3O8",
		Composition: map[string]float64{"U235": 0.00586, "U238": 0.84218, "O": 0.152},
	}

	// UraniumDioxide is natural UO2, the fuel fabrication feed.
	UraniumDioxide = Material{
		Name:        "UO2",
		Composition: map[string]float64{"U235": 0.0061, "U238": 0.87544, "O": 0.11845},
	}

	// UraniumHexafluoride is natural UF6, the enrichment cascade feed.
	UraniumHexafluoride = Material{
		Name:        "UF6",
		Composition: map[string]float64{"U235": 0.00467, "U238": 0.67145, "F": 0.32388},
	}

	// Fluorine and Oxygen are single-component process inputs.
	Fluorine = Material{Name: "F", Composition: map[string]float64{"F": 1}}
	Oxygen   = Material{Name: "O", Composition: map[string]float64{"O": 1}}
)

// registry maps config names to base materials.
var registry = map[string]Material{
	"U3O8": TriuraniumOctoxide,
	"UO2":  UraniumDioxide,
	"UF6":  UraniumHexafluoride,
	"F":    Fluorine,
	"O":    Oxygen,
}

// ByName looks up a base material by its config name.
func ByName(name string) (Material, error) {
	m, ok := registry[name]
	if !ok {
		return Material{}, fmt.Errorf("material: unknown material %q", name)
	}
	return m.Clone(), nil
}

// Enrich returns a copy of m with the U235 fraction raised to pct of the
// uranium content, rebalancing U238 so total mass is conserved.
func Enrich(m Material, pct float64) (Material, error) {
	out := m.Clone()
	u := out.Composition["U235"] + out.Composition["U238"]
	if u <= 0 {
		return Material{}, fmt.Errorf("material: cannot enrich %s: no uranium content", m.Name)
	}
	if pct < 0 || pct >= 1 {
		return Material{}, fmt.Errorf("material: enrichment fraction %v out of range", pct)
	}
	out.Composition["U235"] = u * pct
	out.Composition["U238"] = u * (1 - pct)
	out.Enriched = true
	out.Name = fmt.Sprintf("%s_%.1f_enriched", m.Name, pct*100)
	return out, nil
}

// Deplete returns a copy of m with the U235 fraction lowered to pct of the
// uranium content. Models enrichment tails.
func Deplete(m Material, pct float64) (Material, error) {
	out, err := Enrich(m, pct)
	if err != nil {
		return Material{}, err
	}
	out.Enriched = false
	out.Name = fmt.Sprintf("%s_depleted", m.Name)
	return out, nil
}

// Irradiate returns a copy of m with puFraction of the total mass converted
// from U235/U238 to Pu. Models one burn cycle in a reactor core.
func Irradiate(m Material, puFraction float64) (Material, error) {
	out := m.Clone()
	u := out.Composition["U235"] + out.Composition["U238"]
	if puFraction < 0 || puFraction > u {
		return Material{}, fmt.Errorf("material: plutonium fraction %v exceeds uranium content %v", puFraction, u)
	}
	// Burn U235 first, then U238.
	burn := puFraction
	if u235 := out.Composition["U235"]; u235 >= burn {
		out.Composition["U235"] = u235 - burn
	} else {
		out.Composition["U238"] -= burn - u235
		out.Composition["U235"] = 0
	}
	out.Composition["Pu"] += puFraction
	out.Irradiated = true
	out.Name = m.Name + "_irradiated"
	return out, nil
}
