package material

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func totalMass(m Material) float64 {
	var sum float64
	for _, f := range m.Composition {
		sum += f
	}
	return sum
}

func TestByName(t *testing.T) {
	for _, name := range []string{"U3O8", "UO2", "UF6", "F", "O"} {
		m, err := ByName(name)
		require.NoError(t, err)
		assert.Equal(t, name, m.Name)
	}

	_, err := ByName("ThO2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown material")
}

func TestByName_ReturnsClone(t *testing.T) {
	a, err := ByName("U3O8")
	require.NoError(t, err)
	a.Composition["U235"] = 0.99

	b, err := ByName("U3O8")
	require.NoError(t, err)
	assert.Equal(t, 0.00586, b.Fraction("U235"), "registry must not be mutated through lookups")
}

func TestMaterial_Components(t *testing.T) {
	assert.Equal(t, []string{"O", "U235", "U238"}, TriuraniumOctoxide.Components())
	assert.Equal(t, []string{"F"}, Fluorine.Components())
	assert.Equal(t, 0.0, TriuraniumOctoxide.Fraction("Pu"))
}

func TestCommonComponents(t *testing.T) {
	assert.Equal(t, []string{"U235", "U238"}, CommonComponents(TriuraniumOctoxide, UraniumHexafluoride))
	assert.Empty(t, CommonComponents(Fluorine, Oxygen))
}

func TestEnrich(t *testing.T) {
	in, err := ByName("U3O8")
	require.NoError(t, err)
	before := totalMass(in)

	out, err := Enrich(in, 0.05)
	require.NoError(t, err)

	u := in.Fraction("U235") + in.Fraction("U238")
	assert.InDelta(t, u*0.05, out.Fraction("U235"), 1e-12)
	assert.InDelta(t, u*0.95, out.Fraction("U238"), 1e-12)
	assert.InDelta(t, before, totalMass(out), 1e-12, "enrichment moves mass between isotopes, never creates it")
	assert.True(t, out.Enriched)
	assert.Equal(t, "U3O8_5.0_enriched", out.Name)

	// Input is untouched.
	assert.Equal(t, 0.00586, in.Fraction("U235"))
	assert.False(t, in.Enriched)
}

func TestEnrich_Errors(t *testing.T) {
	_, err := Enrich(Fluorine, 0.05)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no uranium content")

	in, err := ByName("UF6")
	require.NoError(t, err)
	_, err = Enrich(in, 1.0)
	require.Error(t, err)
	_, err = Enrich(in, -0.1)
	require.Error(t, err)
}

func TestDeplete(t *testing.T) {
	in, err := ByName("UF6")
	require.NoError(t, err)

	out, err := Deplete(in, 0.003)
	require.NoError(t, err)

	u := in.Fraction("U235") + in.Fraction("U238")
	assert.InDelta(t, u*0.003, out.Fraction("U235"), 1e-12)
	assert.InDelta(t, totalMass(in), totalMass(out), 1e-12)
	assert.False(t, out.Enriched)
	assert.Equal(t, "UF6_depleted", out.Name)
}

func TestIrradiate(t *testing.T) {
	in, err := ByName("UO2")
	require.NoError(t, err)

	out, err := Irradiate(in, 0.0023)
	require.NoError(t, err)

	assert.InDelta(t, in.Fraction("U235")-0.0023, out.Fraction("U235"), 1e-12)
	assert.InDelta(t, in.Fraction("U238"), out.Fraction("U238"), 1e-12)
	assert.InDelta(t, 0.0023, out.Fraction("Pu"), 1e-12)
	assert.InDelta(t, totalMass(in), totalMass(out), 1e-12)
	assert.True(t, out.Irradiated)
	assert.Equal(t, "UO2_irradiated", out.Name)
}

func TestIrradiate_BurnsU238AfterU235(t *testing.T) {
	in, err := ByName("UO2")
	require.NoError(t, err)

	// More plutonium than the U235 fraction covers.
	out, err := Irradiate(in, 0.01)
	require.NoError(t, err)

	assert.Equal(t, 0.0, out.Fraction("U235"))
	assert.InDelta(t, in.Fraction("U238")-(0.01-in.Fraction("U235")), out.Fraction("U238"), 1e-12)
	assert.InDelta(t, 0.01, out.Fraction("Pu"), 1e-12)
	assert.InDelta(t, totalMass(in), totalMass(out), 1e-12)
}

func TestIrradiate_RejectsFractionAboveUraniumContent(t *testing.T) {
	in, err := ByName("UO2")
	require.NoError(t, err)

	_, err = Irradiate(in, 0.9)
	require.Error(t, err)
	_, err = Irradiate(in, -0.1)
	require.Error(t, err)
}

func TestMaterial_String(t *testing.T) {
	in, err := ByName("U3O8")
	require.NoError(t, err)
	assert.Equal(t, "U3O8", in.String())

	enriched, err := Enrich(in, 0.05)
	require.NoError(t, err)
	assert.Contains(t, enriched.String(), "(enriched)")

	burnt, err := Irradiate(in, 0.001)
	require.NoError(t, err)
	assert.Contains(t, burnt.String(), "(irradiated)")
}
