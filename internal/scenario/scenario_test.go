package scenario

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matflow/matflow/internal/material"
	"github.com/matflow/matflow/internal/sim"
)

func TestLoad_FuelCycle(t *testing.T) {
	sc, err := Load(filepath.Join("testdata", "fuel_cycle.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "pwr-once-through", sc.Name)
	assert.Equal(t, int64(25), sc.Duration)
	require.Len(t, sc.Facilities, 5)

	assert.Equal(t, "mine", sc.Facilities[0].Name)
	assert.Equal(t, "Mine", sc.Facilities[0].Type)
	assert.Equal(t, 4, sc.Facilities[0].Parameters.DrumThroughput)
	assert.Equal(t, "fuelfab", sc.Facilities[4].Parameters.Source)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}

func TestParse_RejectsUnknownField(t *testing.T) {
	_, err := Parse([]byte(`
name: typo
duration: 10
facilites:
  - name: mine
    type: Mine
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParse_SchemaRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"unknown facility type": `
name: bad
duration: 10
facilities:
  - name: smelter
    type: Smelter
`,
		"negative priority": `
name: bad
duration: 10
facilities:
  - name: mine
    type: Mine
    parameters:
      priority: -1
`,
		"unknown material": `
name: bad
duration: 10
facilities:
  - name: mine
    type: Mine
    parameters:
      out_material: ThO2
`,
		"enrichment out of range": `
name: bad
duration: 10
facilities:
  - name: enrichment
    type: Enrichment
    parameters:
      product_enrichment: 1.5
`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid scenario")
		})
	}
}

func TestParse_CrossFieldChecks(t *testing.T) {
	_, err := Parse([]byte(`
name: dup
duration: 10
facilities:
  - name: mine
    type: Mine
  - name: mine
    type: Mine
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate facility name")

	_, err = Parse([]byte(`
name: dangling
duration: 10
facilities:
  - name: conversion
    type: Conversion
    parameters:
      source: mine
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `source "mine" is not declared`)

	_, err = Parse([]byte(`
name: empty
duration: 10
facilities: []
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one facility")
}

func TestBuild_DeclarationOrder(t *testing.T) {
	sc, err := Load(filepath.Join("testdata", "fuel_cycle.yaml"))
	require.NoError(t, err)

	s := sim.New(sim.WithPropagateErrors())
	facilities, err := Build(s, material.NewIndexer(), sc)
	require.NoError(t, err)
	require.Len(t, facilities, 5)

	names := make([]string, len(facilities))
	for i, f := range facilities {
		names[i] = f.Name()
	}
	assert.Equal(t, []string{"mine", "conversion", "enrichment", "fuelfab", "reactor"}, names)
}

func TestBuild_UnknownType(t *testing.T) {
	s := sim.New()
	_, err := Build(s, material.NewIndexer(), &Scenario{
		Name:       "bad",
		Duration:   1,
		Facilities: []FacilityConfig{{Name: "x", Type: "Smelter"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown type")
}

func TestStartAndRun(t *testing.T) {
	sc, err := Load(filepath.Join("testdata", "fuel_cycle.yaml"))
	require.NoError(t, err)

	s := sim.New(sim.WithPropagateErrors())
	facilities, err := Build(s, material.NewIndexer(), sc)
	require.NoError(t, err)
	require.NoError(t, Start(s, facilities))

	require.NoError(t, s.Run(5))
	assert.Equal(t, int64(5), s.Now())
}
