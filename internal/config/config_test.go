package config

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"latgen/internal/lattice"
	"latgen/internal/perturb"
	"latgen/internal/substrate"
)

const sampleRequest = `
title: Two graphene sheets over silica
output: system.gro
merge:
  box_padding: 0.5
  min_separation: 0.1
substrates:
  - cell: graphene
    extent: { x: 2.0, y: 2.0 }
    policy: at-least
    residue: GRPH
    seed: 7
    count: 2
    spacing: 0.335
    perturbation:
      defect_fraction: 0.01
      jitter_max: 0.005
      jitter_dist: normal
  - lattice:
      kind: triclinic
      a: 0.45
      b: 0.45
      gamma: 60
      templates:
        - { name: SI, element: Si, u: 0.25, v: 0.25, z: 0.3 }
    extent: { x: 2.0, y: 2.0 }
    residue: SIO
    layers:
      - { z: 0 }
      - { z: 0.3, rotation: 90, scale: 1.0 }
`

func TestParseRequest(t *testing.T) {
	req, err := Parse([]byte(sampleRequest))
	require.NoError(t, err)

	assert.Equal(t, "Two graphene sheets over silica", req.Title)
	assert.Equal(t, "system.gro", req.Output)
	assert.Equal(t, 0.5, req.Merge.BoxPadding)
	assert.Equal(t, 0.1, req.Merge.MinSeparation)
	require.Len(t, req.Substrates, 2)

	first := req.Substrates[0]
	assert.Equal(t, "graphene", first.Cell)
	assert.Equal(t, lattice.PolicyAtLeast, first.BuildPolicy())
	assert.Equal(t, int64(7), first.BuildSeed(0))
	assert.Equal(t, perturb.Spec{DefectFraction: 0.01, JitterMax: 0.005, JitterDist: perturb.DistNormal},
		first.BuildPerturbation())
	assert.Equal(t, []substrate.LayerSpec{{ZOffset: 0}, {ZOffset: 0.335}}, first.BuildLayers())

	second := req.Substrates[1]
	_, inline, err := second.UnitCell()
	require.NoError(t, err)
	assert.True(t, inline)
	assert.Equal(t, int64(99), second.BuildSeed(99), "falls back when seed is unset")

	layers := second.BuildLayers()
	require.Len(t, layers, 2)
	assert.InDelta(t, math.Pi/2, layers[1].Rotation, 1e-12)
}

func TestInlineLatticeConversion(t *testing.T) {
	spec := LatticeSpec{
		Kind:  "triclinic",
		A:     1.0,
		B:     2.0,
		Gamma: 60,
		Templates: []TemplateSpec{
			{Name: "A", Element: "A"},
		},
	}

	cell, err := spec.UnitCell()
	require.NoError(t, err)
	a, b, gamma := cell.Basis()
	assert.Equal(t, 1.0, a)
	assert.Equal(t, 2.0, b)
	assert.InDelta(t, math.Pi/3, gamma, 1e-12)
}

func TestValidationErrors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"no substrates", `title: empty`},
		{"missing cell and lattice", `
substrates:
  - extent: { x: 1, y: 1 }
    residue: R`},
		{"both cell and lattice", `
substrates:
  - cell: graphene
    lattice: { kind: hexagonal, a: 0.1, templates: [{ name: C }] }
    extent: { x: 1, y: 1 }
    residue: R`},
		{"non-positive extent", `
substrates:
  - cell: graphene
    extent: { x: 0, y: 1 }
    residue: R`},
		{"missing residue", `
substrates:
  - cell: graphene
    extent: { x: 1, y: 1 }`},
		{"bad policy", `
substrates:
  - cell: graphene
    extent: { x: 1, y: 1 }
    residue: R
    policy: sometimes`},
		{"bad jitter dist", `
substrates:
  - cell: graphene
    extent: { x: 1, y: 1 }
    residue: R
    perturbation: { jitter_dist: lumpy }`},
		{"defect fraction above one", `
substrates:
  - cell: graphene
    extent: { x: 1, y: 1 }
    residue: R
    perturbation: { defect_fraction: 1.5 }`},
		{"generated layers without spacing", `
substrates:
  - cell: graphene
    extent: { x: 1, y: 1 }
    residue: R
    count: 3`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.doc))
			assert.Error(t, err)
		})
	}
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("LATGEN_SEED", "")
	t.Setenv("LATGEN_CELLDB", "")
	t.Setenv("LATGEN_LOG_LEVEL", "")

	e, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, int64(1), e.Seed)
	assert.Equal(t, "latgen.db", e.CellDB)
	assert.Equal(t, "info", e.LogLevel)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LATGEN_SEED", "42")
	t.Setenv("LATGEN_CELLDB", "/tmp/cells.db")
	t.Setenv("LATGEN_LOG_LEVEL", "debug")

	e, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, int64(42), e.Seed)
	assert.Equal(t, "/tmp/cells.db", e.CellDB)
	assert.Equal(t, "debug", e.LogLevel)
}
