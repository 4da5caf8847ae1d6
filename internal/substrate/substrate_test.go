package substrate

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"latgen/internal/lattice"
	"latgen/internal/layer"
	"latgen/internal/perturb"
	"latgen/pkg/geom"
)

func graphene(t *testing.T) lattice.UnitCell {
	t.Helper()
	cell, err := lattice.NewHexagonal(0.142, lattice.AtomTemplate{Name: "C", Element: "C", Z: 0.071})
	require.NoError(t, err)
	return cell
}

func flatLayer(z float64, coords ...geom.Coord) layer.Layer {
	points := make([]lattice.Point, len(coords))
	for i, c := range coords {
		c.Z = z
		points[i] = lattice.Point{Pos: c, Name: "C", Element: "C"}
	}
	return layer.Layer{Points: points, Scale: 1, ZOffset: z}
}

func TestAssembleNumbering(t *testing.T) {
	layers := []layer.Layer{
		flatLayer(0, geom.Coord{X: 0}, geom.Coord{X: 1}),
		flatLayer(0.3, geom.Coord{X: 0}, geom.Coord{X: 1}, geom.Coord{X: 2}),
	}

	sub, err := Assemble(layers, "GRPH")
	require.NoError(t, err)

	require.Len(t, sub.Atoms, 5)
	for i, a := range sub.Atoms {
		assert.Equal(t, i+1, a.Index, "atom indices must be contiguous from 1")
		assert.Equal(t, "GRPH", a.Residue)
	}
	assert.Equal(t, 1, sub.Atoms[0].ResidueIndex)
	assert.Equal(t, 1, sub.Atoms[1].ResidueIndex)
	assert.Equal(t, 2, sub.Atoms[2].ResidueIndex)
	assert.Equal(t, 2, sub.Atoms[4].ResidueIndex)
}

func TestAssembleBoundingBox(t *testing.T) {
	layers := []layer.Layer{
		flatLayer(0, geom.Coord{X: -1, Y: 2}, geom.Coord{X: 3, Y: 0}),
		flatLayer(0.5, geom.Coord{X: 0, Y: -4}),
	}

	sub, err := Assemble(layers, "GRPH")
	require.NoError(t, err)

	assert.True(t, sub.Box.Min.Eq(geom.Coord{X: -1, Y: -4, Z: 0}))
	assert.True(t, sub.Box.Max.Eq(geom.Coord{X: 3, Y: 2, Z: 0.5}))
}

func TestAssembleEmpty(t *testing.T) {
	_, err := Assemble([]layer.Layer{{}, {}}, "GRPH")
	var empty EmptySubstrateError
	require.ErrorAs(t, err, &empty)
	assert.Equal(t, "GRPH", empty.Residue)
}

func TestBuildSingleLayer(t *testing.T) {
	sub, err := Build(graphene(t), geom.Extent{X: 2, Y: 2}, lattice.PolicyAtLeast,
		[]LayerSpec{{}}, perturb.Spec{}, "GRPH", 1)
	require.NoError(t, err)

	assert.Len(t, sub.Atoms, 180)
	assert.Equal(t, "GRPH", sub.Residue)
	assert.Equal(t, 1, sub.Atoms[0].Index)
	assert.Equal(t, 180, sub.Atoms[len(sub.Atoms)-1].Index)
}

func TestBuildStacksLayers(t *testing.T) {
	const spacing = 0.335
	sub, err := Build(graphene(t), geom.Extent{X: 1, Y: 1}, lattice.PolicyAtLeast,
		[]LayerSpec{{ZOffset: 0}, {ZOffset: spacing}, {ZOffset: 2 * spacing}},
		perturb.Spec{}, "GRPH", 1)
	require.NoError(t, err)

	require.Len(t, sub.Layers, 3)
	perLayer := len(sub.Layers[0].Points)
	assert.Len(t, sub.Atoms, 3*perLayer)

	// Layer copies differ only by their z offset.
	for i, p := range sub.Layers[1].Points {
		assert.InDelta(t, sub.Layers[0].Points[i].Pos.Z+spacing, p.Pos.Z, 1e-12)
	}
	assert.Equal(t, 3, sub.Atoms[len(sub.Atoms)-1].ResidueIndex)
}

func TestBuildReproducible(t *testing.T) {
	specs := []LayerSpec{{ZOffset: 0}, {ZOffset: 0.335, Rotation: 0.2}}
	pspec := perturb.Spec{DefectFraction: 0.1, JitterMax: 0.02}

	a, err := Build(graphene(t), geom.Extent{X: 2, Y: 2}, lattice.PolicyAtLeast, specs, pspec, "GRPH", 77)
	require.NoError(t, err)
	b, err := Build(graphene(t), geom.Extent{X: 2, Y: 2}, lattice.PolicyAtLeast, specs, pspec, "GRPH", 77)
	require.NoError(t, err)

	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("same seed produced different substrates:\n%s", diff)
	}

	c, err := Build(graphene(t), geom.Extent{X: 2, Y: 2}, lattice.PolicyAtLeast, specs, pspec, "GRPH", 78)
	require.NoError(t, err)
	assert.NotEqual(t, a.Atoms, c.Atoms)
}

func TestBuildAllDefectsFails(t *testing.T) {
	_, err := Build(graphene(t), geom.Extent{X: 1, Y: 1}, lattice.PolicyAtLeast,
		[]LayerSpec{{}}, perturb.Spec{DefectFraction: 1}, "GRPH", 5)
	var empty EmptySubstrateError
	require.ErrorAs(t, err, &empty)
}

func TestBuildNoLayers(t *testing.T) {
	_, err := Build(graphene(t), geom.Extent{X: 1, Y: 1}, lattice.PolicyAtLeast,
		nil, perturb.Spec{}, "GRPH", 5)
	assert.ErrorIs(t, err, ErrNoLayers)
}

func TestBuildPropagatesLatticeErrors(t *testing.T) {
	_, err := Build(graphene(t), geom.Extent{X: 1.99, Y: 2}, lattice.PolicyExactFit,
		[]LayerSpec{{}}, perturb.Spec{}, "GRPH", 5)
	var mismatch lattice.ExtentMismatchError
	assert.ErrorAs(t, err, &mismatch)
}
