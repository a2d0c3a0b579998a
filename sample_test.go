package quadrant_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/outofforest/quadrant"
	"github.com/outofforest/quadrant/persistent"
	"github.com/outofforest/quadrant/reference"
	"github.com/outofforest/quadrant/test"
)

func TestSampleEveryCell(t *testing.T) {
	requireT := require.New(t)
	c := reference.NewContext[uint16](nil)

	for _, side := range []uint64{1, 2, 4, 8, 16, 32} {
		grid := test.Grid[uint16](side)
		n, err := c.NewFromSquare(grid)
		requireT.NoError(err)

		for _, p := range test.Points(side) {
			var color quadrant.Color
			n, color, err = c.SampleColor(n, p.X, p.Y)
			requireT.NoError(err)
			requireT.Equal(reference.Color(grid[test.Index(side, p)]), color, "side: %d, point: %v", side, p)
		}
	}
}

func TestSample4x4(t *testing.T) {
	requireT := require.New(t)
	c := reference.NewContext[uint8](nil)

	n, err := c.NewFromSquare(test.Grid[uint8](4))
	requireT.NoError(err)

	expected := [][]uint8{
		{0, 1, 2, 3},
		{4, 5, 6, 7},
		{8, 9, 10, 11},
		{12, 13, 14, 15},
	}
	for y := int64(-2); y < 2; y++ {
		for x := int64(-2); x < 2; x++ {
			var color quadrant.Color
			n, color, err = c.SampleColor(n, x, y)
			requireT.NoError(err)
			requireT.Equal(reference.Color(expected[y+2][x+2]), color, "x: %d, y: %d", x, y)
		}
	}
}

func TestSampleZeroCoordinates(t *testing.T) {
	requireT := require.New(t)
	c := reference.NewContext[uint16](nil)

	// Point (0, 0) always belongs to the quadrant PosXPosY, so it's the cell (side/2, side/2).
	for _, side := range []uint64{1, 2, 4, 8, 16} {
		grid := test.Grid[uint16](side)
		n, err := c.NewFromSquare(grid)
		requireT.NoError(err)

		_, color, err := c.SampleColor(n, 0, 0)
		requireT.NoError(err)
		requireT.Equal(reference.Color(grid[side/2*side+side/2]), color, "side: %d", side)
	}
}

func TestSampleOutOfFootprint(t *testing.T) {
	requireT := require.New(t)
	c := reference.NewContext[uint8](nil)

	n, err := c.NewFromSquare(test.Grid[uint8](4))
	requireT.NoError(err)

	// Points outside the footprint are clamped to the closest edge cell.
	for _, tc := range []struct {
		X, Y     int64
		Expected uint8
	}{
		{X: -5, Y: -5, Expected: 0},
		{X: 7, Y: -9, Expected: 3},
		{X: 2, Y: 2, Expected: 15},
		{X: -3, Y: 0, Expected: 8},
		{X: 1, Y: 100, Expected: 15},
		{X: -1, Y: -3, Expected: 1},
	} {
		var color quadrant.Color
		n, color, err = c.SampleColor(n, tc.X, tc.Y)
		requireT.NoError(err)
		requireT.Equal(reference.Color(tc.Expected), color, "x: %d, y: %d", tc.X, tc.Y)
	}
}

func TestSampleExpandsPathOnly(t *testing.T) {
	requireT := require.New(t)
	recorder := test.NewRecorder()
	c := reference.NewContext[uint8](recorder)

	n, err := c.NewFromSquare(test.Grid[uint8](4))
	requireT.NoError(err)
	n, err = c.Cache(n)
	requireT.NoError(err)
	requireT.Equal(quadrant.VariantCached, n.Quad.Variant)

	n, color, err := c.SampleColor(n, 1, -2)
	requireT.NoError(err)
	requireT.Equal(reference.Color(uint8(3)), color)
	requireT.EqualValues(2, recorder.Calls(quadrant.OperationExpandNode))
	requireT.EqualValues(1, recorder.Calls(quadrant.OperationExpandBase))
	requireT.EqualValues(1, recorder.Calls(quadrant.OperationColorBase))

	requireT.Equal(quadrant.VariantNode, n.Quad.Variant)
	for q := range 4 {
		child, ok := n.Child(quadrant.Quadrant(q))
		requireT.True(ok)
		requireT.EqualValues(1, child.Depth)
		if quadrant.Quadrant(q) == quadrant.PosXNegY {
			requireT.Equal(quadrant.VariantNode, child.Quad.Variant)
			continue
		}
		requireT.Equal(quadrant.VariantCached, child.Quad.Variant)
	}

	// Path is already expanded.
	_, color, err = c.SampleColor(n, 1, -2)
	requireT.NoError(err)
	requireT.Equal(reference.Color(uint8(3)), color)
	requireT.EqualValues(0, recorder.Calls(quadrant.OperationExpandNode))
	requireT.EqualValues(0, recorder.Calls(quadrant.OperationExpandBase))
}

func TestSampleCachedTreeReproducesColors(t *testing.T) {
	requireT := require.New(t)
	c := reference.NewContext[uint16](nil)

	const side = 16
	grid := test.Grid[uint16](side)
	for depth := range uint64(5) {
		n, err := c.NewFromSquare(grid)
		requireT.NoError(err)
		digest := persistent.Digest(n)

		n, err = c.TrimBelow(n, depth)
		requireT.NoError(err)
		requireT.NoError(quadrant.Validate(n))

		n, raster, err := c.SampleRaster(n)
		requireT.NoError(err)
		requireT.Len(raster, side*side)
		for i, color := range raster {
			requireT.Equal(reference.Color(grid[i]), color, "depth: %d, cell: %d", depth, i)
		}

		// Everything has been expanded again, so the tree is the same as the original one.
		requireT.Equal(digest, persistent.Digest(n))
	}
}

func TestSampleBackendFailureRestoresChild(t *testing.T) {
	requireT := require.New(t)
	failing := &test.Failing[uint8, reference.Embedding, *reference.Table[uint8]]{
		Approx:    reference.Approx[uint8]{},
		Operation: quadrant.OperationExpandNode,
		Budget:    1,
	}
	c := quadrant.New(quadrant.Config[uint8, reference.Embedding, *reference.Table[uint8]]{
		Approx: failing,
		State:  reference.NewTable[uint8](),
	})

	n, err := c.NewFromSquare(test.Grid[uint8](4))
	requireT.NoError(err)
	n, err = c.Cache(n)
	requireT.NoError(err)

	n, _, err = c.SampleColor(n, -1, -1)
	requireT.ErrorIs(err, test.ErrInjected)

	requireT.Equal(quadrant.VariantNode, n.Quad.Variant)
	child, ok := n.Child(quadrant.NegXNegY)
	requireT.True(ok)
	requireT.Equal(quadrant.VariantCached, child.Quad.Variant)
	requireT.NoError(quadrant.Validate(n))

	failing.Budget = 1
	_, color, err := c.SampleColor(n, -1, -1)
	requireT.NoError(err)
	requireT.Equal(reference.Color(uint8(5)), color)
}

func TestSampleDetectsMalformedTree(t *testing.T) {
	c := reference.NewContext[uint8](nil)

	_, _, err := c.SampleColor(quadrant.Node[uint8, reference.Embedding]{
		Depth: 1,
		Quad: quadrant.Quad[uint8, reference.Embedding]{
			Variant: quadrant.VariantBase,
		},
	}, 0, 0)
	require.ErrorIs(t, err, quadrant.ErrMalformedTree)
}
