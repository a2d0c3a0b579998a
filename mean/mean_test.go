package mean

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompressNode(t *testing.T) {
	requireT := require.New(t)
	approx := Approx{}

	for _, tc := range []struct {
		Children [4]uint8
		Expected uint8
	}{
		{Children: [4]uint8{0, 0, 0, 0}, Expected: 0},
		{Children: [4]uint8{0, 1, 4, 5}, Expected: 3},
		{Children: [4]uint8{1, 1, 1, 2}, Expected: 1},
		{Children: [4]uint8{1, 1, 2, 2}, Expected: 2},
		{Children: [4]uint8{255, 255, 255, 255}, Expected: 255},
		{Children: [4]uint8{255, 255, 255, 254}, Expected: 255},
	} {
		e, err := approx.CompressNode(&State{}, tc.Children)
		requireT.NoError(err)
		requireT.Equal(tc.Expected, e, "children: %v", tc.Children)
	}
}

func TestFixedPoint(t *testing.T) {
	requireT := require.New(t)
	approx := Approx{}

	for b := range 256 {
		children, err := approx.ExpandNode(&State{}, uint8(b))
		requireT.NoError(err)
		requireT.Equal([4]uint8{uint8(b), uint8(b), uint8(b), uint8(b)}, children)

		e, err := approx.CompressNode(&State{}, children)
		requireT.NoError(err)
		requireT.Equal(uint8(b), e)

		base, err := approx.ExpandBase(&State{}, uint8(b))
		requireT.NoError(err)
		e, err = approx.CompressBase(&State{}, base)
		requireT.NoError(err)
		requireT.Equal(uint8(b), e)
	}
}
