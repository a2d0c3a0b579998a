package reference

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/outofforest/quadrant"
)

func TestBaseRoundTrip(t *testing.T) {
	requireT := require.New(t)
	table := NewTable[uint8]()
	approx := Approx[uint8]{}

	for a := range 256 {
		e, err := approx.CompressBase(&table, uint8(a))
		requireT.NoError(err)
		base, err := approx.ExpandBase(&table, e)
		requireT.NoError(err)
		requireT.Equal(uint8(a), base)
	}

	bases, nodes := table.Len()
	requireT.EqualValues(256, bases)
	requireT.EqualValues(0, nodes)
}

func TestNodeRoundTrip(t *testing.T) {
	requireT := require.New(t)
	table := NewTable[uint8]()
	approx := Approx[uint8]{}

	//nolint:gosec
	r := rand.New(rand.NewSource(1))
	for range 1000 {
		children := [4]Embedding{
			Embedding(r.Uint64()),
			Embedding(r.Uint64()),
			Embedding(r.Uint64()),
			Embedding(r.Uint64()),
		}
		e, err := approx.CompressNode(&table, children)
		requireT.NoError(err)
		expanded, err := approx.ExpandNode(&table, e)
		requireT.NoError(err)
		requireT.Equal(children, expanded)
	}
}

func TestInterningIsDeterministic(t *testing.T) {
	requireT := require.New(t)
	table := NewTable[uint16]()
	approx := Approx[uint16]{}

	e1, err := approx.CompressBase(&table, 300)
	requireT.NoError(err)
	e2, err := approx.CompressBase(&table, 300)
	requireT.NoError(err)
	requireT.Equal(e1, e2)

	n1, err := approx.CompressNode(&table, [4]Embedding{e1, e1, e2, e2})
	requireT.NoError(err)
	n2, err := approx.CompressNode(&table, [4]Embedding{e1, e1, e2, e2})
	requireT.NoError(err)
	requireT.Equal(n1, n2)

	n3, err := approx.CompressNode(&table, [4]Embedding{e2, e2, e1, e1 + 1})
	requireT.NoError(err)
	requireT.NotEqual(n1, n3)
}

func TestUnknownEmbedding(t *testing.T) {
	requireT := require.New(t)
	table := NewTable[uint8]()
	approx := Approx[uint8]{}

	_, err := approx.ExpandBase(&table, 0)
	requireT.ErrorIs(err, ErrUnknownEmbedding)
	_, err = approx.ExpandBase(&table, 1)
	requireT.ErrorIs(err, ErrUnknownEmbedding)
	_, err = approx.ExpandNode(&table, 0)
	requireT.ErrorIs(err, ErrUnknownEmbedding)
	_, err = approx.ExpandNode(&table, 1)
	requireT.ErrorIs(err, ErrUnknownEmbedding)
}

func TestColor(t *testing.T) {
	requireT := require.New(t)

	requireT.Equal(quadrant.Color{0x00, 0x00, 0x00, 0xff}, Color(uint8(0)))
	requireT.Equal(quadrant.Color{0x0f, 0x00, 0x00, 0xff}, Color(uint8(15)))
	requireT.Equal(quadrant.Color{0x34, 0x12, 0x00, 0xff}, Color(uint16(0x1234)))
	requireT.Equal(quadrant.Color{0x56, 0x34, 0x12, 0xff}, Color(uint32(0x78123456)))
}

func TestTableConcurrentUse(t *testing.T) {
	requireT := require.New(t)
	table := NewTable[uint16]()
	approx := Approx[uint16]{}

	const workers = 8
	results := make([][]Embedding, workers)

	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			state := table
			for a := range uint16(1000) {
				e, _ := approx.CompressBase(&state, a)
				results[i] = append(results[i], e)
			}
		}()
	}
	wg.Wait()

	for _, r := range results[1:] {
		requireT.Equal(results[0], r)
	}
	bases, _ := table.Len()
	requireT.EqualValues(1000, bases)
}

func TestSharedTable(t *testing.T) {
	c := NewContext[uint8](nil)
	require.Same(t, *c.State(), SharedTable(c)())
}

func TestTableFromValues(t *testing.T) {
	requireT := require.New(t)
	c := NewContext[uint16](nil)

	grid := make([]uint16, 64)
	for i := range grid {
		grid[i] = uint16(i * 7)
	}
	n, err := c.NewFromSquare(grid)
	requireT.NoError(err)
	n, err = c.Cache(n)
	requireT.NoError(err)

	bases, nodes := (*c.State()).Values()
	requireT.Len(bases, 64)
	requireT.Len(nodes, 21)

	table, err := NewTableFromValues(bases, nodes)
	requireT.NoError(err)

	_, raster, err := NewContextWithTable(table, nil).SampleRaster(n)
	requireT.NoError(err)
	for i, color := range raster {
		requireT.Equal(Color(grid[i]), color, "cell: %d", i)
	}
}

func TestTableFromInvalidValues(t *testing.T) {
	requireT := require.New(t)

	_, err := NewTableFromValues([]uint8{1, 2, 1}, nil)
	requireT.ErrorIs(err, ErrInvalidTable)

	_, err = NewTableFromValues([]uint8{1, 2}, [][4]Embedding{{1, 2, 1, 2}, {1, 2, 1, 2}})
	requireT.ErrorIs(err, ErrInvalidTable)

	_, err = NewTableFromValues([]uint8{1, 2}, [][4]Embedding{{1, 2, 0, 2}})
	requireT.ErrorIs(err, ErrInvalidTable)

	_, err = NewTableFromValues([]uint8{1, 2}, [][4]Embedding{{1, 2, 3, 2}})
	requireT.ErrorIs(err, ErrInvalidTable)
}
