package quadrant

import (
	"math/bits"

	"github.com/pkg/errors"
)

// NewBase creates new tree from a single base cell.
func (c *Context[A, B, S]) NewBase(base A) (Node[A, B], error) {
	embedding, err := c.CompressBase(base)
	if err != nil {
		return Node[A, B]{}, err
	}
	return Node[A, B]{
		Embedding: embedding,
		Quad: Quad[A, B]{
			Variant: VariantBase,
			Base:    base,
		},
	}, nil
}

// NewEmpty creates new tree with a single empty base cell.
func (c *Context[A, B, S]) NewEmpty() (Node[A, B], error) {
	var a A
	return c.NewBase(a)
}

// NewNode combines four children of equal depth into their parent.
func (c *Context[A, B, S]) NewNode(children [4]Node[A, B]) (Node[A, B], error) {
	depth := children[0].Depth
	for i, child := range children[1:] {
		if child.Depth != depth {
			return Node[A, B]{}, errors.Wrapf(ErrMalformedTree, "child %d has depth %d, expected %d",
				i+1, child.Depth, depth)
		}
	}

	quadChildren := c.newChildren()
	*quadChildren = children

	n := Node[A, B]{
		Depth: depth + 1,
		Quad: Quad[A, B]{
			Variant:  VariantNode,
			Children: quadChildren,
		},
	}

	embedding, _, err := c.Compress(&n.Quad)
	if err != nil {
		return Node[A, B]{}, err
	}
	n.Embedding = embedding
	return n, nil
}

// NewFromSquare builds the tree from the flat square grid of cells.
// Cells are stored row by row, cell (col, row) is sampled at (col - side/2, row - side/2).
func (c *Context[A, B, S]) NewFromSquare(cells []A) (Node[A, B], error) {
	side, depth, err := squareSide(uint64(len(cells)))
	if err != nil {
		return Node[A, B]{}, err
	}

	return c.buildSquare(cells, side, 0, 0, depth)
}

func (c *Context[A, B, S]) buildSquare(cells []A, stride, col, row, depth uint64) (Node[A, B], error) {
	if depth == 0 {
		return c.NewBase(cells[row*stride+col])
	}

	half := uint64(1) << (depth - 1)
	var children [4]Node[A, B]
	for q := range children {
		qCol, qRow := quadrantOrigin(Quadrant(q), col, row, half)
		child, err := c.buildSquare(cells, stride, qCol, qRow, depth-1)
		if err != nil {
			return Node[A, B]{}, err
		}
		children[q] = child
	}

	return c.NewNode(children)
}

// quadrantOrigin returns the top-left cell of quadrant q inside square starting at (col, row).
func quadrantOrigin(q Quadrant, col, row, half uint64) (uint64, uint64) {
	if q&PosXNegY != 0 {
		col += half
	}
	if q&NegXPosY != 0 {
		row += half
	}
	return col, row
}

// squareSide returns side and depth of the square grid containing count cells.
func squareSide(count uint64) (uint64, uint64, error) {
	if count == 0 {
		return 0, 0, errors.Wrap(ErrMalformedGrid, "grid is empty")
	}

	side := isqrt(count)
	if side*side != count {
		return 0, 0, errors.Wrapf(ErrMalformedGrid, "grid of %d cells is not a square", count)
	}
	if side&(side-1) != 0 {
		return 0, 0, errors.Wrapf(ErrMalformedGrid, "side %d is not a power of two", side)
	}

	return side, uint64(bits.TrailingZeros64(side)), nil
}

func isqrt(v uint64) uint64 {
	if v < 2 {
		return v
	}

	// Newton's method starting above the root.
	x := uint64(1) << ((bits.Len64(v) + 1) / 2)
	for {
		y := (x + v/x) / 2
		if y >= x {
			return x
		}
		x = y
	}
}
