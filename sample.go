package quadrant

import (
	"github.com/pkg/errors"
)

// SampleColor returns the color of the base cell at (x, y) relative to the center of the node.
// Cached nodes along the path are expanded and the updated node is returned.
// Coordinates outside the footprint are clamped to the nearest edge cell.
func (c *Context[A, B, S]) SampleColor(n Node[A, B], x, y int64) (Node[A, B], Color, error) {
	n, err := c.Expand(n)
	if err != nil {
		return n, Color{}, err
	}

	switch n.Quad.Variant {
	case VariantBase:
		color, err := c.ColorBase(n.Quad.Base)
		return n, color, err
	case VariantNode:
	default:
		return n, Color{}, errors.Wrapf(ErrMalformedTree, "node at depth %d is still %s after expansion",
			n.Depth, n.Quad.Variant)
	}

	q := QuadrantOf(x, y)
	x, y = recenter(q, x, y, n.Depth)

	// Child is moved out for the time of recursion and the placeholder keeps the slot well-formed.
	child := n.Quad.Children[q]
	n.Quad.Children[q] = Node[A, B]{Depth: child.Depth}

	child, color, err := c.SampleColor(child, x, y)
	n.Quad.Children[q] = child
	return n, color, err
}

// SampleRaster samples every cell of the node's footprint. Colors are returned row by row.
func (c *Context[A, B, S]) SampleRaster(n Node[A, B]) (Node[A, B], []Color, error) {
	side := int64(n.Side())
	half := side / 2
	raster := make([]Color, 0, side*side)
	for y := -half; y < side-half; y++ {
		for x := -half; x < side-half; x++ {
			var color Color
			var err error
			n, color, err = c.SampleColor(n, x, y)
			if err != nil {
				return n, nil, err
			}
			raster = append(raster, color)
		}
	}
	return n, raster, nil
}

// recenter moves coordinates from the frame of the parent at depth into the frame of its quadrant q.
func recenter(q Quadrant, x, y int64, depth uint64) (int64, int64) {
	if depth < 2 {
		// Children are base cells, coordinates don't matter anymore.
		return 0, 0
	}

	half := int64(1) << (depth - 2)
	if q&PosXNegY != 0 {
		x -= half
	} else {
		x += half
	}
	if q&NegXPosY != 0 {
		y -= half
	} else {
		y += half
	}
	return x, y
}
