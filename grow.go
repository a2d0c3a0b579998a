package quadrant

import (
	"github.com/pkg/errors"
)

// PadEmpty creates a node of double the size by centering the current node on it.
//
// For depth 0 the original cell becomes quadrant PosXPosY, the one containing point (0, 0).
// For higher depths child i of the original node becomes the opposite child of new quadrant i,
// so sampling any point inside the original footprint gives the same result as before.
// All the remaining cells are empty. Empty subtrees are created as cached nodes.
// Tree can't grow beyond MaxDepth.
func (c *Context[A, B, S]) PadEmpty(n Node[A, B]) (Node[A, B], error) {
	if n.Depth >= MaxDepth {
		return n, errors.Wrapf(ErrMalformedTree, "tree of depth %d can't grow beyond %d", n.Depth, MaxDepth)
	}

	if n.Depth == 0 {
		var quadrants [4]Node[A, B]
		for q := range quadrants {
			if Quadrant(q) == PosXPosY {
				continue
			}
			empty, err := c.NewEmpty()
			if err != nil {
				return n, err
			}
			quadrants[q] = empty
		}
		quadrants[PosXPosY] = n
		return c.NewNode(quadrants)
	}

	n, err := c.Expand(n)
	if err != nil {
		return n, err
	}

	empty, err := c.emptyEmbedding(n.Depth - 1)
	if err != nil {
		return n, err
	}

	var quadrants [4]Node[A, B]
	for q, child := range n.Quad.Children {
		var children [4]Node[A, B]
		for i := range children {
			children[i] = newCached[A, B](empty, n.Depth-1)
		}
		children[Quadrant(q).Opposite()] = child

		quadrant, err := c.NewNode(children)
		if err != nil {
			return n, err
		}
		quadrants[q] = quadrant
	}

	return c.NewNode(quadrants)
}

// emptyEmbedding returns embedding of the subtree of given depth containing empty cells only.
func (c *Context[A, B, S]) emptyEmbedding(depth uint64) (B, error) {
	var a A
	embedding, err := c.CompressBase(a)
	if err != nil {
		return embedding, err
	}
	for range depth {
		embedding, err = c.CompressNode([4]B{embedding, embedding, embedding, embedding})
		if err != nil {
			return embedding, err
		}
	}
	return embedding, nil
}
