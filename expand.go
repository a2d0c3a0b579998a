package quadrant

import (
	"github.com/pkg/errors"
)

// Expand rematerializes one level of detail of the cached node.
// Base and node variants are returned unchanged. Grandchildren are never expanded.
func (c *Context[A, B, S]) Expand(n Node[A, B]) (Node[A, B], error) {
	switch n.Quad.Variant {
	case VariantBase:
		if n.Depth != 0 {
			return n, errors.Wrapf(ErrMalformedTree, "base cell at depth %d", n.Depth)
		}
		return n, nil
	case VariantNode:
		if n.Depth == 0 {
			return n, errors.Wrap(ErrMalformedTree, "node at depth 0")
		}
		return n, nil
	case VariantCached:
	default:
		return n, errors.Wrapf(ErrMalformedTree, "unknown variant %d", n.Quad.Variant)
	}

	if n.Depth == 0 {
		base, err := c.ExpandBase(n.Embedding)
		if err != nil {
			return n, err
		}
		n.Quad = Quad[A, B]{
			Variant: VariantBase,
			Base:    base,
		}
		return n, nil
	}

	embeddings, err := c.ExpandNode(n.Embedding)
	if err != nil {
		return n, err
	}

	children := c.newChildren()
	for i, embedding := range embeddings {
		children[i] = newCached[A, B](embedding, n.Depth-1)
	}

	n.Quad = Quad[A, B]{
		Variant:  VariantNode,
		Children: children,
	}
	return n, nil
}

// Cache discards the material payload of the node leaving only its embedding.
// Embedding stored on the node is kept, payload is not compressed again.
// When arena is used, child arrays of the payload are cleared, so n must not be used afterwards.
func (c *Context[A, B, S]) Cache(n Node[A, B]) (Node[A, B], error) {
	switch n.Quad.Variant {
	case VariantCached:
		return n, nil
	case VariantBase:
	case VariantNode:
		if n.Quad.Children != nil {
			c.releaseChildren(n.Quad.Children)
		}
	default:
		return n, errors.Wrapf(ErrMalformedTree, "unknown variant %d", n.Quad.Variant)
	}

	return newCached[A, B](n.Embedding, n.Depth), nil
}

// TrimBelow caches every materialized node at the given depth.
// Nodes above keep their payload, subtrees below are released.
func (c *Context[A, B, S]) TrimBelow(n Node[A, B], depth uint64) (Node[A, B], error) {
	switch {
	case n.Depth < depth:
		return n, nil
	case n.Depth == depth:
		return c.Cache(n)
	case n.Quad.Variant != VariantNode:
		return n, nil
	}

	for i := range n.Quad.Children {
		child, err := c.TrimBelow(n.Quad.Children[i], depth)
		if err != nil {
			return n, err
		}
		n.Quad.Children[i] = child
	}
	return n, nil
}
