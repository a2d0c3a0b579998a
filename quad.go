package quadrant

import (
	"fmt"

	"github.com/pkg/errors"
)

// MaxDepth is the depth of the largest tree whose footprint can be sampled using int64 coordinates.
const MaxDepth = 62

var (
	// ErrMalformedGrid is returned when grid passed to the builder can't be turned into a tree.
	ErrMalformedGrid = errors.New("malformed grid")

	// ErrMalformedTree is returned when depth or variant bookkeeping of the tree is violated.
	ErrMalformedTree = errors.New("malformed tree")
)

// Quad represents the data present in a quad-tree node.
// Zero value is a cached quad.
type Quad[A, B Embeddable] struct {
	Variant Variant

	// Base is valid if variant is VariantBase.
	Base A

	// Children are valid if variant is VariantNode. They are owned exclusively by this quad.
	Children *[4]Node[A, B]
}

// Node represents a node of the quad-tree.
// Depth is 0 for base cells and grows towards the root. Embedding is valid regardless of the variant.
type Node[A, B Embeddable] struct {
	Depth     uint64
	Embedding B
	Quad      Quad[A, B]
}

// Side returns the number of base cells along one side of the node's footprint.
func (n Node[A, B]) Side() uint64 {
	return 1 << n.Depth
}

// Child returns child node in quadrant q. It returns false if node is not expanded.
// Returned value shares its subtree with the parent, so it must be treated as read-only.
func (n Node[A, B]) Child(q Quadrant) (Node[A, B], bool) {
	if n.Quad.Variant != VariantNode {
		return Node[A, B]{}, false
	}
	return n.Quad.Children[q], true
}

func (n Node[A, B]) String() string {
	return fmt.Sprintf("node{depth: %d, variant: %s, embedding: %v}", n.Depth, n.Quad.Variant, n.Embedding)
}

// newCached creates node carrying embedding only.
func newCached[A, B Embeddable](embedding B, depth uint64) Node[A, B] {
	return Node[A, B]{
		Depth:     depth,
		Embedding: embedding,
	}
}

// Validate verifies depth and variant invariants of the materialized part of the tree.
func Validate[A, B Embeddable](n Node[A, B]) error {
	stack := []Node[A, B]{n}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if n.Depth > MaxDepth {
			return errors.Wrapf(ErrMalformedTree, "depth %d exceeds %d", n.Depth, MaxDepth)
		}

		switch n.Quad.Variant {
		case VariantCached:
		case VariantBase:
			if n.Depth != 0 {
				return errors.Wrapf(ErrMalformedTree, "base cell at depth %d", n.Depth)
			}
		case VariantNode:
			if n.Depth == 0 {
				return errors.Wrap(ErrMalformedTree, "node at depth 0")
			}
			if n.Quad.Children == nil {
				return errors.Wrapf(ErrMalformedTree, "node at depth %d has no children", n.Depth)
			}
			for i, child := range n.Quad.Children {
				if child.Depth+1 != n.Depth {
					return errors.Wrapf(ErrMalformedTree, "child %d has depth %d under parent of depth %d",
						i, child.Depth, n.Depth)
				}
				stack = append(stack, child)
			}
		default:
			return errors.Wrapf(ErrMalformedTree, "unknown variant %d", n.Quad.Variant)
		}
	}
	return nil
}
