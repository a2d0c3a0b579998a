package quadrant

import (
	"github.com/pkg/errors"

	"github.com/outofforest/mass"
)

// Config stores context configuration.
type Config[A, B Embeddable, S any] struct {
	Approx   Approx[A, B, S]
	State    S
	Observer Observer

	// ChildrenChunk is the number of child arrays allocated at once from the arena.
	// Zero disables the arena and every array is allocated separately.
	// Arena chunk stays resident as long as any array inside it is referenced.
	ChildrenChunk uint64
}

// New creates new compression context.
func New[A, B Embeddable, S any](config Config[A, B, S]) *Context[A, B, S] {
	if config.Observer == nil {
		config.Observer = noopObserver{}
	}
	c := &Context[A, B, S]{
		config: config,
		state:  config.State,
	}
	if config.ChildrenChunk > 0 {
		c.children = mass.New[[4]Node[A, B]](config.ChildrenChunk)
	}
	return c
}

// Context mediates all the compress and expand calls made on the tree.
// It is not safe for concurrent use.
type Context[A, B Embeddable, S any] struct {
	config   Config[A, B, S]
	state    S
	children *mass.Mass[[4]Node[A, B]]
}

// Fork returns new context sharing capability and observer with this one but using its own state.
// Forked contexts may be used concurrently, so the observer must be safe for concurrent use.
func (c *Context[A, B, S]) Fork(state S) *Context[A, B, S] {
	config := c.config
	config.State = state
	return New(config)
}

// State returns pointer to the backend state.
func (c *Context[A, B, S]) State() *S {
	return &c.state
}

// ColorBase maps base cell to its display color.
func (c *Context[A, B, S]) ColorBase(base A) (Color, error) {
	color, err := c.config.Approx.ColorBase(&c.state, base)
	c.config.Observer.Observe(OperationColorBase, err)
	if err != nil {
		return Color{}, errors.Wrapf(err, "coloring base cell %v failed", base)
	}
	return color, nil
}

// CompressBase turns base cell into an embedding.
func (c *Context[A, B, S]) CompressBase(base A) (B, error) {
	embedding, err := c.config.Approx.CompressBase(&c.state, base)
	c.config.Observer.Observe(OperationCompressBase, err)
	if err != nil {
		var b B
		return b, errors.Wrapf(err, "compressing base cell %v failed", base)
	}
	return embedding, nil
}

// ExpandBase turns embedding back into the base cell.
func (c *Context[A, B, S]) ExpandBase(embedding B) (A, error) {
	base, err := c.config.Approx.ExpandBase(&c.state, embedding)
	c.config.Observer.Observe(OperationExpandBase, err)
	if err != nil {
		var a A
		return a, errors.Wrapf(err, "expanding base embedding %v failed", embedding)
	}
	return base, nil
}

// CompressNode combines embeddings of four children.
func (c *Context[A, B, S]) CompressNode(children [4]B) (B, error) {
	embedding, err := c.config.Approx.CompressNode(&c.state, children)
	c.config.Observer.Observe(OperationCompressNode, err)
	if err != nil {
		var b B
		return b, errors.Wrapf(err, "compressing children %v failed", children)
	}
	return embedding, nil
}

// ExpandNode splits parent embedding into embeddings of its children.
func (c *Context[A, B, S]) ExpandNode(embedding B) ([4]B, error) {
	children, err := c.config.Approx.ExpandNode(&c.state, embedding)
	c.config.Observer.Observe(OperationExpandNode, err)
	if err != nil {
		return [4]B{}, errors.Wrapf(err, "expanding node embedding %v failed", embedding)
	}
	return children, nil
}

// Compress computes embedding of the quad payload.
// It returns false for cached quad because the embedding stored on the node is the authoritative one.
func (c *Context[A, B, S]) Compress(quad *Quad[A, B]) (B, bool, error) {
	var b B
	switch quad.Variant {
	case VariantBase:
		embedding, err := c.CompressBase(quad.Base)
		if err != nil {
			return b, false, err
		}
		return embedding, true, nil
	case VariantNode:
		embedding, err := c.CompressNode([4]B{
			quad.Children[0].Embedding,
			quad.Children[1].Embedding,
			quad.Children[2].Embedding,
			quad.Children[3].Embedding,
		})
		if err != nil {
			return b, false, err
		}
		return embedding, true, nil
	default:
		return b, false, nil
	}
}

func (c *Context[A, B, S]) newChildren() *[4]Node[A, B] {
	if c.children == nil {
		return new([4]Node[A, B])
	}
	return c.children.New()
}

// releaseChildren clears arrays of the discarded subtree so arena chunks don't keep it alive.
func (c *Context[A, B, S]) releaseChildren(children *[4]Node[A, B]) {
	if c.children == nil {
		return
	}
	for _, child := range children {
		if child.Quad.Variant == VariantNode {
			c.releaseChildren(child.Quad.Children)
		}
	}
	*children = [4]Node[A, B]{}
}
