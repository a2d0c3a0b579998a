// Package reference implements the lossless compression backend used as a correctness baseline.
//
// Every distinct base cell and every distinct set of four child embeddings is interned in the table
// and identified by a sequential number, so expanding an embedding always gives back exactly
// the values it was computed from.
package reference

import (
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"

	"github.com/outofforest/quadrant"
)

var (
	// ErrUnknownEmbedding is returned when embedding has never been produced by the table.
	ErrUnknownEmbedding = errors.New("unknown embedding")

	// ErrInvalidTable is returned when table can't be recreated from the values.
	ErrInvalidTable = errors.New("invalid table")
)

// Embedding is the identifier of interned value.
type Embedding uint64

// Cell is the constraint for base cells supported by the reference backend.
type Cell interface {
	constraints.Unsigned
}

// NewTable creates new intern table.
func NewTable[A Cell]() *Table[A] {
	return &Table[A]{
		bases: map[A]Embedding{},
		nodes: map[[4]Embedding]Embedding{},
		// Embedding 0 is never issued.
		baseValues: make([]A, 1),
		nodeValues: make([][4]Embedding, 1),
	}
}

// NewTableFromValues recreates the table from values returned by Values.
func NewTableFromValues[A Cell](bases []A, nodes [][4]Embedding) (*Table[A], error) {
	t := NewTable[A]()
	limit := Embedding(max(len(bases), len(nodes)))
	for _, base := range bases {
		if _, exists := t.bases[base]; exists {
			return nil, errors.Wrapf(ErrInvalidTable, "base %v is interned twice", base)
		}
		t.internBase(base)
	}
	for _, children := range nodes {
		if _, exists := t.nodes[children]; exists {
			return nil, errors.Wrapf(ErrInvalidTable, "node %v is interned twice", children)
		}
		for _, e := range children {
			if e == 0 || e > limit {
				return nil, errors.Wrapf(ErrInvalidTable, "node %v refers to unknown embedding %d", children, e)
			}
		}
		t.internNode(children)
	}
	return t, nil
}

// Table stores interned values. It is safe to share between contexts used concurrently.
type Table[A Cell] struct {
	mu         sync.Mutex
	bases      map[A]Embedding
	nodes      map[[4]Embedding]Embedding
	baseValues []A
	nodeValues [][4]Embedding
}

// Len returns number of interned base cells and nodes.
func (t *Table[A]) Len() (uint64, uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return uint64(len(t.baseValues) - 1), uint64(len(t.nodeValues) - 1)
}

// Values returns copies of interned base cells and nodes. Value at index i is interned under embedding i+1.
func (t *Table[A]) Values() ([]A, [][4]Embedding) {
	t.mu.Lock()
	defer t.mu.Unlock()

	bases := make([]A, len(t.baseValues)-1)
	copy(bases, t.baseValues[1:])
	nodes := make([][4]Embedding, len(t.nodeValues)-1)
	copy(nodes, t.nodeValues[1:])
	return bases, nodes
}

func (t *Table[A]) internBase(base A) Embedding {
	t.mu.Lock()
	defer t.mu.Unlock()

	if e, exists := t.bases[base]; exists {
		return e
	}
	e := Embedding(len(t.baseValues))
	t.bases[base] = e
	t.baseValues = append(t.baseValues, base)
	return e
}

func (t *Table[A]) internNode(children [4]Embedding) Embedding {
	t.mu.Lock()
	defer t.mu.Unlock()

	if e, exists := t.nodes[children]; exists {
		return e
	}
	e := Embedding(len(t.nodeValues))
	t.nodes[children] = e
	t.nodeValues = append(t.nodeValues, children)
	return e
}

func (t *Table[A]) base(e Embedding) (A, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if e == 0 || e >= Embedding(len(t.baseValues)) {
		var a A
		return a, errors.Wrapf(ErrUnknownEmbedding, "base embedding %d", e)
	}
	return t.baseValues[e], nil
}

func (t *Table[A]) node(e Embedding) ([4]Embedding, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if e == 0 || e >= Embedding(len(t.nodeValues)) {
		return [4]Embedding{}, errors.Wrapf(ErrUnknownEmbedding, "node embedding %d", e)
	}
	return t.nodeValues[e], nil
}

// Approx is the lossless capability backed by the intern table.
type Approx[A Cell] struct{}

// ColorBase maps cell to the color made of its three lowest bytes.
func (Approx[A]) ColorBase(_ **Table[A], base A) (quadrant.Color, error) {
	return Color(base), nil
}

// CompressBase interns the base cell.
func (Approx[A]) CompressBase(state **Table[A], base A) (Embedding, error) {
	return (*state).internBase(base), nil
}

// ExpandBase returns the base cell interned under the embedding.
func (Approx[A]) ExpandBase(state **Table[A], embedding Embedding) (A, error) {
	return (*state).base(embedding)
}

// CompressNode interns the set of child embeddings.
func (Approx[A]) CompressNode(state **Table[A], children [4]Embedding) (Embedding, error) {
	return (*state).internNode(children), nil
}

// ExpandNode returns child embeddings interned under the embedding.
func (Approx[A]) ExpandNode(state **Table[A], embedding Embedding) ([4]Embedding, error) {
	return (*state).node(embedding)
}

// Color is the color reported for the cell.
func Color[A Cell](base A) quadrant.Color {
	v := uint64(base)
	return quadrant.Color{uint8(v), uint8(v >> 8), uint8(v >> 16), 0xff}
}

// NewContext creates new context using reference backend with fresh table.
func NewContext[A Cell](observer quadrant.Observer) *quadrant.Context[A, Embedding, *Table[A]] {
	return NewContextWithTable(NewTable[A](), observer)
}

// NewContextWithTable creates new context using reference backend with existing table.
func NewContextWithTable[A Cell](
	table *Table[A],
	observer quadrant.Observer,
) *quadrant.Context[A, Embedding, *Table[A]] {
	return quadrant.New(quadrant.Config[A, Embedding, *Table[A]]{
		Approx:   Approx[A]{},
		State:    table,
		Observer: observer,
	})
}

// SharedTable returns function returning the table of c, to be used for forking contexts.
func SharedTable[A Cell](c *quadrant.Context[A, Embedding, *Table[A]]) func() *Table[A] {
	table := *c.State()
	return func() *Table[A] {
		return table
	}
}
