// Package mean implements lossy backend summarizing each node by the mean value of its cells.
package mean

import (
	"github.com/outofforest/quadrant"
)

// State is the state of mean backend. Backend is stateless.
type State struct{}

// Approx averages children on compression and broadcasts the average on expansion.
// Compressing an expanded embedding always gives the same embedding back.
type Approx struct{}

// ColorBase maps cell to grey level.
func (Approx) ColorBase(_ *State, base uint8) (quadrant.Color, error) {
	return Color(base), nil
}

// CompressBase returns the cell itself.
func (Approx) CompressBase(_ *State, base uint8) (uint8, error) {
	return base, nil
}

// ExpandBase returns the embedding itself.
func (Approx) ExpandBase(_ *State, embedding uint8) (uint8, error) {
	return embedding, nil
}

// CompressNode returns rounded mean of the children.
func (Approx) CompressNode(_ *State, children [4]uint8) (uint8, error) {
	var sum uint16
	for _, c := range children {
		sum += uint16(c)
	}
	return uint8((sum + 2) / 4), nil
}

// ExpandNode assigns the embedding to all the children.
func (Approx) ExpandNode(_ *State, embedding uint8) ([4]uint8, error) {
	return [4]uint8{embedding, embedding, embedding, embedding}, nil
}

// Color returns grey color of the given level.
func Color(level uint8) quadrant.Color {
	return quadrant.Color{level, level, level, 0xff}
}

// NewContext creates new context using mean backend.
func NewContext(observer quadrant.Observer) *quadrant.Context[uint8, uint8, State] {
	return quadrant.New(quadrant.Config[uint8, uint8, State]{
		Approx:   Approx{},
		Observer: observer,
	})
}
