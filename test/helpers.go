package test

import (
	"context"
	"testing"

	"github.com/samber/lo"
	"golang.org/x/exp/constraints"

	"github.com/outofforest/logger"
)

// Context returns context carrying logger, canceled when test finishes.
func Context(t *testing.T) context.Context {
	ctx, cancel := context.WithCancel(logger.WithLogger(context.Background(), logger.New(logger.DefaultConfig)))
	t.Cleanup(cancel)
	return ctx
}

// Grid returns square grid of given side where cell (col, row) stores row*side+col.
func Grid[A constraints.Unsigned](side uint64) []A {
	return lo.Times(int(side*side), func(i int) A {
		return A(i)
	})
}

// Point is the coordinate relative to the center of the tree.
type Point struct {
	X, Y int64
}

// Points returns all the points inside the footprint of square of given side, row by row.
func Points(side uint64) []Point {
	half := int64(side / 2)
	return lo.Map(lo.Range(int(side*side)), func(i int, _ int) Point {
		return Point{
			X: int64(i)%int64(side) - half,
			Y: int64(i)/int64(side) - half,
		}
	})
}

// Index returns the index of the cell sampled at point p in the grid of given side.
func Index(side uint64, p Point) int {
	half := int64(side / 2)
	return int((p.Y+half)*int64(side) + p.X + half)
}
