package quadrant

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/outofforest/logger"
	"github.com/outofforest/parallel"
)

// BuildParallel builds the tree from the flat square grid the same way NewFromSquare does,
// but each of the four top-level quadrants is built by a separate goroutine.
// Every goroutine uses its own context created by forking c with the state returned by forkState.
// Top-level node is assembled using c.
func BuildParallel[A, B Embeddable, S any](
	ctx context.Context,
	c *Context[A, B, S],
	forkState func() S,
	cells []A,
) (Node[A, B], error) {
	side, depth, err := squareSide(uint64(len(cells)))
	if err != nil {
		return Node[A, B]{}, err
	}
	if depth == 0 {
		return c.NewBase(cells[0])
	}

	log := logger.Get(ctx)
	half := side / 2

	var children [4]Node[A, B]
	err = parallel.Run(ctx, func(ctx context.Context, spawn parallel.SpawnFn) error {
		for q := range children {
			worker := c.Fork(forkState())
			spawn(fmt.Sprintf("quadrant-%d", q), parallel.Continue, func(ctx context.Context) error {
				col, row := quadrantOrigin(Quadrant(q), 0, 0, half)
				child, err := worker.buildSquare(cells, side, col, row, depth-1)
				if err != nil {
					return err
				}
				children[q] = child

				log.Debug("Quadrant built", zap.Int("quadrant", q), zap.Uint64("depth", child.Depth))
				return nil
			})
		}
		return nil
	})
	if err != nil {
		return Node[A, B]{}, err
	}

	return c.NewNode(children)
}
