package kdtree

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// FindNClosestBatch answers FindNClosest for every query, running up to
// parallelism queries at once (unbounded when parallelism <= 0). Results are
// positioned like queries. The tree must not be modified while it runs.
//
// Cancelling ctx stops queries that have not started yet.
func (t *Tree[P, D]) FindNClosestBatch(ctx context.Context, queries []P, n, parallelism int) ([][]Neighbor[P, D], error) {
	result := make([][]Neighbor[P, D], len(queries))
	g, ctx := errgroup.WithContext(ctx)
	if parallelism > 0 {
		g.SetLimit(parallelism)
	}
	for i := range queries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			found, err := t.FindNClosest(queries[i], n)
			if err != nil {
				return fmt.Errorf("kdtree: query %d: %w", i, err)
			}
			result[i] = found
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}
