package kd

import (
	"context"
	"errors"
	"fmt"

	"github.com/viant/kdtree/index"
	"github.com/viant/kdtree/kdtree"
)

var _ index.Index = (*Index)(nil)

// Index implements a Euclidean kNN index on top of kdtree.Tree.
type Index struct {
	ids  []string
	tree *kdtree.Tree[labelled, float64]
	opts options
}

// New creates an empty index.
func New(opts ...Option) *Index {
	i := &Index{}
	for _, opt := range opts {
		if opt != nil {
			opt(&i.opts)
		}
	}
	return i
}

// Build constructs the tree. Vectors are referenced, not copied.
func (i *Index) Build(ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("kd: ids and vectors length mismatch: %d != %d", len(ids), len(vectors))
	}
	if len(vectors) == 0 {
		i.ids, i.tree = nil, nil
		return nil
	}
	dim := len(vectors[0])
	tree, err := kdtree.NewWithCapacity[labelled, float64](dim, max(len(vectors), i.opts.capacity), kdtree.WithLogger(i.opts.logger))
	if err != nil {
		return fmt.Errorf("kd: %w", err)
	}
	points := make([]labelled, len(vectors))
	for j, v := range vectors {
		points[j] = labelled{idx: j, coords: v}
	}
	if err := tree.AddPoints(points...); err != nil {
		return fmt.Errorf("kd: inconsistent vector dims: %w", err)
	}
	i.ids = append([]string(nil), ids...)
	i.tree = tree
	return nil
}

// Len returns the number of indexed vectors.
func (i *Index) Len() int {
	if i.tree == nil {
		return 0
	}
	return i.tree.Len()
}

// Dimensions returns the dimensionality of the indexed vectors, or 0 when
// the index is empty.
func (i *Index) Dimensions() int {
	if i.tree == nil {
		return 0
	}
	return i.tree.Dimensions()
}

// Query returns up to k ids ordered by ascending Euclidean distance.
func (i *Index) Query(query []float32, k int) ([]string, []float64, error) {
	if i.tree == nil {
		return nil, nil, nil
	}
	if k <= 0 || k > i.tree.Len() {
		k = i.tree.Len()
	}
	found, err := i.tree.FindNClosest(labelled{idx: -1, coords: query}, k)
	if err != nil {
		return nil, nil, i.wrap(err)
	}
	ids, distances := i.unpack(found)
	return ids, distances, nil
}

// QueryBatch answers Query for every query, running up to parallelism
// searches at once. Results are positioned like queries.
func (i *Index) QueryBatch(ctx context.Context, queries [][]float32, k, parallelism int) ([][]string, [][]float64, error) {
	ids := make([][]string, len(queries))
	distances := make([][]float64, len(queries))
	if i.tree == nil {
		return ids, distances, nil
	}
	if k <= 0 || k > i.tree.Len() {
		k = i.tree.Len()
	}
	points := make([]labelled, len(queries))
	for j, q := range queries {
		points[j] = labelled{idx: -1, coords: q}
	}
	found, err := i.tree.FindNClosestBatch(ctx, points, k, parallelism)
	if err != nil {
		return nil, nil, i.wrap(err)
	}
	for j := range found {
		ids[j], distances[j] = i.unpack(found[j])
	}
	return ids, distances, nil
}

func (i *Index) unpack(found []kdtree.Neighbor[labelled, float64]) ([]string, []float64) {
	ids := make([]string, len(found))
	distances := make([]float64, len(found))
	for j, n := range found {
		ids[j] = i.ids[n.Point.idx]
		distances[j] = n.Distance
	}
	return ids, distances
}

func (i *Index) wrap(err error) error {
	var dimErr *kdtree.DimensionError
	if errors.As(err, &dimErr) {
		return fmt.Errorf("kd: query dim %d != index dim %d: %w", dimErr.Actual, dimErr.Expected, err)
	}
	return fmt.Errorf("kd: %w", err)
}
