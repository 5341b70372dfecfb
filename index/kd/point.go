package kd

import (
	"github.com/viant/kdtree/index"
	"github.com/viant/kdtree/kdtree"
)

// labelled is a point carrying the position of its id. Distances are kept in
// float64 so that they match the other indexes and kd_l2.
type labelled struct {
	idx    int
	coords kdtree.Float32s
}

func (l labelled) Distance(other labelled) (float64, error) {
	if len(l.coords) != len(other.coords) {
		return 0, &kdtree.DimensionError{Expected: len(l.coords), Actual: len(other.coords)}
	}
	return index.EuclideanDistance(l.coords, other.coords), nil
}

func (l labelled) Greater(other labelled, dim int) bool {
	return l.coords.Greater(other.coords, dim)
}

func (l labelled) SplitPlane(dim int) labelled {
	return labelled{idx: -1, coords: l.coords.SplitPlane(dim)}
}

func (l labelled) Dimensions() int { return len(l.coords) }
