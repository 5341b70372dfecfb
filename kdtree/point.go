package kdtree

import "golang.org/x/exp/constraints"

// Distance is the numeric type produced by a metric.
type Distance interface {
	constraints.Float
}

// Point is the capability a coordinate representation must provide to be
// stored in a Tree.
//
// Distance must be a true metric and must fail on a dimensionality mismatch.
// Greater reports whether the receiver is strictly greater than other along
// dim. SplitPlane returns a point equal to zero everywhere except dim.
//
// The distance between a.SplitPlane(d) and b.SplitPlane(d) must never exceed
// a.Distance(b). Search relies on it to skip subtrees; a point type that
// breaks the bound returns wrong neighbors.
type Point[P any, D Distance] interface {
	Distance(other P) (D, error)
	Greater(other P, dim int) bool
	SplitPlane(dim int) P
	Dimensions() int
}
