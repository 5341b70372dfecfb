package kdtree

import "github.com/viant/vec/search"

var _ Point[Float32s, float32] = Float32s{}

// Float32s is a variable-size float32 point whose Euclidean distance is
// computed by the github.com/viant/vec kernels.
type Float32s []float32

// Distance returns the Euclidean distance between v and other.
func (v Float32s) Distance(other Float32s) (float32, error) {
	if len(v) != len(other) {
		return 0, &DimensionError{Expected: len(v), Actual: len(other)}
	}
	return search.Float32s(v).EuclideanDistance([]float32(other)), nil
}

// Greater reports whether v[dim] > other[dim].
func (v Float32s) Greater(other Float32s, dim int) bool {
	return v[dim] > other[dim]
}

// SplitPlane returns a copy of v with every coordinate but dim zeroed.
func (v Float32s) SplitPlane(dim int) Float32s {
	plane := make(Float32s, len(v))
	plane[dim] = v[dim]
	return plane
}

// Dimensions returns len(v).
func (v Float32s) Dimensions() int { return len(v) }
