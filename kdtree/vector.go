package kdtree

import (
	"math"

	"golang.org/x/exp/constraints"
)

var (
	_ Point[Vector[float64], float64] = Vector[float64]{}
	_ Point[Point2[float64], float64] = Point2[float64]{}
	_ Point[Point3[float32], float32] = Point3[float32]{}
)

// Vector is a variable-size Euclidean point.
type Vector[T constraints.Float] []T

// Distance returns the Euclidean distance between v and other.
func (v Vector[T]) Distance(other Vector[T]) (T, error) {
	if len(v) != len(other) {
		return 0, &DimensionError{Expected: len(v), Actual: len(other)}
	}
	var sum T
	for i := range v {
		d := v[i] - other[i]
		sum += d * d
	}
	return T(math.Sqrt(float64(sum))), nil
}

// Greater reports whether v[dim] > other[dim].
func (v Vector[T]) Greater(other Vector[T], dim int) bool {
	return v[dim] > other[dim]
}

// SplitPlane returns a copy of v with every coordinate but dim zeroed.
func (v Vector[T]) SplitPlane(dim int) Vector[T] {
	plane := make(Vector[T], len(v))
	plane[dim] = v[dim]
	return plane
}

// Dimensions returns len(v).
func (v Vector[T]) Dimensions() int { return len(v) }

// Point2 is a fixed-size two dimensional Euclidean point.
type Point2[T constraints.Float] [2]T

func (p Point2[T]) Distance(other Point2[T]) (T, error) {
	dx := p[0] - other[0]
	dy := p[1] - other[1]
	return T(math.Sqrt(float64(dx*dx + dy*dy))), nil
}

func (p Point2[T]) Greater(other Point2[T], dim int) bool { return p[dim] > other[dim] }

func (p Point2[T]) SplitPlane(dim int) Point2[T] {
	var plane Point2[T]
	plane[dim] = p[dim]
	return plane
}

func (p Point2[T]) Dimensions() int { return 2 }

// Point3 is a fixed-size three dimensional Euclidean point.
type Point3[T constraints.Float] [3]T

func (p Point3[T]) Distance(other Point3[T]) (T, error) {
	dx := p[0] - other[0]
	dy := p[1] - other[1]
	dz := p[2] - other[2]
	return T(math.Sqrt(float64(dx*dx + dy*dy + dz*dz))), nil
}

func (p Point3[T]) Greater(other Point3[T], dim int) bool { return p[dim] > other[dim] }

func (p Point3[T]) SplitPlane(dim int) Point3[T] {
	var plane Point3[T]
	plane[dim] = p[dim]
	return plane
}

func (p Point3[T]) Dimensions() int { return 3 }
