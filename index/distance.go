package index

import "math"

// EuclideanDistance returns the L2 distance between a and b accumulated in
// float64. Every index and SQL function reports distances through it, so the
// same pair always yields the same value. a and b must have equal length.
func EuclideanDistance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
