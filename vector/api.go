package vector

import "context"

// Point is a labelled coordinate vector stored in the point store.
type Point struct {
	// ID is the logical identifier of the point.
	ID string

	// Coords holds the point coordinates; every point of a store has the
	// same dimensionality.
	Coords []float32
}

// Match is a single nearest-neighbour hit.
type Match struct {
	ID       string
	Distance float64
}

// Store defines the application-level point store API.
type Store interface {
	// AddPoints inserts or replaces points and returns their IDs.
	AddPoints(ctx context.Context, points []Point) ([]string, error)

	// Nearest returns up to k points closest to query in ascending distance
	// order. k <= 0 returns every point.
	Nearest(ctx context.Context, query []float32, k int) ([]Match, error)

	// Remove deletes the point with the given ID.
	Remove(ctx context.Context, id string) error
}
