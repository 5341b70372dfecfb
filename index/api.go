package index

// Index defines an in-memory nearest-neighbour index over labelled vectors.
// It is built once from (id, vector) pairs and then queried repeatedly.
type Index interface {
	// Build constructs the index from the given ids and vectors.
	// ids and vectors must have the same length and every vector the same
	// dimensionality.
	Build(ids []string, vectors [][]float32) error

	// Query returns up to k matches for query as parallel slices of ids and
	// Euclidean distances in ascending distance order. k <= 0 returns every
	// indexed vector. An empty index yields no matches and no error.
	Query(query []float32, k int) (ids []string, distances []float64, err error)
}
