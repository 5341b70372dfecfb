package kdtree

import "fmt"

// BruteForce scores every point against query and returns the n nearest in
// ascending distance order. It keeps the same candidates FindNClosest would
// and serves as its reference.
func (t *Tree[P, D]) BruteForce(query P, n int) ([]Neighbor[P, D], error) {
	if err := t.checkDimensions(query); err != nil {
		return nil, err
	}
	if n < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, n)
	}
	if t.Len() == 0 {
		return nil, ErrEmptyTree
	}
	kept := make(candidates[D], 0, min(n, t.Len()))
	for i := rootIndex; i < t.next; i++ {
		distance, err := t.nodes[i].Point.Distance(query)
		if err != nil {
			return nil, err
		}
		kept.offer(n, i, distance)
	}
	return t.resolve(&kept)
}
