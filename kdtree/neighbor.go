package kdtree

import "container/heap"

// Neighbor is a point returned by a query together with its distance to the query.
type Neighbor[P any, D Distance] struct {
	Point    P
	Distance D
}

// candidate is a scored arena handle. Handles are resolved to points only
// once the search is over.
type candidate[D Distance] struct {
	index    int
	distance D
}

// candidates implements heap.Interface sorted by descending distance (max-heap),
// so the worst kept candidate sits at index 0.
type candidates[D Distance] []candidate[D]

func (h candidates[D]) Len() int           { return len(h) }
func (h candidates[D]) Less(i, j int) bool { return h[i].distance > h[j].distance }
func (h candidates[D]) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *candidates[D]) Push(x interface{}) {
	*h = append(*h, x.(candidate[D]))
}

func (h *candidates[D]) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// offer keeps index when the heap holds fewer than limit entries or when
// distance is strictly smaller than the current worst, which is evicted.
func (h *candidates[D]) offer(limit, index int, distance D) {
	if len(*h) < limit {
		heap.Push(h, candidate[D]{index: index, distance: distance})
		return
	}
	if distance < (*h)[0].distance {
		(*h)[0] = candidate[D]{index: index, distance: distance}
		heap.Fix(h, 0)
	}
}

// admits reports whether a point at distance could still enter the heap.
func (h candidates[D]) admits(limit int, distance D) bool {
	return len(h) < limit || distance < h[0].distance
}
