package kdtree

import (
	"container/heap"
	"fmt"
)

// FindClosest returns the point nearest to query.
func (t *Tree[P, D]) FindClosest(query P) (Neighbor[P, D], error) {
	found, err := t.FindNClosest(query, 1)
	if err != nil {
		return Neighbor[P, D]{}, err
	}
	if len(found) == 0 {
		return Neighbor[P, D]{}, ErrBinaryHeap
	}
	return found[0], nil
}

// FindNClosest returns the n points nearest to query in ascending distance
// order. A tree holding fewer than n points returns all of them.
//
// Equidistant points compete for the last slots in an unspecified order;
// the returned distances are exact either way.
func (t *Tree[P, D]) FindNClosest(query P, n int) ([]Neighbor[P, D], error) {
	if err := t.checkDimensions(query); err != nil {
		return nil, err
	}
	if n < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, n)
	}
	current, kind, err := t.descend(query, rootIndex)
	if err != nil {
		return nil, err
	}
	kept := make(candidates[D], 0, min(n, t.Len()))
	// visited[level] is the last node scored at that depth. Depth-first
	// traversal keeps at most one live node per level, so meeting a node
	// that is already recorded means we climbed back out of its subtree.
	visited := make([]int, t.maxLevel+1)
	for current != absent {
		node := &t.nodes[current]
		if visited[node.Level] == current {
			kind = node.Kind
			current = node.Parent
			continue
		}
		distance, err := node.Point.Distance(query)
		if err != nil {
			return nil, err
		}
		kept.offer(n, current, distance)
		visited[node.Level] = current

		far := node.child(kind.opposite())
		if far == absent {
			continue
		}
		plane, err := node.Point.SplitPlane(node.Dimension).Distance(query.SplitPlane(node.Dimension))
		if err != nil {
			return nil, err
		}
		if !kept.admits(n, plane) {
			continue
		}
		if current, kind, err = t.descend(query, far); err != nil {
			return nil, err
		}
	}
	return t.resolve(&kept)
}

// resolve drains the heap into neighbors sorted by ascending distance.
func (t *Tree[P, D]) resolve(kept *candidates[D]) ([]Neighbor[P, D], error) {
	result := make([]Neighbor[P, D], kept.Len())
	for i := len(result) - 1; i >= 0; i-- {
		c := heap.Pop(kept).(candidate[D])
		node, ok := t.node(c.index)
		if !ok {
			t.logger.Error("kdtree: candidate does not resolve", "index", c.index, "points", t.Len())
			return nil, &NodeMissingError{Index: c.index}
		}
		result[i] = Neighbor[P, D]{Point: node.Point, Distance: c.distance}
	}
	return result, nil
}
