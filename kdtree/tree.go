package kdtree

import (
	"fmt"
	"log/slog"
)

// Tree is an arena-backed k-d tree over points of type P measured in D.
type Tree[P Point[P, D], D Distance] struct {
	nodes    []Node[P]
	dims     int
	maxLevel int
	next     int
	logger   *slog.Logger
}

// New creates an empty tree for points with dims coordinates.
func New[P Point[P, D], D Distance](dims int, opts ...Option) (*Tree[P, D], error) {
	if dims < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDimension, dims)
	}
	o := applyOptions(opts)
	return &Tree[P, D]{
		// slot 0 is the sentinel and one spare slot keeps len(nodes) > next
		nodes:  make([]Node[P], o.capacity+2),
		dims:   dims,
		next:   rootIndex,
		logger: o.logger,
	}, nil
}

// NewWithCapacity creates an empty tree whose arena holds capacity points
// before growing.
func NewWithCapacity[P Point[P, D], D Distance](dims, capacity int, opts ...Option) (*Tree[P, D], error) {
	return New[P, D](dims, append([]Option{WithCapacity(capacity)}, opts...)...)
}

// Dimensions returns the configured dimensionality.
func (t *Tree[P, D]) Dimensions() int { return t.dims }

// Len returns the number of points in the tree.
func (t *Tree[P, D]) Len() int { return t.next - rootIndex }

// Capacity returns the number of arena slots, sentinel included.
func (t *Tree[P, D]) Capacity() int { return len(t.nodes) }

// MaxLevel returns the depth of the deepest node; the root is level 0.
func (t *Tree[P, D]) MaxLevel() int { return t.maxLevel }

// AddPoint inserts p. The tree is left untouched when p has the wrong
// dimensionality.
func (t *Tree[P, D]) AddPoint(p P) error {
	if err := t.checkDimensions(p); err != nil {
		return err
	}
	if t.Len() == 0 {
		t.reserve()
		t.nodes[rootIndex] = Node[P]{Point: p, Kind: Root}
		t.next++
		return nil
	}
	parentIndex, kind, err := t.descend(p, rootIndex)
	if err != nil {
		return err
	}
	t.reserve()
	index := t.next
	parent := &t.nodes[parentIndex]
	t.nodes[index] = Node[P]{
		Point:     p,
		Kind:      kind,
		Parent:    parentIndex,
		Dimension: (parent.Dimension + 1) % t.dims,
		Level:     parent.Level + 1,
	}
	parent.attach(kind, index)
	if parent.Level+1 > t.maxLevel {
		t.maxLevel = parent.Level + 1
	}
	t.next++
	return nil
}

// AddPoints inserts points in order and stops at the first failure.
func (t *Tree[P, D]) AddPoints(points ...P) error {
	for i, p := range points {
		if err := t.AddPoint(p); err != nil {
			return fmt.Errorf("kdtree: point %d: %w", i, err)
		}
	}
	return nil
}

// Walk calls fn with a copy of every node in arena order until fn returns
// false. Links in the copy are arena indexes and cannot alter the tree.
func (t *Tree[P, D]) Walk(fn func(index int, node Node[P]) bool) {
	for i := rootIndex; i < t.next; i++ {
		if !fn(i, t.nodes[i]) {
			return
		}
	}
}

// descend walks from the node at from towards the leaves, following the
// side query falls on, and returns the last node reached together with the
// kind of its missing child on that side.
func (t *Tree[P, D]) descend(query P, from int) (int, Kind, error) {
	if _, ok := t.node(from); !ok {
		return absent, Root, ErrEmptyTree
	}
	current := from
	for {
		n := &t.nodes[current]
		kind := RightChild
		if n.Point.Greater(query, n.Dimension) {
			kind = LeftChild
		}
		next := n.child(kind)
		if next == absent {
			return current, kind, nil
		}
		current = next
	}
}

func (t *Tree[P, D]) node(index int) (*Node[P], bool) {
	if index <= absent || index >= t.next {
		return nil, false
	}
	return &t.nodes[index], true
}

// reserve doubles the arena until the next slot can be written while
// keeping one slot spare.
func (t *Tree[P, D]) reserve() {
	if t.next+2 <= len(t.nodes) {
		return
	}
	size := len(t.nodes)
	for size < t.next+2 {
		size *= 2
	}
	nodes := make([]Node[P], size)
	copy(nodes, t.nodes[:t.next])
	t.nodes = nodes
	t.logger.Debug("kdtree: arena grown", "capacity", size, "points", t.Len())
}

func (t *Tree[P, D]) checkDimensions(p P) error {
	if n := p.Dimensions(); n != t.dims {
		return &DimensionError{Expected: t.dims, Actual: n}
	}
	return nil
}
