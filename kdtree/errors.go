package kdtree

import (
	"errors"
	"fmt"
)

var (
	// ErrDimension is matched by every DimensionError.
	ErrDimension = errors.New("kdtree: dimension error")

	// ErrEmptyTree is returned when a query runs before any point was
	// added, or when a descent starts from an absent node.
	ErrEmptyTree = errors.New("kdtree: no nodes in tree")

	// ErrNodeMissing is matched by every NodeMissingError.
	ErrNodeMissing = errors.New("kdtree: node missing")

	// ErrBinaryHeap is returned when a result heap that must hold a value is empty.
	ErrBinaryHeap = errors.New("kdtree: result heap is empty")

	// ErrInvalidDimension is returned by New for a dimensionality below one.
	ErrInvalidDimension = errors.New("kdtree: dimensions must be positive")

	// ErrInvalidCount is returned when fewer than one neighbor is requested.
	ErrInvalidCount = errors.New("kdtree: neighbor count must be positive")
)

// DimensionError reports a point whose dimensionality differs from the tree's.
type DimensionError struct {
	Expected int
	Actual   int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("kdtree: dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// Is makes errors.Is(err, ErrDimension) hold.
func (e *DimensionError) Is(target error) bool { return target == ErrDimension }

// NodeMissingError reports an arena handle that does not resolve to a node.
// It signals a broken internal invariant.
type NodeMissingError struct {
	Index int
}

func (e *NodeMissingError) Error() string {
	return fmt.Sprintf("kdtree: node %d missing from arena", e.Index)
}

// Is makes errors.Is(err, ErrNodeMissing) hold.
func (e *NodeMissingError) Is(target error) bool { return target == ErrNodeMissing }
