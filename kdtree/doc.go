// Package kdtree implements an insert-only k-d tree for exact nearest and
// k-nearest neighbor queries over points of a fixed dimensionality.
//
// Nodes live in a flat arena addressed by integer handles. Handle 0 is a
// permanent sentinel meaning "no node", handle 1 is the root. Parent and
// child links are handles, never pointers, so the tree has no ownership
// cycles and can be walked upwards without a call stack.
//
// Search descends to the leaf region of the query, then walks back towards
// the root along parent links. A per-level table records the last node
// scored at each depth; reaching a node whose level already points at it
// means its subtree is exhausted. Sibling subtrees are only entered when the
// distance from the query to the splitting hyperplane is smaller than the
// worst candidate kept so far.
//
// Any coordinate type can be stored as long as it satisfies Point. Vector,
// Point2, Point3 and Float32s are provided.
//
// A Tree supports one writer. Queries do not modify the tree and may run
// concurrently once insertion has finished.
package kdtree
