// Package index defines a minimal abstraction for nearest-neighbour indexes
// that can be built from labelled vectors and queried for the k closest.
// Implementations in this module are a k-d tree (index/kd) and a
// brute-force baseline (index/bruteforce).
package index
