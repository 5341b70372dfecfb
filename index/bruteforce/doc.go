// Package bruteforce provides a vector index that answers kNN queries by
// scanning all vectors and scoring them by Euclidean distance. It is the
// baseline for small sets and the reference for the k-d tree index.
package bruteforce
