// Package kd provides an index.Index backed by an in-memory k-d tree. The
// tree is built in one pass from a two dimensional array of coordinates and
// answers exact Euclidean kNN queries.
package kd
