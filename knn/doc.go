// Package knn implements a SQLite virtual table answering exact nearest
// neighbour queries with MATCH semantics. Each virtual table has a shadow
// table holding labelled coordinates; an in-memory k-d tree (or brute-force
// index for small or high dimensional sets) is built from the shadow on
// first use, cached across connections and invalidated by triggers on any
// shadow write.
//
// Usage:
//
//	CREATE VIRTUAL TABLE places USING knn(dims=3, index=auto);
//	INSERT INTO _knn_places(id, coords) VALUES ('a', ?);
//	SELECT id, distance FROM places WHERE coords MATCH ? AND k = 5;
//
// The MATCH argument is an encoded coordinate BLOB, a JSON array or a comma
// separated list of floats. Without k every point is returned in ascending
// distance order.
package knn
