// Package vector defines a lightweight point-store API and SQLite-backed
// utilities used by this project. It includes:
//   - Point model and Store interface
//   - SQLiteStore: durable storage for labelled points answering kNN
//     queries through an in-memory k-d tree
//   - Schema helpers to create a points table
//   - Coordinate encoding (BLOB) and parsing, L2 distance
package vector
