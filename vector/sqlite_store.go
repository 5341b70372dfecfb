package vector

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/viant/kdtree/index/kd"
)

// SQLiteStore is a Store keeping points in a SQLite table. Nearest builds an
// in-memory k-d tree from the table on first use and reuses it until the
// next write through the store.
type SQLiteStore struct {
	db   *sql.DB
	opts []kd.Option

	mu  sync.Mutex
	idx *kd.Index
}

// NewSQLiteStore creates a new SQLite-backed Store. It ensures the points
// schema exists in the provided database.
func NewSQLiteStore(db *sql.DB, opts ...kd.Option) (*SQLiteStore, error) {
	if db == nil {
		return nil, fmt.Errorf("vector: db is nil")
	}
	if err := EnsureSchema(db); err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db, opts: opts}, nil
}

// AddPoints upserts points into the points table within one transaction.
func (s *SQLiteStore) AddPoints(ctx context.Context, points []Point) ([]string, error) {
	if len(points) == 0 {
		return nil, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO points(id, coords) VALUES(?, ?)
ON CONFLICT(id) DO UPDATE SET coords = excluded.coords`)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	ids := make([]string, 0, len(points))
	for _, p := range points {
		if p.ID == "" {
			return nil, fmt.Errorf("vector: Point.ID must be set")
		}
		if len(p.Coords) == 0 {
			return nil, fmt.Errorf("vector: point %q has no coords", p.ID)
		}
		blob, err := EncodeCoords(p.Coords)
		if err != nil {
			return nil, err
		}
		if _, err := stmt.ExecContext(ctx, p.ID, blob); err != nil {
			return nil, err
		}
		ids = append(ids, p.ID)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	s.invalidate()
	return ids, nil
}

// Nearest returns up to k points closest to query.
func (s *SQLiteStore) Nearest(ctx context.Context, query []float32, k int) ([]Match, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	idx, err := s.index(ctx)
	if err != nil {
		return nil, err
	}
	ids, distances, err := idx.Query(query, k)
	if err != nil {
		return nil, err
	}
	out := make([]Match, len(ids))
	for i := range ids {
		out[i] = Match{ID: ids[i], Distance: distances[i]}
	}
	return out, nil
}

// Remove deletes a point by ID.
func (s *SQLiteStore) Remove(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("vector: Remove called with empty id")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM points WHERE id = ?`, id); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

func (s *SQLiteStore) invalidate() {
	s.mu.Lock()
	s.idx = nil
	s.mu.Unlock()
}

func (s *SQLiteStore) index(ctx context.Context) (*kd.Index, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.idx != nil {
		return s.idx, nil
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, coords FROM points ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	var vectors [][]float32
	for rows.Next() {
		var id string
		var blob []byte
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, err
		}
		coords, err := DecodeCoords(blob)
		if err != nil {
			return nil, fmt.Errorf("vector: point %q: %w", id, err)
		}
		ids = append(ids, id)
		vectors = append(vectors, coords)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	idx := kd.New(s.opts...)
	if err := idx.Build(ids, vectors); err != nil {
		return nil, err
	}
	s.idx = idx
	return idx, nil
}

// Ensure SQLiteStore satisfies the Store interface.
var _ Store = (*SQLiteStore)(nil)
