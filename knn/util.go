package knn

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/viant/kdtree/vector"
)

// Querier is the subset of *sql.DB, *sql.Conn and *sql.Tx the helpers use.
// Passing a *sql.Conn keeps statements on the connection the module was
// registered with.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// EnsureShadow creates the shadow table of a knn virtual table together with
// its invalidation triggers. It is a no-op when they already exist.
func EnsureShadow(ctx context.Context, db Querier, virtualTable string) error {
	return createShadow(ctx, db, "", virtualTable)
}

// UpsertPoint inserts or updates a point in the shadow table of
// virtualTable. Triggers on the shadow invalidate the cached index.
//
// virtualTable is interpolated into SQL; callers should ensure it is
// trusted.
func UpsertPoint(ctx context.Context, db Querier, virtualTable, id string, coords []float32) error {
	if db == nil {
		return fmt.Errorf("knn: db is nil")
	}
	if id == "" {
		return fmt.Errorf("knn: point id is empty")
	}
	blob, err := vector.EncodeCoords(coords)
	if err != nil {
		return err
	}
	if blob == nil {
		return fmt.Errorf("knn: point %q has no coords", id)
	}
	stmt := fmt.Sprintf(`
INSERT INTO %s(id, coords)
VALUES (?, ?)
ON CONFLICT(id) DO UPDATE SET coords = excluded.coords`, ShadowTableName(virtualTable))
	_, err = db.ExecContext(ctx, stmt, id, blob)
	return err
}

// DeletePoint removes a point from the shadow table of virtualTable.
func DeletePoint(ctx context.Context, db Querier, virtualTable, id string) error {
	if db == nil {
		return fmt.Errorf("knn: db is nil")
	}
	_, err := db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", ShadowTableName(virtualTable)), id)
	return err
}

// Nearest runs a MATCH query against virtualTable and returns up to k
// matches in ascending distance order. When k <= 0, all points are returned.
func Nearest(ctx context.Context, db Querier, virtualTable string, query []float32, k int) ([]vector.Match, error) {
	if db == nil {
		return nil, fmt.Errorf("knn: db is nil")
	}
	blob, err := vector.EncodeCoords(query)
	if err != nil {
		return nil, err
	}
	base := fmt.Sprintf("SELECT id, distance FROM %s WHERE coords MATCH ?", virtualTable)
	var rows *sql.Rows
	if k > 0 {
		rows, err = db.QueryContext(ctx, base+" AND k = ?", blob, k)
	} else {
		rows, err = db.QueryContext(ctx, base, blob)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []vector.Match
	for rows.Next() {
		var m vector.Match
		if err := rows.Scan(&m.ID, &m.Distance); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
