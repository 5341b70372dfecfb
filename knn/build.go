package knn

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	idxapi "github.com/viant/kdtree/index"
	"github.com/viant/kdtree/index/bruteforce"
	"github.com/viant/kdtree/index/kd"
	"github.com/viant/kdtree/vector"
)

// ensureIndex returns the cached snapshot of the table, building it from the
// shadow table when missing. Concurrent callers wait for a single build.
func (t *Table) ensureIndex(ctx context.Context) (*snapshot, error) {
	if err := t.ensureShadow(ctx); err != nil {
		return nil, err
	}
	entry := getCacheEntry(cacheKey(t.cachedDbPath(ctx), t.tableName))
	if snap := entry.get(); snap != nil {
		return snap, nil
	}
	for {
		if snap := entry.get(); snap != nil {
			return snap, nil
		}
		if entry.startBuild() {
			break
		}
		if snap := entry.waitForBuild(); snap != nil {
			return snap, nil
		}
	}
	defer entry.finishBuild()

	gen := entry.generation()
	snap, err := buildSnapshot(ctx, t.db, t.shadow, t.opts, t.logger)
	if err != nil {
		return nil, err
	}
	if !entry.publish(gen, snap) {
		t.logger.Debug("knn: index invalidated during build", "table", t.shadow)
	}
	return snap, nil
}

// buildSnapshot loads every point of shadow and indexes it.
func buildSnapshot(ctx context.Context, db *sql.DB, shadow string, opts tableOptions, logger *slog.Logger) (*snapshot, error) {
	started := time.Now()
	q := fmt.Sprintf("SELECT rowid, id, coords FROM %s WHERE coords IS NOT NULL ORDER BY rowid", shadow)
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	snap := &snapshot{byID: make(map[string]int)}
	for rows.Next() {
		var rowid int64
		var id string
		var blob []byte
		if err := rows.Scan(&rowid, &id, &blob); err != nil {
			return nil, err
		}
		if len(blob) == 0 {
			continue
		}
		coords, err := vector.DecodeCoords(blob)
		if err != nil {
			return nil, fmt.Errorf("knn: point %q: %w", id, err)
		}
		if opts.dims > 0 && len(coords) != opts.dims {
			return nil, fmt.Errorf("knn: point %q has %d coords, table expects %d", id, len(coords), opts.dims)
		}
		snap.byID[id] = len(snap.ids)
		snap.rowids = append(snap.rowids, rowid)
		snap.ids = append(snap.ids, id)
		snap.coords = append(snap.coords, coords)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	dims := opts.dims
	if dims == 0 && len(snap.coords) > 0 {
		dims = len(snap.coords[0])
	}
	snap.kind = opts.resolveIndexKind(len(snap.ids), dims)
	var built idxapi.Index
	switch snap.kind {
	case indexKD:
		built = kd.New(kd.WithLogger(logger))
	default:
		built = &bruteforce.Index{}
	}
	if err := built.Build(snap.ids, snap.coords); err != nil {
		return nil, fmt.Errorf("knn: build %s: %w", shadow, err)
	}
	snap.index = built
	logger.Info("knn: index built", "table", shadow, "points", snap.Len(), "kind", snap.kind, "elapsed", time.Since(started))
	return snap, nil
}

// Rebuild discards the cached index of the knn table owning shadow and
// builds a fresh one, returning the number of indexed points. shadow may be
// schema qualified ("main._knn_places").
func Rebuild(ctx context.Context, db *sql.DB, shadow string, logger *slog.Logger) (int, error) {
	tableName := tableNameFromShadow(shadow)
	if tableName == "" {
		return 0, fmt.Errorf("knn: %q is not a knn shadow table", shadow)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	dbName := dbNameFromShadow(shadow)
	dbPath, err := resolveDbPath(ctx, db, dbName)
	if err != nil {
		return 0, err
	}
	entry := getCacheEntry(cacheKey(dbPath, tableName))
	for !entry.startBuild() {
		entry.waitForBuild()
		entry.invalidate()
	}
	defer entry.finishBuild()
	gen := entry.generation()

	qualified := ShadowTableName(tableName)
	if strings.TrimSpace(dbName) != "" {
		qualified = dbName + "." + qualified
	}
	snap, err := buildSnapshot(ctx, db, qualified, lookupTable(tableName), logger)
	if err != nil {
		entry.invalidate()
		return 0, err
	}
	if !entry.publish(gen, snap) {
		logger.Debug("knn: index invalidated during rebuild", "table", qualified)
	}
	return snap.Len(), nil
}
