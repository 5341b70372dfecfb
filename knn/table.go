package knn

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"modernc.org/sqlite/vtab"
)

const shadowPrefix = "_knn_"

const (
	idxScan = iota
	idxMatch
	idxMatchK
)

// Table represents a single knn virtual table instance.
type Table struct {
	db        *sql.DB
	logger    *slog.Logger
	dbName    string
	tableName string
	shadow    string // qualified shadow table name (e.g. "main._knn_places")
	opts      tableOptions

	dbPathOnce sync.Once
	dbPath     string

	shadowMu    sync.Mutex
	shadowReady bool
}

// BestIndex pushes down MATCH on coords and an equality on k.
func (t *Table) BestIndex(info *vtab.IndexInfo) error {
	var matchConstraint, kConstraint *vtab.Constraint
	for i := range info.Constraints {
		c := &info.Constraints[i]
		if !c.Usable {
			continue
		}
		switch {
		case c.Column == colCoords && c.Op == vtab.OpMATCH:
			matchConstraint = c
		case c.Column == colK && c.Op == vtab.OpEQ:
			kConstraint = c
		}
	}
	switch {
	case matchConstraint == nil:
		info.IdxNum = idxScan
	case kConstraint == nil:
		matchConstraint.ArgIndex = 0
		matchConstraint.Omit = true
		info.IdxNum = idxMatch
	default:
		matchConstraint.ArgIndex = 0
		matchConstraint.Omit = true
		kConstraint.ArgIndex = 1
		kConstraint.Omit = true
		info.IdxNum = idxMatchK
	}
	return nil
}

// Open allocates a new cursor.
func (t *Table) Open() (vtab.Cursor, error) { return &Cursor{table: t}, nil }

// Disconnect cleans up per-connection resources.
func (t *Table) Disconnect() error { return nil }

// Destroy drops the cached index; the shadow table is left to the caller.
func (t *Table) Destroy() error {
	InvalidateCache(t.shadow)
	unregisterTable(t.tableName)
	return nil
}

// ensureShadow creates the shadow table and its invalidation triggers once
// per table instance.
func (t *Table) ensureShadow(ctx context.Context) error {
	t.shadowMu.Lock()
	defer t.shadowMu.Unlock()
	if t.shadowReady {
		return nil
	}
	if t.db == nil {
		return fmt.Errorf("knn: db is nil")
	}
	if err := createShadow(ctx, t.db, t.dbName, t.tableName); err != nil {
		return err
	}
	t.shadowReady = true
	return nil
}

// createShadow creates the shadow table of tableName and the triggers that
// call knn_invalidate on every write to it.
func createShadow(ctx context.Context, db Querier, dbName, tableName string) error {
	if db == nil {
		return fmt.Errorf("knn: db is nil")
	}
	shadow := ShadowTableName(tableName)
	schema := ""
	if strings.TrimSpace(dbName) != "" {
		schema = dbName + "."
	}
	stmt := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s%s (
    id TEXT PRIMARY KEY,
    coords BLOB
);
`, schema, shadow)
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return err
	}
	trigBase := sanitizeName("trg_knn_" + shadow)
	invalidate := `SELECT knn_invalidate(` + quoteLiteral(shadow) + `);`
	for _, event := range []string{"INSERT", "UPDATE", "DELETE"} {
		trig := fmt.Sprintf(`CREATE TRIGGER IF NOT EXISTS %s%s_%s AFTER %s ON %s BEGIN %s END;`,
			schema, trigBase, strings.ToLower(event[:3]), event, shadow, invalidate)
		if _, err := db.ExecContext(ctx, trig); err != nil {
			return err
		}
	}
	return nil
}

// qualifiedShadow returns a fully-qualified shadow table name.
func (t *Table) qualifiedShadow() string {
	base := ShadowTableName(t.tableName)
	if strings.TrimSpace(t.dbName) == "" {
		return base
	}
	return t.dbName + "." + base
}

// ShadowTableName returns the shadow table of a knn virtual table.
//
//	ShadowTableName("places") == "_knn_places"
func ShadowTableName(virtualTable string) string {
	return shadowPrefix + virtualTable
}

func tableNameFromShadow(shadow string) string {
	if i := strings.Index(shadow, "."+shadowPrefix); i >= 0 {
		return shadow[i+1+len(shadowPrefix):]
	}
	if strings.HasPrefix(shadow, shadowPrefix) {
		return strings.TrimPrefix(shadow, shadowPrefix)
	}
	return ""
}

func dbNameFromShadow(shadow string) string {
	if i := strings.Index(shadow, "."+shadowPrefix); i >= 0 {
		return shadow[:i]
	}
	return ""
}

func resolveDbPath(ctx context.Context, db *sql.DB, dbName string) (string, error) {
	if db == nil {
		return "", fmt.Errorf("knn: db is nil")
	}
	if dbName == "" {
		dbName = "main"
	}
	rows, err := db.QueryContext(ctx, `SELECT name, file FROM pragma_database_list`)
	if err != nil {
		return "", err
	}
	defer rows.Close()
	for rows.Next() {
		var name, file string
		if err := rows.Scan(&name, &file); err != nil {
			return "", err
		}
		if name == dbName {
			if file == "" {
				return name, nil
			}
			return file, nil
		}
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	return dbName, nil
}

func (t *Table) cachedDbPath(ctx context.Context) string {
	t.dbPathOnce.Do(func() {
		path, err := resolveDbPath(ctx, t.db, t.dbName)
		if err != nil {
			t.logger.Warn("knn: cannot resolve database path", "db", t.dbName, "error", err)
			path = t.dbName
		}
		t.dbPath = path
	})
	return t.dbPath
}

// sanitizeName converts a qualified name into a safe identifier for triggers.
func sanitizeName(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch r {
		case '.', '-', ' ':
			out = append(out, '_')
		default:
			out = append(out, r)
		}
	}
	return string(out)
}

// quoteLiteral returns SQL string literal with single quotes escaped for safe embedding.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
