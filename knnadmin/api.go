// Package knnadmin exposes administrative operations on knn virtual tables
// through a virtual table of its own.
package knnadmin

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/viant/kdtree/knn"
	"modernc.org/sqlite/vtab"
)

// ModuleName is the name the admin module is registered under.
const ModuleName = "knn_admin"

// Module provides administrative operations via a virtual table.
// Usage:
//
//	CREATE VIRTUAL TABLE knn_admin USING knn_admin(op);
//	SELECT op FROM knn_admin WHERE op MATCH 'main._knn_places'; -- rebuild index
//
// Returns a single row with op='rebuilt:<count>' on success.
type Module struct {
	db     *sql.DB
	logger *slog.Logger
}

type Table struct{ module *Module }

type Cursor struct {
	table *Table
	rows  []string
	pos   int
}

// Register registers the knn_admin module. The logger, when given, receives
// index build events.
func Register(db *sql.DB, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if err := vtab.RegisterModule(db, ModuleName, &Module{db: db, logger: logger}); err != nil {
		if !strings.Contains(err.Error(), "already registered") {
			return err
		}
	}
	return nil
}

func (m *Module) Create(ctx vtab.Context, args []string) (vtab.Table, error) {
	return m.Connect(ctx, args)
}

func (m *Module) Connect(ctx vtab.Context, args []string) (vtab.Table, error) {
	if len(args) < 3 {
		return nil, fmt.Errorf("knn_admin: need at least 3 args")
	}
	if err := ctx.Declare(fmt.Sprintf("CREATE TABLE %s(op)", args[2])); err != nil {
		return nil, err
	}
	return &Table{module: m}, nil
}

func (t *Table) BestIndex(info *vtab.IndexInfo) error {
	for i := range info.Constraints {
		c := &info.Constraints[i]
		if !c.Usable {
			continue
		}
		if c.Column == 0 && c.Op == vtab.OpMATCH {
			c.ArgIndex = 0
			c.Omit = true
			info.IdxNum = 1
			break
		}
	}
	return nil
}

func (t *Table) Open() (vtab.Cursor, error) { return &Cursor{table: t}, nil }

func (t *Table) Disconnect() error { return nil }

func (t *Table) Destroy() error { return nil }

func (c *Cursor) Filter(idxNum int, _ string, vals []vtab.Value) error {
	c.rows = nil
	c.pos = 0
	if idxNum != 1 || len(vals) == 0 || vals[0] == nil {
		return nil
	}
	var shadow string
	switch v := vals[0].(type) {
	case string:
		shadow = v
	case []byte:
		shadow = string(v)
	default:
		return fmt.Errorf("knn_admin: MATCH expects shadow table name as TEXT")
	}
	m := c.table.module
	n, err := knn.Rebuild(context.Background(), m.db, strings.TrimSpace(shadow), m.logger)
	if err != nil {
		return err
	}
	c.rows = []string{fmt.Sprintf("rebuilt:%d", n)}
	return nil
}

func (c *Cursor) Next() error {
	if c.pos < len(c.rows) {
		c.pos++
	}
	return nil
}

func (c *Cursor) Eof() bool { return c.pos >= len(c.rows) }

func (c *Cursor) Column(col int) (vtab.Value, error) {
	if c.pos < 0 || c.pos >= len(c.rows) {
		return nil, fmt.Errorf("knn_admin: Column out of range")
	}
	if col == 0 {
		return c.rows[c.pos], nil
	}
	return nil, nil
}

func (c *Cursor) Rowid() (int64, error) { return int64(c.pos + 1), nil }

func (c *Cursor) Close() error { c.rows = nil; c.pos = 0; return nil }
