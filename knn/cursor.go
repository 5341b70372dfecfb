package knn

import (
	"context"
	"fmt"
	"strconv"

	"github.com/viant/kdtree/vector"
	"modernc.org/sqlite/vtab"
)

type row struct {
	rowid    int64
	id       string
	distance *float64
	coords   []byte
}

// Cursor scans results from a knn table.
type Cursor struct {
	table *Table
	rows  []row
	pos   int
	k     *int64
}

// Filter computes the result set based on idxNum/vals.
func (c *Cursor) Filter(idxNum int, _ string, vals []vtab.Value) error {
	c.rows = nil
	c.pos = 0
	c.k = nil
	if c.table == nil || c.table.db == nil {
		return nil
	}
	ctx := context.Background()

	switch idxNum {
	case idxScan:
		return c.scan(ctx)
	case idxMatch, idxMatchK:
		if len(vals) == 0 || vals[0] == nil {
			return fmt.Errorf("knn: MATCH argument is required")
		}
		query, err := vector.ParseCoords(vals[0])
		if err != nil {
			return err
		}
		k := 0
		if idxNum == idxMatchK {
			if len(vals) < 2 {
				return fmt.Errorf("knn: missing k constraint")
			}
			n, err := asInt(vals[1])
			if err != nil {
				return err
			}
			if n < 1 {
				return fmt.Errorf("knn: k must be positive, got %d", n)
			}
			c.k = &n
			k = int(n)
		}
		return c.match(ctx, query, k)
	default:
		return fmt.Errorf("knn: unsupported query plan")
	}
}

func (c *Cursor) scan(ctx context.Context) error {
	if err := c.table.ensureShadow(ctx); err != nil {
		return err
	}
	q := fmt.Sprintf("SELECT rowid, id, coords FROM %s ORDER BY rowid", c.table.shadow)
	rows, err := c.table.db.QueryContext(ctx, q)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.rowid, &r.id, &r.coords); err != nil {
			return err
		}
		c.rows = append(c.rows, r)
	}
	return rows.Err()
}

func (c *Cursor) match(ctx context.Context, query []float32, k int) error {
	snap, err := c.table.ensureIndex(ctx)
	if err != nil {
		return err
	}
	ids, distances, err := snap.index.Query(query, k)
	if err != nil {
		return fmt.Errorf("knn: %s: %w", c.table.tableName, err)
	}
	c.rows = make([]row, 0, len(ids))
	for i, id := range ids {
		pos, ok := snap.byID[id]
		if !ok {
			continue
		}
		blob, err := vector.EncodeCoords(snap.coords[pos])
		if err != nil {
			return err
		}
		distance := distances[i]
		c.rows = append(c.rows, row{rowid: snap.rowids[pos], id: id, distance: &distance, coords: blob})
	}
	return nil
}

// Next advances the cursor.
func (c *Cursor) Next() error {
	if c.pos < len(c.rows) {
		c.pos++
	}
	return nil
}

// Eof reports end-of-rows.
func (c *Cursor) Eof() bool { return c.pos >= len(c.rows) }

// Column returns the value of a column in the current row.
func (c *Cursor) Column(col int) (vtab.Value, error) {
	if c.pos < 0 || c.pos >= len(c.rows) {
		return nil, fmt.Errorf("knn: Column out of range (pos=%d,len=%d)", c.pos, len(c.rows))
	}
	r := c.rows[c.pos]
	switch col {
	case colID:
		return r.id, nil
	case colK:
		if c.k == nil {
			return nil, nil
		}
		return *c.k, nil
	case colDistance:
		if r.distance == nil {
			return nil, nil
		}
		return *r.distance, nil
	case colCoords:
		return r.coords, nil
	}
	return nil, fmt.Errorf("knn: unsupported column %d", col)
}

// Rowid returns the current rowid.
func (c *Cursor) Rowid() (int64, error) {
	if c.pos < 0 || c.pos >= len(c.rows) {
		return 0, fmt.Errorf("knn: Rowid out of range (pos=%d,len=%d)", c.pos, len(c.rows))
	}
	return c.rows[c.pos].rowid, nil
}

// Close releases resources.
func (c *Cursor) Close() error { c.rows = nil; c.pos = 0; return nil }

func asInt(v vtab.Value) (int64, error) {
	switch val := v.(type) {
	case int64:
		return val, nil
	case float64:
		return int64(val), nil
	case []byte:
		return parseInt(string(val))
	case string:
		return parseInt(val)
	default:
		return 0, fmt.Errorf("knn: unsupported k type %T", v)
	}
}

func parseInt(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("knn: cannot parse k %q: %w", s, err)
	}
	return n, nil
}
