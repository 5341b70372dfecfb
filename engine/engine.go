package engine

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // register pure-Go SQLite driver
)

// DriverName is the database/sql driver every package of this module opens.
const DriverName = "sqlite"

// Open registers kd_l2 and opens dsn with the modernc.org/sqlite driver, so
// every pooled connection can score stored coordinates in SQL.
//
// dsn is a file path such as "./points.sqlite" or ":memory:". An in-memory
// database is private to one connection; callers sharing it across
// statements should cap the pool with SetMaxOpenConns(1).
func Open(dsn string) (*sql.DB, error) {
	if err := RegisterFunctions(); err != nil {
		return nil, fmt.Errorf("engine: register kd_l2: %w", err)
	}
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("engine: open %q: %w", dsn, err)
	}
	return db, nil
}
