package knn

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	sqlite "modernc.org/sqlite"
	"modernc.org/sqlite/vtab"
)

// ModuleName is the name the virtual table module is registered under.
const ModuleName = "knn"

const (
	colID = iota
	colK
	colDistance
	colCoords
)

var (
	registerInvalidateOnce sync.Once
	registerInvalidateErr  error
)

// Module implements vtab.Module for the knn virtual table.
type Module struct {
	db     *sql.DB
	logger *slog.Logger
}

// Register registers the knn virtual table module and the knn_invalidate
// scalar function with the provided *sql.DB.
func Register(db *sql.DB, opts ...Option) error {
	if db == nil {
		return fmt.Errorf("knn: db is nil")
	}
	mod := &Module{db: db}
	for _, opt := range opts {
		if opt != nil {
			opt(mod)
		}
	}
	if mod.logger == nil {
		mod.logger = slog.New(slog.DiscardHandler)
	}
	if err := registerFunctions(); err != nil {
		return err
	}
	if err := vtab.RegisterModule(db, ModuleName, mod); err != nil {
		if !strings.Contains(err.Error(), "already registered") {
			return err
		}
	}
	return nil
}

// registerFunctions registers knn_invalidate for connections opened after
// the first call. Shadow triggers fail on connections that lack it.
func registerFunctions() error {
	registerInvalidateOnce.Do(func() {
		registerInvalidateErr = sqlite.RegisterDeterministicScalarFunction("knn_invalidate", 1, invalidateFunc)
	})
	return registerInvalidateErr
}

// invalidateFunc implements SQL scalar knn_invalidate(shadow TEXT) -> INT.
func invalidateFunc(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 1 {
		return int64(0), nil
	}
	var shadow string
	switch v := args[0].(type) {
	case string:
		shadow = v
	case []byte:
		shadow = string(v)
	default:
		return int64(0), nil
	}
	return int64(InvalidateCache(shadow)), nil
}

// Create initializes a knn table instance.
func (m *Module) Create(ctx vtab.Context, args []string) (vtab.Table, error) {
	return m.connect(ctx, args, "CREATE")
}

// Connect attaches to an existing knn table instance.
func (m *Module) Connect(ctx vtab.Context, args []string) (vtab.Table, error) {
	return m.connect(ctx, args, "CONNECT")
}

func (m *Module) connect(ctx vtab.Context, args []string, op string) (vtab.Table, error) {
	if len(args) < 3 {
		return nil, fmt.Errorf("knn: %s expects at least 3 args, got %d", op, len(args))
	}
	if err := ctx.EnableConstraintSupport(); err != nil {
		return nil, fmt.Errorf("knn: EnableConstraintSupport failed: %w", err)
	}
	opts, err := parseTableOptions(args[3:])
	if err != nil {
		return nil, err
	}
	if err := ctx.Declare(fmt.Sprintf("CREATE TABLE %s(id TEXT, k INTEGER HIDDEN, distance REAL HIDDEN, coords BLOB HIDDEN)", args[2])); err != nil {
		return nil, err
	}
	t := &Table{
		db:        m.db,
		logger:    m.logger,
		dbName:    args[1],
		tableName: args[2],
		opts:      opts,
	}
	// The shadow is created on first use to avoid cross-connection DDL during xCreate.
	t.shadow = t.qualifiedShadow()
	registerTable(t.tableName, opts)
	return t, nil
}
