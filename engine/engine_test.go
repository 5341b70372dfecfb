package engine

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenInMemory(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(1)

	_, err = db.Exec("CREATE TABLE t(x INTEGER)")
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO t(x) VALUES (1),(2),(3)")
	require.NoError(t, err)
	var count int
	require.NoError(t, db.QueryRow("SELECT count(*) FROM t").Scan(&count))
	assert.Equal(t, 3, count)
}

func TestOpen_ScoresWithKDL2(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "engine.sqlite"))
	require.NoError(t, err)
	defer db.Close()

	var d float64
	require.NoError(t, db.QueryRow("SELECT kd_l2(?, ?)", blob(0, 0), blob(3, 4)).Scan(&d))
	assert.Equal(t, 5.0, d)
	require.NoError(t, db.QueryRow("SELECT kd_l2(?, ?)", blob(1, 1), blob(0, 0)).Scan(&d))
	assert.Equal(t, math.Sqrt(2), d)
}
