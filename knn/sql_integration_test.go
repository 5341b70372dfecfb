package knn

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/kdtree/engine"
	"github.com/viant/kdtree/vector"
)

// skipWithoutModule skips the test when the driver did not install the knn
// module on the connection that ran the statement.
func skipWithoutModule(t *testing.T, err error) {
	t.Helper()
	if err != nil && strings.Contains(err.Error(), "no such module") {
		t.Skipf("skipping: knn vtab not available (%v)", err)
	}
}

// openTable opens a file database with the knn module registered and creates
// the virtual table described by using. Virtual table statements run on the
// returned connection, the one the module was registered on; the pool keeps a
// second connection for the module's own queries.
func openTable(t *testing.T, name, using string) (*sql.DB, *sql.Conn) {
	t.Helper()
	db, err := engine.Open(filepath.Join(t.TempDir(), name+".sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	db.SetMaxOpenConns(1)
	require.NoError(t, Register(db))
	_, err = db.Exec(`PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000;`)
	require.NoError(t, err)

	ctx := context.Background()
	conn, err := db.Conn(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	_, err = conn.ExecContext(ctx, fmt.Sprintf(`CREATE VIRTUAL TABLE %s USING %s`, name, using))
	skipWithoutModule(t, err)
	require.NoError(t, err)
	require.NoError(t, EnsureShadow(ctx, conn, name))
	db.SetMaxOpenConns(2)
	return db, conn
}

func nearestOrSkip(t *testing.T, conn Querier, table string, query []float32, k int) []vector.Match {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	matches, err := Nearest(ctx, conn, table, query, k)
	if err != nil && ctx.Err() == context.DeadlineExceeded {
		t.Skipf("skipping: MATCH timed out (%v)", err)
	}
	skipWithoutModule(t, err)
	require.NoError(t, err)
	return matches
}

func matchIDs(matches []vector.Match) []string {
	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.ID
	}
	return ids
}

var scenario = map[string][]float32{
	"p0": {0.5, 0.2, 0.1},
	"p1": {1, 1, 1},
	"p2": {2, 2, 2},
	"p3": {-1, -1, -1},
	"p4": {-2, -2, -2},
	"p5": {3, 3, 3},
	"p6": {-3, -3, -3},
}

func seedScenario(t *testing.T, db Querier, table string) {
	t.Helper()
	for i := 0; i < len(scenario); i++ {
		id := fmt.Sprintf("p%d", i)
		require.NoError(t, UpsertPoint(context.Background(), db, table, id, scenario[id]))
	}
}

func TestKNNVirtualTable_Scan(t *testing.T) {
	_, conn := openTable(t, "knn_scan", "knn(dims=3)")
	seedScenario(t, conn, "knn_scan")

	rows, err := conn.QueryContext(context.Background(), `SELECT rowid, id, coords FROM knn_scan ORDER BY rowid`)
	skipWithoutModule(t, err)
	require.NoError(t, err)
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var rowid int64
		var id string
		var blob []byte
		require.NoError(t, rows.Scan(&rowid, &id, &blob))
		coords, err := vector.DecodeCoords(blob)
		require.NoError(t, err)
		assert.Equal(t, scenario[id], coords)
		ids = append(ids, id)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"p0", "p1", "p2", "p3", "p4", "p5", "p6"}, ids)
}

func TestKNNVirtualTable_Match(t *testing.T) {
	for _, kind := range []string{indexKD, indexBrute} {
		t.Run(kind, func(t *testing.T) {
			table := "knn_match_" + kind
			_, conn := openTable(t, table, fmt.Sprintf("knn(dims=3, index=%s)", kind))
			seedScenario(t, conn, table)
			ctx := context.Background()

			matches := nearestOrSkip(t, conn, table, []float32{0.5, 0.2, 0.1}, 1)
			require.Len(t, matches, 1)
			assert.Equal(t, "p0", matches[0].ID)
			assert.Equal(t, 0.0, matches[0].Distance)

			matches = nearestOrSkip(t, conn, table, []float32{-1.2, -1.1, -1.4}, 3)
			assert.Equal(t, []string{"p3", "p4", "p0"}, matchIDs(matches))

			matches = nearestOrSkip(t, conn, table, []float32{0, 0, 0}, 0)
			require.Len(t, matches, len(scenario))
			assert.True(t, sort.SliceIsSorted(matches, func(i, j int) bool { return matches[i].Distance < matches[j].Distance }))

			var id string
			require.NoError(t, conn.QueryRowContext(ctx, fmt.Sprintf(`SELECT id FROM %s WHERE coords MATCH '[2.9, 3, 3.1]' AND k = 1`, table)).Scan(&id))
			assert.Equal(t, "p5", id)
			require.NoError(t, conn.QueryRowContext(ctx, fmt.Sprintf(`SELECT id FROM %s WHERE coords MATCH '-2.9,-3,-3' AND k = 1`, table)).Scan(&id))
			assert.Equal(t, "p6", id)

			var k int64
			require.NoError(t, conn.QueryRowContext(ctx, fmt.Sprintf(`SELECT k FROM %s WHERE coords MATCH '[1,1,1]' AND k = 2 LIMIT 1`, table)).Scan(&k))
			assert.Equal(t, int64(2), k)
		})
	}
}

func TestKNNVirtualTable_Errors(t *testing.T) {
	_, conn := openTable(t, "knn_errors", "knn(dims=3)")
	seedScenario(t, conn, "knn_errors")
	ctx := context.Background()

	_, err := conn.ExecContext(ctx, `CREATE VIRTUAL TABLE knn_bad USING knn(index=cover)`)
	assert.Error(t, err)

	_, err = Nearest(ctx, conn, "knn_errors", []float32{1, 2}, 1)
	assert.Error(t, err)

	var id string
	err = conn.QueryRowContext(ctx, `SELECT id FROM knn_errors WHERE coords MATCH '[1,1,1]' AND k = 0`).Scan(&id)
	assert.Error(t, err)

	assert.Error(t, UpsertPoint(ctx, conn, "knn_errors", "", []float32{1, 2, 3}))
	assert.Error(t, UpsertPoint(ctx, conn, "knn_errors", "empty", nil))
}

func TestKNNVirtualTable_ShadowChangeInvalidatesIndex(t *testing.T) {
	_, conn := openTable(t, "knn_iv", "knn(dims=3, index=kd)")
	seedScenario(t, conn, "knn_iv")
	ctx := context.Background()

	matches := nearestOrSkip(t, conn, "knn_iv", []float32{3.1, 3, 3}, 1)
	assert.Equal(t, []string{"p5"}, matchIDs(matches))

	require.NoError(t, UpsertPoint(ctx, conn, "knn_iv", "q", []float32{3.1, 3, 3}))
	matches = nearestOrSkip(t, conn, "knn_iv", []float32{3.1, 3, 3}, 1)
	assert.Equal(t, []string{"q"}, matchIDs(matches))

	require.NoError(t, UpsertPoint(ctx, conn, "knn_iv", "q", []float32{-9, -9, -9}))
	matches = nearestOrSkip(t, conn, "knn_iv", []float32{3.1, 3, 3}, 1)
	assert.Equal(t, []string{"p5"}, matchIDs(matches))

	require.NoError(t, DeletePoint(ctx, conn, "knn_iv", "q"))
	matches = nearestOrSkip(t, conn, "knn_iv", []float32{-9, -9, -9}, 1)
	assert.Equal(t, []string{"p6"}, matchIDs(matches))
}

func TestKNNVirtualTable_MatchesBruteForce(t *testing.T) {
	_, conn := openTable(t, "knn_random", "knn(dims=4, index=auto)")
	rng := rand.New(rand.NewSource(31))
	ctx := context.Background()
	var points []vector.Point
	for i := 0; i < 300; i++ {
		p := vector.Point{ID: fmt.Sprintf("r%d", i), Coords: []float32{rng.Float32(), rng.Float32(), rng.Float32(), rng.Float32()}}
		points = append(points, p)
		require.NoError(t, UpsertPoint(ctx, conn, "knn_random", p.ID, p.Coords))
	}

	for q := 0; q < 10; q++ {
		query := []float32{rng.Float32(), rng.Float32(), rng.Float32(), rng.Float32()}
		matches := nearestOrSkip(t, conn, "knn_random", query, 5)
		require.Len(t, matches, 5)

		want := make([]vector.Match, len(points))
		for i, p := range points {
			d, err := vector.L2Distance(query, p.Coords)
			require.NoError(t, err)
			want[i] = vector.Match{ID: p.ID, Distance: d}
		}
		sort.SliceStable(want, func(i, j int) bool { return want[i].Distance < want[j].Distance })
		assert.Equal(t, matchIDs(want[:5]), matchIDs(matches))
		for i := range matches {
			assert.Equal(t, want[i].Distance, matches[i].Distance)
		}
	}
}

func TestRebuild(t *testing.T) {
	db, conn := openTable(t, "knn_rebuild", "knn(dims=3)")
	seedScenario(t, conn, "knn_rebuild")

	n, err := Rebuild(context.Background(), db, "main._knn_knn_rebuild", nil)
	require.NoError(t, err)
	assert.Equal(t, len(scenario), n)

	_, err = Rebuild(context.Background(), db, "points", nil)
	assert.Error(t, err)
}
