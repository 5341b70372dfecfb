package knn

import (
	"strings"
	"sync"

	idxapi "github.com/viant/kdtree/index"
)

// snapshot is an index built from one state of a shadow table together with
// the rows it was built from.
type snapshot struct {
	index  idxapi.Index
	kind   string
	rowids []int64
	ids    []string
	coords [][]float32
	byID   map[string]int
}

func (s *snapshot) Len() int { return len(s.ids) }

// Global shared cache of snapshots keyed by db path/table for cross-connection reuse.
var sharedCache = struct {
	mu    sync.RWMutex
	byKey map[string]*cacheEntry
}{byKey: make(map[string]*cacheEntry)}

// cacheEntry holds the snapshot of one table. gen is bumped on every
// invalidation so that a build started before it never publishes.
type cacheEntry struct {
	mu       sync.RWMutex
	snap     *snapshot
	gen      uint64
	building bool
	cond     *sync.Cond
}

func newCacheEntry() *cacheEntry {
	e := &cacheEntry{}
	e.cond = sync.NewCond(&e.mu)
	return e
}

func (e *cacheEntry) get() *snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snap
}

func (e *cacheEntry) generation() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.gen
}

// publish caches snap unless the entry was invalidated after gen was read.
func (e *cacheEntry) publish(gen uint64, snap *snapshot) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gen != gen {
		return false
	}
	e.snap = snap
	return true
}

// invalidate drops the snapshot and reports whether there was anything to
// drop, either a cached snapshot or a build in flight.
func (e *cacheEntry) invalidate() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	dropped := e.snap != nil || e.building
	e.snap = nil
	e.gen++
	return dropped
}

func (e *cacheEntry) waitForBuild() *snapshot {
	e.mu.Lock()
	for e.building {
		e.cond.Wait()
	}
	snap := e.snap
	e.mu.Unlock()
	return snap
}

func (e *cacheEntry) startBuild() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.snap != nil || e.building {
		return false
	}
	e.building = true
	return true
}

func (e *cacheEntry) finishBuild() {
	e.mu.Lock()
	e.building = false
	e.cond.Broadcast()
	e.mu.Unlock()
}

func cacheKey(dbPath, tableName string) string {
	return dbPath + "|" + tableName
}

func getCacheEntry(key string) *cacheEntry {
	sharedCache.mu.RLock()
	entry := sharedCache.byKey[key]
	sharedCache.mu.RUnlock()
	if entry != nil {
		return entry
	}
	sharedCache.mu.Lock()
	defer sharedCache.mu.Unlock()
	if entry = sharedCache.byKey[key]; entry == nil {
		entry = newCacheEntry()
		sharedCache.byKey[key] = entry
	}
	return entry
}

// InvalidateCache drops the cached snapshots of the table owning shadow
// across all databases, including builds still reading rows, and returns how
// many were dropped.
func InvalidateCache(shadow string) int {
	tableName := tableNameFromShadow(shadow)
	if tableName == "" {
		tableName = shadow
	}
	suffix := "|" + tableName
	sharedCache.mu.RLock()
	defer sharedCache.mu.RUnlock()
	count := 0
	for k, entry := range sharedCache.byKey {
		if strings.HasSuffix(k, suffix) && entry.invalidate() {
			count++
		}
	}
	return count
}

// Per-table options so that rebuilds outside a cursor honour the
// options the table was declared with.
var tableRegistry = struct {
	mu      sync.RWMutex
	byTable map[string]tableOptions
}{byTable: make(map[string]tableOptions)}

func registerTable(tableName string, opts tableOptions) {
	tableRegistry.mu.Lock()
	tableRegistry.byTable[tableName] = opts
	tableRegistry.mu.Unlock()
}

func unregisterTable(tableName string) {
	tableRegistry.mu.Lock()
	delete(tableRegistry.byTable, tableName)
	tableRegistry.mu.Unlock()
}

func lookupTable(tableName string) tableOptions {
	tableRegistry.mu.RLock()
	defer tableRegistry.mu.RUnlock()
	if opts, ok := tableRegistry.byTable[tableName]; ok {
		return opts
	}
	return tableOptions{kind: defaultIndexKind}
}
