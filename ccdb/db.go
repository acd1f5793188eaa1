// Package ccdb is a read-only client for the Calibration and Conditions
// Database: a SQLite-backed store of time-and-run-versioned tabular
// payloads ("constant sets") addressed by a hierarchical directory path.
package ccdb

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "modernc.org/sqlite"

	"github.com/anthropics/calibdb/calibcore"
)

// variationChainCacheSize bounds the number of distinct starting
// variations whose inheritance chain we keep memoized. A handle that
// fetches from hundreds of distinct variations over its lifetime still
// only pays for the most recently used ones.
const variationChainCacheSize = 256

type tableKey struct {
	directoryID Id
	name        string
}

// DB is a shared handle to one CCDB SQLite file: a single connection plus
// the in-memory metadata caches loaded at Open. It is safe for concurrent
// use; cloning by copying the pointer is the intended sharing model (the
// caches are reference types).
type DB struct {
	conn *sql.DB
	path string

	mu              sync.RWMutex
	directoryByID   map[Id]DirectoryMeta
	directoryByPath map[string]Id
	tableByID       map[Id]TypeTableMeta
	tableByDirName  map[tableKey]Id

	variationMu     sync.RWMutex
	variationByName map[string]VariationMeta

	chainCache *lru.Cache[Id, []VariationMeta]
}

// Open opens a read-only handle to a CCDB SQLite file and loads its
// directory and table metadata into memory.
func Open(path string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro&_pragma=busy_timeout(5000)&_pragma=foreign_keys(on)", path)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		calibcore.Logger.Error("ccdb open failed", "path", path, "err", err)
		return nil, fmt.Errorf("ccdb: open %s: %w", path, err)
	}
	conn.SetMaxOpenConns(1)
	if err := conn.Ping(); err != nil {
		conn.Close()
		calibcore.Logger.Error("ccdb open failed", "path", path, "err", err)
		return nil, fmt.Errorf("ccdb: open %s: %w", path, err)
	}

	chain, err := lru.New[Id, []VariationMeta](variationChainCacheSize)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("ccdb: init variation chain cache: %w", err)
	}

	db := &DB{
		conn:            conn,
		path:            path,
		directoryByID:   make(map[Id]DirectoryMeta),
		directoryByPath: make(map[string]Id),
		tableByID:       make(map[Id]TypeTableMeta),
		tableByDirName:  make(map[tableKey]Id),
		variationByName: make(map[string]VariationMeta),
		chainCache:      chain,
	}

	if err := db.loadDirectories(context.Background()); err != nil {
		conn.Close()
		return nil, err
	}
	if err := db.loadTables(context.Background()); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close releases the underlying SQLite connection.
func (db *DB) Close() error { return db.conn.Close() }

// Path returns the filesystem path this handle was opened from.
func (db *DB) Path() string { return db.path }

func (db *DB) loadDirectories(ctx context.Context) error {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, created, modified, name, parentId, authorId, comment,
		       isDeprecated, deprecatedByUserId, isLocked, lockedByUserId
		FROM directories`)
	if err != nil {
		return fmt.Errorf("ccdb: load directories: %w", err)
	}
	defer rows.Close()

	byID := make(map[Id]DirectoryMeta)
	for rows.Next() {
		var d DirectoryMeta
		var comment sql.NullString
		var deprecated, locked sql.NullBool
		var deprecatedBy, lockedBy sql.NullInt64
		if err := rows.Scan(&d.ID, &d.Created, &d.Modified, &d.Name, &d.ParentID, &d.AuthorID,
			&comment, &deprecated, &deprecatedBy, &locked, &lockedBy); err != nil {
			return fmt.Errorf("ccdb: scan directory row: %w", err)
		}
		d.Comment = comment.String
		d.IsDeprecated = deprecated.Bool
		d.DeprecatedByUserID = deprecatedBy.Int64
		d.IsLocked = locked.Bool
		d.LockedByUserID = lockedBy.Int64
		byID[d.ID] = d
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("ccdb: load directories: %w", err)
	}

	byPath := make(map[string]Id, len(byID))
	for id, d := range byID {
		byPath[buildDirPath(byID, d)] = id
	}

	db.mu.Lock()
	db.directoryByID = byID
	db.directoryByPath = byPath
	db.mu.Unlock()
	return nil
}

// buildDirPath walks parentId chains (the directories table is fully
// loaded already, so this never re-queries) to build the '/'-joined path
// spec §3 defines.
func buildDirPath(byID map[Id]DirectoryMeta, d DirectoryMeta) string {
	names := []string{d.Name}
	current := d
	seen := map[Id]bool{current.ID: true}
	for current.ParentID != 0 {
		parent, ok := byID[current.ParentID]
		if !ok || seen[parent.ID] {
			break
		}
		names = append(names, parent.Name)
		seen[parent.ID] = true
		current = parent
	}
	// names is leaf-to-root; reverse into root-to-leaf.
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	out := "/"
	for i, n := range names {
		if i > 0 {
			out += "/"
		}
		out += n
	}
	return out
}

func (db *DB) loadTables(ctx context.Context) error {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, created, modified, directoryId, name,
		       nRows, nColumns, nAssignments, authorId, comment,
		       isDeprecated, deprecatedByUserId, isLocked, lockedByUserId, lockTime
		FROM typeTables`)
	if err != nil {
		return fmt.Errorf("ccdb: load tables: %w", err)
	}
	defer rows.Close()

	byID := make(map[Id]TypeTableMeta)
	byDirName := make(map[tableKey]Id)
	for rows.Next() {
		var t TypeTableMeta
		var comment, lockTime sql.NullString
		var deprecated, locked sql.NullBool
		var deprecatedBy, lockedBy sql.NullInt64
		if err := rows.Scan(&t.ID, &t.Created, &t.Modified, &t.DirectoryID, &t.Name,
			&t.NRows, &t.NColumns, &t.NAssignments, &t.AuthorID, &comment,
			&deprecated, &deprecatedBy, &locked, &lockedBy, &lockTime); err != nil {
			return fmt.Errorf("ccdb: scan table row: %w", err)
		}
		t.Comment = comment.String
		t.IsDeprecated = deprecated.Bool
		t.DeprecatedByUserID = deprecatedBy.Int64
		t.IsLocked = locked.Bool
		t.LockedByUserID = lockedBy.Int64
		t.LockTime = lockTime.String
		byID[t.ID] = t
		byDirName[tableKey{directoryID: t.DirectoryID, name: t.Name}] = t.ID
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("ccdb: load tables: %w", err)
	}

	db.mu.Lock()
	db.tableByID = byID
	db.tableByDirName = byDirName
	db.mu.Unlock()
	return nil
}

// Root returns a handle to the virtual root directory (id 0).
func (db *DB) Root() DirectoryHandle {
	return DirectoryHandle{db: db, meta: DirectoryMeta{ID: 0, Name: ""}}
}

// Dir resolves a directory path to a handle.
func (db *DB) Dir(path string) (DirectoryHandle, error) {
	if path == "" || path == "/" {
		return db.Root(), nil
	}
	norm := normalizePath("/", path)
	db.mu.RLock()
	id, ok := db.directoryByPath[norm]
	var meta DirectoryMeta
	if ok {
		meta, ok = db.directoryByID[id]
	}
	db.mu.RUnlock()
	if !ok {
		return DirectoryHandle{}, fmt.Errorf("%w: %s", ErrDirectoryNotFound, norm)
	}
	return DirectoryHandle{db: db, meta: meta}, nil
}

// Table resolves a table path (directory path + "/" + table name) to a
// handle.
func (db *DB) Table(path string) (TypeTableHandle, error) {
	norm := normalizePath("/", path)
	idx := lastSlash(norm)
	if idx < 0 || idx == len(norm)-1 {
		return TypeTableHandle{}, fmt.Errorf("%w: %s", ErrInvalidPath, norm)
	}
	dirPath, name := norm[:idx], norm[idx+1:]
	if dirPath == "" {
		dirPath = "/"
	}
	dir, err := db.Dir(dirPath)
	if err != nil {
		return TypeTableHandle{}, err
	}
	return dir.Table(name)
}

func lastSlash(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '/' {
			return i
		}
	}
	return -1
}

// Variation resolves a variation name to its cached metadata, querying and
// populating the cache on first use.
func (db *DB) Variation(name string) (VariationMeta, error) {
	db.variationMu.RLock()
	if v, ok := db.variationByName[name]; ok {
		db.variationMu.RUnlock()
		return v, nil
	}
	db.variationMu.RUnlock()

	row := db.conn.QueryRow(`
		SELECT id, created, modified, name, description, authorId, comment,
		       parentId, isLocked, lockTime, lockedByUserId,
		       goBackBehavior, goBackTime, isDeprecated, deprecatedByUserId
		FROM variations WHERE name = ?`, name)

	var v VariationMeta
	var description, comment, lockTime, goBackTime sql.NullString
	var locked, deprecated sql.NullBool
	var lockedBy, goBackBehavior, deprecatedBy sql.NullInt64
	err := row.Scan(&v.ID, &v.Created, &v.Modified, &v.Name, &description, &v.AuthorID, &comment,
		&v.ParentID, &locked, &lockTime, &lockedBy, &goBackBehavior, &goBackTime, &deprecated, &deprecatedBy)
	if err == sql.ErrNoRows {
		return VariationMeta{}, fmt.Errorf("%w: %s", ErrVariationNotFound, name)
	}
	if err != nil {
		return VariationMeta{}, fmt.Errorf("ccdb: load variation %s: %w", name, err)
	}
	v.Description = description.String
	v.Comment = comment.String
	v.IsLocked = locked.Bool
	v.LockTime = lockTime.String
	v.LockedByUserID = lockedBy.Int64
	v.GoBackBehavior = goBackBehavior.Int64
	v.GoBackTime = goBackTime.String
	v.IsDeprecated = deprecated.Bool
	v.DeprecatedByUserID = deprecatedBy.Int64

	db.variationMu.Lock()
	db.variationByName[name] = v
	db.variationMu.Unlock()
	return v, nil
}

// variationChainCap bounds how many ancestors a chain walk will follow,
// guarding against a malformed schema with a parentId cycle (spec §9
// notes a cycle shouldn't occur but recommends a safety cap).
const variationChainCap = 1000

// variationChain returns [start, parent(start), parent(parent(start)), ...]
// terminating at a variation whose ParentID is 0, memoized per starting
// variation id.
func (db *DB) variationChain(ctx context.Context, start VariationMeta) ([]VariationMeta, error) {
	if cached, ok := db.chainCache.Get(start.ID); ok {
		return cached, nil
	}

	chain := []VariationMeta{start}
	current := start
	for i := 0; current.ParentID != 0 && i < variationChainCap; i++ {
		row := db.conn.QueryRowContext(ctx, `
			SELECT id, created, modified, name, description, authorId, comment,
			       parentId, isLocked, lockTime, lockedByUserId,
			       goBackBehavior, goBackTime, isDeprecated, deprecatedByUserId
			FROM variations WHERE id = ?`, current.ParentID)
		var v VariationMeta
		var description, comment, lockTime, goBackTime sql.NullString
		var locked, deprecated sql.NullBool
		var lockedBy, goBackBehavior, deprecatedBy sql.NullInt64
		err := row.Scan(&v.ID, &v.Created, &v.Modified, &v.Name, &description, &v.AuthorID, &comment,
			&v.ParentID, &locked, &lockTime, &lockedBy, &goBackBehavior, &goBackTime, &deprecated, &deprecatedBy)
		if err == sql.ErrNoRows {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ccdb: load variation parent %d: %w", current.ParentID, err)
		}
		v.Description = description.String
		v.Comment = comment.String
		v.IsLocked = locked.Bool
		v.LockTime = lockTime.String
		v.LockedByUserID = lockedBy.Int64
		v.GoBackBehavior = goBackBehavior.Int64
		v.GoBackTime = goBackTime.String
		v.IsDeprecated = deprecated.Bool
		v.DeprecatedByUserID = deprecatedBy.Int64
		chain = append(chain, v)
		current = v
	}

	db.chainCache.Add(start.ID, chain)
	return chain, nil
}

// Request parses a request string and fetches it in one call.
func (db *DB) Request(ctx context.Context, s string) (map[RunNumber]*Data, error) {
	traceID := calibcore.NewTraceID()
	calibcore.Logger.Debug("ccdb request", "trace_id", traceID, "request", s)

	req, err := ParseRequest(s)
	if err != nil {
		calibcore.Logger.Error("ccdb request failed", "trace_id", traceID, "request", s, "err", err)
		return nil, err
	}
	table, err := db.Table(req.Path.FullPath())
	if err != nil {
		calibcore.Logger.Error("ccdb request failed", "trace_id", traceID, "request", s, "err", err)
		return nil, err
	}
	result, err := table.Fetch(ctx, req.Context)
	if err != nil {
		calibcore.Logger.Error("ccdb request failed", "trace_id", traceID, "request", s, "err", err)
		return nil, err
	}
	calibcore.Logger.Debug("ccdb request complete", "trace_id", traceID, "runs", len(result))
	return result, nil
}

// Fetch is a convenience shortcut for Table(path) followed by Fetch(ctx).
func (db *DB) Fetch(ctx context.Context, path string, qc *Context) (map[RunNumber]*Data, error) {
	traceID := calibcore.NewTraceID()
	calibcore.Logger.Debug("ccdb fetch", "trace_id", traceID, "path", path)

	table, err := db.Table(path)
	if err != nil {
		calibcore.Logger.Error("ccdb fetch failed", "trace_id", traceID, "path", path, "err", err)
		return nil, err
	}
	result, err := table.Fetch(ctx, qc)
	if err != nil {
		calibcore.Logger.Error("ccdb fetch failed", "trace_id", traceID, "path", path, "err", err)
		return nil, err
	}
	calibcore.Logger.Debug("ccdb fetch complete", "trace_id", traceID, "path", path, "runs", len(result))
	return result, nil
}
