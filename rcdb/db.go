package rcdb

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/anthropics/calibdb/calibcore"
	_ "modernc.org/sqlite"
)

// DB is a shared handle to one RCDB SQLite file: a single connection plus
// the in-memory condition-type cache loaded at Open.
type DB struct {
	conn *sql.DB
	path string

	mu              sync.RWMutex
	conditionByName map[string]ConditionTypeMeta
}

// Open opens a read-only handle to an RCDB SQLite file, verifies it
// carries schema version 2, and loads its condition_types table into
// memory.
func Open(path string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro&_pragma=busy_timeout(5000)&_pragma=foreign_keys(on)", path)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		calibcore.Logger.Error("rcdb open failed", "path", path, "err", err)
		return nil, fmt.Errorf("rcdb: open %s: %w", path, err)
	}
	conn.SetMaxOpenConns(1)
	if err := conn.Ping(); err != nil {
		conn.Close()
		calibcore.Logger.Error("rcdb open failed", "path", path, "err", err)
		return nil, fmt.Errorf("rcdb: open %s: %w", path, err)
	}

	if err := ensureSchemaVersion(context.Background(), conn); err != nil {
		conn.Close()
		calibcore.Logger.Error("rcdb open failed", "path", path, "err", err)
		return nil, err
	}

	db := &DB{conn: conn, path: path, conditionByName: make(map[string]ConditionTypeMeta)}
	if err := db.loadConditionTypes(context.Background()); err != nil {
		conn.Close()
		calibcore.Logger.Error("rcdb open failed", "path", path, "err", err)
		return nil, err
	}
	calibcore.Logger.Debug("rcdb open", "path", path, "condition_types", len(db.conditionByName))
	return db, nil
}

// Close releases the underlying SQLite connection.
func (db *DB) Close() error { return db.conn.Close() }

// Path returns the filesystem path this handle was opened from.
func (db *DB) Path() string { return db.path }

func ensureSchemaVersion(ctx context.Context, conn *sql.DB) error {
	var exists int
	err := conn.QueryRowContext(ctx, `SELECT 1 FROM schema_versions WHERE version = 2 LIMIT 1`).Scan(&exists)
	if err == sql.ErrNoRows {
		return ErrMissingSchemaVersion
	}
	if err != nil {
		return fmt.Errorf("rcdb: check schema version: %w", err)
	}
	return nil
}

func (db *DB) loadConditionTypes(ctx context.Context) error {
	rows, err := db.conn.QueryContext(ctx, `SELECT id, name, value_type, created, description FROM condition_types`)
	if err != nil {
		return fmt.Errorf("rcdb: load condition_types: %w", err)
	}
	defer rows.Close()

	loaded := make(map[string]ConditionTypeMeta)
	for rows.Next() {
		var c ConditionTypeMeta
		var valueTypeText string
		var created, description sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &valueTypeText, &created, &description); err != nil {
			return fmt.Errorf("rcdb: scan condition_types row: %w", err)
		}
		vt, err := valueTypeFromIdentifier(valueTypeText)
		if err != nil {
			return err
		}
		c.ValueType = vt
		c.Created = created.String
		c.Description = description.String
		loaded[c.Name] = c
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("rcdb: load condition_types: %w", err)
	}

	db.mu.Lock()
	db.conditionByName = loaded
	db.mu.Unlock()
	return nil
}

// ConditionType returns the cached metadata for a named condition type.
func (db *DB) ConditionType(name string) (ConditionTypeMeta, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	c, ok := db.conditionByName[name]
	return c, ok
}

// ConditionTypes returns the metadata for every known condition type.
func (db *DB) ConditionTypes() []ConditionTypeMeta {
	db.mu.RLock()
	defer db.mu.RUnlock()
	out := make([]ConditionTypeMeta, 0, len(db.conditionByName))
	for _, c := range db.conditionByName {
		out = append(out, c)
	}
	return out
}
