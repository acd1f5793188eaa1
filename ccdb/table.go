package ccdb

import (
	"context"
	"database/sql"
	"fmt"
)

// TypeTableHandle is a resolved type table: the unit CCDB fetches data
// from.
type TypeTableHandle struct {
	db   *DB
	dir  DirectoryMeta
	meta TypeTableMeta
}

// Meta returns the table's raw metadata row.
func (t TypeTableHandle) Meta() TypeTableMeta { return t.meta }

// FullPath returns the table's absolute path (its directory's path plus
// its own name).
func (t TypeTableHandle) FullPath() string {
	dir := DirectoryHandle{db: t.db, meta: t.dir}
	path := dir.FullPath()
	if path == "/" {
		return "/" + t.meta.Name
	}
	return path + "/" + t.meta.Name
}

// Columns returns the table's column metadata, ordered by their stored
// display order.
func (t TypeTableHandle) Columns(ctx context.Context) ([]ColumnMeta, error) {
	rows, err := t.db.conn.QueryContext(ctx, `
		SELECT id, created, modified, name, typeId, columnType, "order", comment
		FROM columns WHERE typeId = ? ORDER BY "order"`, t.meta.ID)
	if err != nil {
		return nil, fmt.Errorf("ccdb: load columns for %s: %w", t.FullPath(), err)
	}
	defer rows.Close()

	var out []ColumnMeta
	for rows.Next() {
		var c ColumnMeta
		var typeText string
		var comment sql.NullString
		if err := rows.Scan(&c.ID, &c.Created, &c.Modified, &c.Name, &c.TypeID, &typeText, &c.Order, &comment); err != nil {
			return nil, fmt.Errorf("ccdb: scan column row: %w", err)
		}
		ct, err := columnTypeFromString(typeText)
		if err != nil {
			return nil, err
		}
		c.ColumnType = ct
		c.Comment = comment.String
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ccdb: load columns for %s: %w", t.FullPath(), err)
	}
	return out, nil
}

// Fetch resolves and decodes this table's data for every run named by qc,
// per the variation chain and as-of timestamp it carries. Runs with no
// applicable assignment anywhere in the chain are simply absent from the
// result map — this is not an error (spec §9).
func (t TypeTableHandle) Fetch(ctx context.Context, qc *Context) (map[RunNumber]*Data, error) {
	columns, err := t.Columns(ctx)
	if err != nil {
		return nil, err
	}

	startVariation, err := t.db.Variation(qc.Variation())
	if err != nil {
		return nil, err
	}
	chain, err := t.db.variationChain(ctx, startVariation)
	if err != nil {
		return nil, err
	}

	assignments, err := resolveAssignmentsBatch(ctx, t.db, t.meta.ID, chain, qc.Runs(), qc.Timestamp())
	if err != nil {
		return nil, err
	}
	if len(assignments) == 0 {
		return map[RunNumber]*Data{}, nil
	}

	ids := make([]Id, 0, len(assignments))
	seen := make(map[Id]bool, len(assignments))
	for _, a := range assignments {
		if !seen[a.constantSetID] {
			seen[a.constantSetID] = true
			ids = append(ids, a.constantSetID)
		}
	}
	vaults, err := loadVaultsBatch(ctx, t.db, ids)
	if err != nil {
		return nil, err
	}

	decoded := make(map[Id]*Data, len(vaults))
	result := make(map[RunNumber]*Data, len(assignments))
	for run, a := range assignments {
		d, ok := decoded[a.constantSetID]
		if !ok {
			vault := vaults[a.constantSetID]
			d, err = DecodeVault(vault, columns, int(t.meta.NRows))
			if err != nil {
				return nil, fmt.Errorf("ccdb: decode %s run %d: %w", t.FullPath(), run, err)
			}
			decoded[a.constantSetID] = d
		}
		result[run] = d
	}
	return result, nil
}
