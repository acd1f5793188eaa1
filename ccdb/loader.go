package ccdb

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// sqliteParamChunk bounds how many placeholders a single batched query
// uses, staying well under SQLite's default SQLITE_MAX_VARIABLE_NUMBER.
const sqliteParamChunk = 500

// resolvedAssignment is the winning assignment for one run: which constant
// set it points at and which variation in the chain produced the match.
type resolvedAssignment struct {
	constantSetID Id
	variationName string
}

// resolveAssignmentsBatch resolves assignments for a whole run set against
// one variation chain in a bounded number of round trips: one query per
// chain level against a scratch temp table of still-unresolved runs,
// rather than one query per run. Runs with no assignment anywhere in the
// chain are simply absent from the result.
//
// The as-of filter converts asOf to local time in SQLite
// (datetime(?, 'unixepoch', 'localtime')) before comparing it with each
// assignment's created string, so created values are taken to be stored in
// local time.
func resolveAssignmentsBatch(ctx context.Context, db *DB, tableID Id, chain []VariationMeta, runs []RunNumber, asOf time.Time) (map[RunNumber]resolvedAssignment, error) {
	result := make(map[RunNumber]resolvedAssignment, len(runs))
	if len(runs) == 0 || len(chain) == 0 {
		return result, nil
	}

	conn, err := db.conn.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("ccdb: acquire connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, `CREATE TEMP TABLE ccdb_scratch_runs (run INTEGER PRIMARY KEY)`); err != nil {
		return nil, fmt.Errorf("ccdb: create scratch table: %w", err)
	}
	defer conn.ExecContext(ctx, `DROP TABLE IF EXISTS ccdb_scratch_runs`)

	for _, chunk := range chunkRuns(runs, sqliteParamChunk) {
		placeholders := strings.TrimSuffix(strings.Repeat("(?),", len(chunk)), ",")
		args := make([]any, len(chunk))
		for i, r := range chunk {
			args[i] = r
		}
		if _, err := conn.ExecContext(ctx, `INSERT OR IGNORE INTO ccdb_scratch_runs(run) VALUES `+placeholders, args...); err != nil {
			return nil, fmt.Errorf("ccdb: seed scratch table: %w", err)
		}
	}

	asOfUnix := asOf.Unix()
	for _, v := range chain {
		rows, err := conn.QueryContext(ctx, `
			WITH ranked AS (
				SELECT s.run AS run, a.id AS assignment_id, a.constantSetId AS constant_set_id,
				       ROW_NUMBER() OVER (PARTITION BY s.run ORDER BY a.created DESC, a.id DESC) AS rn
				FROM ccdb_scratch_runs s
				JOIN runRanges rr ON rr.runMin <= s.run AND rr.runMax >= s.run
				JOIN assignments a ON a.runRangeId = rr.id AND a.variationId = ?
				JOIN constantSets cs ON cs.id = a.constantSetId AND cs.constantTypeId = ?
				WHERE datetime(a.created) <= datetime(?, 'unixepoch', 'localtime')
			)
			SELECT run, constant_set_id FROM ranked WHERE rn = 1`,
			v.ID, tableID, asOfUnix)
		if err != nil {
			return nil, fmt.Errorf("ccdb: resolve assignments for variation %s: %w", v.Name, err)
		}

		var resolvedRuns []RunNumber
		for rows.Next() {
			var run RunNumber
			var constantSetID Id
			if err := rows.Scan(&run, &constantSetID); err != nil {
				rows.Close()
				return nil, fmt.Errorf("ccdb: scan resolved assignment: %w", err)
			}
			result[run] = resolvedAssignment{constantSetID: constantSetID, variationName: v.Name}
			resolvedRuns = append(resolvedRuns, run)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()

		if len(resolvedRuns) == 0 {
			continue
		}
		for _, chunk := range chunkRuns(resolvedRuns, sqliteParamChunk) {
			placeholders := strings.TrimSuffix(strings.Repeat("?,", len(chunk)), ",")
			args := make([]any, len(chunk))
			for i, r := range chunk {
				args[i] = r
			}
			if _, err := conn.ExecContext(ctx, `DELETE FROM ccdb_scratch_runs WHERE run IN (`+placeholders+`)`, args...); err != nil {
				return nil, fmt.Errorf("ccdb: prune scratch table: %w", err)
			}
		}
	}

	return result, nil
}

func chunkRuns(runs []RunNumber, size int) [][]RunNumber {
	var chunks [][]RunNumber
	for len(runs) > 0 {
		n := size
		if n > len(runs) {
			n = len(runs)
		}
		chunks = append(chunks, runs[:n])
		runs = runs[n:]
	}
	return chunks
}

// loadVaultsBatch loads vault strings for a set of constant set ids in
// bounded chunks rather than one query per id or one unbounded IN list.
func loadVaultsBatch(ctx context.Context, db *DB, ids []Id) (map[Id]string, error) {
	out := make(map[Id]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	for _, chunk := range chunkRuns(ids, sqliteParamChunk) {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(chunk)), ",")
		args := make([]any, len(chunk))
		for i, id := range chunk {
			args[i] = id
		}
		rows, err := db.conn.QueryContext(ctx, `SELECT id, vault FROM constantSets WHERE id IN (`+placeholders+`)`, args...)
		if err != nil {
			return nil, fmt.Errorf("ccdb: load vaults: %w", err)
		}
		for rows.Next() {
			var id Id
			var vault string
			if err := rows.Scan(&id, &vault); err != nil {
				rows.Close()
				return nil, fmt.Errorf("ccdb: scan vault: %w", err)
			}
			out[id] = vault
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	return out, nil
}
