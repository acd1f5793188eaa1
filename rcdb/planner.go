package rcdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/anthropics/calibdb/calibcore"
)

// Fetch resolves the named conditions for every run qc's selection and
// filter admit, in one query: one LEFT JOIN against the conditions table
// per referenced condition name (both the requested names and any name
// only mentioned in qc's filter), so a single round trip answers
// multi-condition queries instead of one query per name. A run present in
// the selection but missing a particular condition simply has that name
// absent from its inner map — this is not an error.
func (db *DB) Fetch(ctx context.Context, names []string, qc *Context) (map[RunNumber]map[string]Value, error) {
	traceID := calibcore.NewTraceID()
	calibcore.Logger.Debug("rcdb fetch", "trace_id", traceID, "names", names)

	requested := dedupStrings(names)
	if len(requested) == 0 {
		calibcore.Logger.Error("rcdb fetch failed", "trace_id", traceID, "err", ErrEmptyConditionList)
		return nil, ErrEmptyConditionList
	}

	if qc.selection.kind == selectionRuns && len(qc.selection.runs) == 0 {
		calibcore.Logger.Debug("rcdb fetch complete", "trace_id", traceID, "runs", 0)
		return map[RunNumber]map[string]Value{}, nil
	}

	var filterNames []string
	if qc.hasFilter {
		qc.filter.referencedConditions(&filterNames)
	}
	union := dedupStrings(append(append([]string{}, requested...), filterNames...))

	metas := make(map[string]ConditionTypeMeta, len(union))
	aliasOf := make(map[string]string, len(union))
	for i, name := range union {
		meta, ok := db.ConditionType(name)
		if !ok {
			err := fmt.Errorf("%w: %s", ErrConditionTypeNotFound, name)
			calibcore.Logger.Error("rcdb fetch failed", "trace_id", traceID, "err", err)
			return nil, err
		}
		metas[name] = meta
		aliasOf[name] = fmt.Sprintf("cond_%d", i)
	}

	var joins strings.Builder
	var joinArgs []any
	for _, name := range union {
		alias := aliasOf[name]
		meta := metas[name]
		fmt.Fprintf(&joins, " LEFT JOIN conditions %s ON %s.run_number = runs.number AND %s.condition_type_id = ?",
			alias, alias, alias)
		joinArgs = append(joinArgs, meta.ID)
	}

	whereClause, whereArgs := qc.selection.whereClause()
	args := append(append([]any{}, joinArgs...), whereArgs...)

	if qc.hasFilter {
		lookup := func(name string) (string, ValueType, bool) {
			meta, ok := metas[name]
			if !ok {
				return "", 0, false
			}
			return aliasOf[name], meta.ValueType, true
		}
		var filterArgs []any
		filterSQL, err := qc.filter.toSQL(lookup, &filterArgs)
		if err != nil {
			calibcore.Logger.Error("rcdb fetch failed", "trace_id", traceID, "err", err)
			return nil, err
		}
		if whereClause != "" {
			whereClause += " AND " + filterSQL
		} else {
			whereClause = filterSQL
		}
		args = append(args, filterArgs...)
	}

	var selectCols strings.Builder
	selectCols.WriteString("runs.number")
	for _, name := range requested {
		alias := aliasOf[name]
		fmt.Fprintf(&selectCols, ", %s.text_value, %s.int_value, %s.float_value, %s.bool_value, %s.time_value",
			alias, alias, alias, alias, alias)
	}

	query := fmt.Sprintf(
		"SELECT %s FROM (SELECT DISTINCT run_number AS number FROM conditions) AS runs%s",
		selectCols.String(), joins.String())
	if whereClause != "" {
		query += " WHERE " + whereClause
	}
	query += " ORDER BY runs.number"

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		calibcore.Logger.Error("rcdb fetch failed", "trace_id", traceID, "err", err)
		return nil, fmt.Errorf("rcdb: fetch: %w", err)
	}
	defer rows.Close()

	result := make(map[RunNumber]map[string]Value)
	for rows.Next() {
		var run RunNumber
		scanTargets := make([]any, 0, 1+5*len(requested))
		scanTargets = append(scanTargets, &run)
		cells := make([]struct {
			text  sql.NullString
			i     sql.NullInt64
			f     sql.NullFloat64
			b     sql.NullInt64
			tstr  sql.NullString
		}, len(requested))
		for i := range requested {
			scanTargets = append(scanTargets, &cells[i].text, &cells[i].i, &cells[i].f, &cells[i].b, &cells[i].tstr)
		}
		if err := rows.Scan(scanTargets...); err != nil {
			calibcore.Logger.Error("rcdb fetch failed", "trace_id", traceID, "err", err)
			return nil, fmt.Errorf("rcdb: scan fetch row: %w", err)
		}

		perRun := make(map[string]Value, len(requested))
		for i, name := range requested {
			meta := metas[name]
			v, ok, err := decodeCell(meta, run, cells[i].text, cells[i].i, cells[i].f, cells[i].b, cells[i].tstr)
			if err != nil {
				calibcore.Logger.Error("rcdb fetch failed", "trace_id", traceID, "err", err)
				return nil, err
			}
			if ok {
				perRun[name] = v
			}
		}
		result[run] = perRun
	}
	if err := rows.Err(); err != nil {
		calibcore.Logger.Error("rcdb fetch failed", "trace_id", traceID, "err", err)
		return nil, fmt.Errorf("rcdb: fetch: %w", err)
	}
	calibcore.Logger.Debug("rcdb fetch complete", "trace_id", traceID, "runs", len(result))
	return result, nil
}

// FetchRuns returns the runs qc's selection and filter admit, without
// decoding any condition values. It is the planner stripped of its
// SELECT-list: the same FROM/JOIN/WHERE pipeline, answering "which runs"
// rather than "which values".
func (db *DB) FetchRuns(ctx context.Context, qc *Context) ([]RunNumber, error) {
	traceID := calibcore.NewTraceID()
	calibcore.Logger.Debug("rcdb fetch runs", "trace_id", traceID)

	if qc.selection.kind == selectionRuns && len(qc.selection.runs) == 0 {
		calibcore.Logger.Debug("rcdb fetch runs complete", "trace_id", traceID, "runs", 0)
		return nil, nil
	}

	var filterNames []string
	if qc.hasFilter {
		qc.filter.referencedConditions(&filterNames)
	}
	union := dedupStrings(filterNames)

	metas := make(map[string]ConditionTypeMeta, len(union))
	aliasOf := make(map[string]string, len(union))
	for i, name := range union {
		meta, ok := db.ConditionType(name)
		if !ok {
			err := fmt.Errorf("%w: %s", ErrConditionTypeNotFound, name)
			calibcore.Logger.Error("rcdb fetch runs failed", "trace_id", traceID, "err", err)
			return nil, err
		}
		metas[name] = meta
		aliasOf[name] = fmt.Sprintf("cond_%d", i)
	}

	var joins strings.Builder
	var joinArgs []any
	for _, name := range union {
		alias := aliasOf[name]
		meta := metas[name]
		fmt.Fprintf(&joins, " LEFT JOIN conditions %s ON %s.run_number = runs.number AND %s.condition_type_id = ?",
			alias, alias, alias)
		joinArgs = append(joinArgs, meta.ID)
	}

	whereClause, whereArgs := qc.selection.whereClause()
	args := append(append([]any{}, joinArgs...), whereArgs...)

	if qc.hasFilter {
		lookup := func(name string) (string, ValueType, bool) {
			meta, ok := metas[name]
			if !ok {
				return "", 0, false
			}
			return aliasOf[name], meta.ValueType, true
		}
		var filterArgs []any
		filterSQL, err := qc.filter.toSQL(lookup, &filterArgs)
		if err != nil {
			calibcore.Logger.Error("rcdb fetch runs failed", "trace_id", traceID, "err", err)
			return nil, err
		}
		if whereClause != "" {
			whereClause += " AND " + filterSQL
		} else {
			whereClause = filterSQL
		}
		args = append(args, filterArgs...)
	}

	query := fmt.Sprintf("SELECT runs.number FROM (SELECT DISTINCT run_number AS number FROM conditions) AS runs%s", joins.String())
	if whereClause != "" {
		query += " WHERE " + whereClause
	}
	query += " ORDER BY runs.number"

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		calibcore.Logger.Error("rcdb fetch runs failed", "trace_id", traceID, "err", err)
		return nil, fmt.Errorf("rcdb: fetch runs: %w", err)
	}
	defer rows.Close()

	var out []RunNumber
	for rows.Next() {
		var run RunNumber
		if err := rows.Scan(&run); err != nil {
			calibcore.Logger.Error("rcdb fetch runs failed", "trace_id", traceID, "err", err)
			return nil, fmt.Errorf("rcdb: scan run: %w", err)
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		calibcore.Logger.Error("rcdb fetch runs failed", "trace_id", traceID, "err", err)
		return nil, err
	}
	calibcore.Logger.Debug("rcdb fetch runs complete", "trace_id", traceID, "runs", len(out))
	return out, nil
}

func (s runSelection) whereClause() (string, []any) {
	switch s.kind {
	case selectionRange:
		return "runs.number BETWEEN ? AND ?", []any{s.start, s.end}
	case selectionRuns:
		if len(s.runs) == 0 {
			return "1 = 0", nil
		}
		placeholders := make([]string, len(s.runs))
		args := make([]any, len(s.runs))
		for i, r := range s.runs {
			placeholders[i] = "?"
			args[i] = r
		}
		return "runs.number IN (" + strings.Join(placeholders, ", ") + ")", args
	default:
		return "", nil
	}
}

func decodeCell(meta ConditionTypeMeta, run RunNumber, text sql.NullString, i sql.NullInt64, f sql.NullFloat64, b sql.NullInt64, t sql.NullString) (Value, bool, error) {
	switch meta.ValueType {
	case ValueString, ValueJSON, ValueBlob:
		if !text.Valid {
			return Value{}, false, nil
		}
		s := text.String
		return textValue(meta.ValueType, &s), true, nil
	case ValueInt:
		if !i.Valid {
			return Value{}, false, nil
		}
		return intValue(i.Int64), true, nil
	case ValueFloat:
		if !f.Valid {
			return Value{}, false, nil
		}
		return floatValue(f.Float64), true, nil
	case ValueBool:
		if !b.Valid {
			return Value{}, false, nil
		}
		return boolValue(b.Int64 != 0), true, nil
	case ValueTime:
		if !t.Valid {
			return Value{}, false, nil
		}
		parsed, err := calibcore.ParseTimestamp(t.String)
		if err != nil {
			return Value{}, false, fmt.Errorf("rcdb: parse time_value for %s at run %d: %w", meta.Name, run, err)
		}
		return timeValue(parsed), true, nil
	default:
		return Value{}, false, nil
	}
}

func dedupStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
