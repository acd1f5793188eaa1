package rcdb

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

func buildFixture(t *testing.T, withSchemaVersion bool) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rcdb.sqlite")
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	schema := []string{
		`CREATE TABLE schema_versions (version INTEGER)`,
		`CREATE TABLE condition_types (
			id INTEGER PRIMARY KEY, name TEXT, value_type TEXT,
			created TEXT, description TEXT)`,
		`CREATE TABLE conditions (
			id INTEGER PRIMARY KEY, run_number INTEGER, condition_type_id INTEGER,
			text_value TEXT, int_value INTEGER, float_value REAL,
			bool_value INTEGER, time_value TEXT, created TEXT)`,
	}
	for _, stmt := range schema {
		if _, err := conn.Exec(stmt); err != nil {
			t.Fatalf("schema: %v", err)
		}
	}
	if withSchemaVersion {
		if _, err := conn.Exec(`INSERT INTO schema_versions VALUES (2)`); err != nil {
			t.Fatal(err)
		}
	}

	inserts := []string{
		`INSERT INTO condition_types VALUES (1, 'event_count', 'int', '2019-01-01 00:00:00', '')`,
		`INSERT INTO condition_types VALUES (2, 'run_type', 'string', '2019-01-01 00:00:00', '')`,
		`INSERT INTO condition_types VALUES (3, 'status', 'int', '2019-01-01 00:00:00', '')`,
		`INSERT INTO condition_types VALUES (4, 'run_start_time', 'time', '2019-01-01 00:00:00', '')`,

		`INSERT INTO conditions VALUES (1, 1, 1, NULL, 100, NULL, NULL, NULL, '2019-01-01 00:00:00')`,
		`INSERT INTO conditions VALUES (2, 1, 2, 'hd_all.tsg', NULL, NULL, NULL, NULL, '2019-01-01 00:00:00')`,
		`INSERT INTO conditions VALUES (3, 2, 1, NULL, 200, NULL, NULL, NULL, '2019-01-01 00:00:00')`,
		`INSERT INTO conditions VALUES (4, 2, 2, 'other', NULL, NULL, NULL, NULL, '2019-01-01 00:00:00')`,
		`INSERT INTO conditions VALUES (5, 3, 1, NULL, 300, NULL, NULL, NULL, '2019-01-01 00:00:00')`,
		`INSERT INTO conditions VALUES (6, 3, 2, 'hd_all.tsg', NULL, NULL, NULL, NULL, '2019-01-01 00:00:00')`,
		`INSERT INTO conditions VALUES (7, 1, 4, NULL, NULL, NULL, NULL, '2015-12-08 15:47:20', '2019-01-01 00:00:00')`,
	}
	for _, stmt := range inserts {
		if _, err := conn.Exec(stmt); err != nil {
			t.Fatalf("insert: %v: %s", err, stmt)
		}
	}
	return path
}

func TestOpenRejectsMissingSchemaVersion(t *testing.T) {
	if _, err := Open(buildFixture(t, false)); err == nil {
		t.Fatal("expected ErrMissingSchemaVersion")
	}
}

func TestFetchFilteredByStringCondition(t *testing.T) {
	db, err := Open(buildFixture(t, true))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	qc := NewContext().WithRange(1, 10).Filter(StringCond("run_type").Eq("hd_all.tsg"))
	result, err := db.Fetch(context.Background(), []string{"event_count"}, qc)
	if err != nil {
		t.Fatal(err)
	}
	if len(result) != 2 {
		t.Fatalf("got %d runs, want 2: %v", len(result), result)
	}
	for run, vals := range result {
		if run != 1 && run != 3 {
			t.Fatalf("unexpected run %d in result", run)
		}
		v, ok := vals["event_count"]
		if !ok {
			t.Fatalf("run %d missing event_count", run)
		}
		if _, ok := v.AsInt(); !ok {
			t.Errorf("run %d event_count is not int-typed", run)
		}
	}
}

func TestFetchEmptyNameListErrors(t *testing.T) {
	db, err := Open(buildFixture(t, true))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	_, err = db.Fetch(context.Background(), nil, NewContext())
	if err == nil {
		t.Fatal("expected ErrEmptyConditionList")
	}
}

func TestFetchTimeCondition(t *testing.T) {
	db, err := Open(buildFixture(t, true))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	result, err := db.Fetch(context.Background(), []string{"run_start_time"}, NewContext().WithRuns([]RunNumber{1}))
	if err != nil {
		t.Fatal(err)
	}
	v, ok := result[1]["run_start_time"]
	if !ok {
		t.Fatal("expected run_start_time present for run 1")
	}
	tm, ok := v.AsTime()
	if !ok {
		t.Fatal("expected a time-typed value")
	}
	if tm.Year() != 2015 {
		t.Errorf("year = %d, want 2015", tm.Year())
	}
}

func TestFetchRunsAppliesFilter(t *testing.T) {
	db, err := Open(buildFixture(t, true))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	qc := NewContext().Filter(StringCond("run_type").Eq("hd_all.tsg"))
	runs, err := db.FetchRuns(context.Background(), qc)
	if err != nil {
		t.Fatal(err)
	}
	want := []RunNumber{1, 3}
	if len(runs) != len(want) {
		t.Fatalf("got %v, want %v", runs, want)
	}
	for i := range want {
		if runs[i] != want[i] {
			t.Fatalf("got %v, want %v", runs, want)
		}
	}
}

func TestFetchEmptyRunsShortCircuits(t *testing.T) {
	db, err := Open(buildFixture(t, true))
	if err != nil {
		t.Fatal(err)
	}
	db.conn.Close()

	qc := NewContext().WithRuns(nil)
	result, err := db.Fetch(context.Background(), []string{"event_count"}, qc)
	if err != nil {
		t.Fatalf("expected empty-runs Fetch to succeed without touching the driver, got %v", err)
	}
	if len(result) != 0 {
		t.Fatalf("got %v, want empty result", result)
	}

	runs, err := db.FetchRuns(context.Background(), qc)
	if err != nil {
		t.Fatalf("expected empty-runs FetchRuns to succeed without touching the driver, got %v", err)
	}
	if len(runs) != 0 {
		t.Fatalf("got %v, want no runs", runs)
	}
}

func TestFetchUnknownConditionErrors(t *testing.T) {
	db, err := Open(buildFixture(t, true))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	_, err = db.Fetch(context.Background(), []string{"does_not_exist"}, NewContext())
	if err == nil {
		t.Fatal("expected ErrConditionTypeNotFound")
	}
}
