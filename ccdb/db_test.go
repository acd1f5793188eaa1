package ccdb

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

func buildFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.sqlite")
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	schema := []string{
		`CREATE TABLE directories (
			id INTEGER PRIMARY KEY, created TEXT, modified TEXT, name TEXT,
			parentId INTEGER, authorId INTEGER, comment TEXT,
			isDeprecated INTEGER, deprecatedByUserId INTEGER,
			isLocked INTEGER, lockedByUserId INTEGER)`,
		`CREATE TABLE typeTables (
			id INTEGER PRIMARY KEY, created TEXT, modified TEXT,
			directoryId INTEGER, name TEXT,
			nRows INTEGER, nColumns INTEGER, nAssignments INTEGER,
			authorId INTEGER, comment TEXT,
			isDeprecated INTEGER, deprecatedByUserId INTEGER,
			isLocked INTEGER, lockedByUserId INTEGER, lockTime TEXT)`,
		`CREATE TABLE columns (
			id INTEGER PRIMARY KEY, created TEXT, modified TEXT, name TEXT,
			typeId INTEGER, columnType TEXT, "order" INTEGER, comment TEXT)`,
		`CREATE TABLE variations (
			id INTEGER PRIMARY KEY, created TEXT, modified TEXT, name TEXT,
			description TEXT, authorId INTEGER, comment TEXT, parentId INTEGER,
			isLocked INTEGER, lockTime TEXT, lockedByUserId INTEGER,
			goBackBehavior INTEGER, goBackTime TEXT,
			isDeprecated INTEGER, deprecatedByUserId INTEGER)`,
		`CREATE TABLE constantSets (
			id INTEGER PRIMARY KEY, created TEXT, modified TEXT, vault TEXT,
			constantTypeId INTEGER)`,
		`CREATE TABLE runRanges (id INTEGER PRIMARY KEY, runMin INTEGER, runMax INTEGER)`,
		`CREATE TABLE assignments (
			id INTEGER PRIMARY KEY, created TEXT, constantSetId INTEGER,
			variationId INTEGER, runRangeId INTEGER)`,
	}
	for _, stmt := range schema {
		if _, err := conn.Exec(stmt); err != nil {
			t.Fatalf("schema: %v: %s", err, stmt)
		}
	}

	inserts := []string{
		`INSERT INTO directories VALUES (1, '2019-01-01 00:00:00', '2019-01-01 00:00:00', 'test', 0, 1, '', 0, 0, 0, 0)`,
		`INSERT INTO typeTables VALUES (1, '2019-01-01 00:00:00', '2019-01-01 00:00:00', 1, 'table1', 1, 2, 3, 1, '', 0, 0, 0, 0, '')`,
		`INSERT INTO columns VALUES (1, '2019-01-01 00:00:00', '2019-01-01 00:00:00', 'a', 1, 'int', 0, '')`,
		`INSERT INTO columns VALUES (2, '2019-01-01 00:00:00', '2019-01-01 00:00:00', 'b', 1, 'double', 1, '')`,
		`INSERT INTO variations VALUES (1, '2019-01-01 00:00:00', '2019-01-01 00:00:00', 'default', '', 1, '', 0, 0, '', 0, 0, '', 0, 0)`,
		`INSERT INTO variations VALUES (2, '2019-01-01 00:00:00', '2019-01-01 00:00:00', 'child', '', 1, '', 1, 0, '', 0, 0, '', 0, 0)`,
		`INSERT INTO runRanges VALUES (1, 1, 10)`,
		`INSERT INTO constantSets VALUES (1, '2020-01-01 00:00:00', '2020-01-01 00:00:00', '1|1.5', 1)`,
		`INSERT INTO constantSets VALUES (2, '2020-06-01 00:00:00', '2020-06-01 00:00:00', '9|9.5', 1)`,
		`INSERT INTO constantSets VALUES (3, '2020-02-01 00:00:00', '2020-02-01 00:00:00', '3|3.5', 1)`,
		`INSERT INTO assignments VALUES (1, '2020-01-01 00:00:00', 1, 1, 1)`,
		`INSERT INTO assignments VALUES (2, '2020-06-01 00:00:00', 2, 2, 1)`,
		`INSERT INTO assignments VALUES (3, '2020-02-01 00:00:00', 3, 1, 1)`,
	}
	for _, stmt := range inserts {
		if _, err := conn.Exec(stmt); err != nil {
			t.Fatalf("insert: %v: %s", err, stmt)
		}
	}
	return path
}

func TestOpenAndResolvePath(t *testing.T) {
	db, err := Open(buildFixture(t))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	dir, err := db.Dir("/test")
	if err != nil {
		t.Fatal(err)
	}
	if dir.FullPath() != "/test" {
		t.Errorf("FullPath() = %q, want /test", dir.FullPath())
	}

	table, err := db.Table("/test/table1")
	if err != nil {
		t.Fatal(err)
	}
	if table.Meta().NRows != 1 {
		t.Errorf("NRows = %d, want 1", table.Meta().NRows)
	}
}

func TestFetchPicksLatestCreatedOnTie(t *testing.T) {
	db, err := Open(buildFixture(t))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	ctx := NewContext().WithRun(5).WithVariation("default").
		WithTimestamp(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC))
	result, err := db.Fetch(context.Background(), "/test/table1", ctx)
	if err != nil {
		t.Fatal(err)
	}
	data, ok := result[5]
	if !ok {
		t.Fatal("expected run 5 to resolve")
	}
	v, _ := data.Value(0, 0)
	n, _ := v.AsInt()
	if n != 3 {
		t.Errorf("got %d, want 3 (latest-created assignment should win the tie)", n)
	}
}

func TestFetchVariationInheritanceOverride(t *testing.T) {
	db, err := Open(buildFixture(t))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	ctx := NewContext().WithRun(5).WithVariation("child").
		WithTimestamp(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC))
	result, err := db.Fetch(context.Background(), "/test/table1", ctx)
	if err != nil {
		t.Fatal(err)
	}
	data, ok := result[5]
	if !ok {
		t.Fatal("expected run 5 to resolve via child variation")
	}
	v, _ := data.Value(0, 0)
	n, _ := v.AsInt()
	if n != 9 {
		t.Errorf("got %d, want 9 (child's own assignment should win over parent's)", n)
	}
}

func TestFetchAsOfExcludesFutureAssignments(t *testing.T) {
	db, err := Open(buildFixture(t))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	ctx := NewContext().WithRun(5).WithVariation("default").
		WithTimestamp(time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC))
	result, err := db.Fetch(context.Background(), "/test/table1", ctx)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := result[5]; ok {
		t.Error("expected no assignment to resolve before any were created")
	}
}

func TestFetchAbsentRunIsOmittedNotError(t *testing.T) {
	db, err := Open(buildFixture(t))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	ctx := NewContext().WithRun(999).WithVariation("default")
	result, err := db.Fetch(context.Background(), "/test/table1", ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(result) != 0 {
		t.Errorf("expected no resolved runs for an out-of-range run, got %v", result)
	}
}

func TestRequestEndToEnd(t *testing.T) {
	db, err := Open(buildFixture(t))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	result, err := db.Request(context.Background(), "/test/table1:5:child:2021")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := result[5]; !ok {
		t.Fatal("expected run 5 in result")
	}
}
