package main

import (
	"context"
	"flag"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/anthropics/calibdb/rcdb"
)

func runRCDB(traceID string, args []string) error {
	fs := flag.NewFlagSet("rcdb", flag.ExitOnError)
	dbPath := fs.String("db", "", "path to the RCDB SQLite file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if *dbPath == "" {
		return fmt.Errorf("rcdb: -db is required")
	}
	if len(rest) == 0 {
		return fmt.Errorf("rcdb: an action is required (fetch|shell)")
	}

	db, err := rcdb.Open(*dbPath)
	if err != nil {
		return fmt.Errorf("rcdb: open %s: %w", *dbPath, err)
	}
	defer db.Close()

	action, actionArgs := rest[0], rest[1:]
	switch action {
	case "fetch":
		return rcdbFetch(db, actionArgs)
	case "shell":
		return runRCDBShell(traceID, db)
	default:
		return fmt.Errorf("rcdb: unknown action %q", action)
	}
}

func rcdbFetch(db *rcdb.DB, args []string) error {
	fs := flag.NewFlagSet("rcdb fetch", flag.ExitOnError)
	runsFlag := fs.String("runs", "", "run range, e.g. 10-20")
	filterFlag := fs.String("filter", "", "filter expression, e.g. \"run_type = hd_all.tsg and event_count > 500000\"")
	var names []string
	for len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		names = append(names, args[0])
		args = args[1:]
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	names = append(names, fs.Args()...)
	if len(names) == 0 {
		return fmt.Errorf("rcdb fetch: at least one condition name is required")
	}

	qc := rcdb.NewContext()
	if *runsFlag != "" {
		start, end, err := parseRunRange(*runsFlag)
		if err != nil {
			return err
		}
		qc = qc.WithRange(start, end)
	}
	if *filterFlag != "" {
		expr, err := parseFilter(db, *filterFlag)
		if err != nil {
			return err
		}
		qc = qc.Filter(expr)
	}

	result, err := db.Fetch(context.Background(), names, qc)
	if err != nil {
		return err
	}
	printRCDBResult(names, result)
	return nil
}

func parseRunRange(s string) (rcdb.RunNumber, rcdb.RunNumber, error) {
	a, b, ok := strings.Cut(s, "-")
	if !ok {
		return 0, 0, fmt.Errorf("calibctl: invalid run range %q (want a-b)", s)
	}
	start, err := strconv.ParseInt(a, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("calibctl: invalid run range start %q: %w", a, err)
	}
	end, err := strconv.ParseInt(b, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("calibctl: invalid run range end %q: %w", b, err)
	}
	return start, end, nil
}

func printRCDBResult(names []string, result map[rcdb.RunNumber]map[string]rcdb.Value) {
	if len(result) == 0 {
		fmt.Println("(no runs matched)")
		return
	}
	runs := make([]rcdb.RunNumber, 0, len(result))
	for r := range result {
		runs = append(runs, r)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i] < runs[j] })

	fmt.Println("run\t" + strings.Join(names, "\t"))
	for _, run := range runs {
		cells := make([]string, len(names))
		for i, name := range names {
			v, ok := result[run][name]
			if !ok {
				cells[i] = "-"
				continue
			}
			cells[i] = formatRCDBValue(v)
		}
		fmt.Printf("%d\t%s\n", run, strings.Join(cells, "\t"))
	}
}

func formatRCDBValue(v rcdb.Value) string {
	switch v.Type() {
	case rcdb.ValueInt:
		n, _ := v.AsInt()
		return fmt.Sprint(n)
	case rcdb.ValueFloat:
		n, _ := v.AsFloat()
		return fmt.Sprint(n)
	case rcdb.ValueBool:
		b, _ := v.AsBool()
		return fmt.Sprint(b)
	case rcdb.ValueTime:
		t, _ := v.AsTime()
		return t.Format("2006-01-02 15:04:05")
	default:
		s, _ := v.AsString()
		return s
	}
}
