package main

import (
	"context"
	"flag"
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"

	"github.com/anthropics/calibdb/ccdb"
)

func runCCDB(traceID string, args []string) error {
	fs := flag.NewFlagSet("ccdb", flag.ExitOnError)
	dbPath := fs.String("db", "", "path to the CCDB SQLite file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if *dbPath == "" {
		return fmt.Errorf("ccdb: -db is required")
	}
	if len(rest) == 0 {
		return fmt.Errorf("ccdb: an action is required (dirs|fetch|request|shell)")
	}

	db, err := ccdb.Open(*dbPath)
	if err != nil {
		return fmt.Errorf("ccdb: open %s: %w", *dbPath, err)
	}
	defer db.Close()

	action, actionArgs := rest[0], rest[1:]
	switch action {
	case "dirs":
		return ccdbDirs(db, actionArgs)
	case "fetch":
		return ccdbFetch(db, actionArgs)
	case "request":
		return ccdbRequest(db, actionArgs)
	case "shell":
		return runCCDBShell(traceID, db)
	default:
		return fmt.Errorf("ccdb: unknown action %q", action)
	}
}

func ccdbDirs(db *ccdb.DB, args []string) error {
	path := "/"
	if len(args) > 0 {
		path = args[0]
	}
	dir, err := db.Dir(path)
	if err != nil {
		return err
	}

	dirs := dir.Dirs()
	tables := dir.Tables()
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Meta().Name < dirs[j].Meta().Name })
	sort.Slice(tables, func(i, j int) bool { return tables[i].Meta().Name < tables[j].Meta().Name })

	fmt.Printf("%s\n", dir.FullPath())
	for _, d := range dirs {
		fmt.Printf("  %s/\n", d.Meta().Name)
	}
	for _, t := range tables {
		fmt.Printf("  %s  (%s rows x %s columns)\n",
			t.Meta().Name, humanize.Comma(int64(t.Meta().NRows)), humanize.Comma(int64(t.Meta().NColumns)))
	}
	return nil
}

func ccdbFetch(db *ccdb.DB, args []string) error {
	fs := flag.NewFlagSet("ccdb fetch", flag.ExitOnError)
	run := fs.Int64("run", 0, "run number")
	variation := fs.String("variation", "default", "starting variation")
	timeStr := fs.String("time", "", "as-of timestamp (RFC3339 or CCDB format)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("ccdb fetch: a table path is required")
	}
	path := fs.Arg(0)
	if err := fs.Parse(fs.Args()[1:]); err != nil {
		return err
	}

	qc := ccdb.NewContext().WithRun(*run).WithVariation(*variation)
	if *timeStr != "" {
		req, err := ccdb.ParseRequest(path + ":" + fmt.Sprint(*run) + ":" + *variation + ":" + *timeStr)
		if err != nil {
			return err
		}
		qc = req.Context
	}

	result, err := db.Fetch(context.Background(), path, qc)
	if err != nil {
		return err
	}
	printFetchResult(result)
	return nil
}

func ccdbRequest(db *ccdb.DB, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("ccdb request: a request string is required")
	}
	result, err := db.Request(context.Background(), args[0])
	if err != nil {
		return err
	}
	printFetchResult(result)
	return nil
}

func printFetchResult(result map[ccdb.RunNumber]*ccdb.Data) {
	if len(result) == 0 {
		fmt.Println("(no assignment found for the requested runs)")
		return
	}
	runs := make([]ccdb.RunNumber, 0, len(result))
	for r := range result {
		runs = append(runs, r)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i] < runs[j] })

	for _, run := range runs {
		data := result[run]
		fmt.Printf("run %d: %s rows x %s columns\n",
			run, humanize.Comma(int64(data.NRows())), humanize.Comma(int64(data.NColumns())))
		fmt.Println("  " + joinStrings(data.ColumnNames(), "\t"))
		it := data.Rows()
		for row, ok := it.Next(); ok; row, ok = it.Next() {
			var cells []string
			for _, name := range data.ColumnNames() {
				v, _ := row.Get(name)
				cells = append(cells, formatCCDBValue(v))
			}
			fmt.Println("  " + joinStrings(cells, "\t"))
		}
	}
}

func formatCCDBValue(v ccdb.Value) string {
	switch v.Type() {
	case ccdb.ColumnInt:
		n, _ := v.AsInt()
		return fmt.Sprint(n)
	case ccdb.ColumnUInt:
		n, _ := v.AsUInt()
		return fmt.Sprint(n)
	case ccdb.ColumnLong:
		n, _ := v.AsLong()
		return fmt.Sprint(n)
	case ccdb.ColumnULong:
		n, _ := v.AsULong()
		return fmt.Sprint(n)
	case ccdb.ColumnDouble:
		n, _ := v.AsDouble()
		return fmt.Sprint(n)
	case ccdb.ColumnBool:
		b, _ := v.AsBool()
		return fmt.Sprint(b)
	default:
		s, _ := v.AsString()
		return s
	}
}

func joinStrings(ss []string, sep string) string {
	out := ""
	for i, s := range ss {
		if i > 0 {
			out += sep
		}
		out += s
	}
	return out
}
