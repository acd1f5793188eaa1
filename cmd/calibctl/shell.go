package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"github.com/anthropics/calibdb/ccdb"
	"github.com/anthropics/calibdb/rcdb"
)

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".calibctl_history"
	}
	return filepath.Join(home, ".calibctl_history")
}

func newREPL(prompt string) (*readline.Instance, error) {
	return readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     historyPath(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
}

// runCCDBShell opens an interactive REPL against one already-open CCDB
// handle: "dirs <path>", "fetch <path> [run] [variation] [time]", or
// "request <string>", one open handle for the whole session.
func runCCDBShell(traceID string, db *ccdb.DB) error {
	rl, err := newREPL("\033[36mccdb>\033[0m ")
	if err != nil {
		return fmt.Errorf("shell: %w", err)
	}
	defer rl.Close()

	fmt.Printf("[%s] calibctl ccdb shell — %s\n", traceID, db.Path())
	fmt.Println("commands: dirs [path] | fetch <path> [run] [variation] [time] | request <string> | exit")

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			if err == io.EOF {
				return nil
			}
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd, rest := fields[0], fields[1:]

		var handleErr error
		switch cmd {
		case "exit", "quit":
			return nil
		case "dirs":
			handleErr = ccdbDirs(db, rest)
		case "fetch":
			handleErr = ccdbShellFetch(db, rest)
		case "request":
			if len(rest) == 0 {
				handleErr = fmt.Errorf("request: a request string is required")
			} else {
				handleErr = ccdbRequest(db, []string{strings.Join(rest, " ")})
			}
		default:
			handleErr = fmt.Errorf("unknown command %q", cmd)
		}
		if handleErr != nil {
			fmt.Printf("\033[31merror: %v\033[0m\n", handleErr)
		}
	}
}

func ccdbShellFetch(db *ccdb.DB, rest []string) error {
	if len(rest) == 0 {
		return fmt.Errorf("fetch: a table path is required")
	}
	path := rest[0]
	qc := ccdb.NewContext()
	if len(rest) > 1 {
		var run int64
		if _, err := fmt.Sscanf(rest[1], "%d", &run); err == nil {
			qc.WithRun(run)
		}
	}
	if len(rest) > 2 {
		qc.WithVariation(rest[2])
	}
	if len(rest) > 3 {
		req, err := ccdb.ParseRequest(path + ":" + rest[1] + ":" + rest[2] + ":" + rest[3])
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

// runRCDBShell opens an interactive REPL against one already-open RCDB
// handle: "fetch <names...> [-runs a-b] [-filter expr]".
func runRCDBShell(traceID string, db *rcdb.DB) error {
	rl, err := newREPL("\033[36mrcdb>\033[0m ")
	if err != nil {
		return fmt.Errorf("shell: %w", err)
	}
	defer rl.Close()

	fmt.Printf("[%s] calibctl rcdb shell — %s\n", traceID, db.Path())
	fmt.Println("commands: fetch <names...> [-runs a-b] [-filter expr] | exit")

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			if err == io.EOF {
				return nil
			}
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd, rest := fields[0], fields[1:]

		var handleErr error
		switch cmd {
		case "exit", "quit":
			return nil
		case "fetch":
			handleErr = rcdbFetch(db, rest)
		default:
			handleErr = fmt.Errorf("unknown command %q", cmd)
		}
		if handleErr != nil {
			fmt.Printf("\033[31merror: %v\033[0m\n", handleErr)
		}
	}
}
