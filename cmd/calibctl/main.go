// calibctl is a generic inspector CLI for CCDB and RCDB SQLite files: a
// psql-like browser over the two schemas, with no physics semantics of
// its own.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
)

const version = "0.1.0"

func main() {
	traceID := uuid.NewString()[:8]

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "ccdb":
		if err := runCCDB(traceID, os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "[%s] calibctl: %v\n", traceID, err)
			os.Exit(1)
		}
	case "rcdb":
		if err := runRCDB(traceID, os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "[%s] calibctl: %v\n", traceID, err)
			os.Exit(1)
		}
	case "-version", "--version", "version":
		fmt.Printf("calibctl v%s\n", version)
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `calibctl v%s - CCDB/RCDB inspector

Usage: calibctl <ccdb|rcdb> -db <path> <action> [args...]

ccdb actions:
  dirs <path>                    list child directories/tables
  fetch <path> [-run N] [-variation V] [-time T]
  request <request-string>
  shell                          interactive REPL

rcdb actions:
  fetch <names...> [-runs a-b] [-filter expr]
  shell                          interactive REPL

`, version)
	flag.PrintDefaults()
}
