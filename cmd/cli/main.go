// Command stopping computes vehicle stopping distances from flags or a JSON
// request (file argument to -input, or "-" for stdin) and writes the result
// to stdout as json, jsonl or tsv.
package main

import (
	"context"
	"os"

	"github.com/cxd309/stopping-engine/internal/cli"
)

func main() {
	os.Exit(cli.Run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
