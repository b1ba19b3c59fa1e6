// Command nitrassic is the CLI front end for the Nitrassic engine: run,
// compile, lex, fmt, and version subcommands built with spf13/cobra.
package main

import (
	"os"

	"github.com/nitrassic/nitrassic/cmd/nitrassic/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
