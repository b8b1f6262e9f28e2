// Command wikicull analyzes contributor listings and culls minor diffs.
package main

import (
	"fmt"
	"os"

	"github.com/wikicull/wikicull/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
