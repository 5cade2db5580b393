// Package main is the entry point for the gitcritic CLI.
//
// All logic lives in the commands package.
package main

import (
	"os"

	"github.com/JNZader/gitcritic/cmd/gitcritic/commands"
)

func main() {
	// Diagnostics were already printed; only the exit code is left.
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
