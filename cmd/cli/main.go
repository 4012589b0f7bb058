// Package main is the entry point for the shiftplane CLI.
// The CLI is the operator terminal tool for interacting with the shiftplane API.
package main

import (
	"os"

	"shiftplane/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
