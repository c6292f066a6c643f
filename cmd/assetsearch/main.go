// Package main provides the entry point for the assetsearch CLI.
package main

import (
	"fmt"
	"os"

	"github.com/stratec/assetsearch/cmd/assetsearch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
