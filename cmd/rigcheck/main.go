// Package main provides the entry point for the rigcheck CLI.
package main

import (
	"os"

	"github.com/Aman-CERP/rigcheck/cmd/rigcheck/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
