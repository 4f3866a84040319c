// Package main is the entry point for the wraith desktop shell.
package main

import (
	"os"

	"github.com/wraith-app/wraith/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
