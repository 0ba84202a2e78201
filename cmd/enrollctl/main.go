// Package main is the entry point for enrollctl.
package main

import (
	"os"

	"github.com/jrsteele09/go-enrollment-client/cmd/enrollctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
