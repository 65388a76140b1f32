// Package main is the entry point for the pricelens server.
package main

import (
	"os"

	"github.com/donaldgifford/pricelens/cmd/pricelens/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
