// Package main is the entry point for the plens CLI client.
package main

import (
	"github.com/donaldgifford/pricelens/cmd/plens/cmd"
)

func main() {
	cmd.Execute()
}
