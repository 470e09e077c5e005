package main

import (
	"os"

	"shopwarden/cmd/wardenctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
