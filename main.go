package main

import (
	"os"

	"github.com/memora-solutions/snippetkit/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
