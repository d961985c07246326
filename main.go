package main

import (
	"os"

	"github.com/arc-coordination/matching-svc/internal/cli"
)

func main() {
	if !cli.Run(os.Args) {
		os.Exit(1)
	}
}
