package main

import (
	"fmt"
	"os"

	"github.com/verdant-labs/docvault/internal/adapters/driving/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "docvault: %v\n", err)
		os.Exit(1)
	}
}
