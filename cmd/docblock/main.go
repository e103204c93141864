package main

import (
	"fmt"
	"os"

	"github.com/toyz/docblock/internal/cli"
)

func main() {
	if err := cli.NewApp().Run(os.Args); err != nil {
		if msg := err.Error(); msg != "" {
			fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
		}
		os.Exit(1)
	}
}
