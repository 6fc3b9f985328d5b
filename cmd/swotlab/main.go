package main

import (
	"os"

	"github.com/swotlab/swotlab/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
