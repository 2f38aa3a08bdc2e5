package main

import (
	"os"

	"github.com/rimgik/clipper/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
