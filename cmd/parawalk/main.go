package main

import (
	"os"

	"github.com/Iron-Ham/parawalk/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		cmd.Report(os.Stderr, err)
		os.Exit(1)
	}
}
