package main

import (
	"os"

	"github.com/tilsley/repotext/apps/cli/internal/command"
)

func main() {
	if err := command.New(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}
