package main

import (
	"os"

	"github.com/statex-dev/statex/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
