package main

import (
	"os"

	"github.com/polyopt/gdphull/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
