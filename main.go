package main

import (
	"os"

	"github.com/fieldwise/aquaplan/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
