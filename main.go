package main

import (
	"os"

	"github.com/ttutta/dcma/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
