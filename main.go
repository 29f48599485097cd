package main

import (
	"os"

	"github.com/benchtrack/benchtrack/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
