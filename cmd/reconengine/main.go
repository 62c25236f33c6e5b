package main

import (
	"os"

	"report-reconciliation-engine/cmd/reconengine/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
