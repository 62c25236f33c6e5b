package cmd

import (
	"fmt"
	"os"

	engerrors "report-reconciliation-engine/pkg/errors"
)

// exitOnError prints a categorized error and exits with its mapped code.
// Suggestions are shown to the operator when present.
func exitOnError(err error) {
	if err == nil {
		return
	}

	engineErr := engerrors.AsEngineError(err)
	fmt.Fprintf(os.Stderr, "Error [%s/%s]: %s\n",
		engineErr.Category, engineErr.Code, engineErr.Message)
	if engineErr.Suggestion != "" {
		fmt.Fprintf(os.Stderr, "Suggestion: %s\n", engineErr.Suggestion)
	}
	for key, value := range engineErr.Context {
		fmt.Fprintf(os.Stderr, "  %s: %v\n", key, value)
	}
	os.Exit(engineErr.ExitCode())
}
