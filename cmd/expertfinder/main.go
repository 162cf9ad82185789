package main

import (
	"fmt"
	"io"
	"os"

	"expertfinder/internal/errors"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// printError reports a command failure with the suggested fixes of its code.
func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)

	fixes := errors.GetSuggestedFixes(errors.CodeOf(err))
	if len(fixes) == 0 {
		return
	}
	fmt.Fprintln(w, "Suggested fixes:")
	for _, fix := range fixes {
		fmt.Fprintf(w, "  - %s\n", fix.Description)
		if fix.Command != "" {
			fmt.Fprintf(w, "    $ %s\n", fix.Command)
		}
	}
}
