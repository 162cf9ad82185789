package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"expertfinder/internal/version"
)

var versionFormat string

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		output, err := FormatResponse(version.Current(), OutputFormat(versionFormat))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), output)
		return nil
	},
}

func init() {
	versionCmd.Flags().StringVar(&versionFormat, "format", "human", "Output format (human, json, yaml)")
	rootCmd.AddCommand(versionCmd)
}

// formatVersionHuman formats build metadata in human-readable format
func formatVersionHuman(b version.Build) string {
	var sb strings.Builder
	sb.WriteString("expertfinder " + b.Short() + "\n")
	if b.Commit != "" {
		sb.WriteString("  Commit:  " + b.Commit + "\n")
	}
	if b.Date != "" {
		sb.WriteString("  Built:   " + b.Date + "\n")
	}
	sb.WriteString("  Go:      " + b.GoVersion)
	return sb.String()
}
