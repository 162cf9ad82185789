package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"expertfinder/internal/config"
	"expertfinder/internal/errors"
)

var (
	configFormat string
	configForce  bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage expertfinder configuration",
	Long:  "View and manage configuration stored in .expertfinder/config.json",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Display the configuration after defaults and EXPERTFINDER_* environment
overrides are applied.

Examples:
  expertfinder config show
  expertfinder config show --format yaml
  EXPERTFINDER_DISPLAY_TOPK=1 expertfinder config show`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

func init() {
	configShowCmd.Flags().StringVar(&configFormat, "format", "json", "Output format (json, yaml)")
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing configuration")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	repoRoot, err := resolveRepoRoot()
	if err != nil {
		return err
	}

	// Show even an invalid configuration, so it can be fixed.
	cfg, err := config.LoadConfig(repoRoot)
	if err != nil {
		return errors.New(errors.ConfigInvalid, "failed to load configuration", err)
	}

	output, err := FormatResponse(cfg, OutputFormat(configFormat))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), output)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	repoRoot, err := resolveRepoRoot()
	if err != nil {
		return err
	}

	path := filepath.Join(repoRoot, config.ConfigDir, "config.json")
	if _, err := os.Stat(path); err == nil && !configForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := config.DefaultConfig().Save(repoRoot); err != nil {
		return fmt.Errorf("failed to write configuration: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
