package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"expertfinder/internal/config"
	"expertfinder/internal/errors"
	"expertfinder/internal/paths"
	"expertfinder/internal/slogutil"
	"expertfinder/internal/version"
)

var (
	// repoFlag is the CLI --repo flag value
	repoFlag  string
	verbosity int
	quietFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "expertfinder",
	Short: "expertfinder - who knows this file best",
	Long: `expertfinder ranks the people most responsible for a file using its git
history, either once (who) or continuously for whatever file is in focus (watch).`,
	Version:       version.Current().Short(),
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.SetVersionTemplate("expertfinder version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&repoFlag, "repo", "",
		"Repository root (default: nearest directory containing .git)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress all logs")
}

// resolveRepoRoot determines the repository root.
// Precedence: --repo flag > nearest .git ancestor of the working directory > working directory
func resolveRepoRoot() (string, error) {
	if repoFlag != "" {
		return filepath.Abs(repoFlag)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	if root, err := paths.FindRepoRoot(cwd); err == nil {
		return root, nil
	}
	return cwd, nil
}

// loadSettings resolves the repository, loads and validates its configuration
// and prepares a logger factory honouring -v/-q.
func loadSettings() (*config.Config, *slogutil.LoggerFactory, error) {
	repoRoot, err := resolveRepoRoot()
	if err != nil {
		return nil, nil, err
	}

	cfg, err := config.LoadConfig(repoRoot)
	if err != nil {
		return nil, nil, errors.New(errors.ConfigInvalid, "failed to load configuration", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, errors.New(errors.ConfigInvalid, "invalid configuration", err)
	}

	factory := slogutil.NewLoggerFactory(cfg.RepoRoot, cfg)
	if verbosity > 0 || quietFlag {
		factory.WithLevel(slogutil.LevelFromVerbosity(verbosity, quietFlag))
	}
	return cfg, factory, nil
}
