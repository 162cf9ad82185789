package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"expertfinder/internal/attribution"
	"expertfinder/internal/config"
	"expertfinder/internal/errors"
	"expertfinder/internal/ownership"
	"expertfinder/internal/paths"
)

var (
	whoFormat   string
	whoTop      int
	whoStrategy string
)

var whoCmd = &cobra.Command{
	Use:   "who <file>",
	Short: "Rank the experts of a file",
	Long: `Rank the people most responsible for a file, from its git history.

Examples:
  expertfinder who internal/api/handler.go
  expertfinder who main.go --top 5
  expertfinder who main.go --strategy blame --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runWho,
}

func init() {
	whoCmd.Flags().StringVar(&whoFormat, "format", "human", "Output format (human, json, yaml)")
	whoCmd.Flags().IntVar(&whoTop, "top", 0, "Number of experts to show (default: from config)")
	whoCmd.Flags().StringVar(&whoStrategy, "strategy", "", "Scoring strategy: blame or doa (default: from config)")
	rootCmd.AddCommand(whoCmd)
}

// Expert is one ranked author.
type Expert struct {
	Author string  `json:"author"`
	Score  float64 `json:"score"`
}

// WhoResponse is the result of the who command.
type WhoResponse struct {
	File     string   `json:"file"`
	Strategy string   `json:"strategy"`
	Head     string   `json:"head,omitempty"`
	Experts  []Expert `json:"experts"`
	Text     string   `json:"text,omitempty"`
}

func runWho(cmd *cobra.Command, args []string) error {
	start := time.Now()

	cfg, factory, err := loadSettings()
	if err != nil {
		return err
	}
	defer factory.Close()
	logger := factory.CLILogger(os.Stderr)

	if whoStrategy != "" {
		cfg.Oracle.Strategy = whoStrategy
		if err := cfg.Validate(); err != nil {
			return errors.New(errors.ConfigInvalid, "invalid --strategy", err)
		}
	}
	topK := cfg.TopK()
	if whoTop > 0 {
		topK = whoTop
	}

	file, err := repoRelative(cfg.RepoRoot, args[0])
	if err != nil {
		return err
	}

	oracle, err := ownership.NewGitOracleFromConfig(cfg, logger)
	if err != nil {
		return err
	}

	scores, err := oracle.Score(context.Background(), cfg.RepoRoot, file)
	if err != nil {
		return err
	}

	response := buildWhoResponse(file, oracle.Strategy(), scores, topK, cfg.Display.Prefix)
	if head, err := oracle.Head(context.Background(), cfg.RepoRoot); err == nil {
		response.Head = head
	}
	output, err := FormatResponse(response, OutputFormat(whoFormat))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), output)

	logger.Debug("Who query completed",
		"file", file,
		"experts", len(response.Experts),
		"duration", time.Since(start))
	return nil
}

// repoRelative resolves a command-line path against the working directory
// and returns it relative to repoRoot.
func repoRelative(repoRoot, arg string) (string, error) {
	abs, err := filepath.Abs(arg)
	if err != nil {
		return "", err
	}
	rel, ok := paths.Resolve(repoRoot, abs)
	if !ok {
		return "", errors.New(errors.NotTracked, arg+" is outside the repository "+repoRoot, nil)
	}
	return rel, nil
}

// buildWhoResponse ranks scores the same way the live display does.
func buildWhoResponse(file, strategy string, scores attribution.ScoreMap, topK int, prefix string) *WhoResponse {
	ranked := attribution.Rank(scores, topK)

	experts := make([]Expert, 0, len(ranked))
	for _, author := range ranked {
		experts = append(experts, Expert{Author: author, Score: scores[author]})
	}

	if strategy == "" {
		strategy = config.StrategyDOA
	}
	return &WhoResponse{
		File:     file,
		Strategy: strategy,
		Experts:  experts,
		Text:     attribution.Format(prefix, ranked),
	}
}
