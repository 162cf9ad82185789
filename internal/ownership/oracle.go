// Package ownership computes per-author ownership scores for a file from its
// git history. GitOracle is the scoring oracle used by the live session and
// the one-shot CLI.
package ownership

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"expertfinder/internal/attribution"
	"expertfinder/internal/config"
	"expertfinder/internal/errors"
	"expertfinder/internal/slogutil"
)

// DefaultTimeout bounds a single scoring request.
const DefaultTimeout = 5 * time.Second

// Options configures a GitOracle.
type Options struct {
	// Strategy is config.StrategyBlame or config.StrategyDOA.
	Strategy string
	Timeout  time.Duration
	Blame    BlameConfig
	Aliases  Aliases
	Logger   *slog.Logger
	// Now defaults to time.Now; blame time decay is measured against it.
	Now func() time.Time
}

// GitOracle scores a file's authors by shelling out to git.
type GitOracle struct {
	strategy string
	timeout  time.Duration
	blame    BlameConfig
	aliases  Aliases
	logger   *slog.Logger
	now      func() time.Time
}

// NewGitOracle creates an oracle. Zero options fall back to the DOA strategy,
// DefaultTimeout and DefaultBlameConfig.
func NewGitOracle(opts Options) *GitOracle {
	o := &GitOracle{
		strategy: opts.Strategy,
		timeout:  opts.Timeout,
		blame:    opts.Blame,
		aliases:  opts.Aliases,
		logger:   slogutil.OrDiscard(opts.Logger),
		now:      opts.Now,
	}
	if o.strategy == "" {
		o.strategy = config.StrategyDOA
	}
	if o.timeout == 0 {
		o.timeout = DefaultTimeout
	}
	if o.blame.HalfLife == 0 {
		o.blame = DefaultBlameConfig()
	}
	if o.now == nil {
		o.now = time.Now
	}
	return o
}

// NewGitOracleFromConfig builds an oracle from configuration, loading the
// alias table relative to the repository root.
func NewGitOracleFromConfig(cfg *config.Config, logger *slog.Logger) (*GitOracle, error) {
	aliasesPath := cfg.Oracle.AliasesFile
	if aliasesPath != "" && !filepath.IsAbs(aliasesPath) {
		aliasesPath = filepath.Join(cfg.RepoRoot, aliasesPath)
	}
	aliases, err := LoadAliases(aliasesPath)
	if err != nil {
		return nil, errors.New(errors.ConfigInvalid, "invalid aliases file", err)
	}

	return NewGitOracle(Options{
		Strategy: cfg.Oracle.Strategy,
		Timeout:  time.Duration(cfg.Oracle.TimeoutMs) * time.Millisecond,
		Blame: BlameConfig{
			HalfLife:        time.Duration(cfg.Oracle.Blame.HalfLifeDays) * 24 * time.Hour,
			ExcludeBots:     cfg.Oracle.Blame.ExcludeBots,
			BotPatterns:     cfg.Oracle.Blame.BotPatterns,
			MinContribution: cfg.Oracle.Blame.MinContribution,
		},
		Aliases: aliases,
		Logger:  logger,
	}), nil
}

// Strategy returns the configured scoring strategy.
func (o *GitOracle) Strategy() string {
	return o.strategy
}

// Score returns the ownership scores of filePath (relative to workingDir).
// Failures are *errors.ExpertError with an oracle code.
func (o *GitOracle) Score(ctx context.Context, workingDir, filePath string) (attribution.ScoreMap, error) {
	start := time.Now()

	var scores attribution.ScoreMap
	var err error
	switch o.strategy {
	case config.StrategyBlame:
		var owned *BlameOwnership
		owned, err = o.Blame(ctx, workingDir, filePath)
		if err == nil {
			scores = owned.Scores()
		}
	default:
		var doa map[string]*AuthorDOA
		doa, err = o.DOA(ctx, workingDir, filePath)
		if err == nil {
			scores = DOAScores(doa)
		}
	}
	if err != nil {
		o.logger.Debug("Scoring failed",
			"file", filePath,
			"strategy", o.strategy,
			"code", errors.CodeOf(err),
			"duration", time.Since(start))
		return nil, err
	}

	scores = o.aliases.Apply(scores)
	o.logger.Debug("Scored file",
		"file", filePath,
		"strategy", o.strategy,
		"authors", len(scores),
		"duration", time.Since(start))
	return scores, nil
}

// Blame computes time-decayed line ownership for a tracked file.
func (o *GitOracle) Blame(ctx context.Context, workingDir, filePath string) (*BlameOwnership, error) {
	ctx, cancel := o.withTimeout(ctx)
	defer cancel()

	if err := o.ensureTracked(ctx, workingDir, filePath); err != nil {
		return nil, err
	}
	entries, err := o.runGitBlame(ctx, workingDir, filePath)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, errors.New(errors.NoHistory, "no blamed lines for "+filePath, nil)
	}
	return ComputeBlameOwnership(filePath, entries, o.blame, o.now()), nil
}

// DOA computes the degree-of-authorship model for a tracked file.
func (o *GitOracle) DOA(ctx context.Context, workingDir, filePath string) (map[string]*AuthorDOA, error) {
	ctx, cancel := o.withTimeout(ctx)
	defer cancel()

	if err := o.ensureTracked(ctx, workingDir, filePath); err != nil {
		return nil, err
	}
	commits, err := o.runGitLog(ctx, workingDir, filePath)
	if err != nil {
		return nil, err
	}
	if len(commits) == 0 {
		return nil, errors.New(errors.NoHistory, "no commits for "+filePath, nil)
	}

	var bots []string
	if o.blame.ExcludeBots {
		bots = o.blame.BotPatterns
	}
	return ComputeDOA(commits, bots), nil
}

// Head returns the commit the scores are computed against.
func (o *GitOracle) Head(ctx context.Context, workingDir string) (string, error) {
	ctx, cancel := o.withTimeout(ctx)
	defer cancel()

	output, err := o.git(ctx, workingDir, "rev-parse", "HEAD")
	if err != nil {
		if errors.CodeOf(err) == errors.OracleFailed {
			return "", errors.New(errors.NoHistory, "repository has no commits", err)
		}
		return "", err
	}
	return strings.TrimSpace(string(output)), nil
}

func (o *GitOracle) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.timeout)
}

func (o *GitOracle) ensureTracked(ctx context.Context, workingDir, filePath string) error {
	if _, err := o.git(ctx, workingDir, "ls-files", "--error-unmatch", "--", filePath); err != nil {
		if errors.CodeOf(err) == errors.OracleFailed {
			return errors.New(errors.NotTracked, filePath+" is not tracked by git", err)
		}
		return err
	}
	return nil
}

// git runs a git command in dir and maps failures to oracle error codes.
func (o *GitOracle) git(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err == nil {
		return output, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		if stderrors.Is(ctxErr, context.DeadlineExceeded) {
			return nil, errors.New(errors.Timeout,
				fmt.Sprintf("git %s exceeded %s", args[0], o.timeout), ctxErr)
		}
		return nil, errors.New(errors.OracleFailed, "git "+args[0]+" cancelled", ctxErr)
	}

	msg := strings.TrimSpace(stderr.String())
	if strings.Contains(msg, "not a git repository") {
		return nil, errors.New(errors.NotTracked, dir+" is not a git repository", err)
	}
	if msg == "" {
		msg = "git " + args[0] + " failed"
	}
	return nil, errors.New(errors.OracleFailed, msg, err)
}
