package ownership

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"expertfinder/internal/config"
	"expertfinder/internal/errors"
)

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %v failed: %v\n%s", args, err, output)
	}
}

func writeAndCommit(t *testing.T, dir, file, content, author string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, file), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	runGit(t, dir, "add", file)
	runGit(t, dir, "commit", "-q", "--author", author, "-m", "update "+file)
}

// setupRepo creates a repository where alice creates main.go and bob
// rewrites most of it twice.
func setupRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	dir := t.TempDir()
	runGit(t, dir, "init", "-q")
	runGit(t, dir, "config", "user.email", "test@test.com")
	runGit(t, dir, "config", "user.name", "Test")
	runGit(t, dir, "config", "commit.gpgsign", "false")

	writeAndCommit(t, dir, "main.go", "package main\n", "Alice <alice@example.com>")
	writeAndCommit(t, dir, "main.go", "package main\n\nfunc a() {}\nfunc b() {}\n", "Bob <bob@example.com>")
	writeAndCommit(t, dir, "main.go", "package main\n\nfunc a() {}\nfunc b() {}\nfunc c() {}\n", "Bob <bob@example.com>")
	return dir
}

func TestGitOracle_DOA(t *testing.T) {
	dir := setupRepo(t)
	oracle := NewGitOracle(Options{Strategy: config.StrategyDOA})

	scores, err := oracle.Score(context.Background(), dir, "main.go")
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if len(scores) != 2 {
		t.Fatalf("Expected 2 authors, got %v", scores)
	}
	if _, ok := scores["alice@example.com"]; !ok {
		t.Errorf("Expected alice in %v", scores)
	}
	if _, ok := scores["bob@example.com"]; !ok {
		t.Errorf("Expected bob in %v", scores)
	}
}

func TestGitOracle_Blame(t *testing.T) {
	dir := setupRepo(t)
	oracle := NewGitOracle(Options{Strategy: config.StrategyBlame})

	scores, err := oracle.Score(context.Background(), dir, "main.go")
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if scores["bob@example.com"] <= scores["alice@example.com"] {
		t.Errorf("bob wrote most surviving lines, got %v", scores)
	}
}

func TestGitOracle_Aliases(t *testing.T) {
	dir := setupRepo(t)
	oracle := NewGitOracle(Options{
		Strategy: config.StrategyDOA,
		Aliases:  Aliases{"alice@example.com": "bob@example.com"},
	})

	scores, err := oracle.Score(context.Background(), dir, "main.go")
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if len(scores) != 1 {
		t.Errorf("Expected aliased authors merged, got %v", scores)
	}
}

func TestGitOracle_Errors(t *testing.T) {
	dir := setupRepo(t)
	if err := os.WriteFile(filepath.Join(dir, "untracked.go"), []byte("package main\n"), 0644); err != nil {
		t.Fatal(err)
	}
	oracle := NewGitOracle(Options{})

	_, err := oracle.Score(context.Background(), dir, "untracked.go")
	if errors.CodeOf(err) != errors.NotTracked {
		t.Errorf("untracked file: code = %s, err = %v", errors.CodeOf(err), err)
	}

	_, err = oracle.Score(context.Background(), t.TempDir(), "main.go")
	if errors.CodeOf(err) != errors.NotTracked {
		t.Errorf("outside repo: code = %s, err = %v", errors.CodeOf(err), err)
	}
	if !errors.IsOracleError(err) {
		t.Errorf("expected oracle error, got %v", err)
	}
}

func TestGitOracle_Cancelled(t *testing.T) {
	dir := setupRepo(t)
	oracle := NewGitOracle(Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := oracle.Score(ctx, dir, "main.go"); err == nil {
		t.Error("Expected error for cancelled context")
	}
}

func TestNewGitOracleFromConfig(t *testing.T) {
	root := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.RepoRoot = root
	cfg.Oracle.Strategy = config.StrategyBlame
	cfg.Oracle.TimeoutMs = 1500

	oracle, err := NewGitOracleFromConfig(cfg, nil)
	if err != nil {
		t.Fatalf("NewGitOracleFromConfig failed: %v", err)
	}
	if oracle.Strategy() != config.StrategyBlame {
		t.Errorf("Strategy = %q, want blame", oracle.Strategy())
	}
	if oracle.timeout != 1500*time.Millisecond {
		t.Errorf("timeout = %v, want 1.5s", oracle.timeout)
	}
	if oracle.blame.HalfLife != 90*24*time.Hour {
		t.Errorf("HalfLife = %v, want 90 days", oracle.blame.HalfLife)
	}

	aliasDir := filepath.Join(root, config.ConfigDir)
	if err := os.MkdirAll(aliasDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(aliasDir, "aliases.toml"), []byte("[aliases\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewGitOracleFromConfig(cfg, nil); errors.CodeOf(err) != errors.ConfigInvalid {
		t.Errorf("Expected CONFIG_INVALID for bad aliases, got %v", err)
	}
}

func TestGitOracle_Head(t *testing.T) {
	dir := setupRepo(t)
	oracle := NewGitOracle(Options{})

	head, err := oracle.Head(context.Background(), dir)
	if err != nil {
		t.Fatalf("Head failed: %v", err)
	}
	if len(head) != 40 {
		t.Errorf("Head = %q, want a full commit hash", head)
	}

	empty := t.TempDir()
	runGit(t, empty, "init", "-q")
	if _, err := oracle.Head(context.Background(), empty); errors.CodeOf(err) != errors.NoHistory {
		t.Errorf("Head of empty repo: code = %v, want NO_HISTORY", errors.CodeOf(err))
	}
}
