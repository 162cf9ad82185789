package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// ConfigDirName is the per-repository directory holding config and logs
	ConfigDirName = ".expertfinder"

	// LogsSubdir holds log files inside ConfigDirName
	LogsSubdir = "logs"
)

// CanonicalizePath converts an absolute path to a repo-relative canonical path
// - Resolves symlinks to real paths
// - Makes path relative to repo root
// - Returns repo-relative path with forward slashes
func CanonicalizePath(absolutePath string, repoRoot string) (string, error) {
	resolved, err := evalIfExists(absolutePath)
	if err != nil {
		return "", err
	}
	rootResolved, err := evalIfExists(repoRoot)
	if err != nil {
		return "", err
	}

	relativePath, err := filepath.Rel(rootResolved, resolved)
	if err != nil {
		return "", err
	}

	return filepath.ToSlash(relativePath), nil
}

// evalIfExists resolves symlinks, leaving paths that don't exist yet untouched.
func evalIfExists(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		if os.IsNotExist(err) {
			return path, nil
		}
		return "", err
	}
	return resolved, nil
}

// IsWithinRepo checks if a path is within the repository root
func IsWithinRepo(path string, repoRoot string) bool {
	canonical, err := CanonicalizePath(path, repoRoot)
	if err != nil {
		return false
	}
	return canonical != ".." && !strings.HasPrefix(canonical, "../")
}

// Resolve turns a path as reported by an editor (absolute, or relative to
// workingDir) into a repo-relative canonical path. ok is false when the path
// is empty, is the root itself, or lies outside workingDir.
func Resolve(workingDir, path string) (rel string, ok bool) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", false
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(workingDir, path)
	}

	rel, err := CanonicalizePath(path, workingDir)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}
	return rel, true
}

// JoinRepoPath joins a repo root with a canonical path
func JoinRepoPath(repoRoot string, canonicalPath string) string {
	normalizedPath := strings.ReplaceAll(canonicalPath, "\\", "/")
	parts := strings.Split(normalizedPath, "/")
	return filepath.Join(append([]string{repoRoot}, parts...)...)
}

// FindRepoRoot walks up from start until it finds a directory containing .git.
func FindRepoRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no git repository found above %s", start)
		}
		dir = parent
	}
}

// GetLogsDir returns <repoRoot>/.expertfinder/logs
func GetLogsDir(repoRoot string) string {
	return filepath.Join(repoRoot, ConfigDirName, LogsSubdir)
}

// EnsureLogsDir creates the logs directory if needed and returns it
func EnsureLogsDir(repoRoot string) (string, error) {
	dir := GetLogsDir(repoRoot)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create logs directory: %w", err)
	}
	return dir, nil
}

// GetWatchLogPath returns the default log file of the watch command
func GetWatchLogPath(repoRoot string) string {
	return filepath.Join(GetLogsDir(repoRoot), "watch.log")
}
