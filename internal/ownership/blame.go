package ownership

import (
	"bufio"
	"bytes"
	"context"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"expertfinder/internal/attribution"
)

// BlameConfig contains configuration for git-blame ownership computation
type BlameConfig struct {
	// HalfLife is the age at which a line's weight halves (default: 90 days)
	HalfLife time.Duration

	// ExcludeBots indicates whether to exclude bot commits
	ExcludeBots bool

	// BotPatterns are regex patterns to detect bot authors
	BotPatterns []string

	// MinContribution is the minimum share to be considered a contributor
	MinContribution float64
}

// DefaultBlameConfig returns the default blame configuration
func DefaultBlameConfig() BlameConfig {
	return BlameConfig{
		HalfLife:    90 * 24 * time.Hour,
		ExcludeBots: true,
		BotPatterns: []string{
			`\[bot\]$`,
			`^dependabot`,
			`^renovate`,
			`^github-actions`,
		},
		MinContribution: 0.05,
	}
}

// BlameEntry represents a single line's blame information
type BlameEntry struct {
	CommitHash string
	Author     string
	AuthorMail string
	Timestamp  time.Time
	LineNumber int
}

// AuthorContribution is one author's time-decayed share of a file
type AuthorContribution struct {
	Author        string    `json:"author"`
	Email         string    `json:"email"`
	LineCount     int       `json:"lineCount"`
	WeightedLines float64   `json:"weightedLines"`
	Percentage    float64   `json:"percentage"`
	LastCommit    time.Time `json:"lastCommit"`
}

// BlameOwnership represents ownership derived from git blame
type BlameOwnership struct {
	FilePath     string               `json:"filePath"`
	TotalLines   int                  `json:"totalLines"`
	Contributors []AuthorContribution `json:"contributors"`
	ComputedAt   time.Time            `json:"computedAt"`
}

// runGitBlame runs git blame --porcelain on a file and parses the output
func (o *GitOracle) runGitBlame(ctx context.Context, repoRoot, filePath string) ([]BlameEntry, error) {
	output, err := o.git(ctx, repoRoot, "blame", "--porcelain", "--", filePath)
	if err != nil {
		return nil, err
	}
	return parseBlameOutput(output)
}

// parseBlameOutput parses git blame porcelain output. Porcelain repeats the
// author headers only on a commit's first line, so later lines of the same
// commit inherit them.
func parseBlameOutput(output []byte) ([]BlameEntry, error) {
	var entries []BlameEntry
	commits := make(map[string]BlameEntry)
	scanner := bufio.NewScanner(bytes.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var current BlameEntry
	inEntry := false

	flush := func() {
		if !inEntry {
			return
		}
		if known, ok := commits[current.CommitHash]; ok {
			if current.Author == "" {
				current.Author = known.Author
			}
			if current.AuthorMail == "" {
				current.AuthorMail = known.AuthorMail
			}
			if current.Timestamp.IsZero() {
				current.Timestamp = known.Timestamp
			}
		}
		commits[current.CommitHash] = current
		entries = append(entries, current)
		inEntry = false
	}

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "\t"):
			// Content line terminates the entry
			flush()
		case len(line) >= 40 && isHexString(line[:40]):
			flush()
			parts := strings.Fields(line)
			current = BlameEntry{CommitHash: parts[0]}
			if len(parts) >= 3 {
				current.LineNumber, _ = strconv.Atoi(parts[2])
			}
			inEntry = true
		case strings.HasPrefix(line, "author "):
			current.Author = strings.TrimPrefix(line, "author ")
		case strings.HasPrefix(line, "author-mail "):
			current.AuthorMail = strings.Trim(strings.TrimPrefix(line, "author-mail "), "<>")
		case strings.HasPrefix(line, "author-time "):
			if ts, err := strconv.ParseInt(strings.TrimPrefix(line, "author-time "), 10, 64); err == nil {
				current.Timestamp = time.Unix(ts, 0)
			}
		}
	}
	flush()

	return entries, scanner.Err()
}

func isHexString(s string) bool {
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}

// ComputeBlameOwnership computes per-author time-decayed line shares.
// Bots are skipped and authors below MinContribution are dropped.
func ComputeBlameOwnership(filePath string, entries []BlameEntry, config BlameConfig, now time.Time) *BlameOwnership {
	result := &BlameOwnership{
		FilePath:     filePath,
		TotalLines:   len(entries),
		Contributors: []AuthorContribution{},
		ComputedAt:   now,
	}
	if len(entries) == 0 {
		return result
	}

	var botPatterns []*regexp.Regexp
	if config.ExcludeBots {
		botPatterns = compilePatterns(config.BotPatterns)
	}

	halfLife := config.HalfLife
	if halfLife <= 0 {
		halfLife = DefaultBlameConfig().HalfLife
	}

	type authorStats struct {
		author      string
		email       string
		lineCount   int
		weightedSum float64
		lastCommit  time.Time
	}
	stats := make(map[string]*authorStats)
	totalWeighted := 0.0

	for _, entry := range entries {
		if isBot(entry.Author, entry.AuthorMail, botPatterns) {
			continue
		}

		age := now.Sub(entry.Timestamp)
		if age < 0 {
			age = 0
		}
		weight := math.Pow(0.5, float64(age)/float64(halfLife))

		key := NormalizeAuthorKey(entry.Author, entry.AuthorMail)
		s, ok := stats[key]
		if !ok {
			s = &authorStats{author: entry.Author, email: entry.AuthorMail}
			stats[key] = s
		}

		s.lineCount++
		s.weightedSum += weight
		totalWeighted += weight
		if entry.Timestamp.After(s.lastCommit) {
			s.lastCommit = entry.Timestamp
		}
	}

	for key, s := range stats {
		percentage := 0.0
		if totalWeighted > 0 {
			percentage = s.weightedSum / totalWeighted
		}
		if percentage < config.MinContribution {
			continue
		}

		result.Contributors = append(result.Contributors, AuthorContribution{
			Author:        key,
			Email:         s.email,
			LineCount:     s.lineCount,
			WeightedLines: s.weightedSum,
			Percentage:    percentage,
			LastCommit:    s.lastCommit,
		})
	}

	sort.Slice(result.Contributors, func(i, j int) bool {
		a, b := result.Contributors[i], result.Contributors[j]
		if a.Percentage != b.Percentage {
			return a.Percentage > b.Percentage
		}
		return a.Author < b.Author
	})

	return result
}

// Scores converts blame ownership to a ScoreMap keyed by author identity.
func (b *BlameOwnership) Scores() attribution.ScoreMap {
	scores := make(attribution.ScoreMap, len(b.Contributors))
	for _, c := range b.Contributors {
		scores[c.Author] = c.Percentage
	}
	return scores
}

// NormalizeAuthorKey creates a consistent identity for an author: the
// lower-cased email, or the lower-cased name when the email is missing or a
// shared noreply address.
func NormalizeAuthorKey(author, email string) string {
	email = strings.TrimSpace(email)
	if email != "" && email != "noreply@github.com" {
		return strings.ToLower(email)
	}
	return strings.ToLower(strings.TrimSpace(author))
}

func compilePatterns(patterns []string) []*regexp.Regexp {
	var compiled []*regexp.Regexp
	for _, pattern := range patterns {
		if re, err := regexp.Compile(pattern); err == nil {
			compiled = append(compiled, re)
		}
	}
	return compiled
}

// isBot checks if an author is a bot
func isBot(author, email string, patterns []*regexp.Regexp) bool {
	for _, pattern := range patterns {
		if pattern.MatchString(author) || pattern.MatchString(email) {
			return true
		}
	}
	return false
}
