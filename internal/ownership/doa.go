package ownership

import (
	"bufio"
	"bytes"
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"expertfinder/internal/attribution"
)

// Degree-of-authorship model coefficients.
const (
	doaIntercept   = 3.293
	doaFirstAuthor = 1.098
	doaDeliveries  = 0.164
	doaAcceptances = 0.321
)

// Commit is one entry of a file's history.
type Commit struct {
	Hash       string
	Author     string
	AuthorMail string
	Timestamp  time.Time
}

// AuthorDOA holds the inputs and result of the degree-of-authorship model
// for one author of one file.
type AuthorDOA struct {
	Author      string  `json:"author"`
	FirstAuthor bool    `json:"firstAuthor"`
	Deliveries  int     `json:"deliveries"`
	Acceptances int     `json:"acceptances"`
	DOA         float64 `json:"doa"`
	Normalized  float64 `json:"normalized"`
}

// logFieldSep separates fields in the git log format string.
const logFieldSep = "\x1f"

// runGitLog returns the history of filePath, oldest commit first, following renames.
func (o *GitOracle) runGitLog(ctx context.Context, repoRoot, filePath string) ([]Commit, error) {
	output, err := o.git(ctx, repoRoot, "log", "--follow", "--no-merges",
		"--format=%H%x1f%an%x1f%ae%x1f%at", "--", filePath)
	if err != nil {
		return nil, err
	}
	commits := parseLogOutput(output)

	// git log is newest first
	for i, j := 0, len(commits)-1; i < j; i, j = i+1, j-1 {
		commits[i], commits[j] = commits[j], commits[i]
	}
	return commits, nil
}

func parseLogOutput(output []byte) []Commit {
	var commits []Commit
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), logFieldSep)
		if len(fields) != 4 || fields[0] == "" {
			continue
		}
		c := Commit{Hash: fields[0], Author: fields[1], AuthorMail: fields[2]}
		if ts, err := strconv.ParseInt(fields[3], 10, 64); err == nil {
			c.Timestamp = time.Unix(ts, 0)
		}
		commits = append(commits, c)
	}
	return commits
}

// ComputeDOA applies the degree-of-authorship model to a file history given
// oldest commit first:
//
//	DOA = 3.293 + 1.098*FA + 0.164*DL - 0.321*ln(1 + AC)
//
// FA is 1 for the author of the first commit, DL the author's own commits and
// AC the commits by everyone else. Normalized is DOA divided by the file's
// maximum DOA, clamped at zero.
func ComputeDOA(commits []Commit, botPatterns []string) map[string]*AuthorDOA {
	bots := compilePatterns(botPatterns)
	result := make(map[string]*AuthorDOA)

	total := 0
	for i, c := range commits {
		if isBot(c.Author, c.AuthorMail, bots) {
			continue
		}
		key := NormalizeAuthorKey(c.Author, c.AuthorMail)
		a, ok := result[key]
		if !ok {
			a = &AuthorDOA{Author: key}
			result[key] = a
		}
		if i == 0 {
			a.FirstAuthor = true
		}
		a.Deliveries++
		total++
	}

	maxDOA := 0.0
	for _, a := range result {
		a.Acceptances = total - a.Deliveries
		fa := 0.0
		if a.FirstAuthor {
			fa = 1
		}
		a.DOA = doaIntercept + doaFirstAuthor*fa + doaDeliveries*float64(a.Deliveries) -
			doaAcceptances*math.Log(1+float64(a.Acceptances))
		if a.DOA > maxDOA {
			maxDOA = a.DOA
		}
	}

	for _, a := range result {
		if maxDOA > 0 && a.DOA > 0 {
			a.Normalized = a.DOA / maxDOA
		}
	}
	return result
}

// DOAScores converts model results to a ScoreMap of normalized DOA values.
func DOAScores(doa map[string]*AuthorDOA) attribution.ScoreMap {
	scores := make(attribution.ScoreMap, len(doa))
	for author, a := range doa {
		scores[author] = a.Normalized
	}
	return scores
}
