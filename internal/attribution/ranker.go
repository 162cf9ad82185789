// Package attribution reduces per-author ownership scores to a ranked result.
//
// Score maps carry no inherent order, so every function here enumerates
// authors in ascending AuthorId order (byte-wise). Ties are broken by that
// order: among equal scores the lexicographically smaller author wins.
package attribution

import (
	"sort"
	"strings"
)

// ScoreMap maps an author identity to its ownership score. Higher means more
// ownership. A ScoreMap is never mutated once handed to this package.
type ScoreMap map[string]float64

// Ranked is an ordered list of author identities, most responsible first.
type Ranked []string

// Authors returns the keys of scores in enumeration order.
func Authors(scores ScoreMap) []string {
	authors := make([]string, 0, len(scores))
	for author := range scores {
		authors = append(authors, author)
	}
	sort.Strings(authors)
	return authors
}

// RankTop returns up to k authors sorted by score descending. Authors with
// equal scores keep their enumeration order.
func RankTop(scores ScoreMap, k int) Ranked {
	if k <= 0 || len(scores) == 0 {
		return Ranked{}
	}

	authors := Authors(scores)
	sort.SliceStable(authors, func(i, j int) bool {
		return scores[authors[i]] > scores[authors[j]]
	})

	if k < len(authors) {
		authors = authors[:k]
	}
	return Ranked(authors)
}

// TopExpert returns the author with the highest score. The scan keeps the
// first author seen at the maximum: a later author only takes over with a
// strictly greater score. ok is false for an empty map.
func TopExpert(scores ScoreMap) (expert string, ok bool) {
	authors := Authors(scores)
	if len(authors) == 0 {
		return "", false
	}

	expert = authors[0]
	for _, author := range authors[1:] {
		if scores[author] > scores[expert] {
			expert = author
		}
	}
	return expert, true
}

// Rank selects the display ranking for a top-K bound: the single top expert
// when k is 1, the RankTop list otherwise.
func Rank(scores ScoreMap, k int) Ranked {
	if k == 1 {
		if expert, ok := TopExpert(scores); ok {
			return Ranked{expert}
		}
		return Ranked{}
	}
	return RankTop(scores, k)
}

// Format renders a ranking as display text. An empty ranking renders as "".
func Format(prefix string, ranked Ranked) string {
	if len(ranked) == 0 {
		return ""
	}
	return prefix + strings.Join(ranked, ", ")
}
