package ownership

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"expertfinder/internal/attribution"
)

// Aliases maps alternate author identities to a canonical one, e.g. an old
// work address to a current one. Keys and values are compared lower-cased.
type Aliases map[string]string

// aliasesFile is the on-disk layout:
//
//	[aliases]
//	"alice@old.example.com" = "alice@example.com"
type aliasesFile struct {
	Aliases map[string]string `toml:"aliases"`
}

// LoadAliases reads an alias table. A missing file yields an empty table.
func LoadAliases(path string) (Aliases, error) {
	if path == "" {
		return Aliases{}, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Aliases{}, nil
	}

	var file aliasesFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("failed to parse aliases: %w", err)
	}

	aliases := make(Aliases, len(file.Aliases))
	for from, to := range file.Aliases {
		from = strings.ToLower(strings.TrimSpace(from))
		to = strings.ToLower(strings.TrimSpace(to))
		if from == "" || to == "" || from == to {
			continue
		}
		aliases[from] = to
	}
	return aliases, nil
}

// Canonical follows alias links from id. Chains are followed up to the table
// size so cycles terminate.
func (a Aliases) Canonical(id string) string {
	id = strings.ToLower(id)
	for i := 0; i < len(a); i++ {
		next, ok := a[id]
		if !ok {
			break
		}
		id = next
	}
	return id
}

// Apply returns a new ScoreMap with aliased identities merged into their
// canonical identity by summing scores.
func (a Aliases) Apply(scores attribution.ScoreMap) attribution.ScoreMap {
	if len(a) == 0 {
		return scores
	}
	merged := make(attribution.ScoreMap, len(scores))
	for author, score := range scores {
		merged[a.Canonical(author)] += score
	}
	return merged
}
