// internal/chat/menu/extractor.go
package menu

import (
	"context"
	"sort"
	"strings"
)

const maxExtracted = 3

// Extractor pulls menu-item names out of an assistant reply. Implementations
// never fail: a reply with no recognizable dishes yields the default names.
type Extractor interface {
	Extract(ctx context.Context, reply string) []string
}

// DefaultFoodNames is substituted when extraction finds nothing, so the
// caller always has items to attach prices to.
func DefaultFoodNames() []string {
	return []string{"Kimchi Jjigae", "Bibimbap", "Jeyuk Bokkeum"}
}

// vocabulary is the closed set of dish names the production extractor
// recognizes. Matching is case-insensitive against the reply text.
var vocabulary = []string{
	"Kimchi Jjigae",
	"Bibimbap",
	"Jeyuk Bokkeum",
	"Sundubu Jjigae",
	"Doenjang Jjigae",
	"Budae Jjigae",
	"Kimchi Bokkeumbap",
	"Bulgogi",
	"Dak Galbi",
	"Samgyeopsal",
	"Naengmyeon",
	"Bibim Naengmyeon",
	"Kalguksu",
	"Janchi Guksu",
	"Bibim Guksu",
	"Jajangmyeon",
	"Jjamppong",
	"Tteokbokki",
	"Gimbap",
	"Ramyeon",
	"Donkatsu",
	"Mandu",
	"Gukbap",
	"Samgyetang",
	"Galbitang",
	"Seolleongtang",
	"Sujebi",
	"Jumeokbap",
	"Udon",
	"Salad",
}

type vocabMatch struct {
	pos  int
	name string
}

// VocabularyExtractor matches the reply against the closed dish vocabulary.
type VocabularyExtractor struct{}

func NewVocabularyExtractor() *VocabularyExtractor {
	return &VocabularyExtractor{}
}

// Extract returns at most three unique dish names in order of first
// appearance in the reply.
func (e *VocabularyExtractor) Extract(_ context.Context, reply string) []string {
	lower := strings.ToLower(reply)

	var matches []vocabMatch
	for _, name := range vocabulary {
		if pos := strings.Index(lower, strings.ToLower(name)); pos >= 0 {
			matches = append(matches, vocabMatch{pos: pos, name: name})
		}
	}
	if len(matches) == 0 {
		return DefaultFoodNames()
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].pos != matches[j].pos {
			return matches[i].pos < matches[j].pos
		}
		// Same start offset means one name contains the other; prefer the
		// longer one, e.g. Bibim Naengmyeon over Naengmyeon.
		return len(matches[i].name) > len(matches[j].name)
	})

	names := make([]string, 0, maxExtracted)
	for _, m := range matches {
		if shadowed(m, names) {
			continue
		}
		names = append(names, m.name)
		if len(names) == maxExtracted {
			break
		}
	}
	return names
}

// shadowed reports whether the match is a substring of a dish already taken.
func shadowed(m vocabMatch, taken []string) bool {
	for _, name := range taken {
		if name == m.name || strings.Contains(strings.ToLower(name), strings.ToLower(m.name)) {
			return true
		}
	}
	return false
}
