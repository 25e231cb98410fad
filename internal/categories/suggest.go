package categories

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

const defaultSuggestions = 3

// Suggestion is a known title resembling the one being classified.
type Suggestion struct {
	Title    string
	Category string
	Distance int
}

// Suggest returns up to limit known titles close to title, best first.
// A candidate qualifies when one title is a fuzzy subsequence of the other or
// the edit distance is within a third of the longer title.
func Suggest(title string, known map[string]string, titles []string, limit int) []Suggestion {
	if limit <= 0 || title == "" {
		return nil
	}
	needle := strings.ToLower(title)

	var out []Suggestion
	for _, t := range titles {
		cand := strings.ToLower(t)
		dist := fuzzy.LevenshteinDistance(needle, cand)
		longest := max(utf8.RuneCountInString(needle), utf8.RuneCountInString(cand))

		if !fuzzy.Match(needle, cand) && !fuzzy.Match(cand, needle) && dist*3 > longest {
			continue
		}
		out = append(out, Suggestion{Title: t, Category: known[t], Distance: dist})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
