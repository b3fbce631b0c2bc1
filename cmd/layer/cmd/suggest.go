package cmd

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// maxSuggestions caps "did you mean" lists.
const maxSuggestions = 3

// suggest returns the candidates that fuzzily match target, best first.
// A trailing '/' on either side is ignored.
func suggest(target string, candidates []string) []string {
	trimmed := make([]string, len(candidates))
	for i, c := range candidates {
		trimmed[i] = strings.TrimSuffix(c, "/")
	}

	matches := fuzzy.Find(strings.TrimSuffix(target, "/"), trimmed)
	out := make([]string, 0, maxSuggestions)
	for _, m := range matches {
		if candidates[m.Index] == target {
			continue
		}
		out = append(out, candidates[m.Index])
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}

// didYouMean formats suggestions for a hint line, or "" when there are none.
func didYouMean(target string, candidates []string) string {
	s := suggest(target, candidates)
	if len(s) == 0 {
		return ""
	}
	return "Did you mean '" + strings.Join(s, "', '") + "'?"
}
