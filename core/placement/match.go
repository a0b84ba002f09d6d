package placement

import "strings"

// MatchFunc decides whether a student's skills satisfy a placement's
// requirement text. It is pluggable so the heuristic can be swapped
// without touching the application flow.
type MatchFunc func(skills []string, requirements string) bool

// TokenOverlapMatcher returns the default matcher: both sides are split on
// commas, trimmed and case-folded, and the student passes when at least
// threshold distinct tokens overlap.
func TokenOverlapMatcher(threshold int) MatchFunc {
	return func(skills []string, requirements string) bool {
		required := make(map[string]bool)
		for _, tok := range strings.Split(requirements, ",") {
			if tok = normalizeToken(tok); tok != "" {
				required[tok] = true
			}
		}

		seen := make(map[string]bool)
		matches := 0
		for _, skill := range skills {
			for _, tok := range strings.Split(skill, ",") {
				tok = normalizeToken(tok)
				if tok == "" || seen[tok] {
					continue
				}
				seen[tok] = true
				if required[tok] {
					matches++
				}
			}
		}
		return matches >= threshold
	}
}

func normalizeToken(tok string) string {
	return strings.ToLower(strings.TrimSpace(tok))
}
