package core

import "strings"

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// CleanStrings normalizes a list in place, dropping entries that are blank
// after trimming. Skill lists come in messy; the matcher relies on this.
func CleanStrings(strs []string, lower ...bool) []string {
	cleaned := strs[:0]
	for _, s := range strs {
		if s = CleanString(s, lower...); s != "" {
			cleaned = append(cleaned, s)
		}
	}
	return cleaned
}
