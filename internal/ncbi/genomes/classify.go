package genomes

import (
	"regexp"

	"github.com/jlaffaye/ftp"
)

// Matcher selects filenames relevant to one sequence role. *regexp.Regexp
// satisfies it directly; roles that need an exclusion (RE2 has no
// lookbehind) use ExcludingMatcher.
type Matcher interface {
	MatchString(s string) bool
}

// ExcludingMatcher matches names accepted by Include and not rejected by
// Exclude.
type ExcludingMatcher struct {
	Include *regexp.Regexp
	Exclude *regexp.Regexp
}

// MatchString implements Matcher.
func (m ExcludingMatcher) MatchString(s string) bool {
	if !m.Include.MatchString(s) {
		return false
	}
	return m.Exclude == nil || !m.Exclude.MatchString(s)
}

// FilterEntries returns the names in listing accepted by pattern,
// preserving listing order. No matches is an empty result, not an error.
func FilterEntries(listing []*ftp.Entry, pattern Matcher) []string {
	var names []string
	for _, entry := range listing {
		if pattern == nil || pattern.MatchString(entry.Name) {
			names = append(names, entry.Name)
		}
	}
	return names
}
