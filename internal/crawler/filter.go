package crawler

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// RegexPatternPrefix marks a filter pattern as a regular expression rather
// than a literal substring.
const RegexPatternPrefix = "regex:"

// LinkFilter selects stage-2 candidates from discovered links by URL
// pattern and crawl status.
type LinkFilter struct {
	substrings []string
	regexes    []*regexp.Regexp
	logger     *zap.Logger
}

// NewLinkFilter compiles a pattern list. Patterns prefixed with "regex:" are
// compiled as regular expressions; anything else matches by substring
// containment. A malformed regex is skipped with a warning, never fatal.
func NewLinkFilter(patterns []string, logger *zap.Logger) *LinkFilter {
	f := &LinkFilter{logger: logger}
	for _, p := range patterns {
		if strings.HasPrefix(p, RegexPatternPrefix) {
			expr := strings.TrimPrefix(p, RegexPatternPrefix)
			re, err := regexp.Compile(expr)
			if err != nil {
				logger.Warn("skipping malformed regex pattern",
					zap.String("pattern", expr), zap.Error(err))
				continue
			}
			f.regexes = append(f.regexes, re)
			continue
		}
		f.substrings = append(f.substrings, p)
	}
	return f
}

// Matches reports whether url matches any pattern. With no patterns
// configured every URL matches.
func (f *LinkFilter) Matches(url string) bool {
	if len(f.substrings) == 0 && len(f.regexes) == 0 {
		return true
	}
	for _, s := range f.substrings {
		if strings.Contains(url, s) {
			return true
		}
	}
	for _, re := range f.regexes {
		if re.MatchString(url) {
			return true
		}
	}
	return false
}

// Select returns the records matching the pattern set, in discovery order.
// With onlyUncrawled set, records already marked crawled are dropped after
// pattern matching.
func (f *LinkFilter) Select(records []LinkRecord, onlyUncrawled bool) []LinkRecord {
	var out []LinkRecord
	for _, rec := range records {
		if !f.Matches(rec.URL) {
			continue
		}
		if onlyUncrawled && rec.Crawled {
			continue
		}
		out = append(out, rec)
	}
	return out
}
