package query

import (
	"fmt"

	"github.com/arloliu/irstream/internal/glob"
)

// WildcardQuery is a message filter.
//
// Pattern supports '*' (any run of characters) and '?' (any single character); '\' escapes
// the next character. By default the pattern must match the whole message; with PartialMatch
// it may match any substring, which is equivalent to the pattern "*" + Pattern + "*".
type WildcardQuery struct {
	Pattern       string `yaml:"pattern"`
	CaseSensitive bool   `yaml:"case_sensitive"`
	PartialMatch  bool   `yaml:"partial_match"`
}

// FullString creates a WildcardQuery that must match the entire message.
func FullString(pattern string, caseSensitive bool) WildcardQuery {
	return WildcardQuery{Pattern: pattern, CaseSensitive: caseSensitive}
}

// Substring creates a WildcardQuery that matches any message containing the pattern.
func Substring(pattern string, caseSensitive bool) WildcardQuery {
	return WildcardQuery{Pattern: pattern, CaseSensitive: caseSensitive, PartialMatch: true}
}

// Matches reports whether message matches the wildcard query.
func (w WildcardQuery) Matches(message string) bool {
	if w.PartialMatch {
		return glob.Contains(w.Pattern, message, w.CaseSensitive)
	}

	return glob.Match(w.Pattern, message, w.CaseSensitive)
}

func (w WildcardQuery) String() string {
	return fmt.Sprintf("WildcardQuery(%q, case_sensitive=%t, partial_match=%t)", w.Pattern, w.CaseSensitive, w.PartialMatch)
}
