package patterns

import (
	"regexp"
	"strings"
)

// Match methods recorded on a CategoryMatch.
const (
	MethodKeyword = "keyword"
	MethodRegex   = "regex"
	MethodFuzzy   = "fuzzy"
)

const (
	keywordConfidence = 0.95
	regexConfidence   = 0.90

	// FuzzyThreshold is the minimum token-set ratio accepted as a match.
	FuzzyThreshold = 80.0
	// fuzzyMinKeyword keeps short codes such as "UC" or "EE" out of fuzzy
	// matching, where they would match almost any short token.
	fuzzyMinKeyword = 5
)

// Table is one subcategory's pattern set.
type Table struct {
	Name      string
	Keywords  []string
	Regexes   []*regexp.Regexp
	Weight    float64
	IsStable  bool
	IsHousing bool
	RiskLevel string
}

// Match describes how a table matched a text.
type Match struct {
	Method     string
	Confidence float64
	Term       string
}

// Group is an ordered list of tables; the first matching table wins.
type Group []Table

// Match checks keywords, then regexes, then fuzzy similarity against the
// upper-cased text.
func (t Table) Match(text string) (Match, bool) {
	for _, kw := range t.Keywords {
		if ContainsWord(text, kw) {
			return Match{Method: MethodKeyword, Confidence: keywordConfidence, Term: kw}, true
		}
	}
	for _, re := range t.Regexes {
		if re.MatchString(text) {
			return Match{Method: MethodRegex, Confidence: regexConfidence, Term: re.String()}, true
		}
	}
	for _, kw := range t.Keywords {
		if len(kw) < fuzzyMinKeyword || coveredBy(text, kw) {
			continue
		}
		if score := TokenSetRatio(kw, text); score >= FuzzyThreshold {
			return Match{Method: MethodFuzzy, Confidence: score / 100, Term: kw}, true
		}
	}
	return Match{}, false
}

// Find returns the first table in the group that matches text.
func (g Group) Find(text string) (Table, Match, bool) {
	for _, t := range g {
		if m, ok := t.Match(text); ok {
			return t, m, true
		}
	}
	return Table{}, Match{}, false
}

// Lookup returns the table with the given name.
func (g Group) Lookup(name string) (Table, bool) {
	for _, t := range g {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}

// ContainsWord reports whether kw occurs in text delimited by non-alphanumeric
// characters or the ends of the string. Both are compared as given, so
// callers pass upper-cased text and keywords.
func ContainsWord(text, kw string) bool {
	if kw == "" {
		return false
	}
	for start := 0; start <= len(text)-len(kw); {
		i := strings.Index(text[start:], kw)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(kw)
		if boundaryBefore(text, i, kw) && boundaryAfter(text, end, kw) {
			return true
		}
		start = i + 1
	}
	return false
}

// ContainsAnyWord reports whether any keyword occurs in text as a word.
func ContainsAnyWord(text string, keywords []string) bool {
	for _, kw := range keywords {
		if ContainsWord(text, kw) {
			return true
		}
	}
	return false
}

// A keyword that itself starts or ends with punctuation ("FP-") is its own
// boundary on that side.
func boundaryBefore(text string, i int, kw string) bool {
	if i == 0 || !isWordByte(kw[0]) {
		return true
	}
	return !isWordByte(text[i-1])
}

func boundaryAfter(text string, end int, kw string) bool {
	if end == len(text) || !isWordByte(kw[len(kw)-1]) {
		return true
	}
	return !isWordByte(text[end])
}

func isWordByte(b byte) bool {
	return b >= 'A' && b <= 'Z' || b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}

// coveredBy reports whether every token of text also appears in kw. A bare
// "PAYMENT" must not fuzzy-match "PAYMENT FAILED".
func coveredBy(text, kw string) bool {
	kwTokens := tokenSet(kw)
	for tok := range tokenSet(text) {
		if _, ok := kwTokens[tok]; !ok {
			return false
		}
	}
	return true
}

func mustCompile(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, regexp.MustCompile("(?i)"+e))
	}
	return out
}
