package patterns

import (
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// TokenSetRatio scores the similarity of two strings on a 0-100 scale,
// ignoring case and token order. When every token of one side appears in
// the other the score is 100.
func TokenSetRatio(a, b string) float64 {
	return float64(fuzzy.TokenSetRatio(strings.ToUpper(a), strings.ToUpper(b)))
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(strings.ToUpper(s)) {
		set[tok] = struct{}{}
	}
	return set
}
