package coverage

import (
	"regexp"
	"strings"
)

var tokenRe = regexp.MustCompile(`[a-z0-9]+`)

// Tokenize lowercases text and splits it into alphanumeric tokens.
func Tokenize(text string) []string {
	return tokenRe.FindAllString(strings.ToLower(text), -1)
}

// tokenSet builds a set from tokens.
func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// overlapRatio computes the fraction of distinct rule tokens present in
// the span set. Returns 0 when the rule has no tokens.
func overlapRatio(ruleTokens map[string]struct{}, span map[string]struct{}) float64 {
	if len(ruleTokens) == 0 {
		return 0
	}
	matched := 0
	for t := range ruleTokens {
		if _, ok := span[t]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(ruleTokens))
}
