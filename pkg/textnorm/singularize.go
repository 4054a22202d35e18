package textnorm

import "strings"

type suffixRule struct {
	suffix      string
	replacement string
	minLen      int // rule applies only when len(token) > minLen
}

// ORDER MATTERS: first matching rule wins, rules never chain.
var singularRules = []suffixRule{
	{suffix: "oes", replacement: "ao"},
	{suffix: "aes", replacement: "ao"},
	{suffix: "is", replacement: "l"},
	{suffix: "ns", replacement: "m"},
	{suffix: "es", replacement: "", minLen: 4},
	{suffix: "s", replacement: "", minLen: 3},
}

// Singularize applies pt/es plural suffix rules to a normalized token.
// It is total and side-effect free; tokens matching no rule are returned as is.
func Singularize(token string) string {
	for _, rule := range singularRules {
		if !strings.HasSuffix(token, rule.suffix) {
			continue
		}
		if len(token) <= rule.minLen || len(token) == len(rule.suffix) {
			continue
		}
		return token[:len(token)-len(rule.suffix)] + rule.replacement
	}
	return token
}
