// FILE: pkg/assistant/slots/price.go
// PURPOSE: Price bounds, sort directives and money parsing from raw utterances

package slots

import (
	"regexp"
	"strconv"
	"strings"

	"shop-assistant-be/pkg/textnorm"
)

// SortOrder is the requested result ordering. The zero value means relevance.
type SortOrder string

const (
	SortRelevance  SortOrder = ""
	SortAscending  SortOrder = "asc"
	SortDescending SortOrder = "desc"
)

// PriceSignals is what a single turn says about price and ordering.
type PriceSignals struct {
	Min    *float64
	Max    *float64
	Sort   SortOrder
	Offset int
}

// HasPrice reports whether any bound was given.
func (p PriceSignals) HasPrice() bool {
	return p.Min != nil || p.Max != nil
}

// Empty reports whether the turn carried no price or sort signal at all.
func (p PriceSignals) Empty() bool {
	return !p.HasPrice() && p.Sort == SortRelevance && p.Offset == 0
}

const amountExpr = `((?:r\$|us\$|u\$s|gs\.?|\$)?\s*\d[\d.,]*(?:\s*(?:mil|k)\b)?)`

var (
	reNthCheapestDigit = regexp.MustCompile(`\b(\d{1,2})\s*(?:º|°|o|a)\s+(?:mais|mas)\s+barat[oa]s?\b`)
	reNthCheapestWord  = regexp.MustCompile(`\b(primeir[oa]|segund[oa]|terceir[oa]|quart[oa]|quint[oa]|primer[oa]?|tercer[oa]?|cuart[oa])\s+(?:mais|mas)\s+barat[oa]s?\b`)
	reCheapest         = regexp.MustCompile(`\b(?:(?:mais|mas)\s+(?:barat[oa]s?|economic[oa]s?|em conta)|baratinh[oa]s?|barat[oa]s?|economic[oa]s?|menor preco|menor precio)\b`)
	reMostExpensive    = regexp.MustCompile(`\b(?:(?:mais|mas)\s+car[oa]s?|premium|top de linha|gama alta|maior preco|mayor precio)\b`)
	reBetween          = regexp.MustCompile(`\b(?:entre|de)\s+` + amountExpr + `\s+(?:e|y|a|ate|hasta)\s+` + amountExpr)
	reUpTo             = regexp.MustCompile(`\b(?:ate|hasta|no maximo|maximo|abaixo de|menos de|por menos de|debajo de)\s+` + amountExpr)
	reFrom             = regexp.MustCompile(`\b(?:a partir de|acima de|mais de|desde|mas de|no minimo|minimo|arriba de)\s+` + amountExpr)

	reThousandsDot   = regexp.MustCompile(`^\d{1,3}(?:\.\d{3})+$`)
	reThousandsComma = regexp.MustCompile(`^\d{1,3}(?:,\d{3})+$`)
)

var ordinalWords = map[string]int{
	"primeiro": 1, "primeira": 1, "primer": 1, "primero": 1, "primera": 1,
	"segundo": 2, "segunda": 2,
	"terceiro": 3, "terceira": 3, "tercer": 3, "tercero": 3, "tercera": 3,
	"quarto": 4, "quarta": 4, "cuarto": 4, "cuarta": 4,
	"quinto": 5, "quinta": 5,
}

// ExtractPriceSignals reads price bounds and sort intent from raw text.
func ExtractPriceSignals(raw string) PriceSignals {
	signals, _ := extractPrice(textnorm.Fold(raw))
	return signals
}

// extractPrice works on folded text and returns it with the consumed clauses blanked,
// so later matchers do not read prices as model numbers.
func extractPrice(folded string) (PriceSignals, string) {
	var s PriceSignals
	rest := folded

	// Sort: first directive wins.
	if m := reNthCheapestDigit.FindStringSubmatchIndex(rest); m != nil {
		n, _ := strconv.Atoi(rest[m[2]:m[3]])
		if n >= 1 {
			s.Sort, s.Offset = SortAscending, n-1
			rest = blank(rest, m[0], m[1])
		}
	}
	if s.Sort == SortRelevance {
		if m := reNthCheapestWord.FindStringSubmatchIndex(rest); m != nil {
			s.Sort, s.Offset = SortAscending, ordinalWords[rest[m[2]:m[3]]]-1
			if s.Offset < 0 {
				s.Offset = 0
			}
			rest = blank(rest, m[0], m[1])
		}
	}
	if s.Sort == SortRelevance {
		if m := reCheapest.FindStringIndex(rest); m != nil {
			s.Sort = SortAscending
			rest = blank(rest, m[0], m[1])
		} else if m := reMostExpensive.FindStringIndex(rest); m != nil {
			s.Sort = SortDescending
			rest = blank(rest, m[0], m[1])
		}
	}

	// Range: "between" is the most specific clause, then independent bounds.
	if m := reBetween.FindStringSubmatchIndex(rest); m != nil {
		a, okA := ParseMoney(rest[m[2]:m[3]])
		b, okB := ParseMoney(rest[m[4]:m[5]])
		if okA && okB {
			if a > b {
				a, b = b, a
			}
			s.Min, s.Max = &a, &b
			rest = blank(rest, m[0], m[1])
		}
	}
	if !s.HasPrice() {
		if m := reUpTo.FindStringSubmatchIndex(rest); m != nil {
			if v, ok := ParseMoney(rest[m[2]:m[3]]); ok {
				s.Max = &v
				rest = blank(rest, m[0], m[1])
			}
		}
		if m := reFrom.FindStringSubmatchIndex(rest); m != nil {
			if v, ok := ParseMoney(rest[m[2]:m[3]]); ok {
				s.Min = &v
				rest = blank(rest, m[0], m[1])
			}
		}
	}

	return s, rest
}

// ParseMoney parses amounts like "R$ 1.234,56", "US$300", "Gs 150.000", "2 mil" or "99.90".
// Unparseable text yields ok=false rather than an error.
func ParseMoney(text string) (float64, bool) {
	s := strings.TrimSpace(textnorm.Fold(text))
	for _, prefix := range []string{"r$", "us$", "u$s", "gs.", "gs", "$"} {
		if strings.HasPrefix(s, prefix) {
			s = strings.TrimSpace(s[len(prefix):])
			break
		}
	}

	multiplier := 1.0
	for _, suffix := range []string{"mil", "k"} {
		if strings.HasSuffix(s, suffix) {
			multiplier = 1000
			s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
			break
		}
	}

	s = strings.ReplaceAll(s, " ", "")
	s = strings.TrimRight(s, ".,")
	if s == "" {
		return 0, false
	}

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if reThousandsComma.MatchString(s) {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case lastDot >= 0:
		if reThousandsDot.MatchString(s) {
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v * multiplier, true
}

func blank(s string, start, end int) string {
	return s[:start] + strings.Repeat(" ", end-start) + s[end:]
}
