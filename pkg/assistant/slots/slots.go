// FILE: pkg/assistant/slots/slots.go
// PURPOSE: Model, capacity, color, size and stock slots from raw utterances

package slots

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"shop-assistant-be/pkg/textnorm"
)

// Slots are the attributes pulled from one user turn.
type Slots struct {
	Model      string
	Capacity   string
	Color      string
	Size       string
	StockOnly  bool
	Attributes []string
	Price      PriceSignals
}

// Empty reports whether nothing was extracted.
func (s Slots) Empty() bool {
	return s.Model == "" && len(s.Attributes) == 0 && !s.StockOnly && s.Price.Empty()
}

var (
	reLabeledModel  = regexp.MustCompile(`\b(?:linha|modelo|model|versao|version|serie)\s+([a-z]?\d{1,4}[a-z]?|[a-z]+)(?:\s+(pro max|pro|plus|ultra|max|mini|lite))?\b`)
	rePlainModel    = regexp.MustCompile(`\b(\d{2,4})(?:\s*(pro max|pro|plus|ultra|max|mini|lite))?\b`)
	reCapacity      = regexp.MustCompile(`\b(\d{1,4})\s*(gb|tb)\b`)
	reMeasure       = regexp.MustCompile(`\b(\d{1,4})\s*(ml|pol|polegadas|pulgadas|hz|mah|w)\b`)
	reLabeledSize   = regexp.MustCompile(`\b(?:tamanho|tam|talla|talle|numero)\s+(xxl|xgg|xg|xl|xs|gg|pp|p|m|g|s|l|\d{2})\b`)
	reCurrencyAfter = regexp.MustCompile(`^\s*(?:reais|real|pesos|dolares|guaranies|mil\b|k\b|contos)`)
	reStock         = regexp.MustCompile(`\b(?:em estoque|pronta entrega|disponive(?:l|is)|en stock|disponibles?|a pronta entrega)\b`)
)

var spelledModels = map[string]string{
	"dez": "10", "onze": "11", "doze": "12", "treze": "13", "quatorze": "14", "catorze": "14",
	"quinze": "15", "dezesseis": "16",
	"diez": "10", "once": "11", "doce": "12", "trece": "13", "quince": "15", "dieciseis": "16",
}

// spelled numbers that are also common words only count after a label
var spelledNeedsLabel = map[string]struct{}{"dez": {}, "diez": {}, "once": {}, "doce": {}}

var colors = map[string]string{
	"preto": "preto", "preta": "preto", "negro": "preto", "negra": "preto", "black": "preto",
	"branco": "branco", "branca": "branco", "blanco": "branco", "blanca": "branco", "white": "branco",
	"azul": "azul", "blue": "azul",
	"vermelho": "vermelho", "vermelha": "vermelho", "rojo": "vermelho", "roja": "vermelho", "red": "vermelho",
	"verde": "verde", "green": "verde",
	"amarelo": "amarelo", "amarela": "amarelo", "amarillo": "amarelo", "amarilla": "amarelo",
	"rosa": "rosa", "pink": "rosa",
	"roxo": "roxo", "roxa": "roxo", "morado": "roxo", "morada": "roxo", "lilas": "roxo",
	"cinza": "cinza", "gris": "cinza", "grafite": "cinza",
	"prata": "prata", "prateado": "prata", "prateada": "prata", "plata": "prata", "plateado": "prata", "silver": "prata",
	"dourado": "dourado", "dourada": "dourado", "dorado": "dourado", "dorada": "dourado", "gold": "dourado",
	"laranja": "laranja", "naranja": "laranja",
	"marrom": "marrom", "marron": "marrom",
	"bege": "bege", "beige": "bege",
}

// sizes that can stand alone; single letters need a label
var bareSizes = map[string]struct{}{
	"pp": {}, "gg": {}, "xg": {}, "xgg": {}, "xs": {}, "xl": {}, "xxl": {},
}

var unitAliases = map[string]string{"polegadas": "pol", "pulgadas": "pol"}

// Extract pulls every slot from raw user text.
func Extract(raw string) Slots {
	folded := textnorm.Fold(raw)

	price, rest := extractPrice(folded)
	out := Slots{Price: price}
	attrs := make([]string, 0, 4)

	for _, m := range reCapacity.FindAllStringSubmatchIndex(rest, -1) {
		value := rest[m[2]:m[3]] + rest[m[4]:m[5]]
		if out.Capacity == "" {
			out.Capacity = value
		}
		attrs = append(attrs, value)
	}
	rest = reCapacity.ReplaceAllStringFunc(rest, spaces)

	for _, m := range reMeasure.FindAllStringSubmatch(rest, -1) {
		unit := m[2]
		if alias, ok := unitAliases[unit]; ok {
			unit = alias
		}
		attrs = append(attrs, m[1]+unit)
	}
	rest = reMeasure.ReplaceAllStringFunc(rest, spaces)

	if m := reLabeledSize.FindStringSubmatchIndex(rest); m != nil {
		out.Size = rest[m[2]:m[3]]
		attrs = append(attrs, out.Size)
		rest = blank(rest, m[0], m[1])
	}

	out.Model, rest = extractModel(rest)

	normalized := textnorm.Normalize(rest)
	for _, tok := range textnorm.Tokenize(normalized) {
		if c, ok := colors[tok]; ok {
			if out.Color == "" {
				out.Color = c
			}
			attrs = append(attrs, c)
			continue
		}
		if _, ok := bareSizes[tok]; ok && out.Size == "" {
			out.Size = tok
			attrs = append(attrs, tok)
		}
	}

	out.StockOnly = reStock.MatchString(folded)
	out.Attributes = NewAttributeSet(attrs...)
	return out
}

func extractModel(rest string) (string, string) {
	if m := reLabeledModel.FindStringSubmatchIndex(rest); m != nil {
		value := rest[m[2]:m[3]]
		if n, ok := spelledModels[value]; ok {
			value = n
		}
		if hasDigit(value) {
			if m[4] >= 0 {
				value += " " + rest[m[4]:m[5]]
			}
			return value, blank(rest, m[0], m[1])
		}
	}

	for _, tok := range strings.Fields(textnorm.Normalize(rest)) {
		if n, ok := spelledModels[tok]; ok {
			if _, needsLabel := spelledNeedsLabel[tok]; !needsLabel {
				return n, rest
			}
		}
	}

	for _, m := range rePlainModel.FindAllStringSubmatchIndex(rest, -1) {
		// "01310-100": a number glued to a hyphen is a code, not a model
		if m[0] > 0 && rest[m[0]-1] == '-' {
			continue
		}
		if m[3] < len(rest) && rest[m[3]] == '-' {
			continue
		}
		if m[0] > 0 && strings.ContainsRune(".,$", rune(rest[m[0]-1])) {
			continue
		}
		if reCurrencyAfter.MatchString(rest[m[3]:]) || strings.HasSuffix(strings.TrimSpace(rest[:m[0]]), "$") {
			continue
		}
		value := rest[m[2]:m[3]]
		if m[4] >= 0 {
			value += " " + rest[m[4]:m[5]]
		}
		return value, blank(rest, m[0], m[1])
	}
	return "", rest
}

// IsSlotToken reports whether a normalized token is a pure attribute value
// (color, size, capacity, measure or number) rather than a product word.
func IsSlotToken(tok string) bool {
	if tok == "" {
		return false
	}
	if _, ok := colors[tok]; ok {
		return true
	}
	if _, ok := bareSizes[tok]; ok {
		return true
	}
	if _, ok := spelledModels[tok]; ok {
		return true
	}
	if reCapacity.MatchString(tok) || reMeasure.MatchString(tok) {
		return true
	}
	if _, err := strconv.Atoi(tok); err == nil {
		return true
	}
	return !hasLetter(tok)
}

// NewAttributeSet lowercases, trims, de-duplicates and sorts attribute values.
func NewAttributeSet(values ...string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// UnionAttributes merges two attribute sets.
func UnionAttributes(a, b []string) []string {
	merged := make([]string, 0, len(a)+len(b))
	merged = append(merged, a...)
	merged = append(merged, b...)
	return NewAttributeSet(merged...)
}

func spaces(s string) string {
	return strings.Repeat(" ", len(s))
}

func hasDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}

func hasLetter(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return true
		}
	}
	return false
}

// FromAttributes re-derives typed slots from a flat attribute set.
func FromAttributes(attrs []string) Slots {
	out := Slots{Attributes: NewAttributeSet(attrs...)}
	for _, a := range out.Attributes {
		switch {
		case reCapacity.MatchString(a) && out.Capacity == "":
			out.Capacity = a
		case colors[a] == a && out.Color == "":
			out.Color = a
		default:
			if _, ok := bareSizes[a]; ok && out.Size == "" {
				out.Size = a
			}
		}
	}
	return out
}
