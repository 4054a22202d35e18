// FILE: pkg/assistant/intent/classifier.go
// PURPOSE: Ordered pattern classifier over normalized utterances

package intent

import (
	"regexp"
	"unicode"

	"shop-assistant-be/pkg/assistant/slots"
	"shop-assistant-be/pkg/canon"
	"shop-assistant-be/pkg/textnorm"
)

type Intent string

const (
	ProductSearch Intent = "PRODUCT_SEARCH"
	SmallTalk     Intent = "SMALL_TALK"
	Help          Intent = "HELP"
	TimeQuery     Intent = "TIME_QUERY"
	WhoAmI        Intent = "WHOAMI"
	OutOfDomain   Intent = "OUT_OF_DOMAIN"
	Unknown       Intent = "UNKNOWN"
)

// Conversational reports whether the intent is answered without touching the catalog.
func (i Intent) Conversational() bool {
	switch i {
	case SmallTalk, Help, TimeQuery, WhoAmI:
		return true
	}
	return false
}

// Result is the classification of one turn. Product and Category are canonical ids
// when the dictionary matched; with Fallback set, Product is the raw token.
type Result struct {
	Intent   Intent
	Product  string
	Category string
	Token    string
	Fallback bool
}

// DictionarySource yields the dictionary snapshot for the current turn.
type DictionarySource interface {
	Current() *canon.Dictionary
}

type rule struct {
	tag      Intent
	patterns []*regexp.Regexp
}

// Order matters: conversational classes must win over product matching on short inputs.
var conversationalRules = []rule{
	{
		tag: TimeQuery,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\b(?:que|q|qual)\s+horas?\b`),
			regexp.MustCompile(`\bque\s+hora\s+es\b`),
			regexp.MustCompile(`\bhoras?\s+(?:sao|agora|son)\b`),
			regexp.MustCompile(`\b(?:que|qual)\s+(?:dia|data)\s+(?:e|es)\s+hoje\b`),
			regexp.MustCompile(`\bque\s+(?:dia|fecha)\s+es\s+hoy\b`),
		},
	},
	{
		tag: SmallTalk,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`^(?:(?:oi+|ola|hola|hey|hi|hello|eai|e ai|opa|bom dia|boa tarde|boa noite|buen dia|buenos dias|buenas|buenas tardes|buenas noches|tudo bem|tudo bom|como vai|como voce esta|como estas|que tal|obrigad[oa]|muito obrigad[oa]|valeu|gracias|muchas gracias|tchau|ate logo|adios|hasta luego|blz|beleza|tranquilo)\s*)+$`),
		},
	},
	{
		tag: Help,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`^(?:ajuda|help|ayuda|socorro|menu|preciso de ajuda|necesito ayuda)$`),
			regexp.MustCompile(`\bcomo\s+(?:funciona|te uso|usar|uso isso)\b`),
			regexp.MustCompile(`\bo\s+que\s+(?:voce|vc)\s+(?:faz|pode fazer|sabe fazer)\b`),
			regexp.MustCompile(`\bque\s+(?:puedes|sabes)\s+hacer\b`),
		},
	},
	{
		tag: WhoAmI,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\bquem\s+(?:e|es)\s+(?:voce|vc|tu)\b`),
			regexp.MustCompile(`\bquien\s+eres\b`),
			regexp.MustCompile(`\b(?:voce|vc)\s+e\s+(?:um\s+|uma\s+)?(?:robo|bot|humano|pessoa|ia)\b`),
			regexp.MustCompile(`\beres\s+(?:un\s+)?(?:bot|robot|humano|ia)\b`),
			regexp.MustCompile(`\bqual\s+(?:e\s+)?(?:o\s+)?seu\s+nome\b`),
			regexp.MustCompile(`\bcomo\s+(?:te\s+llamas|(?:voce|vc)\s+se\s+chama)\b`),
		},
	},
}

// words that are never product names on their own
var fallbackStopwords = map[string]struct{}{
	"sim": {}, "nao": {}, "ok": {}, "okay": {}, "si": {}, "no": {}, "talvez": {},
	"quero": {}, "isso": {}, "esse": {}, "essa": {}, "este": {}, "aquele": {}, "outro": {}, "outra": {},
	"mais": {}, "tambem": {}, "tambien": {}, "mas": {}, "entao": {}, "bom": {}, "boa": {}, "legal": {},
	"hmm": {}, "uhum": {}, "certo": {}, "claro": {}, "nada": {}, "tudo": {}, "qualquer": {},
}

const minInputLen = 2

type Classifier struct {
	dict DictionarySource
}

func NewClassifier(dict DictionarySource) *Classifier {
	return &Classifier{dict: dict}
}

// Classify tags already-normalized text with exactly one intent.
func (c *Classifier) Classify(normalized string) Result {
	var d *canon.Dictionary
	if c != nil && c.dict != nil {
		d = c.dict.Current()
	}
	return ClassifyWith(d, normalized)
}

// ClassifyWith classifies against an explicit dictionary snapshot. A nil dictionary
// disables product resolution but keeps every other rule.
func ClassifyWith(d *canon.Dictionary, normalized string) Result {
	if len(normalized) < minInputLen {
		return Result{Intent: Unknown}
	}

	for _, r := range conversationalRules {
		for _, p := range r.patterns {
			if p.MatchString(normalized) {
				return Result{Intent: r.tag}
			}
		}
	}

	tokens := textnorm.Tokenize(normalized)
	if m := d.Scan(tokens); m.Found() {
		return Result{Intent: ProductSearch, Product: m.Product, Category: m.Category, Token: m.Token}
	}

	if len(tokens) == 1 && fallbackCandidate(tokens[0]) {
		return Result{Intent: ProductSearch, Product: tokens[0], Token: tokens[0], Fallback: true}
	}

	return Result{Intent: Unknown}
}

func fallbackCandidate(tok string) bool {
	if len(tok) < 3 || slots.IsSlotToken(tok) {
		return false
	}
	if _, stop := fallbackStopwords[tok]; stop {
		return false
	}
	for _, r := range tok {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
