// FILE: pkg/assistant/policy/policy.go
// PURPOSE: Per-turn response shape from result count and session history

package policy

import (
	"shop-assistant-be/pkg/assistant/slots"
	"shop-assistant-be/pkg/catalog"
)

type ResponseType string

const (
	Results       ResponseType = "results"
	Clarification ResponseType = "clarification"
	CrossSell     ResponseType = "cross_sell"
	NotFound      ResponseType = "not_found"
)

type ClarificationFocus string

const (
	AskModel    ClarificationFocus = "model"
	AskColor    ClarificationFocus = "color"
	AskPrice    ClarificationFocus = "price"
	AskCategory ClarificationFocus = "category"
)

// MaxResults is the largest result set presented without narrowing first.
const MaxResults = 5

// Input is what the policy needs from one executed turn.
type Input struct {
	Query   catalog.QuerySignal
	Results []catalog.Item
	// Focus key of the session's last zero-result turn.
	FailedFocus string
}

// Decision is the shape of the reply. At most one clarification focus is ever set.
type Decision struct {
	Type        ResponseType
	Focus       ClarificationFocus
	Items       []catalog.Item
	Suggestions []string
	Query       catalog.QuerySignal
	Total       int

	// MarkFailure asks the caller to remember this focus as failed;
	// ClearFailure asks it to forget any remembered failure.
	MarkFailure  bool
	ClearFailure bool
}

// alternatives offered when the same search fails twice
var alternatives = map[string][]string{
	"celular":    {"galaxy", "motorola", "xiaomi"},
	"notebook":   {"macbook", "tablet"},
	"tablet":     {"ipad", "notebook"},
	"tv":         {"caixa de som", "videogame"},
	"audio":      {"fone", "caixa de som", "airpods"},
	"perfumaria": {"perfume importado", "kit de perfumes"},
	"drone":      {"camera", "gopro"},
	"videogame":  {"playstation", "xbox", "nintendo"},
	"relogio":    {"smartwatch", "fone"},
	"roupa":      {"camiseta", "tenis"},
	"calcado":    {"tenis", "camiseta"},
	"acessorio":  {"carregador", "capinha", "cabo"},
	"camera":     {"drone", "gopro"},
}

var defaultAlternatives = []string{"celular", "fone", "perfume"}

// accessories offered next to a small result set
var accessories = map[string][]string{
	"celular":   {"capinha", "pelicula", "carregador"},
	"notebook":  {"mouse", "mochila"},
	"tablet":    {"capinha", "pelicula"},
	"tv":        {"caixa de som", "suporte de parede"},
	"audio":     {"cabo", "carregador"},
	"drone":     {"bateria extra", "cartao de memoria"},
	"videogame": {"controle extra", "headset"},
	"relogio":   {"pulseira", "carregador"},
	"camera":    {"cartao de memoria", "tripe"},
}

// Decide picks the response shape for an executed query.
func Decide(in Input) Decision {
	n := len(in.Results)
	d := Decision{Query: in.Query, Total: n}

	switch {
	case n == 0:
		key := in.Query.FocusKey()
		if key != "" && in.FailedFocus == key {
			d.Suggestions = suggest(alternatives[in.Query.Category], in.Query.Product)
			if len(d.Suggestions) == 0 && in.Query.Category == "" {
				d.Suggestions = suggest(defaultAlternatives, in.Query.Product)
			}
			// Stays not_found so clients still see the failure; suggestions ride along.
			d.Type = NotFound
			d.MarkFailure = true
			return d
		}
		d.Type = Clarification
		d.Focus = ClarifyFocus(in.Query)
		d.MarkFailure = true

	case n > MaxResults:
		d.Type = Clarification
		d.Focus = ClarifyFocus(in.Query)
		d.ClearFailure = true

	default:
		d.Type = Results
		d.Items = in.Results
		d.Suggestions = suggest(accessories[in.Query.Category], in.Query.Product)
		d.ClearFailure = true
	}
	return d
}

// ClarifyFocus picks the single thing to ask about: model, then budget, then color,
// then a more specific category.
func ClarifyFocus(q catalog.QuerySignal) ClarificationFocus {
	switch {
	case q.Product != "" && q.Model == "":
		return AskModel
	case !q.HasPrice() && q.Sort == slots.SortRelevance:
		return AskPrice
	case len(q.Attributes) == 0:
		return AskColor
	default:
		return AskCategory
	}
}

func suggest(pool []string, exclude string) []string {
	out := make([]string, 0, len(pool))
	for _, s := range pool {
		if s != exclude {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
