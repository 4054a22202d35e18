// FILE: pkg/assistant/query/builder.go
// PURPOSE: Merge classifier output, slots and session focus into one catalog query

package query

import (
	"regexp"
	"strings"

	"shop-assistant-be/pkg/assistant/intent"
	"shop-assistant-be/pkg/assistant/slots"
	"shop-assistant-be/pkg/catalog"
	"shop-assistant-be/pkg/store"
)

// Input is everything the builder sees for one turn.
type Input struct {
	Intent intent.Result
	Slots  slots.Slots
	Price  slots.PriceSignals
	Focus  store.Focus
	// Normalized tokens of the utterance, for continuation markers and paging.
	Tokens []string
}

// Outcome is either a query plus the focus to persist, or an out-of-domain turn.
type Outcome struct {
	Query        *catalog.QuerySignal
	NewFocus     store.Focus
	FocusChanged bool
	SlotFilled   bool
	Paging       bool
	OutOfDomain  bool
}

var continuationMarkers = map[string]struct{}{
	"e": {}, "y": {}, "tambem": {}, "tambien": {}, "mais": {}, "mas": {},
	"and": {}, "also": {}, "more": {},
}

var rePaging = regexp.MustCompile(`^(?:(?:e\s+)?(?:ver|mostrar|mostra|me mostra|quero ver|manda)\s+)?(?:mais|mas)(?:\s+(?:opcoes|opciones|resultados|produtos|productos|itens|modelos))?$|^(?:proxima pagina|proximos|proximas|siguiente|siguientes|outras opcoes|otras opciones|pagina seguinte)$`)

// IsContinuation reports whether the utterance opens with a continuation marker.
func IsContinuation(tokens []string) bool {
	if len(tokens) == 0 {
		return false
	}
	_, ok := continuationMarkers[tokens[0]]
	return ok
}

// IsPaging reports whether the utterance only asks for more of the same results.
func IsPaging(tokens []string) bool {
	return len(tokens) > 0 && rePaging.MatchString(strings.Join(tokens, " "))
}

// Build merges the turn into a fresh QuerySignal. Current-turn values always win over
// anything carried from the session.
func Build(in Input) Outcome {
	res := in.Intent
	hasSubject := res.Intent == intent.ProductSearch && (res.Product != "" || res.Category != "")

	if !hasSubject && IsPaging(in.Tokens) && in.Focus.LastQuery != nil {
		q := in.Focus.LastQuery.Clone()
		q.Offset += catalog.PageSize
		return Outcome{Query: q, NewFocus: store.Focus{Product: in.Focus.Product, Category: in.Focus.Category, LastQuery: q}, Paging: true}
	}

	if hasSubject {
		return buildFromSubject(in)
	}

	if hasConstraints(in.Slots, in.Price) && !in.Focus.Empty() {
		return fillSlots(in)
	}

	return Outcome{OutOfDomain: true, NewFocus: in.Focus}
}

func buildFromSubject(in Input) Outcome {
	res := in.Intent
	q := &catalog.QuerySignal{
		Product:  res.Product,
		Category: res.Category,
		Fallback: res.Fallback,
	}

	// A bare category keeps the focused product of that same category unless the
	// user signals a switch.
	if res.Product == "" && !IsContinuation(in.Tokens) &&
		in.Focus.Product != "" && in.Focus.Category == res.Category {
		q.Product = in.Focus.Product
	}

	applyCurrent(q, in.Slots, in.Price)

	newFocus := store.Focus{Product: q.Product, Category: q.Category, LastQuery: q}
	return Outcome{
		Query:        q,
		NewFocus:     newFocus,
		FocusChanged: newFocus.Key() != in.Focus.Key(),
	}
}

func fillSlots(in Input) Outcome {
	q := &catalog.QuerySignal{Product: in.Focus.Product, Category: in.Focus.Category}

	if last := in.Focus.LastQuery; last != nil && last.FocusKey() == in.Focus.Key() {
		q = last.Clone()
		q.Offset = 0
	}

	applyCurrent(q, in.Slots, in.Price)

	return Outcome{
		Query:      q,
		NewFocus:   store.Focus{Product: q.Product, Category: q.Category, LastQuery: q},
		SlotFilled: true,
	}
}

// applyCurrent layers this turn's explicit values over q.
func applyCurrent(q *catalog.QuerySignal, s slots.Slots, p slots.PriceSignals) {
	if s.Model != "" {
		q.Model = s.Model
	}
	q.Attributes = slots.UnionAttributes(q.Attributes, s.Attributes)
	if len(q.Attributes) == 0 {
		q.Attributes = nil
	}
	if p.Min != nil {
		v := *p.Min
		q.PriceMin = &v
	}
	if p.Max != nil {
		v := *p.Max
		q.PriceMax = &v
	}
	if q.PriceMin != nil && q.PriceMax != nil && *q.PriceMin > *q.PriceMax {
		// a new bound contradicting an inherited one replaces it
		if p.Min != nil && p.Max == nil {
			q.PriceMax = nil
		} else if p.Max != nil && p.Min == nil {
			q.PriceMin = nil
		}
	}
	if p.Sort != slots.SortRelevance {
		q.Sort = p.Sort
	}
	if s.StockOnly {
		q.StockOnly = true
	}
	q.Offset = p.Offset
}

func hasConstraints(s slots.Slots, p slots.PriceSignals) bool {
	return s.Model != "" || len(s.Attributes) > 0 || s.StockOnly || !p.Empty()
}

// SlotsFromQuery re-derives the slots a query was built from.
func SlotsFromQuery(q catalog.QuerySignal) slots.Slots {
	out := slots.FromAttributes(q.Attributes)
	out.Model = q.Model
	out.StockOnly = q.StockOnly
	out.Price = slots.PriceSignals{Min: q.PriceMin, Max: q.PriceMax, Sort: q.Sort, Offset: q.Offset}
	return out
}
