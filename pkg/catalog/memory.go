package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"shop-assistant-be/pkg/assistant/slots"
	"shop-assistant-be/pkg/canon"
	"shop-assistant-be/pkg/textnorm"
)

// DictionarySource yields the dictionary snapshot used for synonym containment.
type DictionarySource interface {
	Current() *canon.Dictionary
}

// MemoryExecutor is the reference Executor over an in-memory item list.
type MemoryExecutor struct {
	items []Item
	dict  DictionarySource
}

func NewMemoryExecutor(items []Item, dict DictionarySource) *MemoryExecutor {
	return &MemoryExecutor{items: items, dict: dict}
}

// LoadItemsFile reads a JSON array of items.
func LoadItemsFile(path string) ([]Item, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog seed %s: %w", path, err)
	}
	var items []Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("parse catalog seed %s: %w", path, err)
	}
	return items, nil
}

func (e *MemoryExecutor) Search(ctx context.Context, q QuerySignal) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var d *canon.Dictionary
	if e.dict != nil {
		d = e.dict.Current()
	}
	return Select(d, q, e.items), nil
}

// Select filters candidates with the query, orders them and cuts the requested page.
// Backends that pre-filter in storage still run it so every executor ranks alike.
func Select(d *canon.Dictionary, q QuerySignal, candidates []Item) []Item {
	m := NewMatcher(d, q)

	matched := make([]Item, 0, len(candidates))
	for _, it := range candidates {
		if m.Match(it) {
			matched = append(matched, it)
		}
	}

	SortItems(matched, q.Sort)
	return Page(matched, q.Offset)
}

// Matcher applies the filter half of the contract to single items.
type Matcher struct {
	dict          *canon.Dictionary
	q             QuerySignal
	category      string
	productForms  []string
	categoryForms []string
	model         string
	attrs         []string
}

func NewMatcher(d *canon.Dictionary, q QuerySignal) *Matcher {
	m := &Matcher{dict: d, q: q, model: textnorm.Normalize(q.Model), attrs: slots.NewAttributeSet(q.Attributes...)}
	if q.Product != "" {
		m.productForms = d.SurfaceForms(q.Product)
		if len(m.productForms) == 0 {
			m.productForms = []string{textnorm.Normalize(q.Product)}
		}
	}
	// A product-only query is still held to the product's own category.
	m.category = q.Category
	if m.category == "" {
		m.category, _ = d.CategoryOf(q.Product)
	}
	if m.category != "" {
		for _, p := range d.ProductsIn(m.category) {
			m.categoryForms = append(m.categoryForms, d.SurfaceForms(p)...)
		}
	}
	return m
}

func (m *Matcher) Match(it Item) bool {
	title := haystack(it.Title)

	if m.category != "" && !m.inCategory(it, title) {
		return false
	}
	if len(m.productForms) > 0 && !containsAny(title, m.productForms) {
		return false
	}
	if m.model != "" && !containsPhrase(title, m.model) {
		return false
	}
	if m.q.PriceMin != nil && (it.Price == nil || *it.Price < *m.q.PriceMin) {
		return false
	}
	if m.q.PriceMax != nil && (it.Price == nil || *it.Price > *m.q.PriceMax) {
		return false
	}
	if m.q.StockOnly && !it.InStock {
		return false
	}
	if len(m.attrs) > 0 {
		have := make(map[string]struct{}, len(it.Attributes))
		for _, a := range it.Attributes {
			have[strings.ToLower(strings.TrimSpace(a))] = struct{}{}
		}
		for _, want := range m.attrs {
			if _, ok := have[want]; !ok {
				return false
			}
		}
	}
	return true
}

// inCategory trusts the item's own category whenever the dictionary knows it.
// Title phrases only place items whose category is empty or unknown, so a
// "Capinha iPhone 13" filed under acessorio never passes as a phone.
func (m *Matcher) inCategory(it Item, title string) bool {
	c := textnorm.Normalize(it.Category)
	if resolved, ok := m.dict.ResolveCategory(c); ok {
		return resolved == m.category
	}
	if c != "" && (c == m.category || textnorm.Singularize(c) == m.category) {
		return true
	}
	return containsAny(title, m.categoryForms)
}

// SortItems orders items in place. Relevance puts in-stock items first, then cheaper
// ones; unpriced items always sort last.
func SortItems(items []Item, order slots.SortOrder) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if order == slots.SortRelevance && a.InStock != b.InStock {
			return a.InStock
		}
		if (a.Price == nil) != (b.Price == nil) {
			return a.Price != nil
		}
		if a.Price == nil {
			return a.ID < b.ID
		}
		if *a.Price != *b.Price {
			if order == slots.SortDescending {
				return *a.Price > *b.Price
			}
			return *a.Price < *b.Price
		}
		return a.ID < b.ID
	})
}

// Page applies offset then takes PageSize.
func Page(items []Item, offset int) []Item {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []Item{}
	}
	end := offset + PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// haystack is the padded normalized title plus its singularized tokens, so
// "Perfumes Importados" still contains "perfume".
func haystack(title string) string {
	tokens := textnorm.NormalizeTokens(title)
	singular := make([]string, len(tokens))
	for i, tok := range tokens {
		singular[i] = textnorm.Singularize(tok)
	}
	return " " + strings.Join(tokens, " ") + " | " + strings.Join(singular, " ") + " "
}

func containsPhrase(hay, phrase string) bool {
	return phrase != "" && strings.Contains(hay, " "+phrase+" ")
}

func containsAny(hay string, phrases []string) bool {
	for _, p := range phrases {
		if containsPhrase(hay, p) {
			return true
		}
	}
	return false
}
