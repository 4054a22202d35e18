// FILE: pkg/catalog/catalog.go
// PURPOSE: Structured query, catalog item and the executor contract

package catalog

import (
	"context"

	"shop-assistant-be/pkg/assistant/slots"
)

// PageSize is how many items one search returns at most.
const PageSize = 10

// QuerySignal is the structured search request built fresh each turn.
type QuerySignal struct {
	Product    string          `json:"product,omitempty"`
	Category   string          `json:"category,omitempty"`
	Model      string          `json:"model,omitempty"`
	Attributes []string        `json:"attributes,omitempty"`
	PriceMin   *float64        `json:"price_min,omitempty"`
	PriceMax   *float64        `json:"price_max,omitempty"`
	Sort       slots.SortOrder `json:"sort,omitempty"`
	StockOnly  bool            `json:"stock_only,omitempty"`
	Offset     int             `json:"offset,omitempty"`

	// Fallback marks Product as a raw token the dictionary did not know.
	Fallback bool `json:"fallback,omitempty"`
}

// FocusKey identifies what the query is about, product first.
func (q QuerySignal) FocusKey() string {
	return FocusKey(q.Product, q.Category)
}

// FocusKey builds the key used to compare conversational focus across turns.
func FocusKey(product, category string) string {
	switch {
	case product != "":
		return "product:" + product
	case category != "":
		return "category:" + category
	}
	return ""
}

// HasPrice reports whether either bound is set.
func (q QuerySignal) HasPrice() bool {
	return q.PriceMin != nil || q.PriceMax != nil
}

// Clone returns a deep copy.
func (q *QuerySignal) Clone() *QuerySignal {
	if q == nil {
		return nil
	}
	c := *q
	if q.Attributes != nil {
		c.Attributes = append([]string(nil), q.Attributes...)
	}
	if q.PriceMin != nil {
		v := *q.PriceMin
		c.PriceMin = &v
	}
	if q.PriceMax != nil {
		v := *q.PriceMax
		c.PriceMax = &v
	}
	return &c
}

// Item is a catalog record as the assistant sees it. The catalog owns it.
type Item struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Category   string   `json:"category"`
	Price      *float64 `json:"price,omitempty"`
	InStock    bool     `json:"in_stock"`
	Attributes []string `json:"attributes,omitempty"`
	Brand      *string  `json:"brand,omitempty"`
}

// Executor runs a QuerySignal against a catalog: filter, sort, then offset and take PageSize.
type Executor interface {
	Search(ctx context.Context, q QuerySignal) ([]Item, error)
}
