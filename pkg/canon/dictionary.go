// FILE: pkg/canon/dictionary.go
// PURPOSE: Read-only snapshot mapping surface tokens to canonical products/categories

package canon

import (
	"errors"
	"sort"
	"strings"

	"shop-assistant-be/pkg/textnorm"
)

// ErrInvalidDictionary is returned when a dictionary document has no usable entries.
var ErrInvalidDictionary = errors.New("canon: invalid dictionary")

// maxPhraseLen is the longest multi-token surface form matched (e.g. "fone de ouvido").
const maxPhraseLen = 3

// Dictionary is immutable once published to a Store. Build a new one to change it.
type Dictionary struct {
	ProductCanon      map[string]string `json:"productCanon"`
	CategoryCanon     map[string]string `json:"categoryCanon"`
	ProductToCategory map[string]string `json:"productToCategory"`
}

// Match is the outcome of scanning a token list against the dictionary.
type Match struct {
	Product  string
	Category string
	Token    string // surface form that produced the match
}

// Found reports whether the scan resolved anything.
func (m Match) Found() bool {
	return m.Product != "" || m.Category != ""
}

// Resolve maps a surface token to a canonical product: exact, then singularized.
func (d *Dictionary) Resolve(token string) (string, bool) {
	if d == nil {
		return "", false
	}
	return lookup(d.ProductCanon, token)
}

// ResolveCategory maps a surface token to a canonical category: exact, then singularized.
func (d *Dictionary) ResolveCategory(token string) (string, bool) {
	if d == nil {
		return "", false
	}
	return lookup(d.CategoryCanon, token)
}

// CategoryOf returns the category of a canonical product.
func (d *Dictionary) CategoryOf(product string) (string, bool) {
	if d == nil || product == "" {
		return "", false
	}
	c, ok := d.ProductToCategory[product]
	return c, ok
}

// Scan resolves the first product (or, failing that, category) mentioned in the
// normalized tokens. Longer phrases win over single tokens at the same position.
func (d *Dictionary) Scan(tokens []string) Match {
	if d == nil {
		return Match{}
	}

	var category Match
	for i := range tokens {
		for n := maxPhraseLen; n >= 1; n-- {
			if i+n > len(tokens) {
				continue
			}
			phrase := strings.Join(tokens[i:i+n], " ")
			if p, ok := d.Resolve(phrase); ok {
				c, _ := d.CategoryOf(p)
				return Match{Product: p, Category: c, Token: phrase}
			}
			if category.Category == "" {
				if c, ok := d.ResolveCategory(phrase); ok {
					category = Match{Category: c, Token: phrase}
				}
			}
		}
	}
	return category
}

// SurfaceForms lists every token that resolves to product, including the product itself.
func (d *Dictionary) SurfaceForms(product string) []string {
	if d == nil || product == "" {
		return nil
	}
	seen := map[string]struct{}{product: {}}
	forms := []string{product}
	for token, p := range d.ProductCanon {
		if p != product {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		forms = append(forms, token)
	}
	sort.Strings(forms[1:])
	return forms
}

// ProductsIn lists canonical products assigned to category, sorted.
func (d *Dictionary) ProductsIn(category string) []string {
	if d == nil || category == "" {
		return nil
	}
	var products []string
	for p, c := range d.ProductToCategory {
		if c == category {
			products = append(products, p)
		}
	}
	sort.Strings(products)
	return products
}

// Validate enforces the snapshot invariants in place and returns the categories that
// had to be defaulted into CategoryCanon. Canonical ids map to themselves.
func (d *Dictionary) Validate() ([]string, error) {
	if d == nil || (len(d.ProductCanon) == 0 && len(d.CategoryCanon) == 0) {
		return nil, ErrInvalidDictionary
	}
	if d.ProductCanon == nil {
		d.ProductCanon = map[string]string{}
	}
	if d.CategoryCanon == nil {
		d.CategoryCanon = map[string]string{}
	}
	if d.ProductToCategory == nil {
		d.ProductToCategory = map[string]string{}
	}

	for _, product := range d.ProductCanon {
		if _, ok := d.ProductCanon[product]; !ok {
			d.ProductCanon[product] = product
		}
	}
	for _, category := range d.CategoryCanon {
		if _, ok := d.CategoryCanon[category]; !ok {
			d.CategoryCanon[category] = category
		}
	}

	var defaulted []string
	for _, category := range d.ProductToCategory {
		if _, ok := d.CategoryCanon[category]; ok {
			continue
		}
		d.CategoryCanon[category] = category
		defaulted = append(defaulted, category)
	}
	sort.Strings(defaulted)
	return defaulted, nil
}

// Size returns the number of surface tokens known to the dictionary.
func (d *Dictionary) Size() int {
	if d == nil {
		return 0
	}
	return len(d.ProductCanon) + len(d.CategoryCanon)
}

func lookup(table map[string]string, token string) (string, bool) {
	if token == "" || table == nil {
		return "", false
	}
	if v, ok := table[token]; ok {
		return v, true
	}
	if s := textnorm.Singularize(token); s != token {
		if v, ok := table[s]; ok {
			return v, true
		}
	}
	return "", false
}
