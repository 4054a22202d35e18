package canon

import (
	"sort"

	"shop-assistant-be/pkg/textnorm"
)

// Record is one catalog row fed to the offline canonicalization job.
type Record struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

var builderStopwords = map[string]struct{}{
	"de": {}, "da": {}, "do": {}, "dos": {}, "das": {}, "del": {}, "la": {}, "el": {},
	"para": {}, "com": {}, "con": {}, "kit": {}, "novo": {}, "nuevo": {}, "original": {},
	"o": {}, "a": {}, "e": {}, "y": {}, "combo": {}, "oferta": {},
}

// Build derives a dictionary from catalog names and categories. The canonical
// product of a record is the first significant token of its name; each product is
// assigned the category most of its records carry (ties broken alphabetically).
func Build(records []Record) *Dictionary {
	votes := make(map[string]map[string]int)
	d := &Dictionary{
		ProductCanon:      make(map[string]string),
		CategoryCanon:     make(map[string]string),
		ProductToCategory: make(map[string]string),
	}

	for _, rec := range records {
		category := canonicalCategory(rec.Category)
		product := canonicalProduct(rec.Name)
		if product == "" || category == "" {
			continue
		}

		d.CategoryCanon[category] = category
		if raw := textnorm.Normalize(rec.Category); raw != category {
			d.CategoryCanon[raw] = category
		}

		d.ProductCanon[product] = product
		if votes[product] == nil {
			votes[product] = make(map[string]int)
		}
		votes[product][category]++
	}

	for product, tally := range votes {
		d.ProductToCategory[product] = majority(tally)
	}
	return d
}

func canonicalProduct(name string) string {
	for _, tok := range textnorm.NormalizeTokens(name) {
		if _, stop := builderStopwords[tok]; stop {
			continue
		}
		if !hasLetter(tok) || len(tok) < 2 {
			continue
		}
		return textnorm.Singularize(tok)
	}
	return ""
}

func canonicalCategory(category string) string {
	tokens := textnorm.NormalizeTokens(category)
	if len(tokens) == 0 {
		return ""
	}
	// "Celulares e Smartphones" -> "celular"
	return textnorm.Singularize(tokens[0])
}

func majority(tally map[string]int) string {
	keys := make([]string, 0, len(tally))
	for k := range tally {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	best, bestCount := "", -1
	for _, k := range keys {
		if tally[k] > bestCount {
			best, bestCount = k, tally[k]
		}
	}
	return best
}

func hasLetter(tok string) bool {
	for _, r := range tok {
		if r < '0' || r > '9' {
			return true
		}
	}
	return false
}

// Merge overlays the entries of top on a copy of base. Neither input is modified.
func Merge(base, top *Dictionary) *Dictionary {
	out := &Dictionary{
		ProductCanon:      make(map[string]string),
		CategoryCanon:     make(map[string]string),
		ProductToCategory: make(map[string]string),
	}
	for _, d := range []*Dictionary{base, top} {
		if d == nil {
			continue
		}
		for k, v := range d.ProductCanon {
			out.ProductCanon[k] = v
		}
		for k, v := range d.CategoryCanon {
			out.CategoryCanon[k] = v
		}
		for k, v := range d.ProductToCategory {
			out.ProductToCategory[k] = v
		}
	}
	return out
}
