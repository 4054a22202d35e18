// Command build_canon derives a canonical dictionary from a catalog export.
//
// The input is either a catalog seed (array of items with title and category) or
// an array of {"name","category"} records. The output is the JSON document the
// server loads from CANON_DICTIONARY_PATH.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"shop-assistant-be/pkg/canon"
)

type inputRow struct {
	Name     string `json:"name"`
	Title    string `json:"title"`
	Category string `json:"category"`
}

func main() {
	in := flag.String("in", "data/catalog.json", "catalog export to read")
	out := flag.String("out", "data/canon.json", "dictionary file to write")
	merge := flag.Bool("merge-default", true, "keep the compiled-in surface forms for products not in the export")
	flag.Parse()

	raw, err := os.ReadFile(*in)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	var rows []inputRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		log.Fatalf("Error: parse %s: %v", *in, err)
	}

	records := make([]canon.Record, 0, len(rows))
	for _, r := range rows {
		name := r.Name
		if name == "" {
			name = r.Title
		}
		records = append(records, canon.Record{Name: name, Category: r.Category})
	}

	dict := canon.Build(records)
	if *merge {
		dict = canon.Merge(canon.Default(), dict)
	}

	defaulted, err := dict.Validate()
	if err != nil {
		log.Fatalf("Error: built dictionary is unusable: %v", err)
	}
	if len(defaulted) > 0 {
		log.Printf("Warn: categories defaulted to themselves: %v", defaulted)
	}

	data, err := json.MarshalIndent(dict, "", "  ")
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		log.Fatalf("Error: %v", err)
	}

	log.Printf("✅ Wrote %s: %d records, %d products, %d category forms",
		*out, len(records), len(dict.ProductToCategory), len(dict.CategoryCanon))
}
