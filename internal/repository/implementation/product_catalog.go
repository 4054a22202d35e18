package implementation

import (
	"context"
	"fmt"

	"shop-assistant-be/internal/mapper"
	"shop-assistant-be/internal/repository/contract"
	"shop-assistant-be/internal/repository/specification"
	"shop-assistant-be/pkg/canon"
	"shop-assistant-be/pkg/catalog"
)

// ProductCatalog executes catalog queries against the products table. Price and
// stock bounds are pushed into SQL; synonym matching and ranking reuse catalog.Select.
type ProductCatalog struct {
	repo   contract.ProductRepository
	dict   catalog.DictionarySource
	mapper *mapper.AssistantMapper
}

var _ catalog.Executor = (*ProductCatalog)(nil)

func NewProductCatalog(repo contract.ProductRepository, dict catalog.DictionarySource) *ProductCatalog {
	return &ProductCatalog{repo: repo, dict: dict, mapper: mapper.NewAssistantMapper()}
}

func (c *ProductCatalog) Search(ctx context.Context, q catalog.QuerySignal) ([]catalog.Item, error) {
	products, err := c.repo.FindAll(ctx, QuerySpecifications(q)...)
	if err != nil {
		return nil, fmt.Errorf("load catalog candidates: %w", err)
	}

	candidates := make([]catalog.Item, len(products))
	for i, p := range products {
		candidates[i] = c.mapper.ProductToItem(p)
	}

	var d *canon.Dictionary
	if c.dict != nil {
		d = c.dict.Current()
	}
	return catalog.Select(d, q, candidates), nil
}

// QuerySpecifications lists the filters of q that storage can apply exactly.
func QuerySpecifications(q catalog.QuerySignal) []specification.Specification {
	specs := []specification.Specification{specification.OrderBy{Field: "id"}}
	if q.PriceMin != nil {
		specs = append(specs, specification.PriceAtLeast{Min: *q.PriceMin})
	}
	if q.PriceMax != nil {
		specs = append(specs, specification.PriceAtMost{Max: *q.PriceMax})
	}
	if q.StockOnly {
		specs = append(specs, specification.InStockOnly{})
	}
	return specs
}
