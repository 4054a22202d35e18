package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"shop-assistant-be/internal/pkg/logger"
	"shop-assistant-be/pkg/assistant/slots"
	"shop-assistant-be/pkg/canon"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type staticDict struct{ d *canon.Dictionary }

func (s staticDict) Current() *canon.Dictionary { return s.d }

func price(v float64) *float64 { return &v }

func fixture() []Item {
	return []Item{
		{ID: "1", Title: "iPhone 12 128GB Preto", Category: "Celulares", Price: price(3999), InStock: true, Attributes: []string{"128GB", "Preto"}},
		{ID: "2", Title: "iPhone 12 64GB Branco", Category: "celular", Price: price(3499), InStock: true, Attributes: []string{"64gb", "branco"}},
		{ID: "3", Title: "iPhone 13 128GB Preto", Category: "celular", Price: price(4999), InStock: false, Attributes: []string{"128gb", "preto"}},
		{ID: "4", Title: "Samsung Galaxy S21", Category: "celular", Price: nil, InStock: true},
		{ID: "5", Title: "Drone DJI Mini 2", Category: "drone", Price: price(2999), InStock: true},
		{ID: "6", Title: "Perfumes Importados Kit", Category: "beleza", Price: price(199.9), InStock: true},
		{ID: "7", Title: "Capinha iPhone 12", Category: "acessorio", Price: price(49.9), InStock: true},
		{ID: "8", Title: "Apple Watch SE 40mm", Category: "relogio", Price: price(2199), InStock: true},
		{ID: "9", Title: "Smart TV 43 Samsung", Category: "tv", Price: price(1899), InStock: true},
		{ID: "10", Title: "Tablet Galaxy Tab A9", Category: "tablet", Price: price(1199), InStock: true},
	}
}

func ids(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestMemoryExecutorSearch(t *testing.T) {
	exec := NewMemoryExecutor(fixture(), staticDict{d: canon.Default()})

	tests := []struct {
		name string
		q    QuerySignal
		want []string
	}{
		{name: "product with relevance", q: QuerySignal{Product: "iphone", Category: "celular"}, want: []string{"2", "1", "3"}},
		{name: "model and attributes", q: QuerySignal{Product: "iphone", Category: "celular", Model: "12", Attributes: []string{"128gb", "PRETO"}}, want: []string{"1"}},
		{name: "synonym containment", q: QuerySignal{Product: "galaxy"}, want: []string{"4"}},
		{name: "brand synonym stays in category", q: QuerySignal{Product: "galaxy", Category: "celular"}, want: []string{"4"}},
		{name: "accessory naming a phone", q: QuerySignal{Product: "iphone", Category: "celular", Model: "12"}, want: []string{"2", "1"}},
		{name: "accessory category", q: QuerySignal{Product: "capinha", Category: "acessorio"}, want: []string{"7"}},
		{name: "category by title product", q: QuerySignal{Category: "perfumaria"}, want: []string{"6"}},
		{name: "category by item category", q: QuerySignal{Category: "celular"}, want: []string{"2", "1", "4", "3"}},
		{name: "price max inclusive", q: QuerySignal{Product: "iphone", PriceMax: price(3999)}, want: []string{"2", "1"}},
		{name: "price min excludes unpriced", q: QuerySignal{Category: "celular", PriceMin: price(4000)}, want: []string{"3"}},
		{name: "descending", q: QuerySignal{Product: "iphone", Category: "celular", Sort: slots.SortDescending}, want: []string{"3", "1", "2"}},
		{name: "ascending ignores stock", q: QuerySignal{Category: "celular", Sort: slots.SortAscending}, want: []string{"2", "1", "3", "4"}},
		{name: "stock only", q: QuerySignal{Product: "iphone", Category: "celular", StockOnly: true}, want: []string{"2", "1"}},
		{name: "offset", q: QuerySignal{Product: "iphone", Category: "celular", Offset: 2}, want: []string{"3"}},
		{name: "offset past end", q: QuerySignal{Product: "iphone", Offset: 50}, want: []string{}},
		{name: "unknown raw product", q: QuerySignal{Product: "kindle", Fallback: true}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := exec.Search(context.Background(), tt.q)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestSeedCatalogKeepsItemsInTheirCategory(t *testing.T) {
	items, err := LoadItemsFile(filepath.Join("..", "..", "data", "catalog.json"))
	require.NoError(t, err)
	exec := NewMemoryExecutor(items, staticDict{d: canon.Default()})

	queries := []QuerySignal{
		{Product: "iphone", Category: "celular", Model: "13"},
		{Product: "iphone", Category: "celular"},
		{Product: "galaxy", Category: "celular"},
	}
	for _, q := range queries {
		got, err := exec.Search(context.Background(), q)
		require.NoError(t, err)
		require.NotEmpty(t, got, "%+v", q)
		for _, it := range got {
			assert.Equal(t, "celular", it.Category, "%s leaked into %+v", it.Title, q)
		}
	}
}

func TestSearchTakesOnePage(t *testing.T) {
	var items []Item
	for i := 0; i < 25; i++ {
		items = append(items, Item{ID: fmt.Sprintf("%02d", i), Title: "Drone", Category: "drone", Price: price(float64(100 + i)), InStock: true})
	}
	exec := NewMemoryExecutor(items, staticDict{d: canon.Default()})

	got, err := exec.Search(context.Background(), QuerySignal{Product: "drone"})
	require.NoError(t, err)
	assert.Len(t, got, PageSize)

	got, err = exec.Search(context.Background(), QuerySignal{Product: "drone", Offset: 20})
	require.NoError(t, err)
	assert.Len(t, got, 5)
}

func TestLoadItemsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	doc := `[{"id":"a","title":"Drone","category":"drone","price":10.5,"in_stock":true,"attributes":["cinza"]}]`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	items, err := LoadItemsFile(path)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.InDelta(t, 10.5, *items[0].Price, 0.001)
	assert.Nil(t, items[0].Brand)

	_, err = LoadItemsFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

type executorFunc func(ctx context.Context, q QuerySignal) ([]Item, error)

func (f executorFunc) Search(ctx context.Context, q QuerySignal) ([]Item, error) { return f(ctx, q) }

func TestGuarded(t *testing.T) {
	log := logger.NewNopLogger()

	t.Run("error degrades to empty", func(t *testing.T) {
		g := NewGuarded(executorFunc(func(context.Context, QuerySignal) ([]Item, error) {
			return nil, errors.New("connection refused")
		}), time.Second, log)
		got, err := g.Search(context.Background(), QuerySignal{Product: "iphone"})
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.NotNil(t, got)
	})

	t.Run("timeout degrades to empty", func(t *testing.T) {
		g := NewGuarded(executorFunc(func(ctx context.Context, _ QuerySignal) ([]Item, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}), 20*time.Millisecond, log)
		start := time.Now()
		got, err := g.Search(context.Background(), QuerySignal{Product: "iphone"})
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.True(t, time.Since(start) < time.Second)
	})

	t.Run("stalled backend holds the session slot", func(t *testing.T) {
		var calls atomic.Int32
		unblock := make(chan struct{})
		g := NewGuarded(executorFunc(func(context.Context, QuerySignal) ([]Item, error) {
			calls.Add(1)
			<-unblock
			return []Item{{ID: "x"}}, nil
		}), 20*time.Millisecond, log)
		q := QuerySignal{Product: "iphone"}
		s1 := WithSession(context.Background(), "s1")

		got, err := g.Search(s1, q)
		require.NoError(t, err)
		assert.Empty(t, got)

		got, err = g.Search(s1, q)
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.Equal(t, int32(1), calls.Load(), "second search must not reach the stalled backend")

		_, err = g.Search(WithSession(context.Background(), "s2"), q)
		require.NoError(t, err)
		assert.Equal(t, int32(2), calls.Load())

		close(unblock)
		assert.Eventually(t, func() bool { return g.running() == 0 }, time.Second, 5*time.Millisecond)

		got, err = g.Search(s1, q)
		require.NoError(t, err)
		assert.Equal(t, []string{"x"}, ids(got))
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("passes results through", func(t *testing.T) {
		g := NewGuarded(NewMemoryExecutor(fixture(), staticDict{d: canon.Default()}), time.Second, log)
		got, err := g.Search(context.Background(), QuerySignal{Product: "drone"})
		require.NoError(t, err)
		assert.Equal(t, []string{"5"}, ids(got))
	})
}

func TestQuerySignalCloneAndFocusKey(t *testing.T) {
	q := &QuerySignal{Product: "iphone", Attributes: []string{"preto"}, PriceMax: price(500)}
	c := q.Clone()
	c.Attributes[0] = "branco"
	*c.PriceMax = 900
	assert.Equal(t, "preto", q.Attributes[0])
	assert.InDelta(t, 500, *q.PriceMax, 0.001)

	assert.Equal(t, "product:iphone", q.FocusKey())
	assert.Equal(t, "category:drone", QuerySignal{Category: "drone"}.FocusKey())
	assert.Empty(t, QuerySignal{}.FocusKey())
	assert.Nil(t, (*QuerySignal)(nil).Clone())
}
