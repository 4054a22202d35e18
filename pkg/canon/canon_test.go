package canon

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"shop-assistant-be/internal/pkg/logger"
	"shop-assistant-be/pkg/textnorm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestDefaultResolve(t *testing.T) {
	d := Default()

	tests := []struct {
		token   string
		want    string
		wantHit bool
	}{
		{token: "iphone", want: "iphone", wantHit: true},
		{token: "apple", want: "iphone", wantHit: true},
		{token: "perfumes", want: "perfume", wantHit: true},
		{token: "drones", want: "drone", wantHit: true},
		{token: "carregadores", want: "carregador", wantHit: true},
		{token: "tablets", want: "tablet", wantHit: true},
		{token: "geladeira", wantHit: false},
		{token: "", wantHit: false},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, ok := d.Resolve(tt.token)
			assert.Equal(t, tt.wantHit, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveFallsBackToSingular(t *testing.T) {
	d := &Dictionary{ProductCanon: map[string]string{"mochila": "mochila"}}
	got, ok := d.Resolve("mochilas")
	require.True(t, ok)
	assert.Equal(t, "mochila", got)
}

func TestCategoryOf(t *testing.T) {
	d := Default()
	c, ok := d.CategoryOf("galaxy")
	require.True(t, ok)
	assert.Equal(t, "celular", c)

	_, ok = d.CategoryOf("unknown")
	assert.False(t, ok)

	var nilDict *Dictionary
	_, ok = nilDict.CategoryOf("iphone")
	assert.False(t, ok)
}

func TestScan(t *testing.T) {
	d := Default()

	m := d.Scan(textnorm.NormalizeTokens("quero um fone de ouvido bluetooth"))
	assert.Equal(t, "fone", m.Product)
	assert.Equal(t, "audio", m.Category)
	assert.Equal(t, "fone de ouvido", m.Token)

	m = d.Scan(textnorm.NormalizeTokens("algum celular bom"))
	assert.Empty(t, m.Product)
	assert.Equal(t, "celular", m.Category)
	assert.True(t, m.Found())

	m = d.Scan(textnorm.NormalizeTokens("apple watch preto"))
	assert.Equal(t, "smartwatch", m.Product)

	assert.False(t, d.Scan(textnorm.NormalizeTokens("que horas sao")).Found())
}

func TestProductToCategoryReferencesKnownCategories(t *testing.T) {
	d := Default()
	for product, category := range d.ProductToCategory {
		_, ok := d.CategoryCanon[category]
		assert.True(t, ok, "product %q references unknown category %q", product, category)
	}
}

func TestValidateDefaultsMissingCategories(t *testing.T) {
	d := &Dictionary{
		ProductCanon:      map[string]string{"kindle": "kindle"},
		ProductToCategory: map[string]string{"kindle": "leitor"},
	}
	defaulted, err := d.Validate()
	require.NoError(t, err)
	assert.Equal(t, []string{"leitor"}, defaulted)
	assert.Equal(t, "leitor", d.CategoryCanon["leitor"])

	_, err = (&Dictionary{}).Validate()
	assert.ErrorIs(t, err, ErrInvalidDictionary)
}

func TestSurfaceFormsAndProductsIn(t *testing.T) {
	d := Default()
	forms := d.SurfaceForms("galaxy")
	assert.Equal(t, "galaxy", forms[0])
	assert.Contains(t, forms, "samsung")

	products := d.ProductsIn("celular")
	assert.Equal(t, []string{"galaxy", "iphone", "motorola", "xiaomi"}, products)
}

func TestStoreLoadOrDefault(t *testing.T) {
	s := NewStore(logger.NewNopLogger())

	t.Run("missing file keeps default", func(t *testing.T) {
		err := s.LoadOrDefault(filepath.Join(t.TempDir(), "missing.json"))
		assert.Error(t, err)
		_, ok := s.Current().Resolve("iphone")
		assert.True(t, ok)
	})

	t.Run("corrupt file keeps default", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "canon.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
		assert.Error(t, s.LoadOrDefault(path))
		_, ok := s.Current().Resolve("galaxy")
		assert.True(t, ok)
	})

	t.Run("valid file replaces table", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "canon.json")
		doc := `{"productCanon":{"kindle":"kindle","kindles":"kindle"},"categoryCanon":{"leitor":"leitor"},"productToCategory":{"kindle":"leitor"}}`
		require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
		require.NoError(t, s.LoadOrDefault(path))

		p, ok := s.Current().Resolve("kindles")
		assert.True(t, ok)
		assert.Equal(t, "kindle", p)
		_, ok = s.Current().Resolve("iphone")
		assert.False(t, ok)
	})
}

func TestStoreReloadKeepsLastGoodSnapshot(t *testing.T) {
	s := NewStore(logger.NewNopLogger())
	before := s.Current()
	assert.Error(t, s.Reload(filepath.Join(t.TempDir(), "nope.json")))
	assert.Same(t, before, s.Current())
}

func TestWatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "canon.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"productCanon":{"a":"a"}}`), 0o644))

	s := NewStore(logger.NewNopLogger())
	require.NoError(t, s.LoadOrDefault(path))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, s.Watch(ctx, path))

	doc := `{"productCanon":{"kindle":"kindle"},"categoryCanon":{"leitor":"leitor"},"productToCategory":{"kindle":"leitor"}}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	assert.Eventually(t, func() bool {
		_, ok := s.Current().Resolve("kindle")
		return ok
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	// let the watch loop observe cancellation before goleak runs
	time.Sleep(100 * time.Millisecond)
}

func TestBuildMajorityVote(t *testing.T) {
	records := []Record{
		{Name: "iPhone 12 128GB", Category: "Celulares"},
		{Name: "iPhone 13 Pro", Category: "Celulares"},
		{Name: "iPhone Capinha Silicone", Category: "Acessórios"},
		{Name: "Perfume Chanel N5", Category: "Perfumaria"},
		{Name: "Kit Perfumes Importados", Category: "Perfumaria"},
		{Name: "123", Category: "Celulares"},
	}

	d := Build(records)

	assert.Equal(t, "celular", d.ProductToCategory["iphone"])
	assert.Equal(t, "perfumaria", d.ProductToCategory["perfume"])
	assert.Equal(t, "celular", d.CategoryCanon["celulares"])
	_, err := d.Validate()
	require.NoError(t, err)
}

func TestMergeOverlaysWithoutMutating(t *testing.T) {
	base := Default()
	baseSize := base.Size()
	top := Build([]Record{{Name: "Patinete Elétrico", Category: "Mobilidade"}})

	merged := Merge(base, top)

	assert.Equal(t, baseSize, base.Size())
	assert.Equal(t, "mobilidade", merged.ProductToCategory["patinete"])
	assert.Equal(t, base.ProductToCategory["iphone"], merged.ProductToCategory["iphone"])
	assert.Greater(t, merged.Size(), baseSize)
}
