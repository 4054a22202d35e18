package specification

import (
	"testing"

	"shop-assistant-be/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=test dbname=test sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	return db
}

func render(db *gorm.DB, specs ...Specification) string {
	return db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		q := tx.Model(&model.Product{})
		for _, s := range specs {
			q = s.Apply(q)
		}
		var out []model.Product
		return q.Find(&out)
	})
}

func TestSpecificationsRenderSQL(t *testing.T) {
	db := dryRunDB(t)

	tests := []struct {
		name  string
		specs []Specification
		want  []string
	}{
		{
			name:  "price window",
			specs: []Specification{PriceAtLeast{Min: 100}, PriceAtMost{Max: 500}},
			want:  []string{"price IS NOT NULL AND price >= 100", "price <= 500"},
		},
		{
			name:  "stock and order",
			specs: []Specification{InStockOnly{}, OrderBy{Field: "id"}},
			want:  []string{"in_stock = true", "ORDER BY id ASC"},
		},
		{
			name:  "history page",
			specs: []Specification{BySessionID{SessionID: "s1"}, OrderBy{Field: "created_at", Desc: true}, Pagination{Limit: 20, Offset: 40}},
			want:  []string{"session_id = 's1'", "ORDER BY created_at DESC", "LIMIT 20", "OFFSET 40"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql := render(db, tt.specs...)
			for _, fragment := range tt.want {
				assert.Contains(t, sql, fragment)
			}
		})
	}
}
