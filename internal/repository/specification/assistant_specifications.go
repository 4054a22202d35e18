package specification

import (
	"gorm.io/gorm"
)

// BySessionID filters rows keyed by a conversation session id.
type BySessionID struct {
	SessionID string
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

// ByStringID filters tables whose primary key is a string.
type ByStringID struct {
	ID string
}

func (s ByStringID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.ID)
}

// PriceAtLeast drops unpriced products, which never satisfy a price bound.
type PriceAtLeast struct {
	Min float64
}

func (s PriceAtLeast) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("price IS NOT NULL AND price >= ?", s.Min)
}

type PriceAtMost struct {
	Max float64
}

func (s PriceAtMost) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("price IS NOT NULL AND price <= ?", s.Max)
}

type InStockOnly struct{}

func (s InStockOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("in_stock = ?", true)
}
