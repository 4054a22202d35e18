package model

import (
	"time"

	"gorm.io/datatypes"
)

type Product struct {
	Id         string                      `gorm:"type:varchar(64);primaryKey"`
	Title      string                      `gorm:"type:text;not null"`
	Category   string                      `gorm:"type:varchar(100);index"`
	Brand      *string                     `gorm:"type:varchar(100)"`
	Price      *float64                    `gorm:"type:numeric(12,2);index"`
	InStock    bool                        `gorm:"not null;default:true;index"`
	Attributes datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	CreatedAt  time.Time                   `gorm:"autoCreateTime"`
	UpdatedAt  time.Time                   `gorm:"autoUpdateTime"`
}

func (Product) TableName() string {
	return "products"
}
