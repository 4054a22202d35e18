package entity

import "time"

type Product struct {
	Id         string
	Title      string
	Category   string
	Brand      *string
	Price      *float64
	InStock    bool
	Attributes []string
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}
