package entity

import (
	"time"

	"shop-assistant-be/pkg/catalog"
)

type AssistantSession struct {
	Id              string
	FocusProduct    string
	FocusCategory   string
	LastQuery       *catalog.QuerySignal
	FailedFocus     string
	RngSeed         uint32
	VariantCounters map[string]int
	Language        string
	Turns           int
	CreatedAt       time.Time
	UpdatedAt       *time.Time
	DeletedAt       *time.Time
	IsDeleted       bool
}
