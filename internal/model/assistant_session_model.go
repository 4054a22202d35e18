package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AssistantSession is the durable mirror of conversation state.
type AssistantSession struct {
	Id              string         `gorm:"type:varchar(128);primaryKey"`
	FocusProduct    string         `gorm:"type:varchar(100)"`
	FocusCategory   string         `gorm:"type:varchar(100)"`
	LastQuery       datatypes.JSON `gorm:"type:jsonb"`
	FailedFocus     string         `gorm:"type:varchar(200)"`
	RngSeed         int64          `gorm:"not null;default:0"`
	VariantCounters datatypes.JSON `gorm:"type:jsonb"`
	Language        string         `gorm:"type:varchar(8)"`
	Turns           int            `gorm:"not null;default:0"`
	CreatedAt       time.Time      `gorm:"autoCreateTime"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime;index"`
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}

func (AssistantSession) TableName() string {
	return "assistant_sessions"
}
