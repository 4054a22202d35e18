package model

import (
	"time"

	"github.com/google/uuid"
)

// AssistantMessage is one line of the per-session message log.
type AssistantMessage struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId    string    `gorm:"type:varchar(128);not null;index:idx_assistant_messages_session_created,priority:1"`
	Role         string    `gorm:"type:varchar(20);not null"`
	Content      string    `gorm:"type:text;not null"`
	Intent       string    `gorm:"type:varchar(30)"`
	ResponseType string    `gorm:"type:varchar(30)"`
	Language     string    `gorm:"type:varchar(8)"`
	ResultCount  int       `gorm:"not null;default:0"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index:idx_assistant_messages_session_created,priority:2"`
}

func (AssistantMessage) TableName() string {
	return "assistant_messages"
}
