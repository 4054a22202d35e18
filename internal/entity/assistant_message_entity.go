package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type AssistantMessage struct {
	Id           uuid.UUID
	SessionId    string
	Role         string
	Content      string
	Intent       string
	ResponseType string
	Language     string
	ResultCount  int
	CreatedAt    time.Time
}
