package nats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "events.assistant.turn", Subject("assistant.turn"))
	assert.Equal(t, "events.>", Subject(">"))
}
