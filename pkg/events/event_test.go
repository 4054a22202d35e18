package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPayloadAccessors(t *testing.T) {
	e := BaseEvent{
		Type:       "assistant.turn",
		OccurredAt: time.Unix(0, 0),
		Data: map[string]interface{}{
			"session_id":   "s1",
			"result_count": float64(3),
			"duration_ms":  int64(12),
			"turns":        4,
		},
	}

	tests := []struct {
		key  string
		text string
		num  float64
	}{
		{key: "session_id", text: "s1"},
		{key: "result_count", num: 3},
		{key: "duration_ms", num: 12},
		{key: "turns", num: 4},
		{key: "missing"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.text, String(e, tt.key))
			assert.Equal(t, tt.num, Number(e, tt.key))
		})
	}
}
