package tracer

import (
	"context"
	"testing"

	"shop-assistant-be/internal/config"

	"github.com/stretchr/testify/assert"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestInitTracerDisabledIsNoop(t *testing.T) {
	shutdown := InitTracer("test", config.TracingConfig{Enabled: false})
	assert.NoError(t, shutdown(context.Background()))
}

func TestSamplerBounds(t *testing.T) {
	tests := []struct {
		ratio float64
		want  string
	}{
		{ratio: 1, want: sdktrace.ParentBased(sdktrace.AlwaysSample()).Description()},
		{ratio: 2, want: sdktrace.ParentBased(sdktrace.AlwaysSample()).Description()},
		{ratio: 0, want: sdktrace.ParentBased(sdktrace.NeverSample()).Description()},
		{ratio: 0.25, want: sdktrace.ParentBased(sdktrace.TraceIDRatioBased(0.25)).Description()},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sampler(tt.ratio).Description())
	}
}
