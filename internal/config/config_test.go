package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEnvGetters(t *testing.T) {
	t.Setenv("TEST_BOOL", "true")
	t.Setenv("TEST_BAD_BOOL", "maybe")
	t.Setenv("TEST_DURATION", "1500ms")
	t.Setenv("TEST_MILLIS", "250")
	t.Setenv("TEST_BAD_DURATION", "soon")

	assert.True(t, getEnvAsBool("TEST_BOOL", false))
	assert.True(t, getEnvAsBool("TEST_BAD_BOOL", true))
	assert.False(t, getEnvAsBool("TEST_MISSING_BOOL", false))

	assert.Equal(t, 1500*time.Millisecond, getEnvAsDuration("TEST_DURATION", time.Second))
	assert.Equal(t, 250*time.Millisecond, getEnvAsDuration("TEST_MILLIS", time.Second))
	assert.Equal(t, time.Second, getEnvAsDuration("TEST_BAD_DURATION", time.Second))
	assert.Equal(t, time.Second, getEnvAsDuration("TEST_MISSING_DURATION", time.Second))
}

func TestLoadAssistantDefaults(t *testing.T) {
	t.Setenv("SESSION_BACKEND", "redis")
	t.Setenv("REWRITE_ENABLED", "1")
	t.Setenv("CATALOG_TIMEOUT", "5s")

	cfg := Load()
	assert.Equal(t, "redis", cfg.Assistant.SessionBackend)
	assert.True(t, cfg.Assistant.RewriteEnabled)
	assert.Equal(t, 5*time.Second, cfg.Assistant.CatalogTimeout)
	assert.Equal(t, "memory", cfg.Assistant.CatalogBackend)
}

func TestLoadTracing(t *testing.T) {
	t.Setenv("GO_ENV", "staging")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_SAMPLE_RATIO", "0.1")

	cfg := Load()
	assert.True(t, cfg.Tracing.Enabled)
	assert.Equal(t, 0.1, cfg.Tracing.SampleRatio)
	assert.Equal(t, "staging", cfg.Tracing.Environment)
	assert.Equal(t, "localhost:4318", cfg.Tracing.Endpoint)
	assert.True(t, cfg.Tracing.Insecure)
}
