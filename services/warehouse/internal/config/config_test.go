package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "warehouse-service", cfg.ServiceName)
	assert.Equal(t, 5001, cfg.Port)
}

func TestLoad_InvalidSampleRate(t *testing.T) {
	t.Setenv("OTEL_SAMPLE_RATE", "-1")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("SERVICE_PORT", "-1")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
}
