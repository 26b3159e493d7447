package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "onnx", cfg.Backend)
	assert.Equal(t, 5, cfg.TopK)
	assert.Empty(t, cfg.LabelURL)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("BACKEND", "simulated")
	t.Setenv("TOP_K", "3")
	t.Setenv("LABEL_URL", "http://localhost:9999/labels.txt")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "simulated", cfg.Backend)
	assert.Equal(t, 3, cfg.TopK)
	assert.Equal(t, "http://localhost:9999/labels.txt", cfg.LabelURL)
}

func TestLoadBadIntFallsBack(t *testing.T) {
	t.Setenv("TOP_K", "many")

	cfg := Load()
	assert.Equal(t, 5, cfg.TopK)
}
