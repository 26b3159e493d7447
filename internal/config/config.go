// Package config reads server settings from the environment.
package config

import (
	"os"
	"strconv"
)

// Config holds all server settings.
type Config struct {
	Port         string
	Backend      string // "onnx" or "simulated"
	ModelPath    string
	MetadataPath string
	LabelURL     string
	TopK         int
}

// Load reads the environment, applying defaults for anything unset.
func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8080"),
		Backend:      getEnv("BACKEND", "onnx"),
		ModelPath:    getEnv("MODEL_PATH", "./models/mobilenet_v2.onnx"),
		MetadataPath: getEnv("METADATA_PATH", "./models/model_metadata.json"),
		LabelURL:     getEnv("LABEL_URL", ""),
		TopK:         getEnvInt("TOP_K", 5),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}
