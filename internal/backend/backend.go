// Package backend abstracts the inference runtimes behind a single interface
// so the classification pipeline never branches on which runtime is present.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"classify-api/internal/classify"
)

// Backend runs a loaded model against a flat input vector and returns the raw
// output vector, sized to the model's declared output shape.
type Backend interface {
	// Name identifies the runtime ("onnx", "simulated") for result tagging.
	Name() string
	// Meta describes the model output for the postprocessor.
	Meta() classify.OutputMeta
	// InputSize is the expected flat length of the input vector.
	InputSize() int
	// Run executes one inference. The returned slice is owned by the caller.
	Run(ctx context.Context, input []float32) ([]float32, error)
	// Close releases runtime resources.
	Close() error
}

// Metadata is the on-disk model description loaded alongside the model file.
type Metadata struct {
	InputShape  []int64 `json:"input_shape"`
	OutputShape []int64 `json:"output_shape"`
	ModelName   string  `json:"model_name"`
	ImageSize   int     `json:"image_size"`
}

// LoadMetadata reads and parses a metadata JSON file.
func LoadMetadata(path string) (Metadata, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("read metadata: %w", err)
	}
	var meta Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return Metadata{}, fmt.Errorf("parse metadata: %w", err)
	}
	return meta, nil
}

// flatSize multiplies out a shape; dimensions of zero or less count as one so
// a leading batch dimension of -1 does not zero the size.
func flatSize(shape []int64) int {
	size := 1
	for _, d := range shape {
		if d > 0 {
			size *= int(d)
		}
	}
	return size
}
