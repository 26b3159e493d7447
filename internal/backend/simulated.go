package backend

import (
	"context"
	"time"

	"classify-api/internal/classify"
)

// SimulatedBackend produces deterministic outputs without a model runtime.
// It stands in for the native backend on hosts without the ONNX shared
// library and in tests.
type SimulatedBackend struct {
	meta    Metadata
	latency time.Duration
	peak    int
	score   float32
}

// SimulatedOption adjusts a SimulatedBackend.
type SimulatedOption func(*SimulatedBackend)

// WithLatency sets the artificial per-call delay.
func WithLatency(d time.Duration) SimulatedOption {
	return func(b *SimulatedBackend) { b.latency = d }
}

// WithPeak sets the output index that receives the dominant score.
func WithPeak(index int, score float32) SimulatedOption {
	return func(b *SimulatedBackend) {
		b.peak = index
		b.score = score
	}
}

// NewSimulatedBackend builds a simulated backend emitting outputs of the
// given metadata's output shape. By default it answers after 50ms with a
// strong logit at index 612 (military uniform once background-shifted, for
// 1001-way outputs).
func NewSimulatedBackend(meta Metadata) *SimulatedBackend {
	return &SimulatedBackend{
		meta:    meta,
		latency: 50 * time.Millisecond,
		peak:    612,
		score:   8.0,
	}
}

// NewSimulatedBackendWith builds a simulated backend with options applied.
func NewSimulatedBackendWith(meta Metadata, opts ...SimulatedOption) *SimulatedBackend {
	b := NewSimulatedBackend(meta)
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *SimulatedBackend) Name() string { return "simulated" }

func (b *SimulatedBackend) Meta() classify.OutputMeta {
	return classify.OutputMeta{OutputShape: b.meta.OutputShape, ModelName: b.meta.ModelName}
}

func (b *SimulatedBackend) InputSize() int { return flatSize(b.meta.InputShape) }

// Run waits out the configured latency and returns a vector of zeros with the
// dominant score at the configured peak index.
func (b *SimulatedBackend) Run(ctx context.Context, input []float32) ([]float32, error) {
	if b.latency > 0 {
		select {
		case <-time.After(b.latency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	size := flatSize(b.meta.OutputShape)
	raw := make([]float32, size)
	if b.peak >= 0 && b.peak < size {
		raw[b.peak] = b.score
	}
	return raw, nil
}

func (b *SimulatedBackend) Close() error { return nil }
