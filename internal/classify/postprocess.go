// Package classify turns raw model output vectors into ranked, labeled
// predictions.
package classify

import (
	"errors"
	"math"
	"sort"
	"strings"
)

// ErrInvalidInput is returned when the raw output vector contains NaN or Inf
// values that would poison the softmax.
var ErrInvalidInput = errors.New("classify: output vector contains non-finite values")

// BackgroundClass is the sentinel index reported for the extra background
// class some 1001-way classifiers carry at position 0. It has no ImageNet
// label.
const BackgroundClass = -1

// DefaultTopK is used when the caller asks for zero or negative K.
const DefaultTopK = 5

// imageNetHints are matched case-insensitively against the model name when the
// output size alone does not identify an ImageNet classifier.
var imageNetHints = []string{
	"mobilenet", "imagenet", "resnet", "inception", "efficientnet", "densenet",
}

// OutputMeta describes the model output the postprocessor is working on.
type OutputMeta struct {
	// OutputShape is the declared shape of the output tensor, e.g. [1, 1000].
	OutputShape []int64
	// ModelName is a free-form name or path hint for the loaded model.
	ModelName string
}

// OutputSize returns the flat element count of the output shape.
func (m OutputMeta) OutputSize() int {
	if len(m.OutputShape) == 0 {
		return 0
	}
	size := 1
	for _, d := range m.OutputShape {
		size *= int(d)
	}
	return size
}

// Prediction is one ranked class with its post-softmax probability. Index is
// the label-space class index: already shifted past the background class when
// the model carries one, or BackgroundClass for the background itself.
type Prediction struct {
	Index      int     `json:"index"`
	Confidence float32 `json:"confidence"`
	Label      string  `json:"label,omitempty"`
}

// IsImageNetModel reports whether the model should be treated as an
// ImageNet-1K classifier: either the output size is exactly 1000 or 1001, or
// the model name carries a well-known architecture hint.
func IsImageNetModel(meta OutputMeta) bool {
	size := meta.OutputSize()
	if size == 1000 || size == 1001 {
		return true
	}
	name := strings.ToLower(meta.ModelName)
	for _, hint := range imageNetHints {
		if strings.Contains(name, hint) {
			return true
		}
	}
	return false
}

// Process converts a raw output vector into the top K predictions, sorted by
// descending confidence with ties broken by lower index.
//
// Values outside [0, 1] mark the vector as logits and a numerically stable
// softmax is applied; otherwise the values pass through as probabilities.
// A 1001-element vector is assumed to carry a background class at index 0 and
// all indices are shifted down by one (index 0 becomes BackgroundClass).
// An empty vector yields no predictions.
func Process(raw []float32, topK int) ([]Prediction, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	for _, v := range raw {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return nil, ErrInvalidInput
		}
	}

	probs := raw
	if isLogits(raw) {
		probs = softmax(raw)
	}

	if topK <= 0 {
		topK = DefaultTopK
	}
	if topK > len(probs) {
		topK = len(probs)
	}

	ranked := make([]Prediction, len(probs))
	for i, p := range probs {
		ranked[i] = Prediction{Index: i, Confidence: p}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Confidence > ranked[j].Confidence
	})
	ranked = ranked[:topK]

	// 1001-way outputs reserve index 0 for "background"; shift the rest down
	// so they line up with the 1000-entry ImageNet label set.
	if len(raw) == 1001 {
		for i := range ranked {
			ranked[i].Index--
			if ranked[i].Index < 0 {
				ranked[i].Index = BackgroundClass
			}
		}
	}
	return ranked, nil
}

// isLogits reports whether any value falls outside [0, 1], which marks the
// vector as unnormalized scores.
func isLogits(raw []float32) bool {
	for _, v := range raw {
		if v > 1.0 || v < 0.0 {
			return true
		}
	}
	return false
}

// softmax computes exp(x_i - max) / sum(exp(x_j - max)). Subtracting the max
// keeps the exponentials from overflowing on large logits.
func softmax(raw []float32) []float32 {
	maxVal := raw[0]
	for _, v := range raw[1:] {
		if v > maxVal {
			maxVal = v
		}
	}

	out := make([]float32, len(raw))
	var sum float64
	for i, v := range raw {
		e := math.Exp(float64(v - maxVal))
		out[i] = float32(e)
		sum += e
	}
	for i := range out {
		out[i] = float32(float64(out[i]) / sum)
	}
	return out
}
