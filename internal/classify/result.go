package classify

import "time"

// Result is the outcome of one classification call: either a ranked
// prediction list or an error description, tagged with the backend that
// produced it.
type Result struct {
	Success     bool              `json:"success"`
	Predictions []Prediction      `json:"predictions,omitempty"`
	Raw         []float32         `json:"-"`
	Backend     string            `json:"backend"`
	Elapsed     time.Duration     `json:"elapsed_ns"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Error       string            `json:"error,omitempty"`
}

// NewSuccess builds a successful result over ranked predictions.
func NewSuccess(backend string, preds []Prediction, raw []float32, elapsed time.Duration) Result {
	return Result{
		Success:     true,
		Predictions: preds,
		Raw:         raw,
		Backend:     backend,
		Elapsed:     elapsed,
		Metadata:    make(map[string]string),
	}
}

// NewFailure builds a failed result carrying the error description.
func NewFailure(backend string, err error) Result {
	return Result{
		Success: false,
		Backend: backend,
		Error:   err.Error(),
	}
}

// TopPrediction returns the highest-ranked prediction, or false when the
// result holds none.
func (r Result) TopPrediction() (Prediction, bool) {
	if len(r.Predictions) == 0 {
		return Prediction{}, false
	}
	return r.Predictions[0], true
}

// TopConfidence returns the confidence of the highest-ranked prediction, or 0
// when the result holds none.
func (r Result) TopConfidence() float32 {
	top, ok := r.TopPrediction()
	if !ok {
		return 0
	}
	return top.Confidence
}
