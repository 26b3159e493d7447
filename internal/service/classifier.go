// Package service wires a backend, the postprocessor, and the label resolver
// into a single classification surface.
package service

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/sirupsen/logrus"

	"classify-api/internal/backend"
	"classify-api/internal/classify"
	"classify-api/internal/labels"
	"classify-api/internal/preprocess"
)

// Classifier runs inference on a backend and turns the raw output into a
// ranked, labeled result. All failures come back as a failure Result; nothing
// panics across the boundary.
type Classifier struct {
	backend  backend.Backend
	resolver *labels.Resolver
	log      *logrus.Logger
	topK     int
}

// NewClassifier builds a classifier over the given backend and resolver.
// topK of zero or less falls back to the default.
func NewClassifier(b backend.Backend, r *labels.Resolver, topK int, log *logrus.Logger) *Classifier {
	if log == nil {
		log = logrus.New()
	}
	if topK <= 0 {
		topK = classify.DefaultTopK
	}
	return &Classifier{backend: b, resolver: r, log: log, topK: topK}
}

// Backend exposes the underlying backend for input validation and shutdown.
func (c *Classifier) Backend() backend.Backend { return c.backend }

// Classify runs one inference over a flat input vector and postprocesses the
// output into ranked predictions.
//
// For ImageNet-shaped models the label load is kicked off in the background
// and deliberately not awaited: the first result after a cold start may carry
// generic "Class N" names that upgrade to real labels on later calls.
func (c *Classifier) Classify(ctx context.Context, input []float32) classify.Result {
	start := time.Now()

	raw, err := c.backend.Run(ctx, input)
	if err != nil {
		c.log.WithError(err).Error("inference failed")
		return classify.NewFailure(c.backend.Name(), err)
	}

	meta := c.backend.Meta()
	preds, err := classify.Process(raw, c.topK)
	if err != nil {
		return classify.NewFailure(c.backend.Name(), err)
	}

	imageNet := classify.IsImageNetModel(meta)
	if imageNet && !c.resolver.Loaded() {
		go c.resolver.Load(context.Background())
	}

	for i := range preds {
		switch {
		case preds[i].Index == classify.BackgroundClass:
			preds[i].Label = "background"
		case imageNet:
			preds[i].Label = c.resolver.GetDisplayName(preds[i].Index)
		default:
			preds[i].Label = fmt.Sprintf("Class %d", preds[i].Index)
		}
	}

	res := classify.NewSuccess(c.backend.Name(), preds, raw, time.Since(start))
	res.Metadata["model"] = meta.ModelName
	if top, ok := res.TopPrediction(); ok {
		res.Metadata["top_label"] = top.Label
	}
	return res
}

// ClassifyImage decodes and preprocesses an image, then classifies it. The
// target size comes from the backend's declared input shape (square CHW).
func (c *Classifier) ClassifyImage(ctx context.Context, img image.Image, size int) classify.Result {
	input, err := preprocess.ToTensor(img, size)
	if err != nil {
		return classify.NewFailure(c.backend.Name(), err)
	}
	return c.Classify(ctx, input)
}

// Close shuts the backend down.
func (c *Classifier) Close() error {
	return c.backend.Close()
}
