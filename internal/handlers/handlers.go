// Package handlers exposes the classification service over HTTP.
package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"classify-api/internal/preprocess"
	"classify-api/internal/service"
)

// Handler serves the HTTP endpoints backed by a Classifier.
type Handler struct {
	classifier *service.Classifier
	imageSize  int
	log        *logrus.Logger
}

// NewHandler builds a handler. imageSize is the square model input dimension
// used when preprocessing uploads.
func NewHandler(classifier *service.Classifier, imageSize int, log *logrus.Logger) *Handler {
	if log == nil {
		log = logrus.New()
	}
	return &Handler{classifier: classifier, imageSize: imageSize, log: log}
}

// ClassifyRequest is the raw-vector request body for POST /classify.
type ClassifyRequest struct {
	Input []float32 `json:"input"`
}

// Health reports service liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"backend": h.classifier.Backend().Name(),
	})
}

// Classify accepts a JSON body with a flat preprocessed input vector and
// returns the ranked predictions.
func (h *Handler) Classify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var req ClassifyRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	expected := h.classifier.Backend().InputSize()
	if len(req.Input) != expected {
		http.Error(w, fmt.Sprintf("Expected %d values, got %d", expected, len(req.Input)),
			http.StatusBadRequest)
		return
	}

	result := h.classifier.Classify(r.Context(), req.Input)
	if !result.Success {
		h.log.WithField("error", result.Error).Error("classification failed")
		w.WriteHeader(http.StatusInternalServerError)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// ClassifyImage accepts a multipart upload under the "image" field, decodes
// and preprocesses it, and returns the ranked predictions.
func (h *Handler) ClassifyImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// 10MB upload cap
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "No image file provided. Use 'image' as the form field name", http.StatusBadRequest)
		return
	}
	defer file.Close()

	img, format, err := preprocess.Decode(file)
	if err != nil {
		http.Error(w, "Invalid image format. Supported: JPEG, PNG, BMP, WebP", http.StatusBadRequest)
		return
	}

	h.log.WithFields(logrus.Fields{
		"file":   header.Filename,
		"format": format,
		"size":   header.Size,
	}).Info("classifying upload")

	result := h.classifier.ClassifyImage(r.Context(), img, h.imageSize)
	if !result.Success {
		h.log.WithField("error", result.Error).Error("classification failed")
		w.WriteHeader(http.StatusInternalServerError)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
