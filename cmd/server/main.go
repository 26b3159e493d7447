package main

import (
	"context"
	"io"
	"net/http"
	"os"

	"github.com/sirupsen/logrus"

	"classify-api/internal/backend"
	"classify-api/internal/config"
	"classify-api/internal/handlers"
	"classify-api/internal/labels"
	"classify-api/internal/service"
)

func enableCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func initLogger() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	file, err := os.OpenFile("app.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Warn("Failed to log to file, using default stderr")
	} else {
		log.SetOutput(io.MultiWriter(os.Stdout, file))
	}
	return log
}

func newBackend(cfg *config.Config, logger *logrus.Logger) (backend.Backend, backend.Metadata, error) {
	meta, err := backend.LoadMetadata(cfg.MetadataPath)
	if err != nil {
		return nil, backend.Metadata{}, err
	}

	if cfg.Backend == "simulated" {
		logger.Warn("Using simulated backend, results are synthetic")
		return backend.NewSimulatedBackend(meta), meta, nil
	}

	b, err := backend.NewONNXBackend(cfg.ModelPath, cfg.MetadataPath, logger)
	if err != nil {
		return nil, backend.Metadata{}, err
	}
	return b, meta, nil
}

func main() {
	logger := initLogger()
	cfg := config.Load()

	b, meta, err := newBackend(cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize backend: %v", err)
	}

	resolver := labels.NewResolver(cfg.LabelURL, logger)
	classifier := service.NewClassifier(b, resolver, cfg.TopK, logger)
	defer classifier.Close()

	// Warm the label cache so the first classification has real names. Best
	// effort: the server still starts if the fetch fails.
	go resolver.Load(context.Background())

	handler := handlers.NewHandler(classifier, meta.ImageSize, logger)

	http.HandleFunc("/health", enableCORS(handler.Health))
	http.HandleFunc("/classify", enableCORS(handler.Classify))
	http.HandleFunc("/classify/image", enableCORS(handler.ClassifyImage))

	logger.Infof("Server starting on port %s", cfg.Port)
	logger.Infof("Backend: %s, model: %s", b.Name(), cfg.ModelPath)
	logger.Info("Endpoints:")
	logger.Info("  GET  /health         - Health check")
	logger.Info("  POST /classify       - Raw vector classification")
	logger.Info("  POST /classify/image - Classify an image upload")

	if err := http.ListenAndServe(":"+cfg.Port, nil); err != nil {
		logger.Fatalf("Server failed: %v", err)
	}
}
