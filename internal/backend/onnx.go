package backend

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	ort "github.com/yalue/onnxruntime_go"

	"classify-api/internal/classify"
)

// ONNXBackend runs a model through the ONNX runtime with pre-allocated input
// and output tensors sized from the model metadata.
type ONNXBackend struct {
	session      *ort.AdvancedSession
	meta         Metadata
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
	log          *logrus.Logger
}

// NewONNXBackend initializes the ONNX environment, loads the model at
// modelPath, and allocates tensors per the metadata file at metadataPath.
func NewONNXBackend(modelPath, metadataPath string, log *logrus.Logger) (*ONNXBackend, error) {
	if log == nil {
		log = logrus.New()
	}

	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("initialize ONNX environment: %w", err)
	}

	meta, err := LoadMetadata(metadataPath)
	if err != nil {
		return nil, err
	}

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(meta.InputShape...))
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(meta.OutputShape...))
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{"input"}, []string{"output"},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("create ONNX session: %w", err)
	}

	log.WithFields(logrus.Fields{
		"model":        modelPath,
		"input_shape":  meta.InputShape,
		"output_shape": meta.OutputShape,
	}).Info("ONNX backend ready")

	return &ONNXBackend{
		session:      session,
		meta:         meta,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
		log:          log,
	}, nil
}

func (b *ONNXBackend) Name() string { return "onnx" }

func (b *ONNXBackend) Meta() classify.OutputMeta {
	return classify.OutputMeta{OutputShape: b.meta.OutputShape, ModelName: b.meta.ModelName}
}

func (b *ONNXBackend) InputSize() int { return flatSize(b.meta.InputShape) }

// Run copies the input into the session tensor, executes the model, and
// returns a copy of the output so the caller never aliases session memory.
func (b *ONNXBackend) Run(ctx context.Context, input []float32) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(input) != b.InputSize() {
		return nil, fmt.Errorf("expected %d input values, got %d", b.InputSize(), len(input))
	}

	copy(b.inputTensor.GetData(), input)
	if err := b.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	out := b.outputTensor.GetData()
	raw := make([]float32, len(out))
	copy(raw, out)
	return raw, nil
}

// Close destroys the tensors, the session, and the ONNX environment.
func (b *ONNXBackend) Close() error {
	if b.inputTensor != nil {
		b.inputTensor.Destroy()
	}
	if b.outputTensor != nil {
		b.outputTensor.Destroy()
	}
	if b.session != nil {
		b.session.Destroy()
	}
	return ort.DestroyEnvironment()
}
