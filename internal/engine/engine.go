// Package engine runs classification models through ONNX Runtime. The model
// arrives as an opaque byte buffer; input and output shapes, layout, and
// element types are read from it once at construction and never re-queried on
// the per-frame path.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/yalue/onnxruntime_go"

	"github.com/MeKo-Tech/lumo/internal/onnx"
)

// ErrClosed is returned by Run after the engine's resources were released.
var ErrClosed = errors.New("engine is closed")

// ErrShapeMismatch is returned when a tensor's element count does not match
// the model's declared input size. The frame that produced the tensor should
// be skipped, never truncated or padded.
var ErrShapeMismatch = errors.New("tensor element count does not match model input")

// Engine wraps a single-input, single-output ONNX classification session.
// Run is synchronous and serialized; the intended caller is one dedicated
// worker goroutine.
type Engine struct {
	config      Config
	session     *onnxruntime_go.DynamicAdvancedSession
	inputInfo   onnxruntime_go.InputOutputInfo
	outputInfo  onnxruntime_go.InputOutputInfo
	inputShape  []int64 // resolved: batch pinned to 1
	outputShape []int64
	layout      onnx.Layout
	inputH      int
	inputW      int
	inputElems  int
	boundInput  *onnxruntime_go.Tensor[float32]
	mu          sync.Mutex
}

// New loads the model file and builds an engine around it. Any failure to
// read, parse, or validate the model is fatal here; the pipeline refuses to
// start without a working engine.
func New(config Config) (*Engine, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	modelData, err := os.ReadFile(config.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}
	return NewFromBytes(modelData, config)
}

// NewFromBytes builds an engine from in-memory model bytes. The buffer is
// only needed during construction; the session keeps its own copy.
func NewFromBytes(modelData []byte, config Config) (*Engine, error) {
	if len(modelData) == 0 {
		return nil, errors.New("empty model data")
	}

	slog.Debug("initializing inference engine",
		"model_path", config.ModelPath,
		"model_bytes", len(modelData),
		"gpu_enabled", config.GPU.UseGPU,
		"num_threads", config.NumThreads)

	if err := setupEnvironment(config.GPU.UseGPU); err != nil {
		return nil, err
	}

	inputInfo, outputInfo, err := inspectModel(modelData)
	if err != nil {
		return nil, err
	}

	inputShape, err := resolveDims(inputInfo.Dimensions)
	if err != nil {
		return nil, fmt.Errorf("unusable input shape %v: %w", inputInfo.Dimensions, err)
	}
	outputShape, err := resolveDims(outputInfo.Dimensions)
	if err != nil {
		return nil, fmt.Errorf("unusable output shape %v: %w", outputInfo.Dimensions, err)
	}

	layout, err := onnx.DetectLayout(inputShape)
	if err != nil {
		return nil, fmt.Errorf("unsupported input layout: %w", err)
	}
	h, w, _, err := onnx.ImageDims(inputShape, layout)
	if err != nil {
		return nil, err
	}

	session, err := createSession(modelData, inputInfo.Name, outputInfo.Name, config)
	if err != nil {
		return nil, err
	}

	boundInput, err := onnxruntime_go.NewEmptyTensor[float32](onnxruntime_go.NewShape(inputShape...))
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			slog.Warn("failed to destroy session", "error", destroyErr)
		}
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}

	e := &Engine{
		config:      config,
		session:     session,
		inputInfo:   inputInfo,
		outputInfo:  outputInfo,
		inputShape:  inputShape,
		outputShape: outputShape,
		layout:      layout,
		inputH:      h,
		inputW:      w,
		inputElems:  onnx.ElementCount(inputShape),
		boundInput:  boundInput,
	}

	slog.Debug("inference engine initialized",
		"input_shape", inputShape,
		"output_shape", outputShape,
		"layout", layout.String(),
		"input_name", inputInfo.Name,
		"output_name", outputInfo.Name)
	return e, nil
}

// resolveDims copies dims, pinning a dynamic batch dimension to 1. Dynamic
// dimensions anywhere else leave the input size unknowable and are rejected.
func resolveDims(dims []int64) ([]int64, error) {
	if len(dims) == 0 {
		return nil, errors.New("empty shape")
	}
	out := make([]int64, len(dims))
	copy(out, dims)
	if out[0] <= 0 {
		out[0] = 1
	}
	for i := 1; i < len(out); i++ {
		if out[i] <= 0 {
			return nil, fmt.Errorf("dynamic dimension at axis %d", i)
		}
	}
	return out, nil
}

// InputShape returns a copy of the resolved model input shape.
func (e *Engine) InputShape() []int64 {
	shape := make([]int64, len(e.inputShape))
	copy(shape, e.inputShape)
	return shape
}

// OutputShape returns a copy of the resolved model output shape.
func (e *Engine) OutputShape() []int64 {
	shape := make([]int64, len(e.outputShape))
	copy(shape, e.outputShape)
	return shape
}

// Layout reports how the model arranges its channel axis.
func (e *Engine) Layout() onnx.Layout { return e.layout }

// InputWidth returns the model's expected image width in pixels.
func (e *Engine) InputWidth() int { return e.inputW }

// InputHeight returns the model's expected image height in pixels.
func (e *Engine) InputHeight() int { return e.inputH }

// InputElements returns the element count of one input tensor.
func (e *Engine) InputElements() int { return e.inputElems }

// OutputElements returns the element count of one output tensor.
func (e *Engine) OutputElements() int { return onnx.ElementCount(e.outputShape) }

// OutputDataType returns the model's declared output element type.
func (e *Engine) OutputDataType() onnxruntime_go.TensorElementDataType {
	return e.outputInfo.DataType
}

// Run executes one inference pass. The caller's data is copied into the
// engine's bound input tensor; the result is copied out of runtime-owned
// memory before the runtime value is destroyed, so the returned tensor stays
// valid across subsequent runs.
func (e *Engine) Run(t onnx.Tensor) (onnx.Tensor, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil {
		return onnx.Tensor{}, ErrClosed
	}
	if len(t.Data) != e.inputElems {
		return onnx.Tensor{}, fmt.Errorf("%w: got %d elements, want %d",
			ErrShapeMismatch, len(t.Data), e.inputElems)
	}

	copy(e.boundInput.GetData(), t.Data)

	outputs := []onnxruntime_go.Value{nil}
	if err := e.session.Run([]onnxruntime_go.Value{e.boundInput}, outputs); err != nil {
		return onnx.Tensor{}, fmt.Errorf("inference failed: %w", err)
	}
	outputValue := outputs[0]
	defer destroyValue(outputValue)

	floatTensor, ok := outputValue.(*onnxruntime_go.Tensor[float32])
	if !ok {
		return onnx.Tensor{}, fmt.Errorf("expected float32 output tensor, got %T", outputValue)
	}

	shape := floatTensor.GetShape()
	outShape := make([]int64, len(shape))
	copy(outShape, shape)

	src := floatTensor.GetData()
	out := make([]float32, len(src))
	copy(out, src)

	return onnx.Tensor{Data: out, Shape: outShape}, nil
}

// Close releases the bound input tensor and the session. Safe to call more
// than once; Run calls in flight finish first.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.boundInput != nil {
		if err := e.boundInput.Destroy(); err != nil {
			slog.Warn("failed to destroy input tensor", "error", err)
		}
		e.boundInput = nil
	}
	if e.session != nil {
		if err := e.session.Destroy(); err != nil {
			slog.Warn("failed to destroy session", "error", err)
		}
		e.session = nil
	}
	return nil
}

// ModelInfo returns information about the loaded model for display.
func (e *Engine) ModelInfo() map[string]interface{} {
	return map[string]interface{}{
		"model_path":       e.config.ModelPath,
		"input_name":       e.inputInfo.Name,
		"output_name":      e.outputInfo.Name,
		"input_shape":      e.InputShape(),
		"output_shape":     e.OutputShape(),
		"layout":           e.layout.String(),
		"input_data_type":  e.inputInfo.DataType,
		"output_data_type": e.outputInfo.DataType,
		"input_width":      e.inputW,
		"input_height":     e.inputH,
		"num_threads":      e.config.NumThreads,
		"gpu_enabled":      e.config.GPU.UseGPU,
	}
}

func destroyValue(v onnxruntime_go.Value) {
	if v == nil {
		return
	}
	if err := v.Destroy(); err != nil {
		slog.Warn("failed to destroy output tensor", "error", err)
	}
}
