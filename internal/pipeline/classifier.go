package pipeline

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"github.com/MeKo-Tech/lumo/internal/common"
	"github.com/MeKo-Tech/lumo/internal/convert"
	"github.com/MeKo-Tech/lumo/internal/decode"
	"github.com/MeKo-Tech/lumo/internal/frame"
	"github.com/MeKo-Tech/lumo/internal/mempool"
	"github.com/MeKo-Tech/lumo/internal/onnx"
	"github.com/MeKo-Tech/lumo/internal/preprocess"
	"github.com/MeKo-Tech/lumo/internal/resample"
)

// ErrClosed is returned for frames submitted after Close.
var ErrClosed = errors.New("pipeline is closed")

// Engine is the inference surface the classifier depends on. The concrete
// implementation is engine.Engine; tests substitute fakes.
type Engine interface {
	InputShape() []int64
	OutputShape() []int64
	Layout() onnx.Layout
	InputWidth() int
	InputHeight() int
	InputElements() int
	Run(onnx.Tensor) (onnx.Tensor, error)
	Close() error
}

// State describes the pipeline's lifecycle position.
type State int

const (
	StateIdle State = iota
	StateProcessing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateProcessing:
		return "processing"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Classifier runs the full conversion-and-inference pipeline for one frame
// at a time. The model's input dimensions are read from the engine once at
// construction; every frame is resampled to exactly that size.
type Classifier struct {
	cfg  Config
	eng  Engine
	norm preprocess.Normalizer
	dec  *decode.Decoder
	sink Sink

	targetW int
	targetH int
	layout  onnx.Layout

	box    *mailbox
	worker sync.WaitGroup

	mu             sync.Mutex
	state          State
	started        bool
	mismatchStreak int
	structuralErr  error

	stats statsCollector
}

func newClassifier(cfg Config, eng Engine, dec *decode.Decoder, sink Sink) *Classifier {
	c := &Classifier{
		cfg:     cfg,
		eng:     eng,
		norm:    cfg.Normalizer,
		dec:     dec,
		sink:    sink,
		targetW: eng.InputWidth(),
		targetH: eng.InputHeight(),
		layout:  eng.Layout(),
		box:     newMailbox(),
		state:   StateIdle,
	}
	c.stats.init()
	return c
}

// TargetSize returns the model input dimensions the pipeline resamples to.
func (c *Classifier) TargetSize() (width, height int) { return c.targetW, c.targetH }

// State returns the pipeline's current lifecycle state.
func (c *Classifier) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err reports a structural configuration error detected at runtime, such as
// a persistent shape mismatch between preprocessor output and model input.
// Nil while the pipeline is healthy.
func (c *Classifier) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.structuralErr
}

// ClassifyFrame runs all stages for one frame and returns its prediction.
// The frame's release hook fires exactly once on every exit path. Frames
// without pixel data degrade to the neutral placeholder image and still
// produce a prediction; a tensor that does not match the model's declared
// input size returns ErrShapeMismatch and the frame is skipped.
func (c *Classifier) ClassifyFrame(f *frame.Raw) (decode.Prediction, error) {
	defer f.Release()
	total := common.NewTimer()

	stage := common.NewTimer()
	packed := convert.Convert(f)
	c.stats.record(stageConvert, stage.Stop())
	if packed.IsNeutral() && !f.IsEmpty() {
		// Validate failed on a frame that claimed pixel data; worth a log
		// line even though processing continues.
		slog.Warn("frame degraded to neutral placeholder",
			"seq", f.Seq, "width", f.Width, "height", f.Height)
	}

	stage = common.NewTimer()
	resized, err := resample.Resize(packed, c.targetW, c.targetH)
	if err != nil {
		c.stats.fail()
		return decode.Prediction{Index: -1}, fmt.Errorf("resize: %w", err)
	}
	c.stats.record(stageResize, stage.Stop())

	stage = common.NewTimer()
	buf := mempool.GetFloat32(resized.Width * resized.Height * 3)
	defer mempool.PutFloat32(buf)
	tensor, err := c.norm.NormalizeInto(resized, c.layout, buf)
	if err != nil {
		c.stats.fail()
		return decode.Prediction{Index: -1}, fmt.Errorf("normalize: %w", err)
	}
	c.stats.record(stageNormalize, stage.Stop())

	if len(tensor.Data) != c.eng.InputElements() {
		c.stats.fail()
		err := fmt.Errorf("%w: got %d elements, want %d",
			ErrShapeMismatch, len(tensor.Data), c.eng.InputElements())
		c.noteMismatch(err)
		return decode.Prediction{Index: -1}, err
	}

	stage = common.NewTimer()
	output, err := c.eng.Run(tensor)
	inferElapsed := stage.Stop()
	if err != nil {
		c.stats.fail()
		if errors.Is(err, ErrShapeMismatch) {
			c.noteMismatch(err)
		}
		return decode.Prediction{Index: -1}, fmt.Errorf("inference: %w", err)
	}
	c.stats.record(stageInfer, inferElapsed)
	inferenceDuration.Observe(inferElapsed.Seconds())
	c.clearMismatch()

	stage = common.NewTimer()
	pred := c.dec.Decode(output)
	c.stats.record(stageDecode, stage.Stop())

	pred.FrameSeq = f.Seq
	pred.Elapsed = total.Stop()
	c.stats.processed(f.Seq)
	return pred, nil
}

// ClassifyImage classifies a still image by pushing it through the same
// planar path camera frames take.
func (c *Classifier) ClassifyImage(img image.Image) (decode.Prediction, error) {
	if img == nil {
		return decode.Prediction{Index: -1}, errors.New("nil image")
	}
	return c.ClassifyFrame(frame.FromImage(img))
}

// noteMismatch tracks consecutive shape mismatches. A run at or beyond the
// configured limit means the model and pipeline disagree structurally, which
// is an operator problem rather than a frame hiccup.
func (c *Classifier) noteMismatch(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mismatchStreak++
	if c.mismatchStreak < c.cfg.StructuralMismatchLimit {
		slog.Warn("frame skipped on shape mismatch",
			"streak", c.mismatchStreak, "error", err)
		return
	}
	if c.structuralErr == nil {
		c.structuralErr = fmt.Errorf(
			"structural shape mismatch after %d consecutive frames: %w",
			c.mismatchStreak, err)
		slog.Error("model and pipeline input sizes disagree; check model configuration",
			"consecutive_mismatches", c.mismatchStreak, "error", err)
	}
}

func (c *Classifier) clearMismatch() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mismatchStreak = 0
	c.structuralErr = nil
}

// Labels returns the loaded label table, empty when none was configured.
func (c *Classifier) Labels() []string { return c.dec.Labels() }

// Info returns key pipeline and model properties for display.
func (c *Classifier) Info() map[string]interface{} {
	info := map[string]interface{}{
		"models_dir":   c.cfg.ModelsDir,
		"target_w":     c.targetW,
		"target_h":     c.targetH,
		"layout":       c.layout.String(),
		"mean":         c.norm.Mean,
		"scale":        c.norm.Scale,
		"softmax":      c.cfg.Softmax,
		"labels":       c.dec.NumLabels(),
		"input_shape":  c.eng.InputShape(),
		"output_shape": c.eng.OutputShape(),
	}
	if me, ok := c.eng.(interface{ ModelInfo() map[string]interface{} }); ok {
		info["model"] = me.ModelInfo()
	}
	return info
}

// Close shuts the pipeline down: no further frames are accepted, the
// in-flight frame (if any) drains, and the engine is released exactly once.
// Safe to call more than once.
func (c *Classifier) Close() error {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return nil
	}
	started := c.started
	c.mu.Unlock()

	c.box.close()
	if started {
		c.worker.Wait()
	}

	c.mu.Lock()
	c.state = StateClosed
	c.mu.Unlock()

	return c.eng.Close()
}
