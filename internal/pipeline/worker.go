package pipeline

import (
	"errors"
	"log/slog"

	"github.com/MeKo-Tech/lumo/internal/frame"
)

// Start spawns the dedicated pipeline worker. All stages for a frame run
// sequentially on that one goroutine, which also makes it the only caller of
// the non-reentrant engine. Returns ErrClosed after Close; starting twice is
// a no-op.
func (c *Classifier) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateClosed {
		return ErrClosed
	}
	if c.started {
		return nil
	}
	c.started = true
	c.worker.Add(1)
	go c.run()
	return nil
}

// Submit offers a frame to the live pipeline. It never blocks: if the worker
// is still busy with the previous frame, the older pending frame is dropped
// and released. Frames submitted after Close are released and counted.
func (c *Classifier) Submit(f *frame.Raw) {
	if f == nil {
		return
	}
	c.box.put(f)
}

// run is the worker loop: take the latest frame, classify, push to the sink.
// Per-frame failures are logged and counted, never fatal to the loop.
func (c *Classifier) run() {
	defer c.worker.Done()
	for {
		f, ok := c.box.take()
		if !ok {
			return
		}

		c.setState(StateProcessing)
		pred, err := c.ClassifyFrame(f)
		c.setState(StateIdle)

		switch {
		case err == nil:
			framesProcessed.WithLabelValues("ok").Inc()
		case errors.Is(err, ErrShapeMismatch):
			framesProcessed.WithLabelValues("shape_mismatch").Inc()
			continue
		default:
			framesProcessed.WithLabelValues("error").Inc()
			slog.Warn("frame classification failed", "seq", f.Seq, "error", err)
			continue
		}

		if c.sink != nil {
			c.sink(pred)
		}
	}
}

func (c *Classifier) setState(s State) {
	c.mu.Lock()
	if c.state != StateClosed {
		c.state = s
	}
	c.mu.Unlock()
}

// Drops returns the number of frames discarded by keep-only-latest
// backpressure since the pipeline was built.
func (c *Classifier) Drops() uint64 { return c.box.drops() }
