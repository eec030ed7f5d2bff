// Package source provides reference frame sources for the live pipeline:
// a procedural synthetic camera and a directory of still images replayed at
// a fixed rate. Sources are push collaborators; the pipeline's mailbox is
// responsible for keep-only-latest backpressure, so sources just deliver at
// their own pace.
package source

import (
	"context"
	"time"

	"github.com/MeKo-Tech/lumo/internal/frame"
)

// Source delivers a sequence of frames until the context is canceled. The
// returned channel closes when delivery stops. Each frame carries a release
// hook; the consumer must release every frame it receives.
type Source interface {
	Frames(ctx context.Context) <-chan *frame.Raw
}

// interval converts frames-per-second to a delivery period, clamped to
// something a ticker accepts.
func interval(fps float64) time.Duration {
	if fps <= 0 {
		fps = 15
	}
	d := time.Duration(float64(time.Second) / fps)
	if d < time.Millisecond {
		d = time.Millisecond
	}
	return d
}

// deliver pushes a frame unless the context ends first. Returns false when
// the context is done; the undelivered frame is released.
func deliver(ctx context.Context, out chan<- *frame.Raw, f *frame.Raw) bool {
	select {
	case out <- f:
		return true
	case <-ctx.Done():
		f.Release()
		return false
	}
}
