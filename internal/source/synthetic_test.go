package source

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/lumo/internal/frame"
)

func TestSyntheticDeliversValidFrames(t *testing.T) {
	src := NewSynthetic(SyntheticConfig{Width: 64, Height: 48, FPS: 200})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := src.Frames(ctx)
	for i := 0; i < 3; i++ {
		select {
		case f := <-ch:
			require.NotNil(t, f)
			assert.Equal(t, 64, f.Width)
			assert.Equal(t, 48, f.Height)
			require.NoError(t, f.Validate())
			assert.Equal(t, uint64(i+1), f.Seq)
			f.Release()
		case <-time.After(time.Second):
			t.Fatal("no frame delivered")
		}
	}
}

func TestSyntheticFramesDiffer(t *testing.T) {
	src := NewSynthetic(SyntheticConfig{Width: 32, Height: 32, FPS: 500})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := src.Frames(ctx)
	f1 := <-ch
	y1 := make([]byte, len(f1.Y))
	copy(y1, f1.Y)
	f1.Release()

	f2 := <-ch
	assert.NotEqual(t, y1, f2.Y, "the gradient moves between frames")
	f2.Release()
}

func TestSyntheticFailureInjection(t *testing.T) {
	src := NewSynthetic(SyntheticConfig{Width: 32, Height: 32, FPS: 500, FailEvery: 3})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := src.Frames(ctx)
	empties := 0
	for i := 0; i < 9; i++ {
		f := <-ch
		if f.IsEmpty() {
			empties++
			assert.Equal(t, uint64(0), f.Seq%3, "only every third frame is empty")
		}
		f.Release()
	}
	assert.Equal(t, 3, empties)
}

func TestSyntheticStopsOnCancel(t *testing.T) {
	src := NewSynthetic(DefaultSyntheticConfig())
	ctx, cancel := context.WithCancel(context.Background())

	ch := src.Frames(ctx)
	f := <-ch
	f.Release()
	cancel()

	deadline := time.After(time.Second)
	for {
		select {
		case got, ok := <-ch:
			if !ok {
				return // channel closed, source stopped
			}
			got.Release()
		case <-deadline:
			t.Fatal("channel did not close after cancel")
		}
	}
}

func TestSyntheticCounterStamp(t *testing.T) {
	src := NewSynthetic(SyntheticConfig{Width: 128, Height: 64, FPS: 500})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f := <-src.Frames(ctx)
	defer f.Release()

	// The stamped digits write peak-white luma the gradient never produces.
	found := false
	for y := 0; y < 17 && !found; y++ {
		for x := 0; x < f.Width; x++ {
			if f.Y[y*f.Width+x] == 235 {
				found = true
				break
			}
		}
	}
	assert.True(t, found, "frame counter stamped into the luma plane")
}

func TestIntervalClamps(t *testing.T) {
	assert.Equal(t, time.Second/15, interval(0))
	assert.Equal(t, time.Second/30, interval(30))
	assert.Equal(t, time.Millisecond, interval(1e9))
}

func TestDeliverReleasesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	released := 0
	f := frame.UniformRaw(4, 4, 128, 128, 128)
	f.OnRelease = func() { released++ }

	out := make(chan *frame.Raw) // nobody reads
	assert.False(t, deliver(ctx, out, f))
	assert.Equal(t, 1, released)
}
