package common

import (
	"sync"
	"time"
)

// defaultSmoothing weights new samples at 10%, which settles within a few
// dozen frames at camera rates without jitter from single slow frames.
const defaultSmoothing = 0.1

// MovingAverage is an exponentially weighted moving average over durations.
// The first sample seeds the average directly. Safe for concurrent use:
// the pipeline worker records samples while stats readers take snapshots.
type MovingAverage struct {
	mu    sync.Mutex
	alpha float64
	value float64
	count uint64
}

// NewMovingAverage creates an average with the given smoothing factor in
// (0, 1]; higher alpha follows recent samples more closely. Values outside
// the range fall back to the default.
func NewMovingAverage(alpha float64) *MovingAverage {
	if alpha <= 0 || alpha > 1 {
		alpha = defaultSmoothing
	}
	return &MovingAverage{alpha: alpha}
}

// Add records one sample.
func (a *MovingAverage) Add(d time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.count == 0 {
		a.value = float64(d)
	} else {
		a.value = a.alpha*float64(d) + (1-a.alpha)*a.value
	}
	a.count++
}

// Value returns the current average, zero before any sample.
func (a *MovingAverage) Value() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return time.Duration(a.value)
}

// Count returns the number of recorded samples.
func (a *MovingAverage) Count() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.count
}

// Reset clears the average and sample count.
func (a *MovingAverage) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.value = 0
	a.count = 0
}
