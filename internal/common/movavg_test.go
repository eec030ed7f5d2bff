package common

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMovingAverageEmpty(t *testing.T) {
	avg := NewMovingAverage(0.5)
	assert.Equal(t, time.Duration(0), avg.Value())
	assert.Equal(t, uint64(0), avg.Count())
}

func TestMovingAverageFirstSampleSeeds(t *testing.T) {
	avg := NewMovingAverage(0.1)
	avg.Add(100 * time.Millisecond)

	assert.Equal(t, 100*time.Millisecond, avg.Value())
	assert.Equal(t, uint64(1), avg.Count())
}

func TestMovingAverageSmoothing(t *testing.T) {
	avg := NewMovingAverage(0.5)
	avg.Add(100 * time.Millisecond)
	avg.Add(200 * time.Millisecond)

	// 0.5*200ms + 0.5*100ms = 150ms
	assert.Equal(t, 150*time.Millisecond, avg.Value())
	assert.Equal(t, uint64(2), avg.Count())
}

func TestMovingAverageConvergesToConstant(t *testing.T) {
	avg := NewMovingAverage(0.1)
	for range 100 {
		avg.Add(20 * time.Millisecond)
	}
	assert.InDelta(t, float64(20*time.Millisecond), float64(avg.Value()), float64(time.Microsecond))
}

func TestMovingAverageInvalidAlphaFallsBack(t *testing.T) {
	for _, alpha := range []float64{0, -1, 1.5} {
		avg := NewMovingAverage(alpha)
		avg.Add(10 * time.Millisecond)
		avg.Add(10 * time.Millisecond)
		assert.Equal(t, 10*time.Millisecond, avg.Value())
	}
}

func TestMovingAverageReset(t *testing.T) {
	avg := NewMovingAverage(0.5)
	avg.Add(50 * time.Millisecond)
	avg.Reset()

	assert.Equal(t, time.Duration(0), avg.Value())
	assert.Equal(t, uint64(0), avg.Count())

	avg.Add(30 * time.Millisecond)
	assert.Equal(t, 30*time.Millisecond, avg.Value())
}

func TestMovingAverageConcurrent(t *testing.T) {
	avg := NewMovingAverage(0.1)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				avg.Add(10 * time.Millisecond)
				_ = avg.Value()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(800), avg.Count())
	assert.Equal(t, 10*time.Millisecond, avg.Value())
}
