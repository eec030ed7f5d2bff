package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimer(t *testing.T) {
	timer := NewNamedTimer("test_timer")
	assert.Equal(t, "test_timer", timer.Name())

	// Sleep for a short duration
	time.Sleep(10 * time.Millisecond)

	duration := timer.Stop()
	assert.GreaterOrEqual(t, duration, 10*time.Millisecond)
	assert.Equal(t, duration, timer.Duration())

	str := timer.String()
	assert.Contains(t, str, "test_timer")
	assert.Contains(t, str, "ms")
}

func TestTimerElapsed(t *testing.T) {
	timer := NewTimer()

	time.Sleep(5 * time.Millisecond)
	first := timer.Elapsed()
	assert.GreaterOrEqual(t, first, 5*time.Millisecond)

	// Elapsed does not stop the timer; Duration is still unset.
	assert.Equal(t, time.Duration(0), timer.Duration())

	time.Sleep(5 * time.Millisecond)
	assert.Greater(t, timer.Elapsed(), first)
}
