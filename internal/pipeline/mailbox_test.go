package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/lumo/internal/frame"
)

func testFrame(seq uint64, released *int) *frame.Raw {
	f := frame.UniformRaw(4, 4, 128, 128, 128)
	f.Seq = seq
	f.OnRelease = func() { *released++ }
	return f
}

func TestMailboxOverwriteReleasesOld(t *testing.T) {
	m := newMailbox()

	var rel1, rel2, rel3 int
	require.True(t, m.put(testFrame(1, &rel1)))
	require.True(t, m.put(testFrame(2, &rel2)))
	require.True(t, m.put(testFrame(3, &rel3)))

	assert.Equal(t, 1, rel1, "overwritten frame released")
	assert.Equal(t, 1, rel2, "overwritten frame released")
	assert.Equal(t, 0, rel3, "pending frame still owned by the mailbox")
	assert.Equal(t, uint64(2), m.drops())

	f, ok := m.take()
	require.True(t, ok)
	assert.Equal(t, uint64(3), f.Seq, "the newest frame survives")
}

func TestMailboxTakeBlocksUntilPut(t *testing.T) {
	m := newMailbox()

	got := make(chan uint64, 1)
	go func() {
		f, ok := m.take()
		if ok {
			got <- f.Seq
		}
	}()

	// Give the goroutine a moment to block, then deliver.
	time.Sleep(10 * time.Millisecond)
	var rel int
	m.put(testFrame(42, &rel))

	select {
	case seq := <-got:
		assert.Equal(t, uint64(42), seq)
	case <-time.After(time.Second):
		t.Fatal("take did not wake on put")
	}
}

func TestMailboxCloseReleasesPending(t *testing.T) {
	m := newMailbox()

	var rel int
	m.put(testFrame(1, &rel))
	m.close()
	assert.Equal(t, 1, rel, "pending frame released on close")

	_, ok := m.take()
	assert.False(t, ok, "take returns not-ok after close")

	var relLate int
	assert.False(t, m.put(testFrame(2, &relLate)))
	assert.Equal(t, 1, relLate, "frames after close are released immediately")

	m.close() // idempotent
}

func TestMailboxCloseWakesBlockedTake(t *testing.T) {
	m := newMailbox()

	done := make(chan bool, 1)
	go func() {
		_, ok := m.take()
		done <- ok
	}()

	time.Sleep(10 * time.Millisecond)
	m.close()

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("take did not wake on close")
	}
}
