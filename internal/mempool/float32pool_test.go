package mempool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizeClass(t *testing.T) {
	tests := []struct {
		name     string
		input    int
		expected int
	}{
		{name: "small size gets minimum", input: 1, expected: 1024},
		{name: "exactly 1024", input: 1024, expected: 1024},
		{name: "just over 1024", input: 1025, expected: 2048},
		{name: "exact multiple of 1024", input: 2048, expected: 2048},
		{name: "odd number", input: 1500, expected: 2048},
		{name: "large size", input: 10000, expected: 10240},
		{name: "zero size", input: 0, expected: 1024},
		{name: "negative size", input: -1, expected: 1024},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sizeClass(tt.input))
		})
	}
}

func TestGetFloat32(t *testing.T) {
	sizes := []int{0, 100, 1024, 5000, 224 * 224 * 3}
	for _, size := range sizes {
		buf := GetFloat32(size)
		assert.Len(t, buf, size)
		assert.GreaterOrEqual(t, cap(buf), size)
		if len(buf) > 0 {
			buf[0] = 42.0
			assert.InDelta(t, float32(42.0), buf[0], 0.0001)
		}
		PutFloat32(buf)
	}
}

func TestGetBytes(t *testing.T) {
	sizes := []int{0, 100, 1024, 640 * 480 * 3}
	for _, size := range sizes {
		buf := GetBytes(size)
		assert.Len(t, buf, size)
		assert.GreaterOrEqual(t, cap(buf), size)
		if len(buf) > 0 {
			buf[0] = 7
			assert.Equal(t, byte(7), buf[0])
		}
		PutBytes(buf)
	}
}

func TestPutNilIsSafe(t *testing.T) {
	PutFloat32(nil)
	PutBytes(nil)
	PutFloat32(make([]float32, 0))
	PutBytes(make([]byte, 0))
}

func TestPoolReuseCycle(t *testing.T) {
	// A tensor buffer for a 224x224 RGB input cycled like the worker does.
	size := 224 * 224 * 3
	for range 100 {
		buf := GetFloat32(size)
		require.Len(t, buf, size)
		PutFloat32(buf)
	}
	for range 100 {
		buf := GetBytes(size)
		require.Len(t, buf, size)
		PutBytes(buf)
	}
}

func TestPoolsAreIndependent(t *testing.T) {
	f := GetFloat32(2000)
	b := GetBytes(2000)
	assert.Len(t, f, 2000)
	assert.Len(t, b, 2000)
	PutFloat32(f)
	PutBytes(b)
}

func TestConcurrentAccess(t *testing.T) {
	const numGoroutines = 50
	const numIterations = 100
	const bufferSize = 1500

	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	for range numGoroutines {
		go func() {
			defer wg.Done()
			for range numIterations {
				fbuf := GetFloat32(bufferSize)
				assert.Len(t, fbuf, bufferSize)
				for k := range fbuf {
					fbuf[k] = float32(k)
				}
				PutFloat32(fbuf)

				bbuf := GetBytes(bufferSize)
				assert.Len(t, bbuf, bufferSize)
				PutBytes(bbuf)
			}
		}()
	}
	wg.Wait()
}

func BenchmarkGetPutFloat32Tensor(b *testing.B) {
	size := 224 * 224 * 3
	for range b.N {
		buf := GetFloat32(size)
		PutFloat32(buf)
	}
}

func BenchmarkGetPutBytesVGA(b *testing.B) {
	size := 640 * 480 * 3
	for range b.N {
		buf := GetBytes(size)
		PutBytes(buf)
	}
}

func BenchmarkDirectAllocTensor(b *testing.B) {
	for range b.N {
		_ = make([]float32, 224*224*3)
	}
}
