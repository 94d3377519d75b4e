package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRingBuffer_FIFO(t *testing.T) {
	b := NewRingBuffer[float64](4)
	b.Write([]float64{1, 2, 3})

	dst := make([]float64, 2)
	assert.Equal(t, 2, b.Read(dst))
	assert.Equal(t, []float64{1, 2}, dst)

	// Wraps around the end of the backing array.
	b.Write([]float64{4, 5, 6})
	assert.Equal(t, 4, b.Available())
	assert.Equal(t, 4, b.Capacity(), "full without growing")
	assert.Equal(t, []float64{3, 4, 5, 6}, b.ReadAll())
	assert.Equal(t, 0, b.Available())
}

func TestRingBuffer_GrowKeepsOrder(t *testing.T) {
	b := NewRingBuffer[float32](3)
	b.Write([]float32{1, 2})
	dst := make([]float32, 1)
	b.Read(dst)
	b.Write([]float32{3, 4, 5, 6, 7})

	assert.GreaterOrEqual(t, b.Capacity(), 6)
	assert.Equal(t, []float32{2, 3, 4, 5, 6, 7}, b.ReadAll())
}

func TestRingBuffer_ShortRead(t *testing.T) {
	b := NewRingBuffer[float64](8)
	b.Write([]float64{1, 2, 3})

	dst := make([]float64, 5)
	n := b.Read(dst)
	assert.Equal(t, 3, n)
	assert.Equal(t, []float64{1, 2, 3}, dst[:n])
	assert.Equal(t, 0, b.Available())
}

func TestRingBuffer_Clear(t *testing.T) {
	b := NewRingBuffer[float64](0)
	assert.Equal(t, 1, b.Capacity())

	b.Write([]float64{1, 2, 3})
	b.Clear()
	assert.Equal(t, 0, b.Available())
	assert.Empty(t, b.ReadAll())
}
