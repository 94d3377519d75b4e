package pipeline

import (
	"sync"
)

// Sample is the element type a RingBuffer can hold.
type Sample interface {
	float32 | float64
}

// RingBuffer is a growable FIFO of samples sitting between two stages.
type RingBuffer[T Sample] struct {
	data     []T
	size     int
	readPos  int
	writePos int
	mu       sync.Mutex
}

// NewRingBuffer creates a ring buffer with the given initial capacity.
func NewRingBuffer[T Sample](capacity int) *RingBuffer[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &RingBuffer[T]{data: make([]T, capacity)}
}

// Write appends samples, growing the buffer when needed.
func (b *RingBuffer[T]) Write(samples []T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(samples) == 0 {
		return
	}
	if b.size+len(samples) > len(b.data) {
		b.grow(b.size + len(samples))
	}

	n := copy(b.data[b.writePos:], samples)
	copy(b.data, samples[n:])
	b.writePos = (b.writePos + len(samples)) % len(b.data)
	b.size += len(samples)
}

// Read removes up to len(dst) samples into dst and returns the count.
func (b *RingBuffer[T]) Read(dst []T) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.peek(dst)
	b.readPos = (b.readPos + n) % len(b.data)
	b.size -= n
	return n
}

func (b *RingBuffer[T]) peek(dst []T) int {
	n := min(len(dst), b.size)
	if n == 0 {
		return 0
	}
	first := copy(dst[:n], b.data[b.readPos:])
	copy(dst[first:n], b.data)
	return n
}

// ReadAll removes and returns every buffered sample.
func (b *RingBuffer[T]) ReadAll() []T {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]T, b.size)
	n := b.peek(out)
	b.readPos = (b.readPos + n) % len(b.data)
	b.size -= n
	return out
}

// Available returns the number of samples available for reading.
func (b *RingBuffer[T]) Available() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

// Capacity returns the current buffer capacity.
func (b *RingBuffer[T]) Capacity() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}

// Clear removes all samples.
func (b *RingBuffer[T]) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.size = 0
	b.readPos = 0
	b.writePos = 0
}

// grow increases capacity to at least minCapacity, keeping order.
func (b *RingBuffer[T]) grow(minCapacity int) {
	newCapacity := len(b.data)
	for newCapacity < minCapacity {
		newCapacity *= bufferGrowthFactor
	}

	newData := make([]T, newCapacity)
	b.peek(newData)

	b.data = newData
	b.readPos = 0
	b.writePos = b.size
}
