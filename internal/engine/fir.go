// Package engine executes the envelope detector's signal path: FIR
// filtering, the matched delay line, magnitude extraction and the
// decimating smoother.
//
// Every type is generic over float32 and float64. Filter coefficients are
// always designed in float64 and converted once at construction.
package engine

import (
	"errors"
	"slices"

	"github.com/tphakala/go-audio-envelope/internal/simdops"
)

// ErrEmptyFilter is returned when a filter is built from no coefficients.
var ErrEmptyFilter = errors.New("empty coefficient vector")

// FIR is a streaming finite impulse response filter.
//
// The output at time t is Σ h[k]·x[t−k] over the most recent len(h) inputs,
// with inputs before the first call taken as zero. History lives in a
// double-length circular buffer (hist[i] == hist[i+taps]) so that the
// current window is always one contiguous slice.
type FIR[F simdops.Float] struct {
	coeffs   []float64
	reversed []F // reversed[k] = h[taps-1-k], oldest sample first
	hist     []F
	pos      int // index of the oldest sample, next write position
	scratch  []F

	fft *FFTConvolver // float64 block path for long filters
	ops *simdops.Ops[F]
}

// NewFIR creates a filter with the given impulse response.
func NewFIR[F simdops.Float](coeffs []float64) (*FIR[F], error) {
	taps := len(coeffs)
	if taps == 0 {
		return nil, ErrEmptyFilter
	}

	f := &FIR[F]{
		coeffs:   slices.Clone(coeffs),
		reversed: make([]F, taps),
		hist:     make([]F, 2*taps),
		ops:      simdops.For[F](),
	}
	for k, c := range coeffs {
		f.reversed[taps-1-k] = F(c)
	}

	if rev, ok := any(f.reversed).([]float64); ok && taps >= minKernelForFFT {
		f.fft = NewFFTConvolver(rev)
	}

	return f, nil
}

// Process filters one sample.
func (f *FIR[F]) Process(x F) F {
	taps := len(f.reversed)
	f.hist[f.pos] = x
	f.hist[f.pos+taps] = x
	f.pos++
	if f.pos == taps {
		f.pos = 0
	}
	return f.ops.DotProductUnsafe(f.hist[f.pos:f.pos+taps], f.reversed)
}

// ProcessBlock filters src into dst, which must be at least as long as src.
// dst may alias src. The result matches calling Process on each sample.
func (f *FIR[F]) ProcessBlock(dst, src []F) {
	if len(src) == 0 {
		return
	}

	taps := len(f.reversed)
	need := taps - 1 + len(src)
	if cap(f.scratch) < need {
		f.scratch = make([]F, need)
	}
	buf := f.scratch[:need]

	copy(buf, f.hist[f.pos+1:f.pos+taps])
	copy(buf[taps-1:], src)

	out := dst[:len(src)]
	if f.fft != nil && len(src) >= minBlockForFFT {
		f.fft.Convolve(any(out).([]float64), any(buf).([]float64))
	} else {
		f.ops.ConvolveValid(out, buf, f.reversed)
	}

	// Keep the last taps inputs, oldest first, at position zero.
	tail := buf[need-taps:]
	copy(f.hist[:taps], tail)
	copy(f.hist[taps:], tail)
	f.pos = 0
}

// Reset clears the history as if no sample had been seen.
func (f *FIR[F]) Reset() {
	clear(f.hist)
	f.pos = 0
}

// Taps returns the number of coefficients.
func (f *FIR[F]) Taps() int {
	return len(f.reversed)
}

// UsesFFT reports whether long blocks are filtered by FFT convolution.
func (f *FIR[F]) UsesFFT() bool {
	return f.fft != nil
}

// MemoryUsage returns the approximate state size in bytes.
func (f *FIR[F]) MemoryUsage() int64 {
	elems := int64(len(f.reversed) + len(f.hist) + cap(f.scratch))
	usage := elems*sizeOf[F]() + int64(len(f.coeffs))*bytesPerFloat64
	if f.fft != nil {
		usage += int64(f.fft.fftSize) * 4 * bytesPerFloat64
	}
	return usage
}

func sizeOf[F simdops.Float]() int64 {
	var zero F
	if _, ok := any(zero).(float32); ok {
		return bytesPerFloat32
	}
	return bytesPerFloat64
}
