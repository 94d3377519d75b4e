package engine

import (
	"fmt"
	"slices"

	"github.com/tphakala/go-audio-envelope/internal/simdops"
)

// Smoother keeps every factor-th input sample and runs the kept samples
// through a lowpass FIR designed for the decimated rate. Samples between
// kept ones are dropped without filtering.
type Smoother[F simdops.Float] struct {
	lpf     *FIR[F]
	factor  int
	phase   int
	counter int   // emits when zero
	index   int64 // inputs seen so far
	kept    []F

	onUpdate func(inputIndex int64)
}

// SmootherOption configures a Smoother.
type SmootherOption func(*smootherOptions)

type smootherOptions struct {
	onUpdate func(int64)
}

// WithUpdateHook registers fn to be called with the input index of every
// sample that updates the lowpass filter.
func WithUpdateHook(fn func(inputIndex int64)) SmootherOption {
	return func(o *smootherOptions) {
		o.onUpdate = fn
	}
}

// NewSmoother creates a decimating smoother. Input index i is kept when
// i ≡ phase (mod factor).
func NewSmoother[F simdops.Float](coeffs []float64, factor, phase int, opts ...SmootherOption) (*Smoother[F], error) {
	if factor < 1 {
		return nil, fmt.Errorf("invalid downsample factor: %d (must be at least 1)", factor)
	}
	if phase < 0 || phase >= factor {
		return nil, fmt.Errorf("invalid decimation phase: %d (must be in [0, %d))", phase, factor)
	}

	lpf, err := NewFIR[F](coeffs)
	if err != nil {
		return nil, err
	}

	var o smootherOptions
	for _, opt := range opts {
		opt(&o)
	}

	s := &Smoother[F]{
		lpf:      lpf,
		factor:   factor,
		phase:    phase,
		onUpdate: o.onUpdate,
	}
	s.Reset()
	return s, nil
}

// Process consumes one sample and returns a smoothed output when the
// decimation counter wraps, that is exactly once per factor calls.
func (s *Smoother[F]) Process(x F) (F, bool) {
	idx := s.index
	s.index++

	emit := s.counter == 0
	s.advance()
	if !emit {
		return 0, false
	}

	if s.onUpdate != nil {
		s.onUpdate(idx)
	}
	return s.lpf.Process(x), true
}

// ProcessBlock consumes src and appends the outputs to dst.
func (s *Smoother[F]) ProcessBlock(dst, src []F) []F {
	kept := s.kept[:0]
	for i, x := range src {
		if s.counter == 0 {
			if s.onUpdate != nil {
				s.onUpdate(s.index + int64(i))
			}
			kept = append(kept, x)
		}
		s.advance()
	}
	s.index += int64(len(src))
	s.kept = kept

	start := len(dst)
	dst = slices.Grow(dst, len(kept))[:start+len(kept)]
	s.lpf.ProcessBlock(dst[start:], kept)
	return dst
}

func (s *Smoother[F]) advance() {
	s.counter++
	if s.counter == s.factor {
		s.counter = 0
	}
}

// Factor returns the downsample factor.
func (s *Smoother[F]) Factor() int {
	return s.factor
}

// Lowpass exposes the smoothing filter.
func (s *Smoother[F]) Lowpass() *FIR[F] {
	return s.lpf
}

// GroupDelay returns the smoother's delay in input samples, factor times
// the lowpass group delay.
func (s *Smoother[F]) GroupDelay() float64 {
	return float64(s.factor) * float64(s.lpf.Taps()-1) / latencyDivisor
}

// Reset clears the filter and restarts the decimation phase.
func (s *Smoother[F]) Reset() {
	s.lpf.Reset()
	s.counter = (s.factor - s.phase) % s.factor
	s.index = 0
}
