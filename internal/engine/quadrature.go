package engine

import (
	"fmt"

	"github.com/tphakala/go-audio-envelope/internal/simdops"
)

// Quadrature splits a real signal into a time-aligned analytic pair: the
// input delayed by N/2 samples (real part) and its Hilbert transform
// (imaginary part).
type Quadrature[F simdops.Float] struct {
	hilbert *FIR[F]
	delay   *DelayLine[F]
}

// NewQuadrature builds the pair from an even-length Hilbert filter whose
// group delay is len(coeffs)/2.
func NewQuadrature[F simdops.Float](coeffs []float64) (*Quadrature[F], error) {
	if len(coeffs) == 0 || len(coeffs)%2 != 0 {
		return nil, fmt.Errorf("hilbert filter length %d must be even and positive", len(coeffs))
	}

	hilbert, err := NewFIR[F](coeffs)
	if err != nil {
		return nil, err
	}
	delay, err := NewDelayLine[F](len(coeffs) / latencyDivisor)
	if err != nil {
		return nil, err
	}

	return &Quadrature[F]{hilbert: hilbert, delay: delay}, nil
}

// Process returns the aligned (re, im) pair for one input sample.
func (q *Quadrature[F]) Process(x F) (re, im F) {
	return q.delay.Process(x), q.hilbert.Process(x)
}

// ProcessBlock fills re and im from src. Both must be at least len(src).
func (q *Quadrature[F]) ProcessBlock(re, im, src []F) {
	q.hilbert.ProcessBlock(im, src)
	q.delay.ProcessBlock(re, src)
}

// GroupDelay returns the common delay of both branches in samples.
func (q *Quadrature[F]) GroupDelay() int {
	return q.delay.Delay()
}

// Hilbert exposes the quadrature filter.
func (q *Quadrature[F]) Hilbert() *FIR[F] {
	return q.hilbert
}

// Reset clears both branches.
func (q *Quadrature[F]) Reset() {
	q.hilbert.Reset()
	q.delay.Reset()
}
