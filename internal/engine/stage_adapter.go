package engine

import (
	"github.com/tphakala/go-audio-envelope/internal/simdops"
	"github.com/tphakala/simd/cpu"
)

// EnvelopeStage turns real input into its instantaneous magnitude: the
// quadrature pair followed by sqrt(re² + im²). Output has one sample per
// input sample.
//
// With F = float64 it satisfies pipeline.Stage.
type EnvelopeStage[F simdops.Float] struct {
	quad   *Quadrature[F]
	re, im []F
}

// NewEnvelopeStage creates the stage around a designed Hilbert filter.
func NewEnvelopeStage[F simdops.Float](hilbert []float64) (*EnvelopeStage[F], error) {
	quad, err := NewQuadrature[F](hilbert)
	if err != nil {
		return nil, err
	}
	return &EnvelopeStage[F]{quad: quad}, nil
}

// ProcessSample returns the magnitude for one input sample.
func (s *EnvelopeStage[F]) ProcessSample(x F) F {
	re, im := s.quad.Process(x)
	return Magnitude(re, im)
}

// Process returns the magnitude of every input sample.
func (s *EnvelopeStage[F]) Process(input []F) ([]F, error) {
	out := make([]F, len(input))
	s.ProcessInto(out, input)
	return out, nil
}

// ProcessInto writes the magnitudes of src into dst[:len(src)].
func (s *EnvelopeStage[F]) ProcessInto(dst, src []F) {
	n := len(src)
	if cap(s.re) < n {
		s.re = make([]F, n)
		s.im = make([]F, n)
	}
	re, im := s.re[:n], s.im[:n]
	s.quad.ProcessBlock(re, im, src)
	MagnitudeBlock(dst[:n], re, im)
}

// UsesFFT reports whether blocks take the FFT convolution path.
func (s *EnvelopeStage[F]) UsesFFT() bool {
	return s.quad.Hilbert().UsesFFT()
}

// Reset clears the filter and delay history.
func (s *EnvelopeStage[F]) Reset() {
	s.quad.Reset()
}

// GetRatio returns 1: the stage does not change the rate.
func (s *EnvelopeStage[F]) GetRatio() float64 {
	return 1
}

// GetLatency returns N/2, the common delay of both branches.
func (s *EnvelopeStage[F]) GetLatency() int {
	return s.quad.GroupDelay()
}

// GetMinInput returns the minimum input size for processing.
func (s *EnvelopeStage[F]) GetMinInput() int {
	return 1
}

// GetMemoryUsage returns approximate memory usage in bytes.
func (s *EnvelopeStage[F]) GetMemoryUsage() int64 {
	usage := s.quad.hilbert.MemoryUsage()
	usage += int64(s.quad.delay.Delay()+cap(s.re)+cap(s.im)) * sizeOf[F]()
	return usage
}

// GetFilterLength returns the Hilbert filter length N.
func (s *EnvelopeStage[F]) GetFilterLength() int {
	return s.quad.hilbert.Taps()
}

// GetSIMDInfo returns SIMD optimization info.
func (s *EnvelopeStage[F]) GetSIMDInfo() string {
	return cpu.Info()
}

// SmootherStage adapts a Smoother to the block stage interface. Output
// has one sample per factor input samples.
type SmootherStage[F simdops.Float] struct {
	*Smoother[F]
}

// NewSmootherStage wraps the given smoother.
func NewSmootherStage[F simdops.Float](s *Smoother[F]) *SmootherStage[F] {
	return &SmootherStage[F]{Smoother: s}
}

// Process decimates and smooths input.
func (s *SmootherStage[F]) Process(input []F) ([]F, error) {
	return s.ProcessBlock(make([]F, 0, len(input)/s.factor+1), input), nil
}

// GetRatio returns 1/K.
func (s *SmootherStage[F]) GetRatio() float64 {
	return 1 / float64(s.Factor())
}

// UsesFFT reports whether blocks take the FFT convolution path.
func (s *SmootherStage[F]) UsesFFT() bool {
	return s.Lowpass().UsesFFT()
}

// GetLatency returns the group delay in input samples, rounded down.
func (s *SmootherStage[F]) GetLatency() int {
	return int(s.GroupDelay())
}

// GetMinInput returns the minimum input size for processing.
func (s *SmootherStage[F]) GetMinInput() int {
	return 1
}

// GetMemoryUsage returns approximate memory usage in bytes.
func (s *SmootherStage[F]) GetMemoryUsage() int64 {
	return s.lpf.MemoryUsage() + int64(cap(s.kept))*sizeOf[F]()
}

// GetFilterLength returns the lowpass length, order+1.
func (s *SmootherStage[F]) GetFilterLength() int {
	return s.lpf.Taps()
}

// GetSIMDInfo returns SIMD optimization info.
func (s *SmootherStage[F]) GetSIMDInfo() string {
	return cpu.Info()
}
