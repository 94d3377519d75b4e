// Package signal generates amplitude-modulated test signals with a known
// envelope.
package signal

import (
	"fmt"
	"math"
)

// AM describes x(t) = A·(1 + m·sin(2π·fm·t))·sin(2π·fc·t + φ).
type AM struct {
	SampleRate   float64
	Carrier      float64 // fc in Hz
	Modulation   float64 // fm in Hz
	Depth        float64 // m, 0 ≤ m ≤ 1
	Amplitude    float64 // A; zero means 1
	CarrierPhase float64 // φ in radians

	n int64
}

// Validate checks the signal parameters.
func (a *AM) Validate() error {
	switch {
	case !(a.SampleRate > 0):
		return fmt.Errorf("invalid sample rate: %v", a.SampleRate)
	case !(a.Carrier > 0) || a.Carrier >= a.SampleRate/2:
		return fmt.Errorf("carrier %v Hz must be in (0, %v)", a.Carrier, a.SampleRate/2)
	case a.Modulation < 0 || a.Modulation >= a.Carrier:
		return fmt.Errorf("modulation %v Hz must be in [0, carrier)", a.Modulation)
	case a.Depth < 0 || a.Depth > 1:
		return fmt.Errorf("modulation depth %v must be in [0, 1]", a.Depth)
	}
	return nil
}

func (a *AM) amplitude() float64 {
	if a.Amplitude == 0 {
		return 1
	}
	return a.Amplitude
}

// EnvelopeAt returns the true envelope A·(1 + m·sin(2π·fm·t)) at fractional
// sample index t.
func (a *AM) EnvelopeAt(t float64) float64 {
	return a.amplitude() * (1 + a.Depth*math.Sin(2*math.Pi*a.Modulation*t/a.SampleRate))
}

// At returns the signal at integer sample index n.
func (a *AM) At(n int64) float64 {
	t := float64(n)
	return a.EnvelopeAt(t) * math.Sin(2*math.Pi*a.Carrier*t/a.SampleRate+a.CarrierPhase)
}

// Next returns the next sample of the stream.
func (a *AM) Next() float64 {
	x := a.At(a.n)
	a.n++
	return x
}

// Fill writes the next len(dst) samples of the stream into dst.
func (a *AM) Fill(dst []float64) {
	for i := range dst {
		dst[i] = a.Next()
	}
}

// Reset rewinds the stream to sample zero.
func (a *AM) Reset() {
	a.n = 0
}

// Generate returns n samples starting at index zero, independent of the
// stream position.
func (a *AM) Generate(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = a.At(int64(i))
	}
	return out
}

// Envelope returns the true envelope for samples 0..n-1.
func (a *AM) Envelope(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = a.EnvelopeAt(float64(i))
	}
	return out
}
