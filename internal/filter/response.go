package filter

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Response holds a sampled frequency response.
type Response struct {
	// Frequencies normalized to Nyquist, in [0, 1).
	Frequencies []float64

	// Magnitude is |H| on a linear scale.
	Magnitude []float64

	// Phase in radians.
	Phase []float64
}

// FrequencyResponse samples the DTFT of coeffs at numPoints frequencies
// spaced evenly over [0, Nyquist).
//
// The FFT runs on 2·numPoints points. When the filter is longer than that,
// it is folded modulo the FFT size first; the folded sequence has exactly
// the same DTFT samples, so no taps are lost.
func FrequencyResponse(coeffs []float64, numPoints int) Response {
	if numPoints <= 0 {
		numPoints = defaultResponsePoints
	}
	nfft := 2 * numPoints

	folded := make([]float64, nfft)
	for n, c := range coeffs {
		folded[n%nfft] += c
	}
	spectrum := fft.FFTReal(folded)

	r := Response{
		Frequencies: make([]float64, numPoints),
		Magnitude:   make([]float64, numPoints),
		Phase:       make([]float64, numPoints),
	}
	for k := range numPoints {
		r.Frequencies[k] = float64(k) / float64(numPoints)
		r.Magnitude[k] = cmplx.Abs(spectrum[k])
		r.Phase[k] = cmplx.Phase(spectrum[k])
	}
	return r
}

// MagnitudeAt evaluates |H| at a single frequency normalized to Nyquist.
func MagnitudeAt(coeffs []float64, freq float64) float64 {
	omega := math.Pi * freq
	var re, im float64
	for n, h := range coeffs {
		angle := omega * float64(n)
		re += h * math.Cos(angle)
		im -= h * math.Sin(angle)
	}
	return math.Hypot(re, im)
}

// PassbandDeviation returns the largest |(|H| − 1)| over [low, high],
// sampled on numPoints response points.
func PassbandDeviation(coeffs []float64, low, high float64, numPoints int) float64 {
	r := FrequencyResponse(coeffs, numPoints)
	var worst float64
	for k, f := range r.Frequencies {
		if f < low || f > high {
			continue
		}
		worst = math.Max(worst, math.Abs(r.Magnitude[k]-1))
	}
	return worst
}

// MagnitudeDB converts a linear magnitude to decibels.
func MagnitudeDB(magnitude float64) float64 {
	return dbMultiplier * math.Log10(math.Max(magnitude, minMagnitude))
}
