// Package testutil provides reusable assertions for the envelope detector tests.
package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/floats"
)

// Default tolerances for various test scenarios.
const (
	DefaultTolerance   = 1e-10
	MagnitudeTolerance = 1e-2
	WindowTolerance    = 1e-10
)

// halfDivisor is used for finding center indices in symmetric arrays.
const halfDivisor = 2

// AssertSymmetric verifies that a slice is symmetric (s[i] == s[n-1-i]).
func AssertSymmetric(t *testing.T, s []float64, tolerance float64) bool {
	t.Helper()
	n := len(s)
	for i := 0; i < n/halfDivisor; i++ {
		j := n - 1 - i
		if !assert.InDelta(t, s[i], s[j], tolerance,
			"slice not symmetric at i=%d: s[%d]=%f != s[%d]=%f", i, i, s[i], j, s[j]) {
			return false
		}
	}
	return true
}

// AssertAntisymmetric verifies s[center+k] == -s[center-k] for every k that
// stays in range, and that s[center] is zero.
func AssertAntisymmetric(t *testing.T, s []float64, center int, tolerance float64) bool {
	t.Helper()
	if !assert.InDelta(t, 0.0, s[center], tolerance, "center tap s[%d] must be zero", center) {
		return false
	}
	for k := 1; center+k < len(s) && center-k >= 0; k++ {
		if !assert.InDelta(t, -s[center-k], s[center+k], tolerance,
			"not antisymmetric at offset %d: %f vs %f", k, s[center-k], s[center+k]) {
			return false
		}
	}
	return true
}

// AssertNoNaNOrInf verifies that no elements in the slice are NaN or Inf.
func AssertNoNaNOrInf(t *testing.T, s []float64) bool {
	t.Helper()
	for i, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return assert.Fail(t, "found non-finite value", "s[%d] = %v", i, v)
		}
	}
	return true
}

// AssertDCGain verifies that the sum of coefficients equals the expected DC gain.
func AssertDCGain(t *testing.T, coeffs []float64, expectedGain, tolerance float64) bool {
	t.Helper()
	sum := floats.Sum(coeffs)
	return assert.InDelta(t, expectedGain, sum, tolerance,
		"DC gain = %f, want %f", sum, expectedGain)
}

// AssertCenterIsMax verifies that the center element is the maximum value.
func AssertCenterIsMax(t *testing.T, s []float64) bool {
	t.Helper()
	if len(s) == 0 {
		return assert.Fail(t, "empty slice")
	}
	centerIdx := len(s) / halfDivisor
	if maxIdx := floats.MaxIdx(s); s[maxIdx] > s[centerIdx] {
		return assert.Fail(t, "center is not max",
			"s[%d]=%f > center s[%d]=%f", maxIdx, s[maxIdx], centerIdx, s[centerIdx])
	}
	return true
}

// AssertRelativeError verifies that the relative error between actual and expected is within tolerance.
func AssertRelativeError(t *testing.T, expected, actual, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	if expected == 0 {
		return assert.InDelta(t, expected, actual, tolerance, msgAndArgs...)
	}
	relError := math.Abs(actual-expected) / math.Abs(expected)
	return assert.LessOrEqual(t, relError, tolerance,
		"relative error %e exceeds tolerance %e (expected=%f, actual=%f)",
		relError, tolerance, expected, actual)
}

// AssertInRange verifies that a value is within [min, max].
func AssertInRange(t *testing.T, value, minVal, maxVal float64) bool {
	t.Helper()
	if value < minVal || value > maxVal {
		return assert.Fail(t, "value out of range",
			"value %f is outside range [%f, %f]", value, minVal, maxVal)
	}
	return true
}

// RelativeRMSError returns ||actual − expected||₂ / ||expected||₂.
// Both slices must have the same length.
func RelativeRMSError(actual, expected []float64) float64 {
	ref := floats.Norm(expected, 2)
	if ref == 0 {
		return floats.Norm(actual, 2)
	}
	return floats.Distance(actual, expected, 2) / ref
}

// Sine returns n samples of amplitude·sin(2π·freq·i/rate + phase).
func Sine(n int, freq, rate, amplitude, phase float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/rate+phase)
	}
	return out
}

// Impulse returns n samples that are zero except for a one at index at.
func Impulse(n, at int) []float64 {
	out := make([]float64, n)
	out[at] = 1.0
	return out
}
