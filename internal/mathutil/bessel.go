// Package mathutil provides the special functions and empirical formulas
// used by the filter designers.
package mathutil

import "math"

// BesselI0 computes the zeroth-order modified Bessel function of the first
// kind, I₀(x). It is the building block of the Kaiser window.
//
// Two polynomial expansions are used (Abramowitz & Stegun 9.8.1, 9.8.2):
//   - |x| < 3.75: series in (x/3.75)², relative error below 1.6e-7
//   - |x| ≥ 3.75: asymptotic series in 3.75/|x| scaled by e^|x|/sqrt(|x|)
//
// I₀ is even, so the sign of x is ignored.
func BesselI0(x float64) float64 {
	ax := math.Abs(x)

	if ax < besselSmallArgThreshold {
		t := ax / besselSmallArgThreshold
		return horner(besselI0Small[:], t*t)
	}

	t := besselSmallArgThreshold / ax
	return math.Exp(ax) / math.Sqrt(ax) * horner(besselI0Large[:], t)
}

// horner evaluates c[0] + c[1]·t + c[2]·t² + ... .
func horner(c []float64, t float64) float64 {
	var acc float64
	for i := len(c) - 1; i >= 0; i-- {
		acc = acc*t + c[i]
	}
	return acc
}

// Sinc returns the normalized sinc function sin(πx)/(πx), with Sinc(0) = 1.
func Sinc(x float64) float64 {
	if math.Abs(x) < sincZeroThreshold {
		return 1.0
	}
	px := math.Pi * x
	return math.Sin(px) / px
}
