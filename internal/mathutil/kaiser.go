package mathutil

import "math"

// KaiserBeta returns the Kaiser window β that achieves the given stopband
// attenuation in dB.
//
// Kaiser & Schafer:
//   - att > 50 dB:        β = 0.1102·(att − 8.7)
//   - 21 dB ≤ att ≤ 50 dB: β = 0.5842·(att − 21)^0.4 + 0.07886·(att − 21)
//   - att < 21 dB:        β = 0
func KaiserBeta(attenuation float64) float64 {
	switch {
	case attenuation > kaiserAttHigh:
		return kaiserBetaHighCoeff * (attenuation - kaiserBetaHighOffset)
	case attenuation >= kaiserAttMedium:
		delta := attenuation - kaiserAttMedium
		return kaiserBetaMediumCoeff1*math.Pow(delta, kaiserBetaMediumPower) + kaiserBetaMediumCoeff2*delta
	default:
		return 0.0
	}
}

// KaiserAttenuation approximately inverts KaiserBeta on its linear branch.
func KaiserAttenuation(beta float64) float64 {
	if beta < kaiserBetaMinThreshold {
		return 0.0
	}
	return kaiserBetaHighOffset + beta/kaiserBetaHighCoeff
}

// EstimateAttenuation predicts the stopband attenuation in dB reachable by a
// windowed FIR filter with the given number of taps and transition width.
//
// The transition width is normalized to Nyquist (1.0 = Fs/2), matching the
// passband edges used by the designers. The estimate is Kaiser's
//
//	att ≈ 8 + 2.285 · Δω · (taps − 1),  Δω = π · width
//
// and is never below zero.
func EstimateAttenuation(taps int, transitionWidth float64) float64 {
	if taps < 2 || transitionWidth <= 0 {
		return 0.0
	}
	att := kaiserLengthOffset + kaiserLengthMultiplier*math.Pi*transitionWidth*float64(taps-1)
	return math.Max(att, 0)
}

// EstimateFilterLength returns the number of taps a windowed FIR filter
// needs for the given attenuation (dB) and transition width (normalized to
// Nyquist). It is the inverse of EstimateAttenuation.
//
// The result is odd, so that a symmetric or antisymmetric filter has an
// integer centre tap, and clamped to [3, 8191].
func EstimateFilterLength(attenuation, transitionWidth float64) int {
	if transitionWidth <= 0 {
		transitionWidth = defaultTransitionWidth
	}

	order := (attenuation - kaiserLengthOffset) / (kaiserLengthMultiplier * math.Pi * transitionWidth)
	taps := int(math.Ceil(order)) + 1
	if taps%2 == 0 {
		taps++
	}

	return min(max(taps, minFilterLength), maxFilterLength)
}
