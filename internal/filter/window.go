// Package filter designs the FIR filters of the envelope detector: an
// antisymmetric Hilbert quadrature filter and a windowed-sinc lowpass.
package filter

import (
	"fmt"
	"math"

	"github.com/mjibson/go-dsp/window"
	"github.com/tphakala/go-audio-envelope/internal/mathutil"
)

// Window names a tapering window.
type Window string

// Supported windows.
const (
	WindowHamming     Window = "hamming"
	WindowHann        Window = "hann"
	WindowBlackman    Window = "blackman"
	WindowBartlett    Window = "bartlett"
	WindowRectangular Window = "rectangular"
	WindowKaiser      Window = "kaiser"
)

// Windows lists every supported window, in display order.
func Windows() []Window {
	return []Window{WindowHamming, WindowHann, WindowBlackman, WindowBartlett, WindowRectangular, WindowKaiser}
}

// ParseWindow resolves a window name. The empty string yields def.
func ParseWindow(name string, def Window) (Window, error) {
	if name == "" {
		return def, nil
	}
	for _, w := range Windows() {
		if string(w) == name {
			return w, nil
		}
	}
	return "", fmt.Errorf("unknown window %q", name)
}

// MakeWindow returns the symmetric window of the given length. beta is only
// used by WindowKaiser.
func MakeWindow(w Window, length int, beta float64) ([]float64, error) {
	if length < 1 {
		return nil, fmt.Errorf("invalid window length: %d", length)
	}

	switch w {
	case WindowHamming:
		return window.Hamming(length), nil
	case WindowHann:
		return window.Hann(length), nil
	case WindowBlackman:
		return window.Blackman(length), nil
	case WindowBartlett:
		return window.Bartlett(length), nil
	case WindowRectangular:
		return rectangularWindow(length), nil
	case WindowKaiser:
		return KaiserWindow(length, beta), nil
	default:
		return nil, fmt.Errorf("unknown window %q", w)
	}
}

func rectangularWindow(length int) []float64 {
	w := make([]float64, length)
	for i := range w {
		w[i] = 1.0
	}
	return w
}

// KaiserWindow generates a Kaiser window with peak value 1.
//
//	w[n] = I₀(β·sqrt(1 − ((n − α)/α)²)) / I₀(β),  α = (length − 1)/2
//
// β = 0 gives a rectangular window; larger β trades main lobe width for
// sidelobe attenuation.
func KaiserWindow(length int, beta float64) []float64 {
	if length < 1 {
		return []float64{}
	}
	if length == 1 {
		return []float64{1.0}
	}

	w := make([]float64, length)
	alpha := float64(length-1) / halfDivisor
	norm := mathutil.BesselI0(beta)

	for n := range w {
		x := (float64(n) - alpha) / alpha
		w[n] = mathutil.BesselI0(beta*math.Sqrt(math.Max(0, 1.0-x*x))) / norm
	}

	return w
}
