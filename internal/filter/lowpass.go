package filter

import (
	"errors"
	"fmt"
	"math"

	"github.com/tphakala/go-audio-envelope/internal/mathutil"
	"github.com/tphakala/simd/f64"
)

// ErrDegenerateFilter is returned when a design collapses to all zeros.
var ErrDegenerateFilter = errors.New("filter design is degenerate")

// LowpassParams holds parameters for the windowed-sinc lowpass design.
type LowpassParams struct {
	// Order is the filter order; the filter has Order+1 taps.
	Order int

	// Cutoff is the -6 dB frequency normalized to the Nyquist frequency of
	// the rate the filter runs at, in (0, 1).
	Cutoff float64

	// Window tapers the ideal response. Empty means Hamming.
	Window Window

	// Beta is the Kaiser β, used only with WindowKaiser.
	Beta float64
}

// Validate checks the lowpass parameters.
func (p *LowpassParams) Validate() error {
	if p.Order < minLowpassOrder || p.Order > maxLowpassOrder {
		return fmt.Errorf("invalid lowpass order: %d (must be %d-%d)", p.Order, minLowpassOrder, maxLowpassOrder)
	}
	if !(p.Cutoff > 0 && p.Cutoff < 1) {
		return fmt.Errorf("invalid lowpass cutoff: %v (must be in (0, 1) of Nyquist)", p.Cutoff)
	}
	if p.Beta < 0 {
		return fmt.Errorf("invalid kaiser beta: %v", p.Beta)
	}
	return nil
}

// DesignLowpass designs a linear-phase lowpass FIR filter by the window
// method, equivalent to MATLAB's fir1(order, cutoff, window):
//
//	h[n] = Wn · sinc(Wn · (n − order/2)) · w[n],  n = 0..order
//
// The result is scaled to unity gain at DC.
func DesignLowpass(params LowpassParams) ([]float64, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	win := params.Window
	if win == "" {
		win = WindowHamming
	}

	taps := params.Order + 1
	w, err := MakeWindow(win, taps, params.Beta)
	if err != nil {
		return nil, err
	}

	h := make([]float64, taps)
	center := float64(params.Order) / halfDivisor
	for n := range h {
		h[n] = params.Cutoff * mathutil.Sinc(params.Cutoff*(float64(n)-center)) * w[n]
	}

	sum := f64.Sum(h)
	if math.Abs(sum) < zeroThreshold {
		return nil, fmt.Errorf("%w: %s window of %d taps", ErrDegenerateFilter, win, taps)
	}
	f64.Scale(h, h, dcGainTarget/sum)

	return h, nil
}
