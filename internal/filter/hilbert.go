package filter

import (
	"errors"
	"fmt"
	"math"

	"github.com/tphakala/go-audio-envelope/internal/mathutil"
	"gonum.org/v1/gonum/mat"
)

// HilbertMethod selects the Hilbert filter design algorithm.
type HilbertMethod string

// Supported Hilbert design methods.
const (
	// HilbertLeastSquares fits the passband amplitude to unity in the
	// least-squares sense.
	HilbertLeastSquares HilbertMethod = "least-squares"

	// HilbertWindowed tapers the ideal band-limited Hilbert response.
	HilbertWindowed HilbertMethod = "windowed"
)

// ParseHilbertMethod resolves a method name. The empty string selects
// HilbertLeastSquares.
func ParseHilbertMethod(name string) (HilbertMethod, error) {
	switch HilbertMethod(name) {
	case "", HilbertLeastSquares:
		return HilbertLeastSquares, nil
	case HilbertWindowed:
		return HilbertWindowed, nil
	default:
		return "", fmt.Errorf("unknown hilbert design method %q", name)
	}
}

// HilbertParams holds parameters for the Hilbert quadrature filter design.
type HilbertParams struct {
	// Length is the number of taps N. It must be even; the filter's group
	// delay is exactly N/2 samples.
	Length int

	// Low and High bound the passband, normalized to Nyquist, 0 < Low < High < 1.
	Low  float64
	High float64

	// Method selects the design algorithm. Empty means least squares.
	Method HilbertMethod

	// Window and Beta apply to HilbertWindowed. Empty Window means Kaiser;
	// zero Beta derives β from the transition width.
	Window Window
	Beta   float64

	// GridDensity is the number of passband grid points per free
	// coefficient for HilbertLeastSquares. Zero means 16.
	GridDensity int
}

// Validate checks the Hilbert parameters.
func (p *HilbertParams) Validate() error {
	switch {
	case p.Length <= 0:
		return fmt.Errorf("invalid hilbert length: %d (must be positive)", p.Length)
	case p.Length%2 != 0:
		return fmt.Errorf("invalid hilbert length: %d (must be even)", p.Length)
	case p.Length < minHilbertLength || p.Length > maxHilbertLength:
		return fmt.Errorf("invalid hilbert length: %d (must be %d-%d)", p.Length, minHilbertLength, maxHilbertLength)
	case p.Length > MaxLeastSquaresLength && (p.Method == "" || p.Method == HilbertLeastSquares):
		return fmt.Errorf("invalid hilbert length: %d (least squares supports up to %d, use the windowed design)",
			p.Length, MaxLeastSquaresLength)
	}
	if !(p.Low > 0 && p.Low < p.High && p.High < 1) {
		return fmt.Errorf("invalid hilbert passband: [%v, %v] (need 0 < low < high < 1)", p.Low, p.High)
	}
	if p.Beta < 0 {
		return fmt.Errorf("invalid kaiser beta: %v", p.Beta)
	}
	if p.GridDensity < 0 {
		return fmt.Errorf("invalid grid density: %d", p.GridDensity)
	}
	return nil
}

// GroupDelay returns the filter's delay in samples, N/2.
func (p *HilbertParams) GroupDelay() int {
	return p.Length / 2
}

// KaiserBeta returns the Kaiser β a windowed design applies: Beta when
// set, otherwise the value derived from the transition width. It is zero
// for least-squares designs and other windows.
func (p *HilbertParams) KaiserBeta() float64 {
	if p.Method != HilbertWindowed || (p.Window != "" && p.Window != WindowKaiser) {
		return 0
	}
	if p.Beta > 0 {
		return p.Beta
	}
	att := mathutil.EstimateAttenuation(p.Length-1, transitionWidth(p.Low, p.High))
	return mathutil.KaiserBeta(min(att, maxDerivedAttenuation))
}

// DesignHilbert designs an even-length Hilbert quadrature FIR filter.
//
// The taps form an antisymmetric (type III) response centred on D = N/2:
// h[D] = 0, h[D+k] = −h[D−k] and h[0] = 0. The frequency response is
//
//	H(ω) = −j · e^(−jωD) · A(ω),  A(ω) = 2 Σₖ h[D+k]·sin(kω)
//
// so a passband sinusoid sin(ωn) leaves the filter as −cos(ω(n−D)), in exact
// quadrature with the input delayed by D samples.
func DesignHilbert(params HilbertParams) ([]float64, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	method, err := ParseHilbertMethod(string(params.Method))
	if err != nil {
		return nil, err
	}

	var half []float64
	switch method {
	case HilbertWindowed:
		half, err = hilbertWindowed(params)
	default:
		half, err = hilbertLeastSquares(params)
	}
	if err != nil {
		return nil, err
	}

	return assembleAntisymmetric(half, params.Length), nil
}

// assembleAntisymmetric places half[k-1] at D+k and its negation at D−k.
func assembleAntisymmetric(half []float64, length int) []float64 {
	h := make([]float64, length)
	d := length / 2
	for k := 1; k <= len(half); k++ {
		h[d+k] = half[k-1]
		h[d-k] = -half[k-1]
	}
	return h
}

// hilbertLeastSquares solves for the M = N/2 − 1 free coefficients c_k
// minimising Σᵢ (A(ωᵢ) − 1)² + λ·Σₖ c_k² over a uniform passband grid.
// The ridge term λ is tiny and only guards against rank deficiency.
//
// The M×M normal equations are formed from closed-form grid sums, since
// 4·sin(kω)·sin(lω) = 2·(cos((k−l)ω) − cos((k+l)ω)), and solved by
// Cholesky. Cost is O(M²) to build and O(M³) to factor.
func hilbertLeastSquares(p HilbertParams) ([]float64, error) {
	m := p.Length/2 - 1

	density := p.GridDensity
	if density == 0 {
		density = defaultGridDensity
	}
	points := max(density*m, minGridPoints)

	start := math.Pi * p.Low
	step := math.Pi * (p.High - p.Low) / float64(points-1)

	cosSums := make([]float64, 2*m+1)
	sinSums := make([]float64, m+1)
	for j := range cosSums {
		c, s := gridSums(start, step, points, j)
		cosSums[j] = c
		if j <= m {
			sinSums[j] = s
		}
	}

	ridge := tikhonovScale * float64(points)
	g := mat.NewSymDense(m, nil)
	r := mat.NewVecDense(m, nil)
	for k := 1; k <= m; k++ {
		r.SetVec(k-1, 2*sinSums[k])
		for l := k; l <= m; l++ {
			v := 2 * (cosSums[l-k] - cosSums[k+l])
			if l == k {
				v += ridge
			}
			g.SetSym(k-1, l-1, v)
		}
	}

	var chol mat.Cholesky
	if !chol.Factorize(g) {
		return nil, errors.New("hilbert least-squares system is not positive definite")
	}

	var c mat.VecDense
	if err := chol.SolveVecTo(&c, r); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, fmt.Errorf("hilbert least-squares solve: %w", err)
		}
	}

	half := make([]float64, m)
	for k := range m {
		half[k] = c.AtVec(k)
	}
	return half, nil
}

// gridSums returns Σᵢ cos(jωᵢ) and Σᵢ sin(jωᵢ) over ωᵢ = start + i·step,
// i < n, using the Dirichlet kernel.
func gridSums(start, step float64, n, j int) (cosSum, sinSum float64) {
	if j == 0 {
		return float64(n), 0
	}

	half := float64(j) * step / halfDivisor
	den := math.Sin(half)
	if math.Abs(den) < dirichletEpsilon {
		for i := range n {
			w := float64(j) * (start + step*float64(i))
			cosSum += math.Cos(w)
			sinSum += math.Sin(w)
		}
		return cosSum, sinSum
	}

	scale := math.Sin(float64(n)*half) / den
	mid := float64(j)*start + float64(n-1)*half
	return scale * math.Cos(mid), scale * math.Sin(mid)
}

// hilbertWindowed tapers the ideal response of a Hilbert transformer whose
// band edges sit in the middle of the transition bands:
//
//	c_k = (cos(ω₁k) − cos(ω₂k)) / (πk),  ω₁ = π·Low/2,  ω₂ = π·(1+High)/2
func hilbertWindowed(p HilbertParams) ([]float64, error) {
	m := p.Length/2 - 1
	span := 2*m + 1

	win := p.Window
	if win == "" {
		win = WindowKaiser
	}

	w, err := MakeWindow(win, span, p.KaiserBeta())
	if err != nil {
		return nil, err
	}

	w1 := math.Pi * p.Low / halfDivisor
	w2 := math.Pi * (1 + p.High) / halfDivisor

	half := make([]float64, m)
	for k := 1; k <= m; k++ {
		fk := float64(k)
		half[k-1] = (math.Cos(w1*fk) - math.Cos(w2*fk)) / (math.Pi * fk) * w[m+k]
	}
	return half, nil
}

// transitionWidth is the narrower of the two transition bands, from DC to
// Low and from High to Nyquist.
func transitionWidth(low, high float64) float64 {
	return math.Min(low, 1-high)
}

// SuggestHilbertLength returns the smallest even length whose windowed
// design is expected to reach the given stopband-equivalent attenuation in
// dB, that is passband ripple of about 10^(−att/20).
func SuggestHilbertLength(low, high, attenuation float64) int {
	span := mathutil.EstimateFilterLength(attenuation, transitionWidth(low, high))
	return min(max(span+1, minHilbertLength), maxHilbertLength)
}
