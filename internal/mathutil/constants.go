package mathutil

// Bessel I₀ polynomial approximation from Abramowitz & Stegun 9.8.1 and 9.8.2.
const (
	besselSmallArgThreshold = 3.75 // |x| boundary between the two expansions
)

// besselI0Small holds the coefficients of I₀(x) in powers of t = (x/3.75)².
var besselI0Small = [...]float64{
	1.0,
	3.5156229,
	3.0899424,
	1.2067492,
	0.2659732,
	0.360768e-1,
	0.45813e-2,
}

// besselI0Large holds the coefficients of sqrt(x)·e^(-x)·I₀(x) in powers of t = 3.75/x.
var besselI0Large = [...]float64{
	0.39894228,
	0.1328592e-1,
	0.225319e-2,
	-0.157565e-2,
	0.916281e-2,
	-0.2057706e-1,
	0.2635537e-1,
	-0.1647633e-1,
	0.392377e-2,
}

// Kaiser & Schafer empirical window formulas.
const (
	kaiserAttHigh   = 50.0 // dB, above this β is linear in attenuation
	kaiserAttMedium = 21.0 // dB, below this β is zero (rectangular window)

	kaiserBetaHighCoeff  = 0.1102
	kaiserBetaHighOffset = 8.7

	kaiserBetaMediumCoeff1 = 0.5842
	kaiserBetaMediumPower  = 0.4
	kaiserBetaMediumCoeff2 = 0.07886

	kaiserBetaMinThreshold = 0.1 // below this the window is effectively rectangular

	// Filter order estimate: order ≈ (att - 8) / (2.285 · Δω)
	kaiserLengthOffset     = 8.0
	kaiserLengthMultiplier = 2.285
)

// Filter length bounds for EstimateFilterLength.
const (
	minFilterLength = 3
	maxFilterLength = 8191

	defaultTransitionWidth = 0.01 // used when a non-positive width is supplied
)

// sincZeroThreshold is the |x| below which Sinc returns its limit value.
const sincZeroThreshold = 1e-12
