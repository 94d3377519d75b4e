package filter

// Hilbert design limits and defaults.
const (
	minHilbertLength = 4 // N = 2 leaves no free coefficient
	maxHilbertLength = 8192

	defaultGridDensity = 16   // grid points per free coefficient
	minGridPoints      = 64   // lower bound on the passband grid
	tikhonovScale      = 1e-9 // ridge weight per grid point
	dirichletEpsilon   = 1e-12

	// maxDerivedAttenuation caps the Kaiser target for long windowed
	// designs. Beyond it β grows until I0(β) overflows.
	maxDerivedAttenuation = 150.0
)

// MaxLeastSquaresLength bounds the least-squares Hilbert design, whose
// normal equations grow as (N/2)² and factor in (N/2)³ time.
const MaxLeastSquaresLength = 2048

// Lowpass design limits.
const (
	minLowpassOrder = 1
	maxLowpassOrder = 4096

	dcGainTarget  = 1.0
	zeroThreshold = 1e-12
)

// Frequency response defaults.
const (
	defaultResponsePoints = 512
	minMagnitude          = 1e-12 // floor for MagnitudeDB
	dbMultiplier          = 20.0
)

// halfDivisor centres symmetric filters.
const halfDivisor = 2.0
