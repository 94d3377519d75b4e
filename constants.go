package envelope

// Channel constants
const (
	stereoChannels = 2   // Stereo channel count
	maxChannels    = 256 // Maximum supported channel count
)

// Hilbert filter limits and defaults
const (
	minHilbertLength     = 4
	maxHilbertLength     = 8192
	defaultHilbertLength = 32
	defaultPassbandLow   = 0.1
	defaultPassbandHigh  = 0.9
)

// Smoothing filter limits and defaults
const (
	minSmoothingOrder       = 1
	maxSmoothingOrder       = 4096
	defaultSmoothingOrder   = 64
	defaultDownsampleFactor = 8

	// defaultCutoffFraction places the default cutoff at this fraction of
	// the decimated Nyquist frequency.
	defaultCutoffFraction = 0.2
)

// Buffer and queue constants
const (
	defaultBlockSize  = 4096 // Chunk size for block processing
	defaultQueueDepth = 8    // Stream output queue depth in blocks
	bytesPerFloat64   = 8    // Size of float64 in bytes
)

// nyquistDivisor halves a sample rate.
const nyquistDivisor = 2
