package engine

// FFT convolution constants.
const (
	// minKernelForFFT is the tap count from which block filtering switches
	// to overlap-save FFT convolution. Direct SIMD convolution wins below it.
	minKernelForFFT = 400

	// minBlockForFFT is the smallest block worth a transform.
	minBlockForFFT = 256

	// defaultFFTSize is the smallest transform size used.
	defaultFFTSize = 512

	// fftHermitianDivisor: a real FFT of size N has N/2+1 unique bins.
	fftHermitianDivisor = 2
)

// Byte sizes for float types.
const (
	bytesPerFloat32 = 4
	bytesPerFloat64 = 8
)

// latencyDivisor halves a linear-phase filter length to get its group delay.
const latencyDivisor = 2
