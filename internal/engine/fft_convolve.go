package engine

import (
	"github.com/tphakala/simd/c128"
	"github.com/tphakala/simd/f64"
	"gonum.org/v1/gonum/dsp/fourier"
)

// FFTConvolver computes valid correlation of a signal with a fixed kernel by
// overlap-save FFT convolution. It produces the same output as
// f64.ConvolveValid(dst, signal, kernel) in O(N log N).
//
// Each transform block of fftSize input samples yields fftSize−len(kernel)+1
// valid outputs; the first len(kernel)−1 circular outputs are discarded.
type FFTConvolver struct {
	fft       *fourier.FFT
	fftSize   int
	blockSize int

	kernelFFT []complex128
	kernelLen int
	scale     float64 // gonum's inverse transform is unnormalized

	signalBlock []float64
	signalFFT   []complex128
	productFFT  []complex128
	ifftResult  []float64
}

// NewFFTConvolver transforms the kernel once for reuse. It returns nil for
// an empty kernel.
func NewFFTConvolver(kernel []float64) *FFTConvolver {
	kernelLen := len(kernel)
	if kernelLen == 0 {
		return nil
	}

	fftSize := defaultFFTSize
	for fftSize < 2*kernelLen {
		fftSize *= 2
	}

	fft := fourier.NewFFT(fftSize)

	// Circular convolution with the time-reversed kernel is correlation
	// with the kernel itself.
	padded := make([]float64, fftSize)
	for i := range kernelLen {
		padded[i] = kernel[kernelLen-1-i]
	}

	bins := fftSize/fftHermitianDivisor + 1
	return &FFTConvolver{
		fft:         fft,
		fftSize:     fftSize,
		blockSize:   fftSize - kernelLen + 1,
		kernelFFT:   fft.Coefficients(nil, padded),
		kernelLen:   kernelLen,
		scale:       1.0 / float64(fftSize),
		signalBlock: make([]float64, fftSize),
		signalFFT:   make([]complex128, bins),
		productFFT:  make([]complex128, bins),
		ifftResult:  make([]float64, fftSize),
	}
}

// Convolve writes len(signal)−len(kernel)+1 outputs to dst. It does nothing
// when the signal is shorter than the kernel or dst is too small.
func (c *FFTConvolver) Convolve(dst, signal []float64) {
	outputLen := len(signal) - c.kernelLen + 1
	if outputLen <= 0 || len(dst) < outputLen {
		return
	}

	overlap := c.kernelLen - 1
	for outIdx := 0; outIdx < outputLen; {
		clear(c.signalBlock)
		end := min(outIdx+c.fftSize, len(signal))
		copy(c.signalBlock, signal[outIdx:end])

		c.signalFFT = c.fft.Coefficients(c.signalFFT, c.signalBlock)
		c128.Mul(c.productFFT, c.signalFFT, c.kernelFFT)
		c.ifftResult = c.fft.Sequence(c.ifftResult, c.productFFT)
		f64.Scale(c.ifftResult, c.ifftResult, c.scale)

		valid := min(c.blockSize, outputLen-outIdx)
		copy(dst[outIdx:outIdx+valid], c.ifftResult[overlap:overlap+valid])
		outIdx += valid
	}
}
