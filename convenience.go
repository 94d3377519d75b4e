package envelope

import (
	"fmt"

	"github.com/tphakala/go-audio-envelope/internal/simdops"
)

// Common sample rates for convenience functions.
const (
	// RateTelephony is the telephony (PSTN narrowband) sample rate.
	RateTelephony = 8000

	// RateVoIP is the VoIP wideband sample rate.
	RateVoIP = 16000

	// RateCD is the CD quality sample rate.
	RateCD = 44100

	// RateDAT is the DAT/DVD sample rate.
	RateDAT = 48000
)

// NewMono creates a mono detector with DefaultConfig.
func NewMono(sampleRate float64) (*Detector, error) {
	cfg := DefaultConfig(sampleRate)
	return New(&cfg)
}

// NewStereo creates a stereo detector with DefaultConfig and parallel
// channel processing.
func NewStereo(sampleRate float64) (*Detector, error) {
	cfg := DefaultConfig(sampleRate)
	cfg.Channels = stereoChannels
	cfg.EnableParallel = true
	return New(&cfg)
}

// Detect is a convenience function for one-shot mono detection with
// DefaultConfig. The output is at sampleRate/8.
func Detect(input []float64, sampleRate float64) ([]float64, error) {
	cfg := DefaultConfig(sampleRate)
	return DetectWithConfig(input, &cfg)
}

// DetectWithConfig runs a fresh detector built from cfg over input. Only
// the first channel is used.
func DetectWithConfig(input []float64, cfg *Config) ([]float64, error) {
	d, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return d.ProcessBlock(input)
}

// DetectFloat32 is DetectWithConfig on the float32 engine.
func DetectFloat32(input []float32, cfg *Config) ([]float32, error) {
	d, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return d.ProcessFloat32(input)
}

// DetectMulti runs one detector chain per input channel. cfg.Channels is
// overridden by len(channels); EnableParallel is honoured.
func DetectMulti(channels [][]float64, cfg *Config) ([][]float64, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	c := *cfg
	c.Channels = len(channels)

	d, err := New(&c)
	if err != nil {
		return nil, err
	}
	return d.ProcessMulti(channels)
}

// InterleaveToStereo converts two mono channels to interleaved stereo.
// Output format: [L0, R0, L1, R1, L2, R2, ...]
func InterleaveToStereo(left, right []float64) []float64 {
	n := min(len(left), len(right))
	result := make([]float64, n*stereoChannels)
	simdops.For[float64]().Interleave2(result, left[:n], right[:n])
	return result
}

// DeinterleaveFromStereo converts interleaved stereo to two mono channels.
// Input format: [L0, R0, L1, R1, L2, R2, ...]
func DeinterleaveFromStereo(interleaved []float64) (left, right []float64) {
	numSamples := len(interleaved) / stereoChannels
	left = make([]float64, numSamples)
	right = make([]float64, numSamples)
	for i := range numSamples {
		left[i] = interleaved[i*stereoChannels]
		right[i] = interleaved[i*stereoChannels+1]
	}
	return left, right
}
