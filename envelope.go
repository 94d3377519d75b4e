package envelope

import (
	"errors"
	"fmt"
	"math"

	"github.com/tphakala/go-audio-envelope/internal/filter"
)

// Config holds envelope detector configuration.
type Config struct {
	// SampleRate is the input sample rate Fs in Hz.
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`

	// Channels is the number of independent channels ProcessMulti expects.
	Channels int `yaml:"channels" mapstructure:"channels"`

	// Hilbert configures the quadrature filter.
	Hilbert HilbertSpec `yaml:"hilbert" mapstructure:"hilbert"`

	// Smoothing configures the decimating lowpass smoother.
	Smoothing SmoothingSpec `yaml:"smoothing" mapstructure:"smoothing"`

	// BlockSize is the chunk size used by ProcessBlock. Zero means 4096.
	BlockSize int `yaml:"block_size" mapstructure:"block_size"`

	// QueueDepth bounds the number of output blocks Stream buffers between
	// the producer and the sink. Zero means 8.
	QueueDepth int `yaml:"queue_depth" mapstructure:"queue_depth"`

	// EnableParallel processes channels concurrently in ProcessMulti.
	// Has no effect on mono input.
	EnableParallel bool `yaml:"enable_parallel" mapstructure:"enable_parallel"`
}

// HilbertSpec defines the Hilbert quadrature filter.
type HilbertSpec struct {
	// Length is the number of taps N. It must be even; the real branch is
	// delayed by N/2 samples to match.
	Length int `yaml:"length" mapstructure:"length"`

	// PassbandLow and PassbandHigh bound the band of near-unity gain,
	// normalized to Nyquist.
	PassbandLow  float64 `yaml:"passband_low" mapstructure:"passband_low"`
	PassbandHigh float64 `yaml:"passband_high" mapstructure:"passband_high"`

	// Design selects the design method. Empty means least squares.
	Design HilbertDesign `yaml:"design" mapstructure:"design"`

	// Window tapers the windowed design. Empty means Kaiser.
	Window WindowType `yaml:"window,omitempty" mapstructure:"window"`

	// KaiserBeta overrides the derived Kaiser β when positive.
	KaiserBeta float64 `yaml:"kaiser_beta,omitempty" mapstructure:"kaiser_beta"`
}

// SmoothingSpec defines the decimating smoother.
type SmoothingSpec struct {
	// Order is the lowpass order; the filter has Order+1 taps.
	Order int `yaml:"order" mapstructure:"order"`

	// CutoffHz is the lowpass cutoff. It must lie below Fs/K/2.
	CutoffHz float64 `yaml:"cutoff_hz" mapstructure:"cutoff_hz"`

	// DownsampleFactor is K: one output per K input samples.
	DownsampleFactor int `yaml:"downsample_factor" mapstructure:"downsample_factor"`

	// Phase selects which input of each group of K is kept.
	Phase int `yaml:"phase" mapstructure:"phase"`

	// Window tapers the lowpass. Empty means Hamming.
	Window WindowType `yaml:"window,omitempty" mapstructure:"window"`

	// KaiserBeta is used with the Kaiser window.
	KaiserBeta float64 `yaml:"kaiser_beta,omitempty" mapstructure:"kaiser_beta"`
}

// HilbertDesign names a Hilbert filter design method.
type HilbertDesign string

const (
	// DesignLeastSquares fits the passband amplitude in the least-squares sense.
	DesignLeastSquares HilbertDesign = HilbertDesign(filter.HilbertLeastSquares)

	// DesignWindowed windows the ideal band-limited Hilbert response.
	DesignWindowed HilbertDesign = HilbertDesign(filter.HilbertWindowed)
)

// WindowType names a window function.
type WindowType string

// Supported windows.
const (
	WindowHamming     WindowType = WindowType(filter.WindowHamming)
	WindowHann        WindowType = WindowType(filter.WindowHann)
	WindowBlackman    WindowType = WindowType(filter.WindowBlackman)
	WindowBartlett    WindowType = WindowType(filter.WindowBartlett)
	WindowRectangular WindowType = WindowType(filter.WindowRectangular)
	WindowKaiser      WindowType = WindowType(filter.WindowKaiser)
)

// Common errors returned by the detector.
var (
	// ErrInvalidConfig indicates invalid configuration parameters.
	ErrInvalidConfig = errors.New("invalid envelope detector configuration")

	// ErrNotConfigured is returned by a nil or zero-value Detector.
	ErrNotConfigured = errors.New("envelope detector not configured")

	// ErrStopped is returned when processing after Stop.
	ErrStopped = errors.New("envelope detector stopped")

	// ErrChannelMismatch indicates the wrong number of input channels.
	ErrChannelMismatch = errors.New("channel count mismatch")
)

// DefaultConfig returns a mono configuration for the given sample rate:
// a 32-tap least-squares Hilbert filter over [0.1, 0.9] of Nyquist,
// decimation by 8 and a 64th-order Hamming lowpass at a fifth of the
// decimated Nyquist frequency.
func DefaultConfig(sampleRate float64) Config {
	decimatedNyquist := sampleRate / defaultDownsampleFactor / nyquistDivisor
	return Config{
		SampleRate: sampleRate,
		Channels:   1,
		Hilbert: HilbertSpec{
			Length:       defaultHilbertLength,
			PassbandLow:  defaultPassbandLow,
			PassbandHigh: defaultPassbandHigh,
			Design:       DesignLeastSquares,
			Window:       WindowKaiser,
		},
		Smoothing: SmoothingSpec{
			Order:            defaultSmoothingOrder,
			CutoffHz:         defaultCutoffFraction * decimatedNyquist,
			DownsampleFactor: defaultDownsampleFactor,
			Window:           WindowHamming,
		},
		BlockSize:  defaultBlockSize,
		QueueDepth: defaultQueueDepth,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !(c.SampleRate > 0) || math.IsInf(c.SampleRate, 0) {
		return fmt.Errorf("%w: sample rate must be positive and finite, got %v", ErrInvalidConfig, c.SampleRate)
	}

	if c.Channels < 1 {
		return fmt.Errorf("%w: channels must be at least 1", ErrInvalidConfig)
	}

	if c.Channels > maxChannels {
		return fmt.Errorf("%w: too many channels (max %d)", ErrInvalidConfig, maxChannels)
	}

	if err := c.Hilbert.Validate(); err != nil {
		return err
	}

	if err := c.Smoothing.Validate(c.SampleRate); err != nil {
		return err
	}

	if c.BlockSize < 0 {
		return fmt.Errorf("%w: block size must not be negative", ErrInvalidConfig)
	}

	if c.QueueDepth < 0 {
		return fmt.Errorf("%w: queue depth must not be negative", ErrInvalidConfig)
	}

	return nil
}

// Validate checks the Hilbert filter settings.
func (h *HilbertSpec) Validate() error {
	switch {
	case h.Length <= 0:
		return fmt.Errorf("%w: hilbert length must be positive, got %d", ErrInvalidConfig, h.Length)
	case h.Length%2 != 0:
		return fmt.Errorf("%w: hilbert length must be even, got %d", ErrInvalidConfig, h.Length)
	case h.Length < minHilbertLength || h.Length > maxHilbertLength:
		return fmt.Errorf("%w: hilbert length must be %d-%d, got %d", ErrInvalidConfig, minHilbertLength, maxHilbertLength, h.Length)
	}

	if !(h.PassbandLow > 0 && h.PassbandLow < h.PassbandHigh && h.PassbandHigh < 1) {
		return fmt.Errorf("%w: hilbert passband must satisfy 0 < low < high < 1, got [%v, %v]",
			ErrInvalidConfig, h.PassbandLow, h.PassbandHigh)
	}

	method, err := filter.ParseHilbertMethod(string(h.Design))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if method == filter.HilbertLeastSquares && h.Length > filter.MaxLeastSquaresLength {
		return fmt.Errorf("%w: least-squares hilbert length must be at most %d, got %d (use the windowed design)",
			ErrInvalidConfig, filter.MaxLeastSquaresLength, h.Length)
	}

	if _, err := filter.ParseWindow(string(h.Window), filter.WindowKaiser); err != nil {
		return fmt.Errorf("%w: hilbert %w", ErrInvalidConfig, err)
	}

	if h.KaiserBeta < 0 {
		return fmt.Errorf("%w: kaiser beta must not be negative", ErrInvalidConfig)
	}

	return nil
}

// Validate checks the smoother specification against the input rate.
func (s *SmoothingSpec) Validate(sampleRate float64) error {
	if s.DownsampleFactor < 1 {
		return fmt.Errorf("%w: downsample factor must be at least 1, got %d", ErrInvalidConfig, s.DownsampleFactor)
	}

	if s.Phase < 0 || s.Phase >= s.DownsampleFactor {
		return fmt.Errorf("%w: decimation phase must be in [0, %d), got %d", ErrInvalidConfig, s.DownsampleFactor, s.Phase)
	}

	if s.Order < minSmoothingOrder || s.Order > maxSmoothingOrder {
		return fmt.Errorf("%w: smoothing order must be %d-%d, got %d", ErrInvalidConfig, minSmoothingOrder, maxSmoothingOrder, s.Order)
	}

	nyquist := sampleRate / float64(s.DownsampleFactor) / nyquistDivisor
	if !(s.CutoffHz > 0) || s.CutoffHz >= nyquist {
		return fmt.Errorf("%w: smoothing cutoff must be in (0, %v) Hz, got %v", ErrInvalidConfig, nyquist, s.CutoffHz)
	}

	if _, err := filter.ParseWindow(string(s.Window), filter.WindowHamming); err != nil {
		return fmt.Errorf("%w: smoothing %w", ErrInvalidConfig, err)
	}

	if s.KaiserBeta < 0 {
		return fmt.Errorf("%w: kaiser beta must not be negative", ErrInvalidConfig)
	}

	return nil
}

// OutputRate returns Fs/K.
func (c *Config) OutputRate() float64 {
	return c.SampleRate / float64(c.Smoothing.DownsampleFactor)
}

// EnvelopeAlignment returns the input sample index that output j of a
// detector built from cfg represents:
//
//	Phase + j·K − N/2 − K·order/2
//
// Negative values fall in the warm-up before the first input sample.
func EnvelopeAlignment(cfg *Config, j int) float64 {
	k := float64(cfg.Smoothing.DownsampleFactor)
	return float64(cfg.Smoothing.Phase) + float64(j)*k -
		float64(cfg.Hilbert.Length/nyquistDivisor) - k*float64(cfg.Smoothing.Order)/nyquistDivisor
}

// Info describes a configured detector.
type Info struct {
	// Algorithm describes the processing chain.
	Algorithm string

	// HilbertLength is the number of Hilbert filter taps.
	HilbertLength int

	// SmoothingLength is the number of lowpass taps, order+1.
	SmoothingLength int

	// DownsampleFactor is K.
	DownsampleFactor int

	// OutputRate is Fs/K in Hz.
	OutputRate float64

	// Latency is the group delay in input samples, rounded down.
	Latency int

	// MemoryUsage is the approximate memory usage in bytes.
	MemoryUsage int64

	// SIMDEnabled indicates if SIMD optimizations are active.
	SIMDEnabled bool

	// SIMDType describes the SIMD instruction set in use.
	SIMDType string

	// FFTConvolution is true when a filter is long enough that block
	// processing uses overlap-save FFT convolution. A NaN input then
	// spreads across the whole block instead of one filter span.
	FFTConvolution bool
}
