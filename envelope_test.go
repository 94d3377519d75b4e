package envelope

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-envelope/internal/signal"
	"github.com/tphakala/go-audio-envelope/internal/testutil"
)

const (
	testRate       = 8000.0
	envelopeRMSMax = 0.05
	warmupOutputs  = 72
	blockTolerance = 1e-9
)

func testSignal() *signal.AM {
	return &signal.AM{SampleRate: testRate, Carrier: 1100, Modulation: 20, Depth: 0.5}
}

// alignedReference returns the true envelope at the input index each output
// represents, skipping the warm-up outputs.
func alignedReference(cfg *Config, src *signal.AM, out []float64) (got, want []float64) {
	for j := warmupOutputs; j < len(out); j++ {
		got = append(got, out[j])
		want = append(want, src.EnvelopeAt(EnvelopeAlignment(cfg, j)))
	}
	return got, want
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig(testRate)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 32, cfg.Hilbert.Length)
	assert.Equal(t, 8, cfg.Smoothing.DownsampleFactor)
	assert.Equal(t, 64, cfg.Smoothing.Order)
	assert.InDelta(t, 100.0, cfg.Smoothing.CutoffHz, 1e-12)
	assert.InDelta(t, 1000.0, cfg.OutputRate(), 0)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"odd hilbert length", func(c *Config) { c.Hilbert.Length = 31 }},
		{"zero hilbert length", func(c *Config) { c.Hilbert.Length = 0 }},
		{"negative hilbert length", func(c *Config) { c.Hilbert.Length = -4 }},
		{"hilbert length two", func(c *Config) { c.Hilbert.Length = 2 }},
		{"hilbert length too long", func(c *Config) { c.Hilbert.Length = 8194 }},
		{"least-squares hilbert too long", func(c *Config) { c.Hilbert.Length = 4096 }},
		{"zero downsample factor", func(c *Config) { c.Smoothing.DownsampleFactor = 0 }},
		{"cutoff at decimated nyquist", func(c *Config) { c.Smoothing.CutoffHz = 500 }},
		{"cutoff above decimated nyquist", func(c *Config) { c.Smoothing.CutoffHz = 700 }},
		{"zero cutoff", func(c *Config) { c.Smoothing.CutoffHz = 0 }},
		{"zero sample rate", func(c *Config) { c.SampleRate = 0 }},
		{"negative sample rate", func(c *Config) { c.SampleRate = -8000 }},
		{"NaN sample rate", func(c *Config) { c.SampleRate = math.NaN() }},
		{"infinite sample rate", func(c *Config) { c.SampleRate = math.Inf(1) }},
		{"passband inverted", func(c *Config) { c.Hilbert.PassbandLow, c.Hilbert.PassbandHigh = 0.9, 0.1 }},
		{"passband touches zero", func(c *Config) { c.Hilbert.PassbandLow = 0 }},
		{"passband touches nyquist", func(c *Config) { c.Hilbert.PassbandHigh = 1 }},
		{"no channels", func(c *Config) { c.Channels = 0 }},
		{"too many channels", func(c *Config) { c.Channels = 257 }},
		{"phase equals factor", func(c *Config) { c.Smoothing.Phase = 8 }},
		{"negative phase", func(c *Config) { c.Smoothing.Phase = -1 }},
		{"zero order", func(c *Config) { c.Smoothing.Order = 0 }},
		{"order too high", func(c *Config) { c.Smoothing.Order = 5000 }},
		{"unknown design", func(c *Config) { c.Hilbert.Design = "remez" }},
		{"unknown hilbert window", func(c *Config) { c.Hilbert.Window = "gauss" }},
		{"unknown smoothing window", func(c *Config) { c.Smoothing.Window = "gauss" }},
		{"negative beta", func(c *Config) { c.Smoothing.KaiserBeta = -1 }},
		{"negative block size", func(c *Config) { c.BlockSize = -1 }},
		{"negative queue depth", func(c *Config) { c.QueueDepth = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig(testRate)
			tt.mutate(&cfg)

			require.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

			d, err := New(&cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Nil(t, d)
		})
	}
}

func TestNew_LongHilbertWindowed(t *testing.T) {
	cfg := DefaultConfig(testRate)
	cfg.Hilbert.Length = 8192
	cfg.Hilbert.Design = DesignWindowed

	d, err := New(&cfg)
	require.NoError(t, err)
	assert.Len(t, d.HilbertCoefficients(), 8192)
	assert.True(t, d.GetInfo().FFTConvolution)
}

func TestNew_NilConfig(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNew_ZeroSizesUseDefaults(t *testing.T) {
	cfg := DefaultConfig(testRate)
	cfg.BlockSize = 0
	cfg.QueueDepth = 0

	d, err := New(&cfg)
	require.NoError(t, err)
	assert.Equal(t, defaultBlockSize, d.Config().BlockSize)
	assert.Equal(t, defaultQueueDepth, d.Config().QueueDepth)

	// The caller's struct is copied, not modified.
	assert.Zero(t, cfg.BlockSize)
}

func TestEnvelopeRecovery(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"defaults", func(*Config) {}},
		{"phase 3", func(c *Config) { c.Smoothing.Phase = 3 }},
		{"windowed hilbert", func(c *Config) { c.Hilbert.Design = DesignWindowed }},
		{"64 taps", func(c *Config) { c.Hilbert.Length = 64 }},
		{"kaiser smoother", func(c *Config) {
			c.Smoothing.Window = WindowKaiser
			c.Smoothing.KaiserBeta = 6
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig(testRate)
			tt.mutate(&cfg)

			src := testSignal()
			out, err := DetectWithConfig(src.Generate(8000), &cfg)
			require.NoError(t, err)
			require.Len(t, out, 1000)

			got, want := alignedReference(&cfg, src, out)
			rms := testutil.RelativeRMSError(got, want)
			assert.Less(t, rms, envelopeRMSMax, "relative RMS error %.4f", rms)
		})
	}
}

func TestDeterminism(t *testing.T) {
	input := testSignal().Generate(5000)

	a, err := Detect(input, testRate)
	require.NoError(t, err)
	b, err := Detect(input, testRate)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestProcess_OneOutputPerK(t *testing.T) {
	cfg := DefaultConfig(testRate)
	cfg.Smoothing.DownsampleFactor = 5
	cfg.Smoothing.Phase = 2
	cfg.Smoothing.CutoffHz = 150

	d, err := New(&cfg)
	require.NoError(t, err)

	src := testSignal()
	for i := range 1000 {
		_, ok, err := d.Process(src.Next())
		require.NoError(t, err)
		assert.Equal(t, i%5 == 2, ok, "sample %d", i)
	}
}

func TestProcessBlock_MatchesProcess(t *testing.T) {
	tests := []struct {
		name      string
		order     int
		blockSize int
	}{
		{"default", 64, 0},
		{"tiny chunks", 64, 7},
		{"fft smoother", 512, 4096},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig(testRate)
			cfg.Smoothing.Order = tt.order
			cfg.BlockSize = tt.blockSize

			input := testSignal().Generate(20000)

			perSample, err := New(&cfg)
			require.NoError(t, err)
			var want []float64
			for _, x := range input {
				y, ok, err := perSample.Process(x)
				require.NoError(t, err)
				if ok {
					want = append(want, y)
				}
			}

			block, err := New(&cfg)
			require.NoError(t, err)
			var got []float64
			for start := 0; start < len(input); start += 6001 {
				out, err := block.ProcessBlock(input[start:min(start+6001, len(input))])
				require.NoError(t, err)
				got = append(got, out...)
			}

			require.Len(t, got, len(want))
			assert.InDeltaSlice(t, want, got, blockTolerance)
		})
	}
}

func TestProcess_NaNPropagates(t *testing.T) {
	d, err := NewMono(testRate)
	require.NoError(t, err)

	src := testSignal()
	sawNaN := false
	var last float64
	for i := range 3000 {
		x := src.Next()
		if i == 500 {
			x = math.NaN()
		}
		y, ok, err := d.Process(x)
		require.NoError(t, err)
		if ok {
			sawNaN = sawNaN || math.IsNaN(y)
			last = y
		}
	}

	assert.True(t, sawNaN, "NaN input must reach the output")
	assert.False(t, math.IsNaN(last), "NaN must leave the filters after their length")
}

func TestProcess_InfIsNonFinite(t *testing.T) {
	d, err := NewMono(testRate)
	require.NoError(t, err)

	nonFinite := false
	for i := range 1000 {
		x := 0.0
		if i == 100 {
			x = math.Inf(1)
		}
		y, ok, err := d.Process(x)
		require.NoError(t, err)
		if ok && (math.IsNaN(y) || math.IsInf(y, 0)) {
			nonFinite = true
		}
	}
	assert.True(t, nonFinite)
}

func TestProcessWithDiagnostics(t *testing.T) {
	d, err := NewMono(testRate)
	require.NoError(t, err)

	src := testSignal()
	input := src.Generate(4000)
	diag, err := d.ProcessWithDiagnostics(input)
	require.NoError(t, err)

	assert.Len(t, diag.Input, 4000)
	assert.Len(t, diag.Envelope, 4000)
	assert.Len(t, diag.Output, 500)

	// Raw magnitude tracks the true envelope delayed by N/2.
	for n := 64; n < len(input); n += 97 {
		assert.InDelta(t, src.EnvelopeAt(float64(n-16)), diag.Envelope[n], 0.02)
	}

	fresh, err := Detect(input, testRate)
	require.NoError(t, err)
	assert.InDeltaSlice(t, fresh, diag.Output, blockTolerance)
}

func TestDetectFloat32(t *testing.T) {
	cfg := DefaultConfig(testRate)
	input := testSignal().Generate(8000)

	input32 := make([]float32, len(input))
	for i, x := range input {
		input32[i] = float32(x)
	}

	want, err := DetectWithConfig(input, &cfg)
	require.NoError(t, err)
	got, err := DetectFloat32(input32, &cfg)
	require.NoError(t, err)

	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, want[i], float64(got[i]), 1e-4, "output %d", i)
	}
}

func TestEnvelopeAlignment(t *testing.T) {
	cfg := DefaultConfig(testRate)
	cfg.Smoothing.Phase = 3
	assert.InDelta(t, 3-16-256.0, EnvelopeAlignment(&cfg, 0), 0)
	assert.InDelta(t, 3+8*100-16-256.0, EnvelopeAlignment(&cfg, 100), 0)

	cfg.Smoothing.Order = 5
	assert.InDelta(t, 3-16-20.0, EnvelopeAlignment(&cfg, 0), 0)
}

func TestInfo(t *testing.T) {
	d, err := NewMono(testRate)
	require.NoError(t, err)

	info := d.GetInfo()
	assert.Equal(t, "quadrature(32) -> smoother(65, /8)", info.Algorithm)
	assert.Equal(t, 32, info.HilbertLength)
	assert.Equal(t, 65, info.SmoothingLength)
	assert.Equal(t, 8, info.DownsampleFactor)
	assert.InDelta(t, 1000.0, info.OutputRate, 0)
	assert.Equal(t, 16+256, info.Latency)
	assert.Equal(t, info.Latency, d.GetLatency())
	assert.InDelta(t, 272.0, d.GroupDelay(), 0)
	assert.Positive(t, info.MemoryUsage)
	assert.False(t, info.FFTConvolution)

	h := d.HilbertCoefficients()
	require.Len(t, h, 32)
	testutil.AssertAntisymmetric(t, h, 16, 1e-12)
	testutil.AssertDCGain(t, d.SmoothingCoefficients(), 1.0, 1e-12)
}

func TestErrorsAreDistinct(t *testing.T) {
	all := []error{ErrInvalidConfig, ErrNotConfigured, ErrStopped, ErrChannelMismatch}
	for i, a := range all {
		for j, b := range all {
			assert.Equal(t, i == j, errors.Is(a, b))
		}
	}
}
