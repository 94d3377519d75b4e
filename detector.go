package envelope

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sourcegraph/conc/pool"
	"github.com/tphakala/go-audio-envelope/internal/pipeline"
)

// State is the detector lifecycle state.
type State int32

const (
	// StateConfigured means the filters are designed and no sample has been
	// processed since construction or the last Reset.
	StateConfigured State = iota

	// StateRunning is entered on the first processed sample.
	StateRunning

	// StateStopped is entered on Stop or when a stream's input closes.
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateConfigured:
		return "configured"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Detector is a streaming envelope detector. It owns one independent chain
// per configured channel; channels share only the filter coefficients.
//
// A Detector must not be used by multiple goroutines at once, except that
// State may be read at any time.
type Detector struct {
	config  Config
	plan    *pipeline.Plan
	designs *designs

	channels   []*channel[float64]
	channels32 []*channel[float32] // built on first float32 call

	state atomic.Int32
	mu    sync.Mutex
}

// New creates a detector. The configuration is validated and copied; a
// nil error means the detector is in StateConfigured and every filter is
// allocated. Construction is all-or-nothing.
func New(config *Config) (*Detector, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}

	cfg := *config
	if cfg.BlockSize == 0 {
		cfg.BlockSize = defaultBlockSize
	}
	if cfg.QueueDepth == 0 {
		cfg.QueueDepth = defaultQueueDepth
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	plan, err := pipeline.BuildPlan(pipeline.Params{
		HilbertLength:    cfg.Hilbert.Length,
		SmoothingOrder:   cfg.Smoothing.Order,
		DownsampleFactor: cfg.Smoothing.DownsampleFactor,
		Phase:            cfg.Smoothing.Phase,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	ds, err := designFilters(&cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	d := &Detector{
		config:   cfg,
		plan:     plan,
		designs:  ds,
		channels: make([]*channel[float64], cfg.Channels),
	}
	for i := range d.channels {
		ch, err := newChannel[float64](plan, ds, cfg.BlockSize)
		if err != nil {
			return nil, fmt.Errorf("%w: channel %d: %w", ErrInvalidConfig, i, err)
		}
		d.channels[i] = ch
	}

	return d, nil
}

// Config returns a copy of the detector's configuration.
func (d *Detector) Config() Config {
	return d.config
}

// State returns the current lifecycle state.
func (d *Detector) State() State {
	if d == nil {
		return StateConfigured
	}
	return State(d.state.Load())
}

// begin checks the detector can process and moves it to StateRunning.
// Callers hold d.mu.
func (d *Detector) begin() error {
	if d == nil || len(d.channels) == 0 {
		return ErrNotConfigured
	}
	if State(d.state.Load()) == StateStopped {
		return ErrStopped
	}
	d.state.CompareAndSwap(int32(StateConfigured), int32(StateRunning))
	return nil
}

// Process feeds one sample to channel 0. It returns ok == true, with the
// smoothed envelope value, exactly once every K calls.
func (d *Detector) Process(x float64) (y float64, ok bool, err error) {
	if d == nil {
		return 0, false, ErrNotConfigured
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.begin(); err != nil {
		return 0, false, err
	}
	y, ok = d.channels[0].processSample(x)
	return y, ok, nil
}

// ProcessBlock feeds a block of samples to channel 0 and returns the
// outputs it produced, len(input)/K of them give or take one.
func (d *Detector) ProcessBlock(input []float64) ([]float64, error) {
	if d == nil {
		return nil, ErrNotConfigured
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.begin(); err != nil {
		return nil, err
	}
	return d.channels[0].processBlock(input)
}

// ProcessFloat32 is like ProcessBlock but runs the float32 engine. The
// float32 path keeps its own filter state, so a stream should stick to
// one precision.
func (d *Detector) ProcessFloat32(input []float32) ([]float32, error) {
	if d == nil {
		return nil, ErrNotConfigured
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.begin(); err != nil {
		return nil, err
	}
	if err := d.ensureFloat32(); err != nil {
		return nil, err
	}
	return d.channels32[0].processBlock(input)
}

func (d *Detector) ensureFloat32() error {
	if d.channels32 != nil {
		return nil
	}
	chans := make([]*channel[float32], len(d.channels))
	for i := range chans {
		ch, err := newChannel[float32](d.plan, d.designs, d.config.BlockSize)
		if err != nil {
			return fmt.Errorf("channel %d: %w", i, err)
		}
		chans[i] = ch
	}
	d.channels32 = chans
	return nil
}

// ProcessMulti processes one block per channel. When EnableParallel is set
// the channels run concurrently.
func (d *Detector) ProcessMulti(input [][]float64) ([][]float64, error) {
	if d == nil {
		return nil, ErrNotConfigured
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.begin(); err != nil {
		return nil, err
	}
	if len(input) != len(d.channels) {
		return nil, fmt.Errorf("%w: expected %d channels, got %d", ErrChannelMismatch, len(d.channels), len(input))
	}

	output := make([][]float64, len(input))

	if !d.config.EnableParallel || len(input) <= 1 {
		for ch := range input {
			result, err := d.channels[ch].processBlock(input[ch])
			if err != nil {
				return nil, fmt.Errorf("channel %d: %w", ch, err)
			}
			output[ch] = result
		}
		return output, nil
	}

	p := pool.New().WithErrors().WithMaxGoroutines(len(input))
	for ch := range input {
		p.Go(func() error {
			result, err := d.channels[ch].processBlock(input[ch])
			if err != nil {
				return fmt.Errorf("channel %d: %w", ch, err)
			}
			output[ch] = result
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	return output, nil
}

// Diagnostics holds the intermediate signals of one ProcessWithDiagnostics
// call.
type Diagnostics struct {
	// Input is the block as given.
	Input []float64

	// Envelope is the raw magnitude at the input rate, before decimation.
	Envelope []float64

	// Output is the smoothed envelope at the output rate.
	Output []float64
}

// ProcessWithDiagnostics is ProcessBlock that also returns the raw
// envelope feeding the smoother.
func (d *Detector) ProcessWithDiagnostics(input []float64) (*Diagnostics, error) {
	if d == nil {
		return nil, ErrNotConfigured
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.begin(); err != nil {
		return nil, err
	}

	ch := d.channels[0]
	raw, err := ch.envelope.Process(input)
	if err != nil {
		return nil, err
	}
	out, err := ch.smoother.Process(raw)
	if err != nil {
		return nil, err
	}

	return &Diagnostics{
		Input:    input,
		Envelope: raw,
		Output:   out,
	}, nil
}

// Stop moves the detector to StateStopped and discards all filter state.
// Further processing returns ErrStopped until Reset.
func (d *Detector) Stop() {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	d.resetLocked()
	d.state.Store(int32(StateStopped))
}

// Reset clears all filter state and returns the detector to
// StateConfigured, from any state.
func (d *Detector) Reset() {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	d.resetLocked()
	d.state.Store(int32(StateConfigured))
}

func (d *Detector) resetLocked() {
	for _, ch := range d.channels {
		ch.reset()
	}
	for _, ch := range d.channels32 {
		ch.reset()
	}
}

// GetLatency returns the group delay in input samples, rounded down:
// N/2 + K·order/2.
func (d *Detector) GetLatency() int {
	if d == nil || d.plan == nil {
		return 0
	}
	return d.plan.TotalLatency()
}

// GroupDelay returns the exact group delay in input samples.
func (d *Detector) GroupDelay() float64 {
	if d == nil || d.plan == nil {
		return 0
	}
	return d.plan.GroupDelay()
}

// OutputRate returns the output sample rate Fs/K.
func (d *Detector) OutputRate() float64 {
	if d == nil || d.plan == nil {
		return 0
	}
	return d.config.OutputRate()
}

// HilbertCoefficients returns a copy of the designed Hilbert filter.
func (d *Detector) HilbertCoefficients() []float64 {
	if d == nil || d.designs == nil {
		return nil
	}
	return append([]float64(nil), d.designs.hilbert...)
}

// SmoothingCoefficients returns a copy of the designed lowpass filter.
func (d *Detector) SmoothingCoefficients() []float64 {
	if d == nil || d.designs == nil {
		return nil
	}
	return append([]float64(nil), d.designs.lowpass...)
}

// GetInfo returns information about the detector.
func (d *Detector) GetInfo() Info {
	if d == nil || d.plan == nil || len(d.channels) == 0 {
		return Info{Algorithm: "unconfigured"}
	}

	info := Info{
		Algorithm:        d.plan.Describe(),
		DownsampleFactor: d.config.Smoothing.DownsampleFactor,
		OutputRate:       d.OutputRate(),
		Latency:          d.GetLatency(),
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	var memUsage int64
	for _, ch := range d.channels {
		memUsage += ch.memoryUsage()
	}
	info.MemoryUsage = memUsage

	stages := []pipeline.Stage{d.channels[0].envelope, d.channels[0].smoother}
	info.HilbertLength = stages[0].GetFilterLength()
	info.SmoothingLength = stages[1].GetFilterLength()
	if simd := stages[0].GetSIMDInfo(); simd != "" {
		info.SIMDEnabled = true
		info.SIMDType = simd
	}
	info.FFTConvolution = d.channels[0].envelope.UsesFFT() || d.channels[0].smoother.UsesFFT()

	return info
}
