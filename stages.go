package envelope

import (
	"fmt"

	"github.com/tphakala/go-audio-envelope/internal/engine"
	"github.com/tphakala/go-audio-envelope/internal/filter"
	"github.com/tphakala/go-audio-envelope/internal/pipeline"
	"github.com/tphakala/go-audio-envelope/internal/simdops"
)

// blockStage is the block interface shared by the float32 and float64
// stage instances. With F = float64 every blockStage is a pipeline.Stage.
type blockStage[F simdops.Float] interface {
	Process(input []F) ([]F, error)
	Reset()
}

// designs holds the coefficients every channel shares.
type designs struct {
	hilbert []float64
	lowpass []float64
}

// designFilters designs the Hilbert and lowpass filters for cfg.
func designFilters(cfg *Config) (*designs, error) {
	hilbertWindow, err := filter.ParseWindow(string(cfg.Hilbert.Window), filter.WindowKaiser)
	if err != nil {
		return nil, err
	}
	hilbert, err := filter.DesignHilbert(filter.HilbertParams{
		Length: cfg.Hilbert.Length,
		Low:    cfg.Hilbert.PassbandLow,
		High:   cfg.Hilbert.PassbandHigh,
		Method: filter.HilbertMethod(cfg.Hilbert.Design),
		Window: hilbertWindow,
		Beta:   cfg.Hilbert.KaiserBeta,
	})
	if err != nil {
		return nil, fmt.Errorf("hilbert design: %w", err)
	}

	lowpassWindow, err := filter.ParseWindow(string(cfg.Smoothing.Window), filter.WindowHamming)
	if err != nil {
		return nil, err
	}
	decimatedNyquist := cfg.OutputRate() / nyquistDivisor
	lowpass, err := filter.DesignLowpass(filter.LowpassParams{
		Order:  cfg.Smoothing.Order,
		Cutoff: cfg.Smoothing.CutoffHz / decimatedNyquist,
		Window: lowpassWindow,
		Beta:   cfg.Smoothing.KaiserBeta,
	})
	if err != nil {
		return nil, fmt.Errorf("smoothing design: %w", err)
	}

	return &designs{hilbert: hilbert, lowpass: lowpass}, nil
}

// channel is one independent detector chain: the envelope stage, the
// smoother stage and a ring buffer in front of each stage and after the last.
type channel[F simdops.Float] struct {
	envelope *engine.EnvelopeStage[F]
	smoother *engine.SmootherStage[F]
	stages   []blockStage[F]
	buffers  []*pipeline.RingBuffer[F]
	chunk    []F
}

// newChannel creates the stage instances for one channel from the plan.
func newChannel[F simdops.Float](plan *pipeline.Plan, d *designs, blockSize int) (*channel[F], error) {
	ch := &channel[F]{
		chunk: make([]F, blockSize),
	}

	for i, spec := range plan.Stages() {
		stage, err := createStage[F](spec, d, ch)
		if err != nil {
			return nil, fmt.Errorf("failed to create stage %d: %w", i, err)
		}
		ch.stages = append(ch.stages, stage)
	}

	ch.buffers = make([]*pipeline.RingBuffer[F], len(ch.stages)+1)
	for i := range ch.buffers {
		ch.buffers[i] = pipeline.NewRingBuffer[F](blockSize)
	}

	return ch, nil
}

// createStage builds the stage a spec describes and records it on ch.
func createStage[F simdops.Float](spec pipeline.StageSpec, d *designs, ch *channel[F]) (blockStage[F], error) {
	switch spec.Type {
	case pipeline.StageQuadrature:
		s, err := engine.NewEnvelopeStage[F](d.hilbert)
		if err != nil {
			return nil, err
		}
		ch.envelope = s
		return s, nil

	case pipeline.StageSmoother:
		sm, err := engine.NewSmoother[F](d.lowpass, spec.Factor, spec.Phase)
		if err != nil {
			return nil, err
		}
		s := engine.NewSmootherStage(sm)
		ch.smoother = s
		return s, nil

	default:
		return nil, fmt.Errorf("unsupported stage type: %v", spec.Type)
	}
}

// processSample runs one sample through the chain.
func (ch *channel[F]) processSample(x F) (F, bool) {
	return ch.smoother.Smoother.Process(ch.envelope.ProcessSample(x))
}

// processBlock runs input through every stage in chunks of at most
// len(ch.chunk) samples and returns everything the last stage produced.
func (ch *channel[F]) processBlock(input []F) ([]F, error) {
	ch.buffers[0].Write(input)

	for i, stage := range ch.stages {
		in := ch.buffers[i]
		out := ch.buffers[i+1]

		for in.Available() > 0 {
			n := in.Read(ch.chunk)
			y, err := stage.Process(ch.chunk[:n])
			if err != nil {
				return nil, fmt.Errorf("stage %d processing error: %w", i, err)
			}
			out.Write(y)
		}
	}

	return ch.buffers[len(ch.buffers)-1].ReadAll(), nil
}

// reset clears every stage and buffer.
func (ch *channel[F]) reset() {
	for _, s := range ch.stages {
		s.Reset()
	}
	for _, b := range ch.buffers {
		b.Clear()
	}
}

// memoryUsage sums stage state and buffer capacity.
func (ch *channel[F]) memoryUsage() int64 {
	var usage int64
	usage += ch.envelope.GetMemoryUsage()
	usage += ch.smoother.GetMemoryUsage()
	for _, b := range ch.buffers {
		usage += int64(b.Capacity()) * bytesPerFloat64
	}
	return usage
}

// Ensure the float64 stages satisfy the pipeline interface.
var (
	_ pipeline.Stage = (*engine.EnvelopeStage[float64])(nil)
	_ pipeline.Stage = (*engine.SmootherStage[float64])(nil)
)
