// Package pipeline describes the envelope detector as a chain of stages:
// the quadrature magnitude stage at the input rate followed by the
// decimating smoother. It plans the chain and accounts for its latency.
package pipeline

import (
	"fmt"
	"strings"
)

// Stage is one block-processing step of the detector.
type Stage interface {
	// Process transforms input samples to output samples.
	Process(input []float64) ([]float64, error)

	// Reset clears internal state.
	Reset()

	// GetRatio returns the stage's rate ratio (output/input).
	GetRatio() float64

	// GetLatency returns the stage latency in its own input samples.
	GetLatency() int

	// GetMinInput returns the minimum input size for processing.
	GetMinInput() int

	// GetMemoryUsage returns approximate memory usage in bytes.
	GetMemoryUsage() int64

	// GetFilterLength returns the filter length (0 if not applicable).
	GetFilterLength() int

	// GetSIMDInfo returns SIMD optimization info (empty if none).
	GetSIMDInfo() string
}

// StageType identifies the kind of processing stage.
type StageType int

const (
	// StageQuadrature forms the analytic pair and its magnitude.
	StageQuadrature StageType = iota

	// StageSmoother keeps every K-th sample and lowpass filters it.
	StageSmoother
)

func (t StageType) String() string {
	switch t {
	case StageQuadrature:
		return "quadrature"
	case StageSmoother:
		return "smoother"
	default:
		return fmt.Sprintf("StageType(%d)", int(t))
	}
}

// StageSpec specifies parameters for creating a stage.
type StageSpec struct {
	Type         StageType
	Ratio        float64 // output/input rate
	FilterLength int     // taps
	Factor       int     // decimation factor, smoother only
	Phase        int     // decimation phase, smoother only
	Delay        float64 // group delay in this stage's input samples
}

// Params holds what the planner needs to know about the detector.
type Params struct {
	HilbertLength    int
	SmoothingOrder   int
	DownsampleFactor int
	Phase            int
}

// Plan is the ordered stage list for one channel.
type Plan struct {
	stages     []StageSpec
	groupDelay float64
}

// BuildPlan lays out the two-stage detector chain.
func BuildPlan(p Params) (*Plan, error) {
	if p.HilbertLength < minHilbertLength || p.HilbertLength%2 != 0 {
		return nil, fmt.Errorf("invalid Hilbert length: %d", p.HilbertLength)
	}
	if p.SmoothingOrder < 1 {
		return nil, fmt.Errorf("invalid smoothing order: %d", p.SmoothingOrder)
	}
	if p.DownsampleFactor < 1 {
		return nil, fmt.Errorf("invalid downsample factor: %d", p.DownsampleFactor)
	}
	if p.Phase < 0 || p.Phase >= p.DownsampleFactor {
		return nil, fmt.Errorf("invalid decimation phase: %d", p.Phase)
	}

	plan := &Plan{
		stages: make([]StageSpec, 0, defaultStageCapacity),
	}
	plan.stages = append(plan.stages,
		StageSpec{
			Type:         StageQuadrature,
			Ratio:        1,
			FilterLength: p.HilbertLength,
			Delay:        float64(p.HilbertLength / latencyDivisor),
		},
		StageSpec{
			Type:         StageSmoother,
			Ratio:        1 / float64(p.DownsampleFactor),
			FilterLength: p.SmoothingOrder + 1,
			Factor:       p.DownsampleFactor,
			Phase:        p.Phase,
			Delay:        float64(p.DownsampleFactor*p.SmoothingOrder) / latencyDivisor,
		},
	)

	plan.calculateLatency()
	return plan, nil
}

// calculateLatency sums stage delays. Each stage's delay is scaled back to
// input-rate samples by the ratio of the stages before it.
func (p *Plan) calculateLatency() {
	ratio := 1.0
	delay := 0.0
	for _, s := range p.stages {
		delay += s.Delay / ratio
		ratio *= s.Ratio
	}
	p.groupDelay = delay
}

// Stages returns the planned stages in processing order.
func (p *Plan) Stages() []StageSpec {
	return p.stages
}

// GroupDelay returns the end-to-end delay in input samples.
func (p *Plan) GroupDelay() float64 {
	return p.groupDelay
}

// TotalLatency returns GroupDelay rounded down to whole input samples.
func (p *Plan) TotalLatency() int {
	return int(p.groupDelay)
}

// Describe returns a one-line summary such as "quadrature(32) -> smoother(65, /8)".
func (p *Plan) Describe() string {
	parts := make([]string, 0, len(p.stages))
	for _, s := range p.stages {
		if s.Factor > 1 {
			parts = append(parts, fmt.Sprintf("%s(%d, /%d)", s.Type, s.FilterLength, s.Factor))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s(%d)", s.Type, s.FilterLength))
	}
	return strings.Join(parts, " -> ")
}
