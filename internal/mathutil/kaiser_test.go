package mathutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tphakala/go-audio-envelope/internal/testutil"
)

func TestKaiserBeta(t *testing.T) {
	tests := []struct {
		name        string
		attenuation float64
		expectedMin float64
		expectedMax float64
	}{
		{"20dB", 20.0, 0.0, 0.0},
		{"40dB", 40.0, 3.35, 3.45},
		{"50dB", 50.0, 4.5, 4.6},
		{"60dB", 60.0, 5.6, 5.7},
		{"100dB", 100.0, 10.0, 10.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertInRange(t, KaiserBeta(tt.attenuation), tt.expectedMin, tt.expectedMax)
		})
	}
}

func TestKaiserBeta_Monotonic(t *testing.T) {
	prev := KaiserBeta(0)
	for att := 5.0; att <= 150.0; att += 5.0 {
		beta := KaiserBeta(att)
		assert.GreaterOrEqual(t, beta, prev, "KaiserBeta decreased at %v dB", att)
		prev = beta
	}
}

func TestKaiserAttenuation_Inverse(t *testing.T) {
	for _, att := range []float64{60.0, 80.0, 120.0} {
		testutil.AssertRelativeError(t, att, KaiserAttenuation(KaiserBeta(att)), 0.01)
	}
	assert.Zero(t, KaiserAttenuation(0.01))
}

func TestEstimateFilterLength(t *testing.T) {
	tests := []struct {
		name        string
		attenuation float64
		width       float64
		minTaps     int
		maxTaps     int
	}{
		{"60dB narrow", 60.0, 0.1, 70, 80},
		{"40dB wide", 40.0, 0.2, 23, 27},
		{"80dB", 80.0, 0.05, 195, 205},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			taps := EstimateFilterLength(tt.attenuation, tt.width)
			assert.Equal(t, 1, taps%2, "length %d must be odd", taps)
			assert.GreaterOrEqual(t, taps, tt.minTaps)
			assert.LessOrEqual(t, taps, tt.maxTaps)
		})
	}
}

func TestEstimateFilterLength_Bounds(t *testing.T) {
	assert.GreaterOrEqual(t, EstimateFilterLength(100.0, 0), minFilterLength)
	assert.Equal(t, minFilterLength, EstimateFilterLength(5.0, 0.5))
	assert.Equal(t, maxFilterLength, EstimateFilterLength(200.0, 0.0001))
}

func TestEstimateAttenuation_RoundTrip(t *testing.T) {
	for _, att := range []float64{30.0, 50.0, 70.0} {
		for _, width := range []float64{0.05, 0.1, 0.2} {
			taps := EstimateFilterLength(att, width)
			assert.GreaterOrEqual(t, EstimateAttenuation(taps, width), att,
				"%d taps at width %v should reach %v dB", taps, width, att)
		}
	}
}

func TestEstimateAttenuation_Degenerate(t *testing.T) {
	assert.Zero(t, EstimateAttenuation(1, 0.1))
	assert.Zero(t, EstimateAttenuation(32, 0))
	assert.Greater(t, EstimateAttenuation(32, 0.1), 8.0)
}
