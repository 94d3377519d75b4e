package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrequencyResponse_Identity(t *testing.T) {
	r := FrequencyResponse([]float64{1}, 64)
	require.Len(t, r.Magnitude, 64)
	for k, m := range r.Magnitude {
		assert.InDelta(t, 1.0, m, 1e-12, "bin %d", k)
	}
	assert.InDelta(t, 0.0, r.Frequencies[0], 1e-15)
	assert.Less(t, r.Frequencies[63], 1.0)
}

func TestFrequencyResponse_MatchesDirectEvaluation(t *testing.T) {
	h, err := DesignLowpass(LowpassParams{Order: 100, Cutoff: 0.3})
	require.NoError(t, err)

	// 101 taps on a 32-point FFT exercise the folding path.
	r := FrequencyResponse(h, 16)
	for k, f := range r.Frequencies {
		assert.InDelta(t, MagnitudeAt(h, f), r.Magnitude[k], 1e-9, "bin %d", k)
	}
}

func TestFrequencyResponse_DefaultPoints(t *testing.T) {
	r := FrequencyResponse([]float64{0.5, 0.5}, 0)
	assert.Len(t, r.Frequencies, defaultResponsePoints)
}

func TestPassbandDeviation(t *testing.T) {
	assert.InDelta(t, 0.0, PassbandDeviation([]float64{1}, 0.1, 0.9, 128), 1e-12)
	assert.InDelta(t, 0.5, PassbandDeviation([]float64{0.5}, 0.1, 0.9, 128), 1e-12)
}

func TestMagnitudeDB(t *testing.T) {
	assert.InDelta(t, 0.0, MagnitudeDB(1), 1e-12)
	assert.InDelta(t, -20.0, MagnitudeDB(0.1), 1e-12)
	assert.InDelta(t, -240.0, MagnitudeDB(0), 1e-9)
}
