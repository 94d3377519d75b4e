package filter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/go-audio-envelope/internal/testutil"
)

const (
	testLowpassOrder  = 64
	testLowpassCutoff = 0.2

	dcGainTolerance       = 1e-12
	cutoffGainTolerance   = 0.05
	passbandGainTolerance = 0.01
	stopbandCeilingDB     = -45.0
)

func TestDesignLowpass_Shape(t *testing.T) {
	h, err := DesignLowpass(LowpassParams{Order: testLowpassOrder, Cutoff: testLowpassCutoff})
	require.NoError(t, err)

	assert.Len(t, h, testLowpassOrder+1)
	testutil.AssertSymmetric(t, h, testutil.DefaultTolerance)
	testutil.AssertCenterIsMax(t, h)
	testutil.AssertDCGain(t, h, 1.0, dcGainTolerance)
}

func TestDesignLowpass_FrequencyResponse(t *testing.T) {
	h, err := DesignLowpass(LowpassParams{Order: testLowpassOrder, Cutoff: testLowpassCutoff})
	require.NoError(t, err)

	assert.InDelta(t, 1.0, MagnitudeAt(h, 0.02), passbandGainTolerance, "passband gain")
	assert.InDelta(t, 0.5, MagnitudeAt(h, testLowpassCutoff), cutoffGainTolerance, "gain at cutoff should be about -6 dB")
	assert.Less(t, MagnitudeDB(MagnitudeAt(h, 0.4)), stopbandCeilingDB, "stopband attenuation")
	assert.Less(t, MagnitudeDB(MagnitudeAt(h, 0.9)), stopbandCeilingDB, "stopband attenuation near Nyquist")
}

func TestDesignLowpass_AllWindows(t *testing.T) {
	for _, win := range Windows() {
		t.Run(string(win), func(t *testing.T) {
			h, err := DesignLowpass(LowpassParams{Order: 32, Cutoff: 0.3, Window: win, Beta: 5})
			require.NoError(t, err)
			testutil.AssertSymmetric(t, h, testutil.DefaultTolerance)
			testutil.AssertDCGain(t, h, 1.0, dcGainTolerance)
			testutil.AssertNoNaNOrInf(t, h)
		})
	}
}

func TestDesignLowpass_OddOrder(t *testing.T) {
	h, err := DesignLowpass(LowpassParams{Order: 15, Cutoff: 0.25})
	require.NoError(t, err)
	assert.Len(t, h, 16)
	testutil.AssertSymmetric(t, h, testutil.DefaultTolerance)
	testutil.AssertDCGain(t, h, 1.0, dcGainTolerance)
}

func TestLowpassParams_Validate(t *testing.T) {
	tests := []struct {
		name    string
		params  LowpassParams
		wantErr bool
	}{
		{"valid", LowpassParams{Order: 8, Cutoff: 0.5}, false},
		{"zero order", LowpassParams{Order: 0, Cutoff: 0.5}, true},
		{"huge order", LowpassParams{Order: maxLowpassOrder + 1, Cutoff: 0.5}, true},
		{"zero cutoff", LowpassParams{Order: 8, Cutoff: 0}, true},
		{"cutoff at nyquist", LowpassParams{Order: 8, Cutoff: 1}, true},
		{"nan cutoff", LowpassParams{Order: 8, Cutoff: math.NaN()}, true},
		{"negative beta", LowpassParams{Order: 8, Cutoff: 0.5, Beta: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func BenchmarkDesignLowpass(b *testing.B) {
	params := LowpassParams{Order: 256, Cutoff: 0.1}
	for b.Loop() {
		_, _ = DesignLowpass(params)
	}
}
