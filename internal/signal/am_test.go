package signal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func TestAM_Validate(t *testing.T) {
	valid := AM{SampleRate: 8000, Carrier: 1100, Modulation: 20, Depth: 0.5}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*AM)
	}{
		{"zero rate", func(a *AM) { a.SampleRate = 0 }},
		{"carrier above nyquist", func(a *AM) { a.Carrier = 4000 }},
		{"modulation above carrier", func(a *AM) { a.Modulation = 1200 }},
		{"depth above one", func(a *AM) { a.Depth = 1.5 }},
		{"negative depth", func(a *AM) { a.Depth = -0.1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := valid
			tt.mutate(&a)
			assert.Error(t, a.Validate())
		})
	}
}

func TestAM_BoundedByEnvelope(t *testing.T) {
	a := AM{SampleRate: 8000, Carrier: 1100, Modulation: 20, Depth: 0.5, Amplitude: 0.8}
	x := a.Generate(4000)
	env := a.Envelope(4000)

	for i := range x {
		assert.LessOrEqual(t, math.Abs(x[i]), env[i]+1e-12)
	}
	assert.InDelta(t, 0.8*1.5, floats.Max(env), 1e-3)
	assert.InDelta(t, 0.8*0.5, floats.Min(env), 1e-3)
}

func TestAM_StreamMatchesGenerate(t *testing.T) {
	a := AM{SampleRate: 16000, Carrier: 3000, Modulation: 5, Depth: 0.3}
	want := a.Generate(100)

	got := make([]float64, 100)
	a.Fill(got[:40])
	a.Fill(got[40:])
	assert.Equal(t, want, got)

	a.Reset()
	assert.InDelta(t, want[0], a.Next(), 0)
}
