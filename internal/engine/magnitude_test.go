package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMagnitude(t *testing.T) {
	assert.InDelta(t, 5.0, Magnitude(3.0, -4.0), 1e-15)
	assert.InDelta(t, float32(5), Magnitude(float32(-3), float32(4)), 1e-6)
	assert.Zero(t, Magnitude(0.0, 0.0))
}

func TestMagnitude_NonFinite(t *testing.T) {
	assert.True(t, math.IsNaN(Magnitude(math.NaN(), 1)))
	assert.True(t, math.IsInf(Magnitude(math.Inf(-1), 1), 1))
	assert.True(t, math.IsInf(Magnitude(1, math.Inf(1)), 1))
}

func TestMagnitudeBlock(t *testing.T) {
	re := []float64{3, 0, -1, 6, 5}
	im := []float64{4, 2, 0, 8, 12}
	dst := make([]float64, len(re))
	MagnitudeBlock(dst, re, im)
	assert.InDeltaSlice(t, []float64{5, 2, 1, 10, 13}, dst, 1e-12)

	re32 := []float32{3, 0}
	im32 := []float32{4, -2}
	dst32 := make([]float32, 2)
	MagnitudeBlock(dst32, re32, im32)
	assert.InDeltaSlice(t, []float32{5, 2}, dst32, 1e-6)
}
