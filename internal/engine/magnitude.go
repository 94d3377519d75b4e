package engine

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
	"github.com/tphakala/go-audio-envelope/internal/simdops"
)

// Magnitude returns sqrt(re² + im²). Non-finite inputs propagate.
func Magnitude[F simdops.Float](re, im F) F {
	return F(math.Sqrt(float64(re)*float64(re) + float64(im)*float64(im)))
}

// MagnitudeBlock computes dst[i] = sqrt(re[i]² + im[i]²) for every i in dst.
// re and im must be at least as long as dst.
func MagnitudeBlock[F simdops.Float](dst, re, im []F) {
	if d, ok := any(dst).([]float64); ok {
		n := len(d)
		vecmath.Magnitude(d, any(re).([]float64)[:n], any(im).([]float64)[:n])
		return
	}
	for i := range dst {
		dst[i] = Magnitude(re[i], im[i])
	}
}
