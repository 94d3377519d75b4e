package engine

import (
	"fmt"

	"github.com/tphakala/go-audio-envelope/internal/simdops"
)

// DelayLine returns each sample exactly delay calls after it was pushed,
// and zero until then.
type DelayLine[F simdops.Float] struct {
	buf []F
	pos int
}

// NewDelayLine creates a delay of the given number of samples (at least 1).
func NewDelayLine[F simdops.Float](delay int) (*DelayLine[F], error) {
	if delay < 1 {
		return nil, fmt.Errorf("invalid delay: %d (must be at least 1)", delay)
	}
	return &DelayLine[F]{buf: make([]F, delay)}, nil
}

// Process pushes x and returns the sample received delay calls earlier.
func (d *DelayLine[F]) Process(x F) F {
	y := d.buf[d.pos]
	d.buf[d.pos] = x
	d.pos++
	if d.pos == len(d.buf) {
		d.pos = 0
	}
	return y
}

// ProcessBlock delays src into dst. dst may alias src.
func (d *DelayLine[F]) ProcessBlock(dst, src []F) {
	for i, x := range src {
		dst[i] = d.Process(x)
	}
}

// Delay returns the delay in samples.
func (d *DelayLine[F]) Delay() int {
	return len(d.buf)
}

// Reset refills the line with zeros.
func (d *DelayLine[F]) Reset() {
	clear(d.buf)
	d.pos = 0
}
