package main

import (
	"io"

	"github.com/tphakala/go-audio-envelope/internal/signal"
	"github.com/tphakala/go-audio-envelope/internal/wavio"
)

// source yields normalized per-channel audio in chunks.
type source interface {
	Rate() int
	Channels() int
	// Read returns up to frames frames, or io.EOF when exhausted.
	Read(frames int) ([][]float64, error)
	Close() error
}

// wavSource plays a WAV file.
type wavSource struct {
	r *wavio.Reader
}

func openWAVSource(path string) (*wavSource, error) {
	r, err := wavio.Open(path)
	if err != nil {
		return nil, err
	}
	return &wavSource{r: r}, nil
}

func (s *wavSource) Rate() int                            { return s.r.Rate() }
func (s *wavSource) Channels() int                        { return s.r.Channels() }
func (s *wavSource) Read(frames int) ([][]float64, error) { return s.r.ReadChunk(frames) }
func (s *wavSource) Close() error                         { return s.r.Close() }

// amSource synthesizes a mono AM test tone of fixed length.
type amSource struct {
	sig       *signal.AM
	remaining int
}

func newAMSource(sig *signal.AM, frames int) *amSource {
	return &amSource{sig: sig, remaining: frames}
}

func (s *amSource) Rate() int     { return int(s.sig.SampleRate) }
func (s *amSource) Channels() int { return 1 }
func (s *amSource) Close() error  { return nil }

func (s *amSource) Read(frames int) ([][]float64, error) {
	if s.remaining <= 0 {
		return nil, io.EOF
	}
	n := min(frames, s.remaining)
	s.remaining -= n

	buf := make([]float64, n)
	s.sig.Fill(buf)
	return [][]float64{buf}, nil
}

// mixdown averages channels into one detection signal.
func mixdown(chunk [][]float64) []float64 {
	if len(chunk) == 1 {
		return chunk[0]
	}
	out := make([]float64, len(chunk[0]))
	scale := 1 / float64(len(chunk))
	for _, ch := range chunk {
		for i, x := range ch {
			out[i] += x * scale
		}
	}
	return out
}
