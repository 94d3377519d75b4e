// Package wavio reads and writes integer PCM WAV files as normalized
// per-channel float64 samples, and writes envelope CSV files.
package wavio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Supported PCM bit depths.
const (
	BitDepth8  = 8
	BitDepth16 = 16
	BitDepth24 = 24
	BitDepth32 = 32

	DefaultBitDepth = BitDepth16
)

const (
	pcmFormat = 1

	// ChunkFrames is the number of frames ReadAll decodes per call.
	ChunkFrames = 8192
)

// Reader holds an opened, validated WAV file.
type Reader struct {
	file         *os.File
	decoder      *wav.Decoder
	rate         int
	channels     int
	bitDepth     int
	totalFrames  int64
	invFullScale float64
}

// Open opens and validates a WAV file and positions the decoder at the first
// PCM frame.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		_ = f.Close()
		return nil, fmt.Errorf("invalid WAV file: %s", path)
	}

	format := decoder.Format()
	bitDepth := int(decoder.BitDepth)
	if format.NumChannels <= 0 || format.SampleRate <= 0 {
		_ = f.Close()
		return nil, fmt.Errorf("invalid WAV format in %s: %d Hz, %d channels", path, format.SampleRate, format.NumChannels)
	}

	duration, err := decoder.Duration()
	if err != nil {
		duration = 0
	}

	return &Reader{
		file:         f,
		decoder:      decoder,
		rate:         format.SampleRate,
		channels:     format.NumChannels,
		bitDepth:     bitDepth,
		totalFrames:  int64(duration.Seconds() * float64(format.SampleRate)),
		invFullScale: 1 / FullScale(bitDepth),
	}, nil
}

// Rate returns the sample rate in Hz.
func (r *Reader) Rate() int { return r.rate }

// Channels returns the channel count.
func (r *Reader) Channels() int { return r.channels }

// BitDepth returns the PCM bit depth.
func (r *Reader) BitDepth() int { return r.bitDepth }

// Frames estimates the total frame count from the header.
func (r *Reader) Frames() int64 { return r.totalFrames }

// Close closes the input file.
func (r *Reader) Close() error {
	return r.file.Close()
}

// ReadChunk decodes up to maxFrames frames and returns them deinterleaved
// and normalized to [-1, 1]. It returns io.EOF once the data is exhausted.
func (r *Reader) ReadChunk(maxFrames int) ([][]float64, error) {
	buf := &audio.IntBuffer{
		Format: r.decoder.Format(),
		Data:   make([]int, maxFrames*r.channels),
	}
	n, err := r.decoder.PCMBuffer(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode PCM data: %w", err)
	}
	if n == 0 {
		return nil, io.EOF
	}
	return Deinterleave(buf.Data[:n], r.channels, r.invFullScale), nil
}

// ReadAll decodes the remaining frames of every channel.
func (r *Reader) ReadAll() ([][]float64, error) {
	out := make([][]float64, r.channels)
	for ch := range out {
		out[ch] = make([]float64, 0, r.totalFrames)
	}
	for {
		chunk, err := r.ReadChunk(ChunkFrames)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		for ch := range out {
			out[ch] = append(out[ch], chunk[ch]...)
		}
	}
}

// Deinterleave splits interleaved integer frames into per-channel slices
// scaled by scale. A trailing partial frame is dropped.
func Deinterleave(data []int, channels int, scale float64) [][]float64 {
	frames := len(data) / channels
	out := make([][]float64, channels)
	for ch := range out {
		out[ch] = make([]float64, frames)
	}
	for i := range frames {
		base := i * channels
		for ch := range channels {
			out[ch][i] = float64(data[base+ch]) * scale
		}
	}
	return out
}

// Interleave merges per-channel samples into integer frames at full scale
// maxVal, clamping to [-1, 1]. Channels are truncated to the shortest.
func Interleave(channels [][]float64, maxVal float64) []int {
	if len(channels) == 0 {
		return nil
	}
	frames := len(channels[0])
	for _, ch := range channels[1:] {
		frames = min(frames, len(ch))
	}

	out := make([]int, frames*len(channels))
	for i := range frames {
		for ch := range channels {
			out[i*len(channels)+ch] = int(clamp(channels[ch][i]) * maxVal)
		}
	}
	return out
}

func clamp(x float64) float64 {
	switch {
	case math.IsNaN(x):
		return 0
	case x > 1:
		return 1
	case x < -1:
		return -1
	}
	return x
}

// FullScale returns the largest positive sample value for bitDepth.
func FullScale(bitDepth int) float64 {
	switch bitDepth {
	case BitDepth8:
		return 1<<7 - 1
	case BitDepth24:
		return 1<<23 - 1
	case BitDepth32:
		return 1<<31 - 1
	default:
		return 1<<15 - 1
	}
}

// Write writes per-channel samples in [-1, 1] as integer PCM.
func Write(path string, sampleRate, bitDepth int, channels [][]float64) error {
	switch bitDepth {
	case BitDepth16, BitDepth24, BitDepth32:
	default:
		return fmt.Errorf("unsupported output bit depth: %d", bitDepth)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	enc := wav.NewEncoder(f, sampleRate, bitDepth, len(channels), pcmFormat)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: len(channels), SampleRate: sampleRate},
		Data:           Interleave(channels, FullScale(bitDepth)),
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to finalize WAV: %w", err)
	}
	return f.Close()
}

// WriteCSV writes one row per envelope frame: the time in seconds of the
// input sample the frame represents, then one column per channel.
func WriteCSV(w io.Writer, times []float64, channels [][]float64) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(channels)+1)
	header = append(header, "time_s")
	for ch := range channels {
		header = append(header, "ch"+strconv.Itoa(ch))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(channels)+1)
	for i, t := range times {
		row[0] = strconv.FormatFloat(t, 'f', 6, 64)
		for ch := range channels {
			v := 0.0
			if i < len(channels[ch]) {
				v = channels[ch][i]
			}
			row[ch+1] = strconv.FormatFloat(v, 'g', 8, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
