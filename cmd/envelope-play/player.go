package main

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/RyanBlaney/sonido-sonar/logging"
	"github.com/ebitengine/oto/v3"
	envelope "github.com/tphakala/go-audio-envelope"
	"github.com/tphakala/go-audio-envelope/internal/filter"
	"github.com/tphakala/go-audio-envelope/internal/wavio"
	"golang.org/x/sync/errgroup"
)

const (
	meterWidth    = 40
	meterFloorDB  = -60.0
	drainInterval = 10 * time.Millisecond
)

// play sends src to the default audio device and prints the envelope level
// while it plays.
func play(ctx context.Context, src source, d *envelope.Detector, blockFrames int, log logging.Logger, out io.Writer) error {
	otoCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   src.Rate(),
		ChannelCount: src.Channels(),
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return fmt.Errorf("failed to open audio device: %w", err)
	}
	<-ready

	reader, writer := io.Pipe()
	player := otoCtx.NewPlayer(reader)
	defer func() { _ = player.Close() }()
	player.Play()

	log.Debug("Playback started", logging.Fields{
		"sample_rate": src.Rate(),
		"channels":    src.Channels(),
		"block":       blockFrames,
	})

	err = pump(ctx, src, d, writer, blockFrames, func(level float64) {
		fmt.Fprintf(out, "\r%s", formatLevel(level, meterWidth))
	})
	_ = writer.Close()
	fmt.Fprintln(out)
	if err != nil {
		return err
	}

	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(drainInterval):
		}
	}
	return nil
}

// pump copies src to pcm as interleaved 16-bit little-endian PCM and feeds
// the mono mixdown through the detector, calling report with the latest
// envelope value of every output block. Writes to pcm pace the loop.
func pump(ctx context.Context, src source, d *envelope.Detector, pcm io.Writer, blockFrames int, report func(float64)) error {
	blocks := make(chan []float64)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(blocks)
		var buf []byte
		for {
			chunk, err := src.Read(blockFrames)
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}

			buf = appendPCM16(buf[:0], chunk)
			if _, err := pcm.Write(buf); err != nil {
				return fmt.Errorf("failed to write audio: %w", err)
			}

			select {
			case blocks <- mixdown(chunk):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})

	g.Go(func() error {
		return d.Stream(ctx, blocks, func(out []float64) error {
			report(out[len(out)-1])
			return nil
		})
	})

	return g.Wait()
}

// appendPCM16 appends chunk as interleaved signed 16-bit little-endian frames.
func appendPCM16(dst []byte, chunk [][]float64) []byte {
	for _, s := range wavio.Interleave(chunk, wavio.FullScale(wavio.BitDepth16)) {
		dst = binary.LittleEndian.AppendUint16(dst, uint16(int16(s)))
	}
	return dst
}

// formatLevel renders an envelope value as a dBFS bar of width cells.
func formatLevel(level float64, width int) string {
	db := filter.MagnitudeDB(math.Abs(level))
	if math.IsNaN(level) {
		db = meterFloorDB
	}
	db = max(meterFloorDB, min(0, db))
	filled := int(math.Round(float64(width) * (1 - db/meterFloorDB)))
	return fmt.Sprintf("[%s%s] %6.1f dBFS", strings.Repeat("#", filled), strings.Repeat("-", width-filled), db)
}
