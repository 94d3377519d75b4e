package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/RyanBlaney/sonido-sonar/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	envelope "github.com/tphakala/go-audio-envelope"
	"github.com/tphakala/go-audio-envelope/internal/wavio"
)

var detectCmd = &cobra.Command{
	Use:   "detect <input.wav> <output.wav|output.csv>",
	Short: "Extract the amplitude envelope of a WAV file",
	Long: `Run every channel of a WAV file through the envelope detector and write
the envelope at Fs/K.

A .csv output holds one row per envelope frame with the time of the input
sample it represents; any other extension is written as integer PCM WAV.

Examples:
  envelope detect speech.wav speech_env.csv
  envelope detect --fast -k 4 --order 32 music.wav music_env.wav
  envelope detect --parallel=false surround.wav env.wav`,
	Args: cobra.ExactArgs(2),
	RunE: runDetect,
}

func init() {
	f := detectCmd.Flags()
	f.Bool("fast", false, "use the float32 engine")
	f.Bool("parallel", true, "process channels concurrently")
	f.Int("bit-depth", wavio.DefaultBitDepth, "output WAV bit depth (16, 24, 32)")
	rootCmd.AddCommand(detectCmd)
}

// detectStats summarizes one detect run.
type detectStats struct {
	InputRate    int
	OutputRate   float64
	Channels     int
	InputFrames  int
	OutputFrames int
	Latency      int
	Elapsed      time.Duration
}

func runDetect(cmd *cobra.Command, args []string) error {
	v := viper.GetViper()
	stats, err := detectWAV(args[0], args[1], v, v.GetBool("fast"), v.GetInt("bit-depth"))
	if err != nil {
		return err
	}

	logger.Info("Envelope written", logging.Fields{
		"output":        args[1],
		"channels":      stats.Channels,
		"input_frames":  stats.InputFrames,
		"output_frames": stats.OutputFrames,
		"output_rate":   stats.OutputRate,
		"latency":       stats.Latency,
		"elapsed":       stats.Elapsed.String(),
	})
	return nil
}

// detectWAV runs the detector over inPath and writes the envelope to outPath.
func detectWAV(inPath, outPath string, v *viper.Viper, fast bool, bitDepth int) (*detectStats, error) {
	in, err := wavio.Open(inPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = in.Close() }()

	logger.Debug("Opened WAV input", logging.Fields{
		"path":        inPath,
		"sample_rate": in.Rate(),
		"channels":    in.Channels(),
		"bit_depth":   in.BitDepth(),
		"frames":      in.Frames(),
	})

	cfg, err := detectorConfig(v, float64(in.Rate()))
	if err != nil {
		return nil, err
	}
	cfg.Channels = in.Channels()

	start := time.Now()
	var (
		env    [][]float64
		frames int
	)
	if fast {
		env, frames, err = detectFloat32(in, cfg)
	} else {
		env, frames, err = detectFloat64(in, cfg)
	}
	if err != nil {
		return nil, err
	}

	stats := &detectStats{
		InputRate:   in.Rate(),
		OutputRate:  cfg.OutputRate(),
		Channels:    in.Channels(),
		InputFrames: frames,
		Latency:     int(math.Ceil(-envelope.EnvelopeAlignment(cfg, 0))),
		Elapsed:     time.Since(start),
	}
	if len(env) > 0 {
		stats.OutputFrames = len(env[0])
	}

	if err := writeEnvelope(outPath, cfg, env, bitDepth); err != nil {
		return nil, err
	}
	return stats, nil
}

// detectFloat64 streams the input through one multi-channel detector.
func detectFloat64(in *wavio.Reader, cfg *envelope.Config) ([][]float64, int, error) {
	d, err := envelope.New(cfg)
	if err != nil {
		return nil, 0, err
	}
	defer d.Stop()

	logger.Debug("Detector configured", logging.Fields{
		"algorithm": d.GetInfo().Algorithm,
		"parallel":  cfg.EnableParallel,
	})

	env := make([][]float64, cfg.Channels)
	frames := 0
	for {
		chunk, err := in.ReadChunk(wavio.ChunkFrames)
		if errors.Is(err, io.EOF) {
			return env, frames, nil
		}
		if err != nil {
			return nil, 0, err
		}
		frames += len(chunk[0])

		out, err := d.ProcessMulti(chunk)
		if err != nil {
			return nil, 0, err
		}
		for ch := range env {
			env[ch] = append(env[ch], out[ch]...)
		}
	}
}

// detectFloat32 runs one mono float32 detector per channel.
func detectFloat32(in *wavio.Reader, cfg *envelope.Config) ([][]float64, int, error) {
	mono := *cfg
	mono.Channels = 1

	detectors := make([]*envelope.Detector, cfg.Channels)
	for ch := range detectors {
		d, err := envelope.New(&mono)
		if err != nil {
			return nil, 0, err
		}
		detectors[ch] = d
	}
	defer func() {
		for _, d := range detectors {
			d.Stop()
		}
	}()

	env := make([][]float64, cfg.Channels)
	buf := make([]float32, 0, wavio.ChunkFrames)
	frames := 0
	for {
		chunk, err := in.ReadChunk(wavio.ChunkFrames)
		if errors.Is(err, io.EOF) {
			return env, frames, nil
		}
		if err != nil {
			return nil, 0, err
		}
		frames += len(chunk[0])

		for ch, samples := range chunk {
			buf = buf[:0]
			for _, s := range samples {
				buf = append(buf, float32(s))
			}
			out, err := detectors[ch].ProcessFloat32(buf)
			if err != nil {
				return nil, 0, fmt.Errorf("channel %d: %w", ch, err)
			}
			for _, y := range out {
				env[ch] = append(env[ch], float64(y))
			}
		}
	}
}

// writeEnvelope writes env as CSV or WAV depending on the extension of path.
func writeEnvelope(path string, cfg *envelope.Config, env [][]float64, bitDepth int) error {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		frames := 0
		if len(env) > 0 {
			frames = len(env[0])
		}
		times := make([]float64, frames)
		for j := range times {
			times[j] = envelope.EnvelopeAlignment(cfg, j) / cfg.SampleRate
		}
		if err := wavio.WriteCSV(f, times, env); err != nil {
			_ = f.Close()
			return fmt.Errorf("failed to write CSV: %w", err)
		}
		return f.Close()
	}

	outRate := cfg.OutputRate()
	rate := int(math.Round(outRate))
	if float64(rate) != outRate {
		logger.Warn("Output rate is not an integer; WAV header rounds it", logging.Fields{
			"output_rate": outRate,
			"header_rate": rate,
		})
	}
	return wavio.Write(path, rate, bitDepth, env)
}
