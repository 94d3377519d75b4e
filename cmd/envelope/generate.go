package main

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-sonar/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tphakala/go-audio-envelope/internal/signal"
	"github.com/tphakala/go-audio-envelope/internal/wavio"
)

var generateCmd = &cobra.Command{
	Use:   "generate <output.wav>",
	Short: "Write an amplitude-modulated test signal",
	Long: `Write A·(1 + m·sin(2π·fm·t))·sin(2π·fc·t) as a mono PCM WAV file.

Examples:
  envelope generate am.wav
  envelope generate --rate 48000 --carrier 5000 --modulation 4 --depth 0.8 am.wav`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.Int("rate", 8000, "sample rate in Hz")
	f.Float64("carrier", 1100, "carrier frequency fc in Hz")
	f.Float64("modulation", 20, "modulation frequency fm in Hz")
	f.Float64("depth", 0.5, "modulation depth m in [0, 1]")
	f.Float64("amplitude", 0.5, "peak carrier amplitude A")
	f.Duration("duration", 0, "signal length (default 1s)")
	f.Int("bit-depth", wavio.DefaultBitDepth, "output WAV bit depth (16, 24, 32)")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	v := viper.GetViper()
	sig := signal.AM{
		SampleRate: float64(v.GetInt("rate")),
		Carrier:    v.GetFloat64("carrier"),
		Modulation: v.GetFloat64("modulation"),
		Depth:      v.GetFloat64("depth"),
		Amplitude:  v.GetFloat64("amplitude"),
	}
	seconds := v.GetDuration("duration").Seconds()
	if seconds <= 0 {
		seconds = 1
	}

	n, err := generateWAV(args[0], &sig, seconds, v.GetInt("bit-depth"))
	if err != nil {
		return err
	}

	logger.Info("Test signal written", logging.Fields{
		"output":     args[0],
		"samples":    n,
		"carrier":    sig.Carrier,
		"modulation": sig.Modulation,
		"depth":      sig.Depth,
	})
	return nil
}

// generateWAV renders seconds of sig to a mono WAV and returns the sample
// count.
func generateWAV(path string, sig *signal.AM, seconds float64, bitDepth int) (int, error) {
	if err := sig.Validate(); err != nil {
		return 0, err
	}
	amp := sig.Amplitude
	if amp == 0 {
		amp = 1
	}
	if peak := math.Abs(amp) * (1 + sig.Depth); peak > 1 {
		return 0, fmt.Errorf("peak amplitude %.3g exceeds full scale", peak)
	}
	if sig.SampleRate != math.Trunc(sig.SampleRate) {
		return 0, fmt.Errorf("sample rate must be a whole number of Hz: %v", sig.SampleRate)
	}

	n := int(math.Round(seconds * sig.SampleRate))
	samples := sig.Generate(n)
	if err := wavio.Write(path, int(sig.SampleRate), bitDepth, [][]float64{samples}); err != nil {
		return 0, err
	}
	return n, nil
}
