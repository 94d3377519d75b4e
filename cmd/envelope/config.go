package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	envelope "github.com/tphakala/go-audio-envelope"
)

// Default smoothing cutoff as a fraction of the decimated Nyquist frequency,
// applied when -k changes K and no cutoff is given.
const cutoffFraction = 0.2

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective detector configuration as YAML",
	Long: `Print the detector configuration that detect would use, after applying
the config file, environment variables and flags.

Examples:
  envelope config
  envelope --config ./envelope.yaml config --rate 48000
  ENVELOPE_HILBERT_LENGTH=64 envelope config`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().Float64("rate", envelope.RateTelephony, "sample rate in Hz")
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := detectorConfig(viper.GetViper(), viper.GetFloat64("rate"))
	if err != nil {
		return err
	}
	out, err := cfg.YAML()
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	_, err = os.Stdout.Write(out)
	return err
}

// detectorConfig assembles a detector configuration for sampleRate: the
// defaults, overlaid by the "detector" section of the config file, overlaid
// by any non-zero flag or environment override.
func detectorConfig(v *viper.Viper, sampleRate float64) (*envelope.Config, error) {
	cfg := envelope.DefaultConfig(sampleRate)

	if v.IsSet("detector") {
		if err := v.UnmarshalKey("detector", &cfg); err != nil {
			return nil, fmt.Errorf("%w: detector section: %w", envelope.ErrInvalidConfig, err)
		}
		// The input dictates the rate.
		cfg.SampleRate = sampleRate
	}

	if n := v.GetInt("hilbert-length"); n != 0 {
		cfg.Hilbert.Length = n
	}
	if s := v.GetString("hilbert-design"); s != "" {
		cfg.Hilbert.Design = envelope.HilbertDesign(s)
	}
	if f := v.GetFloat64("passband-low"); f != 0 {
		cfg.Hilbert.PassbandLow = f
	}
	if f := v.GetFloat64("passband-high"); f != 0 {
		cfg.Hilbert.PassbandHigh = f
	}
	if n := v.GetInt("order"); n != 0 {
		cfg.Smoothing.Order = n
	}
	if k := v.GetInt("downsample"); k != 0 {
		cfg.Smoothing.DownsampleFactor = k
		if k > 0 {
			cfg.Smoothing.CutoffHz = cutoffFraction * sampleRate / float64(k) / 2
		}
	}
	if f := v.GetFloat64("cutoff"); f != 0 {
		cfg.Smoothing.CutoffHz = f
	}
	if p := v.GetInt("phase"); p >= 0 {
		cfg.Smoothing.Phase = p
	}
	if s := v.GetString("window"); s != "" {
		cfg.Smoothing.Window = envelope.WindowType(s)
	}
	cfg.EnableParallel = cfg.EnableParallel || v.GetBool("parallel")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
