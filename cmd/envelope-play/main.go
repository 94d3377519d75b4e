// Command envelope-play plays a WAV file or a synthetic AM tone and shows
// its detected envelope as a live level meter.
//
// Usage:
//
//	envelope-play                      # 5 s of the default AM tone
//	envelope-play --carrier 440 --modulation 2 --rate 44100
//	envelope-play speech.wav
package main

import (
	"fmt"
	"os"
	ossignal "os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/RyanBlaney/sonido-sonar/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	envelope "github.com/tphakala/go-audio-envelope"
	"github.com/tphakala/go-audio-envelope/internal/signal"
)

const envPrefix = "ENVELOPE_PLAY"

var rootCmd = &cobra.Command{
	Use:   "envelope-play [input.wav]",
	Short: "Play audio and show its envelope level",
	Long: `Play a WAV file, or a generated AM tone when no file is given, through the
default audio device while the envelope detector runs on the same samples.

Multi-channel input is averaged to mono for detection.`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd, viper.GetViper())
	},
	RunE: run,
}

func init() {
	f := rootCmd.Flags()
	f.String("log-level", "info", "log level (debug, info, warn, error)")
	f.Int("rate", envelope.RateTelephony, "tone sample rate in Hz")
	f.Float64("carrier", 1100, "tone carrier frequency in Hz")
	f.Float64("modulation", 2, "tone modulation frequency in Hz")
	f.Float64("depth", 0.8, "tone modulation depth")
	f.Float64("amplitude", 0.5, "tone peak carrier amplitude")
	f.Duration("duration", 5*time.Second, "tone length")
	f.Duration("block", 50*time.Millisecond, "playback block length")
	f.Int("hilbert-length", 0, "Hilbert filter taps N (0 keeps the default)")
	f.IntP("downsample", "k", 0, "decimation factor K (0 keeps the default)")

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// bindFlags binds each flag to its viper key and ENVELOPE_PLAY_ variable.
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	var lastErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if err := v.BindPFlag(f.Name, f); err != nil {
			lastErr = err
		}
		env := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
		if err := v.BindEnv(f.Name, env); err != nil {
			lastErr = err
		}
	})
	return lastErr
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	v := viper.GetViper()
	log, err := newLogger(v.GetString("log-level"))
	if err != nil {
		return err
	}

	src, err := openSource(v, args)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	cfg := envelope.DefaultConfig(float64(src.Rate()))
	if n := v.GetInt("hilbert-length"); n != 0 {
		cfg.Hilbert.Length = n
	}
	if k := v.GetInt("downsample"); k > 0 {
		cfg.Smoothing.DownsampleFactor = k
		cfg.Smoothing.CutoffHz = 0.2 * cfg.SampleRate / float64(k) / 2
	}
	d, err := envelope.New(&cfg)
	if err != nil {
		return err
	}

	blockFrames := max(1, int(v.GetDuration("block").Seconds()*float64(src.Rate())))
	log.Info("Playing", logging.Fields{
		"sample_rate": src.Rate(),
		"channels":    src.Channels(),
		"detector":    d.GetInfo().Algorithm,
	})

	ctx, stop := ossignal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := play(ctx, src, d, blockFrames, log, os.Stdout); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// openSource opens the WAV named in args, or builds the AM tone from flags.
func openSource(v *viper.Viper, args []string) (source, error) {
	if len(args) == 1 {
		return openWAVSource(args[0])
	}

	sig := &signal.AM{
		SampleRate: float64(v.GetInt("rate")),
		Carrier:    v.GetFloat64("carrier"),
		Modulation: v.GetFloat64("modulation"),
		Depth:      v.GetFloat64("depth"),
		Amplitude:  v.GetFloat64("amplitude"),
	}
	if err := sig.Validate(); err != nil {
		return nil, err
	}
	frames := int(v.GetDuration("duration").Seconds() * sig.SampleRate)
	return newAMSource(sig, frames), nil
}

func newLogger(level string) (logging.Logger, error) {
	l := logging.NewDefaultLogger()
	switch strings.ToLower(level) {
	case "debug":
		l.SetLevel(logging.DebugLevel)
	case "", "info":
		l.SetLevel(logging.InfoLevel)
	case "warn", "warning":
		l.SetLevel(logging.WarnLevel)
	case "error":
		l.SetLevel(logging.ErrorLevel)
	default:
		return nil, fmt.Errorf("unknown log level %q", level)
	}
	return l, nil
}
