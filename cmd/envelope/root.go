package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/RyanBlaney/sonido-sonar/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/tphakala/go-audio-envelope/internal/wavio"
)

const (
	appName   = "envelope"
	envPrefix = "ENVELOPE"
)

var (
	configFile string
	logger     logging.Logger = &logging.NoOpLogger{}
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Hilbert transform envelope detector",
	Long: `Extracts the amplitude envelope of audio signals.

Each channel runs through a Hilbert quadrature filter with a matching delay
line, the magnitude of the analytic signal is taken, and the result is
decimated by K and smoothed by a windowed-sinc lowpass designed at Fs/K.

Configuration is read from flags, ENVELOPE_* environment variables and an
optional envelope.yaml file, in that order of precedence.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := bindFlags(cmd, viper.GetViper()); err != nil {
			return err
		}
		l, err := newLogger(viper.GetString("log-level"))
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "",
		"config file (default is $HOME/.config/envelope/envelope.yaml)")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")

	// Detector overrides; zero keeps the configured value.
	pf.Int("hilbert-length", 0, "Hilbert filter taps N (even)")
	pf.String("hilbert-design", "", "Hilbert design method (least-squares, windowed)")
	pf.Float64("passband-low", 0, "Hilbert passband lower edge, fraction of Nyquist")
	pf.Float64("passband-high", 0, "Hilbert passband upper edge, fraction of Nyquist")
	pf.Int("order", 0, "smoothing lowpass order")
	pf.Float64("cutoff", 0, "smoothing lowpass cutoff in Hz")
	pf.IntP("downsample", "k", 0, "decimation factor K")
	pf.Int("phase", -1, "decimation phase in [0, K)")
	pf.String("window", "", "smoothing lowpass window")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", appName))
		}
		viper.AddConfigPath("/etc/" + appName)
		viper.AddConfigPath(".")
		viper.SetConfigName(appName)
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// bindFlags binds each cobra flag to its viper key and ENVELOPE_ variable.
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	var lastErr error

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))

		if !f.Changed && v.IsSet(f.Name) {
			val := v.Get(f.Name)
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val)); err != nil {
				lastErr = err
			}
		}

		if err := v.BindPFlag(f.Name, f); err != nil {
			lastErr = err
		}

		if err := v.BindEnv(f.Name, envPrefix+"_"+envVarSuffix); err != nil {
			lastErr = err
		}
	})

	return lastErr
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log-level", "info")
	v.SetDefault("phase", -1)
	v.SetDefault("bit-depth", wavio.DefaultBitDepth)
	v.SetDefault("format", "table")
}

// newLogger builds the CLI logger at the named level.
func newLogger(level string) (logging.Logger, error) {
	lvl, err := parseLevel(level)
	if err != nil {
		return nil, err
	}
	l := logging.NewDefaultLogger()
	l.SetLevel(lvl)
	return l, nil
}

func parseLevel(name string) (logging.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return logging.DebugLevel, nil
	case "", "info":
		return logging.InfoLevel, nil
	case "warn", "warning":
		return logging.WarnLevel, nil
	case "error":
		return logging.ErrorLevel, nil
	default:
		return logging.InfoLevel, fmt.Errorf("unknown log level %q", name)
	}
}
