package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/RyanBlaney/sonido-sonar/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	envelope "github.com/tphakala/go-audio-envelope"
	"github.com/tphakala/go-audio-envelope/internal/filter"
	"github.com/tphakala/go-audio-envelope/internal/signal"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Sweep Hilbert lengths and measure envelope recovery",
	Long: `For each Hilbert length, design the quadrature filter, report its
passband deviation and run the full detector over a synthetic AM signal,
comparing the output with the known envelope.

Examples:
  envelope analyze
  envelope analyze --lengths 16,32,64,128 --carrier 1500
  envelope analyze --rate 48000 --carrier 6000 --modulation 5 --format yaml`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.Float64("rate", envelope.RateTelephony, "sample rate in Hz")
	f.IntSlice("lengths", []int{8, 16, 32, 64, 128}, "Hilbert lengths to sweep")
	f.Float64("carrier", 1100, "test carrier frequency in Hz")
	f.Float64("modulation", 20, "test modulation frequency in Hz")
	f.Float64("depth", 0.5, "test modulation depth")
	f.Duration("duration", 0, "test signal length (default 2s)")
	f.String("format", "table", "output format (table, yaml)")
	rootCmd.AddCommand(analyzeCmd)
}

// sweepResult holds the measurements for one Hilbert length.
type sweepResult struct {
	Length       int     `yaml:"length"`
	Deviation    float64 `yaml:"passband_deviation"`
	DeviationDB  float64 `yaml:"passband_deviation_db"`
	Latency      float64 `yaml:"latency_samples"`
	RMSError     float64 `yaml:"rms_error"`
	MeanError    float64 `yaml:"mean_error"`
	ComparedSize int     `yaml:"compared_outputs"`
	Err          string  `yaml:"error,omitempty"`
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	v := viper.GetViper()
	rate := v.GetFloat64("rate")
	base, err := detectorConfig(v, rate)
	if err != nil {
		return err
	}

	seconds := v.GetDuration("duration").Seconds()
	if seconds <= 0 {
		seconds = 2
	}
	sig := &signal.AM{
		SampleRate: rate,
		Carrier:    v.GetFloat64("carrier"),
		Modulation: v.GetFloat64("modulation"),
		Depth:      v.GetFloat64("depth"),
	}
	if err := sig.Validate(); err != nil {
		return err
	}
	input := sig.Generate(int(seconds * rate))

	lengths, err := cmd.Flags().GetIntSlice("lengths")
	if err != nil {
		return err
	}

	results := make([]sweepResult, 0, len(lengths))
	for _, n := range lengths {
		res := analyzeLength(base, n, sig, input)
		if res.Err != "" {
			logger.Warn("Sweep point failed", logging.Fields{"length": n, "error": res.Err})
		}
		results = append(results, res)
	}

	return writeSweep(os.Stdout, results, v.GetString("format"))
}

// analyzeLength measures the detector built from base with Hilbert length n.
func analyzeLength(base *envelope.Config, n int, sig *signal.AM, input []float64) sweepResult {
	res := sweepResult{Length: n}

	cfg := *base
	cfg.Channels = 1
	cfg.Hilbert.Length = n

	h, err := filter.DesignHilbert(filter.HilbertParams{
		Length: n,
		Low:    cfg.Hilbert.PassbandLow,
		High:   cfg.Hilbert.PassbandHigh,
		Method: filter.HilbertMethod(cfg.Hilbert.Design),
		Window: filter.Window(cfg.Hilbert.Window),
		Beta:   cfg.Hilbert.KaiserBeta,
	})
	if err != nil {
		res.Err = err.Error()
		return res
	}
	res.Deviation = filter.PassbandDeviation(h, cfg.Hilbert.PassbandLow, cfg.Hilbert.PassbandHigh, responsePoints)
	res.DeviationDB = filter.MagnitudeDB(1 + res.Deviation)

	out, err := envelope.DetectWithConfig(input, &cfg)
	if err != nil {
		res.Err = err.Error()
		return res
	}
	res.Latency = -envelope.EnvelopeAlignment(&cfg, 0)
	res.RMSError, res.MeanError, res.ComparedSize = recoveryError(&cfg, sig, out)
	return res
}

// recoveryError compares detector output with the true envelope of sig once
// every filter holds only real input. It returns the RMS error relative to
// the RMS envelope, the mean error and the number of outputs compared.
func recoveryError(cfg *envelope.Config, sig *signal.AM, out []float64) (rms, mean float64, compared int) {
	k := cfg.Smoothing.DownsampleFactor
	warmup := cfg.Hilbert.Length + k*cfg.Smoothing.Order - cfg.Smoothing.Phase
	skip := (warmup + k - 1) / k
	if skip >= len(out) {
		return math.NaN(), math.NaN(), 0
	}

	got := out[skip:]
	want := make([]float64, len(got))
	for i := range want {
		want[i] = sig.EnvelopeAt(envelope.EnvelopeAlignment(cfg, skip+i))
	}

	diff := make([]float64, len(got))
	floats.SubTo(diff, got, want)
	mean = stat.Mean(diff, nil)

	floats.Mul(diff, diff)
	refPower := stat.Mean(floats.MulTo(make([]float64, len(want)), want, want), nil)
	rms = math.Sqrt(stat.Mean(diff, nil) / refPower)
	return rms, mean, len(got)
}

func writeSweep(w io.Writer, results []sweepResult, format string) error {
	switch strings.ToLower(format) {
	case "yaml":
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(results); err != nil {
			return err
		}
		return enc.Close()
	case "", "table":
	default:
		return fmt.Errorf("unknown output format %q", format)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	headers := []string{"length", "passband dev", "dev db", "latency", "rms error", "mean error", ""}
	for i, h := range headers {
		headers[i] = titleCaser.String(h)
	}
	fmt.Fprintln(tw, strings.Join(headers, "\t"))

	for _, r := range results {
		if r.Err != "" {
			fmt.Fprintf(tw, "%d\t-\t-\t-\t-\t-\t%s\n", r.Length, r.Err)
			continue
		}
		fmt.Fprintf(tw, "%d\t%.5f\t%.3f\t%.1f\t%.2f%%\t%+.5f\t\n",
			r.Length, r.Deviation, r.DeviationDB, r.Latency, 100*r.RMSError, r.MeanError)
	}
	return tw.Flush()
}
