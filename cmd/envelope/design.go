package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	envelope "github.com/tphakala/go-audio-envelope"
	"github.com/tphakala/go-audio-envelope/internal/filter"
	"github.com/tphakala/go-audio-envelope/internal/mathutil"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gonum.org/v1/gonum/floats"
	"gopkg.in/yaml.v3"
)

// Frequency grid for the passband summary.
const responsePoints = 1024

var titleCaser = cases.Title(language.English)

var designCmd = &cobra.Command{
	Use:   "design",
	Short: "Print the designed Hilbert and smoothing filters",
	Long: `Design the filters for the effective configuration and print their
coefficients with a passband summary.

Examples:
  envelope design
  envelope design --rate 48000 --hilbert-length 64 --coefficients
  envelope design --format json > filters.json
  envelope design --attenuation 60`,
	Args: cobra.NoArgs,
	RunE: runDesign,
}

func init() {
	f := designCmd.Flags()
	f.Float64("rate", envelope.RateTelephony, "sample rate in Hz")
	f.String("format", "table", "output format (table, yaml, json)")
	f.Bool("coefficients", false, "list coefficients in table output")
	f.Float64("attenuation", 0, "also suggest the shortest windowed Hilbert length for this many dB")
	rootCmd.AddCommand(designCmd)
}

// filterReport describes one designed filter.
type filterReport struct {
	Taps         int       `json:"taps" yaml:"taps"`
	RateHz       float64   `json:"rate_hz" yaml:"rate_hz"`
	GroupDelay   float64   `json:"group_delay" yaml:"group_delay"`
	BandLowHz    float64   `json:"band_low_hz" yaml:"band_low_hz"`
	BandHighHz   float64   `json:"band_high_hz" yaml:"band_high_hz"`
	Deviation    float64   `json:"passband_deviation" yaml:"passband_deviation"`
	EdgeGainDB   float64   `json:"edge_gain_db" yaml:"edge_gain_db"`
	KaiserBeta   float64   `json:"kaiser_beta,omitempty" yaml:"kaiser_beta,omitempty"`
	KaiserAttDB  float64   `json:"kaiser_attenuation_db,omitempty" yaml:"kaiser_attenuation_db,omitempty"`
	Coefficients []float64 `json:"coefficients" yaml:"coefficients,flow"`
}

// designReport is the design command's output document.
type designReport struct {
	SampleRate  float64      `json:"sample_rate" yaml:"sample_rate"`
	OutputRate  float64      `json:"output_rate" yaml:"output_rate"`
	Algorithm   string       `json:"algorithm" yaml:"algorithm"`
	GroupDelay  float64      `json:"group_delay" yaml:"group_delay"`
	MemoryUsage int64        `json:"memory_usage" yaml:"memory_usage"`
	SIMD        string       `json:"simd" yaml:"simd"`
	Hilbert     filterReport `json:"hilbert" yaml:"hilbert"`
	Smoothing   filterReport `json:"smoothing" yaml:"smoothing"`

	// Set by --attenuation.
	TargetAttDB     float64 `json:"target_attenuation_db,omitempty" yaml:"target_attenuation_db,omitempty"`
	SuggestedLength int     `json:"suggested_hilbert_length,omitempty" yaml:"suggested_hilbert_length,omitempty"`

	showCoeffs bool
}

func runDesign(cmd *cobra.Command, args []string) error {
	v := viper.GetViper()
	cfg, err := detectorConfig(v, v.GetFloat64("rate"))
	if err != nil {
		return err
	}
	report, err := buildDesignReport(cfg)
	if err != nil {
		return err
	}
	if att := v.GetFloat64("attenuation"); att > 0 {
		report.suggestLength(cfg, att)
	}
	report.showCoeffs = v.GetBool("coefficients")
	return writeDesignReport(os.Stdout, report, v.GetString("format"))
}

// buildDesignReport designs the filters for cfg and measures them.
func buildDesignReport(cfg *envelope.Config) (*designReport, error) {
	d, err := envelope.New(cfg)
	if err != nil {
		return nil, err
	}
	info := d.GetInfo()
	nyquist := cfg.SampleRate / 2
	outRate := cfg.OutputRate()

	h := d.HilbertCoefficients()
	lp := d.SmoothingCoefficients()
	lpCutoff := cfg.Smoothing.CutoffHz / (outRate / 2)

	hilbertWindow, err := filter.ParseWindow(string(cfg.Hilbert.Window), filter.WindowKaiser)
	if err != nil {
		return nil, err
	}
	hp := filter.HilbertParams{
		Length: cfg.Hilbert.Length,
		Low:    cfg.Hilbert.PassbandLow,
		High:   cfg.Hilbert.PassbandHigh,
		Method: filter.HilbertMethod(cfg.Hilbert.Design),
		Window: hilbertWindow,
		Beta:   cfg.Hilbert.KaiserBeta,
	}
	hilbertBeta := hp.KaiserBeta()

	lowpassWindow, err := filter.ParseWindow(string(cfg.Smoothing.Window), filter.WindowHamming)
	if err != nil {
		return nil, err
	}
	var smoothingBeta float64
	if lowpassWindow == filter.WindowKaiser {
		smoothingBeta = cfg.Smoothing.KaiserBeta
	}

	return &designReport{
		SampleRate:  cfg.SampleRate,
		OutputRate:  outRate,
		Algorithm:   info.Algorithm,
		GroupDelay:  d.GroupDelay(),
		MemoryUsage: info.MemoryUsage,
		SIMD:        info.SIMDType,
		Hilbert: filterReport{
			Taps:         len(h),
			RateHz:       cfg.SampleRate,
			GroupDelay:   float64(len(h) / 2),
			BandLowHz:    cfg.Hilbert.PassbandLow * nyquist,
			BandHighHz:   cfg.Hilbert.PassbandHigh * nyquist,
			Deviation:    filter.PassbandDeviation(h, cfg.Hilbert.PassbandLow, cfg.Hilbert.PassbandHigh, responsePoints),
			EdgeGainDB:   filter.MagnitudeDB(filter.MagnitudeAt(h, cfg.Hilbert.PassbandLow)),
			KaiserBeta:   hilbertBeta,
			KaiserAttDB:  mathutil.KaiserAttenuation(hilbertBeta),
			Coefficients: h,
		},
		Smoothing: filterReport{
			Taps:         len(lp),
			RateHz:       outRate,
			GroupDelay:   float64(len(lp)-1) / 2,
			BandLowHz:    0,
			BandHighHz:   cfg.Smoothing.CutoffHz,
			Deviation:    dcDeviation(lp),
			EdgeGainDB:   filter.MagnitudeDB(filter.MagnitudeAt(lp, lpCutoff)),
			KaiserBeta:   smoothingBeta,
			KaiserAttDB:  mathutil.KaiserAttenuation(smoothingBeta),
			Coefficients: lp,
		},
	}, nil
}

// suggestLength records the shortest windowed Hilbert length expected to
// reach att dB over the configured passband.
func (r *designReport) suggestLength(cfg *envelope.Config, att float64) {
	r.TargetAttDB = att
	r.SuggestedLength = filter.SuggestHilbertLength(cfg.Hilbert.PassbandLow, cfg.Hilbert.PassbandHigh, att)
}

// dcDeviation is |H(0) − 1| for a lowpass.
func dcDeviation(coeffs []float64) float64 {
	return math.Abs(floats.Sum(coeffs) - 1)
}

func writeDesignReport(w io.Writer, r *designReport, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "yaml":
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case "", "table":
		return writeDesignTable(w, r)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func writeDesignTable(w io.Writer, r *designReport) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "%s\n", titleCaser.String("detector"))
	fmt.Fprintf(tw, "  Chain\t%s\n", r.Algorithm)
	fmt.Fprintf(tw, "  Sample rate\t%g Hz\n", r.SampleRate)
	fmt.Fprintf(tw, "  Output rate\t%g Hz\n", r.OutputRate)
	fmt.Fprintf(tw, "  Group delay\t%.1f samples (%.2f ms)\n", r.GroupDelay, 1000*r.GroupDelay/r.SampleRate)
	fmt.Fprintf(tw, "  Memory\t%d bytes\n", r.MemoryUsage)
	fmt.Fprintf(tw, "  SIMD\t%s\n", r.SIMD)
	if r.SuggestedLength > 0 {
		fmt.Fprintf(tw, "  Suggested N\t%d taps for %.0f dB\n", r.SuggestedLength, r.TargetAttDB)
	}

	for _, section := range []struct {
		name string
		rep  filterReport
	}{
		{"hilbert filter", r.Hilbert},
		{"smoothing lowpass", r.Smoothing},
	} {
		fmt.Fprintf(tw, "\n%s\n", titleCaser.String(section.name))
		fmt.Fprintf(tw, "  Taps\t%d\n", section.rep.Taps)
		fmt.Fprintf(tw, "  Runs at\t%g Hz\n", section.rep.RateHz)
		fmt.Fprintf(tw, "  Group delay\t%g samples\n", section.rep.GroupDelay)
		fmt.Fprintf(tw, "  Band\t%.1f - %.1f Hz\n", section.rep.BandLowHz, section.rep.BandHighHz)
		fmt.Fprintf(tw, "  Deviation\t%.4f\n", section.rep.Deviation)
		fmt.Fprintf(tw, "  Edge gain\t%.2f dB\n", section.rep.EdgeGainDB)
		if section.rep.KaiserBeta > 0 {
			fmt.Fprintf(tw, "  Kaiser\tβ %.3f (about %.0f dB)\n", section.rep.KaiserBeta, section.rep.KaiserAttDB)
		}
		if r.showCoeffs {
			for i, c := range section.rep.Coefficients {
				fmt.Fprintf(tw, "  h[%d]\t% .10f\n", i, c)
			}
		}
	}

	return tw.Flush()
}
