package envelope

import (
	"fmt"
	"testing"
)

// BenchmarkProcessMulti compares sequential and parallel channel processing.
func BenchmarkProcessMulti(b *testing.B) {
	for _, channels := range []int{1, 2, 8} {
		for _, parallel := range []bool{false, true} {
			name := fmt.Sprintf("ch=%d/parallel=%v", channels, parallel)
			b.Run(name, func(b *testing.B) {
				cfg := DefaultConfig(RateDAT)
				cfg.Channels = channels
				cfg.EnableParallel = parallel

				d, err := New(&cfg)
				if err != nil {
					b.Fatal(err)
				}

				src := testSignal()
				src.SampleRate = RateDAT
				block := src.Generate(RateDAT / 10)
				input := make([][]float64, channels)
				for ch := range input {
					input[ch] = block
				}

				b.SetBytes(int64(len(block) * channels * bytesPerFloat64))
				b.ReportAllocs()
				for b.Loop() {
					if _, err := d.ProcessMulti(input); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

// BenchmarkProcess measures the per-sample path.
func BenchmarkProcess(b *testing.B) {
	d, err := NewMono(RateDAT)
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	for b.Loop() {
		if _, _, err := d.Process(0.25); err != nil {
			b.Fatal(err)
		}
	}
}
