// Package envelope provides a streaming digital envelope detector in pure Go.
//
// The detector recovers the slowly varying amplitude of a real signal, such
// as the modulation of an AM carrier. It forms the analytic signal with a
// Hilbert quadrature FIR filter and a matched delay line, takes its
// magnitude, keeps every K-th magnitude sample and smooths the result with a
// windowed-sinc lowpass FIR designed for the decimated rate.
//
// # Features
//
//   - Even-length antisymmetric Hilbert filters, least-squares or windowed design
//   - Delay line matched exactly to the Hilbert group delay of N/2 samples
//   - fir1-style lowpass with Hamming, Hann, Blackman, Bartlett, rectangular or Kaiser windows
//   - SIMD acceleration via github.com/tphakala/simd, FFT convolution for long smoothers
//   - Per-sample, block, float32, multi-channel and streaming APIs
//
// # Quick Start
//
// For one-shot detection with the defaults:
//
//	env, err := envelope.Detect(samples, 8000)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// For streaming detection sample by sample:
//
//	cfg := envelope.DefaultConfig(8000)
//	cfg.Smoothing.CutoffHz = 50
//	d, err := envelope.New(&cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, x := range samples {
//	    y, ok, err := d.Process(x)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if ok {
//	        emit(y)
//	    }
//	}
//
// # Architecture
//
//	Input -> [Hilbert FIR  ] -> im -+
//	      -> [Delay N/2    ] -> re -+-> |re + j·im| -> [keep 1 of K] -> [Lowpass @ Fs/K] -> Output
//
// Output j represents input sample Phase + j·K − N/2 − K·order/2; see
// [EnvelopeAlignment]. Decimation picks samples without band limiting, so
// envelope content above Fs/(2K) aliases. The lowpass only shapes what
// survives the decimation.
//
// # Lifecycle
//
// A [Detector] is Configured after [New], Running after its first sample
// and Stopped after [Detector.Stop] or when a [Detector.Stream] source
// closes. Stopped detectors return [ErrStopped]; [Detector.Reset] returns
// to Configured with cleared filters.
//
// # Thread Safety
//
// Processing methods on one Detector are serialized internally, and
// [Detector.ProcessMulti] may run channels concurrently when
// EnableParallel is set. Different Detectors share nothing.
package envelope
