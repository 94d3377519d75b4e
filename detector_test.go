package envelope

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateTransitions(t *testing.T) {
	d, err := NewMono(testRate)
	require.NoError(t, err)
	assert.Equal(t, StateConfigured, d.State())

	_, _, err = d.Process(0.5)
	require.NoError(t, err)
	assert.Equal(t, StateRunning, d.State())

	d.Stop()
	assert.Equal(t, StateStopped, d.State())

	_, _, err = d.Process(0.5)
	assert.ErrorIs(t, err, ErrStopped)
	_, err = d.ProcessBlock([]float64{1, 2, 3})
	assert.ErrorIs(t, err, ErrStopped)
	_, err = d.ProcessFloat32([]float32{1})
	assert.ErrorIs(t, err, ErrStopped)
	_, err = d.ProcessMulti([][]float64{{1}})
	assert.ErrorIs(t, err, ErrStopped)
	_, err = d.ProcessWithDiagnostics([]float64{1})
	assert.ErrorIs(t, err, ErrStopped)

	d.Reset()
	assert.Equal(t, StateConfigured, d.State())
	_, err = d.ProcessBlock([]float64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, StateRunning, d.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "configured", StateConfigured.String())
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "stopped", StateStopped.String())
	assert.Equal(t, "State(7)", State(7).String())
}

func TestReset_ClearsFilterState(t *testing.T) {
	input := testSignal().Generate(3000)

	d, err := NewMono(testRate)
	require.NoError(t, err)

	first, err := d.ProcessBlock(input)
	require.NoError(t, err)
	d.Reset()
	second, err := d.ProcessBlock(input)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestStop_DiscardsPartialState(t *testing.T) {
	input := testSignal().Generate(2000)

	fresh, err := Detect(input, testRate)
	require.NoError(t, err)

	d, err := NewMono(testRate)
	require.NoError(t, err)
	// Leave the decimation counter mid-group.
	_, err = d.ProcessBlock(input[:13])
	require.NoError(t, err)
	d.Stop()
	d.Reset()

	got, err := d.ProcessBlock(input)
	require.NoError(t, err)
	assert.Equal(t, fresh, got)
}

func TestUnconfiguredDetector(t *testing.T) {
	var nilDetector *Detector
	_, _, err := nilDetector.Process(1)
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = nilDetector.ProcessBlock([]float64{1})
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Zero(t, nilDetector.GetLatency())
	assert.Zero(t, nilDetector.OutputRate())
	nilDetector.Stop()
	nilDetector.Reset()

	zero := &Detector{}
	_, _, err = zero.Process(1)
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = zero.ProcessMulti(nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
	err = zero.Stream(context.Background(), nil, nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Equal(t, "unconfigured", zero.GetInfo().Algorithm)
	assert.Nil(t, zero.HilbertCoefficients())
}

func TestProcessMulti_ChannelMismatch(t *testing.T) {
	d, err := NewStereo(testRate)
	require.NoError(t, err)

	_, err = d.ProcessMulti([][]float64{{1, 2}})
	assert.ErrorIs(t, err, ErrChannelMismatch)
}

func TestProcessMulti_ChannelsAreIndependent(t *testing.T) {
	cfg := DefaultConfig(testRate)
	cfg.Channels = 3

	left := testSignal().Generate(4000)
	quiet := make([]float64, 4000)

	d, err := New(&cfg)
	require.NoError(t, err)
	out, err := d.ProcessMulti([][]float64{left, quiet, left})
	require.NoError(t, err)
	require.Len(t, out, 3)

	mono, err := Detect(left, testRate)
	require.NoError(t, err)
	assert.Equal(t, mono, out[0])
	assert.Equal(t, mono, out[2])
	for _, y := range out[1] {
		assert.Zero(t, y)
	}
}

func collectStream(t *testing.T, d *Detector, blocks [][]float64) []float64 {
	t.Helper()
	src := make(chan []float64)
	go func() {
		defer close(src)
		for _, b := range blocks {
			src <- b
		}
	}()

	var got []float64
	err := d.Stream(context.Background(), src, func(out []float64) error {
		got = append(got, out...)
		return nil
	})
	require.NoError(t, err)
	return got
}

func TestStream_MatchesProcessBlock(t *testing.T) {
	input := testSignal().Generate(10000)
	var blocks [][]float64
	for start := 0; start < len(input); start += 777 {
		blocks = append(blocks, input[start:min(start+777, len(input))])
	}

	want, err := Detect(input, testRate)
	require.NoError(t, err)

	d, err := NewMono(testRate)
	require.NoError(t, err)
	got := collectStream(t, d, blocks)

	assert.InDeltaSlice(t, want, got, blockTolerance)
	assert.Equal(t, StateStopped, d.State())

	err = d.Stream(context.Background(), make(chan []float64), func([]float64) error { return nil })
	assert.ErrorIs(t, err, ErrStopped)
}

func TestStream_Cancellation(t *testing.T) {
	d, err := NewMono(testRate)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	src := make(chan []float64) // never closed

	done := make(chan error, 1)
	go func() {
		done <- d.Stream(ctx, src, func([]float64) error { return nil })
	}()

	src <- make([]float64, 64)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Stream did not return after cancellation")
	}
}

func TestStream_SinkError(t *testing.T) {
	d, err := NewMono(testRate)
	require.NoError(t, err)

	sinkErr := errors.New("disk full")
	src := make(chan []float64, 4)
	src <- make([]float64, 800)

	err = d.Stream(context.Background(), src, func([]float64) error { return sinkErr })
	assert.ErrorIs(t, err, sinkErr)
}

func TestStream_Backpressure(t *testing.T) {
	cfg := DefaultConfig(testRate)
	cfg.QueueDepth = 1
	d, err := New(&cfg)
	require.NoError(t, err)

	release := make(chan struct{})
	src := make(chan []float64)
	var accepted atomic.Int32

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		for range 20 {
			select {
			case src <- make([]float64, 64):
				accepted.Add(1)
			case <-ctx.Done():
				return
			}
		}
		close(src)
	}()

	done := make(chan error, 1)
	go func() {
		done <- d.Stream(ctx, src, func([]float64) error {
			<-release
			return nil
		})
	}()

	time.Sleep(100 * time.Millisecond)
	// One block in the sink, one queued, one waiting to be queued.
	assert.LessOrEqual(t, accepted.Load(), int32(cfg.QueueDepth+2))

	close(release)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Stream did not finish")
	}
	assert.Equal(t, int32(20), accepted.Load())
}
