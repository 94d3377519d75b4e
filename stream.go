package envelope

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Stream runs the detector as a producer/consumer pair. The producer reads
// input blocks from src and processes them on channel 0; the consumer hands
// each non-empty output block to sink. The two are joined by a queue of
// QueueDepth blocks, so a slow sink stalls the producer once the queue is
// full.
//
// Stream returns when src is closed and every output has been delivered,
// when ctx is cancelled, or when processing or sink fails. Closing src moves
// the detector to StateStopped.
func (d *Detector) Stream(ctx context.Context, src <-chan []float64, sink func([]float64) error) error {
	if d == nil || len(d.channels) == 0 {
		return ErrNotConfigured
	}
	if d.State() == StateStopped {
		return ErrStopped
	}

	g, ctx := errgroup.WithContext(ctx)
	queue := make(chan []float64, d.config.QueueDepth)

	g.Go(func() error {
		defer close(queue)
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case block, ok := <-src:
				if !ok {
					d.Stop()
					return nil
				}
				out, err := d.ProcessBlock(block)
				if err != nil {
					return err
				}
				if len(out) == 0 {
					continue
				}
				select {
				case queue <- out:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	})

	g.Go(func() error {
		for out := range queue {
			if err := sink(out); err != nil {
				return err
			}
		}
		return nil
	})

	return g.Wait()
}
