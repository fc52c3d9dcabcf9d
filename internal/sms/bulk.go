package sms

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/agribuddy/notify-engine/internal/domain"
	"go.uber.org/zap"
)

const (
	defaultBatchSize  = 10
	defaultBatchDelay = time.Second
)

// BulkOptions carries bulk-send parameters on top of the per-send ones.
type BulkOptions struct {
	Options
	BatchSize int
	Delay     time.Duration
}

// SendBulk partitions destinations into chunks, dispatches each chunk
// concurrently, and pauses between chunks as back-pressure against
// carrier rate limits. Per-destination failures become failed entries in
// the returned BatchResult; partial failure is the default outcome, not
// an exception path. Results keep the input destination ordering.
func (d *Dispatcher) SendBulk(ctx context.Context, destinations []string, message string, opts BulkOptions) (*domain.BatchResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(destinations) == 0 {
		return nil, fmt.Errorf("%w: destinations are required", domain.ErrValidation)
	}

	batchSize := opts.BatchSize
	if batchSize < 1 {
		batchSize = defaultBatchSize
	}
	delay := opts.Delay
	if delay <= 0 {
		delay = defaultBatchDelay
	}

	log := d.logger
	log.Info("bulk sms started",
		zap.Int("recipients", len(destinations)),
		zap.Int("batchSize", batchSize),
	)

	results := make([]domain.DispatchResult, len(destinations))

	for start := 0; start < len(destinations); start += batchSize {
		end := start + batchSize
		if end > len(destinations) {
			end = len(destinations)
		}

		if canceled := ctx.Err(); canceled != nil {
			for i := start; i < len(destinations); i++ {
				results[i] = domain.FailureResult(destinations[i], canceled)
			}
			break
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			i := i
			wg.Add(1)
			go func() {
				defer wg.Done()

				result, err := d.Send(ctx, destinations[i], message, opts.Options)
				if err != nil {
					results[i] = domain.FailureResult(destinations[i], err)
					return
				}
				results[i] = *result
			}()
		}
		wg.Wait()

		if end < len(destinations) {
			if err := sleepWithContext(ctx, delay); err != nil {
				for i := end; i < len(destinations); i++ {
					results[i] = domain.FailureResult(destinations[i], err)
				}
				break
			}
		}
	}

	batch := domain.BuildBatchResult(results)
	log.Info("bulk sms completed",
		zap.Int("total", batch.Total),
		zap.Int("successful", batch.Successful),
		zap.Int("failed", batch.Failed),
	)
	return batch, nil
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
