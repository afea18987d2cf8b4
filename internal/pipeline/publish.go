package pipeline

import (
	"context"
	"log/slog"

	"github.com/GeorgJohn/TimeseriesWeatherDataEstimation/internal/domain"
	"github.com/cenkalti/backoff/v4"
)

// publish writes the balanced dataset to the sink in batches, retrying each
// batch with exponential backoff. It returns the number of samples written.
func (p *Pipeline) publish(ctx context.Context, logger *slog.Logger, runID string, ds *domain.Dataset) (int, error) {
	size := max(1, p.opts.PublishBatchSize)
	published := 0
	batch := make([]domain.DaySample, 0, size)

	for i := 0; i < ds.Len(); i += size {
		batch = batch[:0]
		for j := i; j < min(i+size, ds.Len()); j++ {
			batch = append(batch, ds.Sample(j))
		}
		if err := p.loadWithRetry(ctx, logger, runID, batch); err != nil {
			return published, err
		}
		published += len(batch)
		p.metrics.SamplesPublished.Add(float64(len(batch)))
	}
	logger.Info("balanced samples published", "count", published)
	return published, nil
}

func (p *Pipeline) loadWithRetry(ctx context.Context, logger *slog.Logger, runID string, batch []domain.DaySample) error {
	operation := func() error {
		err := p.sink.LoadBatch(ctx, runID, batch)
		if err != nil {
			p.metrics.PublishErrors.Inc()
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			logger.Warn("publish batch failed", "error", err, "batch_size", len(batch))
		}
		return err
	}

	bo := backoff.NewExponentialBackOff()
	if p.opts.RetryInitialInterval > 0 {
		bo.InitialInterval = p.opts.RetryInitialInterval
	}
	if p.opts.RetryMaxElapsed > 0 {
		bo.MaxElapsedTime = p.opts.RetryMaxElapsed
	}
	return backoff.Retry(operation, backoff.WithContext(bo, ctx))
}
