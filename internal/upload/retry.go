package upload

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/voxhull/collider-uploader/internal/logger"
	"github.com/voxhull/collider-uploader/pkg/geom"
)

// Retrier wraps a Sink with per-body retry and exponential backoff. A
// body's failure does not stop later bodies; the caller sees only the
// final error after all attempts are spent.
type Retrier struct {
	Sink    Sink
	Retries int           // attempts beyond the first
	Delay   time.Duration // base backoff, doubled per retry
}

// Upload implements Sink.
func (r *Retrier) Upload(ctx context.Context, body geom.NamedBody) error {
	delay := r.Delay
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}

	var err error
	for attempt := 0; attempt <= r.Retries; attempt++ {
		if attempt > 0 {
			logger.L().Warn("retrying upload",
				zap.String("name", body.Name),
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", delay),
				zap.Error(err),
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		if err = r.Sink.Upload(ctx, body); err == nil {
			return nil
		}
	}
	return err
}

// Close implements Sink.
func (r *Retrier) Close() error {
	return r.Sink.Close()
}
