// Package retention deletes raw messages once they outlive their
// usefulness. Raw blobs only exist to feed ingestion; after the
// configured window they are removed to stop the bucket growing
// without bound.
package retention

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/inkwell-mail/inkwell/pkg/metrics"
)

// sweepInterval is how often the sweep runs.
const sweepInterval = 24 * time.Hour

// Store is the blob contract the sweeper needs.
type Store interface {
	ListOlderThan(ctx context.Context, bucket string, cutoff time.Time) ([]string, error)
	Delete(ctx context.Context, bucket, key string) error
}

type Sweeper struct {
	store     Store
	bucket    string
	retention time.Duration
	logger    *zap.Logger
}

// New builds a sweeper keeping raw messages for retentionDays.
func New(store Store, bucket string, retentionDays int, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		store:     store,
		bucket:    bucket,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		logger:    logger,
	}
}

// Run sweeps once immediately and then daily until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		if n, err := s.Sweep(ctx); err != nil {
			s.logger.Error("retention sweep failed", zap.Error(err))
		} else if n > 0 {
			s.logger.Info("retention sweep complete", zap.Int("deleted", n))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Sweep deletes raw messages older than the retention window and
// returns how many were removed. Individual delete failures are logged
// and skipped; the next sweep picks them up again.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-s.retention)
	keys, err := s.store.ListOlderThan(ctx, s.bucket, cutoff)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, key := range keys {
		if err := s.store.Delete(ctx, s.bucket, key); err != nil {
			s.logger.Warn("retention delete failed", zap.String("key", key), zap.Error(err))
			continue
		}
		metrics.RetentionDeletesTotal.Inc()
		deleted++
	}
	return deleted, nil
}
