package archive

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/paulexconde/npsdash/internal/pkg/workerpool"
	"go.uber.org/zap"
)

// Archiver copies exports to a Sink in the background.
type Archiver struct {
	sink    Sink
	pool    *workerpool.WorkerPool
	retries int
	delay   time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

func NewArchiver(sink Sink, pool *workerpool.WorkerPool, retries int, delay time.Duration, logger *zap.Logger) *Archiver {
	return &Archiver{
		sink:    sink,
		pool:    pool,
		retries: retries,
		delay:   delay,
		logger:  logger,
		now:     time.Now,
	}
}

// Key places an export under its UTC day with a unique prefix so repeated
// exports of the same project never overwrite each other.
func Key(fileName string, at time.Time, id uuid.UUID) string {
	return at.UTC().Format("2006/01/02/") + id.String() + "-" + fileName
}

// Archive queues body for upload. A nil Archiver does nothing, which is the
// case when no bucket is configured.
func (a *Archiver) Archive(fileName string, body []byte) (string, bool) {
	if a == nil || a.sink == nil {
		return "", false
	}

	key := Key(fileName, a.now(), uuid.New())
	job := workerpool.WithRetry(a.logger, "export-archive", a.retries, a.delay, func(ctx context.Context) error {
		if err := a.sink.Put(ctx, key, body); err != nil {
			return err
		}
		a.logger.Info("Export archived", zap.String("key", key), zap.Int("bytes", len(body)))
		return nil
	})

	if !a.pool.Submit(job) {
		return "", false
	}
	return key, true
}
