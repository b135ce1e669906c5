package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultCleanupFrequency = time.Hour

type cleaner interface {
	Cleanup(ctx context.Context) error
}

// janitor runs Cleanup on a ticker until stopped
type janitor struct {
	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func startJanitor(c cleaner, freq time.Duration, logger *zap.Logger) *janitor {
	if freq <= 0 {
		freq = defaultCleanupFrequency
	}
	j := &janitor{
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
	go j.run(c, freq, logger)
	return j
}

func (j *janitor) run(c cleaner, freq time.Duration, logger *zap.Logger) {
	defer close(j.done)

	ticker := time.NewTicker(freq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Cleanup(context.Background()); err != nil {
				logger.Error("Failed to clean up cache", zap.Error(err))
			}
		case <-j.stopCh:
			return
		}
	}
}

// stop is idempotent and waits for a running cleanup to finish
func (j *janitor) stop() {
	j.stopOnce.Do(func() {
		close(j.stopCh)
	})
	<-j.done
}
