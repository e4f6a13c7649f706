package jobs

import (
	"context"
	"time"

	"github.com/labstack/gommon/log"
)

const cleanupInterval = 5 * time.Minute

// StaleConnectionRemover is implemented by service.WebSocketService.
type StaleConnectionRemover interface {
	CleanupStale(ctx context.Context) int
}

type ConnectionCleaner struct {
	remover  StaleConnectionRemover
	interval time.Duration
}

func NewConnectionCleaner(remover StaleConnectionRemover) *ConnectionCleaner {
	return &ConnectionCleaner{remover: remover, interval: cleanupInterval}
}

// Start blocks until ctx is cancelled.
func (c *ConnectionCleaner) Start(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	log.Info("Connection cleaner cron started")

	for {
		select {
		case <-ctx.Done():
			log.Info("Stopping connection cleaner...")
			return
		case <-ticker.C:
			c.cleanup(ctx)
		}
	}
}

func (c *ConnectionCleaner) cleanup(ctx context.Context) {
	if dropped := c.remover.CleanupStale(ctx); dropped > 0 {
		log.Infof("Cleaner: dropped %d stale connections", dropped)
	}
}
