package insights

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"

	"github.com/jonathan/viral-factory/internal/queue"
)

// Sweeper re-evaluates held schedules; satisfied by the scheduling stage.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// Cron schedules, overridable before StartCron for tests or tuning.
var (
	MetricsSyncSpec   = "@every 1h"
	PatternMiningSpec = "@every 6h"
	ScheduleSweepSpec = "@every 10m"
)

// StartCron arms the periodic feedback jobs: metrics sync, pattern
// mining and the held-schedule sweep. The returned cron is already
// running; stop it on shutdown.
func StartCron(q queue.Queue, sweeper Sweeper, logger *log.Logger) (*cron.Cron, error) {
	c := cron.New()

	if _, err := c.AddFunc(MetricsSyncSpec, func() {
		if _, err := q.Enqueue(context.Background(), queue.JobMetricsSync, queue.MetricsSyncPayload{}, queue.Options{Priority: 10}); err != nil {
			logger.Printf("[Insights] failed to enqueue metrics sync: %v", err)
		}
	}); err != nil {
		return nil, err
	}

	if _, err := c.AddFunc(PatternMiningSpec, func() {
		if _, err := q.Enqueue(context.Background(), queue.JobPatternMining, queue.PatternMiningPayload{}, queue.Options{Priority: 10}); err != nil {
			logger.Printf("[Insights] failed to enqueue pattern mining: %v", err)
		}
	}); err != nil {
		return nil, err
	}

	if _, err := c.AddFunc(ScheduleSweepSpec, func() {
		count, err := sweeper.Sweep(context.Background())
		if err != nil {
			logger.Printf("[Insights] held-schedule sweep failed: %v", err)
			return
		}
		if count > 0 {
			logger.Printf("[Insights] held-schedule sweep re-enqueued %d schedules", count)
		}
	}); err != nil {
		return nil, err
	}

	c.Start()
	return c, nil
}
