package insights

import (
	"context"
	"log"
	"time"

	"github.com/jonathan/viral-factory/internal/queue"
	"github.com/jonathan/viral-factory/internal/store"
)

// Sync window and cap for one metrics pass.
const (
	syncWindow   = 30 * 24 * time.Hour
	syncPostCap  = 100
	miningWindow = 30 * 24 * time.Hour
	miningCap    = 500
)

// Stage wires the feedback handlers to their collaborators.
type Stage struct {
	store   store.Store
	fetcher MetricsFetcher
	logger  *log.Logger
	now     func() time.Time
}

// NewStage builds the insights stage.
func NewStage(st store.Store, fetcher MetricsFetcher, logger *log.Logger) *Stage {
	return &Stage{store: st, fetcher: fetcher, logger: logger, now: time.Now}
}

// HandleMetricsSync fetches current metrics for recent successful posts
// and appends one snapshot per post. A failed fetch skips that post and
// leaves the rest of the sweep running.
func (s *Stage) HandleMetricsSync(ctx context.Context, job queue.Job) error {
	now := s.now()
	posts, err := s.store.ListRecentPosts(ctx, now.Add(-syncWindow), syncPostCap)
	if err != nil {
		return err
	}

	synced, failed := 0, 0
	for _, post := range posts {
		if post.ExternalID == "" {
			continue
		}
		metrics, err := s.fetcher.FetchMetrics(ctx, post.Platform, post.ExternalID)
		if err != nil {
			failed++
			s.logger.Printf("[Insights] metrics fetch failed for post %s: %v", post.ID, err)
			continue
		}
		if err := s.store.CreateMetricSnapshot(ctx, snapshotFrom(post.ID, metrics, now)); err != nil {
			return err
		}
		synced++
	}

	s.logger.Printf("[Insights] metrics sync: %d snapshots, %d fetch failures", synced, failed)
	return nil
}
