// Package insights runs the lower-priority feedback jobs: metrics sync
// appends immutable engagement snapshots for published posts, and
// pattern mining distills what the top performers have in common.
package insights

import (
	"context"
	"hash/fnv"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/viral-factory/internal/types"
)

// Metrics is one engagement reading from a platform.
type Metrics struct {
	Impressions int
	Reach       int
	Engagement  int
	Saves       int
	Shares      int
	Clicks      int
	Comments    int
	Likes       int
	Views       int
	WatchTime   *float64
}

// MetricsFetcher retrieves current metrics for an externally published
// post.
type MetricsFetcher interface {
	FetchMetrics(ctx context.Context, platform types.Platform, externalID string) (*Metrics, error)
}

// MockFetcher produces deterministic pseudo-metrics from the external
// id, so mock-mode runs get stable, varied numbers.
type MockFetcher struct{}

// FetchMetrics derives metrics from a hash of the external id.
func (MockFetcher) FetchMetrics(ctx context.Context, platform types.Platform, externalID string) (*Metrics, error) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(externalID))
	seed := h.Sum32()

	impressions := int(seed%9000) + 1000
	engagement := impressions / (int(seed%7) + 10)
	watch := float64(seed%45) + 5
	return &Metrics{
		Impressions: impressions,
		Reach:       impressions * 8 / 10,
		Engagement:  engagement,
		Saves:       engagement / 4,
		Shares:      engagement / 6,
		Clicks:      engagement / 3,
		Comments:    engagement / 8,
		Likes:       engagement * 2 / 3,
		Views:       impressions * 9 / 10,
		WatchTime:   &watch,
	}, nil
}

// snapshotFrom copies a reading into an immutable snapshot record.
func snapshotFrom(postID uuid.UUID, m *Metrics, at time.Time) *types.MetricSnapshot {
	return &types.MetricSnapshot{
		ID:          uuid.New(),
		PostID:      postID,
		Impressions: m.Impressions,
		Reach:       m.Reach,
		Engagement:  m.Engagement,
		Saves:       m.Saves,
		Shares:      m.Shares,
		Clicks:      m.Clicks,
		Comments:    m.Comments,
		Likes:       m.Likes,
		Views:       m.Views,
		WatchTime:   m.WatchTime,
		SnapshotAt:  at,
	}
}
