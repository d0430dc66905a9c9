package types

import (
	"time"

	"github.com/google/uuid"
)

// Post records one publish attempt. Created exactly once per attempt,
// successful or not, and never mutated afterward.
type Post struct {
	ID          uuid.UUID      `json:"id"`
	AssetID     uuid.UUID      `json:"asset_id"`
	Platform    Platform       `json:"platform"`
	ExternalID  string         `json:"external_id,omitempty"`
	PublishedAt time.Time      `json:"published_at"`
	PublishMode PublishMode    `json:"publish_mode"`
	Success     bool           `json:"success"`
	Response    map[string]any `json:"response,omitempty"`
}

// MetricSnapshot is one immutable engagement reading for a post.
type MetricSnapshot struct {
	ID          uuid.UUID `json:"id"`
	PostID      uuid.UUID `json:"post_id"`
	Impressions int       `json:"impressions"`
	Reach       int       `json:"reach"`
	Engagement  int       `json:"engagement"`
	Saves       int       `json:"saves"`
	Shares      int       `json:"shares"`
	Clicks      int       `json:"clicks"`
	Comments    int       `json:"comments"`
	Likes       int       `json:"likes"`
	Views       int       `json:"views"`
	WatchTime   *float64  `json:"watch_time,omitempty"`
	SnapshotAt  time.Time `json:"snapshot_at"`
}

// WinningPattern is a mined cross-post pattern, upserted per
// (platform, pattern type) so mining always reflects the latest run.
type WinningPattern struct {
	Platform    Platform  `json:"platform"`
	PatternType string    `json:"pattern_type"`
	Findings    []string  `json:"findings"`
	Confidence  float64   `json:"confidence"`
	SampleSize  int       `json:"sample_size"`
	MinedAt     time.Time `json:"mined_at"`
}
