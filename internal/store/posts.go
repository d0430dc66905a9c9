package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/viral-factory/internal/errs"
	"github.com/jonathan/viral-factory/internal/types"
)

// CreatePost records one publish attempt. Posts are append-only.
func (p *Postgres) CreatePost(ctx context.Context, post *types.Post) error {
	response, err := json.Marshal(post.Response)
	if err != nil {
		return fmt.Errorf("failed to marshal post response: %w", err)
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO posts (id, asset_id, platform, external_id, published_at, publish_mode, success, response)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		post.ID, post.AssetID, post.Platform, post.ExternalID,
		post.PublishedAt, post.PublishMode, post.Success, response,
	)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// ListPostsByAsset returns every publish attempt for an asset, newest
// first.
func (p *Postgres) ListPostsByAsset(ctx context.Context, assetID uuid.UUID) ([]types.Post, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, asset_id, platform, external_id, published_at, publish_mode, success, response
		 FROM posts WHERE asset_id = $1 ORDER BY published_at DESC`, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()
	return scanPosts(rows)
}

// ListRecentPosts returns successful posts published after since, newest
// first, capped at limit.
func (p *Postgres) ListRecentPosts(ctx context.Context, since time.Time, limit int) ([]types.Post, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, asset_id, platform, external_id, published_at, publish_mode, success, response
		 FROM posts WHERE success AND published_at > $1
		 ORDER BY published_at DESC LIMIT $2`, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent posts: %w", err)
	}
	defer rows.Close()
	return scanPosts(rows)
}

func scanPosts(rows pgx.Rows) ([]types.Post, error) {
	var posts []types.Post
	for rows.Next() {
		var post types.Post
		var response []byte
		if err := rows.Scan(&post.ID, &post.AssetID, &post.Platform, &post.ExternalID,
			&post.PublishedAt, &post.PublishMode, &post.Success, &response); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		if len(response) > 0 {
			if err := json.Unmarshal(response, &post.Response); err != nil {
				return nil, fmt.Errorf("failed to unmarshal post response: %w", err)
			}
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// CreateMetricSnapshot appends an immutable engagement reading.
func (p *Postgres) CreateMetricSnapshot(ctx context.Context, snapshot *types.MetricSnapshot) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO metric_snapshots (id, post_id, impressions, reach, engagement, saves, shares, clicks, comments, likes, views, watch_time, snapshot_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		snapshot.ID, snapshot.PostID, snapshot.Impressions, snapshot.Reach,
		snapshot.Engagement, snapshot.Saves, snapshot.Shares, snapshot.Clicks,
		snapshot.Comments, snapshot.Likes, snapshot.Views, snapshot.WatchTime,
		snapshot.SnapshotAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create metric snapshot: %w", err)
	}
	return nil
}

// LatestMetricSnapshot returns the newest snapshot for a post.
func (p *Postgres) LatestMetricSnapshot(ctx context.Context, postID uuid.UUID) (*types.MetricSnapshot, error) {
	var s types.MetricSnapshot
	err := p.pool.QueryRow(ctx,
		`SELECT id, post_id, impressions, reach, engagement, saves, shares, clicks, comments, likes, views, watch_time, snapshot_at
		 FROM metric_snapshots WHERE post_id = $1 ORDER BY snapshot_at DESC LIMIT 1`, postID,
	).Scan(&s.ID, &s.PostID, &s.Impressions, &s.Reach, &s.Engagement, &s.Saves,
		&s.Shares, &s.Clicks, &s.Comments, &s.Likes, &s.Views, &s.WatchTime, &s.SnapshotAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &errs.NotFoundError{Entity: "metric_snapshot", ID: postID.String()}
		}
		return nil, fmt.Errorf("failed to get metric snapshot: %w", err)
	}
	return &s, nil
}

// UpsertWinningPattern inserts or replaces the mined pattern for a
// (platform, pattern type) pair.
func (p *Postgres) UpsertWinningPattern(ctx context.Context, pattern *types.WinningPattern) error {
	findings, err := json.Marshal(pattern.Findings)
	if err != nil {
		return fmt.Errorf("failed to marshal findings: %w", err)
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO winning_patterns (platform, pattern_type, findings, confidence, sample_size, mined_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (platform, pattern_type)
		 DO UPDATE SET findings = $3, confidence = $4, sample_size = $5, mined_at = $6`,
		pattern.Platform, pattern.PatternType, findings,
		pattern.Confidence, pattern.SampleSize, pattern.MinedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert winning pattern: %w", err)
	}
	return nil
}

// ListWinningPatterns returns mined patterns for a platform.
func (p *Postgres) ListWinningPatterns(ctx context.Context, platform types.Platform) ([]types.WinningPattern, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT platform, pattern_type, findings, confidence, sample_size, mined_at
		 FROM winning_patterns WHERE platform = $1 ORDER BY pattern_type`, platform)
	if err != nil {
		return nil, fmt.Errorf("failed to list winning patterns: %w", err)
	}
	defer rows.Close()

	var patterns []types.WinningPattern
	for rows.Next() {
		var wp types.WinningPattern
		var findings []byte
		if err := rows.Scan(&wp.Platform, &wp.PatternType, &findings,
			&wp.Confidence, &wp.SampleSize, &wp.MinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan winning pattern: %w", err)
		}
		if err := json.Unmarshal(findings, &wp.Findings); err != nil {
			return nil, fmt.Errorf("failed to unmarshal findings: %w", err)
		}
		patterns = append(patterns, wp)
	}
	return patterns, rows.Err()
}
