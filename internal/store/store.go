// Package store provides the entity store the pipeline reads and writes.
// All status changes are conditional on the current state and counter
// updates are compare-and-swap, so concurrent queue redeliveries cannot
// double-apply a transition. The Postgres implementation lives in
// postgres.go; memory.go backs tests.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/viral-factory/internal/types"
)

// Store is the persistence contract shared by every job handler.
type Store interface {
	// Batches.
	CreateBatch(ctx context.Context, batch *types.Batch) error
	GetBatch(ctx context.Context, id uuid.UUID) (*types.Batch, error)
	// UpdateBatchStatus succeeds only when the batch is currently in from.
	UpdateBatchStatus(ctx context.Context, id uuid.UUID, from, to types.BatchStatus) error

	// Assets.
	CreateAsset(ctx context.Context, asset *types.Asset) error
	GetAsset(ctx context.Context, id uuid.UUID) (*types.Asset, error)
	ListAssetsByBatch(ctx context.Context, batchID uuid.UUID) ([]types.Asset, error)
	// UpdateAssetStatus succeeds only when the asset is currently in from.
	UpdateAssetStatus(ctx context.Context, id uuid.UUID, from, to types.AssetStatus) error
	// ReplaceAssetPayload swaps the payload and bumps version, conditional
	// on the current version matching expectedVersion.
	ReplaceAssetPayload(ctx context.Context, id uuid.UUID, payload types.Payload, expectedVersion int) error
	// SetRegenAttempts moves the attempt counter from expected to attempts.
	SetRegenAttempts(ctx context.Context, id uuid.UUID, expected, attempts int) error
	SetAssetScore(ctx context.Context, id uuid.UUID, score *types.AssetScore) error

	// Variants.
	CreateVariant(ctx context.Context, variant *types.Variant) error
	ListVariantsByAsset(ctx context.Context, assetID uuid.UUID) ([]types.Variant, error)
	SetVariantScore(ctx context.Context, id uuid.UUID, score *types.Scorecard) error
	MarkVariantWinner(ctx context.Context, id uuid.UUID) error

	// Schedules.
	CreateSchedule(ctx context.Context, schedule *types.Schedule) error
	GetSchedule(ctx context.Context, id uuid.UUID) (*types.Schedule, error)
	// UpdateScheduleStatus succeeds only when the schedule is currently in
	// from.
	UpdateScheduleStatus(ctx context.Context, id uuid.UUID, from, to types.ScheduleStatus) error
	// ListHeldSchedules returns PENDING schedules whose scheduledAt is at
	// or before cutoff, for the periodic re-evaluation sweep.
	ListHeldSchedules(ctx context.Context, cutoff time.Time) ([]types.Schedule, error)

	// Posts and metrics.
	CreatePost(ctx context.Context, post *types.Post) error
	ListPostsByAsset(ctx context.Context, assetID uuid.UUID) ([]types.Post, error)
	// ListRecentPosts returns successful posts published after since,
	// newest first, capped at limit.
	ListRecentPosts(ctx context.Context, since time.Time, limit int) ([]types.Post, error)
	CreateMetricSnapshot(ctx context.Context, snapshot *types.MetricSnapshot) error
	// LatestMetricSnapshot returns the newest snapshot for a post, or a
	// NotFoundError when none exists.
	LatestMetricSnapshot(ctx context.Context, postID uuid.UUID) (*types.MetricSnapshot, error)

	// Pattern mining.
	UpsertWinningPattern(ctx context.Context, pattern *types.WinningPattern) error
	ListWinningPatterns(ctx context.Context, platform types.Platform) ([]types.WinningPattern, error)

	// Reference data.
	GetBrand(ctx context.Context, id uuid.UUID) (*types.Brand, error)
	GetOffer(ctx context.Context, id uuid.UUID) (*types.Offer, error)
	ListActiveTrendCards(ctx context.Context, platform types.Platform, now time.Time) ([]types.TrendCard, error)
}
