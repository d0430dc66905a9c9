package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/viral-factory/internal/errs"
	"github.com/jonathan/viral-factory/internal/types"
)

func newAsset() *types.Asset {
	now := time.Now()
	return &types.Asset{
		ID:        uuid.New(),
		BatchID:   uuid.New(),
		Platform:  types.PlatformPinterest,
		AssetType: types.AssetTypePin,
		Payload: types.Payload{Pin: &types.PinterestPin{
			Platform:    types.PlatformPinterest,
			Title:       "5 desk setups that fix your posture",
			Description: "Save this for your next office refresh.",
		}},
		Status:    types.AssetDraft,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestMemoryAssetStatusCAS(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	asset := newAsset()
	require.NoError(t, s.CreateAsset(ctx, asset))

	require.NoError(t, s.UpdateAssetStatus(ctx, asset.ID, types.AssetDraft, types.AssetScoring))

	// Second transition from the stale state fails.
	err := s.UpdateAssetStatus(ctx, asset.ID, types.AssetDraft, types.AssetScoring)
	var pf *errs.PreconditionFailed
	require.True(t, errors.As(err, &pf))

	got, err := s.GetAsset(ctx, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, types.AssetScoring, got.Status)
}

func TestMemoryReplacePayloadVersionCAS(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	asset := newAsset()
	require.NoError(t, s.CreateAsset(ctx, asset))

	next := types.Payload{Pin: &types.PinterestPin{
		Platform: types.PlatformPinterest,
		Title:    "Rewritten title",
	}}
	require.NoError(t, s.ReplaceAssetPayload(ctx, asset.ID, next, 1))

	got, err := s.GetAsset(ctx, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Version)
	assert.Equal(t, "Rewritten title", got.Payload.Pin.Title)

	// A redelivered rewrite with the old expected version must not apply.
	err = s.ReplaceAssetPayload(ctx, asset.ID, next, 1)
	var pf *errs.PreconditionFailed
	require.True(t, errors.As(err, &pf))
}

func TestMemoryRegenAttemptsCAS(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	asset := newAsset()
	require.NoError(t, s.CreateAsset(ctx, asset))

	require.NoError(t, s.SetRegenAttempts(ctx, asset.ID, 0, 1))
	err := s.SetRegenAttempts(ctx, asset.ID, 0, 1)
	var pf *errs.PreconditionFailed
	require.True(t, errors.As(err, &pf))

	got, err := s.GetAsset(ctx, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.RegenAttempts)
}

func TestMemoryNotFound(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	var nf *errs.NotFoundError

	_, err := s.GetAsset(ctx, uuid.New())
	assert.True(t, errors.As(err, &nf))
	_, err = s.GetBatch(ctx, uuid.New())
	assert.True(t, errors.As(err, &nf))
	_, err = s.GetSchedule(ctx, uuid.New())
	assert.True(t, errors.As(err, &nf))
	err = s.UpdateAssetStatus(ctx, uuid.New(), types.AssetDraft, types.AssetScoring)
	assert.True(t, errors.As(err, &nf))
}

func TestMemoryGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	asset := newAsset()
	require.NoError(t, s.CreateAsset(ctx, asset))

	got, err := s.GetAsset(ctx, asset.ID)
	require.NoError(t, err)
	got.Status = types.AssetFailed

	again, err := s.GetAsset(ctx, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, types.AssetDraft, again.Status)
}

func TestMemoryHeldSchedules(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	now := time.Now()

	overdue := &types.Schedule{ID: uuid.New(), AssetID: uuid.New(),
		ScheduledAt: now.Add(-time.Hour), Status: types.SchedulePending}
	future := &types.Schedule{ID: uuid.New(), AssetID: uuid.New(),
		ScheduledAt: now.Add(time.Hour), Status: types.SchedulePending}
	done := &types.Schedule{ID: uuid.New(), AssetID: uuid.New(),
		ScheduledAt: now.Add(-time.Hour), Status: types.SchedulePublished}
	for _, sc := range []*types.Schedule{overdue, future, done} {
		require.NoError(t, s.CreateSchedule(ctx, sc))
	}

	held, err := s.ListHeldSchedules(ctx, now)
	require.NoError(t, err)
	require.Len(t, held, 1)
	assert.Equal(t, overdue.ID, held[0].ID)
}

func TestMemoryUpsertWinningPattern(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	first := &types.WinningPattern{
		Platform: types.PlatformInstagram, PatternType: "question_hooks",
		Findings: []string{"60% of winners open with a question"},
		SampleSize: 10, MinedAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, s.UpsertWinningPattern(ctx, first))

	second := &types.WinningPattern{
		Platform: types.PlatformInstagram, PatternType: "question_hooks",
		Findings: []string{"45% of winners open with a question"},
		SampleSize: 24, MinedAt: time.Now(),
	}
	require.NoError(t, s.UpsertWinningPattern(ctx, second))

	patterns, err := s.ListWinningPatterns(ctx, types.PlatformInstagram)
	require.NoError(t, err)
	require.Len(t, patterns, 1)
	assert.Equal(t, 24, patterns[0].SampleSize)
}

func TestMemoryRecentPostsFilterAndCap(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	now := time.Now()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.CreatePost(ctx, &types.Post{
			ID: uuid.New(), AssetID: uuid.New(), Platform: types.PlatformTikTok,
			Success: true, PublishedAt: now.Add(-time.Duration(i) * time.Hour),
		}))
	}
	require.NoError(t, s.CreatePost(ctx, &types.Post{
		ID: uuid.New(), AssetID: uuid.New(), Platform: types.PlatformTikTok,
		Success: false, PublishedAt: now,
	}))
	require.NoError(t, s.CreatePost(ctx, &types.Post{
		ID: uuid.New(), AssetID: uuid.New(), Platform: types.PlatformTikTok,
		Success: true, PublishedAt: now.Add(-40 * 24 * time.Hour),
	}))

	posts, err := s.ListRecentPosts(ctx, now.Add(-30*24*time.Hour), 3)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	for _, p := range posts {
		assert.True(t, p.Success)
	}
	assert.True(t, posts[0].PublishedAt.After(posts[1].PublishedAt))
}
