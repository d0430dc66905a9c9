package insights

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/viral-factory/internal/queue"
	"github.com/jonathan/viral-factory/internal/store"
	"github.com/jonathan/viral-factory/internal/types"
)

type fakeFetcher struct {
	calls   []string
	failFor map[string]bool
	metrics Metrics
}

func (f *fakeFetcher) FetchMetrics(ctx context.Context, platform types.Platform, externalID string) (*Metrics, error) {
	f.calls = append(f.calls, externalID)
	if f.failFor[externalID] {
		return nil, errors.New("provider unavailable")
	}
	m := f.metrics
	return &m, nil
}

type insightsFixture struct {
	stage   *Stage
	store   *store.Memory
	fetcher *fakeFetcher
	batchID uuid.UUID
}

func newInsightsFixture(t *testing.T) *insightsFixture {
	t.Helper()
	st := store.NewMemory()
	ctx := context.Background()

	brand := types.Brand{ID: uuid.New(), Name: "Calm Founders"}
	offer := types.Offer{ID: uuid.New(), Name: "Focus Playbook"}
	st.SeedBrand(brand)
	st.SeedOffer(offer)

	batch := &types.Batch{
		ID:        uuid.New(),
		Brief:     "planning routines",
		Platforms: []types.Platform{types.PlatformTikTok},
		BrandID:   brand.ID,
		OfferID:   offer.ID,
		Status:    types.BatchGenerating,
	}
	require.NoError(t, st.CreateBatch(ctx, batch))

	fetcher := &fakeFetcher{
		failFor: map[string]bool{},
		metrics: Metrics{Impressions: 1000, Engagement: 100, Saves: 10, Shares: 5, Clicks: 20},
	}
	return &insightsFixture{
		stage:   NewStage(st, fetcher, log.New(io.Discard, "", 0)),
		store:   st,
		fetcher: fetcher,
		batchID: batch.ID,
	}
}

// publishPost creates an asset with the given hook plus one successful
// post, and optionally a snapshot with the given engagement weight.
func (fx *insightsFixture) publishPost(t *testing.T, platform types.Platform, hook string, engagement int, withSnapshot bool) (*types.Asset, *types.Post) {
	t.Helper()
	ctx := context.Background()

	asset := &types.Asset{
		ID:        uuid.New(),
		BatchID:   fx.batchID,
		Platform:  platform,
		AssetType: types.AssetTypeTikTokScript,
		Payload: types.Payload{TikTok: &types.TikTokScript{
			Platform:    platform,
			ScriptLong:  types.VideoScript{Hook: hook, CTA: "Comment FOCUS"},
			HookOptions: []string{hook},
			Caption:     "caption",
		}},
		Status:  types.AssetPublished,
		Version: 1,
	}
	require.NoError(t, fx.store.CreateAsset(ctx, asset))

	post := &types.Post{
		ID:          uuid.New(),
		AssetID:     asset.ID,
		Platform:    platform,
		ExternalID:  fmt.Sprintf("ext_%s", asset.ID),
		PublishedAt: time.Now().Add(-time.Hour),
		PublishMode: types.PublishMock,
		Success:     true,
	}
	require.NoError(t, fx.store.CreatePost(ctx, post))

	if withSnapshot {
		require.NoError(t, fx.store.CreateMetricSnapshot(ctx, &types.MetricSnapshot{
			ID:         uuid.New(),
			PostID:     post.ID,
			Engagement: engagement,
			SnapshotAt: time.Now(),
		}))
	}
	return asset, post
}

func syncJob(t *testing.T) queue.Job {
	t.Helper()
	return queue.Job{ID: uuid.New(), Type: queue.JobMetricsSync, Payload: []byte("{}"), Attempt: 1}
}

func miningJob(t *testing.T) queue.Job {
	t.Helper()
	return queue.Job{ID: uuid.New(), Type: queue.JobPatternMining, Payload: []byte("{}"), Attempt: 1}
}

func TestMetricsSyncAppendsSnapshots(t *testing.T) {
	fx := newInsightsFixture(t)
	_, first := fx.publishPost(t, types.PlatformTikTok, "5 planning mistakes", 0, false)
	_, second := fx.publishPost(t, types.PlatformTikTok, "How do you plan?", 0, false)

	err := fx.stage.HandleMetricsSync(context.Background(), syncJob(t))
	require.NoError(t, err)
	assert.Len(t, fx.fetcher.calls, 2)

	for _, post := range []*types.Post{first, second} {
		snap, err := fx.store.LatestMetricSnapshot(context.Background(), post.ID)
		require.NoError(t, err)
		assert.Equal(t, 100, snap.Engagement)
	}
}

func TestMetricsSyncSnapshotsAreAppendOnly(t *testing.T) {
	fx := newInsightsFixture(t)
	_, post := fx.publishPost(t, types.PlatformTikTok, "hook", 40, true)

	err := fx.stage.HandleMetricsSync(context.Background(), syncJob(t))
	require.NoError(t, err)

	// The pre-seeded snapshot is older; the new one becomes latest.
	snap, err := fx.store.LatestMetricSnapshot(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, snap.Engagement)
}

func TestMetricsSyncFetchFailureSkipsPost(t *testing.T) {
	fx := newInsightsFixture(t)
	_, ok := fx.publishPost(t, types.PlatformTikTok, "hook one", 0, false)
	_, bad := fx.publishPost(t, types.PlatformTikTok, "hook two", 0, false)
	fx.fetcher.failFor[bad.ExternalID] = true

	err := fx.stage.HandleMetricsSync(context.Background(), syncJob(t))
	require.NoError(t, err)

	_, err = fx.store.LatestMetricSnapshot(context.Background(), ok.ID)
	require.NoError(t, err)
	_, err = fx.store.LatestMetricSnapshot(context.Background(), bad.ID)
	require.Error(t, err)
}

func TestMockFetcherIsDeterministic(t *testing.T) {
	f := MockFetcher{}
	a, err := f.FetchMetrics(context.Background(), types.PlatformTikTok, "ext_1")
	require.NoError(t, err)
	b, err := f.FetchMetrics(context.Background(), types.PlatformTikTok, "ext_1")
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Greater(t, a.Impressions, 0)
}

func TestPatternMiningRecordsPrevalentHookStyles(t *testing.T) {
	fx := newInsightsFixture(t)
	ctx := context.Background()

	// Top quintile of ten posts is two; both lead with numbers.
	fx.publishPost(t, types.PlatformTikTok, "5 planning traps to dodge", 1000, true)
	fx.publishPost(t, types.PlatformTikTok, "3 rules for calm mornings", 900, true)
	for i := 0; i < 8; i++ {
		fx.publishPost(t, types.PlatformTikTok, "a plain hook about planning", 10+i, true)
	}

	err := fx.stage.HandlePatternMining(ctx, miningJob(t))
	require.NoError(t, err)

	patterns, err := fx.store.ListWinningPatterns(ctx, types.PlatformTikTok)
	require.NoError(t, err)
	require.NotEmpty(t, patterns)

	var numberPattern *types.WinningPattern
	for i := range patterns {
		if patterns[i].PatternType == "number_hooks" {
			numberPattern = &patterns[i]
		}
	}
	require.NotNil(t, numberPattern, "expected a number_hooks pattern")
	assert.InDelta(t, 1.0, numberPattern.Confidence, 0.001)
	assert.Equal(t, 10, numberPattern.SampleSize)
	require.Len(t, numberPattern.Findings, 1)
	assert.Contains(t, numberPattern.Findings[0], "number-led hooks")
}

func TestPatternMiningSkipsSmallSamples(t *testing.T) {
	fx := newInsightsFixture(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		fx.publishPost(t, types.PlatformLinkedIn, "5 hooks", 100, true)
	}

	err := fx.stage.HandlePatternMining(ctx, miningJob(t))
	require.NoError(t, err)

	patterns, err := fx.store.ListWinningPatterns(ctx, types.PlatformLinkedIn)
	require.NoError(t, err)
	assert.Empty(t, patterns)
}

func TestPatternMiningIsIdempotent(t *testing.T) {
	fx := newInsightsFixture(t)
	ctx := context.Background()
	fx.publishPost(t, types.PlatformTikTok, "5 planning traps to dodge", 1000, true)
	fx.publishPost(t, types.PlatformTikTok, "3 rules for calm mornings", 900, true)
	for i := 0; i < 8; i++ {
		fx.publishPost(t, types.PlatformTikTok, "a plain hook about planning", 10+i, true)
	}

	require.NoError(t, fx.stage.HandlePatternMining(ctx, miningJob(t)))
	first, err := fx.store.ListWinningPatterns(ctx, types.PlatformTikTok)
	require.NoError(t, err)

	require.NoError(t, fx.stage.HandlePatternMining(ctx, miningJob(t)))
	second, err := fx.store.ListWinningPatterns(ctx, types.PlatformTikTok)
	require.NoError(t, err)
	assert.Equal(t, len(first), len(second))
}

func TestPatternMiningTagsWinningVariant(t *testing.T) {
	fx := newInsightsFixture(t)
	ctx := context.Background()

	topAsset, _ := fx.publishPost(t, types.PlatformTikTok, "5 planning traps to dodge", 1000, true)
	for i := 0; i < 9; i++ {
		fx.publishPost(t, types.PlatformTikTok, "a plain hook about planning", 10+i, true)
	}

	low := &types.Variant{ID: uuid.New(), AssetID: topAsset.ID, VariantKey: "hook_a", VariantPayload: map[string]any{"hook": "weak"}}
	high := &types.Variant{ID: uuid.New(), AssetID: topAsset.ID, VariantKey: "hook_b", VariantPayload: map[string]any{"hook": "strong"}}
	require.NoError(t, fx.store.CreateVariant(ctx, low))
	require.NoError(t, fx.store.CreateVariant(ctx, high))
	require.NoError(t, fx.store.SetVariantScore(ctx, low.ID, &types.Scorecard{Overall: 40}))
	require.NoError(t, fx.store.SetVariantScore(ctx, high.ID, &types.Scorecard{Overall: 80}))

	require.NoError(t, fx.stage.HandlePatternMining(ctx, miningJob(t)))

	variants, err := fx.store.ListVariantsByAsset(ctx, topAsset.ID)
	require.NoError(t, err)
	for _, v := range variants {
		if v.ID == high.ID {
			assert.True(t, v.IsWinner)
		} else {
			assert.False(t, v.IsWinner)
		}
	}
}
