package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/viral-factory/internal/errs"
	"github.com/jonathan/viral-factory/internal/types"
)

// Memory is an in-process Store with the same conditional-update semantics
// as Postgres. Used by tests and local runs without a database.
type Memory struct {
	mu         sync.Mutex
	batches    map[uuid.UUID]*types.Batch
	assets     map[uuid.UUID]*types.Asset
	variants   map[uuid.UUID]*types.Variant
	schedules  map[uuid.UUID]*types.Schedule
	posts      map[uuid.UUID]*types.Post
	snapshots  map[uuid.UUID][]types.MetricSnapshot
	patterns   map[string]*types.WinningPattern
	brands     map[uuid.UUID]*types.Brand
	offers     map[uuid.UUID]*types.Offer
	trendCards []types.TrendCard
}

// NewMemory builds an empty in-process store.
func NewMemory() *Memory {
	return &Memory{
		batches:   make(map[uuid.UUID]*types.Batch),
		assets:    make(map[uuid.UUID]*types.Asset),
		variants:  make(map[uuid.UUID]*types.Variant),
		schedules: make(map[uuid.UUID]*types.Schedule),
		posts:     make(map[uuid.UUID]*types.Post),
		snapshots: make(map[uuid.UUID][]types.MetricSnapshot),
		patterns:  make(map[string]*types.WinningPattern),
		brands:    make(map[uuid.UUID]*types.Brand),
		offers:    make(map[uuid.UUID]*types.Offer),
	}
}

func (m *Memory) CreateBatch(ctx context.Context, batch *types.Batch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *batch
	m.batches[batch.ID] = &cp
	return nil
}

func (m *Memory) GetBatch(ctx context.Context, id uuid.UUID) (*types.Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.batches[id]
	if !ok {
		return nil, &errs.NotFoundError{Entity: "batch", ID: id.String()}
	}
	cp := *b
	return &cp, nil
}

func (m *Memory) UpdateBatchStatus(ctx context.Context, id uuid.UUID, from, to types.BatchStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.batches[id]
	if !ok {
		return &errs.NotFoundError{Entity: "batch", ID: id.String()}
	}
	if b.Status != from {
		return &errs.PreconditionFailed{
			Entity: "batch", From: string(from), To: string(to),
			Reason: fmt.Sprintf("batch is %s", b.Status),
		}
	}
	b.Status = to
	b.UpdatedAt = time.Now()
	return nil
}

func (m *Memory) CreateAsset(ctx context.Context, asset *types.Asset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *asset
	m.assets[asset.ID] = &cp
	return nil
}

func (m *Memory) GetAsset(ctx context.Context, id uuid.UUID) (*types.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.assets[id]
	if !ok {
		return nil, &errs.NotFoundError{Entity: "asset", ID: id.String()}
	}
	cp := *a
	return &cp, nil
}

func (m *Memory) ListAssetsByBatch(ctx context.Context, batchID uuid.UUID) ([]types.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var assets []types.Asset
	for _, a := range m.assets {
		if a.BatchID == batchID {
			assets = append(assets, *a)
		}
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].CreatedAt.Before(assets[j].CreatedAt) })
	return assets, nil
}

func (m *Memory) UpdateAssetStatus(ctx context.Context, id uuid.UUID, from, to types.AssetStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.assets[id]
	if !ok {
		return &errs.NotFoundError{Entity: "asset", ID: id.String()}
	}
	if a.Status != from {
		return &errs.PreconditionFailed{
			Entity: "asset", From: string(from), To: string(to),
			Reason: fmt.Sprintf("status mismatch: asset is %s", a.Status),
		}
	}
	a.Status = to
	a.UpdatedAt = time.Now()
	return nil
}

func (m *Memory) ReplaceAssetPayload(ctx context.Context, id uuid.UUID, payload types.Payload, expectedVersion int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.assets[id]
	if !ok {
		return &errs.NotFoundError{Entity: "asset", ID: id.String()}
	}
	if a.Version != expectedVersion {
		return &errs.PreconditionFailed{
			Entity: "asset", From: fmt.Sprintf("version=%d", expectedVersion),
			Reason: fmt.Sprintf("version mismatch: asset is version=%d", a.Version),
		}
	}
	a.Payload = payload
	a.Version++
	a.UpdatedAt = time.Now()
	return nil
}

func (m *Memory) SetRegenAttempts(ctx context.Context, id uuid.UUID, expected, attempts int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.assets[id]
	if !ok {
		return &errs.NotFoundError{Entity: "asset", ID: id.String()}
	}
	if a.RegenAttempts != expected {
		return &errs.PreconditionFailed{
			Entity: "asset", From: fmt.Sprintf("regen_attempts=%d", expected),
			Reason: fmt.Sprintf("regen_attempts mismatch: asset is regen_attempts=%d", a.RegenAttempts),
		}
	}
	a.RegenAttempts = attempts
	a.UpdatedAt = time.Now()
	return nil
}

func (m *Memory) SetAssetScore(ctx context.Context, id uuid.UUID, score *types.AssetScore) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.assets[id]
	if !ok {
		return &errs.NotFoundError{Entity: "asset", ID: id.String()}
	}
	cp := *score
	a.Score = &cp
	a.UpdatedAt = time.Now()
	return nil
}

func (m *Memory) CreateVariant(ctx context.Context, variant *types.Variant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *variant
	m.variants[variant.ID] = &cp
	return nil
}

func (m *Memory) ListVariantsByAsset(ctx context.Context, assetID uuid.UUID) ([]types.Variant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var variants []types.Variant
	for _, v := range m.variants {
		if v.AssetID == assetID {
			variants = append(variants, *v)
		}
	}
	sort.Slice(variants, func(i, j int) bool { return variants[i].VariantKey < variants[j].VariantKey })
	return variants, nil
}

func (m *Memory) SetVariantScore(ctx context.Context, id uuid.UUID, score *types.Scorecard) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.variants[id]
	if !ok {
		return &errs.NotFoundError{Entity: "variant", ID: id.String()}
	}
	cp := *score
	v.Score = &cp
	return nil
}

func (m *Memory) MarkVariantWinner(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.variants[id]
	if !ok {
		return &errs.NotFoundError{Entity: "variant", ID: id.String()}
	}
	v.IsWinner = true
	return nil
}

func (m *Memory) CreateSchedule(ctx context.Context, schedule *types.Schedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *schedule
	m.schedules[schedule.ID] = &cp
	return nil
}

func (m *Memory) GetSchedule(ctx context.Context, id uuid.UUID) (*types.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.schedules[id]
	if !ok {
		return nil, &errs.NotFoundError{Entity: "schedule", ID: id.String()}
	}
	cp := *s
	return &cp, nil
}

func (m *Memory) UpdateScheduleStatus(ctx context.Context, id uuid.UUID, from, to types.ScheduleStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.schedules[id]
	if !ok {
		return &errs.NotFoundError{Entity: "schedule", ID: id.String()}
	}
	if s.Status != from {
		return &errs.PreconditionFailed{
			Entity: "schedule", From: string(from), To: string(to),
			Reason: fmt.Sprintf("schedule is %s", s.Status),
		}
	}
	s.Status = to
	s.UpdatedAt = time.Now()
	return nil
}

func (m *Memory) ListHeldSchedules(ctx context.Context, cutoff time.Time) ([]types.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var schedules []types.Schedule
	for _, s := range m.schedules {
		if s.Status == types.SchedulePending && !s.ScheduledAt.After(cutoff) {
			schedules = append(schedules, *s)
		}
	}
	sort.Slice(schedules, func(i, j int) bool { return schedules[i].ScheduledAt.Before(schedules[j].ScheduledAt) })
	return schedules, nil
}

func (m *Memory) CreatePost(ctx context.Context, post *types.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *post
	m.posts[post.ID] = &cp
	return nil
}

func (m *Memory) ListPostsByAsset(ctx context.Context, assetID uuid.UUID) ([]types.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var posts []types.Post
	for _, p := range m.posts {
		if p.AssetID == assetID {
			posts = append(posts, *p)
		}
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].PublishedAt.After(posts[j].PublishedAt) })
	return posts, nil
}

func (m *Memory) ListRecentPosts(ctx context.Context, since time.Time, limit int) ([]types.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var posts []types.Post
	for _, p := range m.posts {
		if p.Success && p.PublishedAt.After(since) {
			posts = append(posts, *p)
		}
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].PublishedAt.After(posts[j].PublishedAt) })
	if limit > 0 && len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

func (m *Memory) CreateMetricSnapshot(ctx context.Context, snapshot *types.MetricSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[snapshot.PostID] = append(m.snapshots[snapshot.PostID], *snapshot)
	return nil
}

func (m *Memory) LatestMetricSnapshot(ctx context.Context, postID uuid.UUID) (*types.MetricSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snaps := m.snapshots[postID]
	if len(snaps) == 0 {
		return nil, &errs.NotFoundError{Entity: "metric_snapshot", ID: postID.String()}
	}
	latest := snaps[0]
	for _, s := range snaps[1:] {
		if s.SnapshotAt.After(latest.SnapshotAt) {
			latest = s
		}
	}
	return &latest, nil
}

func (m *Memory) UpsertWinningPattern(ctx context.Context, pattern *types.WinningPattern) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *pattern
	m.patterns[string(pattern.Platform)+"/"+pattern.PatternType] = &cp
	return nil
}

func (m *Memory) ListWinningPatterns(ctx context.Context, platform types.Platform) ([]types.WinningPattern, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var patterns []types.WinningPattern
	for _, wp := range m.patterns {
		if wp.Platform == platform {
			patterns = append(patterns, *wp)
		}
	}
	sort.Slice(patterns, func(i, j int) bool { return patterns[i].PatternType < patterns[j].PatternType })
	return patterns, nil
}

func (m *Memory) GetBrand(ctx context.Context, id uuid.UUID) (*types.Brand, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.brands[id]
	if !ok {
		return nil, &errs.NotFoundError{Entity: "brand", ID: id.String()}
	}
	cp := *b
	return &cp, nil
}

func (m *Memory) GetOffer(ctx context.Context, id uuid.UUID) (*types.Offer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.offers[id]
	if !ok {
		return nil, &errs.NotFoundError{Entity: "offer", ID: id.String()}
	}
	cp := *o
	return &cp, nil
}

func (m *Memory) ListActiveTrendCards(ctx context.Context, platform types.Platform, now time.Time) ([]types.TrendCard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var cards []types.TrendCard
	for _, tc := range m.trendCards {
		if tc.Platform == platform && tc.Active(now) {
			cards = append(cards, tc)
		}
	}
	return cards, nil
}

// SeedBrand, SeedOffer and SeedTrendCard load reference data for tests.
func (m *Memory) SeedBrand(brand types.Brand) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.brands[brand.ID] = &brand
}

func (m *Memory) SeedOffer(offer types.Offer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offers[offer.ID] = &offer
}

func (m *Memory) SeedTrendCard(card types.TrendCard) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trendCards = append(m.trendCards, card)
}
