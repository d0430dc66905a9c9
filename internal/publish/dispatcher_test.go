package publish

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/viral-factory/internal/errs"
	"github.com/jonathan/viral-factory/internal/queue"
	"github.com/jonathan/viral-factory/internal/store"
	"github.com/jonathan/viral-factory/internal/types"
)

type stubConnector struct {
	result *ConnectorResult
	err    error
	calls  int
}

func (s *stubConnector) Publish(ctx context.Context, platform types.Platform, payload types.Payload) (*ConnectorResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type publishFixture struct {
	dispatcher *Dispatcher
	store      *store.Memory
	asset      *types.Asset
	schedule   *types.Schedule
}

func newPublishFixture(t *testing.T, mode types.PublishMode, environment string) *publishFixture {
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
		Platforms: []types.Platform{types.PlatformLinkedIn},
		BrandID:   brand.ID,
		OfferID:   offer.ID,
		Status:    types.BatchGenerating,
	}
	require.NoError(t, st.CreateBatch(ctx, batch))

	asset := &types.Asset{
		ID:        uuid.New(),
		BatchID:   batch.ID,
		Platform:  types.PlatformLinkedIn,
		AssetType: types.AssetTypeLinkedInPost,
		Payload: types.Payload{LinkedIn: &types.LinkedInPost{
			Platform: types.PlatformLinkedIn,
			AuthorityPost: &types.LinkedInAuthorityPost{
				FirstLine: "Most founders plan wrong.",
				Body:      "Plan at night.",
				CTA:       "Comment FOCUS",
			},
			RepurposeSummary: "night planning",
		}},
		Status:  types.AssetScheduled,
		Version: 1,
	}
	require.NoError(t, st.CreateAsset(ctx, asset))

	schedule := &types.Schedule{
		ID:          uuid.New(),
		AssetID:     asset.ID,
		ScheduledAt: time.Now().Add(-time.Minute),
		Timezone:    "UTC",
		PublishMode: mode,
		Status:      types.ScheduleQueued,
	}
	require.NoError(t, st.CreateSchedule(ctx, schedule))

	d := NewDispatcher(st, "", environment, log.New(io.Discard, "", 0))
	d.mock = NewMockConnector(0)

	return &publishFixture{dispatcher: d, store: st, asset: asset, schedule: schedule}
}

func publishJob(t *testing.T, scheduleID uuid.UUID) queue.Job {
	t.Helper()
	data, err := json.Marshal(queue.PublishPayload{ScheduleID: scheduleID})
	require.NoError(t, err)
	return queue.Job{ID: uuid.New(), Type: queue.JobPublish, Payload: data, Attempt: 1}
}

func TestHandlePublishMockModeAlwaysSucceeds(t *testing.T) {
	fx := newPublishFixture(t, types.PublishMock, "production")
	ctx := context.Background()

	err := fx.dispatcher.HandlePublish(ctx, publishJob(t, fx.schedule.ID))
	require.NoError(t, err)

	posts, err := fx.store.ListPostsByAsset(ctx, fx.asset.ID)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.True(t, posts[0].Success)
	assert.True(t, strings.HasPrefix(posts[0].ExternalID, "mock_linkedin_"), "got %q", posts[0].ExternalID)

	schedule, err := fx.store.GetSchedule(ctx, fx.schedule.ID)
	require.NoError(t, err)
	assert.Equal(t, types.SchedulePublished, schedule.Status)

	asset, err := fx.store.GetAsset(ctx, fx.asset.ID)
	require.NoError(t, err)
	assert.Equal(t, types.AssetPublished, asset.Status)
}

func TestHandlePublishRedeliveryCreatesNoSecondPost(t *testing.T) {
	fx := newPublishFixture(t, types.PublishMock, "production")
	ctx := context.Background()
	job := publishJob(t, fx.schedule.ID)

	require.NoError(t, fx.dispatcher.HandlePublish(ctx, job))
	require.NoError(t, fx.dispatcher.HandlePublish(ctx, job))

	posts, err := fx.store.ListPostsByAsset(ctx, fx.asset.ID)
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}

func TestHandlePublishConnectorFailureSettlesEntities(t *testing.T) {
	fx := newPublishFixture(t, types.PublishManual, "production")
	fx.dispatcher.webhook = &stubConnector{result: &ConnectorResult{
		Success:     false,
		RawResponse: map[string]any{"status": 502},
	}}
	ctx := context.Background()

	err := fx.dispatcher.HandlePublish(ctx, publishJob(t, fx.schedule.ID))
	require.NoError(t, err)

	posts, err := fx.store.ListPostsByAsset(ctx, fx.asset.ID)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.False(t, posts[0].Success)

	schedule, err := fx.store.GetSchedule(ctx, fx.schedule.ID)
	require.NoError(t, err)
	assert.Equal(t, types.ScheduleFailed, schedule.Status)

	asset, err := fx.store.GetAsset(ctx, fx.asset.ID)
	require.NoError(t, err)
	assert.Equal(t, types.AssetFailed, asset.Status)
}

func TestHandlePublishConnectorErrorIsCaptured(t *testing.T) {
	fx := newPublishFixture(t, types.PublishManual, "production")
	fx.dispatcher.webhook = &stubConnector{err: errors.New("connection refused")}
	ctx := context.Background()

	err := fx.dispatcher.HandlePublish(ctx, publishJob(t, fx.schedule.ID))
	require.NoError(t, err)

	posts, err := fx.store.ListPostsByAsset(ctx, fx.asset.ID)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.False(t, posts[0].Success)
	assert.Contains(t, posts[0].Response["error"], "connection refused")
}

func TestHandlePublishProductionWithoutConnector(t *testing.T) {
	fx := newPublishFixture(t, types.PublishManual, "production")
	ctx := context.Background()

	err := fx.dispatcher.HandlePublish(ctx, publishJob(t, fx.schedule.ID))
	var ce *errs.ConfigurationError
	require.ErrorAs(t, err, &ce)

	posts, perr := fx.store.ListPostsByAsset(ctx, fx.asset.ID)
	require.NoError(t, perr)
	require.Len(t, posts, 1)
	assert.False(t, posts[0].Success)

	schedule, serr := fx.store.GetSchedule(ctx, fx.schedule.ID)
	require.NoError(t, serr)
	assert.Equal(t, types.ScheduleFailed, schedule.Status)
}

func TestHandlePublishNonProductionFallsBackToMock(t *testing.T) {
	fx := newPublishFixture(t, types.PublishManual, "development")
	ctx := context.Background()

	err := fx.dispatcher.HandlePublish(ctx, publishJob(t, fx.schedule.ID))
	require.NoError(t, err)

	posts, perr := fx.store.ListPostsByAsset(ctx, fx.asset.ID)
	require.NoError(t, perr)
	require.Len(t, posts, 1)
	assert.True(t, posts[0].Success)
}

func TestWebhookConnectorSuccess(t *testing.T) {
	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &received)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"externalId": "ext_123"}`))
	}))
	defer srv.Close()

	c := NewWebhookConnector(srv.URL)
	result, err := c.Publish(context.Background(), types.PlatformLinkedIn, types.Payload{LinkedIn: &types.LinkedInPost{
		Platform:         types.PlatformLinkedIn,
		RepurposeSummary: "summary",
	}})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "ext_123", result.ExternalID)
	assert.Equal(t, "LINKEDIN", received["platform"])
}

func TestWebhookConnectorServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewWebhookConnector(srv.URL)
	result, err := c.Publish(context.Background(), types.PlatformLinkedIn, types.Payload{LinkedIn: &types.LinkedInPost{
		Platform: types.PlatformLinkedIn,
	}})
	require.NoError(t, err)
	assert.False(t, result.Success)
}
