package scheduling

import (
	"context"
	"encoding/json"
	"io"
	"log"
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

type recordedJob struct {
	Type    queue.JobType
	Payload json.RawMessage
	Opts    queue.Options
}

type recordingQueue struct {
	jobs []recordedJob
}

func (q *recordingQueue) Enqueue(ctx context.Context, jobType queue.JobType, payload any, opts queue.Options) (uuid.UUID, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return uuid.Nil, err
	}
	q.jobs = append(q.jobs, recordedJob{Type: jobType, Payload: data, Opts: opts})
	return uuid.New(), nil
}

type schedFixture struct {
	stage *Stage
	store *store.Memory
	queue *recordingQueue
	asset *types.Asset
	now   time.Time
}

func newSchedFixture(t *testing.T, quiet QuietHours, autoPublish bool, content string) *schedFixture {
	t.Helper()
	st := store.NewMemory()
	ctx := context.Background()

	brand := types.Brand{ID: uuid.New(), Name: "Calm Founders", BannedWords: []string{"hustle"}}
	offer := types.Offer{ID: uuid.New(), Name: "Focus Playbook", ValueProp: "weekly planning", Audience: "solo founders"}
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
				Body:      content,
				CTA:       "Comment FOCUS",
			},
			RepurposeSummary: "night planning",
		}},
		Status:  types.AssetApproved,
		Version: 1,
	}
	require.NoError(t, st.CreateAsset(ctx, asset))

	q := &recordingQueue{}
	stage := NewStage(st, q, quiet, autoPublish, log.New(io.Discard, "", 0))
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	stage.now = func() time.Time { return now }

	return &schedFixture{stage: stage, store: st, queue: q, asset: asset, now: now}
}

func (fx *schedFixture) makeSchedule(t *testing.T, scheduledAt time.Time, mode types.PublishMode) *types.Schedule {
	t.Helper()
	schedule := &types.Schedule{
		ID:          uuid.New(),
		AssetID:     fx.asset.ID,
		ScheduledAt: scheduledAt,
		Timezone:    "UTC",
		PublishMode: mode,
		Status:      types.SchedulePending,
	}
	require.NoError(t, fx.store.CreateSchedule(context.Background(), schedule))
	return schedule
}

func TestCreateRejectsUnapprovedAsset(t *testing.T) {
	fx := newSchedFixture(t, QuietHours{}, true, "Plan at night.")
	ctx := context.Background()
	require.NoError(t, fx.store.UpdateAssetStatus(ctx, fx.asset.ID, types.AssetApproved, types.AssetScheduled))

	_, err := fx.stage.Create(ctx, fx.asset.ID, fx.now, "UTC", types.PublishManual)
	var pf *errs.PreconditionFailed
	require.ErrorAs(t, err, &pf)
	assert.Empty(t, fx.queue.jobs)
}

func TestCreateEnqueuesDispatch(t *testing.T) {
	fx := newSchedFixture(t, QuietHours{}, true, "Plan at night.")

	schedule, err := fx.stage.Create(context.Background(), fx.asset.ID, time.Now().Add(time.Hour), "UTC", types.PublishManual)
	require.NoError(t, err)
	assert.Equal(t, types.SchedulePending, schedule.Status)

	require.Len(t, fx.queue.jobs, 1)
	assert.Equal(t, queue.JobSchedule, fx.queue.jobs[0].Type)
	assert.Greater(t, fx.queue.jobs[0].Opts.Delay, 55*time.Minute)
}

func TestDispatchDefersFutureSchedule(t *testing.T) {
	fx := newSchedFixture(t, QuietHours{}, true, "Plan at night.")
	schedule := fx.makeSchedule(t, fx.now.Add(10*time.Minute), types.PublishManual)

	result, err := fx.stage.Dispatch(context.Background(), schedule.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDeferred, result.Outcome)
	assert.Equal(t, "not yet due", result.Reason)
	assert.Equal(t, schedule.ScheduledAt, result.Until)

	got, err := fx.store.GetSchedule(context.Background(), schedule.ID)
	require.NoError(t, err)
	assert.Equal(t, types.SchedulePending, got.Status)

	require.Len(t, fx.queue.jobs, 1)
	assert.Equal(t, queue.JobSchedule, fx.queue.jobs[0].Type)
	assert.Equal(t, 10*time.Minute, fx.queue.jobs[0].Opts.Delay)
}

func TestDispatchDefersAutoDuringQuietHours(t *testing.T) {
	quiet, err := ParseQuietHours("23:00", "07:00")
	require.NoError(t, err)
	fx := newSchedFixture(t, quiet, true, "Plan at night.")
	fx.stage.now = func() time.Time { return time.Date(2026, 8, 31, 23, 30, 0, 0, time.UTC) }
	schedule := fx.makeSchedule(t, time.Date(2026, 8, 31, 22, 0, 0, 0, time.UTC), types.PublishAuto)

	result, derr := fx.stage.Dispatch(context.Background(), schedule.ID)
	require.NoError(t, derr)
	assert.Equal(t, OutcomeDeferred, result.Outcome)
	assert.Equal(t, "quiet hours", result.Reason)
	assert.Equal(t, time.Date(2026, 9, 1, 7, 0, 0, 0, time.UTC), result.Until)

	got, gerr := fx.store.GetSchedule(context.Background(), schedule.ID)
	require.NoError(t, gerr)
	assert.Equal(t, types.SchedulePending, got.Status)

	require.Len(t, fx.queue.jobs, 1)
	assert.Equal(t, 7*time.Hour+30*time.Minute, fx.queue.jobs[0].Opts.Delay)
}

func TestDispatchManualIgnoresQuietHours(t *testing.T) {
	quiet, err := ParseQuietHours("23:00", "07:00")
	require.NoError(t, err)
	fx := newSchedFixture(t, quiet, true, "Plan at night.")
	fx.stage.now = func() time.Time { return time.Date(2026, 8, 31, 23, 30, 0, 0, time.UTC) }
	schedule := fx.makeSchedule(t, time.Date(2026, 8, 31, 22, 0, 0, 0, time.UTC), types.PublishManual)

	result, derr := fx.stage.Dispatch(context.Background(), schedule.ID)
	require.NoError(t, derr)
	assert.Equal(t, OutcomeQueued, result.Outcome)
}

func TestDispatchHoldsWhenAutoPublishDisabled(t *testing.T) {
	fx := newSchedFixture(t, QuietHours{}, false, "Plan at night.")
	schedule := fx.makeSchedule(t, fx.now.Add(-time.Minute), types.PublishAuto)

	result, err := fx.stage.Dispatch(context.Background(), schedule.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeHeld, result.Outcome)
	assert.Equal(t, "auto-publish disabled", result.Reason)

	got, gerr := fx.store.GetSchedule(context.Background(), schedule.ID)
	require.NoError(t, gerr)
	assert.Equal(t, types.SchedulePending, got.Status)
	assert.Empty(t, fx.queue.jobs)
}

func TestDispatchHoldsOnRiskRegression(t *testing.T) {
	fx := newSchedFixture(t, QuietHours{}, true, "This routine cures your condition in a week.")
	schedule := fx.makeSchedule(t, fx.now.Add(-time.Minute), types.PublishAuto)

	result, err := fx.stage.Dispatch(context.Background(), schedule.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeHeld, result.Outcome)
	assert.Contains(t, result.Reason, "risk re-check failed")

	got, gerr := fx.store.GetSchedule(context.Background(), schedule.ID)
	require.NoError(t, gerr)
	assert.Equal(t, types.SchedulePending, got.Status)
	assert.Empty(t, fx.queue.jobs)
}

func TestDispatchQueuesDueSchedule(t *testing.T) {
	fx := newSchedFixture(t, QuietHours{}, true, "Plan at night.")
	schedule := fx.makeSchedule(t, fx.now.Add(-time.Minute), types.PublishManual)

	result, err := fx.stage.Dispatch(context.Background(), schedule.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeQueued, result.Outcome)

	got, gerr := fx.store.GetSchedule(context.Background(), schedule.ID)
	require.NoError(t, gerr)
	assert.Equal(t, types.ScheduleQueued, got.Status)

	asset, aerr := fx.store.GetAsset(context.Background(), fx.asset.ID)
	require.NoError(t, aerr)
	assert.Equal(t, types.AssetScheduled, asset.Status)

	require.Len(t, fx.queue.jobs, 1)
	assert.Equal(t, queue.JobPublish, fx.queue.jobs[0].Type)
	var pp queue.PublishPayload
	require.NoError(t, json.Unmarshal(fx.queue.jobs[0].Payload, &pp))
	assert.Equal(t, schedule.ID, pp.ScheduleID)
}

func TestDispatchIsIdempotent(t *testing.T) {
	fx := newSchedFixture(t, QuietHours{}, true, "Plan at night.")
	schedule := fx.makeSchedule(t, fx.now.Add(-time.Minute), types.PublishManual)

	_, err := fx.stage.Dispatch(context.Background(), schedule.ID)
	require.NoError(t, err)
	fx.queue.jobs = nil

	result, err := fx.stage.Dispatch(context.Background(), schedule.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, result.Outcome)
	assert.Empty(t, fx.queue.jobs)

	got, gerr := fx.store.GetSchedule(context.Background(), schedule.ID)
	require.NoError(t, gerr)
	assert.Equal(t, types.ScheduleQueued, got.Status)
}

func TestDispatchFailsScheduleForUnapprovedAsset(t *testing.T) {
	fx := newSchedFixture(t, QuietHours{}, true, "Plan at night.")
	schedule := fx.makeSchedule(t, fx.now.Add(-time.Minute), types.PublishManual)
	ctx := context.Background()
	require.NoError(t, fx.store.UpdateAssetStatus(ctx, fx.asset.ID, types.AssetApproved, types.AssetFailed))

	result, err := fx.stage.Dispatch(ctx, schedule.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailed, result.Outcome)

	got, gerr := fx.store.GetSchedule(ctx, schedule.ID)
	require.NoError(t, gerr)
	assert.Equal(t, types.ScheduleFailed, got.Status)
	assert.Empty(t, fx.queue.jobs)
}

func TestSweepReenqueuesHeldSchedules(t *testing.T) {
	fx := newSchedFixture(t, QuietHours{}, false, "Plan at night.")
	held := fx.makeSchedule(t, fx.now.Add(-time.Hour), types.PublishAuto)
	fx.makeSchedule(t, fx.now.Add(time.Hour), types.PublishAuto)

	count, err := fx.stage.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.Len(t, fx.queue.jobs, 1)
	var sp queue.SchedulePayload
	require.NoError(t, json.Unmarshal(fx.queue.jobs[0].Payload, &sp))
	assert.Equal(t, held.ID, sp.ScheduleID)
}
