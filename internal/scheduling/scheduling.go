// Package scheduling converts a desired publish time into a concrete
// dispatch event. The dispatch job is cheap and re-entrant: most
// invocations either defer (quiet hours, not yet due) by re-enqueuing
// themselves, hold (auto-publish gates), or hand off to the publisher.
package scheduling

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/viral-factory/internal/errs"
	"github.com/jonathan/viral-factory/internal/pipeline"
	"github.com/jonathan/viral-factory/internal/queue"
	"github.com/jonathan/viral-factory/internal/risk"
	"github.com/jonathan/viral-factory/internal/store"
	"github.com/jonathan/viral-factory/internal/types"
)

// Outcome classifies one dispatch invocation.
type Outcome string

// Dispatch outcomes. Deferred and held invocations leave the schedule
// PENDING; only Queued hands the asset to the publisher.
const (
	OutcomeSkipped  Outcome = "skipped"
	OutcomeDeferred Outcome = "deferred"
	OutcomeHeld     Outcome = "held"
	OutcomeFailed   Outcome = "failed"
	OutcomeQueued   Outcome = "queued"
)

// Result records what one dispatch invocation decided and why. Until is
// set only for deferrals.
type Result struct {
	Outcome Outcome
	Reason  string
	Until   time.Time
}

// Stage wires the dispatch handler to its collaborators.
type Stage struct {
	store       store.Store
	queue       queue.Queue
	logger      *log.Logger
	quiet       QuietHours
	autoPublish bool
	now         func() time.Time
}

// NewStage builds the scheduling stage. autoPublish gates AUTO-mode
// dispatch globally.
func NewStage(st store.Store, q queue.Queue, quiet QuietHours, autoPublish bool, logger *log.Logger) *Stage {
	return &Stage{
		store:       st,
		queue:       q,
		logger:      logger,
		quiet:       quiet,
		autoPublish: autoPublish,
		now:         time.Now,
	}
}

// Create records a schedule for an approved asset and enqueues its
// dispatch job, delayed until scheduledAt when that is in the future.
func (s *Stage) Create(ctx context.Context, assetID uuid.UUID, scheduledAt time.Time, timezone string, mode types.PublishMode) (*types.Schedule, error) {
	asset, err := s.store.GetAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if asset.Status != types.AssetApproved {
		return nil, &errs.PreconditionFailed{
			Entity: "schedule",
			Reason: fmt.Sprintf("asset %s is %s, only approved assets can be scheduled", assetID, asset.Status),
		}
	}
	if timezone == "" {
		timezone = "UTC"
	}

	schedule := &types.Schedule{
		ID:          uuid.New(),
		AssetID:     assetID,
		ScheduledAt: scheduledAt,
		Timezone:    timezone,
		PublishMode: mode,
		Status:      types.SchedulePending,
	}
	if err := s.store.CreateSchedule(ctx, schedule); err != nil {
		return nil, err
	}

	delay := time.Until(scheduledAt)
	if delay < 0 {
		delay = 0
	}
	if _, err := s.queue.Enqueue(ctx, queue.JobSchedule, queue.SchedulePayload{ScheduleID: schedule.ID}, queue.Options{Delay: delay}); err != nil {
		return nil, fmt.Errorf("failed to enqueue dispatch for schedule %s: %w", schedule.ID, err)
	}
	return schedule, nil
}

// HandleSchedule is the queue-facing wrapper around Dispatch.
func (s *Stage) HandleSchedule(ctx context.Context, job queue.Job) error {
	var payload queue.SchedulePayload
	if err := job.Decode(&payload); err != nil {
		return &errs.ValidationError{Subject: "schedule payload", Cause: err}
	}
	result, err := s.Dispatch(ctx, payload.ScheduleID)
	if err != nil {
		return err
	}
	s.logger.Printf("[Scheduling] schedule %s: %s (%s)", payload.ScheduleID, result.Outcome, result.Reason)
	return nil
}

// Dispatch evaluates one schedule. Order matters: terminal and
// already-queued states exit first so duplicate deliveries are no-ops,
// time gates defer before any entity is touched, and only a fully
// cleared AUTO gate or a manual mode reaches the publisher.
func (s *Stage) Dispatch(ctx context.Context, scheduleID uuid.UUID) (Result, error) {
	schedule, err := s.store.GetSchedule(ctx, scheduleID)
	if err != nil {
		return Result{}, err
	}
	if schedule.Status != types.SchedulePending {
		return Result{Outcome: OutcomeSkipped, Reason: fmt.Sprintf("schedule already %s", schedule.Status)}, nil
	}

	now := s.now()

	if schedule.PublishMode == types.PublishAuto && s.quiet.Contains(now) {
		until := s.quiet.NextEnd(now)
		if err := s.requeue(ctx, schedule.ID, until.Sub(now)); err != nil {
			return Result{}, err
		}
		return Result{Outcome: OutcomeDeferred, Reason: "quiet hours", Until: until}, nil
	}

	if schedule.ScheduledAt.After(now) {
		if err := s.requeue(ctx, schedule.ID, schedule.ScheduledAt.Sub(now)); err != nil {
			return Result{}, err
		}
		return Result{Outcome: OutcomeDeferred, Reason: "not yet due", Until: schedule.ScheduledAt}, nil
	}

	asset, err := s.store.GetAsset(ctx, schedule.AssetID)
	if err != nil {
		return Result{}, err
	}
	if asset.Status != types.AssetApproved {
		if err := pipeline.CheckSchedule(schedule.Status, types.ScheduleFailed); err != nil {
			return Result{}, err
		}
		if err := s.store.UpdateScheduleStatus(ctx, schedule.ID, types.SchedulePending, types.ScheduleFailed); err != nil {
			return Result{}, err
		}
		return Result{Outcome: OutcomeFailed, Reason: fmt.Sprintf("asset is %s, not approved", asset.Status)}, nil
	}

	if schedule.PublishMode == types.PublishAuto {
		if !s.autoPublish {
			return Result{Outcome: OutcomeHeld, Reason: "auto-publish disabled"}, nil
		}
		if held, reason := s.riskRecheck(ctx, asset); held {
			return Result{Outcome: OutcomeHeld, Reason: reason}, nil
		}
	}

	if err := s.store.UpdateScheduleStatus(ctx, schedule.ID, types.SchedulePending, types.ScheduleQueued); err != nil {
		return Result{}, err
	}
	if err := s.store.UpdateAssetStatus(ctx, asset.ID, types.AssetApproved, types.AssetScheduled); err != nil {
		return Result{}, err
	}
	if _, err := s.queue.Enqueue(ctx, queue.JobPublish, queue.PublishPayload{ScheduleID: schedule.ID}, queue.Options{}); err != nil {
		return Result{}, fmt.Errorf("failed to enqueue publish for schedule %s: %w", schedule.ID, err)
	}
	return Result{Outcome: OutcomeQueued, Reason: "dispatched to publisher"}, nil
}

// riskRecheck re-runs the risk gate against the current payload before
// an unattended publish. A regression holds the schedule for a human.
func (s *Stage) riskRecheck(ctx context.Context, asset *types.Asset) (bool, string) {
	opts := risk.Options{}
	if batch, err := s.store.GetBatch(ctx, asset.BatchID); err == nil {
		if brand, err := s.store.GetBrand(ctx, batch.BrandID); err == nil {
			opts.BannedWords = brand.BannedWords
		}
	}
	result := risk.Assess(asset.Payload.ContentText(), opts)
	if !result.Passed {
		return true, fmt.Sprintf("risk re-check failed at level %s", result.RiskLevel)
	}
	return false, ""
}

// requeue re-enqueues the dispatch job; the PENDING self-loop needs no
// status write.
func (s *Stage) requeue(ctx context.Context, scheduleID uuid.UUID, delay time.Duration) error {
	if delay < 0 {
		delay = 0
	}
	_, err := s.queue.Enqueue(ctx, queue.JobSchedule, queue.SchedulePayload{ScheduleID: scheduleID}, queue.Options{Delay: delay})
	return err
}

// Sweep re-enqueues dispatch for every held PENDING schedule whose
// scheduledAt has passed, so quiet-hours and auto-publish holds get
// re-evaluated without a manual nudge. Returns the number re-enqueued.
func (s *Stage) Sweep(ctx context.Context) (int, error) {
	held, err := s.store.ListHeldSchedules(ctx, s.now())
	if err != nil {
		return 0, err
	}
	for i, schedule := range held {
		if _, err := s.queue.Enqueue(ctx, queue.JobSchedule, queue.SchedulePayload{ScheduleID: schedule.ID}, queue.Options{}); err != nil {
			return i, err
		}
	}
	return len(held), nil
}
