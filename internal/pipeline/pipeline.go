// Package pipeline defines the legal lifecycle transitions for batches,
// assets and schedules. Every job handler routes status changes through
// these guards; an illegal transition is a PreconditionFailed, never a
// silent no-op.
package pipeline

import (
	"github.com/jonathan/viral-factory/internal/errs"
	"github.com/jonathan/viral-factory/internal/types"
)

// batchTransitions lists the transitions the pipeline itself performs.
// The batch is not advanced past GENERATING here; asset states are
// authoritative once generation has fanned out.
var batchTransitions = map[types.BatchStatus][]types.BatchStatus{
	types.BatchDraft:      {types.BatchGenerating},
	types.BatchFailed:     {types.BatchGenerating},
	types.BatchGenerating: {types.BatchFailed},
}

var assetTransitions = map[types.AssetStatus][]types.AssetStatus{
	types.AssetDraft:        {types.AssetScoring, types.AssetFailed},
	types.AssetScoring:      {types.AssetApproved, types.AssetLowScore, types.AssetFailed},
	types.AssetLowScore:     {types.AssetRegenerating, types.AssetFailed},
	types.AssetRegenerating: {types.AssetScoring, types.AssetFailed},
	types.AssetApproved:     {types.AssetScheduled, types.AssetPublished, types.AssetFailed},
	types.AssetScheduled:    {types.AssetPublished, types.AssetFailed},
	// PUBLISHED and FAILED are terminal for the automated pipeline.
	types.AssetPublished: {},
	types.AssetFailed:    {},
}

// scheduleTransitions includes the PENDING self-loop: a deferred dispatch
// re-enqueues itself without changing status. PENDING goes straight to
// FAILED when dispatch finds the asset no longer approved.
var scheduleTransitions = map[types.ScheduleStatus][]types.ScheduleStatus{
	types.SchedulePending:   {types.SchedulePending, types.ScheduleQueued, types.ScheduleCancelled, types.ScheduleFailed},
	types.ScheduleQueued:    {types.SchedulePublished, types.ScheduleFailed},
	types.SchedulePublished: {},
	types.ScheduleFailed:    {},
	types.ScheduleCancelled: {},
}

// CheckBatch validates a batch transition.
func CheckBatch(from, to types.BatchStatus) error {
	for _, allowed := range batchTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return &errs.PreconditionFailed{
		Entity: "batch",
		From:   string(from),
		To:     string(to),
		Reason: "transition not permitted",
	}
}

// CheckAsset validates an asset transition.
func CheckAsset(from, to types.AssetStatus) error {
	for _, allowed := range assetTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return &errs.PreconditionFailed{
		Entity: "asset",
		From:   string(from),
		To:     string(to),
		Reason: "transition not permitted",
	}
}

// CheckSchedule validates a schedule transition.
func CheckSchedule(from, to types.ScheduleStatus) error {
	for _, allowed := range scheduleTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return &errs.PreconditionFailed{
		Entity: "schedule",
		From:   string(from),
		To:     string(to),
		Reason: "transition not permitted",
	}
}

// AssetTerminal reports whether the automated pipeline may no longer
// advance an asset in this state.
func AssetTerminal(s types.AssetStatus) bool {
	return s == types.AssetPublished || s == types.AssetFailed
}

// ScheduleTerminal reports whether a schedule can no longer be dispatched.
func ScheduleTerminal(s types.ScheduleStatus) bool {
	return s == types.SchedulePublished || s == types.ScheduleFailed || s == types.ScheduleCancelled
}
