package queue

import (
	"github.com/google/uuid"

	"github.com/jonathan/viral-factory/internal/types"
)

// Job payloads, one per job type. The enqueue side and the handler side
// both use these so the wire shape stays in one place.

// GenerateIdeasPayload starts ideation for a batch.
type GenerateIdeasPayload struct {
	BatchID uuid.UUID `json:"batchId"`
}

// IdeationAngle is one content angle produced by ideation and carried
// into the per-platform packaging job.
type IdeationAngle struct {
	Angle        string         `json:"angle"`
	HookVariants []string       `json:"hookVariants"`
	Platform     types.Platform `json:"platform"`
	FormulaUsed  string         `json:"formulaUsed"`
}

// GenerateAssetsPayload packages one ideation angle into a platform asset.
type GenerateAssetsPayload struct {
	BatchID    uuid.UUID      `json:"batchId"`
	AngleIndex int            `json:"angleIndex"`
	Platform   types.Platform `json:"platform"`
	Angle      IdeationAngle  `json:"angle"`
}

// ScoreAssetsPayload runs the quality and risk gates on one asset.
type ScoreAssetsPayload struct {
	AssetID uuid.UUID `json:"assetId"`
}

// RewriteLowScorePayload requests one bounded regeneration attempt.
// AttemptNumber is 1-based and becomes the asset's regen counter.
type RewriteLowScorePayload struct {
	AssetID       uuid.UUID `json:"assetId"`
	AttemptNumber int       `json:"attemptNumber"`
}

// SchedulePayload evaluates one schedule for dispatch.
type SchedulePayload struct {
	ScheduleID uuid.UUID `json:"scheduleId"`
}

// PublishPayload publishes the asset behind one queued schedule.
type PublishPayload struct {
	ScheduleID uuid.UUID `json:"scheduleId"`
}

// MetricsSyncPayload triggers a metrics collection sweep.
type MetricsSyncPayload struct{}

// PatternMiningPayload triggers a pattern mining sweep.
type PatternMiningPayload struct{}
