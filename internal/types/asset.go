package types

import (
	"time"

	"github.com/google/uuid"
)

// AssetStatus is the lifecycle state of a generated artifact.
type AssetStatus string

// Asset lifecycle states. PUBLISHED and FAILED are terminal for the
// automated pipeline; a manual edit may reset to DRAFT through the
// external API.
const (
	AssetDraft        AssetStatus = "DRAFT"
	AssetScoring      AssetStatus = "SCORING"
	AssetLowScore     AssetStatus = "LOW_SCORE"
	AssetRegenerating AssetStatus = "REGENERATING"
	AssetApproved     AssetStatus = "APPROVED"
	AssetScheduled    AssetStatus = "SCHEDULED"
	AssetPublished    AssetStatus = "PUBLISHED"
	AssetFailed       AssetStatus = "FAILED"
)

// Asset is one generated artifact for one platform within a batch.
// Version strictly increases with every payload rewrite; RegenAttempts
// never exceeds the configured maximum.
type Asset struct {
	ID            uuid.UUID   `json:"id"`
	BatchID       uuid.UUID   `json:"batch_id"`
	Platform      Platform    `json:"platform"`
	AssetType     AssetType   `json:"asset_type"`
	Payload       Payload     `json:"payload"`
	Status        AssetStatus `json:"status"`
	Version       int         `json:"version"`
	RegenAttempts int         `json:"regen_attempts"`
	Score         *AssetScore `json:"score,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// Variant is an A/B alternative derived from part of an asset's payload.
// IsWinner is set only by pattern mining.
type Variant struct {
	ID             uuid.UUID      `json:"id"`
	AssetID        uuid.UUID      `json:"asset_id"`
	VariantKey     string         `json:"variant_key"`
	VariantPayload map[string]any `json:"variant_payload"`
	Score          *Scorecard     `json:"score,omitempty"`
	IsWinner       bool           `json:"is_winner"`
}
