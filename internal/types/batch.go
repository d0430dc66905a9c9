package types

import (
	"time"

	"github.com/google/uuid"
)

// BatchStatus is the lifecycle state of a content batch.
type BatchStatus string

// Batch lifecycle states.
const (
	BatchDraft      BatchStatus = "DRAFT"
	BatchGenerating BatchStatus = "GENERATING"
	BatchFailed     BatchStatus = "FAILED"
	BatchReview     BatchStatus = "REVIEW"
	BatchScheduled  BatchStatus = "SCHEDULED"
	BatchPublished  BatchStatus = "PUBLISHED"
)

// Batch is a content request spanning one or more target platforms.
// The pipeline mutates only its status; deletion is an external
// administrative action.
type Batch struct {
	ID        uuid.UUID   `json:"id"`
	Brief     string      `json:"brief"`
	Platforms []Platform  `json:"platforms"`
	BrandID   uuid.UUID   `json:"brand_id"`
	OfferID   uuid.UUID   `json:"offer_id"`
	Status    BatchStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}
