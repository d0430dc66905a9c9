package types

import (
	"time"

	"github.com/google/uuid"
)

// PublishMode selects how a schedule is executed.
type PublishMode string

// Publish modes.
const (
	PublishManual PublishMode = "MANUAL"
	PublishAuto   PublishMode = "AUTO"
	PublishMock   PublishMode = "MOCK"
)

// ScheduleStatus is the lifecycle state of a schedule.
type ScheduleStatus string

// Schedule lifecycle states. PUBLISHED, FAILED and CANCELLED are terminal.
const (
	SchedulePending   ScheduleStatus = "PENDING"
	ScheduleQueued    ScheduleStatus = "QUEUED"
	SchedulePublished ScheduleStatus = "PUBLISHED"
	ScheduleFailed    ScheduleStatus = "FAILED"
	ScheduleCancelled ScheduleStatus = "CANCELLED"
)

// Schedule is a time-bound publish instruction for one asset. Created
// only for approved assets.
type Schedule struct {
	ID          uuid.UUID      `json:"id"`
	AssetID     uuid.UUID      `json:"asset_id"`
	ScheduledAt time.Time      `json:"scheduled_at"`
	Timezone    string         `json:"timezone"`
	PublishMode PublishMode    `json:"publish_mode"`
	Status      ScheduleStatus `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
