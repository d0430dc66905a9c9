package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/viral-factory/internal/errs"
	"github.com/jonathan/viral-factory/internal/types"
)

// CreateSchedule inserts a publish instruction.
func (p *Postgres) CreateSchedule(ctx context.Context, schedule *types.Schedule) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO schedules (id, asset_id, scheduled_at, timezone, publish_mode, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		schedule.ID, schedule.AssetID, schedule.ScheduledAt, schedule.Timezone,
		schedule.PublishMode, schedule.Status, schedule.CreatedAt, schedule.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create schedule: %w", err)
	}
	return nil
}

// GetSchedule fetches a schedule by id.
func (p *Postgres) GetSchedule(ctx context.Context, id uuid.UUID) (*types.Schedule, error) {
	var s types.Schedule
	err := p.pool.QueryRow(ctx,
		`SELECT id, asset_id, scheduled_at, timezone, publish_mode, status, created_at, updated_at
		 FROM schedules WHERE id = $1`, id,
	).Scan(&s.ID, &s.AssetID, &s.ScheduledAt, &s.Timezone, &s.PublishMode,
		&s.Status, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &errs.NotFoundError{Entity: "schedule", ID: id.String()}
		}
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}
	return &s, nil
}

// UpdateScheduleStatus transitions a schedule conditionally on its current
// status.
func (p *Postgres) UpdateScheduleStatus(ctx context.Context, id uuid.UUID, from, to types.ScheduleStatus) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE schedules SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		to, id, from,
	)
	if err != nil {
		return fmt.Errorf("failed to update schedule status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var current types.ScheduleStatus
		err := p.pool.QueryRow(ctx, `SELECT status FROM schedules WHERE id = $1`, id).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return &errs.NotFoundError{Entity: "schedule", ID: id.String()}
		}
		if err != nil {
			return fmt.Errorf("failed to read schedule status: %w", err)
		}
		return &errs.PreconditionFailed{
			Entity: "schedule",
			From:   string(from),
			To:     string(to),
			Reason: fmt.Sprintf("schedule is %s", current),
		}
	}
	return nil
}

// ListHeldSchedules returns overdue PENDING schedules for the sweep.
func (p *Postgres) ListHeldSchedules(ctx context.Context, cutoff time.Time) ([]types.Schedule, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, asset_id, scheduled_at, timezone, publish_mode, status, created_at, updated_at
		 FROM schedules WHERE status = $1 AND scheduled_at <= $2 ORDER BY scheduled_at`,
		types.SchedulePending, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list held schedules: %w", err)
	}
	defer rows.Close()

	var schedules []types.Schedule
	for rows.Next() {
		var s types.Schedule
		if err := rows.Scan(&s.ID, &s.AssetID, &s.ScheduledAt, &s.Timezone,
			&s.PublishMode, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan schedule: %w", err)
		}
		schedules = append(schedules, s)
	}
	return schedules, rows.Err()
}
