package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/viral-factory/internal/errs"
	"github.com/jonathan/viral-factory/internal/types"
)

// CreateBatch inserts a new batch.
func (p *Postgres) CreateBatch(ctx context.Context, batch *types.Batch) error {
	platforms, err := json.Marshal(batch.Platforms)
	if err != nil {
		return fmt.Errorf("failed to marshal platforms: %w", err)
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO batches (id, brief, platforms, brand_id, offer_id, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		batch.ID, batch.Brief, platforms, batch.BrandID, batch.OfferID,
		batch.Status, batch.CreatedAt, batch.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create batch: %w", err)
	}
	return nil
}

// GetBatch fetches a batch by id.
func (p *Postgres) GetBatch(ctx context.Context, id uuid.UUID) (*types.Batch, error) {
	var batch types.Batch
	var platforms []byte
	err := p.pool.QueryRow(ctx,
		`SELECT id, brief, platforms, brand_id, offer_id, status, created_at, updated_at
		 FROM batches WHERE id = $1`, id,
	).Scan(&batch.ID, &batch.Brief, &platforms, &batch.BrandID, &batch.OfferID,
		&batch.Status, &batch.CreatedAt, &batch.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &errs.NotFoundError{Entity: "batch", ID: id.String()}
		}
		return nil, fmt.Errorf("failed to get batch: %w", err)
	}
	if err := json.Unmarshal(platforms, &batch.Platforms); err != nil {
		return nil, fmt.Errorf("failed to unmarshal platforms: %w", err)
	}
	return &batch, nil
}

// UpdateBatchStatus transitions a batch conditionally on its current
// status.
func (p *Postgres) UpdateBatchStatus(ctx context.Context, id uuid.UUID, from, to types.BatchStatus) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE batches SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		to, id, from,
	)
	if err != nil {
		return fmt.Errorf("failed to update batch status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return p.batchUpdateConflict(ctx, id, from, to)
	}
	return nil
}

func (p *Postgres) batchUpdateConflict(ctx context.Context, id uuid.UUID, from, to types.BatchStatus) error {
	var current types.BatchStatus
	err := p.pool.QueryRow(ctx, `SELECT status FROM batches WHERE id = $1`, id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return &errs.NotFoundError{Entity: "batch", ID: id.String()}
	}
	if err != nil {
		return fmt.Errorf("failed to read batch status: %w", err)
	}
	return &errs.PreconditionFailed{
		Entity: "batch",
		From:   string(from),
		To:     string(to),
		Reason: fmt.Sprintf("batch is %s", current),
	}
}
