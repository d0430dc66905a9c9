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

// CreateAsset inserts a new asset.
func (p *Postgres) CreateAsset(ctx context.Context, asset *types.Asset) error {
	payload, err := json.Marshal(asset.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO assets (id, batch_id, platform, asset_type, payload, status, version, regen_attempts, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		asset.ID, asset.BatchID, asset.Platform, asset.AssetType, payload,
		asset.Status, asset.Version, asset.RegenAttempts, asset.CreatedAt, asset.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create asset: %w", err)
	}
	return nil
}

// GetAsset fetches an asset by id.
func (p *Postgres) GetAsset(ctx context.Context, id uuid.UUID) (*types.Asset, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT id, batch_id, platform, asset_type, payload, status, version, regen_attempts, score, created_at, updated_at
		 FROM assets WHERE id = $1`, id)
	asset, err := scanAsset(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &errs.NotFoundError{Entity: "asset", ID: id.String()}
		}
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}
	return asset, nil
}

// ListAssetsByBatch returns a batch's assets in creation order.
func (p *Postgres) ListAssetsByBatch(ctx context.Context, batchID uuid.UUID) ([]types.Asset, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, batch_id, platform, asset_type, payload, status, version, regen_attempts, score, created_at, updated_at
		 FROM assets WHERE batch_id = $1 ORDER BY created_at`, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer rows.Close()

	var assets []types.Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		assets = append(assets, *asset)
	}
	return assets, rows.Err()
}

func scanAsset(row pgx.Row) (*types.Asset, error) {
	var asset types.Asset
	var payload, score []byte
	err := row.Scan(&asset.ID, &asset.BatchID, &asset.Platform, &asset.AssetType,
		&payload, &asset.Status, &asset.Version, &asset.RegenAttempts, &score,
		&asset.CreatedAt, &asset.UpdatedAt)
	if err != nil {
		return nil, err
	}
	decoded, err := types.DecodePayload(asset.Platform, string(asset.AssetType), payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}
	asset.Payload = decoded
	if len(score) > 0 {
		asset.Score = &types.AssetScore{}
		if err := json.Unmarshal(score, asset.Score); err != nil {
			return nil, fmt.Errorf("failed to unmarshal score: %w", err)
		}
	}
	return &asset, nil
}

// UpdateAssetStatus transitions an asset conditionally on its current
// status.
func (p *Postgres) UpdateAssetStatus(ctx context.Context, id uuid.UUID, from, to types.AssetStatus) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE assets SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		to, id, from,
	)
	if err != nil {
		return fmt.Errorf("failed to update asset status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return p.assetConflict(ctx, id, string(from), string(to), "status")
	}
	return nil
}

// ReplaceAssetPayload swaps the payload and bumps version, conditional on
// the current version.
func (p *Postgres) ReplaceAssetPayload(ctx context.Context, id uuid.UUID, payload types.Payload, expectedVersion int) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	tag, err := p.pool.Exec(ctx,
		`UPDATE assets SET payload = $1, version = version + 1, updated_at = NOW()
		 WHERE id = $2 AND version = $3`,
		data, id, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to replace asset payload: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return p.assetConflict(ctx, id, fmt.Sprintf("version=%d", expectedVersion), "", "version")
	}
	return nil
}

// SetRegenAttempts compare-and-swaps the regeneration attempt counter.
func (p *Postgres) SetRegenAttempts(ctx context.Context, id uuid.UUID, expected, attempts int) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE assets SET regen_attempts = $1, updated_at = NOW()
		 WHERE id = $2 AND regen_attempts = $3`,
		attempts, id, expected,
	)
	if err != nil {
		return fmt.Errorf("failed to set regen attempts: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return p.assetConflict(ctx, id, fmt.Sprintf("regen_attempts=%d", expected), "", "regen_attempts")
	}
	return nil
}

// SetAssetScore replaces the asset's scorecard pair wholesale.
func (p *Postgres) SetAssetScore(ctx context.Context, id uuid.UUID, score *types.AssetScore) error {
	data, err := json.Marshal(score)
	if err != nil {
		return fmt.Errorf("failed to marshal score: %w", err)
	}
	tag, err := p.pool.Exec(ctx,
		`UPDATE assets SET score = $1, updated_at = NOW() WHERE id = $2`,
		data, id,
	)
	if err != nil {
		return fmt.Errorf("failed to set asset score: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &errs.NotFoundError{Entity: "asset", ID: id.String()}
	}
	return nil
}

func (p *Postgres) assetConflict(ctx context.Context, id uuid.UUID, from, to, field string) error {
	var status types.AssetStatus
	var version, attempts int
	err := p.pool.QueryRow(ctx,
		`SELECT status, version, regen_attempts FROM assets WHERE id = $1`, id,
	).Scan(&status, &version, &attempts)
	if errors.Is(err, pgx.ErrNoRows) {
		return &errs.NotFoundError{Entity: "asset", ID: id.String()}
	}
	if err != nil {
		return fmt.Errorf("failed to read asset state: %w", err)
	}
	return &errs.PreconditionFailed{
		Entity: "asset",
		From:   from,
		To:     to,
		Reason: fmt.Sprintf("%s mismatch: asset is %s version=%d regen_attempts=%d", field, status, version, attempts),
	}
}

// CreateVariant inserts an A/B variant.
func (p *Postgres) CreateVariant(ctx context.Context, variant *types.Variant) error {
	payload, err := json.Marshal(variant.VariantPayload)
	if err != nil {
		return fmt.Errorf("failed to marshal variant payload: %w", err)
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO variants (id, asset_id, variant_key, variant_payload, is_winner)
		 VALUES ($1, $2, $3, $4, $5)`,
		variant.ID, variant.AssetID, variant.VariantKey, payload, variant.IsWinner,
	)
	if err != nil {
		return fmt.Errorf("failed to create variant: %w", err)
	}
	return nil
}

// ListVariantsByAsset returns all variants for an asset.
func (p *Postgres) ListVariantsByAsset(ctx context.Context, assetID uuid.UUID) ([]types.Variant, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, asset_id, variant_key, variant_payload, score, is_winner
		 FROM variants WHERE asset_id = $1 ORDER BY variant_key`, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list variants: %w", err)
	}
	defer rows.Close()

	var variants []types.Variant
	for rows.Next() {
		var v types.Variant
		var payload, score []byte
		if err := rows.Scan(&v.ID, &v.AssetID, &v.VariantKey, &payload, &score, &v.IsWinner); err != nil {
			return nil, fmt.Errorf("failed to scan variant: %w", err)
		}
		if err := json.Unmarshal(payload, &v.VariantPayload); err != nil {
			return nil, fmt.Errorf("failed to unmarshal variant payload: %w", err)
		}
		if len(score) > 0 {
			v.Score = &types.Scorecard{}
			if err := json.Unmarshal(score, v.Score); err != nil {
				return nil, fmt.Errorf("failed to unmarshal variant score: %w", err)
			}
		}
		variants = append(variants, v)
	}
	return variants, rows.Err()
}

// SetVariantScore stores a variant's scorecard.
func (p *Postgres) SetVariantScore(ctx context.Context, id uuid.UUID, score *types.Scorecard) error {
	data, err := json.Marshal(score)
	if err != nil {
		return fmt.Errorf("failed to marshal variant score: %w", err)
	}
	tag, err := p.pool.Exec(ctx, `UPDATE variants SET score = $1 WHERE id = $2`, data, id)
	if err != nil {
		return fmt.Errorf("failed to set variant score: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &errs.NotFoundError{Entity: "variant", ID: id.String()}
	}
	return nil
}

// MarkVariantWinner tags a variant as a mined winner.
func (p *Postgres) MarkVariantWinner(ctx context.Context, id uuid.UUID) error {
	tag, err := p.pool.Exec(ctx, `UPDATE variants SET is_winner = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark variant winner: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &errs.NotFoundError{Entity: "variant", ID: id.String()}
	}
	return nil
}
