package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/viral-factory/internal/errs"
	"github.com/jonathan/viral-factory/internal/types"
)

// GetBrand fetches a brand's voice constraints.
func (p *Postgres) GetBrand(ctx context.Context, id uuid.UUID) (*types.Brand, error) {
	var brand types.Brand
	var tone, banned, voice []byte
	err := p.pool.QueryRow(ctx,
		`SELECT id, name, tone, banned_words, voice_examples FROM brands WHERE id = $1`, id,
	).Scan(&brand.ID, &brand.Name, &tone, &banned, &voice)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &errs.NotFoundError{Entity: "brand", ID: id.String()}
		}
		return nil, fmt.Errorf("failed to get brand: %w", err)
	}
	if err := json.Unmarshal(tone, &brand.Tone); err != nil {
		return nil, fmt.Errorf("failed to unmarshal brand tone: %w", err)
	}
	if err := json.Unmarshal(banned, &brand.BannedWords); err != nil {
		return nil, fmt.Errorf("failed to unmarshal banned words: %w", err)
	}
	if len(voice) > 0 {
		if err := json.Unmarshal(voice, &brand.VoiceExamples); err != nil {
			return nil, fmt.Errorf("failed to unmarshal voice examples: %w", err)
		}
	}
	return &brand, nil
}

// GetOffer fetches an offer.
func (p *Postgres) GetOffer(ctx context.Context, id uuid.UUID) (*types.Offer, error) {
	var offer types.Offer
	err := p.pool.QueryRow(ctx,
		`SELECT id, name, url, value_prop, audience, cta_soft, cta_hard FROM offers WHERE id = $1`, id,
	).Scan(&offer.ID, &offer.Name, &offer.URL, &offer.ValueProp, &offer.Audience,
		&offer.CTAs.Soft, &offer.CTAs.Hard)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &errs.NotFoundError{Entity: "offer", ID: id.String()}
		}
		return nil, fmt.Errorf("failed to get offer: %w", err)
	}
	return &offer, nil
}

// ListActiveTrendCards returns unexpired trend cards for a platform.
func (p *Postgres) ListActiveTrendCards(ctx context.Context, platform types.Platform, now time.Time) ([]types.TrendCard, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, platform, phrase, angle, expires_at FROM trend_cards
		 WHERE platform = $1 AND (expires_at IS NULL OR expires_at > $2)`, platform, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list trend cards: %w", err)
	}
	defer rows.Close()

	var cards []types.TrendCard
	for rows.Next() {
		var tc types.TrendCard
		if err := rows.Scan(&tc.ID, &tc.Platform, &tc.Phrase, &tc.Angle, &tc.ExpiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan trend card: %w", err)
		}
		cards = append(cards, tc)
	}
	return cards, rows.Err()
}
