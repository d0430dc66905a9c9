// Package regen runs the quality gate and the bounded regeneration loop:
// scoring moves an asset to APPROVED or LOW_SCORE, and a low score buys
// at most MaxRegenAttempts rewrite passes before the asset is left for
// manual review.
package regen

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/viral-factory/internal/errs"
	"github.com/jonathan/viral-factory/internal/llm"
	"github.com/jonathan/viral-factory/internal/queue"
	"github.com/jonathan/viral-factory/internal/risk"
	"github.com/jonathan/viral-factory/internal/scoring"
	"github.com/jonathan/viral-factory/internal/store"
	"github.com/jonathan/viral-factory/internal/types"
)

// DefaultMaxRegenAttempts bounds the rewrite loop when not configured.
const DefaultMaxRegenAttempts = 3

// Stage wires the scoring and rewrite handlers to their collaborators.
type Stage struct {
	store            store.Store
	queue            queue.Queue
	llm              llm.Client
	logger           *log.Logger
	minScore         int
	maxRegenAttempts int
}

// NewStage builds the regen stage. minScore <= 0 uses the scoring
// default; maxRegenAttempts <= 0 uses DefaultMaxRegenAttempts.
func NewStage(st store.Store, q queue.Queue, client llm.Client, minScore, maxRegenAttempts int, logger *log.Logger) *Stage {
	if minScore <= 0 {
		minScore = scoring.DefaultMinScore
	}
	if maxRegenAttempts <= 0 {
		maxRegenAttempts = DefaultMaxRegenAttempts
	}
	return &Stage{
		store:            st,
		queue:            q,
		llm:              client,
		logger:           logger,
		minScore:         minScore,
		maxRegenAttempts: maxRegenAttempts,
	}
}

// HandleScoreAssets runs both gates on one asset: the deterministic
// quality scorecard and the risk scan. A risk failure forces LOW_SCORE
// even when quality passes. Variants are scored alongside the asset. A
// low score enqueues a rewrite only while attempts remain.
func (s *Stage) HandleScoreAssets(ctx context.Context, job queue.Job) error {
	var payload queue.ScoreAssetsPayload
	if err := job.Decode(&payload); err != nil {
		return &errs.ValidationError{Subject: "scoreAssets payload", Cause: err}
	}

	asset, err := s.store.GetAsset(ctx, payload.AssetID)
	if err != nil {
		return err
	}
	switch asset.Status {
	case types.AssetDraft, types.AssetRegenerating:
		if err := s.store.UpdateAssetStatus(ctx, asset.ID, asset.Status, types.AssetScoring); err != nil {
			return err
		}
	case types.AssetScoring:
		// Resuming a pass that failed after the SCORING write. The gates
		// are pure, so rerunning them on redelivery is safe.
		s.logger.Printf("[Regen] asset %s already scoring, resuming", asset.ID)
	default:
		// Redelivery after a completed pass; scoring already happened.
		s.logger.Printf("[Regen] asset %s is %s, skipping scoring", asset.ID, asset.Status)
		return nil
	}

	batch, err := s.store.GetBatch(ctx, asset.BatchID)
	if err != nil {
		return err
	}
	brand, err := s.store.GetBrand(ctx, batch.BrandID)
	if err != nil {
		return err
	}
	offer, err := s.store.GetOffer(ctx, batch.OfferID)
	if err != nil {
		return err
	}

	scoreCtx := scoring.Context{
		Hook:     asset.Payload.Hook(),
		CTA:      asset.Payload.CTA(),
		Topic:    batch.Brief,
		Audience: offer.Audience,
		Offer:    *offer,
		Brand:    *brand,
		Platform: asset.Platform,
	}
	quality := scoring.Calculate(asset.Payload.ContentText(), scoreCtx, s.minScore)
	riskResult := risk.Assess(asset.Payload.ContentText(), risk.Options{BannedWords: brand.BannedWords})

	if err := s.store.SetAssetScore(ctx, asset.ID, &types.AssetScore{
		Quality:  quality,
		Risk:     riskResult,
		ScoredAt: time.Now(),
	}); err != nil {
		return err
	}

	next := types.AssetLowScore
	if riskResult.Passed && quality.Passed {
		next = types.AssetApproved
	}
	if err := s.store.UpdateAssetStatus(ctx, asset.ID, types.AssetScoring, next); err != nil {
		return err
	}

	if err := s.scoreVariants(ctx, asset.ID, scoreCtx); err != nil {
		return err
	}

	s.logger.Printf("[Regen] asset %s scored %d (risk %s) -> %s", asset.ID, quality.Overall, riskResult.RiskLevel, next)

	if next != types.AssetLowScore {
		return nil
	}
	if asset.RegenAttempts >= s.maxRegenAttempts {
		s.logger.Printf("[Regen] asset %s exhausted %d rewrite attempts, leaving for review", asset.ID, asset.RegenAttempts)
		return nil
	}
	_, err = s.queue.Enqueue(ctx, queue.JobRewriteLowScore, queue.RewriteLowScorePayload{
		AssetID:       asset.ID,
		AttemptNumber: asset.RegenAttempts + 1,
	}, queue.Options{})
	return err
}

// scoreVariants scores each A/B variant on its own serialized payload,
// substituting the variant's hook when it overrides one.
func (s *Stage) scoreVariants(ctx context.Context, assetID uuid.UUID, scoreCtx scoring.Context) error {
	variants, err := s.store.ListVariantsByAsset(ctx, assetID)
	if err != nil {
		return err
	}
	for _, variant := range variants {
		content, err := json.Marshal(variant.VariantPayload)
		if err != nil {
			return err
		}
		variantCtx := scoreCtx
		if hook, ok := variant.VariantPayload["hook"].(string); ok && hook != "" {
			variantCtx.Hook = hook
		}
		card := scoring.Calculate(string(content), variantCtx, s.minScore)
		if err := s.store.SetVariantScore(ctx, variant.ID, &card); err != nil {
			return err
		}
	}
	return nil
}
