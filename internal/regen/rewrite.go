package regen

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/viral-factory/internal/errs"
	"github.com/jonathan/viral-factory/internal/llm"
	"github.com/jonathan/viral-factory/internal/prompts"
	"github.com/jonathan/viral-factory/internal/queue"
	"github.com/jonathan/viral-factory/internal/types"
)

// rewriteResult is the structured output of the rewrite model call.
type rewriteResult struct {
	RewrittenContent json.RawMessage `json:"rewrittenContent"`
	ChangesApplied   []string        `json:"changesApplied"`
}

// HandleRewriteLowScore runs one regeneration attempt: bump the attempt
// counter, rewrite the payload against the previous scorecard's
// suggestions, replace it under a version check, and enqueue rescoring.
// An asset that got approved in the meantime is skipped.
func (s *Stage) HandleRewriteLowScore(ctx context.Context, job queue.Job) error {
	var payload queue.RewriteLowScorePayload
	if err := job.Decode(&payload); err != nil {
		return &errs.ValidationError{Subject: "rewriteLowScore payload", Cause: err}
	}

	asset, err := s.store.GetAsset(ctx, payload.AssetID)
	if err != nil {
		return err
	}

	switch asset.Status {
	case types.AssetApproved:
		s.logger.Printf("[Regen] asset %s already approved, skipping rewrite", asset.ID)
		return nil
	case types.AssetLowScore:
		if err := s.store.UpdateAssetStatus(ctx, asset.ID, types.AssetLowScore, types.AssetRegenerating); err != nil {
			return err
		}
		if err := s.store.SetRegenAttempts(ctx, asset.ID, payload.AttemptNumber-1, payload.AttemptNumber); err != nil {
			return err
		}
	case types.AssetRegenerating:
		// Resuming a retried attempt; the counter was already advanced.
		if asset.RegenAttempts != payload.AttemptNumber {
			s.logger.Printf("[Regen] asset %s regenerating at attempt %d, dropping stale attempt %d", asset.ID, asset.RegenAttempts, payload.AttemptNumber)
			return nil
		}
	default:
		s.logger.Printf("[Regen] asset %s is %s, skipping rewrite", asset.ID, asset.Status)
		return nil
	}

	if asset.Score == nil {
		return &errs.PreconditionFailed{Entity: "asset", Reason: "rewrite requested before any scoring pass"}
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

	original, err := json.Marshal(asset.Payload)
	if err != nil {
		return fmt.Errorf("failed to serialize payload for rewrite: %w", err)
	}

	template, err := prompts.Get("generation.json", "quality_rewrite")
	if err != nil {
		return err
	}
	prompt := prompts.Format(template, map[string]string{
		"AttemptNumber":   fmt.Sprintf("%d", payload.AttemptNumber),
		"OriginalContent": string(original),
		"OverallScore":    fmt.Sprintf("%d", asset.Score.Quality.Overall),
		"MinScore":        fmt.Sprintf("%d", s.minScore),
		"ScoreBreakdown":  formatBreakdown(asset.Score.Quality),
		"Suggestions":     formatSuggestions(asset.Score),
		"BrandTone":       strings.Join(brand.Tone, ", "),
		"BannedWords":     strings.Join(brand.BannedWords, ", "),
		"VoiceExamples":   formatVoiceExamples(brand.VoiceExamples),
		"ValueProp":       offer.ValueProp,
		"CTASoft":         offer.CTAs.Soft,
		"CTAHard":         offer.CTAs.Hard,
	})

	raw, err := s.llm.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return err
	}

	var result rewriteResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return &errs.ValidationError{Subject: "rewrite output", Cause: err}
	}
	if len(result.RewrittenContent) == 0 {
		return &errs.ValidationError{Subject: "rewrite output", Fields: []errs.FieldError{
			{Field: "rewrittenContent", Message: "missing rewritten content"},
		}}
	}

	rewritten, err := types.DecodePayload(asset.Platform, string(asset.AssetType), result.RewrittenContent)
	if err != nil {
		return &errs.ValidationError{Subject: "rewrite output", Cause: err}
	}

	if err := s.store.ReplaceAssetPayload(ctx, asset.ID, rewritten, asset.Version); err != nil {
		return err
	}

	s.logger.Printf("[Regen] asset %s rewritten (attempt %d, %d changes)", asset.ID, payload.AttemptNumber, len(result.ChangesApplied))

	_, err = s.queue.Enqueue(ctx, queue.JobScoreAssets, queue.ScoreAssetsPayload{AssetID: asset.ID}, queue.Options{})
	return err
}

func formatBreakdown(card types.Scorecard) string {
	var b strings.Builder
	for _, c := range card.Components {
		if c.Feedback != "" {
			fmt.Fprintf(&b, "- %s: %d (%s)\n", c.Name, c.Score, c.Feedback)
		} else {
			fmt.Fprintf(&b, "- %s: %d\n", c.Name, c.Score)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// formatSuggestions merges quality suggestions with the risk gate's
// safer rewrites so one pass can fix both.
func formatSuggestions(score *types.AssetScore) string {
	var lines []string
	for _, s := range score.Quality.Suggestions {
		lines = append(lines, "- "+s)
	}
	for _, s := range score.Risk.SuggestedRewrites {
		lines = append(lines, "- "+s)
	}
	if len(lines) == 0 {
		return "- Raise the weakest scoring components"
	}
	return strings.Join(lines, "\n")
}

func formatVoiceExamples(examples map[string]string) string {
	if len(examples) == 0 {
		return "(none provided)"
	}
	keys := make([]string, 0, len(examples))
	for k := range examples {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, examples[k])
	}
	return strings.Join(parts, " | ")
}
