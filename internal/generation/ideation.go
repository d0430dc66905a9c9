// Package generation holds the two content-production stages: ideation,
// which turns a batch brief into platform-targeted angles, and packaging,
// which turns one angle into a complete platform-native asset.
package generation

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/jonathan/viral-factory/internal/errs"
	"github.com/jonathan/viral-factory/internal/hooks"
	"github.com/jonathan/viral-factory/internal/llm"
	"github.com/jonathan/viral-factory/internal/pipeline"
	"github.com/jonathan/viral-factory/internal/prompts"
	"github.com/jonathan/viral-factory/internal/queue"
	"github.com/jonathan/viral-factory/internal/retrieval"
	"github.com/jonathan/viral-factory/internal/store"
	"github.com/jonathan/viral-factory/internal/types"
)

const vaultTopK = 10

// Stage wires the generation handlers to their collaborators.
type Stage struct {
	store     store.Store
	queue     queue.Queue
	llm       llm.Client
	retriever retrieval.Retriever
	logger    *log.Logger
}

// NewStage builds the generation stage.
func NewStage(st store.Store, q queue.Queue, client llm.Client, retriever retrieval.Retriever, logger *log.Logger) *Stage {
	return &Stage{store: st, queue: q, llm: client, retriever: retriever, logger: logger}
}

// HandleGenerateIdeas runs ideation for one batch: move the batch to
// GENERATING, ask the model for angles grounded in vault context and
// trends, then fan out one packaging job per angle. Any failure after the
// status change marks the batch FAILED and is not retried; the batch must
// be resubmitted.
func (s *Stage) HandleGenerateIdeas(ctx context.Context, job queue.Job) error {
	var payload queue.GenerateIdeasPayload
	if err := job.Decode(&payload); err != nil {
		return &errs.ValidationError{Subject: "generateIdeas payload", Cause: err}
	}

	batch, err := s.store.GetBatch(ctx, payload.BatchID)
	if err != nil {
		return err
	}
	if err := pipeline.CheckBatch(batch.Status, types.BatchGenerating); err != nil {
		return err
	}
	if err := s.store.UpdateBatchStatus(ctx, batch.ID, batch.Status, types.BatchGenerating); err != nil {
		return err
	}

	out, err := s.ideate(ctx, batch)
	if err != nil {
		s.logger.Printf("[Generation] ideation failed for batch %s: %v", batch.ID, err)
		if ferr := s.store.UpdateBatchStatus(ctx, batch.ID, types.BatchGenerating, types.BatchFailed); ferr != nil {
			s.logger.Printf("[Generation] could not mark batch %s failed: %v", batch.ID, ferr)
		}
		if errs.IsRetryable(err) {
			return errs.Permanent(err)
		}
		return err
	}

	for i, angle := range out.Angles {
		_, err := s.queue.Enqueue(ctx, queue.JobGenerateAssets, queue.GenerateAssetsPayload{
			BatchID:    batch.ID,
			AngleIndex: i,
			Platform:   angle.Platform,
			Angle:      angle,
		}, queue.Options{})
		if err != nil {
			return fmt.Errorf("failed to enqueue packaging for angle %d: %w", i, err)
		}
	}

	s.logger.Printf("[Generation] batch %s: %d angles, %d citations", batch.ID, len(out.Angles), len(out.Citations))
	return nil
}

func (s *Stage) ideate(ctx context.Context, batch *types.Batch) (*IdeationOutput, error) {
	brand, err := s.store.GetBrand(ctx, batch.BrandID)
	if err != nil {
		return nil, err
	}
	offer, err := s.store.GetOffer(ctx, batch.OfferID)
	if err != nil {
		return nil, err
	}

	snippets, err := s.retriever.Retrieve(ctx, batch.Brief, vaultTopK)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve vault context: %w", err)
	}

	var trends []types.TrendCard
	now := time.Now()
	for _, platform := range batch.Platforms {
		cards, err := s.store.ListActiveTrendCards(ctx, platform, now)
		if err != nil {
			return nil, err
		}
		trends = append(trends, cards...)
	}

	template, err := prompts.Get("generation.json", "viral_ideation")
	if err != nil {
		return nil, err
	}
	prompt := prompts.Format(template, map[string]string{
		"BrandName":     brand.Name,
		"BrandTone":     strings.Join(brand.Tone, ", "),
		"BannedWords":   strings.Join(brand.BannedWords, ", "),
		"VoiceExamples": formatVoiceExamples(brand.VoiceExamples),
		"Topic":         batch.Brief,
		"OfferName":     offer.Name,
		"ValueProp":     offer.ValueProp,
		"Audience":      offer.Audience,
		"Platforms":     joinPlatforms(batch.Platforms),
		"VaultContext":  formatSnippets(snippets),
		"TrendCards":    formatTrendCards(trends),
		"HookFormulas":  formatFormulas(batch.Platforms),
	})

	raw, err := s.llm.GenerateJSON(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return nil, err
	}
	return parseIdeation(raw)
}

func joinPlatforms(platforms []types.Platform) string {
	names := make([]string, len(platforms))
	for i, p := range platforms {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
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
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "- %s: %s\n", k, examples[k])
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatSnippets(snippets []retrieval.Snippet) string {
	if len(snippets) == 0 {
		return "(no vault context available)"
	}
	var b strings.Builder
	for _, sn := range snippets {
		fmt.Fprintf(&b, "- [%s] %s\n", sn.SourceRef, sn.Text)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatTrendCards(cards []types.TrendCard) string {
	if len(cards) == 0 {
		return "(no active trends)"
	}
	var b strings.Builder
	for _, c := range cards {
		if c.Angle != "" {
			fmt.Fprintf(&b, "- [%s] %s (%s)\n", c.Platform, c.Phrase, c.Angle)
		} else {
			fmt.Fprintf(&b, "- [%s] %s\n", c.Platform, c.Phrase)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatFormulas(platforms []types.Platform) string {
	var b strings.Builder
	for _, platform := range platforms {
		fmt.Fprintf(&b, "%s:\n", platform)
		for _, f := range hooks.ForPlatform(platform) {
			fmt.Fprintf(&b, "  - %s: %s\n", f.ID, f.Template)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
