package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/viral-factory/internal/errs"
	"github.com/jonathan/viral-factory/internal/llm"
	"github.com/jonathan/viral-factory/internal/prompts"
	"github.com/jonathan/viral-factory/internal/queue"
	"github.com/jonathan/viral-factory/internal/types"
)

// HandleGenerateAssets packages one ideation angle into a platform-native
// asset: render the packager prompt, decode the model output into the
// platform's payload shape, persist the asset as DRAFT with its A/B
// variant seeds, and enqueue scoring. A failure here affects only this
// angle; sibling packaging jobs proceed independently.
func (s *Stage) HandleGenerateAssets(ctx context.Context, job queue.Job) error {
	var payload queue.GenerateAssetsPayload
	if err := job.Decode(&payload); err != nil {
		return &errs.ValidationError{Subject: "generateAssets payload", Cause: err}
	}

	batch, err := s.store.GetBatch(ctx, payload.BatchID)
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

	template, err := prompts.Get("generation.json", "platform_packager")
	if err != nil {
		return err
	}
	prompt := prompts.Format(template, map[string]string{
		"Platform":     string(payload.Platform),
		"BrandName":    brand.Name,
		"BrandTone":    strings.Join(brand.Tone, ", "),
		"BannedWords":  strings.Join(brand.BannedWords, ", "),
		"OfferName":    offer.Name,
		"OfferURL":     offer.URL,
		"ValueProp":    offer.ValueProp,
		"CTASoft":      offer.CTAs.Soft,
		"CTAHard":      offer.CTAs.Hard,
		"AngleDetails": formatAngle(payload.Angle),
	})

	raw, err := s.llm.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return err
	}

	assetPayload, err := decodePlatformPayload(payload.Platform, raw)
	if err != nil {
		return err
	}

	asset := &types.Asset{
		ID:        uuid.New(),
		BatchID:   batch.ID,
		Platform:  payload.Platform,
		AssetType: assetPayload.Kind(),
		Payload:   assetPayload,
		Status:    types.AssetDraft,
		Version:   1,
	}
	if err := s.store.CreateAsset(ctx, asset); err != nil {
		return err
	}

	for _, seed := range assetPayload.VariantOptions() {
		variant := &types.Variant{
			ID:             uuid.New(),
			AssetID:        asset.ID,
			VariantKey:     seed.Key,
			VariantPayload: seed.Payload,
		}
		if err := s.store.CreateVariant(ctx, variant); err != nil {
			return err
		}
	}

	if _, err := s.queue.Enqueue(ctx, queue.JobScoreAssets, queue.ScoreAssetsPayload{AssetID: asset.ID}, queue.Options{}); err != nil {
		return fmt.Errorf("failed to enqueue scoring for asset %s: %w", asset.ID, err)
	}

	s.logger.Printf("[Generation] batch %s angle %d: created %s asset %s", batch.ID, payload.AngleIndex, payload.Platform, asset.ID)
	return nil
}

// decodePlatformPayload sniffs the Instagram type discriminator and
// decodes the raw model output into the payload union. A shape mismatch
// is a validation failure, not a transient one.
func decodePlatformPayload(platform types.Platform, raw string) (types.Payload, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal([]byte(raw), &head); err != nil {
		return types.Payload{}, &errs.ValidationError{Subject: "platform payload", Cause: err}
	}
	decoded, err := types.DecodePayload(platform, head.Type, []byte(raw))
	if err != nil {
		return types.Payload{}, &errs.ValidationError{Subject: "platform payload", Cause: err}
	}
	if decoded.IsZero() {
		return types.Payload{}, &errs.ValidationError{Subject: "platform payload", Fields: []errs.FieldError{
			{Field: "platform", Message: fmt.Sprintf("no payload shape for platform %q", platform)},
		}}
	}
	return decoded, nil
}

func formatAngle(angle queue.IdeationAngle) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Angle: %s\n", angle.Angle)
	fmt.Fprintf(&b, "Hook formula used: %s\n", angle.FormulaUsed)
	b.WriteString("Hook variants:\n")
	for _, hook := range angle.HookVariants {
		fmt.Fprintf(&b, "- %s\n", hook)
	}
	return strings.TrimRight(b.String(), "\n")
}
