package generation

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/viral-factory/internal/errs"
	"github.com/jonathan/viral-factory/internal/queue"
	"github.com/jonathan/viral-factory/internal/types"
)

func packagingJob(t *testing.T, fx *stageFixture, platform types.Platform) queue.Job {
	t.Helper()
	return makeJob(t, queue.JobGenerateAssets, queue.GenerateAssetsPayload{
		BatchID:    fx.batch.ID,
		AngleIndex: 0,
		Platform:   platform,
		Angle: queue.IdeationAngle{
			Angle:        "plan the night before",
			HookVariants: []string{"Stop planning at 9am", "Your morning starts at 9pm", "The 9pm planning rule"},
			Platform:     platform,
			FormulaUsed:  "do-this-not-that",
		},
	})
}

func TestHandleGenerateAssetsCreatesDraftWithVariants(t *testing.T) {
	fx := newStageFixture(t, []types.Platform{types.PlatformTikTok})
	fx.llm.response = `{
		"platform": "TIKTOK",
		"scriptLong": {"hook": "Stop planning at 9am", "mainContent": [{"timestamp": "0-3s", "dialogue": "Here is the fix"}], "cta": "Comment FOCUS"},
		"scriptShort": {"duration": "12s", "hook": "Stop planning at 9am", "mainPoint": "Plan at night", "cta": "Comment FOCUS"},
		"hookOptions": ["Stop planning at 9am", "Your morning starts at 9pm"],
		"shotList": [{"shot": "talking head", "description": "desk", "duration": "3s"}],
		"bRollSuggestions": ["notebook closeup"],
		"caption": "Planning happens the night before.",
		"hashtags": ["#founders"]
	}`

	err := fx.stage.HandleGenerateAssets(context.Background(), packagingJob(t, fx, types.PlatformTikTok))
	require.NoError(t, err)

	assets, err := fx.store.ListAssetsByBatch(context.Background(), fx.batch.ID)
	require.NoError(t, err)
	require.Len(t, assets, 1)
	asset := assets[0]
	assert.Equal(t, types.AssetDraft, asset.Status)
	assert.Equal(t, 1, asset.Version)
	assert.Equal(t, types.AssetTypeTikTokScript, asset.AssetType)
	require.NotNil(t, asset.Payload.TikTok)
	assert.Equal(t, "Stop planning at 9am", asset.Payload.Hook())

	variants, err := fx.store.ListVariantsByAsset(context.Background(), asset.ID)
	require.NoError(t, err)
	require.Len(t, variants, 2)
	keys := []string{variants[0].VariantKey, variants[1].VariantKey}
	assert.ElementsMatch(t, []string{"hook_a", "hook_b"}, keys)

	require.Len(t, fx.queue.jobs, 1)
	assert.Equal(t, queue.JobScoreAssets, fx.queue.jobs[0].Type)
	var scorePayload queue.ScoreAssetsPayload
	require.NoError(t, json.Unmarshal(fx.queue.jobs[0].Payload, &scorePayload))
	assert.Equal(t, asset.ID, scorePayload.AssetID)
}

func TestHandleGenerateAssetsInstagramCarouselDiscriminator(t *testing.T) {
	fx := newStageFixture(t, []types.Platform{types.PlatformInstagram})
	fx.llm.response = `{
		"platform": "INSTAGRAM",
		"type": "CAROUSEL",
		"slides": [{"slideNumber": 1, "headline": "Stop planning at 9am", "body": "Do it at 9pm", "visualDirection": "bold text"}],
		"captionLong": "Long caption",
		"captionShort": "Save this",
		"hashtagsBroad": ["#productivity"],
		"hashtagsMid": ["#founderlife"],
		"hashtagsNiche": ["#solofounder"],
		"altText": "carousel",
		"coverTextOptions": ["Plan at night", "The 9pm rule"]
	}`

	err := fx.stage.HandleGenerateAssets(context.Background(), packagingJob(t, fx, types.PlatformInstagram))
	require.NoError(t, err)

	assets, err := fx.store.ListAssetsByBatch(context.Background(), fx.batch.ID)
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, types.AssetTypeCarousel, assets[0].AssetType)
	require.NotNil(t, assets[0].Payload.Carousel)
}

func TestHandleGenerateAssetsMalformedOutput(t *testing.T) {
	fx := newStageFixture(t, []types.Platform{types.PlatformTikTok})
	fx.llm.response = `not json at all`

	err := fx.stage.HandleGenerateAssets(context.Background(), packagingJob(t, fx, types.PlatformTikTok))
	var ve *errs.ValidationError
	require.ErrorAs(t, err, &ve)

	assets, lerr := fx.store.ListAssetsByBatch(context.Background(), fx.batch.ID)
	require.NoError(t, lerr)
	assert.Empty(t, assets)
	assert.Empty(t, fx.queue.jobs)
}

func TestHandleGenerateAssetsPromptNamesPlatformAndCTAs(t *testing.T) {
	fx := newStageFixture(t, []types.Platform{types.PlatformLinkedIn})
	fx.llm.response = `{
		"platform": "LINKEDIN",
		"authorityPost": {"firstLine": "Most founders plan wrong.", "body": "Here is the fix.", "takeaways": ["plan at night"], "cta": "Comment FOCUS for the playbook"},
		"hashtags": ["#founders"],
		"repurposeSummary": "night planning"
	}`

	err := fx.stage.HandleGenerateAssets(context.Background(), packagingJob(t, fx, types.PlatformLinkedIn))
	require.NoError(t, err)

	require.Len(t, fx.llm.prompts, 1)
	prompt := fx.llm.prompts[0]
	assert.Contains(t, prompt, "LINKEDIN")
	assert.Contains(t, prompt, "Save this for later")
	assert.Contains(t, prompt, "Comment FOCUS for the playbook")
	assert.Contains(t, prompt, "plan the night before")
	assert.NotContains(t, prompt, "{{.")
}
