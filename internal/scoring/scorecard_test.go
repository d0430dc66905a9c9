package scoring

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/viral-factory/internal/types"
)

func strongContext() Context {
	return Context{
		Hook:     "5 mistakes killing your growth",
		CTA:      "Comment GUIDE to get the free checklist today",
		Topic:    "growth mistakes founders make",
		Audience: "startup founders",
		Offer: types.Offer{
			Name:      "Growth Checklist",
			ValueProp: "a free checklist to fix growth mistakes",
		},
		Brand:    types.Brand{Name: "Calm Founders"},
		Platform: types.PlatformInstagram,
	}
}

const strongContent = `Most people think growth is about posting more. The truth is...

Step 1. Audit your last 10 posts. For example, cut any hook over 12 words. Then, rewrite the weakest 3.`

func componentByName(t *testing.T, card types.Scorecard, name string) types.ScoreComponent {
	t.Helper()
	for _, c := range card.Components {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("no component named %q", name)
	return types.ScoreComponent{}
}

func TestCalculateStrongContentPasses(t *testing.T) {
	card := Calculate(strongContent, strongContext(), DefaultMinScore)

	assert.GreaterOrEqual(t, card.Overall, 70)
	assert.True(t, card.Passed)
	assert.False(t, card.RequiresRegeneration)
	assert.Empty(t, card.Suggestions)

	hook := componentByName(t, card, "Hook Strength")
	assert.Greater(t, hook.Score, 60)
	assert.Contains(t, hook.Feedback, "Clarity:")
}

func TestCalculateVideoPlatformUsesWatchTime(t *testing.T) {
	card := Calculate(strongContent, strongContext(), DefaultMinScore)

	componentByName(t, card, "Watch Time Design")
	for _, c := range card.Components {
		assert.NotEqual(t, "Skimmability", c.Name)
	}
}

func TestCalculateTextPlatformUsesSkimmability(t *testing.T) {
	ctx := strongContext()
	ctx.Platform = types.PlatformLinkedIn

	card := Calculate(strongContent, ctx, DefaultMinScore)

	componentByName(t, card, "Skimmability")
	for _, c := range card.Components {
		assert.NotEqual(t, "Watch Time Design", c.Name)
	}
}

func TestCalculateSuggestionsOnlyWhenFailing(t *testing.T) {
	failing := Calculate(strongContent, strongContext(), 95)
	require.True(t, failing.RequiresRegeneration)
	assert.NotEmpty(t, failing.Suggestions)

	passing := Calculate(strongContent, strongContext(), 1)
	require.False(t, passing.RequiresRegeneration)
	assert.Empty(t, passing.Suggestions)
}

func TestCalculateWeakContentSuggestsFixes(t *testing.T) {
	ctx := Context{
		Hook:     "a post",
		CTA:      "maybe check it out if you want, whenever",
		Topic:    "growth",
		Audience: "founders",
		Brand:    types.Brand{BannedWords: []string{"hustle"}},
		Platform: types.PlatformLinkedIn,
	}
	card := Calculate("hustle harder every single day", ctx, DefaultMinScore)

	require.True(t, card.RequiresRegeneration)
	assert.Contains(t, card.Suggestions, "Remove banned words or adjust tone to match brand voice")
	assert.Contains(t, card.Suggestions, "Add specific numbers, examples, or concrete steps")
}

func TestCalculateBoundsHold(t *testing.T) {
	// Stack every bonus the scorers know about; nothing may leave [0,100].
	loaded := strings.Repeat("secret truth mistake why how never always stop hidden revealed shocking surprising finally ", 3) +
		"unpopular opinion most people think everyone says the truth is what nobody tells you counter-intuitive contrary to actually the real reason " +
		"new approach different way unconventional reframe rethink overlooked " +
		"Step 1. For example... 99% - bullet\n\n\n\n"
	ctx := strongContext()
	ctx.Hook = loaded
	ctx.CTA = loaded

	for _, content := range []string{"", loaded} {
		card := Calculate(content, ctx, DefaultMinScore)
		assert.GreaterOrEqual(t, card.Overall, 0)
		assert.LessOrEqual(t, card.Overall, 100)
		for _, c := range card.Components {
			assert.GreaterOrEqual(t, c.Score, 0, c.Name)
			assert.LessOrEqual(t, c.Score, 100, c.Name)
		}
	}
}

func TestCalculateIsDeterministic(t *testing.T) {
	first := Calculate(strongContent, strongContext(), DefaultMinScore)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Calculate(strongContent, strongContext(), DefaultMinScore))
	}
}

func TestCalculateZeroMinScoreUsesDefault(t *testing.T) {
	byDefault := Calculate(strongContent, strongContext(), 0)
	explicit := Calculate(strongContent, strongContext(), DefaultMinScore)
	assert.Equal(t, explicit.Passed, byDefault.Passed)
	assert.Equal(t, explicit.Overall, byDefault.Overall)
}
