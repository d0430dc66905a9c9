package scoring

import (
	"fmt"
	"strings"

	"github.com/jonathan/viral-factory/internal/types"
)

// Component weights for the overall score. Skimmability and watch-time
// design are mutually exclusive per asset, so exactly one of the two
// 0.10 weights applies.
const (
	hookStrengthWeight = 0.25
	noveltyWeight      = 0.15
	specificityWeight  = 0.15
	skimmabilityWeight = 0.10
	watchTimeWeight    = 0.10
	ctaAlignmentWeight = 0.15
	brandVoiceWeight   = 0.10
)

// DefaultMinScore is the pass threshold when none is configured.
const DefaultMinScore = 70

// Context carries everything the scorer needs besides the content itself.
type Context struct {
	Hook     string
	CTA      string
	Topic    string
	Audience string
	Offer    types.Offer
	Brand    types.Brand
	Platform types.Platform
}

// Calculate computes the full quality scorecard for content under ctx.
// minScore <= 0 uses DefaultMinScore. Suggestions are populated only when
// regeneration is required, one message per failing component.
func Calculate(content string, ctx Context, minScore int) types.Scorecard {
	if minScore <= 0 {
		minScore = DefaultMinScore
	}

	var components []types.ScoreComponent
	var suggestions []string

	hookScore, breakdown := ScoreHook(ctx.Hook, ctx.Topic, ctx.Audience)
	components = append(components, types.ScoreComponent{
		Name:   "Hook Strength",
		Score:  hookScore,
		Weight: hookStrengthWeight,
		Feedback: fmt.Sprintf("Clarity: %d, Curiosity: %d, Relevance: %d",
			breakdown.Clarity, breakdown.Curiosity, breakdown.Relevance),
	})
	if hookScore < 60 {
		suggestions = append(suggestions, "Strengthen hook with more curiosity triggers or specific numbers")
	}

	noveltyScore := ScoreNovelty(content)
	components = append(components, types.ScoreComponent{
		Name:   "Novelty",
		Score:  noveltyScore,
		Weight: noveltyWeight,
	})
	if noveltyScore < 50 {
		suggestions = append(suggestions, "Add a contrarian angle or fresh perspective")
	}

	specScore, hasNumbers, hasExamples, hasSteps := ScoreSpecificity(content)
	components = append(components, types.ScoreComponent{
		Name:     "Specificity",
		Score:    specScore,
		Weight:   specificityWeight,
		Feedback: fmt.Sprintf("Numbers: %t, Examples: %t, Steps: %t", hasNumbers, hasExamples, hasSteps),
	})
	if specScore < 60 {
		suggestions = append(suggestions, "Add specific numbers, examples, or concrete steps")
	}

	if ctx.Platform.IsVideo() {
		components = append(components, types.ScoreComponent{
			Name:   "Watch Time Design",
			Score:  ScoreWatchTimeDesign(content),
			Weight: watchTimeWeight,
		})
	} else {
		components = append(components, types.ScoreComponent{
			Name:   "Skimmability",
			Score:  ScoreSkimmability(content),
			Weight: skimmabilityWeight,
		})
	}

	ctaScore := ScoreCTAAlignment(ctx.CTA, ctx.Offer)
	components = append(components, types.ScoreComponent{
		Name:   "CTA Alignment",
		Score:  ctaScore,
		Weight: ctaAlignmentWeight,
	})
	if ctaScore < 60 {
		suggestions = append(suggestions, "Align CTA more closely with offer value proposition")
	}

	brandScore, violations := ScoreBrandVoice(content, ctx.Brand)
	components = append(components, types.ScoreComponent{
		Name:     "Brand Voice",
		Score:    brandScore,
		Weight:   brandVoiceWeight,
		Feedback: strings.Join(violations, "; "),
	})
	if len(violations) > 0 {
		suggestions = append(suggestions, "Remove banned words or adjust tone to match brand voice")
	}

	weighted := 0.0
	for _, c := range components {
		weighted += float64(c.Score) * c.Weight
	}
	overall := clamp(roundInt(weighted))

	passed := overall >= minScore
	card := types.Scorecard{
		Overall:              overall,
		Components:           components,
		Passed:               passed,
		RequiresRegeneration: !passed,
	}
	if card.RequiresRegeneration {
		card.Suggestions = suggestions
	} else {
		card.Suggestions = []string{}
	}
	return card
}
