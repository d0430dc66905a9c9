package scoring

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jonathan/viral-factory/internal/types"
)

var (
	examplePattern = regexp.MustCompile(`(?i)for example|e\.g\.|such as|like when`)
	stepPattern    = regexp.MustCompile(`(?i)step \d|first,|second,|then,|next,|\d\.`)
	bulletPattern  = regexp.MustCompile(`[-•*]\s`)
)

// ScoreSpecificity rewards numerals, examples and concrete steps.
func ScoreSpecificity(content string) (score int, hasNumbers, hasExamples, hasSteps bool) {
	score = 50
	hasNumbers = hasDigits.MatchString(content)
	hasExamples = examplePattern.MatchString(content)
	hasSteps = stepPattern.MatchString(content)

	if hasNumbers {
		score += 20
	}
	if hasExamples {
		score += 15
	}
	if hasSteps {
		score += 15
	}
	return clamp(score), hasNumbers, hasExamples, hasSteps
}

// contrarianPhrases signal a challenge to conventional wisdom.
var contrarianPhrases = []string{
	"unpopular opinion",
	"most people think",
	"everyone says",
	"the truth is",
	"what nobody tells you",
	"counter-intuitive",
	"contrary to",
	"actually",
	"the real reason",
}

// freshIndicators signal a new perspective on an old topic.
var freshIndicators = []string{
	"new approach",
	"different way",
	"unconventional",
	"reframe",
	"rethink",
	"overlooked",
}

// ScoreNovelty rewards contrarian angles and fresh perspectives.
func ScoreNovelty(content string) int {
	score := 50
	contentLower := strings.ToLower(content)
	for _, phrase := range contrarianPhrases {
		if strings.Contains(contentLower, phrase) {
			score += 10
		}
	}
	for _, indicator := range freshIndicators {
		if strings.Contains(contentLower, indicator) {
			score += 8
		}
	}
	return clamp(score)
}

// ScoreSkimmability scores text-platform content on paragraph breaks,
// bullets and overall length.
func ScoreSkimmability(content string) int {
	score := 50
	if strings.Count(content, "\n\n")+1 >= 3 {
		score += 15
	}
	if bulletPattern.MatchString(content) {
		score += 20
	}
	if len(content) < 2000 {
		score += 15
	}
	return clamp(score)
}

// ScoreWatchTimeDesign scores video-platform content for open loops that
// hold attention through the script.
func ScoreWatchTimeDesign(content string) int {
	if strings.Contains(content, "...") || strings.Contains(content, "but") {
		return 70
	}
	return 50
}

// actionWords indicate a directive call-to-action.
var actionWords = []string{
	"get", "grab", "download", "join", "start", "try",
	"discover", "learn", "comment", "dm", "click", "follow",
}

// genuineUrgency words add urgency without overpromising.
var genuineUrgency = []string{"now", "today", "limited", "free"}

// weakIndicators dilute a call-to-action.
var weakIndicators = []string{"maybe", "if you want", "whenever", "sometime"}

// ScoreCTAAlignment scores how well a CTA matches the offer's value
// proposition.
func ScoreCTAAlignment(cta string, offer types.Offer) int {
	score := 50
	ctaLower := strings.ToLower(cta)

	for _, word := range actionWords {
		if strings.Contains(ctaLower, word) {
			score += 5
		}
	}
	for _, word := range strings.Fields(strings.ToLower(offer.ValueProp)) {
		if len(word) > 4 && strings.Contains(ctaLower, word) {
			score += 5
		}
	}
	for _, word := range genuineUrgency {
		if strings.Contains(ctaLower, word) {
			score += 5
		}
	}
	for _, phrase := range weakIndicators {
		if strings.Contains(ctaLower, phrase) {
			score -= 10
		}
	}
	return clamp(score)
}

// casualIndicators clash with a professional tone.
var casualIndicators = []string{"lol", "omg", "wtf", "tbh", "ngl"}

// coldIndicators clash with a friendly tone.
var coldIndicators = []string{"must", "required", "mandatory", "failure"}

// ScoreBrandVoice penalizes banned words and tone mismatches. Returns the
// score plus human-readable violations for component feedback.
func ScoreBrandVoice(content string, brand types.Brand) (int, []string) {
	score := 80
	var violations []string
	contentLower := strings.ToLower(content)

	for _, word := range brand.BannedWords {
		if strings.Contains(contentLower, strings.ToLower(word)) {
			score -= 15
			violations = append(violations, fmt.Sprintf("Contains banned word: %q", word))
		}
	}

	hasTone := func(tone string) bool {
		for _, t := range brand.Tone {
			if strings.EqualFold(t, tone) {
				return true
			}
		}
		return false
	}

	if hasTone("professional") {
		for _, indicator := range casualIndicators {
			if strings.Contains(contentLower, indicator) {
				score -= 5
				violations = append(violations, fmt.Sprintf("Too casual for professional tone: %q", indicator))
			}
		}
	}
	if hasTone("friendly") {
		for _, indicator := range coldIndicators {
			if strings.Contains(contentLower, indicator) {
				score -= 3
			}
		}
	}

	return clamp(score), violations
}
