// Package scoring computes the quality scorecard for generated content.
// Every function here is pure: fixed input and fixed weights always
// produce the same output, with no I/O and no randomness.
package scoring

import (
	"regexp"
	"strings"
)

// HookBreakdown reports the three sub-signals of hook strength.
type HookBreakdown struct {
	Clarity   int
	Curiosity int
	Relevance int
}

var (
	startsCapital  = regexp.MustCompile(`^[A-Z]`)
	endsPunctuated = regexp.MustCompile(`[.!?]$`)
	hasDigits      = regexp.MustCompile(`\d+`)
)

// curiosityTriggers are words that reliably open an information gap.
var curiosityTriggers = []string{
	"secret", "truth", "mistake", "why", "how", "what if",
	"never", "always", "stop", "start", "hidden", "revealed",
	"shocking", "surprising", "unexpected", "finally",
}

// ScoreHook scores a hook line against the batch topic and audience.
// Returns the rounded mean of the three sub-signals plus the breakdown.
func ScoreHook(hook, topic, audience string) (int, HookBreakdown) {
	clarity := 50
	curiosity := 50
	relevance := 50

	// Clarity: concise, simply punctuated, well-formed
	if len(hook) <= 100 {
		clarity += 20
	}
	if len(strings.Fields(hook)) <= 15 {
		clarity += 10
	}
	if strings.Count(hook, ",") <= 1 {
		clarity += 10
	}
	if startsCapital.MatchString(hook) {
		clarity += 5
	}
	if endsPunctuated.MatchString(hook) {
		clarity += 5
	}

	hookLower := strings.ToLower(hook)
	for _, trigger := range curiosityTriggers {
		if strings.Contains(hookLower, trigger) {
			curiosity += 5
		}
	}
	if hasDigits.MatchString(hook) {
		curiosity += 10
	}
	// Open loops
	if strings.Contains(hookLower, "...") || strings.Contains(hookLower, "but") {
		curiosity += 5
	}

	for _, word := range strings.Fields(strings.ToLower(topic)) {
		if len(word) > 3 && strings.Contains(hookLower, word) {
			relevance += 10
		}
	}
	for _, word := range strings.Fields(strings.ToLower(audience)) {
		if len(word) > 3 && strings.Contains(hookLower, word) {
			relevance += 5
		}
	}

	breakdown := HookBreakdown{
		Clarity:   clamp(clarity),
		Curiosity: clamp(curiosity),
		Relevance: clamp(relevance),
	}
	score := roundInt(float64(breakdown.Clarity+breakdown.Curiosity+breakdown.Relevance) / 3.0)
	return score, breakdown
}

// clamp bounds a component score to [0,100].
func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// roundInt rounds half away from zero for non-negative inputs.
func roundInt(f float64) int {
	return int(f + 0.5)
}
