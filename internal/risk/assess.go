package risk

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jonathan/viral-factory/internal/types"
)

// Options narrows or extends the default scan lists.
type Options struct {
	BannedWords     []string
	SensitiveTopics []string
	Citations       []types.Citation
}

// claimIndicators are verbs that turn a topic mention into a claim.
var claimIndicators = []string{"is", "are", "will", "can", "should", "must"}

// Assess scans content against the sensitive-claim pattern table, the
// banned-word list and sensitive-topic claims, then aggregates:
// any critical flag, or three or more warnings, fails the gate at high
// risk; one or two warnings pass at medium risk with manual review;
// otherwise low risk, no review.
func Assess(content string, opts Options) types.RiskAssessment {
	bannedWords := opts.BannedWords
	if bannedWords == nil {
		bannedWords = DefaultBannedWords
	}
	sensitiveTopics := opts.SensitiveTopics
	if sensitiveTopics == nil {
		sensitiveTopics = DefaultSensitiveTopics
	}

	var flags []types.RiskFlag
	var rewrites []string
	contentLower := strings.ToLower(content)

	for _, group := range sensitivePatterns {
		for _, pattern := range group.patterns {
			match := pattern.FindString(content)
			if match == "" {
				continue
			}
			flags = append(flags, types.RiskFlag{
				Type:        group.flagType,
				Severity:    group.severity,
				Description: flagDescriptions[group.flagType],
				MatchedText: match,
			})
			if !hasCitation(opts.Citations, match) {
				rewrites = append(rewrites, saferAlternative(group.flagType, match))
			}
		}
	}

	for _, word := range bannedWords {
		if strings.Contains(contentLower, strings.ToLower(word)) {
			flags = append(flags, types.RiskFlag{
				Type:        TypeBannedWord,
				Severity:    types.SeverityWarning,
				Description: fmt.Sprintf("Contains banned word: %q", word),
				MatchedText: word,
			})
			rewrites = append(rewrites, fmt.Sprintf("Remove or replace %q with safer language", word))
		}
	}

	for _, topic := range sensitiveTopics {
		if !strings.Contains(contentLower, strings.ToLower(topic)) {
			continue
		}
		// Only flag when the topic co-occurs with a claim verb
		for _, indicator := range claimIndicators {
			pattern := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(topic) + `\s+` + indicator + `\s+\w+`)
			if pattern.MatchString(content) {
				flags = append(flags, types.RiskFlag{
					Type:        TypeSensitiveTopic,
					Severity:    types.SeverityWarning,
					Description: fmt.Sprintf("Makes claims about sensitive topic: %s", topic),
				})
				break
			}
		}
	}

	criticalCount := 0
	warningCount := 0
	for _, f := range flags {
		if f.Severity == types.SeverityCritical {
			criticalCount++
		} else {
			warningCount++
		}
	}

	assessment := types.RiskAssessment{
		Flags:             flags,
		SuggestedRewrites: rewrites,
	}
	switch {
	case criticalCount > 0:
		assessment.RiskLevel = types.RiskHigh
		assessment.Passed = false
		assessment.RequiresManualReview = true
	case warningCount >= 3:
		assessment.RiskLevel = types.RiskHigh
		assessment.Passed = false
		assessment.RequiresManualReview = true
	case warningCount >= 1:
		assessment.RiskLevel = types.RiskMedium
		assessment.Passed = true
		assessment.RequiresManualReview = true
	default:
		assessment.RiskLevel = types.RiskLow
		assessment.Passed = true
		assessment.RequiresManualReview = false
	}
	return assessment
}

// hasCitation reports whether any verified citation covers the matched
// claim text.
func hasCitation(citations []types.Citation, match string) bool {
	matchLower := strings.ToLower(match)
	for _, c := range citations {
		if strings.Contains(strings.ToLower(c.Claim), matchLower) {
			return true
		}
	}
	return false
}

// saferAlternative suggests a rewrite for a flagged claim.
func saferAlternative(flagType, original string) string {
	switch flagType {
	case TypeMedicalClaim:
		return fmt.Sprintf("Replace %q with experience-based language like \"In my experience...\" or \"Many people find...\"", original)
	case TypeFinancialClaim:
		return fmt.Sprintf("Replace %q with results-may-vary language like \"Potential to earn...\" or \"Results depend on...\"", original)
	case TypeUnverifiedStat:
		return fmt.Sprintf("Either cite source for %q or replace with qualitative language like \"Many people...\" or \"Often...\"", original)
	case TypeAbsolutePromise:
		return fmt.Sprintf("Replace %q with softer language like \"designed to help...\" or \"optimized for...\"", original)
	default:
		return fmt.Sprintf("Consider rephrasing %q with safer language", original)
	}
}
