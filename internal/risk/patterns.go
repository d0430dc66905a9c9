// Package risk classifies content for sensitive or unverifiable claims
// and decides whether manual review is required before publishing.
// Like the scorer, every function is pure and deterministic.
package risk

import (
	"regexp"

	"github.com/jonathan/viral-factory/internal/types"
)

// Flag types.
const (
	TypeMedicalClaim    = "medical_claim"
	TypeLegalClaim      = "legal_claim"
	TypeFinancialClaim  = "financial_claim"
	TypePolitical       = "political"
	TypeUnverifiedStat  = "unverified_stat"
	TypeAbsolutePromise = "absolute_promise"
	TypeBannedWord      = "banned_word"
	TypeSensitiveTopic  = "sensitive_topic"
)

// patternGroup is a family of claim patterns sharing a type and severity.
type patternGroup struct {
	flagType string
	patterns []*regexp.Regexp
	severity types.RiskSeverity
}

var sensitivePatterns = []patternGroup{
	{
		flagType: TypeMedicalClaim,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(cure[sd]?|heal[sd]?|treat[sd]?|prevent[sd]?)\s+(your\s+)?(cancer|diabetes|disease|illness|condition)`),
			regexp.MustCompile(`(?i)\b(doctor|physician|medical)\s+(recommended|approved|endorsed)`),
			regexp.MustCompile(`(?i)\b(clinically\s+proven|scientifically\s+proven)\b`),
			regexp.MustCompile(`(?i)\blose\s+\d+\s+(pounds?|lbs?|kg)\s+(in|within)\s+\d+\s+(days?|weeks?)`),
		},
		severity: types.SeverityCritical,
	},
	{
		flagType: TypeLegalClaim,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(legal\s+advice|not\s+legal\s+advice)\b`),
			regexp.MustCompile(`(?i)\b(lawsuit|sue|attorney|lawyer)\s+(guaranteed|promise)`),
			regexp.MustCompile(`(?i)\b(100%\s+legal|completely\s+legal|totally\s+legal)\b`),
		},
		severity: types.SeverityCritical,
	},
	{
		flagType: TypeFinancialClaim,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bguaranteed\s+(returns?|income|profit)\b`),
			regexp.MustCompile(`(?i)\bmake\s+\$?\d+[k,]*\s+(per|a)\s+(day|week|month)\b`),
			regexp.MustCompile(`(?i)\bget\s+rich\s+(quick|fast)\b`),
			regexp.MustCompile(`(?i)\bfinancial\s+freedom\s+in\s+\d+\s+(days?|weeks?|months?)\b`),
			regexp.MustCompile(`(?i)\bpassive\s+income\s+guaranteed\b`),
		},
		severity: types.SeverityCritical,
	},
	{
		flagType: TypeUnverifiedStat,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b\d+%\s+of\s+(people|users|customers|businesses)\b`),
			regexp.MustCompile(`(?i)\b(studies\s+show|research\s+proves|data\s+shows)\b`),
			regexp.MustCompile(`(?i)\baccording\s+to\s+(a\s+)?study\b`),
		},
		severity: types.SeverityWarning,
	},
	{
		flagType: TypeAbsolutePromise,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(guarantee[sd]?|promise[sd]?)\s+(success|results?|viral|growth)`),
			regexp.MustCompile(`(?i)\b100%\s+(success|guaranteed|effective)\b`),
			regexp.MustCompile(`(?i)\b(always\s+works?|never\s+fails?)\b`),
			regexp.MustCompile(`(?i)\bwill\s+(definitely|certainly|absolutely)\s+(work|succeed)\b`),
		},
		severity: types.SeverityWarning,
	},
	{
		flagType: TypePolitical,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(democrat|republican|liberal|conservative)s?\s+(is|are)\s+(wrong|right|bad|good)`),
			regexp.MustCompile(`(?i)\bvote\s+(for|against)\b`),
		},
		severity: types.SeverityWarning,
	},
}

// DefaultBannedWords applies when the brand has no list of its own.
var DefaultBannedWords = []string{
	"guarantee",
	"promise",
	"get rich quick",
	"easy money",
	"100% success",
	"never fail",
	"miracle",
	"secret formula",
}

// DefaultSensitiveTopics applies when no topic list is supplied.
var DefaultSensitiveTopics = []string{"medical", "legal", "financial", "political"}

// flagDescriptions maps flag types to their review guidance.
var flagDescriptions = map[string]string{
	TypeMedicalClaim:    "Contains unverified medical claim that may require professional disclaimer",
	TypeLegalClaim:      "Contains legal claim that may require attorney review",
	TypeFinancialClaim:  "Contains financial promise that may violate FTC guidelines",
	TypePolitical:       "Contains political content that may alienate audience segments",
	TypeUnverifiedStat:  "Contains statistic without verified source citation",
	TypeAbsolutePromise: "Makes absolute promise that cannot be guaranteed",
	TypeBannedWord:      "Contains word from brand's banned list",
	TypeSensitiveTopic:  "Discusses sensitive topic requiring extra care",
}
