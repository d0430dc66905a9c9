package types

import "time"

// ScoreComponent is one weighted signal of the quality scorecard.
type ScoreComponent struct {
	Name     string  `json:"name"`
	Score    int     `json:"score"`  // 0-100
	Weight   float64 `json:"weight"` // 0-1
	Feedback string  `json:"feedback,omitempty"`
}

// Scorecard is the weighted-component quality score for one payload.
type Scorecard struct {
	Overall              int              `json:"overall"`
	Components           []ScoreComponent `json:"components"`
	Passed               bool             `json:"passed"`
	RequiresRegeneration bool             `json:"requires_regeneration"`
	Suggestions          []string         `json:"suggestions"`
}

// RiskSeverity classifies a risk flag.
type RiskSeverity string

// Risk severities.
const (
	SeverityWarning  RiskSeverity = "warning"
	SeverityCritical RiskSeverity = "critical"
)

// RiskLevel is the aggregate risk classification.
type RiskLevel string

// Risk levels.
const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// RiskFlag is one detected risk signal.
type RiskFlag struct {
	Type        string       `json:"type"`
	Severity    RiskSeverity `json:"severity"`
	Description string       `json:"description"`
	MatchedText string       `json:"matched_text,omitempty"`
}

// RiskAssessment is the aggregate output of the risk gate.
type RiskAssessment struct {
	Passed               bool       `json:"passed"`
	RiskLevel            RiskLevel  `json:"risk_level"`
	Flags                []RiskFlag `json:"flags"`
	RequiresManualReview bool       `json:"requires_manual_review"`
	SuggestedRewrites    []string   `json:"suggested_rewrites"`
}

// AssetScore carries both scorecards from the latest scoring pass. The
// pair is fully replaced each pass; keeping both means a risk-only
// failure does not lose the quality result.
type AssetScore struct {
	Quality  Scorecard      `json:"quality"`
	Risk     RiskAssessment `json:"risk"`
	ScoredAt time.Time      `json:"scored_at"`
}

// Citation is a verified claim/source pair that exempts matching text
// from risk flagging.
type Citation struct {
	Claim  string `json:"claim"`
	Source string `json:"source"`
}
