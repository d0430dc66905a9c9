package types

import (
	"time"

	"github.com/google/uuid"
)

// Brand holds the voice constraints applied during scoring and risk
// checks.
type Brand struct {
	ID            uuid.UUID         `json:"id"`
	Name          string            `json:"name"`
	Tone          []string          `json:"tone"`
	BannedWords   []string          `json:"banned_words"`
	VoiceExamples map[string]string `json:"voice_examples,omitempty"`
}

// Offer is the product or lead magnet a batch promotes.
type Offer struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	URL       string      `json:"url"`
	ValueProp string      `json:"value_prop"`
	Audience  string      `json:"audience"`
	CTAs      CTADefaults `json:"cta_defaults"`
}

// CTADefaults are the two canned calls-to-action for an offer.
type CTADefaults struct {
	Soft string `json:"soft"`
	Hard string `json:"hard"`
}

// TrendCard is an active trend hint fed into ideation for a platform.
type TrendCard struct {
	ID        uuid.UUID  `json:"id"`
	Platform  Platform   `json:"platform"`
	Phrase    string     `json:"phrase"`
	Angle     string     `json:"angle,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Active reports whether the trend card is still usable at t.
func (tc TrendCard) Active(t time.Time) bool {
	return tc.ExpiresAt == nil || tc.ExpiresAt.After(t)
}
