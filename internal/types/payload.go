package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// AssetType identifies the concrete shape of a payload.
type AssetType string

// Asset types, one or two per platform.
const (
	AssetTypePin          AssetType = "PIN"
	AssetTypeCarousel     AssetType = "CAROUSEL"
	AssetTypeReelScript   AssetType = "REEL_SCRIPT"
	AssetTypeTikTokScript AssetType = "TIKTOK_SCRIPT"
	AssetTypeShortsScript AssetType = "SHORTS_SCRIPT"
	AssetTypeLinkedInPost AssetType = "LINKEDIN_POST"
)

// PinterestPin is the payload for a Pinterest pin.
type PinterestPin struct {
	Platform           Platform `json:"platform"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Keywords           []string `json:"keywords"`
	BoardSuggestion    string   `json:"boardSuggestion"`
	OverlayTextOptions []string `json:"overlayTextOptions"`
	DestinationURL     string   `json:"destinationUrl"`
	AltText            string   `json:"altText"`
}

// CarouselSlide is one slide of an Instagram carousel.
type CarouselSlide struct {
	SlideNumber     int    `json:"slideNumber"`
	Headline        string `json:"headline"`
	Body            string `json:"body"`
	VisualDirection string `json:"visualDirection"`
}

// InstagramCarousel is the payload for an Instagram carousel post.
type InstagramCarousel struct {
	Platform         Platform        `json:"platform"`
	Type             string          `json:"type"` // "CAROUSEL"
	Slides           []CarouselSlide `json:"slides"`
	CaptionLong      string          `json:"captionLong"`
	CaptionShort     string          `json:"captionShort"`
	HashtagsBroad    []string        `json:"hashtagsBroad"`
	HashtagsMid      []string        `json:"hashtagsMid"`
	HashtagsNiche    []string        `json:"hashtagsNiche"`
	AltText          string          `json:"altText"`
	CoverTextOptions []string        `json:"coverTextOptions"`
}

// ScriptBeat is one timed segment of a video script.
type ScriptBeat struct {
	Timestamp       string `json:"timestamp"`
	Action          string `json:"action,omitempty"`
	Dialogue        string `json:"dialogue"`
	OnScreenText    string `json:"onScreenText,omitempty"`
	VisualDirection string `json:"visualDirection,omitempty"`
}

// VideoScript is a hook/beats/CTA script shared by reels and shorts.
type VideoScript struct {
	Hook          string       `json:"hook"`
	Proof         string       `json:"proof,omitempty"`
	MainContent   []ScriptBeat `json:"mainContent"`
	CTA           string       `json:"cta"`
	TotalDuration string       `json:"totalDuration,omitempty"`
}

// InstagramReel is the payload for an Instagram reel script.
type InstagramReel struct {
	Platform         Platform    `json:"platform"`
	Type             string      `json:"type"` // "REEL"
	Script           VideoScript `json:"script"`
	CaptionLong      string      `json:"captionLong"`
	CaptionShort     string      `json:"captionShort"`
	HashtagsBroad    []string    `json:"hashtagsBroad"`
	HashtagsMid      []string    `json:"hashtagsMid"`
	HashtagsNiche    []string    `json:"hashtagsNiche"`
	AltText          string      `json:"altText"`
	CoverTextOptions []string    `json:"coverTextOptions"`
}

// TikTokShot is one entry of a TikTok shot list.
type TikTokShot struct {
	Shot        string `json:"shot"`
	Description string `json:"description"`
	Duration    string `json:"duration"`
}

// TikTokShortScript is the compressed 10-15 second cut.
type TikTokShortScript struct {
	Duration  string `json:"duration"`
	Hook      string `json:"hook"`
	MainPoint string `json:"mainPoint"`
	CTA       string `json:"cta"`
}

// TikTokScript is the payload for a TikTok video.
type TikTokScript struct {
	Platform         Platform          `json:"platform"`
	ScriptLong       VideoScript       `json:"scriptLong"`
	ScriptShort      TikTokShortScript `json:"scriptShort"`
	HookOptions      []string          `json:"hookOptions"`
	ShotList         []TikTokShot      `json:"shotList"`
	BRollSuggestions []string          `json:"bRollSuggestions"`
	Caption          string            `json:"caption"`
	Hashtags         []string          `json:"hashtags"`
	CommentBait      string            `json:"commentBait,omitempty"`
}

// YouTubeShorts is the payload for a YouTube Shorts video.
type YouTubeShorts struct {
	Platform             Platform    `json:"platform"`
	Type                 string      `json:"type"` // "SHORTS"
	Script               VideoScript `json:"script"`
	TitleOptions         []string    `json:"titleOptions"`
	Description          string      `json:"description"`
	Tags                 []string    `json:"tags"`
	PinnedCommentCTA     string      `json:"pinnedCommentCta"`
	ThumbnailTextOptions []string    `json:"thumbnailTextOptions"`
}

// LinkedInAuthorityPost is the authority-style framing of a LinkedIn post.
type LinkedInAuthorityPost struct {
	FirstLine string   `json:"firstLine"`
	Body      string   `json:"body"`
	Takeaways []string `json:"takeaways"`
	CTA       string   `json:"cta"`
}

// LinkedInStoryPost is the story-style framing of a LinkedIn post.
type LinkedInStoryPost struct {
	FirstLine string `json:"firstLine"`
	Story     string `json:"story"`
	Lesson    string `json:"lesson"`
	CTA       string `json:"cta"`
}

// LinkedInPost is the payload for a LinkedIn post with both framings.
type LinkedInPost struct {
	Platform         Platform               `json:"platform"`
	AuthorityPost    *LinkedInAuthorityPost `json:"authorityPost,omitempty"`
	StoryPost        *LinkedInStoryPost     `json:"storyPost,omitempty"`
	Hashtags         []string               `json:"hashtags"`
	CommentToGet     string                 `json:"commentToGet,omitempty"`
	RepurposeSummary string                 `json:"repurposeSummary"`
}

// Payload is the closed union of platform payloads. Exactly one variant
// is set; every semantic accessor switches over the full set, so adding a
// variant forces each accessor to handle it.
type Payload struct {
	Pin      *PinterestPin      `json:"-"`
	Carousel *InstagramCarousel `json:"-"`
	Reel     *InstagramReel     `json:"-"`
	TikTok   *TikTokScript      `json:"-"`
	Shorts   *YouTubeShorts     `json:"-"`
	LinkedIn *LinkedInPost      `json:"-"`
}

// Kind returns the asset type for the variant that is set.
func (p Payload) Kind() AssetType {
	switch {
	case p.Pin != nil:
		return AssetTypePin
	case p.Carousel != nil:
		return AssetTypeCarousel
	case p.Reel != nil:
		return AssetTypeReelScript
	case p.TikTok != nil:
		return AssetTypeTikTokScript
	case p.Shorts != nil:
		return AssetTypeShortsScript
	case p.LinkedIn != nil:
		return AssetTypeLinkedInPost
	default:
		return ""
	}
}

// IsZero reports whether no variant is set.
func (p Payload) IsZero() bool { return p.Kind() == "" }

// MarshalJSON emits the set variant directly; its platform/type fields
// act as the discriminator on the wire.
func (p Payload) MarshalJSON() ([]byte, error) {
	switch {
	case p.Pin != nil:
		return json.Marshal(p.Pin)
	case p.Carousel != nil:
		return json.Marshal(p.Carousel)
	case p.Reel != nil:
		return json.Marshal(p.Reel)
	case p.TikTok != nil:
		return json.Marshal(p.TikTok)
	case p.Shorts != nil:
		return json.Marshal(p.Shorts)
	case p.LinkedIn != nil:
		return json.Marshal(p.LinkedIn)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON sniffs the platform (and type, for Instagram) discriminator
// and decodes into the matching variant.
func (p *Payload) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = Payload{}
		return nil
	}
	var head struct {
		Platform Platform `json:"platform"`
		Type     string   `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return fmt.Errorf("failed to read payload discriminator: %w", err)
	}
	decoded, err := DecodePayload(head.Platform, head.Type, data)
	if err != nil {
		return err
	}
	*p = decoded
	return nil
}

// DecodePayload decodes raw JSON into the variant for the given platform.
// For Instagram, typeHint distinguishes CAROUSEL from REEL; an empty hint
// defaults to REEL.
func DecodePayload(platform Platform, typeHint string, data []byte) (Payload, error) {
	switch platform {
	case PlatformPinterest:
		var v PinterestPin
		if err := json.Unmarshal(data, &v); err != nil {
			return Payload{}, fmt.Errorf("failed to decode pinterest payload: %w", err)
		}
		v.Platform = platform
		return Payload{Pin: &v}, nil
	case PlatformInstagram:
		if strings.EqualFold(typeHint, "CAROUSEL") {
			var v InstagramCarousel
			if err := json.Unmarshal(data, &v); err != nil {
				return Payload{}, fmt.Errorf("failed to decode instagram carousel payload: %w", err)
			}
			v.Platform = platform
			return Payload{Carousel: &v}, nil
		}
		var v InstagramReel
		if err := json.Unmarshal(data, &v); err != nil {
			return Payload{}, fmt.Errorf("failed to decode instagram reel payload: %w", err)
		}
		v.Platform = platform
		return Payload{Reel: &v}, nil
	case PlatformTikTok:
		var v TikTokScript
		if err := json.Unmarshal(data, &v); err != nil {
			return Payload{}, fmt.Errorf("failed to decode tiktok payload: %w", err)
		}
		v.Platform = platform
		return Payload{TikTok: &v}, nil
	case PlatformYouTube:
		var v YouTubeShorts
		if err := json.Unmarshal(data, &v); err != nil {
			return Payload{}, fmt.Errorf("failed to decode youtube shorts payload: %w", err)
		}
		v.Platform = platform
		return Payload{Shorts: &v}, nil
	case PlatformLinkedIn:
		var v LinkedInPost
		if err := json.Unmarshal(data, &v); err != nil {
			return Payload{}, fmt.Errorf("failed to decode linkedin payload: %w", err)
		}
		v.Platform = platform
		return Payload{LinkedIn: &v}, nil
	default:
		return Payload{}, fmt.Errorf("unknown platform %q in payload", platform)
	}
}

// Hook returns the attention line for the payload. Total over the union:
// variants without a literal hook field fall back to their opening text.
func (p Payload) Hook() string {
	switch {
	case p.Pin != nil:
		return p.Pin.Title
	case p.Carousel != nil:
		if len(p.Carousel.Slides) > 0 {
			return p.Carousel.Slides[0].Headline
		}
		return firstLine(p.Carousel.CaptionLong)
	case p.Reel != nil:
		return p.Reel.Script.Hook
	case p.TikTok != nil:
		if len(p.TikTok.HookOptions) > 0 {
			return p.TikTok.HookOptions[0]
		}
		return p.TikTok.ScriptLong.Hook
	case p.Shorts != nil:
		if p.Shorts.Script.Hook != "" {
			return p.Shorts.Script.Hook
		}
		if len(p.Shorts.TitleOptions) > 0 {
			return p.Shorts.TitleOptions[0]
		}
		return ""
	case p.LinkedIn != nil:
		if p.LinkedIn.AuthorityPost != nil {
			return p.LinkedIn.AuthorityPost.FirstLine
		}
		if p.LinkedIn.StoryPost != nil {
			return p.LinkedIn.StoryPost.FirstLine
		}
		return ""
	default:
		return ""
	}
}

// CTA returns the call-to-action for the payload. Variants without a
// dedicated CTA field return the text that carries it by convention.
func (p Payload) CTA() string {
	switch {
	case p.Pin != nil:
		return p.Pin.Description
	case p.Carousel != nil:
		return p.Carousel.CaptionShort
	case p.Reel != nil:
		return p.Reel.Script.CTA
	case p.TikTok != nil:
		return p.TikTok.ScriptLong.CTA
	case p.Shorts != nil:
		return p.Shorts.Script.CTA
	case p.LinkedIn != nil:
		if p.LinkedIn.AuthorityPost != nil {
			return p.LinkedIn.AuthorityPost.CTA
		}
		if p.LinkedIn.StoryPost != nil {
			return p.LinkedIn.StoryPost.CTA
		}
		return ""
	default:
		return ""
	}
}

// ContentText flattens all prose fields into one string for scoring and
// risk assessment, in a fixed field order so scoring stays deterministic.
func (p Payload) ContentText() string {
	var parts []string
	add := func(ss ...string) {
		for _, s := range ss {
			if s != "" {
				parts = append(parts, s)
			}
		}
	}
	switch {
	case p.Pin != nil:
		add(p.Pin.Title, p.Pin.Description, p.Pin.AltText)
		add(p.Pin.OverlayTextOptions...)
	case p.Carousel != nil:
		for _, s := range p.Carousel.Slides {
			add(s.Headline, s.Body)
		}
		add(p.Carousel.CaptionLong, p.Carousel.CaptionShort, p.Carousel.AltText)
	case p.Reel != nil:
		add(p.Reel.Script.Hook, p.Reel.Script.Proof)
		for _, b := range p.Reel.Script.MainContent {
			add(b.Dialogue, b.OnScreenText)
		}
		add(p.Reel.Script.CTA, p.Reel.CaptionLong, p.Reel.CaptionShort)
	case p.TikTok != nil:
		add(p.TikTok.ScriptLong.Hook)
		for _, b := range p.TikTok.ScriptLong.MainContent {
			add(b.Dialogue)
		}
		add(p.TikTok.ScriptLong.CTA, p.TikTok.ScriptShort.Hook, p.TikTok.ScriptShort.MainPoint, p.TikTok.ScriptShort.CTA, p.TikTok.Caption)
		add(p.TikTok.HookOptions...)
	case p.Shorts != nil:
		add(p.Shorts.Script.Hook)
		for _, b := range p.Shorts.Script.MainContent {
			add(b.Dialogue)
		}
		add(p.Shorts.Script.CTA, p.Shorts.Description, p.Shorts.PinnedCommentCTA)
		add(p.Shorts.TitleOptions...)
	case p.LinkedIn != nil:
		if p.LinkedIn.AuthorityPost != nil {
			add(p.LinkedIn.AuthorityPost.FirstLine, p.LinkedIn.AuthorityPost.Body)
			add(p.LinkedIn.AuthorityPost.Takeaways...)
			add(p.LinkedIn.AuthorityPost.CTA)
		}
		if p.LinkedIn.StoryPost != nil {
			add(p.LinkedIn.StoryPost.FirstLine, p.LinkedIn.StoryPost.Story, p.LinkedIn.StoryPost.Lesson, p.LinkedIn.StoryPost.CTA)
		}
		add(p.LinkedIn.RepurposeSummary)
	}
	return strings.Join(parts, "\n\n")
}

// VariantSeed is a to-be-created A/B variant derived from a payload's
// option fields.
type VariantSeed struct {
	Key     string
	Payload map[string]any
}

// VariantOptions derives A/B variant seeds from whichever option arrays
// the payload carries: hook options, title options, thumbnail/cover text
// options, and the named structural styles of LinkedIn posts.
func (p Payload) VariantOptions() []VariantSeed {
	var seeds []VariantSeed
	pair := func(key, field string, options []string) {
		labels := []string{"a", "b"}
		for i, label := range labels {
			if i < len(options) {
				seeds = append(seeds, VariantSeed{
					Key:     key + "_" + label,
					Payload: map[string]any{field: options[i]},
				})
			}
		}
	}
	switch {
	case p.Pin != nil:
		pair("overlay", "overlayText", p.Pin.OverlayTextOptions)
	case p.Carousel != nil:
		pair("cover", "coverText", p.Carousel.CoverTextOptions)
	case p.Reel != nil:
		pair("cover", "coverText", p.Reel.CoverTextOptions)
	case p.TikTok != nil:
		pair("hook", "hook", p.TikTok.HookOptions)
	case p.Shorts != nil:
		pair("title", "title", p.Shorts.TitleOptions)
		pair("thumbnail", "thumbnailText", p.Shorts.ThumbnailTextOptions)
	case p.LinkedIn != nil:
		if p.LinkedIn.AuthorityPost != nil {
			seeds = append(seeds, VariantSeed{Key: "style_authority", Payload: map[string]any{"style": "authority"}})
		}
		if p.LinkedIn.StoryPost != nil {
			seeds = append(seeds, VariantSeed{Key: "style_story", Payload: map[string]any{"style": "story"}})
		}
	}
	return seeds
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
