// Package types defines the entities and value objects moved through the
// content pipeline: batches, assets, variants, schedules, posts and the
// scorecards attached to them.
package types

// Platform identifies a publishing destination.
type Platform string

// Supported platforms.
const (
	PlatformPinterest Platform = "PINTEREST"
	PlatformInstagram Platform = "INSTAGRAM"
	PlatformTikTok    Platform = "TIKTOK"
	PlatformYouTube   Platform = "YOUTUBE"
	PlatformLinkedIn  Platform = "LINKEDIN"
)

// AllPlatforms lists every supported platform.
var AllPlatforms = []Platform{
	PlatformPinterest,
	PlatformInstagram,
	PlatformTikTok,
	PlatformYouTube,
	PlatformLinkedIn,
}

// IsVideo reports whether the platform is scored for watch-time design
// rather than skimmability.
func (p Platform) IsVideo() bool {
	switch p {
	case PlatformTikTok, PlatformInstagram, PlatformYouTube:
		return true
	default:
		return false
	}
}

// Valid reports whether p is a known platform.
func (p Platform) Valid() bool {
	for _, known := range AllPlatforms {
		if p == known {
			return true
		}
	}
	return false
}
