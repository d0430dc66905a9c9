// Package hooks is the viral hook formula library: reusable frameworks
// for attention-grabbing openers, fed into ideation prompts per platform.
package hooks

import (
	"strings"

	"github.com/jonathan/viral-factory/internal/types"
)

// Formula is one reusable hook framework.
type Formula struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Template    string           `json:"template"`
	Description string           `json:"description"`
	Platforms   []types.Platform `json:"platforms"`
	Examples    []string         `json:"examples"`
}

var formulas = []Formula{
	{
		ID:          "do-this-not-that",
		Name:        "Do This, Not That",
		Template:    "Stop doing {wrong_approach}. Do {right_approach} instead.",
		Description: "Contrasts a common mistake with the better alternative",
		Platforms:   []types.Platform{types.PlatformTikTok, types.PlatformInstagram, types.PlatformYouTube, types.PlatformLinkedIn},
		Examples: []string{
			"Stop posting 3x a day. Post once with purpose instead.",
			"Stop chasing followers. Start building a community instead.",
		},
	},
	{
		ID:          "x-mistakes",
		Name:        "X Mistakes You're Making",
		Template:    "{number} {topic} mistakes that are costing you {consequence}",
		Description: "Lists common mistakes with clear negative consequence",
		Platforms:   []types.Platform{types.PlatformTikTok, types.PlatformInstagram, types.PlatformYouTube, types.PlatformLinkedIn, types.PlatformPinterest},
		Examples: []string{
			"5 resume mistakes that are costing you interviews",
			"3 content mistakes killing your engagement",
		},
	},
	{
		ID:          "if-i-started-over",
		Name:        "If I Started Over",
		Template:    "If I had to start {topic} from zero, here's exactly what I'd do",
		Description: "Wisdom from experience, appeals to beginners",
		Platforms:   []types.Platform{types.PlatformTikTok, types.PlatformInstagram, types.PlatformYouTube, types.PlatformLinkedIn},
		Examples: []string{
			"If I had to build my audience from zero, here's exactly what I'd do",
			"If I started my business over, I'd skip this completely",
		},
	},
	{
		ID:          "uncomfortable-truth",
		Name:        "The Uncomfortable Truth",
		Template:    "The uncomfortable truth about {topic} that no one talks about",
		Description: "Positions as insider knowledge, creates curiosity",
		Platforms:   []types.Platform{types.PlatformTikTok, types.PlatformInstagram, types.PlatformYouTube, types.PlatformLinkedIn},
		Examples: []string{
			"The uncomfortable truth about entrepreneurship no one talks about",
			"The uncomfortable truth about why your content isn't working",
		},
	},
	{
		ID:          "stop-scrolling",
		Name:        "Stop Scrolling If...",
		Template:    "Stop scrolling if you want to {desired_outcome}",
		Description: "Pattern interrupt that qualifies the viewer",
		Platforms:   []types.Platform{types.PlatformTikTok, types.PlatformInstagram, types.PlatformYouTube},
		Examples: []string{
			"Stop scrolling if you want to double your income this year",
			"Stop scrolling if you're tired of algorithm changes",
		},
	},
	{
		ID:          "this-is-why-not-working",
		Name:        "This Is Why X Doesn't Work",
		Template:    "This is why {common_approach} doesn't work for {audience}",
		Description: "Challenges conventional wisdom",
		Platforms:   []types.Platform{types.PlatformTikTok, types.PlatformInstagram, types.PlatformYouTube, types.PlatformLinkedIn},
		Examples: []string{
			"This is why posting more content doesn't work for most creators",
			"This is why motivation doesn't work for building habits",
		},
	},
	{
		ID:          "secret-nobody-tells",
		Name:        "Secret Nobody Tells You",
		Template:    "The {topic} secret that {authority_figures} won't tell you",
		Description: "Insider secret angle, builds curiosity",
		Platforms:   []types.Platform{types.PlatformTikTok, types.PlatformInstagram, types.PlatformYouTube},
		Examples: []string{
			"The algorithm secret that top creators won't tell you",
			"The pricing secret that agencies don't want you to know",
		},
	},
	{
		ID:          "pov-transformation",
		Name:        "POV Transformation",
		Template:    "POV: You finally {achieved_outcome}",
		Description: "Puts viewer in aspirational future state",
		Platforms:   []types.Platform{types.PlatformTikTok, types.PlatformInstagram},
		Examples: []string{
			"POV: You finally hit 10k followers",
			"POV: You wake up to passive income notifications",
		},
	},
	{
		ID:          "unpopular-opinion",
		Name:        "Unpopular Opinion",
		Template:    "Unpopular opinion: {contrarian_take}",
		Description: "Controversy drives engagement, positions as thought leader",
		Platforms:   []types.Platform{types.PlatformLinkedIn, types.PlatformTikTok, types.PlatformInstagram},
		Examples: []string{
			"Unpopular opinion: Hustle culture is overrated",
			"Unpopular opinion: You don't need a big following to make money",
		},
	},
	{
		ID:          "in-seconds",
		Name:        "In X Seconds",
		Template:    "In {time} seconds, I'll show you {valuable_thing}",
		Description: "Time commitment reduces friction, creates open loop",
		Platforms:   []types.Platform{types.PlatformTikTok, types.PlatformInstagram, types.PlatformYouTube},
		Examples: []string{
			"In 30 seconds, I'll show you how to 10x your productivity",
			"In 15 seconds, you'll know why your ads aren't working",
		},
	},
}

// All returns the full formula catalog.
func All() []Formula {
	out := make([]Formula, len(formulas))
	copy(out, formulas)
	return out
}

// ForPlatform returns the formulas suitable for a platform.
func ForPlatform(platform types.Platform) []Formula {
	var out []Formula
	for _, f := range formulas {
		for _, p := range f.Platforms {
			if p == platform {
				out = append(out, f)
				break
			}
		}
	}
	return out
}

// Variants fills the formula template with variables and pads with
// examples up to count.
func Variants(formula Formula, variables map[string]string, count int) []string {
	if count <= 0 {
		count = 3
	}
	template := formula.Template
	for key, value := range variables {
		template = strings.Replace(template, "{"+key+"}", value, 1)
	}

	variants := []string{template}
	for i := 0; i < count-1 && i < len(formula.Examples); i++ {
		variants = append(variants, formula.Examples[i])
	}
	if len(variants) > count {
		variants = variants[:count]
	}
	return variants
}
