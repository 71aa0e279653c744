package domain

import "fmt"

// QualityProfile is a fixed bundle of transcode parameters for one named
// tier. Bounded tiers carry a target box; original has none.
type QualityProfile struct {
	Name         string
	Width        int
	Height       int
	VideoBitrate string
}

// DefaultTier is applied when the caller omits the quality field.
const DefaultTier = "4k"

var profiles = map[string]QualityProfile{
	"4k":       {Name: "4k", Width: 3840, Height: 2160, VideoBitrate: "35M"},
	"1080p":    {Name: "1080p", Width: 1920, Height: 1080, VideoBitrate: "8M"},
	"720p":     {Name: "720p", Width: 1280, Height: 720, VideoBitrate: "5M"},
	"original": {Name: "original", VideoBitrate: "10M"},
}

// TierNames lists the supported tiers in descending quality order.
func TierNames() []string {
	return []string{"4k", "1080p", "720p", "original"}
}

// ProfileFor looks up a tier by name. Unrecognized names fall back to the
// original profile: no resolution constraint, conservative bitrate.
func ProfileFor(tier string) QualityProfile {
	if p, ok := profiles[tier]; ok {
		return p
	}
	return profiles["original"]
}

// Bounded reports whether the profile constrains output resolution.
func (p QualityProfile) Bounded() bool {
	return p.Width > 0 && p.Height > 0
}

// ScaleFilter returns the aspect-ratio-preserving scale-and-pad filter for
// a bounded tier: shrink to fit the target box, then letterbox to exact
// dimensions. Never stretches.
func (p QualityProfile) ScaleFilter() string {
	if !p.Bounded() {
		return ""
	}
	return fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2",
		p.Width, p.Height, p.Width, p.Height,
	)
}
