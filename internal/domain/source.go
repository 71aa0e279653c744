package domain

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

type SourceKind string

const (
	SourceCloudDrive  SourceKind = "cloud_drive"
	SourceHostedVideo SourceKind = "hosted_video"
	SourceDirectURL   SourceKind = "direct_url"
)

// SourceReference is the classified form of a caller-supplied reference
// string. Immutable once built.
type SourceReference struct {
	Kind SourceKind
	Raw  string

	// FileID is set for SourceCloudDrive; URL for the other two kinds.
	FileID string
	URL    string
}

const driveDomain = "drive.google.com"

// driveIDPatterns are tried in priority order; the first match wins.
// Share links come in several shapes that all carry the same file id.
var driveIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/file/d/([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`id=([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`/open\?id=([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`drive\.google\.com/.*[?&]id=([a-zA-Z0-9_-]+)`),
}

// hostedVideoDomains route to extraction instead of a raw fetch: the page
// URL does not address the media bytes directly.
var hostedVideoDomains = []string{
	"youtube.com",
	"youtu.be",
	"vimeo.com",
	"dailymotion.com",
}

// Classify inspects a reference string and selects the acquisition kind.
// Pure function: no network, no side effects.
func Classify(raw string) (SourceReference, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return SourceReference{}, ErrInvalidReference
	}

	u, err := url.Parse(trimmed)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return SourceReference{}, fmt.Errorf("%w: %q", ErrInvalidReference, trimmed)
	}

	if strings.Contains(u.Host, driveDomain) {
		id := ExtractDriveID(trimmed)
		if id == "" {
			return SourceReference{}, fmt.Errorf("%w: %q", ErrUnresolvableID, trimmed)
		}
		return SourceReference{Kind: SourceCloudDrive, Raw: trimmed, FileID: id}, nil
	}

	host := strings.ToLower(u.Host)
	for _, d := range hostedVideoDomains {
		if strings.Contains(host, d) {
			return SourceReference{Kind: SourceHostedVideo, Raw: trimmed, URL: trimmed}, nil
		}
	}

	return SourceReference{Kind: SourceDirectURL, Raw: trimmed, URL: trimmed}, nil
}

// ExtractDriveID pulls the file id out of any recognized share-link shape.
// Returns "" when no pattern matches.
func ExtractDriveID(rawURL string) string {
	for _, pattern := range driveIDPatterns {
		if m := pattern.FindStringSubmatch(rawURL); m != nil {
			return m[1]
		}
	}
	return ""
}
