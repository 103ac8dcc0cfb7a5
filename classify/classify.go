// Package classify turns arbitrary video URLs into a common playable
// representation: the hosting platform, a platform-scoped identifier, an
// ordered list of embed candidates, and default display metadata.
//
// Classification is a total function over non-empty URLs: anything that no
// platform matcher recognizes falls back to PlatformOther with the raw URL
// as its only candidate.
package classify

import (
	"errors"
	"fmt"
	"hash/fnv"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Platform identifies a video hosting service with its own URL shape and
// embedding mechanism.
type Platform string

const (
	PlatformYouTube         Platform = "youtube"
	PlatformYouTubePlaylist Platform = "youtube_playlist"
	PlatformDrive           Platform = "drive"
	PlatformVimeo           Platform = "vimeo"
	PlatformDailymotion     Platform = "dailymotion"
	PlatformFacebook        Platform = "facebook"
	PlatformInstagram       Platform = "instagram"
	PlatformTikTok          Platform = "tiktok"
	PlatformTwitter         Platform = "twitter"
	PlatformTwitch          Platform = "twitch"
	PlatformStreamable      Platform = "streamable"
	PlatformDropbox         Platform = "dropbox"
	PlatformPhotos          Platform = "photos"
	PlatformDirect          Platform = "direct"
	PlatformOther           Platform = "other"
)

// Platforms lists every known platform in matcher order.
func Platforms() []Platform {
	return []Platform{
		PlatformYouTube, PlatformYouTubePlaylist, PlatformDrive,
		PlatformVimeo, PlatformDailymotion, PlatformFacebook,
		PlatformInstagram, PlatformTikTok, PlatformTwitter,
		PlatformTwitch, PlatformStreamable, PlatformDropbox,
		PlatformPhotos, PlatformDirect, PlatformOther,
	}
}

// Valid reports whether p is one of the known platform values.
func (p Platform) Valid() bool {
	switch p {
	case PlatformYouTube, PlatformYouTubePlaylist, PlatformDrive,
		PlatformVimeo, PlatformDailymotion, PlatformFacebook,
		PlatformInstagram, PlatformTikTok, PlatformTwitter,
		PlatformTwitch, PlatformStreamable, PlatformDropbox,
		PlatformPhotos, PlatformDirect, PlatformOther:
		return true
	}
	return false
}

// Label returns a human-readable name for the platform.
func (p Platform) Label() string {
	switch p {
	case PlatformYouTube:
		return "YouTube"
	case PlatformYouTubePlaylist:
		return "YouTube Playlist"
	case PlatformDrive:
		return "Google Drive"
	case PlatformVimeo:
		return "Vimeo"
	case PlatformDailymotion:
		return "Dailymotion"
	case PlatformFacebook:
		return "Facebook"
	case PlatformInstagram:
		return "Instagram"
	case PlatformTikTok:
		return "TikTok"
	case PlatformTwitter:
		return "Twitter/X"
	case PlatformTwitch:
		return "Twitch"
	case PlatformStreamable:
		return "Streamable"
	case PlatformDropbox:
		return "Dropbox"
	case PlatformPhotos:
		return "Google Photos"
	case PlatformDirect:
		return "Direct file"
	default:
		return "Other"
	}
}

// ParsePlatform maps a stored string back to a Platform. Unknown strings
// map to PlatformOther so stale store records never break ingestion.
func ParsePlatform(s string) Platform {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	if p.Valid() {
		return p
	}
	return PlatformOther
}

// Video is the normalized playable representation of one URL. It is
// immutable once created; every field is set by Classify.
type Video struct {
	Platform        Platform
	ExternalID      string
	EmbedCandidates []string
	ThumbnailURL    string
	Title           string
	Description     string
	OriginalURL     string
}

// ErrEmptyURL is returned when the input is empty or whitespace. An empty
// input is a validation failure at the caller, not an "other" video.
var ErrEmptyURL = errors.New("classify: empty URL")

// Classify maps a raw URL to its normalized Video. Matchers run in a fixed
// order and the first match wins; host matching is case-insensitive while
// extracted IDs are kept verbatim. The function is deterministic: the same
// input always yields the same ExternalID and candidates.
func Classify(raw string) (Video, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Video{}, ErrEmptyURL
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		// Not parseable as an absolute URL: still classifiable, just
		// never as a hosted platform.
		return fallbackVideo(raw), nil
	}

	host := canonicalHost(u)
	for _, m := range matchers {
		id, ok := m.match(u, host, raw)
		if !ok {
			continue
		}
		v := m.build(id, raw)
		v.Platform = m.platform
		v.ExternalID = id
		v.OriginalURL = raw
		if v.Title == "" {
			// Default titles embed the ID so two untitled videos from
			// the same platform never look like near-duplicates.
			v.Title = m.platform.Label() + " video " + displayID(id)
		}
		if v.Description == "" {
			v.Description = "Added from " + m.platform.Label()
		}
		if v.ThumbnailURL == "" {
			v.ThumbnailURL = placeholderThumbnail(m.platform)
		}
		return v, nil
	}

	return fallbackVideo(raw), nil
}

func fallbackVideo(raw string) Video {
	id := "url-" + hashID(raw)
	return Video{
		Platform:        PlatformOther,
		ExternalID:      id,
		EmbedCandidates: []string{raw},
		ThumbnailURL:    placeholderThumbnail(PlatformOther),
		Title:           "Video link " + displayID(id),
		Description:     "Added from an unrecognized source",
		OriginalURL:     raw,
	}
}

// displayID shortens long derived identifiers for default titles.
func displayID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

// canonicalHost lowercases the host, strips the port and the common
// www./m./mobile. prefixes. Subdomains beyond those are preserved because
// some platforms key on them (music.youtube.com, player.vimeo.com).
func canonicalHost(u *url.URL) string {
	host := strings.ToLower(u.Hostname())
	for _, prefix := range []string{"www.", "m.", "mobile."} {
		if trimmed, ok := strings.CutPrefix(host, prefix); ok {
			host = trimmed
			break
		}
	}
	return host
}

// registrableDomain reduces a host to its eTLD+1 ("youtube.com" from
// "music.youtube.com"). Hosts the public suffix list cannot resolve are
// returned unchanged.
func registrableDomain(host string) string {
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return domain
}

// hashID derives a deterministic identifier for URLs without a natural
// platform ID. FNV-1a is deliberate: this is a display and cache key, not a
// security token, and collisions are acceptable.
func hashID(raw string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(raw))
	return fmt.Sprintf("%x", h.Sum64())
}
