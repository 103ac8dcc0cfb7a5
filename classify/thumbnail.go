package classify

import "net/url"

// Platform accent colors for generated placeholder thumbnails, keeping the
// playlist visually distinguishable when no CDN thumbnail is derivable.
var placeholderColors = map[Platform]string{
	PlatformYouTube:         "#ff0000",
	PlatformYouTubePlaylist: "#cc0000",
	PlatformDrive:           "#1da462",
	PlatformVimeo:           "#1ab7ea",
	PlatformDailymotion:     "#0066dc",
	PlatformFacebook:        "#1877f2",
	PlatformInstagram:       "#e4405f",
	PlatformTikTok:          "#010101",
	PlatformTwitter:         "#1da1f2",
	PlatformTwitch:          "#9146ff",
	PlatformStreamable:      "#0f90fa",
	PlatformDropbox:         "#0061ff",
	PlatformPhotos:          "#fbbc04",
	PlatformDirect:          "#607d8b",
	PlatformOther:           "#9e9e9e",
}

// placeholderThumbnail returns an inline SVG data URI for platforms without
// a derivable CDN thumbnail.
func placeholderThumbnail(p Platform) string {
	color, ok := placeholderColors[p]
	if !ok {
		color = placeholderColors[PlatformOther]
	}
	svg := `<svg xmlns="http://www.w3.org/2000/svg" width="320" height="180">` +
		`<rect width="320" height="180" fill="` + color + `"/>` +
		`<text x="160" y="98" font-family="sans-serif" font-size="22" fill="#ffffff" text-anchor="middle">` +
		p.Label() + `</text></svg>`
	return "data:image/svg+xml;utf8," + url.PathEscape(svg)
}
