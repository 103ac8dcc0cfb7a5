package classify

import (
	"net/url"
	"path"
	"regexp"
	"strings"
)

// matcher recognizes one platform by host/path shape, extracts its external
// ID, and builds the candidate list and default metadata. Matchers run in
// table order; the direct-file matcher sits after every host-based matcher
// so a platform CDN link ending in .mp4 is not misclassified.
type matcher struct {
	platform Platform
	match    func(u *url.URL, host, raw string) (string, bool)
	build    func(id, raw string) Video
}

var (
	youtubeWatchRe  = regexp.MustCompile(`^/(?:watch|embed|shorts|live|v)(?:/([A-Za-z0-9_-]{6,}))?`)
	driveFileRe     = regexp.MustCompile(`^/file/d/([A-Za-z0-9_-]+)`)
	vimeoIDRe       = regexp.MustCompile(`^/(?:video/)?(\d+)`)
	dailymotionRe   = regexp.MustCompile(`^/video/([A-Za-z0-9]+)`)
	instagramRe     = regexp.MustCompile(`^/(?:p|reel|reels|tv)/([A-Za-z0-9_-]+)`)
	tiktokRe        = regexp.MustCompile(`/video/(\d+)`)
	twitterStatusRe = regexp.MustCompile(`/status(?:es)?/(\d+)`)
	twitchVideoRe   = regexp.MustCompile(`^/videos/(\d+)`)
	streamableRe    = regexp.MustCompile(`^/(?:e/|o/)?([A-Za-z0-9]+)`)
)

// directExtensions are media files a native player element handles without
// any embed frame.
var directExtensions = []string{
	".mp4", ".webm", ".ogg", ".ogv", ".mov", ".m4v", ".mkv", ".m3u8",
}

var matchers = []matcher{
	{platform: PlatformYouTubePlaylist, match: matchYouTubePlaylist, build: buildYouTubePlaylist},
	{platform: PlatformYouTube, match: matchYouTube, build: buildYouTube},
	{platform: PlatformDrive, match: matchDrive, build: buildDrive},
	{platform: PlatformVimeo, match: matchVimeo, build: buildVimeo},
	{platform: PlatformDailymotion, match: matchDailymotion, build: buildDailymotion},
	{platform: PlatformFacebook, match: matchFacebook, build: buildFacebook},
	{platform: PlatformInstagram, match: matchInstagram, build: buildInstagram},
	{platform: PlatformTikTok, match: matchTikTok, build: buildTikTok},
	{platform: PlatformTwitter, match: matchTwitter, build: buildTwitter},
	{platform: PlatformTwitch, match: matchTwitch, build: buildTwitch},
	{platform: PlatformStreamable, match: matchStreamable, build: buildStreamable},
	{platform: PlatformDropbox, match: matchDropbox, build: buildDropbox},
	{platform: PlatformPhotos, match: matchPhotos, build: buildPhotos},
	{platform: PlatformDirect, match: matchDirect, build: buildDirect},
}

func isYouTubeHost(host string) bool {
	switch registrableDomain(host) {
	case "youtube.com", "youtu.be", "youtube-nocookie.com":
		return true
	}
	return false
}

// A playlist-shaped YouTube URL is one that names a list without naming a
// single watchable video.
func matchYouTubePlaylist(u *url.URL, host, _ string) (string, bool) {
	if !isYouTubeHost(host) {
		return "", false
	}
	list := u.Query().Get("list")
	if list == "" {
		return "", false
	}
	if u.Query().Get("v") != "" || host == "youtu.be" {
		return "", false
	}
	return "pl:" + list, true
}

func buildYouTubePlaylist(id, raw string) Video {
	list := strings.TrimPrefix(id, "pl:")
	return Video{
		Title:       "YouTube playlist " + displayID(list),
		Description: "Playlist added from YouTube",
		EmbedCandidates: []string{
			"https://www.youtube-nocookie.com/embed/videoseries?list=" + url.QueryEscape(list),
			"https://www.youtube.com/embed/videoseries?list=" + url.QueryEscape(list),
			raw,
		},
	}
}

func matchYouTube(u *url.URL, host, _ string) (string, bool) {
	if !isYouTubeHost(host) {
		return "", false
	}
	if host == "youtu.be" {
		id := strings.Trim(u.Path, "/")
		if i := strings.IndexByte(id, '/'); i >= 0 {
			id = id[:i]
		}
		return id, id != ""
	}
	if v := u.Query().Get("v"); v != "" {
		return v, true
	}
	if m := youtubeWatchRe.FindStringSubmatch(u.Path); m != nil && m[1] != "" {
		return m[1], true
	}
	return "", false
}

func buildYouTube(id, raw string) Video {
	return Video{
		EmbedCandidates: []string{
			"https://www.youtube-nocookie.com/embed/" + id + "?rel=0",
			"https://www.youtube.com/embed/" + id,
			raw,
		},
		ThumbnailURL: "https://i.ytimg.com/vi/" + id + "/hqdefault.jpg",
	}
}

func matchDrive(u *url.URL, host, _ string) (string, bool) {
	if host != "drive.google.com" && host != "docs.google.com" {
		return "", false
	}
	if m := driveFileRe.FindStringSubmatch(u.Path); m != nil {
		return m[1], true
	}
	if id := u.Query().Get("id"); id != "" && strings.HasPrefix(u.Path, "/open") {
		return id, true
	}
	// Host matched but no file ID: fail the matcher so the URL falls
	// through to later rules.
	return "", false
}

func buildDrive(id, raw string) Video {
	return Video{
		EmbedCandidates: []string{
			"https://drive.google.com/file/d/" + id + "/preview",
			raw,
		},
		ThumbnailURL: "https://drive.google.com/thumbnail?id=" + id,
	}
}

func matchVimeo(u *url.URL, host, _ string) (string, bool) {
	if registrableDomain(host) != "vimeo.com" {
		return "", false
	}
	if m := vimeoIDRe.FindStringSubmatch(u.Path); m != nil {
		return m[1], true
	}
	return "", false
}

func buildVimeo(id, raw string) Video {
	return Video{
		EmbedCandidates: []string{
			"https://player.vimeo.com/video/" + id + "?dnt=1",
			"https://player.vimeo.com/video/" + id,
			raw,
		},
		ThumbnailURL: "https://vumbnail.com/" + id + ".jpg",
	}
}

func matchDailymotion(u *url.URL, host, _ string) (string, bool) {
	switch registrableDomain(host) {
	case "dailymotion.com":
		if m := dailymotionRe.FindStringSubmatch(u.Path); m != nil {
			return m[1], true
		}
	case "dai.ly":
		id := strings.Trim(u.Path, "/")
		return id, id != ""
	}
	return "", false
}

func buildDailymotion(id, raw string) Video {
	return Video{
		EmbedCandidates: []string{
			"https://www.dailymotion.com/embed/video/" + id,
			raw,
		},
		ThumbnailURL: "https://www.dailymotion.com/thumbnail/video/" + id,
	}
}

func matchFacebook(u *url.URL, host, _ string) (string, bool) {
	switch registrableDomain(host) {
	case "facebook.com", "fb.watch", "fb.com":
	default:
		return "", false
	}
	return "fb-" + hashID(u.String()), true
}

// Facebook's native embed is unreliable for non-public videos, so the
// plugin endpoint comes first and the raw page URL is kept as the final
// fallback.
func buildFacebook(id, raw string) Video {
	enc := url.QueryEscape(raw)
	return Video{
		EmbedCandidates: []string{
			"https://www.facebook.com/plugins/video.php?href=" + enc + "&show_text=false",
			"https://www.facebook.com/plugins/video.php?href=" + enc,
			raw,
		},
	}
}

func matchInstagram(u *url.URL, host, _ string) (string, bool) {
	if registrableDomain(host) != "instagram.com" {
		return "", false
	}
	if m := instagramRe.FindStringSubmatch(u.Path); m != nil {
		return m[1], true
	}
	return "", false
}

func buildInstagram(id, raw string) Video {
	return Video{
		EmbedCandidates: []string{
			"https://www.instagram.com/p/" + id + "/embed/",
			raw,
		},
	}
}

func matchTikTok(u *url.URL, host, _ string) (string, bool) {
	if registrableDomain(host) != "tiktok.com" {
		return "", false
	}
	if m := tiktokRe.FindStringSubmatch(u.Path); m != nil {
		return m[1], true
	}
	return "tt-" + hashID(u.String()), true
}

func buildTikTok(id, raw string) Video {
	candidates := []string{raw}
	if !strings.HasPrefix(id, "tt-") {
		candidates = []string{
			"https://www.tiktok.com/embed/v2/" + id,
			raw,
		}
	}
	return Video{EmbedCandidates: candidates}
}

func matchTwitter(u *url.URL, host, _ string) (string, bool) {
	switch registrableDomain(host) {
	case "twitter.com", "x.com", "t.co":
	default:
		return "", false
	}
	if m := twitterStatusRe.FindStringSubmatch(u.Path); m != nil {
		return m[1], true
	}
	return "tw-" + hashID(u.String()), true
}

// Twitter/X dropped its reliable native embed, so a third-party frame
// service leads the candidate list.
func buildTwitter(id, raw string) Video {
	return Video{
		EmbedCandidates: []string{
			"https://twitframe.com/show?url=" + url.QueryEscape(raw),
			raw,
		},
	}
}

func matchTwitch(u *url.URL, host, _ string) (string, bool) {
	switch registrableDomain(host) {
	case "twitch.tv":
	default:
		return "", false
	}
	if host == "clips.twitch.tv" {
		slug := strings.Trim(u.Path, "/")
		return "clip:" + slug, slug != ""
	}
	if m := twitchVideoRe.FindStringSubmatch(u.Path); m != nil {
		return "video:" + m[1], true
	}
	channel := strings.Trim(u.Path, "/")
	if channel == "" || strings.Contains(channel, "/") {
		return "", false
	}
	return "channel:" + channel, true
}

func buildTwitch(id, raw string) Video {
	kind, value, _ := strings.Cut(id, ":")
	var embed string
	switch kind {
	case "clip":
		embed = "https://clips.twitch.tv/embed?clip=" + url.QueryEscape(value) + "&parent=localhost"
	case "video":
		embed = "https://player.twitch.tv/?video=" + url.QueryEscape(value) + "&parent=localhost"
	default:
		embed = "https://player.twitch.tv/?channel=" + url.QueryEscape(value) + "&parent=localhost"
	}
	return Video{EmbedCandidates: []string{embed, raw}}
}

func matchStreamable(u *url.URL, host, _ string) (string, bool) {
	if registrableDomain(host) != "streamable.com" {
		return "", false
	}
	if m := streamableRe.FindStringSubmatch(u.Path); m != nil && m[1] != "" {
		return m[1], true
	}
	return "", false
}

func buildStreamable(id, raw string) Video {
	return Video{
		EmbedCandidates: []string{
			"https://streamable.com/e/" + id,
			raw,
		},
	}
}

func matchDropbox(u *url.URL, host, _ string) (string, bool) {
	switch registrableDomain(host) {
	case "dropbox.com", "dropboxusercontent.com":
	default:
		return "", false
	}
	return "db-" + hashID(u.String()), true
}

// Dropbox share links play natively once the download flags are flipped,
// so the rewritten raw-file forms come before the share page.
func buildDropbox(id, raw string) Video {
	direct := strings.Replace(raw, "www.dropbox.com", "dl.dropboxusercontent.com", 1)
	withRaw := raw
	if strings.Contains(withRaw, "dl=0") {
		withRaw = strings.Replace(withRaw, "dl=0", "raw=1", 1)
	} else if !strings.Contains(withRaw, "raw=1") {
		sep := "?"
		if strings.Contains(withRaw, "?") {
			sep = "&"
		}
		withRaw += sep + "raw=1"
	}
	candidates := []string{withRaw}
	if direct != raw {
		candidates = append(candidates, direct)
	}
	candidates = append(candidates, raw)
	return Video{EmbedCandidates: candidates}
}

func matchPhotos(u *url.URL, host, _ string) (string, bool) {
	if host != "photos.google.com" && host != "photos.app.goo.gl" {
		return "", false
	}
	return "ph-" + hashID(u.String()), true
}

func buildPhotos(_, raw string) Video {
	return Video{EmbedCandidates: []string{raw}}
}

func matchDirect(u *url.URL, _, _ string) (string, bool) {
	path := strings.ToLower(u.Path)
	for _, ext := range directExtensions {
		if strings.HasSuffix(path, ext) {
			return "ext-" + hashID(u.String()), true
		}
	}
	return "", false
}

func buildDirect(_, raw string) Video {
	title := "Direct video file"
	if u, err := url.Parse(raw); err == nil {
		if base := path.Base(u.Path); base != "" && base != "/" && base != "." {
			title = base
		}
	}
	return Video{
		Title:           title,
		Description:     "Direct media link",
		EmbedCandidates: []string{raw},
	}
}
