// Package youtube extracts video identifiers from the URL shapes users paste.
package youtube

import (
	"net/url"
	"regexp"
)

// Identifier tokens are at least 6 chars to reject truncated matches.
var (
	shortLinkRe  = regexp.MustCompile(`youtu\.be/([A-Za-z0-9_-]{6,})`)
	shortsPathRe = regexp.MustCompile(`youtube\.com/shorts/([A-Za-z0-9_-]{6,})`)
	idTokenRe    = regexp.MustCompile(`^[A-Za-z0-9_-]{6,}$`)
)

// ExtractVideoID pulls the video identifier out of a YouTube URL.
// Recognized shapes, in priority order: youtu.be short links, /shorts/ paths,
// and the canonical watch URL with a v= query parameter. Anything else
// returns ok=false; malformed input never panics.
func ExtractVideoID(raw string) (string, bool) {
	if m := shortLinkRe.FindStringSubmatch(raw); m != nil {
		return m[1], true
	}
	if m := shortsPathRe.FindStringSubmatch(raw); m != nil {
		return m[1], true
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	if v := u.Query().Get("v"); idTokenRe.MatchString(v) {
		return v, true
	}
	return "", false
}
