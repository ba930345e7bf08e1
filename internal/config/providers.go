package config

// Provider describes one audio-resolution provider: how to build the request
// and which parts of an undocumented JSON response might carry the result.
// The field-name and pending-vocabulary lists are guesses inferred from live
// responses, so they are configuration rather than resolver logic.
type Provider struct {
	// Host is both the request host and the value of the routing header.
	Host string `json:"host"`
	// Path is the request path, e.g. "/dl".
	Path string `json:"path"`
	// QueryParam names the query parameter carrying the video identifier.
	QueryParam string `json:"query_param"`
	// LinkFields are candidate JSON paths for the audio link, first match
	// wins. A dot selects one level of nesting ("data.link").
	LinkFields []string `json:"link_fields"`
	// StatusFields are candidate JSON fields inspected for a pending marker
	// when no link is present.
	StatusFields []string `json:"status_fields"`
	// PendingMarkers are case-insensitive substrings that mark a response as
	// "still extracting, poll again".
	PendingMarkers []string `json:"pending_markers"`
}

const defaultProviderHost = "youtube-mp36.p.rapidapi.com"

var (
	defaultLinkFields     = []string{"link", "url", "audio", "mp3", "file", "data.link", "data.url"}
	defaultStatusFields   = []string{"status", "msg", "message"}
	defaultPendingMarkers = []string{"processing", "queue"}
)

// DefaultProviders builds a provider table for the given hosts using the
// request shape and response heuristics shared by the known yt-to-mp3 APIs.
func DefaultProviders(hosts []string) []Provider {
	ret := make([]Provider, 0, len(hosts))
	for _, host := range hosts {
		ret = append(ret, Provider{
			Host:           host,
			Path:           "/dl",
			QueryParam:     "id",
			LinkFields:     defaultLinkFields,
			StatusFields:   defaultStatusFields,
			PendingMarkers: defaultPendingMarkers,
		})
	}
	return ret
}
