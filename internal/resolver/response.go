package resolver

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"
)

// maxDiagnosticBytes bounds how much of an upstream body is kept for
// error reporting.
const maxDiagnosticBytes = 2048

// payload is the tagged result of decoding a provider response: either a
// structured JSON object or the raw text of whatever came back instead.
type payload struct {
	Structured bool
	Fields     map[string]any
	Raw        string
}

// decodePayload classifies a provider response body by content type.
// Anything that is not JSON (usually an HTML block page) is kept as raw text
// for diagnostics; it is never worth retrying.
func decodePayload(resp *http.Response) (payload, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return payload{}, err
	}

	mediaType := resp.Header.Get("Content-Type")
	if mt, _, err := mime.ParseMediaType(mediaType); err == nil {
		mediaType = mt
	}
	if !strings.Contains(mediaType, "json") {
		return payload{Raw: truncate(string(body))}, nil
	}

	fields := make(map[string]any)
	if err := json.Unmarshal(body, &fields); err != nil {
		// Advertised as JSON but does not parse; treat like raw text.
		return payload{Raw: truncate(string(body))}, nil
	}
	return payload{Structured: true, Fields: fields, Raw: truncate(string(body))}, nil
}

// pickString resolves a candidate field path ("link", "data.link") to a
// non-empty string value.
func (p payload) pickString(path string) (string, bool) {
	var cur any = p.Fields
	for _, key := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return "", false
		}
		cur, ok = obj[key]
		if !ok {
			return "", false
		}
	}
	s, ok := cur.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// firstString returns the first candidate path that holds a string value.
func (p payload) firstString(paths []string) (string, bool) {
	for _, path := range paths {
		if s, ok := p.pickString(path); ok {
			return s, true
		}
	}
	return "", false
}

// matchesAny reports whether any candidate field contains one of the given
// markers, case-insensitively.
func (p payload) matchesAny(paths, markers []string) bool {
	for _, path := range paths {
		s, ok := p.pickString(path)
		if !ok {
			continue
		}
		s = strings.ToLower(s)
		for _, marker := range markers {
			if strings.Contains(s, strings.ToLower(marker)) {
				return true
			}
		}
	}
	return false
}

func truncate(s string) string {
	if len(s) > maxDiagnosticBytes {
		return s[:maxDiagnosticBytes]
	}
	return s
}
