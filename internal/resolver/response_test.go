package resolver

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func decodeFrom(t *testing.T, contentType, body string) payload {
	t.Helper()
	rec := httptest.NewRecorder()
	rec.Header().Set("Content-Type", contentType)
	rec.WriteString(body)
	resp := rec.Result()
	defer resp.Body.Close()

	pl, err := decodePayload(resp)
	require.NoError(t, err)
	return pl
}

func TestDecodePayload_JSON(t *testing.T) {
	pl := decodeFrom(t, "application/json; charset=utf-8", `{"link":"https://cdn/a.mp3","data":{"url":"https://cdn/b.mp3"}}`)
	require.True(t, pl.Structured)

	link, ok := pl.pickString("link")
	require.True(t, ok)
	require.Equal(t, "https://cdn/a.mp3", link)

	nested, ok := pl.pickString("data.url")
	require.True(t, ok)
	require.Equal(t, "https://cdn/b.mp3", nested)

	_, ok = pl.pickString("data.link")
	require.False(t, ok)
	_, ok = pl.pickString("missing")
	require.False(t, ok)
}

func TestDecodePayload_NonJSONContentType(t *testing.T) {
	pl := decodeFrom(t, "text/html", "<html>error page</html>")
	require.False(t, pl.Structured)
	require.Contains(t, pl.Raw, "error page")
}

func TestDecodePayload_BadJSONBody(t *testing.T) {
	pl := decodeFrom(t, "application/json", "oops not json")
	require.False(t, pl.Structured)
	require.Equal(t, "oops not json", pl.Raw)
}

func TestPayload_FirstString(t *testing.T) {
	pl := decodeFrom(t, "application/json", `{"mp3":"https://cdn/c.mp3","url":123}`)
	got, ok := pl.firstString([]string{"link", "url", "mp3"})
	require.True(t, ok)
	require.Equal(t, "https://cdn/c.mp3", got)
}

func TestPayload_MatchesAny(t *testing.T) {
	pl := decodeFrom(t, "application/json", `{"msg":"Your file is In Queue, please wait"}`)
	require.True(t, pl.matchesAny([]string{"status", "msg"}, []string{"processing", "queue"}))
	require.False(t, pl.matchesAny([]string{"status"}, []string{"processing", "queue"}))
}

func TestTruncate_BoundsDiagnostics(t *testing.T) {
	long := strings.Repeat("x", maxDiagnosticBytes*2)
	require.Len(t, truncate(long), maxDiagnosticBytes)
	require.Equal(t, "short", truncate("short"))
}

func TestDecodePayload_MissingContentType(t *testing.T) {
	// A JSON body without a JSON content type must not be treated as
	// structured data.
	rec := httptest.NewRecorder()
	rec.WriteString(`{"link":"https://cdn/a.mp3"}`)
	resp := rec.Result()
	defer resp.Body.Close()

	pl, err := decodePayload(resp)
	require.NoError(t, err)
	require.False(t, pl.Structured)
}
