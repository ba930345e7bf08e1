package youtube

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"
)

func TestExtractVideoID(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{name: "short link", input: "https://youtu.be/abcDEF123", want: "abcDEF123", ok: true},
		{name: "short link with params", input: "https://youtu.be/abcDEF123?t=42", want: "abcDEF123", ok: true},
		{name: "shorts path", input: "https://www.youtube.com/shorts/xYz_-12345", want: "xYz_-12345", ok: true},
		{name: "canonical watch url", input: "https://www.youtube.com/watch?v=dQw4w9WgXcQ", want: "dQw4w9WgXcQ", ok: true},
		{name: "watch url with extra params", input: "https://www.youtube.com/watch?list=PL1&v=dQw4w9WgXcQ&t=3", want: "dQw4w9WgXcQ", ok: true},
		{name: "bare text", input: "not a url at all", ok: false},
		{name: "empty", input: "", ok: false},
		{name: "truncated short link id", input: "https://youtu.be/abc", ok: false},
		{name: "watch url with short id", input: "https://www.youtube.com/watch?v=abc", ok: false},
		{name: "unrelated host", input: "https://vimeo.com/123456789", ok: false},
		{name: "unparsable url", input: "http://%zz/watch?v=abcdef123", ok: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ExtractVideoID(tc.input)
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestExtractVideoID_RandomGarbageNeverPanics(t *testing.T) {
	gofakeit.Seed(1)
	for i := 0; i < 200; i++ {
		input := gofakeit.Sentence(8)
		_, ok := ExtractVideoID(input)
		require.False(t, ok, "unexpected match for %q", input)
	}
}
