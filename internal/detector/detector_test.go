package detector

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testSignatures() map[string]string {
	return map[string]string{
		"gptbot":          "GPTBot",
		"claudebot":       "ClaudeBot",
		"anthropic-ai":    "anthropic-ai",
		"perplexitybot":   "PerplexityBot",
		"google-extended": "Google-Extended",
		"ccbot":           "CCBot",
	}
}

func TestDetector_Match(t *testing.T) {
	t.Parallel()

	d := New(testSignatures())

	cases := []struct {
		name      string
		userAgent string
		wantName  string
		wantMatch bool
	}{
		{
			name:      "bare signature",
			userAgent: "GPTBot",
			wantName:  "gptbot",
			wantMatch: true,
		},
		{
			name:      "signature embedded in product token chain",
			userAgent: "Mozilla/5.0 AppleWebKit/537.36 (KHTML, like Gecko; compatible; ClaudeBot/1.0; +claudebot@anthropic.com)",
			wantName:  "claudebot",
			wantMatch: true,
		},
		{
			name:      "lowercase signature",
			userAgent: "Mozilla/5.0 (compatible; anthropic-ai/1.1)",
			wantName:  "anthropic-ai",
			wantMatch: true,
		},
		{
			name:      "case-sensitive miss",
			userAgent: "gptbot",
			wantMatch: false,
		},
		{
			name:      "ordinary browser",
			userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
			wantMatch: false,
		},
		{
			name:      "empty user agent",
			userAgent: "",
			wantMatch: false,
		},
		{
			name:      "signature with suffix",
			userAgent: "CCBot/2.0 (https://commoncrawl.org/faq/)",
			wantName:  "ccbot",
			wantMatch: true,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			name, ok := d.Match(tc.userAgent)
			require.Equal(t, tc.wantMatch, ok)
			if tc.wantMatch {
				require.Equal(t, tc.wantName, name)
			} else {
				require.Empty(t, name)
			}
			require.Equal(t, tc.wantMatch, d.IsAutomatedAgent(tc.userAgent))
		})
	}
}

func TestDetector_MatchIsDeterministic(t *testing.T) {
	t.Parallel()

	// Two signatures match the same agent; the lexically first name wins
	// every time.
	d := New(map[string]string{
		"zbot": "Bot",
		"abot": "Bot",
	})

	for i := 0; i < 50; i++ {
		name, ok := d.Match("SomeBot/1.0")
		require.True(t, ok)
		require.Equal(t, "abot", name)
	}
}

func TestDetector_EmptyTableMatchesNothing(t *testing.T) {
	t.Parallel()

	d := New(nil)
	require.False(t, d.IsAutomatedAgent("GPTBot"))

	var zero Detector
	require.False(t, zero.IsAutomatedAgent("GPTBot"))
}
