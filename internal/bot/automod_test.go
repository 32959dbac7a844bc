package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirstSuspiciousURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		content    string
		suspicious string
	}{
		{
			name:    "no links",
			content: "just a regular message",
		},
		{
			name:    "allowed domain",
			content: "check out https://github.com/uptrace/bun",
		},
		{
			name:    "allowed domain with www",
			content: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		},
		{
			name:    "allowed short domain",
			content: "https://youtu.be/dQw4w9WgXcQ",
		},
		{
			name:    "mixed case host is still allowed",
			content: "https://GitHub.com/disgoorg/disgo",
		},
		{
			name:       "unknown domain",
			content:    "free nitro at https://discorcl-gift.ru/claim hurry",
			suspicious: "https://discorcl-gift.ru/claim",
		},
		{
			name:       "raw ip address",
			content:    "http://203.0.113.7/payload",
			suspicious: "http://203.0.113.7/payload",
		},
		{
			name:       "suspicious link after an allowed one",
			content:    "https://discord.gg/abc then https://evil.example/x",
			suspicious: "https://evil.example/x",
		},
		{
			name:       "lookalike subdomain",
			content:    "https://discord.gg.scam.net/invite",
			suspicious: "https://discord.gg.scam.net/invite",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			url, found := firstSuspiciousURL(tt.content)
			if tt.suspicious == "" {
				assert.False(t, found)
				return
			}

			assert.True(t, found)
			assert.Equal(t, tt.suspicious, url)
		})
	}
}
