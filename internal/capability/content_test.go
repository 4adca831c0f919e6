package capability

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/advisord/internal/agent"
)

func TestContent_SkipsWithoutText(t *testing.T) {
	t.Parallel()

	c := NewContent(nil)
	req := agent.NewRequest("u1", agent.PlatformInstagram)

	res, err := c.Invoke(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, agent.ResultSkipped, res.Kind)
	assert.Equal(t, "no text provided", res.Reason)
}

func TestContent_StrongCaptionScoresHigh(t *testing.T) {
	t.Parallel()

	c := NewContent(nil)
	req := agent.NewRequest("u1", agent.PlatformInstagram)
	// Question hook, CTA, emoji, in-window length, 3 hashtags.
	req.Text = "What's the secret to better reach? 🔥 Here is the honest answer nobody talks about. " +
		"Comment below with your biggest struggle! #growth #creator #social"

	res, err := c.Invoke(context.Background(), req)
	require.NoError(t, err)
	require.True(t, res.IsAnalyzed())

	assert.Equal(t, 100, res.Int("score"))
	assert.Equal(t, "Strong", res.String("hook_strength"))
	assert.Equal(t, "optimal", res.String("length_assessment"))
	assert.True(t, res.Bool("has_cta"))
	assert.Empty(t, res.Strings("issues"))
}

func TestContent_WeakCaptionReportsIssues(t *testing.T) {
	t.Parallel()

	c := NewContent(nil)
	req := agent.NewRequest("u1", agent.PlatformInstagram)
	req.Text = "my new video is up"

	res, err := c.Invoke(context.Background(), req)
	require.NoError(t, err)
	require.True(t, res.IsAnalyzed())

	issues := res.Strings("issues")
	assert.Contains(t, issues, "Weak hook in first line")
	assert.Contains(t, issues, "Caption too short")
	assert.Contains(t, issues, "No call-to-action")
	assert.Equal(t, "Weak", res.String("hook_strength"))
	assert.Equal(t, "too_short", res.String("length_assessment"))

	// Base 50, no bonuses.
	assert.Equal(t, 50, res.Int("score"))
}

func TestContent_SuggestionsCappedAtFour(t *testing.T) {
	t.Parallel()

	c := NewContent(nil)
	req := agent.NewRequest("u1", agent.PlatformInstagram)
	req.Text = "went for a walk" // weak everything

	res, err := c.Invoke(context.Background(), req)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(res.Strings("suggestions")), 4)
}

func TestContent_PlatformLengthWindows(t *testing.T) {
	t.Parallel()

	c := NewContent(nil)
	text := strings.Repeat("a", 250)

	tests := []struct {
		platform agent.Platform
		want     string
	}{
		{agent.PlatformInstagram, "optimal"},  // 100-300
		{agent.PlatformTwitter, "too_long"},   // 80-200
		{agent.PlatformLinkedIn, "optimal"},   // 150-400
		{agent.PlatformYouTube, "too_long"},   // 100-200
		{agent.PlatformUnknown, "optimal"},    // defaults to instagram window
	}

	for _, tt := range tests {
		req := agent.NewRequest("u1", tt.platform)
		req.Text = text

		res, err := c.Invoke(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, tt.want, res.String("length_assessment"), string(tt.platform))
	}
}

func TestContent_HookDetection(t *testing.T) {
	t.Parallel()

	c := NewContent(nil)

	tests := []struct {
		name string
		text string
		want string
	}{
		{"question", "Why does nobody talk about this?", "Strong"},
		{"power word", "The biggest mistake creators make every day", "Strong"},
		{"leading number", "5 things I wish I knew earlier", "Medium"},
		{"power emoji", "Launching today 🚀 more soon", "Medium"},
		{"plain", "went to the beach today with friends", "Weak"},
		{"question past 120 chars", strings.Repeat("a", 121) + "?", "Weak"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := agent.NewRequest("u1", agent.PlatformInstagram)
			req.Text = tt.text

			res, err := c.Invoke(context.Background(), req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.String("hook_strength"))
		})
	}
}

func TestContent_Details(t *testing.T) {
	t.Parallel()

	c := NewContent(nil)
	req := agent.NewRequest("u1", agent.PlatformInstagram)
	req.Text = "New drop 🔥 tag a friend #style #ootd"

	res, err := c.Invoke(context.Background(), req)
	require.NoError(t, err)

	details := res.Map("details")
	require.NotNil(t, details)
	assert.Equal(t, 2, details["hashtag_count"])
	assert.Equal(t, 1, details["emoji_count"])
	assert.Equal(t, 8, details["word_count"])
}
