package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopHandler(name string) HandlerFunc {
	return func(ctx context.Context, query string, state map[string]any) (map[string]any, error) {
		return map[string]any{"handled_by": name}, nil
	}
}

func TestRouter_KeywordScoring(t *testing.T) {
	t.Parallel()

	r := NewRouter(nil).
		Register("growth", noopHandler("growth"), []string{"grow", "followers"}, 0).
		Register("content", noopHandler("content"), []string{"caption", "post"}, 0)

	name, ok := r.Detect("How do I grow my followers?")
	require.True(t, ok)
	assert.Equal(t, "growth", name)

	name, ok = r.Detect("Write me a better caption for this post")
	require.True(t, ok)
	assert.Equal(t, "content", name)
}

func TestRouter_CaseInsensitive(t *testing.T) {
	t.Parallel()

	r := NewRouter(nil).
		Register("stats", noopHandler("stats"), []string{"Metrics", "PERFORMANCE"}, 0)

	name, ok := r.Detect("how are my metrics looking")
	require.True(t, ok)
	assert.Equal(t, "stats", name)
}

func TestRouter_PriorityBreaksTies(t *testing.T) {
	t.Parallel()

	r := NewRouter(nil).
		Register("low", noopHandler("low"), []string{"report"}, 0).
		Register("high", noopHandler("high"), []string{"report"}, 5)

	name, ok := r.Detect("give me a report")
	require.True(t, ok)
	assert.Equal(t, "high", name)
}

func TestRouter_NoMatchUsesDefault(t *testing.T) {
	t.Parallel()

	r := NewRouter(nil).
		Register("growth", noopHandler("growth"), []string{"grow"}, 0).
		SetDefault(noopHandler("default"))

	out, err := r.Route(context.Background(), "completely unrelated text", nil)
	require.NoError(t, err)
	assert.Equal(t, "default", out["handled_by"])
}

func TestRouter_NoMatchNoDefault(t *testing.T) {
	t.Parallel()

	r := NewRouter(nil).
		Register("growth", noopHandler("growth"), []string{"grow"}, 0)

	_, err := r.Route(context.Background(), "completely unrelated text", nil)
	assert.ErrorIs(t, err, ErrNoMatchingCapability)
}

func TestRouter_RouteDispatches(t *testing.T) {
	t.Parallel()

	r := NewRouter(nil).
		Register("growth", noopHandler("growth"), []string{"followers"}, 0)

	out, err := r.Route(context.Background(), "more followers please", nil)
	require.NoError(t, err)
	assert.Equal(t, "growth", out["handled_by"])
}
