package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capabilityStub struct {
	name string
}

func (s capabilityStub) Name() string { return s.name }

func (s capabilityStub) Invoke(ctx context.Context, req *Request) (Result, error) {
	return Analyzed(map[string]any{}, ""), nil
}

func TestResult_Constructors(t *testing.T) {
	t.Parallel()

	analyzed := Analyzed(map[string]any{"risk": "Low"}, "High")
	assert.True(t, analyzed.IsAnalyzed())
	assert.Equal(t, ResultAnalyzed, analyzed.Kind)
	assert.Equal(t, "High", analyzed.ConfidenceHint)

	skipped := Skipped("no text provided")
	assert.False(t, skipped.IsAnalyzed())
	assert.Equal(t, "no text provided", skipped.Reason)

	failed := Failed(errors.New("boom"))
	assert.False(t, failed.IsAnalyzed())
	assert.EqualError(t, failed.Err, "boom")
}

func TestResult_TypedAccessors(t *testing.T) {
	t.Parallel()

	res := Analyzed(map[string]any{
		"risk":    "Medium",
		"score":   float64(72), // JSON round-trips arrive as float64
		"count":   3,
		"has_cta": true,
		"fixes":   []any{"brighten the image", "add a face"},
		"issues":  []string{"weak hook"},
		"details": map[string]any{"char_count": 140},
	}, "")

	assert.Equal(t, "Medium", res.String("risk"))
	assert.Equal(t, 72, res.Int("score"))
	assert.Equal(t, 3, res.Int("count"))
	assert.True(t, res.Bool("has_cta"))
	assert.Equal(t, []string{"brighten the image", "add a face"}, res.Strings("fixes"))
	assert.Equal(t, []string{"weak hook"}, res.Strings("issues"))
	require.NotNil(t, res.Map("details"))
	assert.Equal(t, 140, res.Map("details")["char_count"])

	// Absent keys degrade to zero values.
	assert.Empty(t, res.String("missing"))
	assert.Zero(t, res.Int("missing"))
	assert.False(t, res.Bool("missing"))
	assert.Nil(t, res.Strings("missing"))
	assert.Nil(t, res.Map("missing"))
}

func TestParsePlatform(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Platform
	}{
		{"instagram", PlatformInstagram},
		{"Twitter", PlatformTwitter},
		{" LINKEDIN ", PlatformLinkedIn},
		{"youtube", PlatformYouTube},
		{"myspace", PlatformUnknown},
		{"", PlatformUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParsePlatform(tt.in), tt.in)
	}
}

func TestRequest_Payloads(t *testing.T) {
	t.Parallel()

	req := NewRequest("user-1", PlatformInstagram)
	assert.False(t, req.HasImage())
	assert.False(t, req.HasText())
	assert.NotNil(t, req.Observations)

	req.Image = []byte{0x89}
	req.Text = "  \n"
	assert.True(t, req.HasImage())
	assert.False(t, req.HasText(), "whitespace-only text is no payload")

	req.Text = "hello"
	assert.True(t, req.HasText())
}

func TestRegistry_StaticConstruction(t *testing.T) {
	t.Parallel()

	a := capabilityStub{name: "vision"}
	b := capabilityStub{name: "content"}

	reg, err := NewRegistry(a, b)
	require.NoError(t, err)

	assert.Equal(t, 2, reg.Len())
	assert.Equal(t, []string{"content", "vision"}, reg.Names())

	got, ok := reg.Get("vision")
	require.True(t, ok)
	assert.Equal(t, "vision", got.Name())

	_, ok = reg.Get("absent")
	assert.False(t, ok)
}

func TestRegistry_DuplicateName(t *testing.T) {
	t.Parallel()

	_, err := NewRegistry(capabilityStub{name: "vision"}, capabilityStub{name: "vision"})
	assert.ErrorContains(t, err, "duplicate capability")
}

func TestCapabilityError_Unwrap(t *testing.T) {
	t.Parallel()

	wrapped := &CapabilityError{Capability: "vision", Err: ErrCapabilityTimeout}
	assert.ErrorIs(t, wrapped, ErrCapabilityTimeout)
	assert.Contains(t, wrapped.Error(), "vision")
}
