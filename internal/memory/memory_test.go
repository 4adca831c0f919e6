package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/advisord/internal/agent"
	"github.com/fyrsmithlabs/advisord/internal/history"
	"github.com/fyrsmithlabs/advisord/internal/strategy"
)

func decisionWith(advice ...string) strategy.Decision {
	return strategy.Decision{
		Confidence: strategy.ConfidenceMedium,
		Score:      60,
		Verdict:    strategy.VerdictTweaks,
		Advice:     advice,
	}
}

func TestMemory_EvictsOldestBeyondCapacity(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := New(nil, 50, nil)

	for i := 0; i < 60; i++ {
		m.Store(ctx, "u1", nil, decisionWith(fmt.Sprintf("advice %d", i)), "")
	}

	entries := m.Recall(ctx, "u1", 100)
	require.Len(t, entries, 50)
	assert.Equal(t, []string{"advice 10"}, entries[0].Decision.Advice, "oldest 10 must be evicted")
	assert.Equal(t, []string{"advice 59"}, entries[49].Decision.Advice)
}

func TestMemory_RecallLimitReturnsNewest(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := New(nil, 50, nil)

	for i := 0; i < 5; i++ {
		m.Store(ctx, "u1", nil, decisionWith(fmt.Sprintf("advice %d", i)), "")
	}

	entries := m.Recall(ctx, "u1", 2)
	require.Len(t, entries, 2)
	assert.Equal(t, []string{"advice 3"}, entries[0].Decision.Advice)
	assert.Equal(t, []string{"advice 4"}, entries[1].Decision.Advice)
}

func TestMemory_UsersAreIsolated(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := New(nil, 50, nil)

	m.Store(ctx, "u1", nil, decisionWith("for u1"), "")

	assert.Empty(t, m.Recall(ctx, "u2", 10))
	assert.Len(t, m.Recall(ctx, "u1", 10), 1)
}

func TestMemory_PersistsToLongTermStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := history.NewMemStore()
	m := New(store, 50, nil)

	m.Store(ctx, "u1", map[string]agent.Result{
		"vision": agent.Analyzed(map[string]any{"risk": "Low"}, ""),
	}, decisionWith("keep going"), "twitter post")

	records, err := store.RecentEntries(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, strategy.VerdictTweaks, records[0].Summary)
	assert.NotEmpty(t, records[0].Payload)
}

func TestMemory_LongTermFallbackAfterRestart(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := history.NewMemStore()

	before := New(store, 50, nil)
	before.Store(ctx, "u1", nil, decisionWith("old advice"), "")

	// A fresh Memory has an empty short-term buffer, like after a restart.
	after := New(store, 50, nil)
	entries := after.Recall(ctx, "u1", 10)
	require.Len(t, entries, 1)
	assert.Equal(t, []string{"old advice"}, entries[0].Decision.Advice)
}

type failingStore struct {
	history.Store
}

func (failingStore) AppendEntry(ctx context.Context, entry history.Entry) error {
	return errors.New("disk full")
}

func TestMemory_PersistFailureIsSilent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := New(failingStore{history.NewMemStore()}, 50, nil)

	// Must not panic or surface the error; short-term still records.
	m.Store(ctx, "u1", nil, decisionWith("advice"), "")
	assert.Len(t, m.Recall(ctx, "u1", 10), 1)
}

func TestMemory_UserPatterns(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := New(nil, 50, nil)

	for i := 0; i < 3; i++ {
		m.Store(ctx, "u1", map[string]agent.Result{
			"vision":  agent.Analyzed(map[string]any{"risk": "High"}, ""),
			"content": agent.Analyzed(map[string]any{"issues": []string{"No call-to-action"}}, ""),
		}, decisionWith("Add CTA: 'Comment below', 'Save this', 'Share with someone'"), "")
	}
	m.Store(ctx, "u1", map[string]agent.Result{
		"vision": agent.Analyzed(map[string]any{"risk": "Low"}, ""),
	}, decisionWith("keep it up"), "")

	patterns := m.UserPatterns(ctx, "u1")
	assert.True(t, patterns.HasHistory)
	assert.Equal(t, 4, patterns.TotalObservations)
	require.NotEmpty(t, patterns.CommonVisionRisks)
	assert.Equal(t, "High", patterns.CommonVisionRisks[0])
	assert.Equal(t, []string{"No call-to-action"}, patterns.RecurringContentIssues)
	assert.Equal(t, "Add CTA: 'Comment below', 'Save this', 'Share with someone'", patterns.PastAdvice[0])
}

func TestMemory_UserPatternsEmpty(t *testing.T) {
	t.Parallel()

	m := New(nil, 50, nil)
	patterns := m.UserPatterns(context.Background(), "nobody")
	assert.False(t, patterns.HasHistory)
}
