// Package memory keeps a bounded per-user record of observation-decision
// pairs. Short-term recall is served from an in-process ring; long-term
// persistence is best effort through the history store and never blocks or
// fails a request.
package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/advisord/internal/agent"
	"github.com/fyrsmithlabs/advisord/internal/history"
	"github.com/fyrsmithlabs/advisord/internal/logging"
	"github.com/fyrsmithlabs/advisord/internal/strategy"
)

// DefaultCapacity is the per-user short-term buffer size.
const DefaultCapacity = 50

// Entry is one remembered observation-decision pair.
type Entry struct {
	Timestamp    time.Time                 `json:"timestamp"`
	Observations map[string]map[string]any `json:"observations,omitempty"`
	Decision     strategy.Decision         `json:"decision"`
	Context      string                    `json:"context,omitempty"`
}

// UserPatterns aggregates what memory knows about one user.
type UserPatterns struct {
	HasHistory             bool     `json:"has_history"`
	TotalObservations      int      `json:"total_observations"`
	CommonVisionRisks      []string `json:"common_vision_risks,omitempty"`
	RecurringContentIssues []string `json:"recurring_content_issues,omitempty"`
	PastAdvice             []string `json:"past_advice,omitempty"`
}

// Memory is the REMEMBER-phase store.
type Memory struct {
	mu       sync.RWMutex
	buffers  map[string][]Entry
	capacity int

	store  history.Store
	logger *logging.Logger
	now    func() time.Time
}

// New creates a Memory. The store may be nil, in which case only the
// short-term buffer is kept. Capacity <= 0 selects DefaultCapacity.
func New(store history.Store, capacity int, logger *logging.Logger) *Memory {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Memory{
		buffers:  make(map[string][]Entry),
		capacity: capacity,
		store:    store,
		logger:   logger.Named("memory"),
		now:      time.Now,
	}
}

// Store remembers one observation-decision pair. The short-term write
// always succeeds; the long-term write is best effort and a failure is
// only logged.
func (m *Memory) Store(ctx context.Context, userID string, observations map[string]agent.Result, decision strategy.Decision, contextSummary string) {
	entry := Entry{
		Timestamp:    m.now().UTC(),
		Observations: flattenObservations(observations),
		Decision:     decision,
		Context:      contextSummary,
	}

	m.mu.Lock()
	buf := append(m.buffers[userID], entry)
	if len(buf) > m.capacity {
		buf = buf[len(buf)-m.capacity:]
	}
	m.buffers[userID] = buf
	m.mu.Unlock()

	if m.store == nil {
		return
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		m.logger.Warn(ctx, "failed to encode memory entry", zap.Error(err))
		return
	}
	err = m.store.AppendEntry(ctx, history.Entry{
		UserID:    userID,
		Timestamp: entry.Timestamp,
		Summary:   decision.Verdict,
		Payload:   payload,
	})
	if err != nil {
		m.logger.Warn(ctx, "failed to persist memory entry",
			zap.String("user", userID), zap.Error(err))
	}
}

// Recall returns up to limit entries for the user, newest last. Short-term
// memory wins; the long-term log is only consulted when the buffer is
// empty, which happens after a restart.
func (m *Memory) Recall(ctx context.Context, userID string, limit int) []Entry {
	if limit <= 0 {
		limit = 10
	}

	m.mu.RLock()
	buf := m.buffers[userID]
	if len(buf) > 0 {
		if len(buf) > limit {
			buf = buf[len(buf)-limit:]
		}
		out := make([]Entry, len(buf))
		copy(out, buf)
		m.mu.RUnlock()
		return out
	}
	m.mu.RUnlock()

	if m.store == nil {
		return nil
	}

	records, err := m.store.RecentEntries(ctx, userID, limit)
	if err != nil {
		m.logger.Warn(ctx, "failed to recall long-term memory",
			zap.String("user", userID), zap.Error(err))
		return nil
	}

	// RecentEntries is newest first; recall order is oldest first.
	out := make([]Entry, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		var entry Entry
		if err := json.Unmarshal(records[i].Payload, &entry); err != nil {
			continue
		}
		out = append(out, entry)
	}
	return out
}

// UserPatterns aggregates the most common vision risks, content issues,
// and advice across recalled entries.
func (m *Memory) UserPatterns(ctx context.Context, userID string) UserPatterns {
	entries := m.Recall(ctx, userID, m.capacity)
	if len(entries) == 0 {
		return UserPatterns{}
	}

	var risks, issues, advice []string
	for _, entry := range entries {
		if vision, ok := entry.Observations["vision"]; ok {
			if risk, ok := vision["risk"].(string); ok {
				risks = append(risks, risk)
			}
		}
		if content, ok := entry.Observations["content"]; ok {
			issues = append(issues, stringSlice(content["issues"])...)
		}
		advice = append(advice, entry.Decision.Advice...)
	}

	return UserPatterns{
		HasHistory:             true,
		TotalObservations:      len(entries),
		CommonVisionRisks:      mostCommon(risks, 3),
		RecurringContentIssues: mostCommon(issues, 3),
		PastAdvice:             mostCommon(advice, 5),
	}
}

func flattenObservations(observations map[string]agent.Result) map[string]map[string]any {
	if len(observations) == 0 {
		return nil
	}
	out := make(map[string]map[string]any, len(observations))
	for name, res := range observations {
		switch res.Kind {
		case agent.ResultAnalyzed:
			out[name] = res.Data
		case agent.ResultSkipped:
			out[name] = map[string]any{"skipped": res.Reason}
		case agent.ResultFailed:
			msg := ""
			if res.Err != nil {
				msg = res.Err.Error()
			}
			out[name] = map[string]any{"failed": msg}
		}
	}
	return out
}

func stringSlice(v any) []string {
	switch values := v.(type) {
	case []string:
		return values
	case []any:
		out := make([]string, 0, len(values))
		for _, item := range values {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// mostCommon returns the n most frequent values, ties broken
// lexicographically for stable output.
func mostCommon(values []string, n int) []string {
	if len(values) == 0 {
		return nil
	}
	counts := make(map[string]int)
	for _, v := range values {
		counts[v]++
	}

	unique := make([]string, 0, len(counts))
	for v := range counts {
		unique = append(unique, v)
	}
	sort.Slice(unique, func(i, j int) bool {
		if counts[unique[i]] != counts[unique[j]] {
			return counts[unique[i]] > counts[unique[j]]
		}
		return unique[i] < unique[j]
	})

	if len(unique) > n {
		unique = unique[:n]
	}
	return unique
}
