// Package history is the engine's boundary to past content and long-term
// memory. The pipeline only ever reads recent windows and appends entries,
// so the interface stays deliberately small.
package history

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrNotFound is returned when a memory key has no value.
var ErrNotFound = errors.New("history: not found")

// ContentItem is one published piece of content with its latest metrics.
type ContentItem struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Platform     string    `json:"platform"`
	Text         string    `json:"text"`
	CreatedAt    time.Time `json:"created_at"`
	Likes        int       `json:"likes"`
	Comments     int       `json:"comments"`
	Shares       int       `json:"shares"`
	HasImage     bool      `json:"has_image"`
	FaceDetected bool      `json:"face_detected"`
}

// Engagement is the single number the pattern detectors work with.
func (c ContentItem) Engagement() int {
	return c.Likes + c.Comments + c.Shares
}

// Entry is one long-term memory record.
type Entry struct {
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
	Summary   string    `json:"summary"`
	Payload   []byte    `json:"payload,omitempty"`
}

// Store is the persistence boundary.
//
// Implementations must be safe for concurrent use. All operations are
// single items or bounded windows; the engine never scans.
type Store interface {
	// RecentContent returns up to limit items for the user, newest first.
	RecentContent(ctx context.Context, userID string, limit int) ([]ContentItem, error)

	// SaveContent records one content item.
	SaveContent(ctx context.Context, item ContentItem) error

	// SetMemory stores a small keyed value for the user.
	SetMemory(ctx context.Context, userID, key string, value []byte) error

	// GetMemory returns the value stored under key, or ErrNotFound.
	GetMemory(ctx context.Context, userID, key string) ([]byte, error)

	// AppendEntry appends one long-term memory record.
	AppendEntry(ctx context.Context, entry Entry) error

	// RecentEntries returns up to limit records for the user, newest first.
	RecentEntries(ctx context.Context, userID string, limit int) ([]Entry, error)

	// Close releases any underlying resources.
	Close() error
}

// MemStore is an in-memory Store for tests and single-node deployments
// that do not need durability.
type MemStore struct {
	mu      sync.RWMutex
	content map[string][]ContentItem
	kv      map[string]map[string][]byte
	entries map[string][]Entry
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		content: make(map[string][]ContentItem),
		kv:      make(map[string]map[string][]byte),
		entries: make(map[string][]Entry),
	}
}

func (s *MemStore) RecentContent(ctx context.Context, userID string, limit int) ([]ContentItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := s.content[userID]
	out := make([]ContentItem, len(items))
	copy(out, items)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemStore) SaveContent(ctx context.Context, item ContentItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.content[item.UserID] = append(s.content[item.UserID], item)
	return nil
}

func (s *MemStore) SetMemory(ctx context.Context, userID, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.kv[userID] == nil {
		s.kv[userID] = make(map[string][]byte)
	}
	buf := make([]byte, len(value))
	copy(buf, value)
	s.kv[userID][key] = buf
	return nil
}

func (s *MemStore) GetMemory(ctx context.Context, userID, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.kv[userID][key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (s *MemStore) AppendEntry(ctx context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[entry.UserID] = append(s.entries[entry.UserID], entry)
	return nil
}

func (s *MemStore) RecentEntries(ctx context.Context, userID string, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.entries[userID]
	out := make([]Entry, len(entries))
	copy(out, entries)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemStore) Close() error { return nil }
