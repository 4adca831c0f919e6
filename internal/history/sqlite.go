package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS content_items (
	id            TEXT PRIMARY KEY,
	user_id       TEXT NOT NULL,
	platform      TEXT NOT NULL,
	text          TEXT NOT NULL,
	created_at    TEXT NOT NULL,
	likes         INTEGER NOT NULL DEFAULT 0,
	comments      INTEGER NOT NULL DEFAULT 0,
	shares        INTEGER NOT NULL DEFAULT 0,
	has_image     INTEGER NOT NULL DEFAULT 0,
	face_detected INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_content_user_created ON content_items(user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS memory_kv (
	user_id TEXT NOT NULL,
	key     TEXT NOT NULL,
	value   BLOB NOT NULL,
	PRIMARY KEY (user_id, key)
);

CREATE TABLE IF NOT EXISTS memory_log (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id   TEXT NOT NULL,
	timestamp TEXT NOT NULL,
	summary   TEXT NOT NULL,
	payload   BLOB
);
CREATE INDEX IF NOT EXISTS idx_memory_log_user ON memory_log(user_id, id DESC);
`

// SQLiteStore is a file-backed Store over modernc.org/sqlite. All access is
// single statements; the engine's write patterns never need transactions.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and ensures
// the schema exists.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// modernc's driver is not safe for concurrent writers on one connection
	// pool entry; a single connection serializes access.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) RecentContent(ctx context.Context, userID string, limit int) ([]ContentItem, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, platform, text, created_at, likes, comments, shares, has_image, face_detected
		 FROM content_items WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query content: %w", err)
	}
	defer rows.Close()

	var items []ContentItem
	for rows.Next() {
		var item ContentItem
		var createdAt string
		if err := rows.Scan(&item.ID, &item.UserID, &item.Platform, &item.Text, &createdAt,
			&item.Likes, &item.Comments, &item.Shares, &item.HasImage, &item.FaceDetected); err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		item.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at %q: %w", createdAt, err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *SQLiteStore) SaveContent(ctx context.Context, item ContentItem) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO content_items
		 (id, user_id, platform, text, created_at, likes, comments, shares, has_image, face_detected)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.UserID, item.Platform, item.Text,
		item.CreatedAt.UTC().Format(time.RFC3339),
		item.Likes, item.Comments, item.Shares, item.HasImage, item.FaceDetected)
	if err != nil {
		return fmt.Errorf("save content: %w", err)
	}
	return nil
}

func (s *SQLiteStore) SetMemory(ctx context.Context, userID, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO memory_kv (user_id, key, value) VALUES (?, ?, ?)
		 ON CONFLICT(user_id, key) DO UPDATE SET value = excluded.value`,
		userID, key, value)
	if err != nil {
		return fmt.Errorf("set memory: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetMemory(ctx context.Context, userID, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM memory_kv WHERE user_id = ? AND key = ?`,
		userID, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get memory: %w", err)
	}
	return value, nil
}

func (s *SQLiteStore) AppendEntry(ctx context.Context, entry Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO memory_log (user_id, timestamp, summary, payload) VALUES (?, ?, ?, ?)`,
		entry.UserID, entry.Timestamp.UTC().Format(time.RFC3339), entry.Summary, entry.Payload)
	if err != nil {
		return fmt.Errorf("append entry: %w", err)
	}
	return nil
}

func (s *SQLiteStore) RecentEntries(ctx context.Context, userID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, timestamp, summary, payload
		 FROM memory_log WHERE user_id = ? ORDER BY id DESC LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var ts string
		if err := rows.Scan(&entry.UserID, &ts, &entry.Summary, &entry.Payload); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entry.Timestamp, err = time.Parse(time.RFC3339, ts)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp %q: %w", ts, err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
