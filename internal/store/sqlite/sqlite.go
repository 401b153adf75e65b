package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vovakirdan/wirechat-peer/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS transcript (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	kind       TEXT NOT NULL,
	channel    TEXT NOT NULL DEFAULT '',
	peer       TEXT NOT NULL,
	body       TEXT NOT NULL,
	outgoing   BOOLEAN NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transcript_channel ON transcript(channel, id DESC);
`

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and applies the schema.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with single connection; it also keeps :memory: databases alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveEntry persists a transcript entry.
func (s *SQLiteStore) SaveEntry(ctx context.Context, entry *store.Entry) error {
	query := `
		INSERT INTO transcript (kind, channel, peer, body, outgoing, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query,
		string(entry.Kind), entry.Channel, entry.Peer, entry.Text, entry.Outgoing, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	entry.ID = id
	return nil
}

// ListEntries retrieves the most recent entries, oldest first.
func (s *SQLiteStore) ListEntries(ctx context.Context, channel string, limit int) ([]*store.Entry, error) {
	var query string
	var args []interface{}

	if channel != "" {
		query = `
			SELECT id, kind, channel, peer, body, outgoing, created_at
			FROM transcript
			WHERE channel = ?
			ORDER BY id DESC
			LIMIT ?
		`
		args = []interface{}{channel, limit}
	} else {
		query = `
			SELECT id, kind, channel, peer, body, outgoing, created_at
			FROM transcript
			ORDER BY id DESC
			LIMIT ?
		`
		args = []interface{}{limit}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []*store.Entry
	for rows.Next() {
		var (
			entry store.Entry
			kind  string
		)
		if err := rows.Scan(&entry.ID, &kind, &entry.Channel, &entry.Peer, &entry.Text, &entry.Outgoing, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entry.Kind = store.EntryKind(kind)
		entries = append(entries, &entry)
	}

	// Reverse to get chronological order
	for i := 0; i < len(entries)/2; i++ {
		entries[i], entries[len(entries)-1-i] = entries[len(entries)-1-i], entries[i]
	}

	return entries, rows.Err()
}
