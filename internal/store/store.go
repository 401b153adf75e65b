package store

import (
	"context"
	"time"
)

// EntryKind tells what a transcript entry records.
type EntryKind string

const (
	// EntryMessage is a shout or whisper, sent or received.
	EntryMessage EntryKind = "message"
	// EntryPresence is a peer entering, leaving, joining or leaving a group.
	EntryPresence EntryKind = "presence"
)

// ChannelPrivate is the channel name recorded for whispers.
const ChannelPrivate = "private"

// Entry is one persisted transcript line.
type Entry struct {
	ID        int64
	Kind      EntryKind
	Channel   string // group name, ChannelPrivate, or empty for presence
	Peer      string // display name of the author or subject
	Text      string // message body or presence action
	Outgoing  bool
	CreatedAt time.Time
}

// TranscriptStore handles transcript persistence.
type TranscriptStore interface {
	// SaveEntry persists an entry and sets its ID.
	SaveEntry(ctx context.Context, entry *Entry) error

	// ListEntries returns up to limit most recent entries in chronological order.
	// An empty channel matches every channel.
	ListEntries(ctx context.Context, channel string, limit int) ([]*Entry, error)
}

// Store aggregates storage interfaces.
type Store interface {
	TranscriptStore

	// Close closes the underlying database connection.
	Close() error
}
