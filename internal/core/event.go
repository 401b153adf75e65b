package core

// EventKind is a notification the hub emits to peers.
type EventKind int

const (
	// EventEnter announces a peer on the relay.
	EventEnter EventKind = iota
	// EventExit announces that a peer disconnected or expired.
	EventExit
	// EventJoin announces that a peer joined a group.
	EventJoin
	// EventLeave announces that a peer left a group.
	EventLeave
	// EventWhisper delivers a private message.
	EventWhisper
	// EventShout delivers a group message.
	EventShout
	// EventEvasive warns that a peer has been silent for too long.
	EventEvasive
	// EventError notifies a peer about a domain error.
	EventError
)

// Event is sent to peers to describe what happened on the relay.
type Event struct {
	Kind  EventKind
	Peer  string // subject or author id
	Name  string // subject or author display name
	Group string
	Text  string
	Error *CoreError
}
