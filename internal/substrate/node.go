package substrate

import "errors"

// Event tags carried as the leading frame of every inbound message.
const (
	TagEnter   = "ENTER"
	TagExit    = "EXIT"
	TagJoin    = "JOIN"
	TagLeave   = "LEAVE"
	TagWhisper = "WHISPER"
	TagShout   = "SHOUT"
	TagEvasive = "EVASIVE"
	TagError   = "ERROR"
)

// ErrClosed is returned by Node operations after Close.
var ErrClosed = errors.New("substrate closed")

// Message is an inbound substrate event: a leading tag followed by string frames.
//
//	ENTER   peer
//	EXIT    peer name
//	JOIN    peer group
//	LEAVE   peer group
//	WHISPER peer text
//	SHOUT   peer group text
//	EVASIVE peer
//	ERROR   code message      (a request this node made was refused)
type Message struct {
	Tag    string
	Frames []string
}

// Node is the capability surface the chat core consumes from the messaging substrate.
// Join, Leave, Shout and Whisper are fire-and-forget: an error means the request could
// not be queued, not that delivery failed.
type Node interface {
	Join(group string) error
	Leave(group string) error
	Shout(group string, payload []byte) error
	Whisper(peer string, payload []byte) error

	// NameOf returns the display name the substrate knows for peer.
	NameOf(peer string) (string, bool)

	// Events yields inbound messages. The channel is closed when the node shuts down.
	Events() <-chan Message

	// Close releases the node. It is safe to call more than once.
	Close() error
}
