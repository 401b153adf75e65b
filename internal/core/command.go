package core

// CommandKind describes what the peer wants to do.
type CommandKind int

const (
	// CommandJoinGroup subscribes the peer to a group.
	CommandJoinGroup CommandKind = iota
	// CommandLeaveGroup unsubscribes the peer from a group.
	CommandLeaveGroup
	// CommandShout delivers text to every member of a group.
	CommandShout
	// CommandWhisper delivers text to a single peer.
	CommandWhisper
	// CommandPing only refreshes liveness.
	CommandPing
)

// Command represents an action requested by a peer.
type Command struct {
	Kind  CommandKind
	Group string
	Peer  string // whisper target
	Text  string
}
