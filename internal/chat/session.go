package chat

import "fmt"

// DefaultGroup is the group a fresh session talks to.
const DefaultGroup = "home"

// TargetKind tells which kind of destination a Target holds.
type TargetKind int

const (
	// TargetNone means plain text has nowhere to go.
	TargetNone TargetKind = iota
	// TargetGroup sends plain text to a group.
	TargetGroup
	// TargetPeer sends plain text to a single peer.
	TargetPeer
)

// Target is the current destination of plain text.
type Target struct {
	Kind TargetKind
	Name string
}

func (t Target) String() string {
	switch t.Kind {
	case TargetGroup:
		return fmt.Sprintf("You are in %s", t.Name)
	case TargetPeer:
		return fmt.Sprintf("You are talking to %s", t.Name)
	default:
		return "You are not talking to anyone"
	}
}

// Session holds the addressing mode of the client: one group, one peer, or nothing.
// It is only touched from the event loop goroutine.
type Session struct {
	group string
	peer  string
}

// NewSession returns a session talking to group. An empty group falls back to DefaultGroup.
func NewSession(group string) *Session {
	if group == "" {
		group = DefaultGroup
	}
	return &Session{group: group}
}

// SetGroup switches to group and forgets the active peer.
func (s *Session) SetGroup(group string) {
	s.group = group
	s.peer = ""
}

// SetPeer switches to peer and forgets the active group.
func (s *Session) SetPeer(name string) {
	s.peer = name
	s.group = ""
}

// Target reports the current destination.
func (s *Session) Target() Target {
	switch {
	case s.peer != "":
		return Target{Kind: TargetPeer, Name: s.peer}
	case s.group != "":
		return Target{Kind: TargetGroup, Name: s.group}
	default:
		return Target{Kind: TargetNone}
	}
}
