package chat

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/wirechat-peer/internal/substrate"
)

var (
	// ErrUnknownTag is returned for substrate messages with an unrecognized tag.
	ErrUnknownTag = errors.New("unknown event tag")
	// ErrMalformedEvent is returned when a message carries too few frames for its tag.
	ErrMalformedEvent = errors.New("malformed event")
)

// NetworkEvent is a decoded substrate event. The set of implementations is closed.
type NetworkEvent interface {
	isNetworkEvent()
}

// EnterEvent reports a peer appearing on the network.
type EnterEvent struct{ Peer string }

// ExitEvent reports a peer leaving the network. Name is the name the substrate last knew.
type ExitEvent struct{ Peer, Name string }

// JoinEvent reports a peer joining a group.
type JoinEvent struct{ Peer, Group string }

// LeaveEvent reports a peer leaving a group.
type LeaveEvent struct{ Peer, Group string }

// WhisperEvent is a private message addressed to this client.
type WhisperEvent struct{ Peer, Text string }

// ShoutEvent is a message sent to a group this client belongs to.
type ShoutEvent struct{ Peer, Group, Text string }

// EvasiveEvent warns that a peer is close to timing out.
type EvasiveEvent struct{ Peer string }

// RefusedEvent reports that the substrate refused one of our requests.
type RefusedEvent struct{ Code, Msg string }

func (EnterEvent) isNetworkEvent()   {}
func (ExitEvent) isNetworkEvent()    {}
func (JoinEvent) isNetworkEvent()    {}
func (LeaveEvent) isNetworkEvent()   {}
func (WhisperEvent) isNetworkEvent() {}
func (ShoutEvent) isNetworkEvent()   {}
func (EvasiveEvent) isNetworkEvent() {}
func (RefusedEvent) isNetworkEvent() {}

var eventArity = map[string]int{
	substrate.TagEnter:   1,
	substrate.TagExit:    1,
	substrate.TagJoin:    2,
	substrate.TagLeave:   2,
	substrate.TagWhisper: 2,
	substrate.TagShout:   3,
	substrate.TagEvasive: 0,
	substrate.TagError:   2,
}

// DecodeEvent maps a tagged substrate message onto its NetworkEvent.
func DecodeEvent(msg substrate.Message) (NetworkEvent, error) {
	want, ok := eventArity[msg.Tag]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTag, msg.Tag)
	}
	if len(msg.Frames) < want {
		return nil, fmt.Errorf("%w: %s has %d frames, want %d", ErrMalformedEvent, msg.Tag, len(msg.Frames), want)
	}

	f := msg.Frames
	switch msg.Tag {
	case substrate.TagEnter:
		return EnterEvent{Peer: f[0]}, nil
	case substrate.TagExit:
		ev := ExitEvent{Peer: f[0]}
		if len(f) > 1 {
			ev.Name = f[1]
		}
		return ev, nil
	case substrate.TagJoin:
		return JoinEvent{Peer: f[0], Group: f[1]}, nil
	case substrate.TagLeave:
		return LeaveEvent{Peer: f[0], Group: f[1]}, nil
	case substrate.TagWhisper:
		return WhisperEvent{Peer: f[0], Text: f[1]}, nil
	case substrate.TagShout:
		return ShoutEvent{Peer: f[0], Group: f[1], Text: f[2]}, nil
	case substrate.TagError:
		return RefusedEvent{Code: f[0], Msg: f[1]}, nil
	default:
		ev := EvasiveEvent{}
		if len(f) > 0 {
			ev.Peer = f[0]
		}
		return ev, nil
	}
}
