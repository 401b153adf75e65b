package chat

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-peer/internal/store"
	"github.com/vovakirdan/wirechat-peer/internal/substrate"
)

// NetworkRouter applies inbound substrate events to the directory and the transcript.
type NetworkRouter struct {
	dir *Directory
	out *Formatter
	log *zerolog.Logger
}

// NewNetworkRouter builds a router over dir writing to out.
func NewNetworkRouter(dir *Directory, out *Formatter, logger *zerolog.Logger) *NetworkRouter {
	return &NetworkRouter{dir: dir, out: out, log: logger}
}

// Handle processes one substrate message. Events about peers whose name cannot be
// resolved are dropped.
func (r *NetworkRouter) Handle(ctx context.Context, msg substrate.Message) {
	ev, err := DecodeEvent(msg)
	if err != nil {
		r.log.Warn().Err(err).Str("tag", msg.Tag).Msg("dropping substrate message")
		return
	}

	switch ev := ev.(type) {
	case EnterEvent:
		name, ok := r.dir.Enter(ev.Peer)
		if !ok {
			r.unresolved(ev.Peer, msg.Tag)
			return
		}
		r.out.Presence(ctx, name, "entered")
	case ExitEvent:
		name, ok := r.dir.Exit(ev.Peer)
		if ev.Name != "" {
			name, ok = ev.Name, true
		}
		if !ok {
			r.unresolved(ev.Peer, msg.Tag)
			return
		}
		r.out.Presence(ctx, name, "left")
	case JoinEvent:
		name, ok := r.dir.NameOf(ev.Peer)
		if !ok {
			r.unresolved(ev.Peer, msg.Tag)
			return
		}
		r.dir.Joined(ev.Peer, ev.Group)
		r.out.Presence(ctx, name, "joined "+ev.Group)
	case LeaveEvent:
		name, ok := r.dir.NameOf(ev.Peer)
		if !ok {
			r.unresolved(ev.Peer, msg.Tag)
			return
		}
		r.dir.Left(ev.Peer, ev.Group)
		r.out.Presence(ctx, name, "left "+ev.Group)
	case WhisperEvent:
		name, ok := r.dir.NameOf(ev.Peer)
		if !ok {
			r.unresolved(ev.Peer, msg.Tag)
			return
		}
		r.out.Message(ctx, store.ChannelPrivate, name, ev.Text, false)
	case ShoutEvent:
		name, ok := r.dir.NameOf(ev.Peer)
		if !ok {
			r.unresolved(ev.Peer, msg.Tag)
			return
		}
		r.out.Message(ctx, ev.Group, name, ev.Text, false)
	case EvasiveEvent:
		r.log.Debug().Str("peer", ev.Peer).Msg("peer is evasive")
	case RefusedEvent:
		r.out.Notice("relay refused: %s", ev.Msg)
	}
}

func (r *NetworkRouter) unresolved(peer, tag string) {
	r.log.Debug().Str("peer", peer).Str("tag", tag).Msg("dropping event for unknown peer")
}
