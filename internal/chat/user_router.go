package chat

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/vovakirdan/wirechat-peer/internal/store"
	"github.com/vovakirdan/wirechat-peer/internal/substrate"
)

var helpLines = []string{
	"/join <group>    join a group",
	"/leave <group>   leave a group",
	"#<group>         talk to a group",
	"@<peer>          talk to a single peer",
	"/status          show who you are talking to",
	"/peers           list peers on the network",
	"/groups          list joined groups",
	"/history [n]     show the last n transcript lines",
	"/exit, /quit     leave the chat",
}

// UserRouter applies user intents to the session and the substrate.
type UserRouter struct {
	node    substrate.Node
	dir     *Directory
	session *Session
	out     *Formatter
	history store.TranscriptStore
	name    string
	joined  map[string]struct{}
	log     *zerolog.Logger
}

// NewUserRouter builds a router sending as the local display name.
// history may be nil when transcript persistence is disabled.
func NewUserRouter(
	node substrate.Node,
	dir *Directory,
	session *Session,
	out *Formatter,
	history store.TranscriptStore,
	name string,
	logger *zerolog.Logger,
) *UserRouter {
	return &UserRouter{
		node:    node,
		dir:     dir,
		session: session,
		out:     out,
		history: history,
		name:    name,
		joined:  make(map[string]struct{}),
		log:     logger,
	}
}

// Handle applies one intent. It reports true when the client should stop.
func (r *UserRouter) Handle(ctx context.Context, intent Intent) bool {
	switch in := intent.(type) {
	case JoinGroup:
		r.join(in.Group)
	case LeaveGroup:
		r.leave(in.Group)
	case SwitchGroup:
		r.session.SetGroup(in.Group)
	case SwitchPeer:
		r.session.SetPeer(in.Name)
	case Status:
		r.out.Info("%s", r.session.Target())
	case SendText:
		r.send(ctx, in.Text)
	case ListPeers:
		r.listPeers()
	case ListGroups:
		r.listGroups()
	case History:
		r.replay(ctx, in.Limit)
	case Help:
		for _, line := range helpLines {
			r.out.Info("%s", line)
		}
	case Noop:
		if in.Notice != "" {
			r.out.Notice("%s", in.Notice)
		}
	case Exit:
		return true
	}
	return false
}

// Groups returns the joined groups in name order.
func (r *UserRouter) Groups() []string {
	groups := lo.Keys(r.joined)
	sort.Strings(groups)
	return groups
}

// join records the group once the request is queued. A later refusal from the
// substrate arrives as an ERROR event and is shown as a notice.
func (r *UserRouter) join(group string) {
	if _, ok := r.joined[group]; ok {
		return
	}
	if err := r.node.Join(group); err != nil {
		r.log.Warn().Err(err).Str("group", group).Msg("join failed")
		r.out.Notice("could not join %s: %v", group, err)
		return
	}
	r.joined[group] = struct{}{}
}

func (r *UserRouter) leave(group string) {
	if _, ok := r.joined[group]; !ok {
		r.out.Notice("you are not in %s", group)
		return
	}
	if err := r.node.Leave(group); err != nil {
		r.log.Warn().Err(err).Str("group", group).Msg("leave failed")
		r.out.Notice("could not leave %s: %v", group, err)
		return
	}
	delete(r.joined, group)
}

func (r *UserRouter) send(ctx context.Context, text string) {
	target := r.session.Target()

	switch target.Kind {
	case TargetPeer:
		peer, ok := r.dir.IDOf(target.Name)
		if !ok {
			r.out.Notice("no peer named %s", target.Name)
			return
		}
		if err := r.node.Whisper(peer, []byte(text)); err != nil {
			r.log.Warn().Err(err).Str("peer", peer).Msg("whisper failed")
			r.out.Notice("could not send to %s: %v", target.Name, err)
			return
		}
		r.out.Message(ctx, store.ChannelPrivate, r.name, text, true)
	case TargetGroup:
		if err := r.node.Shout(target.Name, []byte(text)); err != nil {
			r.log.Warn().Err(err).Str("group", target.Name).Msg("shout failed")
			r.out.Notice("could not send to %s: %v", target.Name, err)
			return
		}
		r.out.Message(ctx, target.Name, r.name, text, true)
	case TargetNone:
	}
}

func (r *UserRouter) listPeers() {
	peers := r.dir.Peers()
	if len(peers) == 0 {
		r.out.Info("no peers")
		return
	}
	rows := lo.Map(peers, func(p PeerInfo, _ int) []string {
		return []string{p.Name, p.ID, strings.Join(p.Groups, ",")}
	})
	r.out.Table([]string{"Name", "Peer", "Groups"}, rows)
}

func (r *UserRouter) listGroups() {
	groups := r.Groups()
	if len(groups) == 0 {
		r.out.Info("no groups joined")
		return
	}
	r.out.Info("groups: %s", strings.Join(groups, ", "))
}

func (r *UserRouter) replay(ctx context.Context, limit int) {
	if r.history == nil {
		r.out.Notice("history is disabled")
		return
	}
	entries, err := r.history.ListEntries(ctx, "", limit)
	if err != nil {
		r.log.Warn().Err(err).Msg("list history failed")
		r.out.Notice("could not load history: %v", err)
		return
	}
	r.out.Replay(entries)
}
