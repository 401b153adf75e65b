package core

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// Liveness controls when silent peers are reported evasive and when they are dropped.
// Zero durations disable the respective check.
type Liveness struct {
	EvasiveAfter  time.Duration
	ExpireAfter   time.Duration
	SweepInterval time.Duration
}

// PeerInfo is a snapshot of a connected peer.
type PeerInfo struct {
	ID     string   `json:"peer"`
	Name   string   `json:"name"`
	Groups []string `json:"groups"`
}

type registration struct {
	client *Client
	done   chan struct{}
}

type inbound struct {
	client *Client
	cmd    *Command
}

// Hub owns peers and groups. All state is touched only from the Run goroutine;
// everything else talks to it over channels.
type Hub struct {
	clients  map[string]*Client
	groups   map[string]*Group
	liveness Liveness
	now      func() time.Time
	log      *zerolog.Logger

	register   chan registration
	unregister chan *Client
	inbox      chan inbound
	snapshots  chan chan []PeerInfo
	stopped    chan struct{}
}

// NewHub creates a new relay hub instance. logger may be nil.
func NewHub(liveness Liveness, logger *zerolog.Logger) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Hub{
		clients:    make(map[string]*Client),
		groups:     make(map[string]*Group),
		liveness:   liveness,
		now:        time.Now,
		log:        logger,
		register:   make(chan registration),
		unregister: make(chan *Client),
		inbox:      make(chan inbound, 64),
		snapshots:  make(chan chan []PeerInfo),
		stopped:    make(chan struct{}),
	}
}

// RegisterClient announces a new peer and returns once the hub has queued the current
// peers and groups on its Events. The hub starts consuming its Commands.
func (h *Hub) RegisterClient(c *Client) {
	reg := registration{client: c, done: make(chan struct{})}
	select {
	case h.register <- reg:
	case <-h.stopped:
		return
	}
	select {
	case <-reg.done:
	case <-h.stopped:
	}
}

// UnregisterClient drops a peer. Unknown or already dropped peers are ignored.
func (h *Hub) UnregisterClient(c *Client) {
	select {
	case h.unregister <- c:
	case <-c.done:
	case <-h.stopped:
	}
}

// Peers returns a snapshot of connected peers ordered by name.
func (h *Hub) Peers(ctx context.Context) ([]PeerInfo, error) {
	reply := make(chan []PeerInfo, 1)
	select {
	case h.snapshots <- reply:
	case <-h.stopped:
		return nil, context.Canceled
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case peers := <-reply:
		return peers, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Run processes registrations, commands and liveness sweeps until ctx is cancelled.
// Run must be called once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)

	var sweep <-chan time.Time
	if h.liveness.SweepInterval > 0 {
		ticker := time.NewTicker(h.liveness.SweepInterval)
		defer ticker.Stop()
		sweep = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case reg := <-h.register:
			h.handleRegister(ctx, reg.client)
			close(reg.done)
		case c := <-h.unregister:
			h.drop(c)
		case in := <-h.inbox:
			h.handleCommand(in.client, in.cmd)
		case reply := <-h.snapshots:
			reply <- h.snapshot()
		case <-sweep:
			h.sweep()
		}
	}
}

func (h *Hub) handleRegister(ctx context.Context, c *Client) {
	var snapshot []*Event
	for _, other := range h.clients {
		snapshot = append(snapshot, &Event{Kind: EventEnter, Peer: other.ID, Name: other.Name})
		for group := range other.groups {
			snapshot = append(snapshot, &Event{Kind: EventJoin, Peer: other.ID, Name: other.Name, Group: group})
		}
	}
	// the newcomer sees every existing peer even on a busy relay
	if free := cap(c.Events) - len(c.Events); free < len(snapshot)+eventBuffer {
		events := make(chan *Event, len(c.Events)+len(snapshot)+eventBuffer)
		close(c.Events)
		for ev := range c.Events {
			events <- ev
		}
		c.Events = events
	}
	for _, ev := range snapshot {
		c.send(ev)
	}

	c.lastSeen = h.now()
	h.clients[c.ID] = c
	go h.pump(ctx, c)

	h.broadcastOthers(c, &Event{Kind: EventEnter, Peer: c.ID, Name: c.Name})
	h.log.Info().Str("peer", c.ID).Str("name", c.Name).Int("peers", len(h.clients)).Msg("peer entered")
}

// pump forwards a client's commands into the hub inbox.
func (h *Hub) pump(ctx context.Context, c *Client) {
	for {
		select {
		case cmd := <-c.Commands:
			select {
			case h.inbox <- inbound{client: c, cmd: cmd}:
			case <-c.done:
				return
			case <-ctx.Done():
				return
			}
		case <-c.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (h *Hub) handleCommand(c *Client, cmd *Command) {
	if cmd == nil {
		return
	}
	if _, ok := h.clients[c.ID]; !ok {
		return
	}
	c.lastSeen = h.now()
	c.evasive = false

	switch cmd.Kind {
	case CommandJoinGroup:
		h.handleJoin(c, cmd.Group)
	case CommandLeaveGroup:
		h.handleLeave(c, cmd.Group)
	case CommandShout:
		h.handleShout(c, cmd.Group, cmd.Text)
	case CommandWhisper:
		h.handleWhisper(c, cmd.Peer, cmd.Text)
	case CommandPing:
	default:
		c.send(&Event{Kind: EventError, Error: coreError(ErrCodeBadRequest, ErrBadRequest.Error())})
	}
}

func (h *Hub) handleJoin(c *Client, name string) {
	if name == "" {
		c.send(&Event{Kind: EventError, Error: coreError(ErrCodeBadRequest, "group is required")})
		return
	}
	group, ok := h.groups[name]
	if !ok {
		group = NewGroup(name)
		h.groups[name] = group
	}
	if !group.AddClient(c) {
		c.send(&Event{Kind: EventError, Error: coreError(ErrCodeAlreadyJoined, ErrAlreadyJoined.Error())})
		return
	}
	c.groups[name] = struct{}{}
	h.broadcastOthers(c, &Event{Kind: EventJoin, Peer: c.ID, Name: c.Name, Group: name})
}

func (h *Hub) handleLeave(c *Client, name string) {
	group, ok := h.groups[name]
	if !ok || !group.RemoveClient(c) {
		c.send(&Event{Kind: EventError, Error: coreError(ErrCodeNotInGroup, ErrNotInGroup.Error())})
		return
	}
	delete(c.groups, name)
	if group.Empty() {
		delete(h.groups, name)
	}
	h.broadcastOthers(c, &Event{Kind: EventLeave, Peer: c.ID, Name: c.Name, Group: name})
}

// handleShout delivers to the group's members. The author need not be a member.
func (h *Hub) handleShout(c *Client, name, text string) {
	if name == "" {
		c.send(&Event{Kind: EventError, Error: coreError(ErrCodeBadRequest, "group is required")})
		return
	}
	group, ok := h.groups[name]
	if !ok {
		return
	}
	group.Broadcast(&Event{Kind: EventShout, Peer: c.ID, Name: c.Name, Group: name, Text: text}, c)
}

func (h *Hub) handleWhisper(c *Client, peer, text string) {
	target, ok := h.clients[peer]
	if !ok {
		c.send(&Event{Kind: EventError, Error: coreError(ErrCodePeerNotFound, ErrPeerNotFound.Error())})
		return
	}
	target.send(&Event{Kind: EventWhisper, Peer: c.ID, Name: c.Name, Text: text})
}

// drop removes a client from every group, announces its exit and closes its events.
func (h *Hub) drop(c *Client) {
	if current, ok := h.clients[c.ID]; !ok || current != c {
		return
	}
	delete(h.clients, c.ID)
	for name := range c.groups {
		if group, ok := h.groups[name]; ok {
			group.RemoveClient(c)
			if group.Empty() {
				delete(h.groups, name)
			}
		}
	}
	close(c.done)
	close(c.Events)

	h.broadcastOthers(c, &Event{Kind: EventExit, Peer: c.ID, Name: c.Name})
	h.log.Info().Str("peer", c.ID).Str("name", c.Name).Int("peers", len(h.clients)).Msg("peer exited")
}

func (h *Hub) sweep() {
	now := h.now()
	for _, c := range h.clients {
		silent := now.Sub(c.lastSeen)
		switch {
		case h.liveness.ExpireAfter > 0 && silent >= h.liveness.ExpireAfter:
			h.log.Debug().Str("peer", c.ID).Dur("silent", silent).Msg("peer expired")
			h.drop(c)
		case h.liveness.EvasiveAfter > 0 && silent >= h.liveness.EvasiveAfter && !c.evasive:
			c.evasive = true
			h.broadcastOthers(c, &Event{Kind: EventEvasive, Peer: c.ID, Name: c.Name})
		}
	}
}

func (h *Hub) broadcastOthers(from *Client, event *Event) {
	for _, c := range h.clients {
		if c == from {
			continue
		}
		c.send(event)
	}
}

func (h *Hub) snapshot() []PeerInfo {
	peers := lo.MapToSlice(h.clients, func(_ string, c *Client) PeerInfo {
		groups := lo.Keys(c.groups)
		sort.Strings(groups)
		return PeerInfo{ID: c.ID, Name: c.Name, Groups: groups}
	})
	sort.Slice(peers, func(i, j int) bool {
		if peers[i].Name != peers[j].Name {
			return peers[i].Name < peers[j].Name
		}
		return peers[i].ID < peers[j].ID
	})
	return peers
}
