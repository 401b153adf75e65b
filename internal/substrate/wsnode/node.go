// Package wsnode implements substrate.Node on top of a WebSocket relay.
package wsnode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/wirechat-peer/internal/proto"
	"github.com/vovakirdan/wirechat-peer/internal/substrate"
)

const (
	outboxSize = 64
	eventsSize = 64
)

// Config describes how to reach the relay.
type Config struct {
	URL         string
	Name        string
	Token       string
	Heartbeat   time.Duration
	DialTimeout time.Duration
	Verbose     bool
}

// RelayError is returned by Dial when the relay refuses the hello.
type RelayError struct {
	Code string
	Msg  string
}

func (e *RelayError) Error() string {
	return fmt.Sprintf("relay refused: %s: %s", e.Code, e.Msg)
}

// Node is a relay-backed substrate node.
type Node struct {
	id      string
	conn    *websocket.Conn
	log     *zerolog.Logger
	verbose bool

	mu    sync.RWMutex
	names map[string]string

	outbox chan proto.Inbound
	events chan substrate.Message

	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

var _ substrate.Node = (*Node)(nil)

// Dial connects to the relay, introduces the node and starts its loops.
func Dial(ctx context.Context, cfg Config, logger *zerolog.Logger) (*Node, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	dialCtx := ctx
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}

	conn, _, err := websocket.Dial(dialCtx, cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial relay %s: %w", cfg.URL, err)
	}

	id, err := greet(dialCtx, conn, cfg)
	if err != nil {
		conn.Close(websocket.StatusNormalClosure, "handshake failed")
		return nil, err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	n := &Node{
		id:      id,
		conn:    conn,
		log:     logger,
		verbose: cfg.Verbose,
		names:   make(map[string]string),
		outbox:  make(chan proto.Inbound, outboxSize),
		events:  make(chan substrate.Message, eventsSize),
		ctx:     runCtx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error { return n.readLoop(gctx) })
	g.Go(func() error { return n.writeLoop(gctx) })
	if cfg.Heartbeat > 0 {
		g.Go(func() error { return n.heartbeat(gctx, cfg.Heartbeat) })
	}
	go func() {
		err := g.Wait()
		if err != nil && !errors.Is(err, context.Canceled) {
			n.log.Warn().Err(err).Msg("relay connection lost")
		}
		n.cancel()
		n.conn.Close(websocket.StatusNormalClosure, "bye")
		close(n.events)
		close(n.done)
	}()

	n.trace().Str("peer", id).Str("url", cfg.URL).Msg("connected to relay")
	return n, nil
}

func greet(ctx context.Context, conn *websocket.Conn, cfg Config) (string, error) {
	hello, err := proto.NewInbound(proto.InboundTypeHello, proto.HelloData{
		Name:     cfg.Name,
		Token:    cfg.Token,
		Protocol: proto.ProtocolVersion,
	})
	if err != nil {
		return "", err
	}
	if err := wsjson.Write(ctx, conn, hello); err != nil {
		return "", fmt.Errorf("send hello: %w", err)
	}

	var reply proto.Outbound
	if err := wsjson.Read(ctx, conn, &reply); err != nil {
		return "", fmt.Errorf("read welcome: %w", err)
	}
	switch reply.Type {
	case proto.OutboundTypeWelcome:
		var welcome proto.WelcomeData
		if err := json.Unmarshal(reply.Data, &welcome); err != nil {
			return "", fmt.Errorf("decode welcome: %w", err)
		}
		return welcome.Peer, nil
	case proto.OutboundTypeError:
		if reply.Error == nil {
			return "", &RelayError{Code: "unknown", Msg: "no detail"}
		}
		return "", &RelayError{Code: reply.Error.Code, Msg: reply.Error.Msg}
	default:
		return "", fmt.Errorf("unexpected %q before welcome", reply.Type)
	}
}

// ID returns the peer id the relay assigned to this node.
func (n *Node) ID() string { return n.id }

func (n *Node) Join(group string) error {
	return n.enqueue(proto.InboundTypeJoin, proto.GroupData{Group: group})
}

func (n *Node) Leave(group string) error {
	return n.enqueue(proto.InboundTypeLeave, proto.GroupData{Group: group})
}

func (n *Node) Shout(group string, payload []byte) error {
	return n.enqueue(proto.InboundTypeShout, proto.ShoutData{Group: group, Text: string(payload)})
}

func (n *Node) Whisper(peer string, payload []byte) error {
	return n.enqueue(proto.InboundTypeWhisper, proto.WhisperData{Peer: peer, Text: string(payload)})
}

func (n *Node) NameOf(peer string) (string, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	name, ok := n.names[peer]
	return name, ok
}

func (n *Node) Events() <-chan substrate.Message {
	return n.events
}

// Close stops the loops and waits for them. Events is closed once it returns.
func (n *Node) Close() error {
	n.closeOnce.Do(func() {
		n.trace().Msg("closing relay connection")
		n.cancel()
	})
	<-n.done
	return nil
}

func (n *Node) enqueue(typ string, data any) error {
	if n.ctx.Err() != nil {
		return substrate.ErrClosed
	}
	msg, err := proto.NewInbound(typ, data)
	if err != nil {
		return err
	}
	select {
	case n.outbox <- msg:
		return nil
	case <-n.ctx.Done():
		return substrate.ErrClosed
	}
}

func (n *Node) writeLoop(ctx context.Context) error {
	for {
		select {
		case msg := <-n.outbox:
			n.trace().Str("type", msg.Type).RawJSON("data", rawOrNull(msg.Data)).Msg("send")
			if err := wsjson.Write(ctx, n.conn, msg); err != nil {
				return fmt.Errorf("write %s: %w", msg.Type, err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (n *Node) heartbeat(ctx context.Context, every time.Duration) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	ping := proto.Inbound{Type: proto.InboundTypePing}
	for {
		select {
		case <-ticker.C:
			select {
			case n.outbox <- ping:
			default:
				// outbox busy; any queued command refreshes liveness too
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (n *Node) readLoop(ctx context.Context) error {
	for {
		var out proto.Outbound
		if err := wsjson.Read(ctx, n.conn, &out); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return nil
			}
			return fmt.Errorf("read relay: %w", err)
		}
		switch out.Type {
		case proto.OutboundTypeEvent:
			msg, ok := n.translate(out)
			if !ok {
				continue
			}
			select {
			case n.events <- msg:
			case <-ctx.Done():
				return ctx.Err()
			}
		case proto.OutboundTypeError:
			if out.Error == nil {
				continue
			}
			n.trace().Str("code", out.Error.Code).Str("msg", out.Error.Msg).Msg("relay error")
			msg := substrate.Message{Tag: substrate.TagError, Frames: []string{out.Error.Code, out.Error.Msg}}
			select {
			case n.events <- msg:
			case <-ctx.Done():
				return ctx.Err()
			}
		default:
			n.trace().Str("type", out.Type).Msg("ignoring relay message")
		}
	}
}

// translate turns a relay event into a tagged substrate message and keeps the name table current.
func (n *Node) translate(out proto.Outbound) (substrate.Message, bool) {
	var data proto.EventData
	if err := json.Unmarshal(out.Data, &data); err != nil {
		n.log.Warn().Err(err).Str("event", out.Event).Msg("malformed relay event")
		return substrate.Message{}, false
	}
	n.trace().Str("event", out.Event).Str("peer", data.Peer).Str("name", data.Name).Msg("recv")

	var frames []string
	switch out.Event {
	case proto.EventEnter:
		n.remember(data.Peer, data.Name)
		frames = []string{data.Peer}
	case proto.EventExit:
		name := n.forget(data.Peer)
		if name == "" {
			name = data.Name
		}
		frames = []string{data.Peer, name}
	case proto.EventJoin, proto.EventLeave:
		n.remember(data.Peer, data.Name)
		frames = []string{data.Peer, data.Group}
	case proto.EventWhisper:
		n.remember(data.Peer, data.Name)
		frames = []string{data.Peer, data.Text}
	case proto.EventShout:
		n.remember(data.Peer, data.Name)
		frames = []string{data.Peer, data.Group, data.Text}
	case proto.EventEvasive:
		frames = []string{data.Peer}
	default:
		n.log.Debug().Str("event", out.Event).Msg("unknown relay event")
		return substrate.Message{}, false
	}
	return substrate.Message{Tag: out.Event, Frames: frames}, true
}

func (n *Node) remember(peer, name string) {
	if peer == "" || name == "" {
		return
	}
	n.mu.Lock()
	n.names[peer] = name
	n.mu.Unlock()
}

func (n *Node) forget(peer string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	name := n.names[peer]
	delete(n.names, peer)
	return name
}

// trace logs protocol traffic at info level in verbose mode and at debug otherwise.
func (n *Node) trace() *zerolog.Event {
	if n.verbose {
		return n.log.Info()
	}
	return n.log.Debug()
}

func rawOrNull(raw json.RawMessage) []byte {
	if len(raw) == 0 {
		return []byte("null")
	}
	return raw
}
