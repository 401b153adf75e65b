package chat

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-peer/internal/console"
	"github.com/vovakirdan/wirechat-peer/internal/store"
	"github.com/vovakirdan/wirechat-peer/internal/substrate"
)

// ErrSubstrateClosed is returned by Run when the substrate stops delivering events.
var ErrSubstrateClosed = errors.New("substrate event stream closed")

// Options configures a Loop.
type Options struct {
	// Name is the local display name used for locally sent lines.
	Name string
	// Group is joined and selected on start. Defaults to DefaultGroup.
	Group string
	// Output receives the transcript.
	Output io.Writer
	// History records and replays transcript lines. Optional.
	History store.TranscriptStore
	// Replay is how many stored lines to print on start. Needs History.
	Replay int
	// Color highlights notices.
	Color bool
	// Now overrides the transcript clock.
	Now func() time.Time
}

// Loop is the reactor: it owns the session, the peer directory and both routers, and
// runs them on a single goroutine. The input goroutine only parses lines.
type Loop struct {
	node    substrate.Node
	input   console.LineSource
	session *Session
	dir     *Directory
	net     *NetworkRouter
	user    *UserRouter
	log     *zerolog.Logger
	replay  int

	closeOnce sync.Once
}

// NewLoop assembles a reactor over node and input.
func NewLoop(node substrate.Node, input console.LineSource, opts Options, logger *zerolog.Logger) *Loop {
	fmtOpts := []FormatterOption{WithColor(opts.Color)}
	if opts.Now != nil {
		fmtOpts = append(fmtOpts, WithClock(opts.Now))
	}
	if opts.History != nil {
		fmtOpts = append(fmtOpts, WithRecorder(opts.History))
	}
	out := NewFormatter(opts.Output, logger, fmtOpts...)

	session := NewSession(opts.Group)
	dir := NewDirectory(node)

	return &Loop{
		node:    node,
		input:   input,
		session: session,
		dir:     dir,
		net:     NewNetworkRouter(dir, out, logger),
		user:    NewUserRouter(node, dir, session, out, opts.History, opts.Name, logger),
		log:     logger,
		replay:  opts.Replay,
	}
}

// Run joins the default group and dispatches events until the user exits, the input
// ends, or ctx is cancelled. The substrate is closed exactly once before Run returns.
func (l *Loop) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer l.shutdown()

	intents := make(chan Intent, 16)
	go l.readInput(ctx, intents)

	if l.replay > 0 && l.user.history != nil {
		l.user.Handle(ctx, History{Limit: l.replay})
	}
	if target := l.session.Target(); target.Kind == TargetGroup {
		l.user.Handle(ctx, JoinGroup{Group: target.Name})
	}

	events := l.node.Events()
	for {
		select {
		case <-ctx.Done():
			l.log.Debug().Msg("context cancelled, stopping")
			return nil
		case msg, ok := <-events:
			if !ok {
				return ErrSubstrateClosed
			}
			l.net.Handle(ctx, msg)
		case intent, ok := <-intents:
			if !ok {
				l.log.Debug().Msg("input closed, stopping")
				return nil
			}
			if l.user.Handle(ctx, intent) {
				l.log.Debug().Msg("exit requested, stopping")
				return nil
			}
		}
	}
}

// readInput turns lines into intents. Closing intents is the end-of-input signal.
func (l *Loop) readInput(ctx context.Context, intents chan<- Intent) {
	defer close(intents)
	for {
		line, err := l.input.ReadLine()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				l.log.Warn().Err(err).Msg("read input")
			}
			return
		}
		select {
		case intents <- Parse(line):
		case <-ctx.Done():
			return
		}
	}
}

func (l *Loop) shutdown() {
	l.closeOnce.Do(func() {
		if err := l.node.Close(); err != nil {
			l.log.Warn().Err(err).Msg("failed to close substrate")
		}
	})
}
