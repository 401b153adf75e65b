package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-peer/internal/auth"
	"github.com/vovakirdan/wirechat-peer/internal/chat"
	"github.com/vovakirdan/wirechat-peer/internal/config"
	"github.com/vovakirdan/wirechat-peer/internal/console"
	"github.com/vovakirdan/wirechat-peer/internal/log"
	"github.com/vovakirdan/wirechat-peer/internal/store"
	"github.com/vovakirdan/wirechat-peer/internal/store/sqlite"
	"github.com/vovakirdan/wirechat-peer/internal/substrate/wsnode"
)

const defaultName = "guest"

// Client wires configuration, the relay node, the console and the chat loop.
type Client struct {
	cfg    config.ClientConfig
	log    *zerolog.Logger
	input  console.LineSource
	output io.Writer
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithConsole replaces the process console with the given input and output.
func WithConsole(input console.LineSource, output io.Writer) ClientOption {
	return func(c *Client) {
		c.input = input
		c.output = output
	}
}

// NewClient constructs the chat client.
func NewClient(cfg *config.ClientConfig, logger *zerolog.Logger, opts ...ClientOption) *Client {
	c := &Client{cfg: *cfg, log: logger}
	for _, opt := range opts {
		opt(c)
	}
	if c.cfg.Name == "" {
		c.cfg.Name = fallbackName()
	}
	return c
}

// Run connects to the relay and chats until the user exits or ctx is cancelled.
func (c *Client) Run(ctx context.Context) error {
	var token string
	if c.cfg.RelaySecret != "" {
		var err error
		token, err = auth.GenerateToken(auth.NewJWTConfig(c.cfg.RelaySecret), c.cfg.Name)
		if err != nil {
			return fmt.Errorf("issue token: %w", err)
		}
	}

	var history store.Store
	if c.cfg.HistoryPath != "" {
		st, err := sqlite.New(c.cfg.HistoryPath)
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer func() {
			if err := st.Close(); err != nil {
				c.log.Warn().Err(err).Msg("failed to close history")
			}
		}()
		history = st
		c.log.Debug().Str("path", c.cfg.HistoryPath).Msg("history enabled")
	}

	nodeLog := log.Component(c.log, "node")
	if c.cfg.Verbose {
		verbose := nodeLog.Level(zerolog.DebugLevel)
		nodeLog = &verbose
	}
	node, err := wsnode.Dial(ctx, wsnode.Config{
		URL:         c.cfg.RelayURL,
		Name:        c.cfg.Name,
		Token:       token,
		Heartbeat:   c.cfg.Heartbeat,
		DialTimeout: c.cfg.DialTimeout,
		Verbose:     c.cfg.Verbose,
	}, nodeLog)
	if err != nil {
		return err
	}

	input, output, err := c.console()
	if err != nil {
		_ = node.Close()
		return err
	}
	defer input.Close()

	opts := chat.Options{
		Name:   c.cfg.Name,
		Group:  c.cfg.DefaultGroup,
		Output: output,
		Color:  c.cfg.Color,
	}
	if history != nil {
		opts.History = history
		opts.Replay = c.cfg.HistoryLimit
	}

	err = chat.NewLoop(node, input, opts, c.log).Run(ctx)
	if errors.Is(err, chat.ErrSubstrateClosed) {
		return fmt.Errorf("lost connection to relay: %w", err)
	}
	return err
}

func (c *Client) console() (console.LineSource, io.Writer, error) {
	if c.input != nil {
		return c.input, c.output, nil
	}
	if !console.IsTerminal() {
		return console.NewReaderSource(os.Stdin), os.Stdout, nil
	}
	term, err := console.NewTerminal(console.TerminalConfig{Prompt: "> "})
	if err != nil {
		return nil, nil, fmt.Errorf("open terminal: %w", err)
	}
	return term, term.Stdout(), nil
}

func fallbackName() string {
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return defaultName
}
