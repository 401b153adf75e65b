package core

import "time"

const (
	commandBuffer = 16
	eventBuffer   = 64
)

// Client is a connected peer as seen by the relay hub.
// Events must not be read before RegisterClient returns.
type Client struct {
	ID       string
	Name     string
	Commands chan *Command
	Events   chan *Event

	groups   map[string]struct{}
	lastSeen time.Time
	evasive  bool
	done     chan struct{}
}

// NewClient constructs a client with initialized channels.
func NewClient(id, name string) *Client {
	if name == "" {
		name = id
	}
	return &Client{
		ID:       id,
		Name:     name,
		Commands: make(chan *Command, commandBuffer),
		Events:   make(chan *Event, eventBuffer),
		groups:   make(map[string]struct{}),
		done:     make(chan struct{}),
	}
}

// Done is closed once the hub has dropped the client.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) send(event *Event) {
	select {
	case c.Events <- event:
	default:
		// Drop if slow consumer.
	}
}
