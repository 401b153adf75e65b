package chat

import (
	"bytes"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-peer/internal/substrate"
)

// fakeNode records substrate calls and serves names from a fixed table.
type fakeNode struct {
	mu      sync.Mutex
	names   map[string]string
	calls   []string
	events  chan substrate.Message
	closed  int
	failing error
}

func newFakeNode() *fakeNode {
	return &fakeNode{
		names:  make(map[string]string),
		events: make(chan substrate.Message, 16),
	}
}

func (n *fakeNode) record(call string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failing != nil {
		return n.failing
	}
	n.calls = append(n.calls, call)
	return nil
}

func (n *fakeNode) Join(group string) error  { return n.record("join " + group) }
func (n *fakeNode) Leave(group string) error { return n.record("leave " + group) }

func (n *fakeNode) Shout(group string, payload []byte) error {
	return n.record(fmt.Sprintf("shout %s %s", group, payload))
}

func (n *fakeNode) Whisper(peer string, payload []byte) error {
	return n.record(fmt.Sprintf("whisper %s %s", peer, payload))
}

func (n *fakeNode) NameOf(peer string) (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	name, ok := n.names[peer]
	return name, ok
}

func (n *fakeNode) Events() <-chan substrate.Message { return n.events }

func (n *fakeNode) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed++
	return nil
}

func (n *fakeNode) setName(peer, name string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.names[peer] = name
}

func (n *fakeNode) Calls() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.calls...)
}

func (n *fakeNode) Closed() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.closed
}

// syncBuffer is a bytes.Buffer safe to read while the loop writes to it.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

var fixedNow = time.Date(2026, 3, 14, 15, 4, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// stamp is the rendered fixedNow.
const stamp = "3:04 pm"

func discardLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func newTestFormatter(t *testing.T) (*Formatter, *syncBuffer) {
	t.Helper()
	out := &syncBuffer{}
	return NewFormatter(out, discardLogger(), WithClock(fixedClock)), out
}
