package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/wirechat-peer/internal/substrate"
)

func msg(tag string, frames ...string) substrate.Message {
	return substrate.Message{Tag: tag, Frames: frames}
}

func TestDecodeEvent(t *testing.T) {
	tests := []struct {
		name    string
		msg     substrate.Message
		want    NetworkEvent
		wantErr error
	}{
		{name: "enter", msg: msg(substrate.TagEnter, "p1"), want: EnterEvent{Peer: "p1"}},
		{name: "exit with name", msg: msg(substrate.TagExit, "p1", "bob"), want: ExitEvent{Peer: "p1", Name: "bob"}},
		{name: "exit without name", msg: msg(substrate.TagExit, "p1"), want: ExitEvent{Peer: "p1"}},
		{name: "join", msg: msg(substrate.TagJoin, "p1", "dev"), want: JoinEvent{Peer: "p1", Group: "dev"}},
		{name: "leave", msg: msg(substrate.TagLeave, "p1", "dev"), want: LeaveEvent{Peer: "p1", Group: "dev"}},
		{name: "whisper", msg: msg(substrate.TagWhisper, "p1", "psst"), want: WhisperEvent{Peer: "p1", Text: "psst"}},
		{name: "shout", msg: msg(substrate.TagShout, "p1", "dev", "hi"), want: ShoutEvent{Peer: "p1", Group: "dev", Text: "hi"}},
		{name: "evasive", msg: msg(substrate.TagEvasive, "p1"), want: EvasiveEvent{Peer: "p1"}},
		{name: "evasive bare", msg: msg(substrate.TagEvasive), want: EvasiveEvent{}},
		{name: "refused", msg: msg(substrate.TagError, "not_in_group", "not in group"), want: RefusedEvent{Code: "not_in_group", Msg: "not in group"}},
		{name: "short refused", msg: msg(substrate.TagError, "bad_request"), wantErr: ErrMalformedEvent},
		{name: "unknown tag", msg: msg("STOP", "p1"), wantErr: ErrUnknownTag},
		{name: "short shout", msg: msg(substrate.TagShout, "p1", "dev"), wantErr: ErrMalformedEvent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeEvent(tt.msg)
			if tt.wantErr != nil {
				require.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func newTestNetworkRouter(t *testing.T) (*NetworkRouter, *Directory, *fakeNode, *syncBuffer) {
	t.Helper()
	node := newFakeNode()
	dir := NewDirectory(node)
	out, buf := newTestFormatter(t)
	return NewNetworkRouter(dir, out, discardLogger()), dir, node, buf
}

func TestNetworkRouterTranscript(t *testing.T) {
	r, dir, node, buf := newTestNetworkRouter(t)
	node.setName("p1", "bob")
	ctx := context.Background()

	r.Handle(ctx, msg(substrate.TagEnter, "p1"))
	r.Handle(ctx, msg(substrate.TagJoin, "p1", "dev"))
	r.Handle(ctx, msg(substrate.TagShout, "p1", "dev", "hi"))
	r.Handle(ctx, msg(substrate.TagWhisper, "p1", "psst"))
	r.Handle(ctx, msg(substrate.TagEvasive, "p1"))
	r.Handle(ctx, msg(substrate.TagLeave, "p1", "dev"))
	r.Handle(ctx, msg(substrate.TagExit, "p1", "bob"))

	assert.Equal(t, ""+
		stamp+" bob entered\n"+
		stamp+" bob joined dev\n"+
		stamp+" #dev          @bob                  hi\n"+
		stamp+" #private      @bob                  psst\n"+
		stamp+" bob left dev\n"+
		stamp+" bob left\n",
		buf.String())

	_, ok := dir.NameOf("p1")
	assert.False(t, ok, "exit must invalidate the directory entry")
}

func TestNetworkRouterDropsUnresolvedPeers(t *testing.T) {
	r, _, _, buf := newTestNetworkRouter(t)
	ctx := context.Background()

	r.Handle(ctx, msg(substrate.TagEnter, "ghost"))
	r.Handle(ctx, msg(substrate.TagExit, "ghost"))
	r.Handle(ctx, msg(substrate.TagJoin, "ghost", "dev"))
	r.Handle(ctx, msg(substrate.TagLeave, "ghost", "dev"))
	r.Handle(ctx, msg(substrate.TagWhisper, "ghost", "psst"))
	r.Handle(ctx, msg(substrate.TagShout, "ghost", "dev", "hi"))
	r.Handle(ctx, msg("BOGUS"))
	r.Handle(ctx, msg(substrate.TagShout))

	assert.Empty(t, buf.String())
}

func TestNetworkRouterExitUsesCarriedName(t *testing.T) {
	r, _, _, buf := newTestNetworkRouter(t)

	r.Handle(context.Background(), msg(substrate.TagExit, "p9", "dave"))
	assert.Equal(t, stamp+" dave left\n", buf.String())
}

func TestNetworkRouterShoutBeforeEnterResolvesThroughSubstrate(t *testing.T) {
	r, dir, node, buf := newTestNetworkRouter(t)
	node.setName("p1", "bob")

	r.Handle(context.Background(), msg(substrate.TagShout, "p1", "dev", "early"))
	assert.Equal(t, stamp+" #dev          @bob                  early\n", buf.String())

	id, ok := dir.IDOf("bob")
	require.True(t, ok)
	assert.Equal(t, "p1", id)
}

func TestNetworkRouterRefusalIsNotice(t *testing.T) {
	r, _, _, buf := newTestNetworkRouter(t)

	r.Handle(context.Background(), msg(substrate.TagError, "already_joined", "already joined"))

	assert.Equal(t, "relay refused: already joined\n", buf.String())
}
