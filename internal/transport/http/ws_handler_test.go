package http

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/wirechat-peer/internal/config"
	"github.com/vovakirdan/wirechat-peer/internal/core"
	"github.com/vovakirdan/wirechat-peer/internal/proto"
)

func TestHealthEndpoint(t *testing.T) {
	ts := startTestServer(t, nil)

	resp, err := ts.Client().Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestWebSocketGroupConversation(t *testing.T) {
	ts := startTestServer(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	connA, peerA := connect(ctx, t, ts, "alice", "")
	connB, peerB := connect(ctx, t, ts, "bob", "")

	if enter := waitEvent(ctx, t, connA, proto.EventEnter); enter.Peer != peerB || enter.Name != "bob" {
		t.Fatalf("unexpected enter for alice: %+v", enter)
	}
	if enter := waitEvent(ctx, t, connB, proto.EventEnter); enter.Peer != peerA || enter.Name != "alice" {
		t.Fatalf("unexpected enter for bob: %+v", enter)
	}

	send(ctx, t, connA, proto.InboundTypeJoin, proto.GroupData{Group: "dev"})
	if join := waitEvent(ctx, t, connB, proto.EventJoin); join.Peer != peerA || join.Group != "dev" {
		t.Fatalf("unexpected join: %+v", join)
	}

	send(ctx, t, connB, proto.InboundTypeJoin, proto.GroupData{Group: "dev"})
	waitEvent(ctx, t, connA, proto.EventJoin)

	send(ctx, t, connA, proto.InboundTypeShout, proto.ShoutData{Group: "dev", Text: "hi there"})
	shout := waitEvent(ctx, t, connB, proto.EventShout)
	if shout.Peer != peerA || shout.Name != "alice" || shout.Group != "dev" || shout.Text != "hi there" {
		t.Fatalf("unexpected shout: %+v", shout)
	}

	send(ctx, t, connB, proto.InboundTypeWhisper, proto.WhisperData{Peer: peerA, Text: "psst"})
	whisper := waitEvent(ctx, t, connA, proto.EventWhisper)
	if whisper.Peer != peerB || whisper.Text != "psst" {
		t.Fatalf("unexpected whisper: %+v", whisper)
	}

	send(ctx, t, connB, proto.InboundTypeLeave, proto.GroupData{Group: "dev"})
	if leave := waitEvent(ctx, t, connA, proto.EventLeave); leave.Peer != peerB || leave.Group != "dev" {
		t.Fatalf("unexpected leave: %+v", leave)
	}
}

func TestWebSocketExitOnDisconnect(t *testing.T) {
	ts := startTestServer(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	connA, _ := connect(ctx, t, ts, "alice", "")
	connB, peerB := connect(ctx, t, ts, "bob", "")
	waitEvent(ctx, t, connA, proto.EventEnter)

	connB.CloseNow()

	if exit := waitEvent(ctx, t, connA, proto.EventExit); exit.Peer != peerB || exit.Name != "bob" {
		t.Fatalf("unexpected exit: %+v", exit)
	}
}

func TestWebSocketRejectsBadCommands(t *testing.T) {
	ts := startTestServer(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _ := connect(ctx, t, ts, "alice", "")

	send(ctx, t, conn, proto.InboundTypeJoin, proto.GroupData{})
	if protoErr := waitError(ctx, t, conn); protoErr == nil || protoErr.Code != core.ErrCodeBadRequest {
		t.Fatalf("expected bad_request, got %+v", protoErr)
	}

	send(ctx, t, conn, proto.InboundTypeWhisper, proto.WhisperData{Peer: "nobody", Text: "hi"})
	if protoErr := waitError(ctx, t, conn); protoErr == nil || protoErr.Code != core.ErrCodePeerNotFound {
		t.Fatalf("expected peer_not_found, got %+v", protoErr)
	}

	send(ctx, t, conn, "dance", nil)
	if protoErr := waitError(ctx, t, conn); protoErr == nil || protoErr.Code != "invalid_message" {
		t.Fatalf("expected invalid_message, got %+v", protoErr)
	}
}

func TestWebSocketRateLimit(t *testing.T) {
	ts := startTestServer(t, func(cfg *config.RelayConfig) {
		cfg.MaxMessagesPerMinute = 2
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _ := connect(ctx, t, ts, "alice", "")
	for i := 0; i < 3; i++ {
		send(ctx, t, conn, proto.InboundTypePing, nil)
	}
	if protoErr := waitError(ctx, t, conn); protoErr == nil || protoErr.Code != "rate_limited" {
		t.Fatalf("expected rate_limited, got %+v", protoErr)
	}
}

func TestPeersEndpoint(t *testing.T) {
	ts := startTestServer(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	connA, peerA := connect(ctx, t, ts, "alice", "")
	send(ctx, t, connA, proto.InboundTypeJoin, proto.GroupData{Group: "dev"})
	connB, _ := connect(ctx, t, ts, "bob", "")
	waitEvent(ctx, t, connB, proto.EventJoin)

	var body PeersResponse
	require.Eventually(t, func() bool {
		resp, err := ts.Client().Get(ts.URL + "/api/peers")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		body = PeersResponse{}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return false
		}
		return len(body.Peers) == 2
	}, 2*time.Second, 20*time.Millisecond)

	require.Equal(t, "alice", body.Peers[0].Name)
	require.Equal(t, peerA, body.Peers[0].ID)
	require.Equal(t, []string{"dev"}, body.Peers[0].Groups)
	require.Equal(t, "bob", body.Peers[1].Name)
}

func TestServerHandlerUpgradesAndRoutes(t *testing.T) {
	ts := startTestServer(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if _, peer := connect(ctx, t, ts, "alice", ""); peer == "" {
		t.Fatalf("expected welcome with a peer id through the server handler")
	}

	for _, path := range []string{"/health", "/api/peers"} {
		resp, err := ts.Client().Get(ts.URL + path)
		if err != nil {
			t.Fatalf("%s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != 200 {
			t.Fatalf("%s: unexpected status %d", path, resp.StatusCode)
		}
	}
}
