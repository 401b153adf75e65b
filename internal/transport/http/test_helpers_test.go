package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-peer/internal/config"
	"github.com/vovakirdan/wirechat-peer/internal/core"
	"github.com/vovakirdan/wirechat-peer/internal/proto"
)

func startTestServer(t *testing.T, mutate func(*config.RelayConfig)) *httptest.Server {
	t.Helper()

	hub := core.NewHub(core.Liveness{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	cfg := config.Default().Relay
	cfg.Addr = ":0"
	cfg.ReadHeaderTimeout = time.Second
	if mutate != nil {
		mutate(&cfg)
	}

	disabledLogger := zerolog.New(nil)
	server := NewServer(hub, &cfg, &disabledLogger)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(func() {
		ts.Close()
		cancel()
	})
	return ts
}

func wsURL(ts *httptest.Server) string {
	return strings.Replace(ts.URL, "http", "ws", 1) + "/ws"
}

func dial(ctx context.Context, t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.Dial(ctx, wsURL(ts), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })
	return conn
}

func send(ctx context.Context, t *testing.T, conn *websocket.Conn, typ string, data any) {
	t.Helper()
	inbound, err := proto.NewInbound(typ, data)
	if err != nil {
		t.Fatalf("encode %s: %v", typ, err)
	}
	if err := wsjson.Write(ctx, conn, inbound); err != nil {
		t.Fatalf("send %s: %v", typ, err)
	}
}

// connect dials the relay, says hello and returns the assigned peer id.
func connect(ctx context.Context, t *testing.T, ts *httptest.Server, name, token string) (*websocket.Conn, string) {
	t.Helper()
	conn := dial(ctx, t, ts)
	send(ctx, t, conn, proto.InboundTypeHello, proto.HelloData{Name: name, Token: token, Protocol: proto.ProtocolVersion})

	var outbound proto.Outbound
	if err := wsjson.Read(ctx, conn, &outbound); err != nil {
		t.Fatalf("read welcome: %v", err)
	}
	if outbound.Type != proto.OutboundTypeWelcome {
		t.Fatalf("expected welcome, got %+v", outbound)
	}
	var welcome proto.WelcomeData
	if err := json.Unmarshal(outbound.Data, &welcome); err != nil {
		t.Fatalf("decode welcome: %v", err)
	}
	return conn, welcome.Peer
}

// waitEvent reads until an event with the given name arrives.
func waitEvent(ctx context.Context, t *testing.T, conn *websocket.Conn, event string) proto.EventData {
	t.Helper()
	for {
		var outbound proto.Outbound
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			t.Fatalf("waiting for %s: %v", event, err)
		}
		if outbound.Type != proto.OutboundTypeEvent || outbound.Event != event {
			continue
		}
		var data proto.EventData
		if err := json.Unmarshal(outbound.Data, &data); err != nil {
			t.Fatalf("decode %s: %v", event, err)
		}
		return data
	}
}

// waitError reads until an error envelope arrives.
func waitError(ctx context.Context, t *testing.T, conn *websocket.Conn) *proto.Error {
	t.Helper()
	for {
		var outbound proto.Outbound
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			t.Fatalf("waiting for error: %v", err)
		}
		if outbound.Type == proto.OutboundTypeError {
			return outbound.Error
		}
	}
}
