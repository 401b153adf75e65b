package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	stdhttp "net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-peer/internal/auth"
	"github.com/vovakirdan/wirechat-peer/internal/core"
	"github.com/vovakirdan/wirechat-peer/internal/proto"
	"github.com/vovakirdan/wirechat-peer/internal/utils"
)

const helloTimeout = 10 * time.Second

// WSOptions tunes per-connection limits. Zero values disable the limit.
type WSOptions struct {
	JWT                  *auth.JWTConfig
	MaxMessageBytes      int64
	MaxMessagesPerMinute int
}

// WSHandler upgrades HTTP connections and bridges them to core.Client.
type WSHandler struct {
	hub  *core.Hub
	opts WSOptions
	log  *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(hub *core.Hub, opts WSOptions, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{hub: hub, opts: opts, log: logger}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	ctx := r.Context()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")
	if h.opts.MaxMessageBytes > 0 {
		conn.SetReadLimit(h.opts.MaxMessageBytes)
	}

	hello, protoErr, err := h.handshake(ctx, conn)
	if err != nil {
		h.log.Debug().Err(err).Msg("ws handshake failed")
		return
	}
	if protoErr != nil {
		h.log.Info().Str("code", protoErr.Code).Str("name", hello.Name).Msg("peer rejected")
		_ = wsjson.Write(ctx, conn, proto.Outbound{Type: proto.OutboundTypeError, Error: protoErr})
		conn.Close(websocket.StatusPolicyViolation, protoErr.Msg)
		return
	}

	client := core.NewClient(utils.NewID(), hello.Name)
	welcome, err := proto.NewOutbound(proto.OutboundTypeWelcome, "", proto.WelcomeData{
		Peer:     client.ID,
		Protocol: proto.ProtocolVersion,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("encode welcome")
		return
	}
	if err := wsjson.Write(ctx, conn, welcome); err != nil {
		h.log.Warn().Err(err).Str("peer", client.ID).Msg("write welcome")
		return
	}

	h.hub.RegisterClient(client)
	defer h.hub.UnregisterClient(client)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, client)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, client)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != -1 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Str("peer", client.ID).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

// handshake reads the hello message. A non-nil proto.Error means the peer must be rejected.
func (h *WSHandler) handshake(ctx context.Context, conn *websocket.Conn) (proto.HelloData, *proto.Error, error) {
	var hello proto.HelloData

	readCtx, cancel := context.WithTimeout(ctx, helloTimeout)
	defer cancel()

	var inbound proto.Inbound
	if err := wsjson.Read(readCtx, conn, &inbound); err != nil {
		return hello, nil, err
	}
	if inbound.Type != proto.InboundTypeHello {
		return hello, badRequest("hello required"), nil
	}
	if err := json.Unmarshal(inbound.Data, &hello); err != nil {
		return hello, badRequest("invalid hello"), nil
	}
	if hello.Protocol != 0 && hello.Protocol != proto.ProtocolVersion {
		return hello, &proto.Error{Code: core.ErrCodeProtocolMismatch, Msg: "unsupported protocol version"}, nil
	}
	if hello.Name == "" {
		return hello, badRequest("name is required"), nil
	}
	if h.opts.JWT != nil {
		if err := auth.ValidatePeer(h.opts.JWT, hello.Token, hello.Name); err != nil {
			h.log.Debug().Err(err).Str("name", hello.Name).Msg("token rejected")
			return hello, &proto.Error{Code: core.ErrCodeUnauthorized, Msg: "invalid token"}, nil
		}
	}
	return hello, nil, nil
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	limiter := newRateLimiter(h.opts.MaxMessagesPerMinute, time.Minute)
	for {
		var inbound proto.Inbound
		if err := wsjson.Read(ctx, conn, &inbound); err != nil {
			h.log.Debug().Err(err).Str("peer", client.ID).Msg("read ws inbound")
			return err
		}

		if !limiter.allow(time.Now()) {
			if err := writeError(ctx, conn, &proto.Error{Code: "rate_limited", Msg: "too many messages"}); err != nil {
				return err
			}
			continue
		}

		cmd, protoErr := inboundToCommand(inbound)
		if protoErr != nil {
			if err := writeError(ctx, conn, protoErr); err != nil {
				return err
			}
			continue
		}

		select {
		case client.Commands <- cmd:
		case <-client.Done():
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	for {
		select {
		case event, ok := <-client.Events:
			if !ok {
				return nil
			}
			outbound, err := outboundFromEvent(event)
			if err != nil {
				h.log.Error().Err(err).Str("peer", client.ID).Msg("encode ws event")
				continue
			}
			if err := wsjson.Write(ctx, conn, outbound); err != nil {
				h.log.Error().Err(err).Str("peer", client.ID).Msg("write ws event")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func writeError(ctx context.Context, conn *websocket.Conn, protoErr *proto.Error) error {
	return wsjson.Write(ctx, conn, proto.Outbound{Type: proto.OutboundTypeError, Error: protoErr})
}
