package http

import (
	"encoding/json"

	"github.com/vovakirdan/wirechat-peer/internal/core"
	"github.com/vovakirdan/wirechat-peer/internal/proto"
)

var eventNames = map[core.EventKind]string{
	core.EventEnter:   proto.EventEnter,
	core.EventExit:    proto.EventExit,
	core.EventJoin:    proto.EventJoin,
	core.EventLeave:   proto.EventLeave,
	core.EventWhisper: proto.EventWhisper,
	core.EventShout:   proto.EventShout,
	core.EventEvasive: proto.EventEvasive,
}

func badRequest(msg string) *proto.Error {
	return &proto.Error{Code: core.ErrCodeBadRequest, Msg: msg}
}

func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error) {
	switch inbound.Type {
	case proto.InboundTypeJoin, proto.InboundTypeLeave:
		var data proto.GroupData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, badRequest("invalid data")
		}
		if data.Group == "" {
			return nil, badRequest("group is required")
		}
		kind := core.CommandJoinGroup
		if inbound.Type == proto.InboundTypeLeave {
			kind = core.CommandLeaveGroup
		}
		return &core.Command{Kind: kind, Group: data.Group}, nil
	case proto.InboundTypeShout:
		var data proto.ShoutData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, badRequest("invalid data")
		}
		if data.Group == "" {
			return nil, badRequest("group is required")
		}
		return &core.Command{Kind: core.CommandShout, Group: data.Group, Text: data.Text}, nil
	case proto.InboundTypeWhisper:
		var data proto.WhisperData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, badRequest("invalid data")
		}
		if data.Peer == "" {
			return nil, badRequest("peer is required")
		}
		return &core.Command{Kind: core.CommandWhisper, Peer: data.Peer, Text: data.Text}, nil
	case proto.InboundTypePing:
		return &core.Command{Kind: core.CommandPing}, nil
	case proto.InboundTypeHello:
		return nil, badRequest("already greeted")
	default:
		return nil, &proto.Error{Code: "invalid_message", Msg: "unknown message type"}
	}
}

func outboundFromEvent(event *core.Event) (proto.Outbound, error) {
	if event.Kind == core.EventError {
		if event.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}, nil
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: event.Error.Code, Msg: event.Error.Message},
		}, nil
	}
	name, ok := eventNames[event.Kind]
	if !ok {
		return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown event"}}, nil
	}
	return proto.NewOutbound(proto.OutboundTypeEvent, name, proto.EventData{
		Peer:  event.Peer,
		Name:  event.Name,
		Group: event.Group,
		Text:  event.Text,
	})
}
