package http

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/wirechat-peer/internal/core"
	"github.com/vovakirdan/wirechat-peer/internal/proto"
)

func TestInboundToCommand(t *testing.T) {
	in, err := proto.NewInbound(proto.InboundTypeShout, proto.ShoutData{Group: "dev", Text: "hi"})
	require.NoError(t, err)

	cmd, protoErr := inboundToCommand(in)
	require.Nil(t, protoErr)
	assert.Equal(t, &core.Command{Kind: core.CommandShout, Group: "dev", Text: "hi"}, cmd)

	in, err = proto.NewInbound(proto.InboundTypeLeave, proto.GroupData{Group: "dev"})
	require.NoError(t, err)
	cmd, protoErr = inboundToCommand(in)
	require.Nil(t, protoErr)
	assert.Equal(t, core.CommandLeaveGroup, cmd.Kind)
}

func TestInboundToCommandErrors(t *testing.T) {
	_, protoErr := inboundToCommand(proto.Inbound{Type: proto.InboundTypeWhisper, Data: json.RawMessage(`{"text":"x"}`)})
	require.NotNil(t, protoErr)
	assert.Equal(t, core.ErrCodeBadRequest, protoErr.Code)

	_, protoErr = inboundToCommand(proto.Inbound{Type: proto.InboundTypeJoin, Data: json.RawMessage(`[`)})
	require.NotNil(t, protoErr)
	assert.Equal(t, "invalid data", protoErr.Msg)
}

func TestOutboundFromEvent(t *testing.T) {
	out, err := outboundFromEvent(&core.Event{Kind: core.EventShout, Peer: "p1", Name: "alice", Group: "dev", Text: "hi"})
	require.NoError(t, err)
	assert.Equal(t, proto.OutboundTypeEvent, out.Type)
	assert.Equal(t, proto.EventShout, out.Event)
	assert.JSONEq(t, `{"peer":"p1","name":"alice","group":"dev","text":"hi"}`, string(out.Data))

	out, err = outboundFromEvent(&core.Event{Kind: core.EventError, Error: &core.CoreError{Code: "x", Message: "y"}})
	require.NoError(t, err)
	assert.Equal(t, &proto.Error{Code: "x", Msg: "y"}, out.Error)
}
