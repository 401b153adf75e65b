package proto

import "encoding/json"

// Inbound is the envelope for messages coming from a peer node.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

const (
	ProtocolVersion = 1

	InboundTypeHello   = "hello"
	InboundTypeJoin    = "join"
	InboundTypeLeave   = "leave"
	InboundTypeShout   = "shout"
	InboundTypeWhisper = "whisper"
	InboundTypePing    = "ping"

	OutboundTypeWelcome = "welcome"
	OutboundTypeEvent   = "event"
	OutboundTypeError   = "error"
)

// Event names carried in Outbound.Event. They match the substrate tags.
const (
	EventEnter   = "ENTER"
	EventExit    = "EXIT"
	EventJoin    = "JOIN"
	EventLeave   = "LEAVE"
	EventWhisper = "WHISPER"
	EventShout   = "SHOUT"
	EventEvasive = "EVASIVE"
)

// HelloData is sent by the node to introduce itself.
type HelloData struct {
	Name     string `json:"name"`
	Token    string `json:"token,omitempty"`
	Protocol int    `json:"protocol,omitempty"`
}

// GroupData requests to join or leave a group.
type GroupData struct {
	Group string `json:"group"`
}

// ShoutData sends text to a group.
type ShoutData struct {
	Group string `json:"group"`
	Text  string `json:"text"`
}

// WhisperData sends text to a single peer.
type WhisperData struct {
	Peer string `json:"peer"`
	Text string `json:"text"`
}

// Outbound is the envelope for messages sent to the node.
type Outbound struct {
	Type  string          `json:"type"`
	Event string          `json:"event,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error *Error          `json:"error,omitempty"`
}

// WelcomeData tells the node which peer id the relay assigned to it.
type WelcomeData struct {
	Peer     string `json:"peer"`
	Protocol int    `json:"protocol"`
}

// EventData describes a relay event. Fields not used by an event are omitted.
type EventData struct {
	Peer  string `json:"peer"`
	Name  string `json:"name,omitempty"`
	Group string `json:"group,omitempty"`
	Text  string `json:"text,omitempty"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

// NewInbound marshals data into an inbound envelope of the given type.
func NewInbound(typ string, data any) (Inbound, error) {
	if data == nil {
		return Inbound{Type: typ}, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return Inbound{}, err
	}
	return Inbound{Type: typ, Data: raw}, nil
}

// NewOutbound marshals data into an outbound envelope.
func NewOutbound(typ, event string, data any) (Outbound, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Outbound{}, err
	}
	return Outbound{Type: typ, Event: event, Data: raw}, nil
}
