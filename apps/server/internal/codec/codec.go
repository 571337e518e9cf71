package codec

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gate-lite/gate"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Framing is how a message travels on the socket. Text frames carry JSON;
// binary frames carry the same document as a protobuf google.protobuf.Struct.
type Framing byte

const (
	FramingText   Framing = 0
	FramingBinary Framing = 1
)

func (f Framing) String() string {
	if f == FramingBinary {
		return "binary"
	}
	return "text"
}

// Inbound message types.
const (
	TypeJoin   = "JOIN"
	TypeAction = "ACTION"
)

// Outbound message types.
const (
	TypeWelcome = "WELCOME"
	TypeState   = "STATE"
	TypeError   = "ERROR"
)

// FrameError reports a frame that could not be decoded.
type FrameError string

func (e FrameError) Error() string { return "bad frame: " + string(e) }

// Inbound is a decoded client message. Numeric fields accept JSON numbers or
// numeric strings.
type Inbound struct {
	Type    string  `json:"type"`
	Name    string  `json:"name"`
	Ante    FlexInt `json:"ante"`
	Action  string  `json:"action"`
	Payload struct {
		Bet    FlexInt `json:"bet"`
		Choice string  `json:"choice"`
	} `json:"payload"`
}

// AnteOr returns the requested ante, or fallback when absent or unparsable.
func (m Inbound) AnteOr(fallback int64) int64 {
	if !m.Ante.Ok {
		return fallback
	}
	return m.Ante.Value
}

func (m Inbound) ActionType() gate.ActionType { return gate.ParseAction(m.Action) }

func (m Inbound) Bet() int64 { return m.Payload.Bet.Value }

func (m Inbound) Choice() gate.Choice { return gate.ParseChoice(m.Payload.Choice) }

// FlexInt is an integer that tolerates the loose typing of browser clients.
// Fractions are truncated. Anything unparsable leaves Ok false.
type FlexInt struct {
	Value int64
	Ok    bool
}

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	*f = FlexInt{}
	raw := strings.TrimSpace(string(data))
	if raw == "" || raw == "null" {
		return nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return nil
	}
	// float64(math.MaxInt64) rounds up to 2^63, which does not fit.
	if n >= 1<<63 || n < -(1<<63) {
		return nil
	}
	f.Value = int64(n)
	f.Ok = true
	return nil
}

// Decode parses one inbound frame.
func Decode(framing Framing, data []byte) (Inbound, error) {
	if framing == FramingBinary {
		var st structpb.Struct
		if err := proto.Unmarshal(data, &st); err != nil {
			return Inbound{}, FrameError(err.Error())
		}
		raw, err := protojson.Marshal(&st)
		if err != nil {
			return Inbound{}, FrameError(err.Error())
		}
		data = raw
	}

	var msg Inbound
	if err := json.Unmarshal(data, &msg); err != nil {
		return Inbound{}, FrameError(err.Error())
	}
	msg.Type = strings.ToUpper(strings.TrimSpace(msg.Type))
	if msg.Type == "" {
		return Inbound{}, FrameError("missing type")
	}
	return msg, nil
}

// Envelope is any outbound message.
type Envelope struct {
	Type   string        `json:"type"`
	YourID string        `json:"your_id,omitempty"`
	State  *StatePayload `json:"state,omitempty"`
	Msg    string        `json:"msg,omitempty"`
}

// Encode renders an envelope in the given framing.
func Encode(framing Framing, env Envelope) ([]byte, error) {
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", env.Type, err)
	}
	if framing != FramingBinary {
		return data, nil
	}
	var st structpb.Struct
	if err := protojson.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("transcode %s: %w", env.Type, err)
	}
	return proto.Marshal(&st)
}

func Welcome(id string) Envelope {
	return Envelope{Type: TypeWelcome, YourID: id}
}

func Error(msg string) Envelope {
	return Envelope{Type: TypeError, Msg: msg}
}

func State(v gate.View) Envelope {
	return Envelope{Type: TypeState, State: StateFromView(v)}
}
