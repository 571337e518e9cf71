package codec

import (
	"encoding/json"
	"testing"
	"time"

	"gate-lite/card"
	"gate-lite/gate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestDecode_Join(t *testing.T) {
	msg, err := Decode(FramingText, []byte(`{"type":"JOIN","name":"Alice","ante":25}`))
	require.NoError(t, err)
	assert.Equal(t, TypeJoin, msg.Type)
	assert.Equal(t, "Alice", msg.Name)
	assert.Equal(t, int64(25), msg.AnteOr(10))

	msg, err = Decode(FramingText, []byte(`{"type":"join","name":"Bob"}`))
	require.NoError(t, err)
	assert.Equal(t, TypeJoin, msg.Type)
	assert.Equal(t, int64(10), msg.AnteOr(10))

	msg, err = Decode(FramingText, []byte(`{"type":"JOIN","ante":"40"}`))
	require.NoError(t, err)
	assert.Equal(t, int64(40), msg.AnteOr(10))

	msg, err = Decode(FramingText, []byte(`{"type":"JOIN","ante":"lots"}`))
	require.NoError(t, err)
	assert.Equal(t, int64(10), msg.AnteOr(10))
}

func TestDecode_Action(t *testing.T) {
	msg, err := Decode(FramingText, []byte(`{"type":"ACTION","action":"SHOOT_SPECIAL","payload":{"bet":"120","choice":"HIGH"}}`))
	require.NoError(t, err)
	assert.Equal(t, gate.ActionShootSpecial, msg.ActionType())
	assert.Equal(t, int64(120), msg.Bet())
	assert.Equal(t, gate.ChoiceHigh, msg.Choice())

	msg, err = Decode(FramingText, []byte(`{"type":"ACTION","action":"SHOOT","payload":{"bet":12.9}}`))
	require.NoError(t, err)
	assert.Equal(t, gate.ActionShoot, msg.ActionType())
	assert.Equal(t, int64(12), msg.Bet())
	assert.Equal(t, gate.ChoiceNone, msg.Choice())

	msg, err = Decode(FramingText, []byte(`{"type":"ACTION","action":"DANCE"}`))
	require.NoError(t, err)
	assert.Equal(t, gate.ActionNone, msg.ActionType())
	assert.Equal(t, int64(0), msg.Bet())
}

func TestFlexInt_OutOfRange(t *testing.T) {
	for _, raw := range []string{`9223372036854775808`, `"9223372036854775807"`, `1e19`, `-1e19`} {
		var f FlexInt
		require.NoError(t, json.Unmarshal([]byte(raw), &f))
		assert.False(t, f.Ok, raw)
		assert.Equal(t, int64(0), f.Value, raw)
	}

	var f FlexInt
	require.NoError(t, json.Unmarshal([]byte(`4611686018427387904`), &f))
	assert.True(t, f.Ok)
	assert.Equal(t, int64(1<<62), f.Value)
}

func TestDecode_Rejects(t *testing.T) {
	for _, raw := range []string{``, `not json`, `{}`, `{"type":""}`, `{"type":7}`} {
		_, err := Decode(FramingText, []byte(raw))
		var fe FrameError
		assert.ErrorAs(t, err, &fe, "input %q", raw)
	}
	_, err := Decode(FramingBinary, []byte{0xff, 0xff, 0xff})
	assert.Error(t, err)
}

func TestDecode_Binary(t *testing.T) {
	st, err := structpb.NewStruct(map[string]any{
		"type":    "ACTION",
		"action":  "PASS",
		"payload": map[string]any{"bet": 5},
	})
	require.NoError(t, err)
	data, err := proto.Marshal(st)
	require.NoError(t, err)

	msg, err := Decode(FramingBinary, data)
	require.NoError(t, err)
	assert.Equal(t, gate.ActionPass, msg.ActionType())
	assert.Equal(t, int64(5), msg.Bet())
}

func TestEncode_Text(t *testing.T) {
	data, err := Encode(FramingText, Welcome("abc"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"WELCOME","your_id":"abc"}`, string(data))

	data, err = Encode(FramingText, Error("bye"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"ERROR","msg":"bye"}`, string(data))
}

func TestEncode_Binary(t *testing.T) {
	data, err := Encode(FramingBinary, Welcome("abc"))
	require.NoError(t, err)

	var st structpb.Struct
	require.NoError(t, proto.Unmarshal(data, &st))
	assert.Equal(t, "WELCOME", st.Fields["type"].GetStringValue())
	assert.Equal(t, "abc", st.Fields["your_id"].GetStringValue())
}

func TestStateFromView(t *testing.T) {
	deadline := time.UnixMilli(1700000000500)
	v := gate.View{
		Participants: []gate.PublicParticipant{
			{ID: "a", Name: "Alice", Balance: 990, Phase: gate.DecisionShooting},
			{ID: "b", Name: "Bob", Balance: 880, Phase: gate.DecisionDone, ResultMsg: "Passed."},
		},
		Pot:              30,
		Ante:             10,
		RoundPhase:       gate.TablePhaseInRound,
		Message:          "Cards dealt! You have 5 seconds!",
		UpdateID:         17,
		DecisionDeadline: deadline,
		MyCards: gate.Hand{
			Left:   card.MustParse("Ah"),
			Right:  card.MustParse("Ts"),
			Result: card.CardInvalid,
		},
		MyPhase: gate.DecisionShooting,
	}

	data, err := Encode(FramingText, State(v))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "STATE", got["type"])
	state := got["state"].(map[string]any)
	assert.Equal(t, "IN_ROUND", state["round_phase"])
	assert.Equal(t, "SHOOTING", state["my_phase"])
	assert.Equal(t, float64(17), state["update_id"])
	assert.Equal(t, 1700000000.5, state["decision_deadline"])

	cards := state["my_cards"].(map[string]any)
	assert.Equal(t, map[string]any{"val": float64(1), "display": "A", "suit": "♥", "color": "red"}, cards["left"])
	assert.Equal(t, map[string]any{"val": float64(10), "display": "10", "suit": "♠", "color": "black"}, cards["right"])
	assert.Nil(t, cards["result"])

	players := state["players"].([]any)
	require.Len(t, players, 2)
	assert.Equal(t, map[string]any{
		"id": "b", "name": "Bob", "balance": float64(880), "phase": "DONE", "result_msg": "Passed.",
	}, players[1])
}

func TestStateFromView_NoDeadlineOutsideRound(t *testing.T) {
	st := StateFromView(gate.View{RoundPhase: gate.TablePhaseWaiting})
	assert.Equal(t, float64(0), st.DecisionDeadline)
	assert.Nil(t, st.MyCards.Left)
	assert.NotNil(t, st.Players)
}
