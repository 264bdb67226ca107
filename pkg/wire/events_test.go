package wire

import (
	"encoding/json"
	"testing"
)

// A hint of 0 is a real sequence number and must survive decoding as
// distinct from an absent hint.
func TestStateHintAbsentVersusZero(t *testing.T) {
	var noHint ClientEvent
	if err := json.Unmarshal([]byte(`{"type":"move","session_id":"s1","move":"e2e4"}`), &noHint); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if noHint.StateHint != nil {
		t.Fatalf("absent hint decoded as %v", *noHint.StateHint)
	}

	var zeroHint ClientEvent
	if err := json.Unmarshal([]byte(`{"type":"move","session_id":"s1","move":"e2e4","state_hint":0}`), &zeroHint); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if zeroHint.StateHint == nil || *zeroHint.StateHint != 0 {
		t.Fatalf("zero hint decoded as %v", zeroHint.StateHint)
	}
}

func TestServerEventOmitsUnsetPayloads(t *testing.T) {
	raw, err := json.Marshal(&ServerEvent{Type: EvGameStart})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `{"type":"gameStart"}` {
		t.Fatalf("bare event serialized as %s", raw)
	}
}
