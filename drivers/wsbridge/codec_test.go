package wsbridge

import (
	"encoding/json"
	"testing"

	"github.com/caniot-project/caniot"
)

func TestWireFrameRoundTrip(t *testing.T) {
	f := caniot.Frame{ID: caniot.UnpackID(0x2AB)}
	f.SetPayload([]byte{9, 8, 7})

	wf := toWireFrame(f)
	got := wf.toFrame()

	if caniot.PackID(got.ID) != caniot.PackID(f.ID) {
		t.Errorf("ID = %03X, want %03X", caniot.PackID(got.ID), caniot.PackID(f.ID))
	}
	if string(got.Payload()) != string(f.Payload()) {
		t.Errorf("Payload = %v, want %v", got.Payload(), f.Payload())
	}
}

func TestWireFrameJSONShape(t *testing.T) {
	f := caniot.Frame{ID: caniot.UnpackID(0x010)}
	f.SetPayload([]byte{1, 2})

	b, err := json.Marshal(toWireFrame(f))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if _, ok := decoded["id"]; !ok {
		t.Errorf("json output missing id field: %s", b)
	}
	if _, ok := decoded["data"]; !ok {
		t.Errorf("json output missing data field: %s", b)
	}
}
