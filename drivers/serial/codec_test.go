package serial

import (
	"testing"

	"github.com/caniot-project/caniot"
)

func TestEncodeDecodeLineRoundTrip(t *testing.T) {
	f := caniot.Frame{ID: caniot.UnpackID(0x123)}
	f.SetPayload([]byte{1, 2, 3, 4})

	line := encodeLine(f)
	got, ok := decodeLine(line)
	if !ok {
		t.Fatalf("decodeLine(%q) failed", line)
	}
	if caniot.PackID(got.ID) != caniot.PackID(f.ID) || got.Len != f.Len || got.Data != f.Data {
		t.Fatalf("roundtrip mismatch: got %+v want %+v", got, f)
	}
}

func TestEncodeLineShape(t *testing.T) {
	f := caniot.Frame{ID: caniot.UnpackID(0x001)}
	f.SetPayload([]byte{0xAB, 0xCD})

	got := encodeLine(f)
	want := "t0012ABCD\r"
	if got != want {
		t.Errorf("encodeLine = %q, want %q", got, want)
	}
}

func TestDecodeLineRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"r0012ABCD\r",  // wrong command byte
		"t00\r",        // too short
		"t001ZABCD\r",  // bad length digit
		"t0012AB\r",    // declared length longer than data
	}
	for _, line := range cases {
		if _, ok := decodeLine(line); ok {
			t.Errorf("decodeLine(%q) should have failed", line)
		}
	}
}
