package caniot

import "testing"

func TestBLCSysCommand_ByteRoundTrip(t *testing.T) {
	// Every wire byte, including the reserved bits 6-7, survives a
	// decode-then-encode round trip.
	for b := 0; b <= 0xFF; b++ {
		got := BLCSysCommandFromByte(byte(b)).Byte()
		want := byte(b)
		if got != want {
			t.Fatalf("byte 0x%02X: decode-then-encode = 0x%02X, want 0x%02X", b, got, want)
		}
	}
}

func TestT16_T10_RoundTrip(t *testing.T) {
	cases := []T16{-2800, -1000, 0, 1000, 5610}
	for _, t16 := range cases {
		t10 := t16.ToT10()
		back := t10.ToT16()
		if back != t16 {
			t.Fatalf("T16(%d).ToT10().ToT16() = %d, want %d", t16, back, t16)
		}
	}
}

func TestT16_Invalid(t *testing.T) {
	if got := T16Invalid.ToT10(); got != T10Invalid {
		t.Fatalf("T16Invalid.ToT10() = %v, want T10Invalid", got)
	}
	if got := T10Invalid.ToT16(); got != T16Invalid {
		t.Fatalf("T10Invalid.ToT16() = %v, want T16Invalid", got)
	}
}

func TestT16_ClampsToT10Range(t *testing.T) {
	if got := T16(20000).ToT10(); got != t10Max {
		t.Fatalf("extreme high T16 should clamp to t10Max, got %v", got)
	}
	if got := T16(-2800).ToT10(); got != 0 {
		t.Fatalf("T16(-2800).ToT10() = %v, want 0", got)
	}
}

func TestHeatingControl_RoundTrip(t *testing.T) {
	h := HeatingControl{Heater1: HeatingComfort, Heater2: HeatingStop, Heater3: HeatingEnergySaving, Heater4: HeatingFrostProtect}
	got := UnmarshalHeatingControl(h.MarshalByte())
	if got.Heater1 != h.Heater1 || got.Heater2 != h.Heater2 || got.Heater3 != h.Heater3 || got.Heater4 != h.Heater4 {
		t.Fatalf("heating control round trip mismatch: got %+v want %+v", got, h)
	}
}

func TestShuttersControl_RoundTrip(t *testing.T) {
	s := ShuttersControl{Openness: [4]uint8{0, 50, 100, ShutterCmdNone}}
	got := UnmarshalShuttersControl(s.MarshalByte())
	if got != s {
		t.Fatalf("shutters control round trip mismatch: got %+v want %+v", got, s)
	}
}
