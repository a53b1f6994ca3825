package caniot

import "testing"

func TestPackUnpackID_RoundTrip(t *testing.T) {
	for x := 0; x <= 0x7FF; x++ {
		id := UnpackID(uint16(x))
		if got := PackID(id); got != uint16(x) {
			t.Fatalf("pack(unpack(0x%03X)) = 0x%03X, want 0x%03X", x, got, x)
		}
	}
}

func TestDidByte_RoundTrip(t *testing.T) {
	for class := uint8(0); class < 8; class++ {
		for sub := uint8(0); sub < 8; sub++ {
			did := Did{Class: class, SubID: sub}
			got := DidFromByte(did.Byte())
			if got != did {
				t.Fatalf("DidFromByte(Did{%d,%d}.Byte()) = %+v", class, sub, got)
			}
		}
	}
}

func TestDid_String(t *testing.T) {
	if got, want := (Did{Class: 1, SubID: 2}).String(), "1/2"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestDid_IsBroadcast(t *testing.T) {
	if !BroadcastDid.IsBroadcast() {
		t.Fatalf("BroadcastDid should report IsBroadcast")
	}
	if (Did{Class: 1, SubID: 2}).IsBroadcast() {
		t.Fatalf("class=1,sid=2 should not be broadcast")
	}
}
