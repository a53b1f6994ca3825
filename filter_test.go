package caniot

import "testing"

func TestIsTarget_Exhaustive(t *testing.T) {
	for class := uint8(0); class < 7; class++ {
		for sub := uint8(0); sub < 7; sub++ {
			did := Did{Class: class, SubID: sub}
			for y := 0; y <= 0x7FF; y++ {
				id := UnpackID(uint16(y))
				want := id.Direction == DirectionQuery &&
					((id.Class == did.Class && id.SubID == did.SubID) ||
						(id.Class == 7 && id.SubID == 7))
				got := IsTarget(did, uint16(y))
				if got != want {
					t.Fatalf("IsTarget(did=%+v, 0x%03X) = %v, want %v", did, y, got, want)
				}
			}
		}
	}
}
