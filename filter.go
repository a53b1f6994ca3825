package caniot

// FilterFor computes the identifier a device with did accepts on, for a
// frame travelling in the given direction: type and endpoint are zeroed,
// since only direction/class/sub-id participate in targeting.
func FilterFor(did Did, dir Direction) uint16 {
	return PackID(Identifier{Direction: dir, Class: did.Class, SubID: did.SubID})
}

// BroadcastFilter computes the identifier every device accepts on,
// regardless of its own did, for the given direction.
func BroadcastFilter(dir Direction) uint16 {
	return PackID(Identifier{Direction: dir, Class: BroadcastDid.Class, SubID: BroadcastDid.SubID})
}

// Mask is the bitmask applied before comparing an incoming identifier
// against FilterFor/BroadcastFilter: only direction, class and sub-id
// participate, never type or endpoint.
func Mask() uint16 {
	return PackID(Identifier{Direction: DirectionQuery, Class: 7, SubID: 7})
}

// IsTarget reports whether a received standard-ID frame with identifier id
// targets a device identified by did. Extended-ID and RTR frames never
// target a CANIOT device; callers must filter those out before calling
// IsTarget, since Identifier itself cannot represent them.
func IsTarget(did Did, id uint16) bool {
	m := Mask()
	return id&m == FilterFor(did, DirectionQuery)&m ||
		id&m == BroadcastFilter(DirectionQuery)&m
}
