package caniot

// Watchdog is the two-state command a BLC system command can apply to a
// board's watchdog: leave it alone, enable it, disable it, or toggle it.
type Watchdog uint8

const (
	WatchdogNone   Watchdog = 0
	WatchdogOn     Watchdog = 1
	WatchdogOff    Watchdog = 2
	WatchdogToggle Watchdog = 3
)

// BLCSysCommand is the one-byte board-control system command carried in
// byte 8 of an extended command-frame payload: reset, software reset,
// watchdog-forced reset, watchdog state change, and configuration reset.
type BLCSysCommand struct {
	Reset         bool
	SoftwareReset bool
	WatchdogReset bool
	Watchdog      Watchdog
	ConfigReset   bool
	// Reserved holds bits 6..7 of the wire byte, which name no command; it
	// is carried so that decode-then-encode reproduces every byte.
	Reserved uint8
}

const (
	blcResetBit         = 0
	blcSoftwareResetBit = 1
	blcWatchdogResetBit = 2
	blcWatchdogOffset   = 3
	blcConfigResetBit   = 5
	blcReservedOffset   = 6
)

// Byte packs the command into its wire form. Decoding the result with
// BLCSysCommandFromByte always reproduces the original struct.
func (c BLCSysCommand) Byte() byte {
	var b byte
	if c.Reset {
		b |= 1 << blcResetBit
	}
	if c.SoftwareReset {
		b |= 1 << blcSoftwareResetBit
	}
	if c.WatchdogReset {
		b |= 1 << blcWatchdogResetBit
	}
	b |= byte(c.Watchdog&0x3) << blcWatchdogOffset
	if c.ConfigReset {
		b |= 1 << blcConfigResetBit
	}
	b |= (c.Reserved & 0x3) << blcReservedOffset
	return b
}

// BLCSysCommandFromByte unpacks a BLCSysCommand from its wire byte.
func BLCSysCommandFromByte(b byte) BLCSysCommand {
	return BLCSysCommand{
		Reset:         b&(1<<blcResetBit) != 0,
		SoftwareReset: b&(1<<blcSoftwareResetBit) != 0,
		WatchdogReset: b&(1<<blcWatchdogResetBit) != 0,
		Watchdog:      Watchdog(b >> blcWatchdogOffset & 0x3),
		ConfigReset:   b&(1<<blcConfigResetBit) != 0,
		Reserved:      b >> blcReservedOffset & 0x3,
	}
}
