package caniot

// T16 is a signed, hundredth-of-a-degree-Celsius-ish raw temperature
// reading as produced by a typical sensor driver; T16Invalid marks an
// unavailable reading.
type T16 int16

// T16Invalid is the sentinel T16 value meaning "no reading available".
const T16Invalid T16 = 1<<15 - 1 // int16 max

// T10 packs a temperature into 10 bits for the wire; T10Invalid marks an
// unavailable reading.
type T10 uint16

// T10Invalid is the sentinel T10 value meaning "no reading available".
const T10Invalid T10 = 0x3FF

// T8Invalid is the sentinel byte-width temperature value meaning "no
// reading available", used by callers that pack temperatures into a
// single byte of telemetry.
const T8Invalid uint8 = 0xFF

const t10Max = 0x3FE

// ToT10 converts a T16 reading to its 10-bit wire representation, clamping
// the result to [0, 0x3FE]. An invalid T16 maps to T10Invalid.
func (t T16) ToT10() T10 {
	if t == T16Invalid {
		return T10Invalid
	}
	v := (int32(t) + 2800 + 5) / 10
	if v < 0 {
		v = 0
	}
	if v > t10Max {
		v = t10Max
	}
	return T10(v)
}

// ToT16 converts a 10-bit wire temperature back to T16. An invalid or
// out-of-range T10 maps to T16Invalid.
func (t T10) ToT16() T16 {
	if t == T10Invalid || t > t10Max {
		return T16Invalid
	}
	return T16(int32(t)*10 - 2800)
}

// HeatingMode is the per-zone heating instruction carried by command and
// telemetry frames alike.
type HeatingMode uint8

const (
	HeatingNone          HeatingMode = 0
	HeatingComfort       HeatingMode = 1
	HeatingComfortMinus1 HeatingMode = 2
	HeatingComfortMinus2 HeatingMode = 3
	HeatingEnergySaving  HeatingMode = 4
	HeatingFrostProtect  HeatingMode = 5
	HeatingStop          HeatingMode = 6
)

// HeatingControl is the 4-zone heating command/telemetry payload: four
// 4-bit mode fields packed two per byte (low nibble first) into two bytes.
// PowerStatus is not part of the 2-byte wire form: MarshalByte does not
// encode it and UnmarshalHeatingControl leaves it false.
type HeatingControl struct {
	Heater1, Heater2, Heater3, Heater4 HeatingMode
	PowerStatus                        bool
}

// MarshalByte packs the heating control into its 2-byte wire form.
func (h HeatingControl) MarshalByte() [2]byte {
	var b [2]byte
	b[0] = byte(h.Heater1&0xF) | byte(h.Heater2&0xF)<<4
	b[1] = byte(h.Heater3&0xF) | byte(h.Heater4&0xF)<<4
	return b
}

// UnmarshalHeatingControl decodes a 2-byte heating control payload.
func UnmarshalHeatingControl(b [2]byte) HeatingControl {
	return HeatingControl{
		Heater1: HeatingMode(b[0] & 0xF),
		Heater2: HeatingMode(b[0] >> 4 & 0xF),
		Heater3: HeatingMode(b[1] & 0xF),
		Heater4: HeatingMode(b[1] >> 4 & 0xF),
	}
}

// Shutter openness sentinels, matching the wire convention where 0 is
// fully closed and 100 is fully open.
const (
	ShutterCmdNone  uint8 = 0xFF
	ShutterCmdOpen  uint8 = 100
	ShutterCmdClose uint8 = 0
)

// ShuttersControl is the 4-shutter openness command/telemetry payload.
type ShuttersControl struct {
	Openness [4]uint8
}

// MarshalByte packs the shutters control into its 4-byte wire form.
func (s ShuttersControl) MarshalByte() [4]byte {
	return s.Openness
}

// UnmarshalShuttersControl decodes a 4-byte shutters control payload.
func UnmarshalShuttersControl(b [4]byte) ShuttersControl {
	return ShuttersControl{Openness: b}
}
