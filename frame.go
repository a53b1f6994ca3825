package caniot

import "fmt"

// Frame is a CANIOT application frame: an 11-bit standard CAN identifier
// plus up to 8 bytes of payload. It never carries an extended identifier or
// an RTR bit; those frames never target a CANIOT device (see IsTarget).
type Frame struct {
	ID   Identifier
	Len  uint8
	Data [8]byte
}

// ClearFrame resets f to its zero value in place, reusable across calls
// to avoid an allocation in the hot dispatch path.
func ClearFrame(f *Frame) {
	*f = Frame{}
}

// Payload returns the frame's data truncated to its declared length.
func (f Frame) Payload() []byte {
	n := f.Len
	if n > 8 {
		n = 8
	}
	return f.Data[:n]
}

// SetPayload copies data into the frame, truncating to 8 bytes and setting
// Len accordingly. It mirrors the wire codec's contract: values above 8
// bytes are silently truncated rather than rejected.
func (f *Frame) SetPayload(data []byte) {
	n := len(data)
	if n > 8 {
		n = 8
	}
	f.Len = uint8(n)
	copy(f.Data[:n], data)
	for i := n; i < 8; i++ {
		f.Data[i] = 0
	}
}

func (f Frame) String() string {
	return fmt.Sprintf("%03X#%X", PackID(f.ID), f.Payload())
}

// IsErrorFrame reports whether f, read as a response, carries an error:
// query=response and type is command or write_attribute.
func (f Frame) IsErrorFrame() bool {
	return f.ID.Direction == DirectionResponse &&
		(f.ID.Type == TypeCommand || f.ID.Type == TypeWriteAttribute)
}

// errorTypeFor maps a request type to the frame type used to report an
// error against it: command/telemetry errors are reported as command
// frames, attribute errors (read or write) are reported as write_attribute
// frames.
func errorTypeFor(reqType Type) Type {
	switch reqType {
	case TypeCommand, TypeTelemetry:
		return TypeCommand
	default:
		return TypeWriteAttribute
	}
}

// Little-endian payload helpers. CANIOT packs every multi-byte payload
// field (attribute keys, attribute values, error codes) in little-endian
// regardless of host byte order.

func readLE16(b []byte) uint16 {
	return uint16(b[0]) | uint16(b[1])<<8
}

func writeLE16(b []byte, v uint16) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
}

func readLE32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func writeLE32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}
