package caniot

import "fmt"

// Type is the 2-bit frame type field of a CANIOT identifier.
type Type uint8

const (
	TypeCommand        Type = 0
	TypeTelemetry      Type = 1
	TypeWriteAttribute Type = 2
	TypeReadAttribute  Type = 3
)

func (t Type) String() string {
	switch t {
	case TypeCommand:
		return "command"
	case TypeTelemetry:
		return "telemetry"
	case TypeWriteAttribute:
		return "write_attribute"
	case TypeReadAttribute:
		return "read_attribute"
	default:
		return "unknown"
	}
}

// Direction is the 1-bit query/response field: a frame travelling
// controller→device is DirectionQuery, device→controller (including
// telemetry pushes) is DirectionResponse.
type Direction uint8

const (
	DirectionResponse Direction = 0
	DirectionQuery    Direction = 1
)

func (d Direction) String() string {
	if d == DirectionQuery {
		return "query"
	}
	return "response"
}

// Endpoint is the 2-bit logical destination within a device.
type Endpoint uint8

const (
	EndpointApp          Endpoint = 0
	EndpointEp1          Endpoint = 1
	EndpointEp2          Endpoint = 2
	EndpointBoardControl Endpoint = 3
)

func (e Endpoint) String() string {
	switch e {
	case EndpointApp:
		return "app"
	case EndpointEp1:
		return "ep1"
	case EndpointEp2:
		return "ep2"
	case EndpointBoardControl:
		return "board_control"
	default:
		return "unknown"
	}
}

// Did is a 6-bit device identifier: a 3-bit class and 3-bit sub-id. The pair
// (class=7, sub-id=7) is reserved for broadcast.
type Did struct {
	Class uint8
	SubID uint8
}

// BroadcastDid is the reserved (class=7, sub-id=7) broadcast address.
var BroadcastDid = Did{Class: 7, SubID: 7}

// IsBroadcast reports whether did names the broadcast address.
func (d Did) IsBroadcast() bool {
	return d.Class == 7 && d.SubID == 7
}

// Valid reports whether did is usable as a device's own identifier: both
// fields must be less than 7, since 7/7 is reserved for broadcast.
func (d Did) Valid() bool {
	return d.Class < 7 && d.SubID < 7
}

func (d Did) String() string {
	return fmt.Sprintf("%d/%d", d.Class, d.SubID)
}

// Byte packs the did into the single byte layout (class<<3)|sub-id used by
// the identification.did attribute.
func (d Did) Byte() byte {
	return (d.Class&0x7)<<3 | (d.SubID & 0x7)
}

// DidFromByte unpacks a byte produced by Did.Byte.
func DidFromByte(b byte) Did {
	return Did{Class: (b >> 3) & 0x7, SubID: b & 0x7}
}

// Identifier is the fully decoded form of an 11-bit CANIOT standard CAN
// identifier: five fields, least-significant first.
type Identifier struct {
	Type      Type
	Direction Direction
	Class     uint8
	SubID     uint8
	Endpoint  Endpoint
}

// Did returns the class/sub-id pair of the identifier as a Did.
func (id Identifier) Did() Did {
	return Did{Class: id.Class, SubID: id.SubID}
}

// Bit widths and shifts of the canonical 11-bit identifier layout. All
// masks and filters elsewhere in this package are derived from these
// constants; the layout itself is specified in exactly one place.
const (
	typeShift     = 0
	typeBits      = 2
	queryShift    = typeShift + typeBits
	queryBits     = 1
	classShift    = queryShift + queryBits
	classBits     = 3
	subIDShift    = classShift + classBits
	subIDBits     = 3
	endpointShift = subIDShift + subIDBits
	endpointBits  = 2
)

func mask(bits uint) uint16 {
	return uint16(1<<bits) - 1
}

// PackID packs the five logical fields of id into an 11-bit CAN standard
// identifier. Out-of-range field values are truncated to their bit width
// rather than rejected; validation of field ranges is the caller's concern.
func PackID(id Identifier) uint16 {
	var v uint16
	v |= uint16(id.Type) & mask(typeBits) << typeShift
	v |= uint16(id.Direction) & mask(queryBits) << queryShift
	v |= uint16(id.Class) & mask(classBits) << classShift
	v |= uint16(id.SubID) & mask(subIDBits) << subIDShift
	v |= uint16(id.Endpoint) & mask(endpointBits) << endpointShift
	return v & 0x7FF
}

// UnpackID decodes an 11-bit CAN standard identifier into its five logical
// fields. Every bit pattern unpacks to some value; there is no "invalid"
// identifier at this layer.
func UnpackID(v uint16) Identifier {
	v &= 0x7FF
	return Identifier{
		Type:      Type(v >> typeShift & mask(typeBits)),
		Direction: Direction(v >> queryShift & mask(queryBits)),
		Class:     uint8(v >> classShift & mask(classBits)),
		SubID:     uint8(v >> subIDShift & mask(subIDBits)),
		Endpoint:  Endpoint(v >> endpointShift & mask(endpointBits)),
	}
}
