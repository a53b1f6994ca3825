package caniot

// System is the device's live, volatile state: counters, timestamps, and
// last error codes. It is created zeroed at Init and mutated only by the
// core itself.
type System struct {
	UptimeSynced    uint32
	Time            uint32
	Uptime          uint32
	StartTime       uint32
	LastTelemetry   uint32
	LastTelemetryMs uint32

	Received struct {
		Total            uint32
		ReadAttribute    uint32
		WriteAttribute   uint32
		Command          uint32
		RequestTelemetry uint32
		Ignored          uint32
	}
	Sent struct {
		Total     uint32
		Telemetry uint32
	}

	LastCommandError   int16
	LastTelemetryError int16
	Battery            uint8
}

// AttrKeySystemTime is the well-known key of the system.time attribute,
// which the engine special-cases to shift the device's timebase rather
// than simply overwriting a field.
var AttrKeySystemTime = MakeAttrKey(SectionIndexSystem, 1, 0)

var systemSection = Section{
	Name: "system",
	Role: SectionVolatile,
	Attributes: []Attribute{
		{Name: "uptime_synced", Size: 4, Role: RoleFlags{Readable: true, Class: ClassAll},
			Get: func(d *Device) []byte { b := make([]byte, 4); writeLE32(b, d.System.UptimeSynced); return b }},
		{Name: "time", Size: 4, Role: RoleFlags{Readable: true, Writable: true, Class: ClassAll},
			Get: func(d *Device) []byte { b := make([]byte, 4); writeLE32(b, d.System.Time); return b },
			Set: func(d *Device, full []byte) error { d.System.Time = readLE32(full); return nil }},
		{Name: "uptime", Size: 4, Role: RoleFlags{Readable: true, Class: ClassAll},
			Get: func(d *Device) []byte { b := make([]byte, 4); writeLE32(b, d.System.Uptime); return b }},
		{Name: "start_time", Size: 4, Role: RoleFlags{Readable: true, Class: ClassAll},
			Get: func(d *Device) []byte { b := make([]byte, 4); writeLE32(b, d.System.StartTime); return b }},
		{Name: "last_telemetry", Size: 4, Role: RoleFlags{Readable: true, Class: ClassAll},
			Get: func(d *Device) []byte { b := make([]byte, 4); writeLE32(b, d.System.LastTelemetry); return b }},
		{Name: "received.total", Size: 4, Role: RoleFlags{Readable: true, Class: ClassAll},
			Get: func(d *Device) []byte { b := make([]byte, 4); writeLE32(b, d.System.Received.Total); return b }},
		{Name: "received.read_attribute", Size: 4, Role: RoleFlags{Readable: true, Class: ClassAll},
			Get: func(d *Device) []byte { b := make([]byte, 4); writeLE32(b, d.System.Received.ReadAttribute); return b }},
		{Name: "received.write_attribute", Size: 4, Role: RoleFlags{Readable: true, Class: ClassAll},
			Get: func(d *Device) []byte { b := make([]byte, 4); writeLE32(b, d.System.Received.WriteAttribute); return b }},
		{Name: "received.command", Size: 4, Role: RoleFlags{Readable: true, Class: ClassAll},
			Get: func(d *Device) []byte { b := make([]byte, 4); writeLE32(b, d.System.Received.Command); return b }},
		{Name: "received.request_telemetry", Size: 4, Role: RoleFlags{Readable: true, Class: ClassAll},
			Get: func(d *Device) []byte { b := make([]byte, 4); writeLE32(b, d.System.Received.RequestTelemetry); return b }},
		{Name: "received.ignored", Size: 4, Role: RoleFlags{Readable: true, Hidden: true, Class: ClassAll},
			Get: func(d *Device) []byte { b := make([]byte, 4); writeLE32(b, d.System.Received.Ignored); return b }},
		{Name: "_last_telemetry_ms", Size: 4, Role: RoleFlags{Readable: true, Hidden: true, Class: ClassAll},
			Get: func(d *Device) []byte { b := make([]byte, 4); writeLE32(b, d.System.LastTelemetryMs); return b }},
		{Name: "sent.total", Size: 4, Role: RoleFlags{Readable: true, Class: ClassAll},
			Get: func(d *Device) []byte { b := make([]byte, 4); writeLE32(b, d.System.Sent.Total); return b }},
		{Name: "sent.telemetry", Size: 4, Role: RoleFlags{Readable: true, Class: ClassAll},
			Get: func(d *Device) []byte { b := make([]byte, 4); writeLE32(b, d.System.Sent.Telemetry); return b }},
		{Name: "last_command_error", Size: 2, Role: RoleFlags{Readable: true, Class: ClassAll},
			Get: func(d *Device) []byte { b := make([]byte, 2); writeLE16(b, uint16(d.System.LastCommandError)); return b }},
		{Name: "last_telemetry_error", Size: 2, Role: RoleFlags{Readable: true, Class: ClassAll},
			Get: func(d *Device) []byte { b := make([]byte, 2); writeLE16(b, uint16(d.System.LastTelemetryError)); return b }},
		{Name: "battery", Size: 1, Role: RoleFlags{Readable: true, Class: ClassAll},
			Get: func(d *Device) []byte { return []byte{d.System.Battery} }},
	},
}
