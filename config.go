package caniot

// ConfigFlags is the configuration section's 1-byte flag bitfield.
type ConfigFlags struct {
	ErrorResponse     bool     // bit 0: emit error frames at all
	TelemetryDelayRdm bool     // bit 1: stored and persisted; Process samples a broadcast delay whether or not it is set
	TelemetryEndpoint Endpoint // bits 2..3: endpoint periodic telemetry targets
}

func (f ConfigFlags) Byte() byte {
	var b byte
	if f.ErrorResponse {
		b |= 1 << 0
	}
	if f.TelemetryDelayRdm {
		b |= 1 << 1
	}
	b |= byte(f.TelemetryEndpoint&0x3) << 2
	return b
}

func configFlagsFromByte(b byte) ConfigFlags {
	return ConfigFlags{
		ErrorResponse:     b&(1<<0) != 0,
		TelemetryDelayRdm: b&(1<<1) != 0,
		TelemetryEndpoint: Endpoint(b >> 2 & 0x3),
	}
}

// Location is a free-form two-character region/country pair, stored as raw
// bytes so it round-trips regardless of whether the application treats it
// as ASCII.
type Location struct {
	Region  [2]byte
	Country [2]byte
}

// GPIOConfig holds the per-class GPIO defaults exposed by configuration
// attributes: pulse durations for the class's open-collector/relay outputs,
// the default output state, and which pins report on telemetry-on-change.
type GPIOConfig struct {
	PulseDurations    [4]uint32
	OutputsDefault    uint8
	TelemetryOnChange uint8
}

// Default telemetry delay amplitude (ms) used when delay_max <= delay_min.
const DefaultDelayAmplitude = 10000

// Config is the application-owned, mutable configuration section. The core
// never allocates or frees it; the application constructs one, hands a
// pointer to Device, and is notified of reads/writes via the API.Config
// callbacks.
type Config struct {
	Telemetry struct {
		Period   uint32 // seconds
		DelayMin uint16 // milliseconds
		DelayMax uint16 // milliseconds
	}
	Flags      ConfigFlags
	Timezone   int32
	Location   Location
	Class0GPIO GPIOConfig
}

// DefaultConfig returns a Config populated with the same defaults the
// reference device firmware initialises: periodic telemetry every 10
// minutes, error responses and randomised broadcast delay both enabled, on
// the app endpoint.
func DefaultConfig() *Config {
	c := &Config{}
	c.Telemetry.Period = 600
	c.Telemetry.DelayMin = 0
	c.Telemetry.DelayMax = 0
	c.Flags = ConfigFlags{ErrorResponse: true, TelemetryDelayRdm: true, TelemetryEndpoint: EndpointApp}
	c.Class0GPIO.TelemetryOnChange = 0xFF
	return c
}

var configurationSection = Section{
	Name: "configuration",
	Role: SectionPersistent,
	Attributes: []Attribute{
		{Name: "telemetry.period", Size: 4, Role: RoleFlags{Readable: true, Writable: true, Class: ClassAll},
			Get: func(d *Device) []byte { b := make([]byte, 4); writeLE32(b, d.Config.Telemetry.Period); return b },
			Set: func(d *Device, full []byte) error { d.Config.Telemetry.Period = readLE32(full); return nil }},
		{Name: "telemetry.delay_min", Size: 2, Role: RoleFlags{Readable: true, Writable: true, Class: ClassAll},
			Get: func(d *Device) []byte { b := make([]byte, 2); writeLE16(b, d.Config.Telemetry.DelayMin); return b },
			Set: func(d *Device, full []byte) error { d.Config.Telemetry.DelayMin = readLE16(full); return nil }},
		{Name: "telemetry.delay_max", Size: 2, Role: RoleFlags{Readable: true, Writable: true, Class: ClassAll},
			Get: func(d *Device) []byte { b := make([]byte, 2); writeLE16(b, d.Config.Telemetry.DelayMax); return b },
			Set: func(d *Device, full []byte) error { d.Config.Telemetry.DelayMax = readLE16(full); return nil }},
		{Name: "flags", Size: 1, Role: RoleFlags{Readable: true, Writable: true, Class: ClassAll},
			Get: func(d *Device) []byte { return []byte{d.Config.Flags.Byte()} },
			Set: func(d *Device, full []byte) error { d.Config.Flags = configFlagsFromByte(full[0]); return nil }},
		{Name: "timezone", Size: 4, Role: RoleFlags{Readable: true, Writable: true, Class: ClassAll},
			Get: func(d *Device) []byte { b := make([]byte, 4); writeLE32(b, uint32(d.Config.Timezone)); return b },
			Set: func(d *Device, full []byte) error { d.Config.Timezone = int32(readLE32(full)); return nil }},
		{Name: "location", Size: 4, Role: RoleFlags{Readable: true, Writable: true, Class: ClassAll},
			Get: func(d *Device) []byte {
				return []byte{d.Config.Location.Region[0], d.Config.Location.Region[1], d.Config.Location.Country[0], d.Config.Location.Country[1]}
			},
			Set: func(d *Device, full []byte) error {
				d.Config.Location.Region = [2]byte{full[0], full[1]}
				d.Config.Location.Country = [2]byte{full[2], full[3]}
				return nil
			}},
		{Name: "cls0_gpio.pulse_duration.oc1", Size: 4, Role: RoleFlags{Readable: true, Writable: true, Class: 0},
			Get: func(d *Device) []byte { b := make([]byte, 4); writeLE32(b, d.Config.Class0GPIO.PulseDurations[0]); return b },
			Set: func(d *Device, full []byte) error { d.Config.Class0GPIO.PulseDurations[0] = readLE32(full); return nil }},
		{Name: "cls0_gpio.pulse_duration.oc2", Size: 4, Role: RoleFlags{Readable: true, Writable: true, Class: 0},
			Get: func(d *Device) []byte { b := make([]byte, 4); writeLE32(b, d.Config.Class0GPIO.PulseDurations[1]); return b },
			Set: func(d *Device, full []byte) error { d.Config.Class0GPIO.PulseDurations[1] = readLE32(full); return nil }},
		{Name: "cls0_gpio.pulse_duration.rl1", Size: 4, Role: RoleFlags{Readable: true, Writable: true, Class: 0},
			Get: func(d *Device) []byte { b := make([]byte, 4); writeLE32(b, d.Config.Class0GPIO.PulseDurations[2]); return b },
			Set: func(d *Device, full []byte) error { d.Config.Class0GPIO.PulseDurations[2] = readLE32(full); return nil }},
		{Name: "cls0_gpio.pulse_duration.rl2", Size: 4, Role: RoleFlags{Readable: true, Writable: true, Class: 0},
			Get: func(d *Device) []byte { b := make([]byte, 4); writeLE32(b, d.Config.Class0GPIO.PulseDurations[3]); return b },
			Set: func(d *Device, full []byte) error { d.Config.Class0GPIO.PulseDurations[3] = readLE32(full); return nil }},
		{Name: "cls0_gpio.outputs_default", Size: 1, Role: RoleFlags{Readable: true, Writable: true, Class: 0},
			Get: func(d *Device) []byte { return []byte{d.Config.Class0GPIO.OutputsDefault} },
			Set: func(d *Device, full []byte) error { d.Config.Class0GPIO.OutputsDefault = full[0]; return nil }},
		{Name: "cls0_gpio.mask.telemetry_on_change", Size: 1, Role: RoleFlags{Readable: true, Writable: true, Class: 0},
			Get: func(d *Device) []byte { return []byte{d.Config.Class0GPIO.TelemetryOnChange} },
			Set: func(d *Device, full []byte) error { d.Config.Class0GPIO.TelemetryOnChange = full[0]; return nil }},
	},
}
