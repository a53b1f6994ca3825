package caniot

// API is the application-supplied behaviour the core invokes: command and
// telemetry handling, and notification of configuration reads/writes so the
// application can back the configuration section with non-volatile storage.
type API interface {
	// HandleCommand executes a command frame's payload against endpoint ep.
	HandleCommand(dev *Device, ep Endpoint, buf []byte) error
	// BuildTelemetry renders the current telemetry payload for endpoint ep.
	BuildTelemetry(dev *Device, ep Endpoint) ([]byte, error)
	// ConfigOnRead is called before a configuration attribute is read while
	// config_dirty is set, giving the application a chance to refresh dev.Config.
	ConfigOnRead(dev *Device) error
	// ConfigOnWrite is called after a configuration attribute write lands in
	// dev.Config, giving the application a chance to persist it.
	ConfigOnWrite(dev *Device) error
}

// CustomAttrHandler is an optional extension an API implementation may also
// satisfy to answer attribute keys the schema does not resolve.
type CustomAttrHandler interface {
	ReadCustomAttr(dev *Device, key AttrKey) (uint32, error)
	WriteCustomAttr(dev *Device, key AttrKey, value uint32) error
}

// BLCHandler is an optional extension for devices that support the
// board-control BLC system command embedded in command frames.
type BLCHandler interface {
	HandleBLCSysCommand(dev *Device, cmd BLCSysCommand) error
}

// requestBit is the per-endpoint bit used in Device.requestTelemetryEp.
func requestBit(ep Endpoint) uint8 { return 1 << uint8(ep) }

// Device is one running instance of the protocol core: its identity, its
// live system state, application-owned configuration, and the driver/API
// pair it is wired to. The zero Device is not usable; construct one with
// NewDevice.
type Device struct {
	Identification Identification
	System         System
	Config         *Config

	Driver Driver
	API    API

	configDirty        bool
	requestTelemetryEp uint8

	startupAttrs  []AttrKey
	startupCursor int
	startupSent   bool
}

// NewDevice constructs a Device ready for Init. startupAttrs, if non-empty,
// is the ordered list of attribute keys Process publishes once before
// normal operation begins.
func NewDevice(id Identification, cfg *Config, driver Driver, api API, startupAttrs []AttrKey) *Device {
	return &Device{
		Identification: id,
		Config:         cfg,
		Driver:         driver,
		API:            api,
		startupAttrs:   startupAttrs,
	}
}

// Init zeroes the device's live system state and timestamps it against the
// driver's current clock. It must be called exactly once before Process.
func (d *Device) Init() {
	d.System = System{}
	sec, _ := d.Driver.GetTime()
	d.System.Time = sec
	d.System.StartTime = sec
	d.System.UptimeSynced = 0
	d.configDirty = true
}

// Did returns the device's class/sub-id, read from identification memory
// so every caller sees the authoritative value.
func (d *Device) Did() Did { return d.Identification.Did }

// FilterAndMask returns the (filter, mask) pair this device listens on.
func (d *Device) FilterAndMask() (uint16, uint16) {
	return FilterFor(d.Did(), DirectionQuery), Mask()
}

func (d *Device) startupDone() bool {
	return d.startupCursor >= len(d.startupAttrs)
}
