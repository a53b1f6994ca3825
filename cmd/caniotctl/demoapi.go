package main

import (
	"encoding/binary"

	"github.com/caniot-project/caniot"
	"github.com/caniot-project/caniot/internal/devconfig"
)

// demoAPI is a minimal caniot.API backing "caniotctl serve": it reports the
// device's uptime as telemetry on every endpoint and logs commands rather than
// driving real hardware, while delegating configuration persistence to a
// devconfig.Store.
type demoAPI struct {
	store *devconfig.Store
	log   func(format string, args ...any)
}

func newDemoAPI(store *devconfig.Store, log func(string, ...any)) *demoAPI {
	return &demoAPI{store: store, log: log}
}

// HandleCommand implements caniot.API by logging the command payload; a
// real device would dispatch it to GPIO/heating/shutter outputs here.
func (a *demoAPI) HandleCommand(dev *caniot.Device, ep caniot.Endpoint, buf []byte) error {
	a.log("command endpoint=%s payload=% x", ep, buf)
	return nil
}

// BuildTelemetry implements caniot.API with a synthetic 4-byte counter
// payload: the device's own uptime, so a monitor session has something
// changing to observe without any real sensors attached.
func (a *demoAPI) BuildTelemetry(dev *caniot.Device, ep caniot.Endpoint) ([]byte, error) {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, dev.System.Uptime)
	return buf, nil
}

// ConfigOnRead implements caniot.API by delegating to the backing store.
func (a *demoAPI) ConfigOnRead(dev *caniot.Device) error {
	if a.store == nil {
		return nil
	}
	return a.store.OnRead(dev)
}

// ConfigOnWrite implements caniot.API by delegating to the backing store.
func (a *demoAPI) ConfigOnWrite(dev *caniot.Device) error {
	if a.store == nil {
		return nil
	}
	return a.store.OnWrite(dev)
}
