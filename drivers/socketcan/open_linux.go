//go:build linux

package socketcan

import (
	"fmt"

	"github.com/caniot-project/caniot/canbus"
)

// Open brings the named Linux CAN interface (e.g. "can0") up, optionally
// setting its arbitration bitrate first, dials a raw SocketCAN socket bound
// to it, and wraps the result in a Driver. A bitrate of zero leaves the
// interface's current bitrate unchanged, which is the right choice for a
// virtual "vcan" interface that has none.
func Open(iface string, bitrate uint32, rxBuffer int) (*Driver, error) {
	if bitrate != 0 {
		if err := canbus.SetInterfaceDown(iface); err != nil {
			return nil, canbus.RequireRootOrCapNetAdmin(fmt.Errorf("caniot/drivers/socketcan: bring %s down: %w", iface, err))
		}
		opts := canbus.LinuxCANInterfaceOptions{Bitrate: &bitrate}
		if err := canbus.ConfigureLinuxCANInterface(iface, opts); err != nil {
			return nil, fmt.Errorf("caniot/drivers/socketcan: configure %s: %w", iface, err)
		}
	}

	up, err := canbus.IsInterfaceUp(iface)
	if err != nil {
		return nil, fmt.Errorf("caniot/drivers/socketcan: query %s: %w", iface, err)
	}
	if !up {
		if err := canbus.SetInterfaceUp(iface); err != nil {
			return nil, canbus.RequireRootOrCapNetAdmin(fmt.Errorf("caniot/drivers/socketcan: bring %s up: %w", iface, err))
		}
	}

	bus, err := canbus.DialSocketCAN(iface)
	if err != nil {
		return nil, fmt.Errorf("caniot/drivers/socketcan: dial %s: %w", iface, err)
	}
	return New(bus, rxBuffer), nil
}
