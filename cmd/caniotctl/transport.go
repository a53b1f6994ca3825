package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/caniot-project/caniot"
	"github.com/caniot-project/caniot/drivers/serial"
	"github.com/caniot-project/caniot/drivers/socketcan"
	"github.com/caniot-project/caniot/drivers/wsbridge"
)

var loopbackBus = caniot.NewLoopbackBus()

// openDriver opens the transport named by --driver. The loopback driver is
// backed by a process-wide bus so that "caniotctl serve" and "caniotctl
// send" invoked against the same process (or in tests) can talk to each
// other without any external hardware. When --log-frames is set, the
// returned Driver traces every sent/received frame to stderr.
func openDriver() (caniot.Driver, error) {
	driver, err := openRawDriver()
	if err != nil {
		return nil, err
	}
	if !logFrames {
		return driver, nil
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return caniot.NewLoggedDriver(driver, logger, slog.LevelInfo, caniot.LogAll, nil), nil
}

func openRawDriver() (caniot.Driver, error) {
	switch driverName {
	case "", "loopback":
		return loopbackBus.Open(), nil

	case "serial":
		if serialPort == "" {
			return nil, fmt.Errorf("--serial-port is required for driver=serial")
		}
		return serial.Open(serial.Config{Port: serialPort, BaudRate: serialBaud}, 32)

	case "socketcan":
		if canIface == "" {
			return nil, fmt.Errorf("--can-iface is required for driver=socketcan")
		}
		return socketcan.Open(canIface, canBitrate, 32)

	case "ws":
		if wsURL == "" {
			return nil, fmt.Errorf("--ws-url is required for driver=ws")
		}
		password := os.Getenv("CANIOTCTL_WS_PASSWORD")
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return wsbridge.Dial(ctx, wsbridge.DialOptions{
			URL:                wsURL,
			Username:           wsUsername,
			Password:           password,
			InsecureSkipVerify: wsInsecure,
		})

	default:
		return nil, fmt.Errorf("unknown --driver %q: want loopback|serial|ws|socketcan", driverName)
	}
}
