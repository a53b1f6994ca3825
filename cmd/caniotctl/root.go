package main

import (
	"github.com/spf13/cobra"
)

var (
	// Transport selection, shared by serve and send.
	driverName string

	// Serial driver flags.
	serialPort string
	serialBaud int

	// WebSocket driver flags.
	wsURL      string
	wsUsername string
	wsInsecure bool

	// SocketCAN driver flags (Linux only).
	canIface   string
	canBitrate uint32

	// Device identity/config file, shared by serve and send.
	configPath string

	// Frame-level tracing, shared by serve, monitor and send.
	logFrames bool
)

var rootCmd = &cobra.Command{
	Use:   "caniotctl",
	Short: "Run, observe, and drive CANIOT devices",
	Long: `caniotctl runs a simulated CANIOT device against a chosen transport,
exposes a read-only HTTP/metrics monitor over live traffic, and can send
one-shot frames for manual testing.

Transports:
  loopback   in-memory bus, for local testing (default)
  serial     slcan-style ASCII framing over a real or virtual serial port
  ws         JSON-framed bridge over a WebSocket connection
  socketcan  raw CAN socket on a Linux can*/vcan* interface

For WebSocket authentication, the password is read from the
CANIOTCTL_WS_PASSWORD environment variable.

Pass --log-frames to trace every sent/received frame on the chosen
transport to stderr.`,
	Version: "0.1.0",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&driverName, "driver", "loopback", "transport driver: loopback|serial|ws|socketcan")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "device.yaml", "device identity/config YAML file")
	rootCmd.PersistentFlags().BoolVar(&logFrames, "log-frames", false, "trace every sent/received frame to stderr")

	rootCmd.PersistentFlags().StringVar(&serialPort, "serial-port", "", "serial port device (driver=serial)")
	rootCmd.PersistentFlags().IntVar(&serialBaud, "serial-baud", 115200, "serial baud rate (driver=serial)")

	rootCmd.PersistentFlags().StringVar(&wsURL, "ws-url", "", "WebSocket URL, ws:// or wss:// (driver=ws)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "ws-username", "", "WebSocket HTTP basic auth username (driver=ws)")
	rootCmd.PersistentFlags().BoolVar(&wsInsecure, "ws-insecure", false, "skip TLS certificate verification (driver=ws, wss:// only)")

	rootCmd.PersistentFlags().StringVar(&canIface, "can-iface", "can0", "Linux CAN network interface (driver=socketcan)")
	rootCmd.PersistentFlags().Uint32Var(&canBitrate, "can-bitrate", 0, "arbitration bitrate to set before dialing, 0 to leave unchanged (driver=socketcan)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
