// Package caniot implements the device side of the CANIOT application
// protocol: an 11-bit CAN identifier scheme addressing small sensor/actuator
// nodes by a 6-bit device id, a packed attribute key namespace layered over
// a declarative identification/system/configuration schema, and a
// cooperative request dispatcher and device loop that turns inbound frames
// into command/telemetry/attribute operations and outbound responses.
//
// The package defines the protocol state machine only. Everything that
// touches the outside world — the physical bus, command execution,
// telemetry construction, configuration persistence — is reached through
// the Driver and API interfaces in driver.go and device.go. See the
// drivers subpackages and cmd/caniotctl for concrete wiring.
package caniot

