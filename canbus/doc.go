// Package canbus provides a minimal, dependency-free model of a classical
// CAN 2.0 link: a Frame type with SocketCAN-compatible binary encoding, a
// Bus interface abstracting over a physical or virtual link, an in-memory
// LoopbackBus for tests, and (on Linux) a raw-socket SocketCAN Bus plus
// helpers for bringing a can* network interface up or down.
//
// It knows nothing about any higher-level protocol carried on top of the
// link; the caniot package builds its 11-bit addressing and attribute
// protocol on top of the Bus interface defined here.
package canbus
