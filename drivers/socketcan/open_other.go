//go:build !linux

package socketcan

import "fmt"

// Open is unavailable outside Linux: raw SocketCAN sockets and the
// IFF_UP/bitrate ioctls canbus wraps are both Linux-specific.
func Open(iface string, bitrate uint32, rxBuffer int) (*Driver, error) {
	return nil, fmt.Errorf("caniot/drivers/socketcan: Open(%q) requires Linux", iface)
}
