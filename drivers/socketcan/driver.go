// Package socketcan bridges the caniot protocol core to a physical or
// virtual CAN interface through the canbus package's blocking, ctx-based
// Bus. caniot.Driver is deliberately non-blocking (EAGAIN-based); this
// package absorbs that mismatch with a background receive goroutine that
// drains Bus.Receive into a small buffered queue the core can poll.
package socketcan

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/caniot-project/caniot"
	"github.com/caniot-project/caniot/canbus"
)

// Driver adapts a canbus.Bus to caniot.Driver.
type Driver struct {
	bus canbus.Bus

	rx chan caniot.Frame

	cancel context.CancelFunc
	done   chan struct{}

	clockMu sync.Mutex
	offset  time.Duration // added to wall-clock time to answer GetTime/SetTime
}

// New starts a Driver reading from bus in the background. rxBuffer bounds
// how many received frames may queue before the oldest is dropped; 32 is a
// reasonable default for a device that is polled frequently.
func New(bus canbus.Bus, rxBuffer int) *Driver {
	if rxBuffer <= 0 {
		rxBuffer = 32
	}
	ctx, cancel := context.WithCancel(context.Background())
	d := &Driver{
		bus:    bus,
		rx:     make(chan caniot.Frame, rxBuffer),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go d.receiveLoop(ctx)
	return d
}

func (d *Driver) receiveLoop(ctx context.Context) {
	defer close(d.done)
	for {
		f, err := d.bus.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			continue
		}
		cf, ok := fromCanbusFrame(f)
		if !ok {
			continue
		}
		select {
		case d.rx <- cf:
		default:
			// queue full: drop the oldest frame to make room rather than
			// block the receive loop behind a slow poller.
			select {
			case <-d.rx:
			default:
			}
			select {
			case d.rx <- cf:
			default:
			}
		}
	}
}

// Recv implements caniot.Driver.
func (d *Driver) Recv() (caniot.Frame, error) {
	select {
	case f := <-d.rx:
		return f, nil
	default:
		return caniot.Frame{}, caniot.ErrAgain
	}
}

// Send implements caniot.Driver. A non-zero delay is honoured by a
// background timer so the caller's Process loop is never blocked waiting
// on a broadcast response delay.
func (d *Driver) Send(f caniot.Frame, delay time.Duration) error {
	cf := toCanbusFrame(f)
	if delay <= 0 {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return d.bus.Send(ctx, cf)
	}
	go func() {
		time.Sleep(delay)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = d.bus.Send(ctx, cf)
	}()
	return nil
}

// GetTime implements caniot.Driver using the wall clock plus whatever
// offset a prior SetTime introduced.
func (d *Driver) GetTime() (sec uint32, msec uint16) {
	d.clockMu.Lock()
	defer d.clockMu.Unlock()
	now := time.Now().Add(d.offset)
	return uint32(now.Unix()), uint16(now.Nanosecond() / 1_000_000)
}

// SetTime implements caniot.Driver by recomputing the wall-clock offset
// needed to answer GetTime with sec from now on.
func (d *Driver) SetTime(sec uint32) {
	d.clockMu.Lock()
	defer d.clockMu.Unlock()
	want := time.Unix(int64(sec), 0)
	d.offset = want.Sub(time.Now())
}

// Entropy implements caniot.Driver with the OS CSPRNG: a real bus driver
// has no cheaper source of randomness worth reaching for over crypto/rand.
func (d *Driver) Entropy(buf []byte) {
	_, _ = rand.Read(buf)
}

// Close stops the background receive loop and closes the underlying bus.
func (d *Driver) Close() error {
	d.cancel()
	<-d.done
	return d.bus.Close()
}

func toCanbusFrame(f caniot.Frame) canbus.Frame {
	id := caniot.PackID(f.ID)
	return canbus.Frame{
		ID:   uint32(id),
		Len:  f.Len,
		Data: f.Data,
	}
}

func fromCanbusFrame(f canbus.Frame) (caniot.Frame, bool) {
	if f.Extended || f.RTR {
		// Extended-ID and RTR frames never carry a CANIOT identifier.
		return caniot.Frame{}, false
	}
	return caniot.Frame{
		ID:   caniot.UnpackID(uint16(f.ID)),
		Len:  f.Len,
		Data: f.Data,
	}, true
}
