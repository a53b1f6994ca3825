package caniot

import (
	"math/rand"
	"sync"
	"time"
)

// LoopbackBus is an in-memory CAN segment for tests and simulations: any
// number of LoopbackDriver endpoints opened against the same bus exchange
// frames with each other, exactly as peers on a real bus would.
type LoopbackBus struct {
	mu    sync.Mutex
	peers map[*LoopbackDriver]struct{}
}

// NewLoopbackBus creates an empty loopback segment.
func NewLoopbackBus() *LoopbackBus {
	return &LoopbackBus{peers: make(map[*LoopbackDriver]struct{})}
}

// Open attaches a new Driver endpoint to the bus.
func (b *LoopbackBus) Open() *LoopbackDriver {
	d := &LoopbackDriver{
		bus:     b,
		lastSec: 0,
		lastAt:  time.Now(),
		rand:    rand.New(rand.NewSource(1)),
	}
	b.mu.Lock()
	b.peers[d] = struct{}{}
	b.mu.Unlock()
	return d
}

// LoopbackDriver is a Driver backed by a LoopbackBus: Recv is non-blocking
// and reports ErrAgain when nothing is queued, Send delivers to every other
// peer on the bus after the requested delay, and the clock is a simple
// monotonic offset SetTime can shift.
type LoopbackDriver struct {
	bus *LoopbackBus

	queueMu sync.Mutex
	queue   []Frame
	closed  bool

	clockMu sync.Mutex
	lastSec uint32
	lastAt  time.Time

	rand *rand.Rand
}

// Recv returns the next queued frame, or ErrAgain if none is pending.
func (d *LoopbackDriver) Recv() (Frame, error) {
	d.queueMu.Lock()
	defer d.queueMu.Unlock()
	if len(d.queue) == 0 {
		return Frame{}, ErrAgain
	}
	f := d.queue[0]
	d.queue = d.queue[1:]
	return f, nil
}

// Send delivers f to every other peer on the bus after delay elapses.
func (d *LoopbackDriver) Send(f Frame, delay time.Duration) error {
	d.bus.mu.Lock()
	targets := make([]*LoopbackDriver, 0, len(d.bus.peers)-1)
	for peer := range d.bus.peers {
		if peer != d {
			targets = append(targets, peer)
		}
	}
	d.bus.mu.Unlock()

	deliver := func() {
		for _, t := range targets {
			t.enqueue(f)
		}
	}
	if delay <= 0 {
		deliver()
	} else {
		time.AfterFunc(delay, deliver)
	}
	return nil
}

func (d *LoopbackDriver) enqueue(f Frame) {
	d.queueMu.Lock()
	if !d.closed {
		d.queue = append(d.queue, f)
	}
	d.queueMu.Unlock()
}

// GetTime returns this driver's virtual clock, advanced from the last call
// to SetTime (or construction) by real elapsed time.
func (d *LoopbackDriver) GetTime() (sec uint32, msec uint16) {
	d.clockMu.Lock()
	defer d.clockMu.Unlock()
	elapsed := time.Since(d.lastAt)
	sec = d.lastSec + uint32(elapsed/time.Second)
	msec = uint16((elapsed % time.Second) / time.Millisecond)
	return sec, msec
}

// SetTime resets this driver's virtual clock to sec.
func (d *LoopbackDriver) SetTime(sec uint32) {
	d.clockMu.Lock()
	d.lastSec = sec
	d.lastAt = time.Now()
	d.clockMu.Unlock()
}

// Entropy fills buf with pseudo-random bytes. Not suitable for anything
// security-sensitive; CANIOT only ever uses it to jitter response delays.
func (d *LoopbackDriver) Entropy(buf []byte) {
	d.rand.Read(buf)
}

// Close detaches the driver from its bus; further Recv calls report
// ErrAgain forever and queued Sends addressed to it are dropped.
func (d *LoopbackDriver) Close() error {
	d.bus.mu.Lock()
	delete(d.bus.peers, d)
	d.bus.mu.Unlock()

	d.queueMu.Lock()
	d.closed = true
	d.queue = nil
	d.queueMu.Unlock()
	return nil
}
