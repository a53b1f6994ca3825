package caniot

import (
	"errors"
	"sync"
	"time"
)

// Mux multiplexes frames polled from a Driver out to any number of
// subscribers via filters. It owns the driver for receiving and runs a
// single background goroutine that polls Recv and fans decoded frames out,
// so a monitor or logger can observe live traffic without competing with a
// device's own Process loop for the same driver.
//
// Send is not proxied; callers drive the device (and its sends) separately.
type Mux struct {
	driver    Driver
	pollEvery time.Duration
	stop      chan struct{}
	done      chan struct{}

	mu   sync.RWMutex
	subs map[uint64]*subscriber
	next uint64
}

type subscriber struct {
	filter FrameFilter
	ch     chan Frame
}

// NewMux starts a multiplexer polling driver for frames every pollEvery.
func NewMux(driver Driver, pollEvery time.Duration) *Mux {
	m := &Mux{
		driver:    driver,
		pollEvery: pollEvery,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
		subs:      make(map[uint64]*subscriber),
	}
	go m.run()
	return m
}

// Close stops the background poller and closes every subscriber channel.
func (m *Mux) Close() error {
	select {
	case <-m.stop:
		return nil
	default:
	}
	close(m.stop)
	<-m.done

	m.mu.Lock()
	for id, s := range m.subs {
		close(s.ch)
		delete(m.subs, id)
	}
	m.mu.Unlock()
	return nil
}

// Subscribe registers a new subscriber with the given filter and channel
// buffer. A nil filter matches every frame. cancel must be called when the
// subscriber is no longer needed; it closes the returned channel.
func (m *Mux) Subscribe(filter FrameFilter, buffer int) (<-chan Frame, func()) {
	if buffer < 0 {
		buffer = 0
	}
	s := &subscriber{filter: filter, ch: make(chan Frame, buffer)}

	m.mu.Lock()
	id := m.next
	m.next++
	m.subs[id] = s
	m.mu.Unlock()

	cancel := func() {
		m.mu.Lock()
		if cur, ok := m.subs[id]; ok && cur == s {
			close(cur.ch)
			delete(m.subs, id)
		}
		m.mu.Unlock()
	}
	return s.ch, cancel
}

func (m *Mux) run() {
	defer close(m.done)

	ticker := time.NewTicker(m.pollEvery)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
		}

		f, err := m.driver.Recv()
		if err != nil {
			if errors.Is(err, ErrAgain) {
				continue
			}
			return
		}

		m.mu.RLock()
		for _, s := range m.subs {
			if s.filter == nil || s.filter(f) {
				select {
				case s.ch <- f:
				default:
				}
			}
		}
		m.mu.RUnlock()
	}
}
