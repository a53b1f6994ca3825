package caniot

import (
	"time"
)

// fakeDriver is a deterministic Driver for unit tests: time and entropy are
// both explicit rather than wall-clock-derived, and Recv/Send operate on
// plain queues the test controls directly.
type fakeDriver struct {
	sec, msec uint32
	entropy   []byte

	rx    []Frame
	rxPos int
	tx    []sentFrame
}

type sentFrame struct {
	frame Frame
	delay time.Duration
}

func (d *fakeDriver) Recv() (Frame, error) {
	if d.rxPos >= len(d.rx) {
		return Frame{}, ErrAgain
	}
	f := d.rx[d.rxPos]
	d.rxPos++
	return f, nil
}

func (d *fakeDriver) Send(f Frame, delay time.Duration) error {
	d.tx = append(d.tx, sentFrame{frame: f, delay: delay})
	return nil
}

func (d *fakeDriver) GetTime() (uint32, uint16) { return d.sec, uint16(d.msec) }
func (d *fakeDriver) SetTime(sec uint32)        { d.sec = sec }

func (d *fakeDriver) Entropy(buf []byte) {
	for i := range buf {
		if i < len(d.entropy) {
			buf[i] = d.entropy[i]
		}
	}
}

// testAPI is a scriptable API implementation: each handler is overridable
// per test, defaulting to a fixed telemetry payload and no-op config hooks.
type testAPI struct {
	commandErr   error
	telemetry    []byte
	telemetryErr error
	onReadErr    error
	onWriteErr   error

	commandCalls []commandCall
	onReadCalls  int
	onWriteCalls int
}

type commandCall struct {
	ep  Endpoint
	buf []byte
}

func (a *testAPI) HandleCommand(dev *Device, ep Endpoint, buf []byte) error {
	a.commandCalls = append(a.commandCalls, commandCall{ep: ep, buf: append([]byte{}, buf...)})
	return a.commandErr
}

func (a *testAPI) BuildTelemetry(dev *Device, ep Endpoint) ([]byte, error) {
	if a.telemetryErr != nil {
		return nil, a.telemetryErr
	}
	if a.telemetry != nil {
		return a.telemetry, nil
	}
	return []byte{0xAA, 0xBB}, nil
}

func (a *testAPI) ConfigOnRead(dev *Device) error {
	a.onReadCalls++
	return a.onReadErr
}

func (a *testAPI) ConfigOnWrite(dev *Device) error {
	a.onWriteCalls++
	return a.onWriteErr
}

// newTestDevice builds a Device with class=1, sub-id=2, wired to driver and
// api, and already initialized.
func newTestDevice(driver *fakeDriver, api API) *Device {
	id := Identification{
		Did:         Did{Class: 1, SubID: 2},
		Version:     0x0102,
		MagicNumber: 0xDEADBEEF,
	}
	cfg := DefaultConfig()
	dev := NewDevice(id, cfg, driver, api, nil)
	dev.Init()
	return dev
}
