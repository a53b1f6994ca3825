// Package serial bridges the caniot protocol core to a physical CAN
// interface reachable over an slcan-style ASCII serial link (the same
// framing real USB-CAN adapters such as the Lawicel/CANable firmware
// speak): a standard-ID data frame is a line "tIIILDD...DD\r" where III is
// the 3 hex digit identifier, L the 1 hex digit length, and DD... the data
// bytes in hex.
package serial

import (
	"bufio"
	cryptorand "crypto/rand"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/caniot-project/caniot"
)

// Config holds the serial port parameters used to open the underlying link.
type Config struct {
	Port     string
	BaudRate int
}

// Driver adapts an slcan-framed serial port to caniot.Driver.
type Driver struct {
	port   serial.Port
	reader *bufio.Reader

	rx chan caniot.Frame

	writeMu sync.Mutex

	closeOnce sync.Once
	done      chan struct{}
}

// Open opens the serial port named by cfg and starts a background reader
// that decodes slcan lines into frames. rxBuffer bounds how many decoded
// frames may queue before the oldest is dropped.
func Open(cfg Config, rxBuffer int) (*Driver, error) {
	if rxBuffer <= 0 {
		rxBuffer = 32
	}
	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(cfg.Port, mode)
	if err != nil {
		return nil, fmt.Errorf("caniot/drivers/serial: open %s: %w", cfg.Port, err)
	}

	d := &Driver{
		port:   port,
		reader: bufio.NewReader(port),
		rx:     make(chan caniot.Frame, rxBuffer),
		done:   make(chan struct{}),
	}
	go d.readLoop()
	return d, nil
}

func (d *Driver) readLoop() {
	defer close(d.done)
	for {
		line, err := d.reader.ReadString('\r')
		if err != nil {
			// io.EOF, or the port-closed error Read returns after Close.
			return
		}
		f, ok := decodeLine(line)
		if !ok {
			continue
		}
		select {
		case d.rx <- f:
		default:
			select {
			case <-d.rx:
			default:
			}
			select {
			case d.rx <- f:
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

// Send implements caniot.Driver, honouring a non-zero delay with a
// background timer so Process is never blocked on it.
func (d *Driver) Send(f caniot.Frame, delay time.Duration) error {
	line := encodeLine(f)
	if delay <= 0 {
		return d.writeLine(line)
	}
	go func() {
		time.Sleep(delay)
		_ = d.writeLine(line)
	}()
	return nil
}

func (d *Driver) writeLine(line string) error {
	d.writeMu.Lock()
	defer d.writeMu.Unlock()
	_, err := d.port.Write([]byte(line))
	return err
}

// GetTime implements caniot.Driver using the host wall clock; a real
// CAN-to-serial adapter has no onboard clock of its own to read.
func (d *Driver) GetTime() (sec uint32, msec uint16) {
	now := time.Now()
	return uint32(now.Unix()), uint16(now.Nanosecond() / 1_000_000)
}

// SetTime implements caniot.Driver as a no-op: the host wall clock is not
// this driver's to change.
func (d *Driver) SetTime(sec uint32) {}

// Entropy implements caniot.Driver with the OS CSPRNG, since the serial
// link offers no cheaper source of randomness worth reaching for.
func (d *Driver) Entropy(buf []byte) {
	_, _ = cryptorand.Read(buf)
}

// Close stops the reader goroutine and closes the serial port.
func (d *Driver) Close() error {
	err := d.port.Close()
	d.closeOnce.Do(func() { <-d.done })
	return err
}

// encodeLine renders f as an slcan "tIIILDD...\r" line.
func encodeLine(f caniot.Frame) string {
	id := caniot.PackID(f.ID)
	var b strings.Builder
	fmt.Fprintf(&b, "t%03X%X", id, f.Len)
	for _, by := range f.Payload() {
		fmt.Fprintf(&b, "%02X", by)
	}
	b.WriteByte('\r')
	return b.String()
}

// decodeLine parses an slcan "tIIILDD...\r" line into a Frame. Any other
// slcan command byte (bus status, bitrate, open/close) is not a CANIOT
// frame and is ignored.
func decodeLine(line string) (caniot.Frame, bool) {
	line = strings.TrimRight(line, "\r\n")
	if len(line) < 5 || line[0] != 't' {
		return caniot.Frame{}, false
	}
	idv, err := strconv.ParseUint(line[1:4], 16, 16)
	if err != nil {
		return caniot.Frame{}, false
	}
	length, err := strconv.ParseUint(line[4:5], 16, 8)
	if err != nil || length > 8 {
		return caniot.Frame{}, false
	}
	hexData := line[5:]
	if uint64(len(hexData)) < length*2 {
		return caniot.Frame{}, false
	}

	f := caniot.Frame{ID: caniot.UnpackID(uint16(idv)), Len: uint8(length)}
	for i := uint64(0); i < length; i++ {
		b, err := strconv.ParseUint(hexData[i*2:i*2+2], 16, 8)
		if err != nil {
			return caniot.Frame{}, false
		}
		f.Data[i] = byte(b)
	}
	return f, true
}
