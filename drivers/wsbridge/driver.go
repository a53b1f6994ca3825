// Package wsbridge bridges the caniot protocol core to a remote or
// browser-hosted virtual bus by tunnelling frames as JSON messages over a
// WebSocket connection.
package wsbridge

import (
	"context"
	"crypto/rand"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/caniot-project/caniot"
)

// wireFrame is the JSON-on-the-wire rendering of a caniot.Frame: the packed
// 11-bit identifier and the payload bytes actually in use, rather than the
// fixed 8-byte array, so messages stay small.
type wireFrame struct {
	ID   uint16 `json:"id"`
	Data []byte `json:"data"`
}

func toWireFrame(f caniot.Frame) wireFrame {
	return wireFrame{ID: caniot.PackID(f.ID), Data: append([]byte(nil), f.Payload()...)}
}

func (w wireFrame) toFrame() caniot.Frame {
	f := caniot.Frame{ID: caniot.UnpackID(w.ID)}
	f.SetPayload(w.Data)
	return f
}

// Driver adapts a WebSocket connection to caniot.Driver.
type Driver struct {
	conn *websocket.Conn

	rx chan caniot.Frame

	writeMu sync.Mutex

	clockMu sync.Mutex
	offset  time.Duration

	done chan struct{}
}

// DialOptions configures Dial.
type DialOptions struct {
	URL              string
	Username         string
	Password         string
	InsecureSkipVerify bool
	HandshakeTimeout time.Duration
}

// Dial opens a WebSocket connection to opts.URL, authenticating with HTTP
// Basic auth when Username is set, and starts a background reader that
// decodes incoming JSON frame messages.
func Dial(ctx context.Context, opts DialOptions) (*Driver, error) {
	timeout := opts.HandshakeTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	dialer := websocket.Dialer{HandshakeTimeout: timeout}
	if opts.InsecureSkipVerify {
		dialer.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	headers := http.Header{}
	if opts.Username != "" {
		cred := base64.StdEncoding.EncodeToString([]byte(opts.Username + ":" + opts.Password))
		headers.Set("Authorization", "Basic "+cred)
	}

	conn, resp, err := dialer.DialContext(ctx, opts.URL, headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("caniot/drivers/wsbridge: dial %s: HTTP %d: %w", opts.URL, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("caniot/drivers/wsbridge: dial %s: %w", opts.URL, err)
	}

	d := &Driver{conn: conn, rx: make(chan caniot.Frame, 32), done: make(chan struct{})}
	go d.readLoop()
	return d, nil
}

func (d *Driver) readLoop() {
	defer close(d.done)
	for {
		var wf wireFrame
		if err := d.conn.ReadJSON(&wf); err != nil {
			return
		}
		select {
		case d.rx <- wf.toFrame():
		default:
			select {
			case <-d.rx:
			default:
			}
			select {
			case d.rx <- wf.toFrame():
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
	if delay <= 0 {
		return d.writeFrame(f)
	}
	go func() {
		time.Sleep(delay)
		_ = d.writeFrame(f)
	}()
	return nil
}

func (d *Driver) writeFrame(f caniot.Frame) error {
	b, err := json.Marshal(toWireFrame(f))
	if err != nil {
		return err
	}
	d.writeMu.Lock()
	defer d.writeMu.Unlock()
	return d.conn.WriteMessage(websocket.TextMessage, b)
}

// GetTime implements caniot.Driver using the local wall clock plus an
// offset a prior SetTime introduced; a remote virtual bus has no clock of
// its own to query over this link.
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

// Entropy implements caniot.Driver with the OS CSPRNG.
func (d *Driver) Entropy(buf []byte) {
	_, _ = rand.Read(buf)
}

// Close stops the reader goroutine and closes the underlying connection.
func (d *Driver) Close() error {
	err := d.conn.Close()
	<-d.done
	return err
}
