package caniot

import (
	"errors"
	"time"
)

// periodicEnabled reports whether periodic telemetry is configured at all;
// a period of zero means the application never wants unsolicited telemetry.
func (d *Device) periodicEnabled() bool {
	return d.Config != nil && d.Config.Telemetry.Period > 0
}

// telemetryPriority orders endpoints from highest to lowest priority when
// more than one has a pending telemetry request: board control first, then
// the two auxiliary endpoints, then the application endpoint.
var telemetryPriority = []Endpoint{EndpointBoardControl, EndpointEp2, EndpointEp1, EndpointApp}

func (d *Device) highestPriorityTelemetryEndpoint() (Endpoint, bool) {
	for _, ep := range telemetryPriority {
		if d.requestTelemetryEp&requestBit(ep) != 0 {
			return ep, true
		}
	}
	return 0, false
}

// Process runs one cooperative step of the device: it refreshes dirty
// configuration, samples the clock, arms periodic telemetry, polls the
// driver for an inbound frame (or, absent one, serves the next pending
// startup attribute or periodic telemetry request), and sends whatever
// response resulted.
func (d *Device) Process() {
	if d.configDirty && d.API != nil {
		if err := d.API.ConfigOnRead(d); err == nil {
			d.configDirty = false
		}
	}

	sec, msec := d.Driver.GetTime()
	d.System.Time = sec
	d.System.Uptime = sec - d.System.StartTime
	nowMs := uint64(sec)*1000 + uint64(msec)

	if d.periodicEnabled() {
		elapsed := nowMs - uint64(d.System.LastTelemetryMs)
		if elapsed >= uint64(d.Config.Telemetry.Period)*1000 {
			d.requestTelemetryEp |= requestBit(d.Config.Flags.TelemetryEndpoint)
		}
	}

	resp, emit, broadcast := d.poll()
	if !emit {
		return
	}
	if resp.IsErrorFrame() && d.Config != nil && !d.Config.Flags.ErrorResponse {
		return
	}

	var delay time.Duration
	if broadcast {
		delay = d.sampleBroadcastDelay()
	}
	if err := d.Driver.Send(resp, delay); err != nil {
		return
	}

	d.System.Sent.Total++
	if resp.ID.Type == TypeTelemetry {
		ep := resp.ID.Endpoint
		d.requestTelemetryEp &^= requestBit(ep)
		if d.periodicEnabled() && ep == d.Config.Flags.TelemetryEndpoint {
			d.System.LastTelemetryMs = uint32(nowMs)
			d.System.LastTelemetry = d.System.Time
		}
	}
}

func (d *Device) poll() (resp Frame, emit, broadcast bool) {
	req, err := d.Driver.Recv()
	switch {
	case err == nil:
		return d.pollReceived(req)
	case errors.Is(err, ErrAgain):
		return d.pollIdle()
	default:
		return Frame{}, false, false
	}
}

func (d *Device) pollReceived(req Frame) (resp Frame, emit, broadcast bool) {
	id := PackID(req.ID)
	if !IsTarget(d.Did(), id) {
		d.System.Received.Ignored++
		return Frame{}, false, false
	}

	resp, emit = d.Dispatch(req)
	return resp, emit, req.ID.Did().IsBroadcast()
}

func (d *Device) pollIdle() (resp Frame, emit, broadcast bool) {
	if !d.startupDone() {
		return d.publishNextStartupAttr(), true, false
	}
	if ep, ok := d.highestPriorityTelemetryEndpoint(); ok {
		payload, err := d.buildTelemetry(ep)
		q := Identifier{Type: TypeTelemetry, Direction: DirectionQuery, Endpoint: ep}
		if err != nil {
			return d.errorFrame(q, err), true, false
		}
		return d.responseFrame(q, TypeTelemetry, payload), true, false
	}
	return Frame{}, false, false
}

// publishNextStartupAttr synthesises a read_attribute response for the
// current startup attribute key without touching the receive counters;
// attribute-layer errors are ignored here since startup publication must
// never block normal operation.
func (d *Device) publishNextStartupAttr() Frame {
	key := d.startupAttrs[d.startupCursor]
	value, _ := d.ReadAttribute(key)

	d.startupCursor++
	if d.startupDone() {
		d.startupSent = true
	}

	q := Identifier{Type: TypeReadAttribute, Direction: DirectionQuery, Endpoint: EndpointApp}
	return d.responseFrame(q, TypeReadAttribute, attributePayload(key, value))
}

// sampleBroadcastDelay draws a response delay uniformly from
// [delay_min, delay_max) using the driver's entropy source, falling back to
// DefaultDelayAmplitude when the configured window is empty or inverted.
func (d *Device) sampleBroadcastDelay() time.Duration {
	if d.Config == nil {
		return 0
	}
	min := uint32(d.Config.Telemetry.DelayMin)
	amplitude := uint32(d.Config.Telemetry.DelayMax) - min
	if d.Config.Telemetry.DelayMax <= d.Config.Telemetry.DelayMin {
		amplitude = DefaultDelayAmplitude
	}

	var buf [4]byte
	d.Driver.Entropy(buf[:])
	offset := readLE32(buf[:]) % amplitude
	return time.Duration(min+offset) * time.Millisecond
}

// TimeUntilNextProcess reports how long the caller may wait before the next
// call to Process is worth making: zero if there is startup work pending or
// the periodic telemetry deadline has already passed, an unbounded duration
// if periodic telemetry is disabled, and the remaining time otherwise.
func (d *Device) TimeUntilNextProcess(nowMs uint64) time.Duration {
	if !d.startupDone() {
		return 0
	}
	if !d.periodicEnabled() {
		return time.Duration(1<<63 - 1)
	}
	periodMs := uint64(d.Config.Telemetry.Period) * 1000
	elapsed := nowMs - uint64(d.System.LastTelemetryMs)
	if elapsed >= periodMs {
		return 0
	}
	return time.Duration(periodMs-elapsed) * time.Millisecond
}
