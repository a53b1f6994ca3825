package caniot

import "errors"

// Dispatch processes one inbound query frame and returns the frame to send
// in response. Success paths respond on the type appropriate to the
// operation: a telemetry frame for command and telemetry queries, a
// read_attribute frame for attribute queries. Failures are reported as
// error frames on errorTypeFor(req.ID.Type) instead, carrying the
// offending attribute key when the failure originated in the attribute
// engine. emit is false only for frames with the wrong direction, which
// never produce a response at all.
func (d *Device) Dispatch(req Frame) (resp Frame, emit bool) {
	if req.ID.Direction != DirectionQuery {
		return Frame{}, false
	}
	d.System.Received.Total++

	var payload []byte
	var respType Type
	var err error

	switch req.ID.Type {
	case TypeCommand:
		d.System.Received.Command++
		err = d.dispatchCommand(req)
		d.System.LastCommandError = int16(codeOf(err))
		if err == nil {
			payload, err = d.buildTelemetry(req.ID.Endpoint)
		}
		respType = TypeTelemetry

	case TypeTelemetry:
		d.System.Received.RequestTelemetry++
		payload, err = d.buildTelemetry(req.ID.Endpoint)
		respType = TypeTelemetry

	case TypeWriteAttribute:
		d.System.Received.WriteAttribute++
		payload, err = d.writeAttributeFromFrame(req)
		respType = TypeReadAttribute

	case TypeReadAttribute:
		d.System.Received.ReadAttribute++
		payload, err = d.readAttributeFromFrame(req)
		respType = TypeReadAttribute

	default:
		err = ErrInvalid
	}

	if err != nil {
		return d.errorFrame(req.ID, err), true
	}
	return d.responseFrame(req.ID, respType, payload), true
}

// dispatchCommand runs the board-control BLC pre-dispatch (when the
// payload carries a trailing command byte beyond the classical 8-byte CAN
// frame) and then the application's command handler.
func (d *Device) dispatchCommand(req Frame) error {
	ep := req.ID.Endpoint
	buf := req.Payload()

	if ep == EndpointBoardControl && len(buf) > 8 {
		if h, ok := d.API.(BLCHandler); ok {
			cmd := BLCSysCommandFromByte(buf[8])
			if err := h.HandleBLCSysCommand(d, cmd); err != nil {
				return err
			}
		}
	}

	if d.API == nil {
		return ErrHandlerCommand
	}
	return d.API.HandleCommand(d, ep, buf)
}

func (d *Device) buildTelemetry(ep Endpoint) ([]byte, error) {
	if d.API == nil {
		d.System.LastTelemetryError = int16(ErrHandlerTelem)
		return nil, ErrHandlerTelem
	}
	payload, err := d.API.BuildTelemetry(d, ep)
	d.System.LastTelemetryError = int16(codeOf(err))
	if err != nil {
		return nil, err
	}
	d.System.Sent.Telemetry++
	return payload, nil
}

func (d *Device) writeAttributeFromFrame(req Frame) ([]byte, error) {
	buf := req.Payload()
	if len(buf) < 6 {
		return nil, ErrFrame
	}
	key := AttrKey(readLE16(buf[0:2]))
	value := readLE32(buf[2:6])

	if err := d.WriteAttribute(key, value); err != nil {
		return nil, err
	}
	got, err := d.ReadAttribute(key)
	if err != nil {
		return nil, err
	}
	return attributePayload(key, got), nil
}

func (d *Device) readAttributeFromFrame(req Frame) ([]byte, error) {
	buf := req.Payload()
	if len(buf) < 2 {
		return nil, ErrFrame
	}
	key := AttrKey(readLE16(buf[0:2]))

	value, err := d.ReadAttribute(key)
	if err != nil {
		return nil, err
	}
	return attributePayload(key, value), nil
}

func attributePayload(key AttrKey, value uint32) []byte {
	b := make([]byte, 6)
	writeLE16(b[0:2], uint16(key))
	writeLE32(b[2:6], value)
	return b
}

// responseFrame builds a success response: same endpoint as the request,
// respType as given, direction=response, identifier class/sub-id taken
// from the device's own identification memory.
func (d *Device) responseFrame(reqID Identifier, respType Type, payload []byte) Frame {
	f := Frame{ID: Identifier{
		Type:      respType,
		Direction: DirectionResponse,
		Class:     d.Did().Class,
		SubID:     d.Did().SubID,
		Endpoint:  reqID.Endpoint,
	}}
	f.SetPayload(payload)
	return f
}

// errorFrame builds an error response for a failed request of reqID.Type:
// bytes 0..4 carry the negated error code, and bytes 4..8 additionally
// carry the offending attribute key for attribute errors other than
// frame-shape errors.
func (d *Device) errorFrame(reqID Identifier, err error) Frame {
	code := codeOf(err)

	payload := make([]byte, 4)
	writeLE32(payload, uint32(-int32(code)))

	var ae *AttributeError
	if errors.As(err, &ae) && code != ErrFrame {
		key := make([]byte, 4)
		writeLE32(key, uint32(ae.Key))
		payload = append(payload, key...)
	}

	f := Frame{ID: Identifier{
		Type:      errorTypeFor(reqID.Type),
		Direction: DirectionResponse,
		Class:     d.Did().Class,
		SubID:     d.Did().SubID,
		Endpoint:  reqID.Endpoint,
	}}
	f.SetPayload(payload)
	return f
}
