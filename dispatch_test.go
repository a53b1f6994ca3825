package caniot

import "testing"

// These scenarios follow the worked examples, using the attribute key as
// the bit-packed (section, attribute, part) triple actually produced by
// MakeAttrKey rather than the attribute's plain index; see DESIGN.md for
// why a literal index is not itself a valid wire key.

func TestDispatch_S1_ReadVersion(t *testing.T) {
	driver := &fakeDriver{}
	api := &testAPI{}
	dev := newTestDevice(driver, api)
	dev.Identification.Version = 0x0102

	key := MakeAttrKey(SectionIndexIdentification, 1, 0) // version
	req := Frame{ID: Identifier{Type: TypeReadAttribute, Direction: DirectionQuery, Class: 1, SubID: 2, Endpoint: EndpointApp}}
	req.SetPayload([]byte{byte(key), byte(key >> 8)})

	resp, emit := dev.Dispatch(req)
	if !emit {
		t.Fatalf("expected a response")
	}
	if resp.ID.Type != TypeReadAttribute || resp.ID.Direction != DirectionResponse {
		t.Fatalf("resp.ID = %+v, want type=read_attribute, direction=response", resp.ID)
	}
	if resp.Len != 6 {
		t.Fatalf("resp.Len = %d, want 6", resp.Len)
	}
	gotKey := readLE16(resp.Data[0:2])
	gotVal := readLE32(resp.Data[2:6])
	if AttrKey(gotKey) != key || gotVal != 0x0102 {
		t.Fatalf("resp payload = key=0x%04X val=0x%X, want key=0x%04X val=0x0102", gotKey, gotVal, key)
	}
}

func TestDispatch_S2_WriteTelemetryPeriod(t *testing.T) {
	driver := &fakeDriver{}
	api := &testAPI{}
	dev := newTestDevice(driver, api)

	key := MakeAttrKey(SectionIndexConfiguration, 0, 0) // telemetry.period
	if key != 0x2000 {
		t.Fatalf("sanity: telemetry.period key = 0x%04X, want 0x2000", key)
	}

	req := Frame{ID: Identifier{Type: TypeWriteAttribute, Direction: DirectionQuery, Class: 1, SubID: 2, Endpoint: EndpointApp}}
	payload := make([]byte, 6)
	writeLE16(payload[0:2], uint16(key))
	writeLE32(payload[2:6], 60)
	req.SetPayload(payload)

	resp, emit := dev.Dispatch(req)
	if !emit {
		t.Fatalf("expected a response")
	}
	if resp.ID.Type != TypeReadAttribute {
		t.Fatalf("resp.ID.Type = %v, want read_attribute", resp.ID.Type)
	}
	if api.onWriteCalls != 1 {
		t.Fatalf("ConfigOnWrite calls = %d, want 1", api.onWriteCalls)
	}
	if dev.Config.Telemetry.Period != 60 {
		t.Fatalf("Config.Telemetry.Period = %d, want 60", dev.Config.Telemetry.Period)
	}
	gotVal := readLE32(resp.Data[2:6])
	if gotVal != 60 {
		t.Fatalf("response value = %d, want 60", gotVal)
	}
}

func TestDispatch_S3_CommandError(t *testing.T) {
	driver := &fakeDriver{}
	api := &testAPI{commandErr: ErrHandlerCommand}
	dev := newTestDevice(driver, api)

	req := Frame{ID: Identifier{Type: TypeCommand, Direction: DirectionQuery, Class: 1, SubID: 2, Endpoint: EndpointApp}}
	req.SetPayload([]byte{0x01})

	resp, emit := dev.Dispatch(req)
	if !emit {
		t.Fatalf("expected a response")
	}
	if resp.ID.Type != TypeCommand || resp.ID.Direction != DirectionResponse {
		t.Fatalf("resp.ID = %+v, want type=command, direction=response", resp.ID)
	}
	gotCode := int32(readLE32(resp.Data[0:4]))
	wantCode := -int32(ErrHandlerCommand)
	if gotCode != wantCode {
		t.Fatalf("error code = %d, want %d", gotCode, wantCode)
	}
	if dev.System.LastCommandError != int16(ErrHandlerCommand) {
		t.Fatalf("LastCommandError = %d, want %d", dev.System.LastCommandError, ErrHandlerCommand)
	}
}

func TestDispatch_S6_InvalidKeyPart(t *testing.T) {
	driver := &fakeDriver{}
	api := &testAPI{}
	dev := newTestDevice(driver, api)

	key := MakeAttrKey(SectionIndexIdentification, 1, 1) // version, part 1: out of range
	req := Frame{ID: Identifier{Type: TypeReadAttribute, Direction: DirectionQuery, Class: 1, SubID: 2, Endpoint: EndpointApp}}
	req.SetPayload([]byte{byte(key), byte(key >> 8)})

	resp, emit := dev.Dispatch(req)
	if !emit {
		t.Fatalf("expected a response")
	}
	if resp.ID.Type != TypeWriteAttribute {
		t.Fatalf("resp.ID.Type = %v, want write_attribute", resp.ID.Type)
	}
	gotCode := int32(readLE32(resp.Data[0:4]))
	wantCode := -int32(ErrKeyPart)
	if gotCode != wantCode {
		t.Fatalf("error code = %d, want %d", gotCode, wantCode)
	}
	gotKey := readLE32(resp.Data[4:8])
	if AttrKey(gotKey) != key {
		t.Fatalf("error key = 0x%X, want 0x%X", gotKey, key)
	}
}

func TestDispatch_WrongDirection_NoResponse(t *testing.T) {
	driver := &fakeDriver{}
	api := &testAPI{}
	dev := newTestDevice(driver, api)

	req := Frame{ID: Identifier{Type: TypeReadAttribute, Direction: DirectionResponse, Class: 1, SubID: 2}}
	_, emit := dev.Dispatch(req)
	if emit {
		t.Fatalf("a response-direction frame should never produce a response")
	}
}
