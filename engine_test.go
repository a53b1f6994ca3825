package caniot

import "testing"

func TestReadAttribute_Identification(t *testing.T) {
	driver := &fakeDriver{}
	api := &testAPI{}
	dev := newTestDevice(driver, api)

	key := MakeAttrKey(SectionIndexIdentification, 1, 0) // version
	got, err := dev.ReadAttribute(key)
	if err != nil {
		t.Fatalf("ReadAttribute(version): %v", err)
	}
	if got != uint32(dev.Identification.Version) {
		t.Fatalf("ReadAttribute(version) = 0x%X, want 0x%X", got, dev.Identification.Version)
	}
}

func TestReadAttribute_ConfigDirtyProtocol(t *testing.T) {
	driver := &fakeDriver{}
	api := &testAPI{}
	dev := newTestDevice(driver, api)

	if !dev.configDirty {
		t.Fatalf("configDirty should be set after Init")
	}

	key := MakeAttrKey(SectionIndexConfiguration, 0, 0) // telemetry.period
	if _, err := dev.ReadAttribute(key); err != nil {
		t.Fatalf("ReadAttribute(telemetry.period): %v", err)
	}
	if api.onReadCalls != 1 {
		t.Fatalf("ConfigOnRead calls = %d, want 1", api.onReadCalls)
	}
	if dev.configDirty {
		t.Fatalf("configDirty should be cleared after a preflighted read")
	}

	if _, err := dev.ReadAttribute(key); err != nil {
		t.Fatalf("second ReadAttribute(telemetry.period): %v", err)
	}
	if api.onReadCalls != 1 {
		t.Fatalf("ConfigOnRead should not be called again while config is clean, got %d calls", api.onReadCalls)
	}
}

func TestWriteAttribute_ConfigTriggersOnWrite(t *testing.T) {
	driver := &fakeDriver{}
	api := &testAPI{}
	dev := newTestDevice(driver, api)

	key := MakeAttrKey(SectionIndexConfiguration, 0, 0) // telemetry.period
	if err := dev.WriteAttribute(key, 60); err != nil {
		t.Fatalf("WriteAttribute(telemetry.period, 60): %v", err)
	}
	if api.onWriteCalls != 1 {
		t.Fatalf("ConfigOnWrite calls = %d, want 1", api.onWriteCalls)
	}
	if dev.Config.Telemetry.Period != 60 {
		t.Fatalf("Config.Telemetry.Period = %d, want 60", dev.Config.Telemetry.Period)
	}
}

func TestWriteAttribute_SystemTimeShiftsTimebase(t *testing.T) {
	driver := &fakeDriver{sec: 1000}
	api := &testAPI{}
	dev := newTestDevice(driver, api)

	dev.System.StartTime = 900
	dev.System.LastTelemetry = 950
	dev.System.LastTelemetryMs = 950000

	if err := dev.WriteAttribute(AttrKeySystemTime, 2000); err != nil {
		t.Fatalf("WriteAttribute(system.time, 2000): %v", err)
	}

	// delta = new(2000) - old(1000) = 1000
	if dev.System.StartTime != 1900 {
		t.Fatalf("StartTime = %d, want 1900", dev.System.StartTime)
	}
	if dev.System.LastTelemetry != 1950 {
		t.Fatalf("LastTelemetry = %d, want 1950", dev.System.LastTelemetry)
	}
	if dev.System.Time != 2000 {
		t.Fatalf("Time = %d, want 2000", dev.System.Time)
	}
	if dev.System.UptimeSynced != 2000-1900 {
		t.Fatalf("UptimeSynced = %d, want %d", dev.System.UptimeSynced, 2000-1900)
	}
	if driver.sec != 2000 {
		t.Fatalf("driver clock not updated: got %d, want 2000", driver.sec)
	}
}

func TestAttribute_CustomAttrFallback(t *testing.T) {
	driver := &fakeDriver{}
	api := &customAttrAPI{testAPI: testAPI{}, value: 42}
	dev := newTestDevice(driver, api)

	const unknownKey = AttrKey(0xFFFF)
	got, err := dev.ReadAttribute(unknownKey)
	if err != nil {
		t.Fatalf("ReadAttribute(custom): %v", err)
	}
	if got != 42 {
		t.Fatalf("ReadAttribute(custom) = %d, want 42", got)
	}

	if err := dev.WriteAttribute(unknownKey, 99); err != nil {
		t.Fatalf("WriteAttribute(custom): %v", err)
	}
	if api.value != 99 {
		t.Fatalf("custom attribute not written: got %d, want 99", api.value)
	}
}

type customAttrAPI struct {
	testAPI
	value uint32
}

func (a *customAttrAPI) ReadCustomAttr(dev *Device, key AttrKey) (uint32, error) {
	return a.value, nil
}

func (a *customAttrAPI) WriteCustomAttr(dev *Device, key AttrKey, value uint32) error {
	a.value = value
	return nil
}
