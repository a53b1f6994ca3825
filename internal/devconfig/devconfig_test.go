package devconfig

import (
	"path/filepath"
	"testing"

	"github.com/caniot-project/caniot"
)

func writeFixture(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "device.yaml")
	f := &DeviceConfigFile{
		Identity: IdentityFile{Class: 0, SubID: 3, Version: 2, Name: "demo"},
		Config: ConfigFile{
			Telemetry: TelemetryFile{PeriodSeconds: 300, DelayMinMs: 10, DelayMaxMs: 50, Endpoint: "app"},
			Location:  LocationFile{Region: "EU", Country: "FR"},
		},
	}
	if err := Save(path, f); err != nil {
		t.Fatalf("Save: %v", err)
	}
	return path
}

func TestLoadSaveRoundTrip(t *testing.T) {
	path := writeFixture(t, t.TempDir())

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if f.Identity.SubID != 3 {
		t.Errorf("SubID = %d, want 3", f.Identity.SubID)
	}
	if f.Config.Telemetry.PeriodSeconds != 300 {
		t.Errorf("PeriodSeconds = %d, want 300", f.Config.Telemetry.PeriodSeconds)
	}
}

func TestStore_Identification(t *testing.T) {
	path := writeFixture(t, t.TempDir())

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	id := store.Identification()
	want := caniot.Did{Class: 0, SubID: 3}
	if id.Did != want {
		t.Errorf("Did = %+v, want %+v", id.Did, want)
	}
	if id.Version != 2 {
		t.Errorf("Version = %d, want 2", id.Version)
	}
}

func TestStore_NewCoreConfig(t *testing.T) {
	path := writeFixture(t, t.TempDir())

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	cfg := store.NewCoreConfig()
	if cfg.Telemetry.Period != 300 {
		t.Errorf("Period = %d, want 300", cfg.Telemetry.Period)
	}
	if cfg.Telemetry.DelayMin != 10 || cfg.Telemetry.DelayMax != 50 {
		t.Errorf("delay window = [%d, %d), want [10, 50)", cfg.Telemetry.DelayMin, cfg.Telemetry.DelayMax)
	}
	if cfg.Flags.TelemetryEndpoint != caniot.EndpointApp {
		t.Errorf("TelemetryEndpoint = %v, want app", cfg.Flags.TelemetryEndpoint)
	}
}

func TestStore_OnWritePersistsToDisk(t *testing.T) {
	path := writeFixture(t, t.TempDir())

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	dev := caniot.NewDevice(store.Identification(), store.NewCoreConfig(), caniot.NewLoopbackBus().Open(), nil, nil)
	dev.Init()
	dev.Config.Telemetry.Period = 900

	if err := store.OnWrite(dev); err != nil {
		t.Fatalf("OnWrite: %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load after OnWrite: %v", err)
	}
	if reloaded.Config.Telemetry.PeriodSeconds != 900 {
		t.Errorf("persisted PeriodSeconds = %d, want 900", reloaded.Config.Telemetry.PeriodSeconds)
	}
}

func TestStore_OnReadReloadsFromDisk(t *testing.T) {
	path := writeFixture(t, t.TempDir())

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	dev := caniot.NewDevice(store.Identification(), store.NewCoreConfig(), caniot.NewLoopbackBus().Open(), nil, nil)
	dev.Init()

	edited := &DeviceConfigFile{
		Identity: IdentityFile{Class: 0, SubID: 3, Version: 2, Name: "demo"},
		Config: ConfigFile{
			Telemetry: TelemetryFile{PeriodSeconds: 42, Endpoint: "app"},
		},
	}
	if err := Save(path, edited); err != nil {
		t.Fatalf("Save edited: %v", err)
	}

	if err := store.OnRead(dev); err != nil {
		t.Fatalf("OnRead: %v", err)
	}
	if dev.Config.Telemetry.Period != 42 {
		t.Errorf("Period after OnRead = %d, want 42", dev.Config.Telemetry.Period)
	}
}
