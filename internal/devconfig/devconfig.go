// Package devconfig loads and persists a CANIOT device's identity and
// configuration section as a YAML file on disk, and wires the result into
// the config.on_read/config.on_write collaborators the core invokes.
package devconfig

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/caniot-project/caniot"
)

// IdentityFile is the read-only identification half of the on-disk config:
// it is written once by an operator and never rewritten by the running
// device.
type IdentityFile struct {
	Class       uint8  `yaml:"class"`
	SubID       uint8  `yaml:"sub_id"`
	Version     uint16 `yaml:"version"`
	Name        string `yaml:"name"`
	MagicNumber uint32 `yaml:"magic_number"`
	BuildDate   uint32 `yaml:"build_date,omitempty"`
	BuildCommit string `yaml:"build_commit,omitempty"`
}

// GPIOFile mirrors caniot.GPIOConfig in a YAML-friendly shape.
type GPIOFile struct {
	PulseDurationsMs  [4]uint32 `yaml:"pulse_durations_ms"`
	OutputsDefault    uint8     `yaml:"outputs_default"`
	TelemetryOnChange uint8     `yaml:"telemetry_on_change_mask"`
}

// LocationFile mirrors caniot.Location in a YAML-friendly shape.
type LocationFile struct {
	Region  string `yaml:"region"`
	Country string `yaml:"country"`
}

// TelemetryFile mirrors the telemetry-related fields of caniot.Config.
type TelemetryFile struct {
	PeriodSeconds   uint32 `yaml:"period_seconds"`
	DelayMinMs      uint16 `yaml:"delay_min_ms"`
	DelayMaxMs      uint16 `yaml:"delay_max_ms"`
	RandomizeDelay  bool   `yaml:"randomize_delay"`
	Endpoint        string `yaml:"endpoint"`
}

// ConfigFile is the persistent, mutable half of the on-disk config: the
// fields backing caniot.Config, rewritten whenever the core's config.on_write
// callback fires.
type ConfigFile struct {
	Telemetry     TelemetryFile `yaml:"telemetry"`
	ErrorResponse bool          `yaml:"error_response"`
	TimezoneMin   int32         `yaml:"timezone_minutes"`
	Location      LocationFile  `yaml:"location"`
	Class0GPIO    GPIOFile      `yaml:"class0_gpio"`
}

// DeviceConfigFile is the full shape persisted at a single YAML path.
type DeviceConfigFile struct {
	Identity IdentityFile `yaml:"identity"`
	Config   ConfigFile   `yaml:"config"`
}

var endpointNames = map[string]caniot.Endpoint{
	"app":           caniot.EndpointApp,
	"ep1":           caniot.EndpointEp1,
	"ep2":           caniot.EndpointEp2,
	"board_control": caniot.EndpointBoardControl,
}

func endpointToName(ep caniot.Endpoint) string {
	for name, v := range endpointNames {
		if v == ep {
			return name
		}
	}
	return "app"
}

// Load reads and parses a DeviceConfigFile from path.
func Load(path string) (*DeviceConfigFile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("devconfig: read %s: %w", path, err)
	}
	var f DeviceConfigFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("devconfig: parse %s: %w", path, err)
	}
	return &f, nil
}

// Save serialises f as YAML to path, overwriting any existing file.
func Save(path string, f *DeviceConfigFile) error {
	b, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("devconfig: marshal: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("devconfig: write %s: %w", path, err)
	}
	return nil
}

// Identification translates the identity section into the core's
// read-only Identification struct.
func (f *DeviceConfigFile) Identification() caniot.Identification {
	var id caniot.Identification
	id.Did = caniot.Did{Class: f.Identity.Class, SubID: f.Identity.SubID}
	id.Version = f.Identity.Version
	copy(id.Name[:], f.Identity.Name)
	id.MagicNumber = f.Identity.MagicNumber
	id.BuildDate = f.Identity.BuildDate
	copy(id.BuildCommit[:], f.Identity.BuildCommit)
	return id
}

// CoreConfig translates the config section into a fresh *caniot.Config.
func (f *DeviceConfigFile) CoreConfig() *caniot.Config {
	c := caniot.DefaultConfig()
	c.Telemetry.Period = f.Config.Telemetry.PeriodSeconds
	c.Telemetry.DelayMin = f.Config.Telemetry.DelayMinMs
	c.Telemetry.DelayMax = f.Config.Telemetry.DelayMaxMs
	c.Flags.ErrorResponse = f.Config.ErrorResponse
	c.Flags.TelemetryDelayRdm = f.Config.Telemetry.RandomizeDelay
	c.Flags.TelemetryEndpoint = endpointNames[f.Config.Telemetry.Endpoint]
	c.Timezone = f.Config.TimezoneMin
	copy(c.Location.Region[:], f.Config.Location.Region)
	copy(c.Location.Country[:], f.Config.Location.Country)
	c.Class0GPIO.PulseDurations = f.Config.Class0GPIO.PulseDurationsMs
	c.Class0GPIO.OutputsDefault = f.Config.Class0GPIO.OutputsDefault
	c.Class0GPIO.TelemetryOnChange = f.Config.Class0GPIO.TelemetryOnChange
	return c
}

// fromCoreConfig overwrites f.Config in place from the live *caniot.Config,
// the inverse of CoreConfig, used by Store.OnWrite to capture what the core
// just wrote before persisting it.
func (f *DeviceConfigFile) fromCoreConfig(c *caniot.Config) {
	f.Config.Telemetry.PeriodSeconds = c.Telemetry.Period
	f.Config.Telemetry.DelayMinMs = c.Telemetry.DelayMin
	f.Config.Telemetry.DelayMaxMs = c.Telemetry.DelayMax
	f.Config.Telemetry.RandomizeDelay = c.Flags.TelemetryDelayRdm
	f.Config.Telemetry.Endpoint = endpointToName(c.Flags.TelemetryEndpoint)
	f.Config.ErrorResponse = c.Flags.ErrorResponse
	f.Config.TimezoneMin = c.Timezone
	f.Config.Location.Region = string(c.Location.Region[:])
	f.Config.Location.Country = string(c.Location.Country[:])
	f.Config.Class0GPIO.PulseDurationsMs = c.Class0GPIO.PulseDurations
	f.Config.Class0GPIO.OutputsDefault = c.Class0GPIO.OutputsDefault
	f.Config.Class0GPIO.TelemetryOnChange = c.Class0GPIO.TelemetryOnChange
}

// Store is a disk-backed implementation of the config.on_read/on_write
// collaborators of §6.5: it keeps the last-loaded DeviceConfigFile in
// memory and rewrites it to disk whenever the core reports a configuration
// write.
type Store struct {
	path string

	mu   sync.Mutex
	file *DeviceConfigFile
}

// Open loads path and returns a Store ready to back a caniot.Device's
// configuration callbacks.
func Open(path string) (*Store, error) {
	f, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &Store{path: path, file: f}, nil
}

// Identification returns the identity this store was loaded with.
func (s *Store) Identification() caniot.Identification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Identification()
}

// NewCoreConfig builds a fresh *caniot.Config from the on-disk state,
// suitable for handing to caniot.NewDevice.
func (s *Store) NewCoreConfig() *caniot.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.CoreConfig()
}

// OnRead implements the config.on_read collaborator: it reloads the file
// from disk so an operator's out-of-band edit becomes visible the next time
// the core reads a stale configuration attribute.
func (s *Store) OnRead(dev *caniot.Device) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := Load(s.path)
	if err != nil {
		return err
	}
	s.file = f
	*dev.Config = *f.CoreConfig()
	return nil
}

// OnWrite implements the config.on_write collaborator: it captures the
// core's freshly-written dev.Config back into the in-memory file and
// persists it to disk.
func (s *Store) OnWrite(dev *caniot.Device) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.file.fromCoreConfig(dev.Config)
	return Save(s.path, s.file)
}
