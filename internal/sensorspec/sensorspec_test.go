package sensorspec

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSpec(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "sensors.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write spec file: %v", err)
	}
	return path
}

const validSpec = `
version = 1

[sensors.engine_temp]
unit = "C"
min = -10.0
max = 130.0
drift_window = 20
drift_tolerance = 5.0

[sensors.oil_pressure]
unit = "psi"
min = 0.0
max = 100.0
drift_window = 20
drift_tolerance = 4.0

[sensors.vibration]
unit = "mm/s"
min = 0.0
max = 50.0
drift_window = 20
drift_tolerance = 2.0

[sensors.rpm]
unit = "rpm"
min = 0.0
max = 3000.0
drift_window = 20
drift_tolerance = 100.0

[sensors.fuel_rate]
unit = "L/h"
min = 0.0
max = 60.0
drift_window = 20
drift_tolerance = 3.0
`

func TestLoadValidProfile(t *testing.T) {
	profile, err := Load(writeSpec(t, validSpec))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if profile.Version != 1 {
		t.Fatalf("Version = %d, want 1", profile.Version)
	}
	if len(profile.Sensors) != len(ChannelNames) {
		t.Fatalf("Sensors = %d channels, want %d", len(profile.Sensors), len(ChannelNames))
	}
	if got := profile.Sensors[EngineTemp]; got.Min != -10 || got.Max != 130 || got.Unit != "C" {
		t.Fatalf("engine_temp channel = %+v, want the file values", got)
	}
}

func TestLoadRejectsWrongVersion(t *testing.T) {
	spec := strings.Replace(validSpec, "version = 1", "version = 2", 1)
	if _, err := Load(writeSpec(t, spec)); err == nil {
		t.Fatal("Load() with version 2 succeeded, want error")
	}
}

func TestLoadRejectsMissingChannel(t *testing.T) {
	spec := strings.Replace(validSpec, "[sensors.fuel_rate]", "[sensors.fuel_flow]", 1)
	if _, err := Load(writeSpec(t, spec)); err == nil {
		t.Fatal("Load() without fuel_rate succeeded, want error")
	}
}

func TestLoadRejectsInvertedRange(t *testing.T) {
	spec := strings.Replace(validSpec, "max = 130.0", "max = -20.0", 1)
	if _, err := Load(writeSpec(t, spec)); err == nil {
		t.Fatal("Load() with min above max succeeded, want error")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("Load() on a missing file succeeded, want error")
	}
	if _, err := Load("  "); err == nil {
		t.Fatal("Load() with a blank path succeeded, want error")
	}
}

func TestDefaultProfileIsValid(t *testing.T) {
	if err := validate(Default()); err != nil {
		t.Fatalf("validate(Default()) error = %v", err)
	}
}
