package sensorspec

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Channel names of the sensor tuple, in persistence order.
const (
	EngineTemp  = "engine_temp"
	OilPressure = "oil_pressure"
	Vibration   = "vibration"
	RPM         = "rpm"
	FuelRate    = "fuel_rate"
)

// ChannelNames lists all channels in a fixed order shared by the cleaner,
// feature engineering and the models.
var ChannelNames = []string{EngineTemp, OilPressure, Vibration, RPM, FuelRate}

// Channel holds the physical envelope of one sensor.
type Channel struct {
	Unit           string  `toml:"unit"`
	Min            float64 `toml:"min"`
	Max            float64 `toml:"max"`
	DriftWindow    int     `toml:"drift_window"`
	DriftTolerance float64 `toml:"drift_tolerance"`
}

// Profile is the immutable per-deployment sensor specification. It replaces
// any notion of a mutable global spec table: load once, pass by parameter.
type Profile struct {
	Version int                `toml:"version"`
	Sensors map[string]Channel `toml:"sensors"`
}

// Load reads and validates a TOML sensor profile.
func Load(specFile string) (Profile, error) {
	path := strings.TrimSpace(specFile)
	if path == "" {
		return Profile{}, errors.New("sensor spec file is required")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, err
	}

	var profile Profile
	if err := toml.Unmarshal(raw, &profile); err != nil {
		return Profile{}, err
	}
	if err := validate(profile); err != nil {
		return Profile{}, err
	}
	return profile, nil
}

// Default returns the built-in profile used when no spec file is deployed.
func Default() Profile {
	return Profile{
		Version: 1,
		Sensors: map[string]Channel{
			EngineTemp:  {Unit: "C", Min: -10, Max: 130, DriftWindow: 20, DriftTolerance: 5},
			OilPressure: {Unit: "psi", Min: 0, Max: 100, DriftWindow: 20, DriftTolerance: 4},
			Vibration:   {Unit: "mm/s", Min: 0, Max: 50, DriftWindow: 20, DriftTolerance: 2},
			RPM:         {Unit: "rpm", Min: 0, Max: 3000, DriftWindow: 20, DriftTolerance: 100},
			FuelRate:    {Unit: "L/h", Min: 0, Max: 60, DriftWindow: 20, DriftTolerance: 3},
		},
	}
}

func validate(profile Profile) error {
	if profile.Version != 1 {
		return errors.New("unsupported sensor spec version: expected version = 1")
	}

	for _, name := range ChannelNames {
		channel, ok := profile.Sensors[name]
		if !ok {
			return fmt.Errorf("sensors.%s is required", name)
		}
		if channel.Min >= channel.Max {
			return fmt.Errorf("sensors.%s: min must be below max", name)
		}
		if channel.DriftWindow < 0 {
			return fmt.Errorf("sensors.%s: drift_window must not be negative", name)
		}
		if channel.DriftTolerance < 0 {
			return fmt.Errorf("sensors.%s: drift_tolerance must not be negative", name)
		}
	}
	return nil
}
