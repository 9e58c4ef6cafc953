package types

import "math"

// Reading is one sensor sample, produced once per wake cycle.
// Temperature and humidity use NaN as the "not available" marker:
// a one-wire probe never reports humidity, and a failed read reports
// neither. A Reading is never mutated after the reader returns it.
type Reading struct {
	TempC    float64
	Humidity float64
}

// Invalid returns a Reading with no usable fields.
func Invalid() Reading {
	return Reading{TempC: math.NaN(), Humidity: math.NaN()}
}

// TemperatureOnly returns a Reading for probes without a humidity channel.
func TemperatureOnly(tempC float64) Reading {
	return Reading{TempC: tempC, Humidity: math.NaN()}
}

// Valid reports whether the temperature channel holds a usable value.
// Store and send decisions key off this.
func (r Reading) Valid() bool { return !math.IsNaN(r.TempC) }

// HasHumidity reports whether the humidity channel holds a usable value.
func (r Reading) HasHumidity() bool { return !math.IsNaN(r.Humidity) }
