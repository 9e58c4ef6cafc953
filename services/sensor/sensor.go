// Package sensor implements the warm-up-aware reader over the two supported
// probe types. Variant selection happens at construction, not via build
// tags: the cycle is handed a Reader and never knows which bus is behind it.
//
// A read makes exactly one attempt. Failures are logged and reported as an
// invalid Reading; the next wake cycle is the retry mechanism.
package sensor

import (
	"context"
	"fmt"
	"math"
	"time"

	"thermonode-go/errcode"
	"thermonode-go/types"
)

// Reader is the capability the cycle orchestrator drives.
type Reader interface {
	// Init detects the probe. An error means no sensor this cycle; the
	// orchestrator signals and goes straight to sleep.
	Init(ctx context.Context) error
	// Read produces one Reading. Invalid channels are marked, never guessed.
	Read(ctx context.Context) types.Reading
}

// Logger is the slice of the local log the readers need.
type Logger interface {
	Message(text string)
}

// Datasheet ranges.
const (
	oneWireMinC = -55.0
	oneWireMaxC = 125.0

	combinedMinC = -40.0
	combinedMaxC = 85.0
)

// defaultSettle is the wait after a conversion request before the result is
// trusted; 12-bit conversions take up to 750 ms on real silicon.
const defaultSettle = 800 * time.Millisecond

// OneWireProbe is what the DS18B20 driver provides.
type OneWireProbe interface {
	Present() bool
	Convert() error
	Temperature() (float64, error)
}

// OneWire reads a DS18B20-class probe. The first conversion after power-up
// is discarded unconditionally: the probe's power-on scratchpad value is
// 85 °C, which is indistinguishable from a valid reading.
type OneWire struct {
	Probe OneWireProbe
	Log   Logger
	// Settle overrides the per-conversion settle delay (tests shrink it).
	Settle time.Duration

	delay func(time.Duration)
}

var _ Reader = (*OneWire)(nil)

func NewOneWire(probe OneWireProbe, log Logger) *OneWire {
	return &OneWire{Probe: probe, Log: log, delay: time.Sleep}
}

func (r *OneWire) Init(ctx context.Context) error {
	if !r.Probe.Present() {
		return &errcode.E{C: errcode.SensorError, Op: "init", Msg: "no DS18B20 probe on the bus"}
	}
	return nil
}

func (r *OneWire) Read(ctx context.Context) types.Reading {
	// Throwaway conversion, then the definitive one.
	_ = r.Probe.Convert()
	r.delay(r.settle())
	if err := r.Probe.Convert(); err != nil {
		r.Log.Message("Sensor error: device disconnected")
		return types.Invalid()
	}
	r.delay(r.settle())

	temp, err := r.Probe.Temperature()
	if err != nil {
		r.Log.Message("Sensor error: device disconnected")
		return types.Invalid()
	}
	if temp < oneWireMinC || temp > oneWireMaxC {
		r.Log.Message(fmt.Sprintf("Sensor error: reading out of range: %.2f", temp))
		return types.Invalid()
	}
	return types.TemperatureOnly(temp)
}

func (r *OneWire) settle() time.Duration {
	if r.Settle > 0 {
		return r.Settle
	}
	return defaultSettle
}

// CombinedProbe is what the AHT20 driver provides.
type CombinedProbe interface {
	Init() error
	ReadEvent() (tempC, humidity float64, err error)
}

// Combined reads an I2C temperature/humidity sensor. Temperature and
// humidity are validated independently; one channel going out of range does
// not invalidate the other, but a bus failure invalidates both.
type Combined struct {
	Probe CombinedProbe
	Log   Logger
}

var _ Reader = (*Combined)(nil)

func NewCombined(probe CombinedProbe, log Logger) *Combined {
	return &Combined{Probe: probe, Log: log}
}

func (r *Combined) Init(ctx context.Context) error {
	if err := r.Probe.Init(); err != nil {
		return &errcode.E{C: errcode.SensorError, Op: "init", Msg: "AHT20 not found on I2C bus", Err: err}
	}
	r.Log.Message("AHT20 sensor ready")
	return nil
}

func (r *Combined) Read(ctx context.Context) types.Reading {
	t, h, err := r.Probe.ReadEvent()
	if err != nil {
		r.Log.Message("Sensor error: AHT20 read failed")
		return types.Invalid()
	}

	out := types.Reading{TempC: t, Humidity: h}
	if t < combinedMinC || t > combinedMaxC {
		r.Log.Message(fmt.Sprintf("Sensor error: temperature out of range: %.2f", t))
		out.TempC = math.NaN()
	}
	if h < 0 || h > 100 {
		r.Log.Message(fmt.Sprintf("Sensor error: humidity out of range: %.1f", h))
		out.Humidity = math.NaN()
	}
	return out
}
