// Package aht20 provides a driver for the AHT20 temperature/humidity sensor.
// It exposes a single-shot measurement API on top of an I2C bus:
//
//	err := d.Init()            // probe + calibrate once after power-up
//	t, h, err := d.ReadEvent() // trigger, poll until ready, decode
//
// NOTE: I2C.Tx MUST perform a write followed by a repeated-start read when
// both w and r are provided, without releasing the bus.
package aht20

import (
	"errors"
	"time"

	"tinygo.org/x/drivers"
)

// I2C address.
const Address = 0x38

// Commands and status bits (per datasheet/common driver practice).
const (
	cmdTrigger    = 0xAC
	cmdInitialize = 0xBE
	cmdSoftReset  = 0xBA
	cmdStatus     = 0x71

	statusBusy       = 0x80
	statusCalibrated = 0x08
)

// Errors returned by the driver.
var (
	ErrTimeout  = errors.New("aht20: timeout")
	ErrNotFound = errors.New("aht20: no device on bus")
)

// Config controls non-hardware behaviour. All fields are optional.
type Config struct {
	// Address defaults to 0x38 if zero.
	Address uint16
	// PollInterval is the wait between ready checks while a conversion is in
	// flight. Default 15 ms.
	PollInterval time.Duration
	// CollectTimeout bounds the total wait in ReadEvent. Default 250 ms.
	CollectTimeout time.Duration
}

// Device wraps an I2C connection to an AHT20 device.
type Device struct {
	bus     drivers.I2C
	Address uint16

	cfg Config
	buf [7]byte // reuse buffer to avoid allocations
}

// New creates a new AHT20 connection. The I2C bus must already be configured.
// This function only creates the Device object; it does not touch the device.
func New(bus drivers.I2C) Device {
	return Device{bus: bus, Address: Address}
}

// Configure applies optional config and fills in defaults.
func (d *Device) Configure(cfgs ...Config) {
	c := Config{}
	if len(cfgs) > 0 {
		c = cfgs[0]
	}
	if c.Address != 0 {
		d.Address = c.Address
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 15 * time.Millisecond
	}
	if c.CollectTimeout <= 0 {
		c.CollectTimeout = 250 * time.Millisecond
	}
	d.cfg = c
}

// Init probes the device and forces calibration if needed. It is the
// detection step: ErrNotFound means nothing answered at the address.
func (d *Device) Init() error {
	if d.cfg.PollInterval == 0 {
		d.Configure()
	}
	st, err := d.status()
	if err != nil {
		return ErrNotFound
	}
	if st&statusCalibrated != 0 {
		return nil
	}
	if err := d.bus.Tx(d.Address, []byte{cmdInitialize, 0x08, 0x00}, nil); err != nil {
		return ErrNotFound
	}
	// Calibration needs a short settle before the first trigger.
	time.Sleep(10 * time.Millisecond)
	return nil
}

// Reset issues a soft reset. Give the device ~20ms afterwards before using.
func (d *Device) Reset() {
	_ = d.bus.Tx(d.Address, []byte{cmdSoftReset}, nil)
}

// ReadEvent performs one full measurement: trigger, bounded polling until the
// busy bit clears, then decode. Temperature is °C, humidity %RH.
func (d *Device) ReadEvent() (tempC, humidity float64, err error) {
	if d.cfg.PollInterval == 0 {
		d.Configure()
	}
	if err := d.bus.Tx(d.Address, []byte{cmdTrigger, 0x33, 0x00}, nil); err != nil {
		return 0, 0, err
	}

	deadline := time.Now().Add(d.cfg.CollectTimeout)
	for {
		data := d.buf[:]
		if err := d.bus.Tx(d.Address, nil, data); err != nil {
			return 0, 0, err
		}
		if (data[0]&statusCalibrated) != 0 && (data[0]&statusBusy) == 0 {
			hraw := (uint32(data[1]) << 12) | (uint32(data[2]) << 4) | (uint32(data[3]) >> 4)
			traw := (uint32(data[3]&0x0F) << 16) | (uint32(data[4]) << 8) | uint32(data[5])
			humidity = float64(hraw) * 100 / 0x100000
			tempC = float64(traw)*200/0x100000 - 50
			return tempC, humidity, nil
		}
		if time.Now().After(deadline) {
			return 0, 0, ErrTimeout
		}
		time.Sleep(d.cfg.PollInterval)
	}
}

func (d *Device) status() (byte, error) {
	data := []byte{0}
	if err := d.bus.Tx(d.Address, []byte{cmdStatus}, data); err != nil {
		return 0, err
	}
	return data[0], nil
}
