// Package ds18b20 provides a driver for the DS18B20 one-wire temperature
// probe. The one-wire signalling itself (reset/presence timing, bit slots)
// is a collaborator behind the Bus interface; this package only issues the
// ROM/function command sequences and decodes the scratchpad.
//
// The probe's power-on-reset scratchpad reads as +85 °C, which is also a
// legal measurement. The driver does not second-guess that; callers that
// care (see services/sensor) discard the first conversion after power-up.
package ds18b20

import "errors"

// ROM and function commands (per datasheet).
const (
	cmdSkipROM        = 0xCC
	cmdConvertT       = 0x44
	cmdReadScratchpad = 0xBE
)

// DisconnectedC is the sentinel temperature reported by Temperature when the
// probe fails to answer. It sits well outside the device's −55…125 range.
const DisconnectedC = -127.0

// Errors returned by the driver.
var (
	ErrNoDevice = errors.New("ds18b20: no device present")
	ErrBadRead  = errors.New("ds18b20: scratchpad read failed")
)

// Bus is the one-wire transaction interface the driver needs. Reset issues a
// reset pulse and reports whether any device answered with a presence pulse.
type Bus interface {
	Reset() (present bool, err error)
	WriteByte(b byte) error
	ReadByte() (byte, error)
}

// Device wraps a single DS18B20 on a one-wire bus. Only one probe per bus is
// supported (commands are addressed with Skip ROM).
type Device struct {
	bus Bus
}

// New creates a DS18B20 connection. The bus must already be configured.
func New(bus Bus) Device {
	return Device{bus: bus}
}

// Present probes the bus for a presence pulse without issuing any command.
func (d *Device) Present() bool {
	present, err := d.bus.Reset()
	return err == nil && present
}

// Convert starts a temperature conversion. It does not wait for completion;
// a 12-bit conversion takes up to 750 ms on real silicon.
func (d *Device) Convert() error {
	if err := d.address(); err != nil {
		return err
	}
	return d.bus.WriteByte(cmdConvertT)
}

// Temperature reads the scratchpad and returns the last converted value in
// °C. If the probe does not answer, DisconnectedC is returned along with
// ErrNoDevice or ErrBadRead.
func (d *Device) Temperature() (float64, error) {
	if err := d.address(); err != nil {
		return DisconnectedC, err
	}
	if err := d.bus.WriteByte(cmdReadScratchpad); err != nil {
		return DisconnectedC, ErrBadRead
	}

	var sp [2]byte // temperature LSB, MSB; remaining scratchpad bytes unused
	ones := true
	for i := range sp {
		b, err := d.bus.ReadByte()
		if err != nil {
			return DisconnectedC, ErrBadRead
		}
		if b != 0xFF {
			ones = false
		}
		sp[i] = b
	}
	// A floating data line reads all ones; treat it as a missing probe.
	if ones {
		return DisconnectedC, ErrNoDevice
	}

	raw := int16(sp[1])<<8 | int16(sp[0])
	return float64(raw) / 16.0, nil
}

func (d *Device) address() error {
	present, err := d.bus.Reset()
	if err != nil {
		return err
	}
	if !present {
		return ErrNoDevice
	}
	return d.bus.WriteByte(cmdSkipROM)
}
