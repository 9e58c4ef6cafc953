// Package status drives the single-pin visual indicator. Each cycle outcome
// has a fixed blink count; timings follow the board convention of a slow
// startup blink and fast error bursts.
package status

import "time"

// Pin is the digital output capability the signaller drives.
type Pin interface {
	ConfigureOutput(initial bool) error
	Set(level bool)
}

// Blink timings.
const (
	slowDelay    = 200 * time.Millisecond
	defaultDelay = 100 * time.Millisecond
	fastDelay    = 50 * time.Millisecond
)

// Signal owns the indicator pin for the duration of a wake cycle.
type Signal struct {
	pin   Pin
	delay func(time.Duration)
}

// New creates a signaller on pin. The pin is configured low.
func New(pin Pin) *Signal {
	_ = pin.ConfigureOutput(false)
	return &Signal{pin: pin, delay: time.Sleep}
}

// Startup: one slow blink at the top of every wake.
func (s *Signal) Startup() { s.blink(1, slowDelay) }

// NetworkUp: two blinks after joining a network.
func (s *Signal) NetworkUp() { s.blink(2, defaultDelay) }

// SentOK: one blink after a successful telemetry post.
func (s *Signal) SentOK() { s.blink(1, defaultDelay) }

// NetworkError: three fast blinks for join or server failures.
func (s *Signal) NetworkError() { s.blink(3, fastDelay) }

// SensorError: five fast blinks for a missing or misbehaving sensor.
func (s *Signal) SensorError() { s.blink(5, fastDelay) }

func (s *Signal) blink(times int, d time.Duration) {
	for i := 0; i < times; i++ {
		s.pin.Set(true)
		s.delay(d)
		s.pin.Set(false)
		s.delay(d)
	}
}
