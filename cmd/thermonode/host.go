package main

import (
	"context"
	"math/rand"
	"time"

	"thermonode-go/services/netsession"
	"thermonode-go/services/status"
	"thermonode-go/types"
)

// hostClock: the OS disciplines its own clock, so time is always "synced".
type hostClock struct{}

func (hostClock) Now() (time.Time, bool) { return time.Now(), true }

func (hostClock) StartSync(servers []string) {}

// hostRadio reports the first configured network as joined; on a host the OS
// network stack is already up, the association dance is a formality.
type hostRadio struct {
	networks  []types.Credential
	connected bool
	ssid      string
}

var _ netsession.Radio = (*hostRadio)(nil)

func (r *hostRadio) Connected() bool { return r.connected }

func (r *hostRadio) Scan() ([]netsession.Station, error) {
	out := make([]netsession.Station, 0, len(r.networks))
	for i, n := range r.networks {
		out = append(out, netsession.Station{SSID: n.SSID, RSSI: -40 - i})
	}
	return out, nil
}

func (r *hostRadio) Join(ssid, secret string) error {
	r.connected = true
	r.ssid = ssid
	return nil
}

func (r *hostRadio) SSID() string { return r.ssid }
func (r *hostRadio) Addr() string { return "127.0.0.1" }
func (r *hostRadio) Disconnect() error {
	r.connected = false
	return nil
}

// hostPin keeps the indicator level in memory; there is no LED to drive.
type hostPin struct {
	level bool
}

var _ status.Pin = (*hostPin)(nil)

func (p *hostPin) ConfigureOutput(initial bool) error {
	p.level = initial
	return nil
}
func (p *hostPin) Set(level bool) { p.level = level }

// hostSleeper: deep sleep degrades to a timer sleep, cut short on shutdown.
type hostSleeper struct {
	ctx context.Context
}

func (s *hostSleeper) DeepSleep(d time.Duration) {
	select {
	case <-time.After(d):
	case <-s.ctx.Done():
	}
}

// memBootStore is the host stand-in for RTC slow memory: survives the wake
// loop, lost when the process (the "power rail") goes away.
type memBootStore struct {
	state types.BootState
}

var _ types.BootStateStore = (*memBootStore)(nil)

func (m *memBootStore) Load() (types.BootState, error) { return m.state, nil }
func (m *memBootStore) Save(s types.BootState) error {
	m.state = s
	return nil
}

// simProbe emulates a DS18B20 with a gentle random walk around room
// temperature, including the 85 °C power-on value before the first
// conversion completes.
type simProbe struct {
	temp      float64
	converted bool
}

func newSimProbe() *simProbe {
	return &simProbe{temp: 21.5}
}

func (p *simProbe) Present() bool { return true }

func (p *simProbe) Convert() error {
	p.temp += (rand.Float64() - 0.5) * 0.4
	p.converted = true
	return nil
}

func (p *simProbe) Temperature() (float64, error) {
	if !p.converted {
		return 85.0, nil
	}
	return p.temp, nil
}

// simCombined emulates an AHT20.
type simCombined struct {
	temp, humidity float64
}

func newSimCombined() *simCombined {
	return &simCombined{temp: 21.5, humidity: 48}
}

func (p *simCombined) Init() error { return nil }

func (p *simCombined) ReadEvent() (float64, float64, error) {
	p.temp += (rand.Float64() - 0.5) * 0.4
	p.humidity += (rand.Float64() - 0.5) * 1.5
	return p.temp, p.humidity, nil
}
