// Package netsession owns the radio association for a wake cycle. It joins
// the best reachable known network within a bounded window and, when due,
// resyncs wall-clock time against the configured time servers.
//
// Both the radio and the clock are collaborators: association handshakes,
// DNS and the SNTP exchange itself happen behind their interfaces.
package netsession

import (
	"fmt"
	"sort"
	"time"

	"thermonode-go/types"
	"thermonode-go/x/timex"
)

// Station is one visible network from a scan.
type Station struct {
	SSID string
	RSSI int // dBm, more positive is stronger
}

// Radio is the wireless interface capability.
type Radio interface {
	Connected() bool
	// Scan lists currently visible networks. Order is unspecified.
	Scan() ([]Station, error)
	// Join begins association with the given network. It does not block
	// until the handshake finishes; poll Connected for the outcome.
	Join(ssid, secret string) error
	SSID() string
	Addr() string
	Disconnect() error
}

// Clock is the wall-clock capability. Now reports ok=false until a sync has
// completed at least once since power-up.
type Clock interface {
	Now() (time.Time, bool)
	// StartSync begins a time-sync exchange in the background.
	StartSync(servers []string)
}

// Logger is the slice of the local log the session needs.
type Logger interface {
	Message(text string)
}

// Signaller emits the joined-network blink code.
type Signaller interface {
	NetworkUp()
}

// Polling cadence and retry budgets.
const (
	pollInterval = 500 * time.Millisecond
	syncAttempts = 10
	// joinPolls bounds how long one association attempt is given before
	// the session moves on to the next known network.
	joinPolls = 10
)

// DefaultTimeServers are queried when the config names none.
var DefaultTimeServers = []string{"pool.ntp.org", "time.nist.gov"}

// Session drives one radio against a static credential set.
type Session struct {
	Radio    Radio
	Clock    Clock
	Log      Logger
	Status   Signaller
	Networks []types.Credential
	Servers  []string
	// Poll overrides the re-poll cadence (tests shrink it).
	Poll time.Duration

	delay func(time.Duration)
	now   func() time.Time
}

// New creates a session over radio with the given known networks.
func New(radio Radio, clock Clock, log Logger, status Signaller, networks []types.Credential) *Session {
	return &Session{
		Radio:    radio,
		Clock:    clock,
		Log:      log,
		Status:   status,
		Networks: networks,
		delay:    time.Sleep,
		now:      time.Now,
	}
}

// Connect brings the association up within timeout. Already-connected is an
// immediate success, so the call is safe to repeat within a cycle.
//
// Every known network in range gets a turn: candidates are tried strongest
// first, each for a bounded number of polls, and the session keeps cycling
// through them until one associates or the deadline passes.
func (s *Session) Connect(timeout time.Duration) bool {
	if s.Radio.Connected() {
		return true
	}

	s.Log.Message("Connecting to WiFi...")
	deadline := s.now().Add(timeout)

	for s.now().Before(deadline) {
		candidates := s.knownByStrength()
		if len(candidates) == 0 {
			s.delay(s.poll())
			continue
		}
		for _, cred := range candidates {
			if !s.now().Before(deadline) {
				break
			}
			if err := s.Radio.Join(cred.SSID, cred.Secret); err != nil {
				continue
			}
			for i := 0; i < joinPolls && s.now().Before(deadline); i++ {
				if s.Radio.Connected() {
					s.Log.Message(fmt.Sprintf("WiFi connected to: %s (%s)", s.Radio.SSID(), s.Radio.Addr()))
					if s.Status != nil {
						s.Status.NetworkUp()
					}
					return true
				}
				s.delay(s.poll())
			}
		}
	}

	s.Log.Message("WiFi connection timed out")
	return false
}

// SyncTime runs one bounded time-sync exchange. On success the persistent
// flag is set and the synced timestamp logged; on exhaustion the flag is
// left untouched.
func (s *Session) SyncTime(state *types.BootState) bool {
	servers := s.Servers
	if len(servers) == 0 {
		servers = DefaultTimeServers
	}
	s.Clock.StartSync(servers)

	for i := 0; i < syncAttempts; i++ {
		if t, ok := s.Clock.Now(); ok {
			state.TimeSynced = true
			s.Log.Message("Time synced: " + timex.ISO8601(t))
			return true
		}
		s.delay(s.poll())
	}

	s.Log.Message("NTP sync failed")
	return false
}

// Shutdown tears the association down so the radio draws nothing during deep
// sleep. Safe to call when not associated.
func (s *Session) Shutdown() {
	_ = s.Radio.Disconnect()
}

// knownByStrength scans and returns every known credential currently in
// range, ordered by descending RSSI.
func (s *Session) knownByStrength() []types.Credential {
	stations, err := s.Radio.Scan()
	if err != nil || len(stations) == 0 {
		return nil
	}
	sort.Slice(stations, func(i, j int) bool { return stations[i].RSSI > stations[j].RSSI })

	var out []types.Credential
	seen := make(map[string]bool)
	for _, st := range stations {
		for _, cred := range s.Networks {
			if cred.SSID == st.SSID && !seen[st.SSID] {
				seen[st.SSID] = true
				out = append(out, cred)
			}
		}
	}
	return out
}

func (s *Session) poll() time.Duration {
	if s.Poll > 0 {
		return s.Poll
	}
	return pollInterval
}
