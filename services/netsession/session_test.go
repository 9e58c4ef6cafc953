package netsession

import (
	"strings"
	"testing"
	"time"

	"thermonode-go/types"
)

// Compile-time checks.
var (
	_ Radio = (*fakeRadio)(nil)
	_ Clock = (*fakeClock)(nil)
)

type fakeRadio struct {
	connected bool
	stations  []Station
	scanErr   error
	scans     int
	joins     []string
	joinDelay int    // Connected polls to swallow after a join before coming up
	good      string // when set, only this SSID ever completes association
}

func (r *fakeRadio) Connected() bool {
	if r.connected {
		return true
	}
	if len(r.joins) == 0 || r.joinDelay > 0 {
		return false
	}
	if r.good != "" && r.joins[len(r.joins)-1] != r.good {
		return false
	}
	r.connected = true
	return true
}

func (r *fakeRadio) Scan() ([]Station, error) {
	r.scans++
	return r.stations, r.scanErr
}

func (r *fakeRadio) Join(ssid, secret string) error {
	r.joins = append(r.joins, ssid)
	return nil
}

func (r *fakeRadio) SSID() string {
	if len(r.joins) > 0 {
		return r.joins[len(r.joins)-1]
	}
	return ""
}

func (r *fakeRadio) Addr() string { return "192.168.1.23" }

func (r *fakeRadio) Disconnect() error {
	r.connected = false
	return nil
}

type fakeClock struct {
	t        time.Time
	ok       bool
	okAfter  int // Now calls before ok flips true
	synced   []string
	nowCalls int
}

func (c *fakeClock) Now() (time.Time, bool) {
	c.nowCalls++
	if !c.ok && c.okAfter > 0 && c.nowCalls >= c.okAfter {
		c.ok = true
	}
	return c.t, c.ok
}

func (c *fakeClock) StartSync(servers []string) { c.synced = servers }

type memLog struct {
	lines []string
}

func (l *memLog) Message(text string) { l.lines = append(l.lines, text) }

func (l *memLog) contains(sub string) bool {
	for _, line := range l.lines {
		if strings.Contains(line, sub) {
			return true
		}
	}
	return false
}

type fakeStatus struct {
	networkUps int
}

func (s *fakeStatus) NetworkUp() { s.networkUps++ }

// newTestSession wires a session onto a synthetic clock so polling delays
// advance virtual time instead of sleeping.
func newTestSession(radio *fakeRadio, clock *fakeClock, log *memLog, creds []types.Credential) (*Session, *fakeStatus) {
	st := &fakeStatus{}
	s := New(radio, clock, log, st, creds)
	now := time.Unix(0, 0)
	s.now = func() time.Time { return now }
	s.delay = func(d time.Duration) { now = now.Add(d) }
	return s, st
}

func creds(ssids ...string) []types.Credential {
	out := make([]types.Credential, 0, len(ssids))
	for _, s := range ssids {
		out = append(out, types.Credential{SSID: s, Secret: "pw-" + s})
	}
	return out
}

func TestConnectIdempotent(t *testing.T) {
	radio := &fakeRadio{connected: true}
	log := &memLog{}
	s, st := newTestSession(radio, &fakeClock{}, log, creds("home"))

	if !s.Connect(20 * time.Second) {
		t.Fatal("already-associated connect must succeed")
	}
	if radio.scans != 0 || len(radio.joins) != 0 {
		t.Fatal("already-associated connect must not touch the radio")
	}
	if st.networkUps != 0 {
		t.Fatal("no blink when nothing was joined this call")
	}
}

func TestConnectPrefersStrongestKnown(t *testing.T) {
	radio := &fakeRadio{
		joinDelay: 2,
		stations: []Station{
			{SSID: "neighbour", RSSI: -30}, // strongest, but unknown
			{SSID: "home", RSSI: -55},
			{SSID: "garage", RSSI: -80},
		},
	}
	log := &memLog{}
	s, st := newTestSession(radio, &fakeClock{}, log, creds("garage", "home"))
	s.delay = func(d time.Duration) {
		if radio.joinDelay > 0 {
			radio.joinDelay--
		}
	}

	if !s.Connect(20 * time.Second) {
		t.Fatalf("connect failed; log %v", log.lines)
	}
	if radio.joins[0] != "home" {
		t.Fatalf("joined %q first, want strongest known \"home\"", radio.joins[0])
	}
	if !log.contains("WiFi connected to: home (192.168.1.23)") {
		t.Fatalf("missing join log, got %v", log.lines)
	}
	if st.networkUps != 1 {
		t.Fatalf("networkUps = %d, want 1", st.networkUps)
	}
}

func TestConnectFallsBackToNextKnownNetwork(t *testing.T) {
	// The strongest known AP accepts the join but never completes
	// association (wrong secret, AP rejecting); the next one works.
	radio := &fakeRadio{
		good: "garage",
		stations: []Station{
			{SSID: "home", RSSI: -40},
			{SSID: "garage", RSSI: -70},
		},
	}
	log := &memLog{}
	s, st := newTestSession(radio, &fakeClock{}, log, creds("home", "garage"))

	if !s.Connect(20 * time.Second) {
		t.Fatalf("connect failed; log %v", log.lines)
	}
	if len(radio.joins) < 2 || radio.joins[0] != "home" || radio.joins[1] != "garage" {
		t.Fatalf("joins %v, want home tried first, then garage", radio.joins)
	}
	if !log.contains("WiFi connected to: garage (192.168.1.23)") {
		t.Fatalf("missing join log, got %v", log.lines)
	}
	if st.networkUps != 1 {
		t.Fatalf("networkUps = %d, want 1", st.networkUps)
	}
}

func TestConnectTimesOut(t *testing.T) {
	radio := &fakeRadio{
		joinDelay: 1 << 30,
		stations:  []Station{{SSID: "neighbour", RSSI: -30}},
	}
	log := &memLog{}
	s, _ := newTestSession(radio, &fakeClock{}, log, creds("home"))

	if s.Connect(20 * time.Second) {
		t.Fatal("connect succeeded with no known network in range")
	}
	if !log.contains("WiFi connection timed out") {
		t.Fatalf("missing timeout log, got %v", log.lines)
	}
	if radio.scans == 0 {
		t.Fatal("expected the session to keep scanning until the deadline")
	}
}

func TestSyncTimeSuccess(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), okAfter: 3}
	log := &memLog{}
	s, _ := newTestSession(&fakeRadio{}, clock, log, nil)

	state := types.BootState{WakeCount: 1}
	if !s.SyncTime(&state) {
		t.Fatalf("sync failed; log %v", log.lines)
	}
	if !state.TimeSynced {
		t.Fatal("TimeSynced not set after successful sync")
	}
	if !log.contains("Time synced: 2026-01-02T03:04:05") {
		t.Fatalf("missing sync log, got %v", log.lines)
	}
	if len(clock.synced) != 2 || clock.synced[0] != "pool.ntp.org" {
		t.Fatalf("servers %v, want defaults", clock.synced)
	}
}

func TestSyncTimeExhaustsRetries(t *testing.T) {
	clock := &fakeClock{okAfter: 1 << 30}
	log := &memLog{}
	s, _ := newTestSession(&fakeRadio{}, clock, log, nil)

	state := types.BootState{WakeCount: 5, TimeSynced: true}
	if s.SyncTime(&state) {
		t.Fatal("sync claimed success with an unresolvable clock")
	}
	if !state.TimeSynced {
		t.Fatal("failed sync must leave the flag untouched")
	}
	if !log.contains("NTP sync failed") {
		t.Fatalf("missing failure log, got %v", log.lines)
	}
	if clock.nowCalls != 10 {
		t.Fatalf("nowCalls = %d, want 10 bounded attempts", clock.nowCalls)
	}
}

func TestShutdownDropsAssociation(t *testing.T) {
	radio := &fakeRadio{connected: true}
	s, _ := newTestSession(radio, &fakeClock{}, &memLog{}, nil)

	s.Shutdown()
	if radio.connected {
		t.Fatal("radio still associated after shutdown")
	}
}
