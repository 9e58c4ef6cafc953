// Package cycle runs the read-store-send-sleep sequence once per wake. It is
// the only component with branching control flow; everything it touches is a
// capability interface so each transition is testable without hardware.
//
// No error is fatal: every path through the state machine terminates in
// Sleep, which guarantees the device always wakes again.
package cycle

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"thermonode-go/services/sensor"
	"thermonode-go/types"
	"thermonode-go/x/timex"
)

// State names one stop in the fixed per-wake sequence.
type State int

const (
	StateBoot State = iota
	StateStorageInit
	StateSensorInit
	StateNetworkConnect
	StateTimeSync
	StateSensorRead
	StatePersist
	StateSleep
)

func (s State) String() string {
	switch s {
	case StateBoot:
		return "boot"
	case StateStorageInit:
		return "storage_init"
	case StateSensorInit:
		return "sensor_init"
	case StateNetworkConnect:
		return "network_connect"
	case StateTimeSync:
		return "time_sync"
	case StateSensorRead:
		return "sensor_read"
	case StatePersist:
		return "persist"
	case StateSleep:
		return "sleep"
	}
	return "unknown"
}

// Logger is the local log.
type Logger interface {
	Message(text string)
}

// Signaller emits the blink codes the orchestrator owns. The joined-network
// code is emitted inside the network session instead.
type Signaller interface {
	Startup()
	SentOK()
	NetworkError()
	SensorError()
}

// Storage is the mountable store for readings.
type Storage interface {
	Mount() error
	StoreReading(timestamp string, r types.Reading) error
}

// Network is the session capability for one cycle.
type Network interface {
	Connect(timeout time.Duration) bool
	SyncTime(state *types.BootState) bool
	Shutdown()
}

// Sender posts one reading.
type Sender interface {
	Send(r types.Reading, timestamp string) bool
}

// Sleeper arms the wake timer and enters deep sleep. On real hardware
// DeepSleep never returns; the host implementation sleeps and does.
type Sleeper interface {
	DeepSleep(d time.Duration)
}

// Clock supplies wall-clock time for timestamps; ok=false before first sync.
type Clock interface {
	Now() (time.Time, bool)
}

// Config is the per-build timing surface of the orchestrator.
type Config struct {
	// SampleInterval is the deep-sleep duration between wakes.
	SampleInterval time.Duration
	// JoinTimeout bounds the network association attempt.
	JoinTimeout time.Duration
	// ResyncEveryWakes re-runs time sync whenever the wake counter is a
	// multiple of it. Zero disables the cadence (sync on first boot only).
	ResyncEveryWakes int
}

// Orchestrator drives one wake cycle through the fixed state sequence.
// It never runs concurrently with itself: the whole program is the cycle.
type Orchestrator struct {
	State   *types.BootState
	Log     Logger
	Status  Signaller
	Storage Storage
	Sensor  sensor.Reader
	Net     Network
	Send    Sender
	Sleep   Sleeper
	Clock   Clock
	Console io.Writer
	Config  Config

	reading types.Reading
}

// Run executes one full wake cycle, ending in deep sleep.
func (o *Orchestrator) Run(ctx context.Context) {
	for st := StateBoot; st != StateSleep; {
		st = o.step(ctx, st)
	}
	o.stepSleep()
}

func (o *Orchestrator) step(ctx context.Context, st State) State {
	switch st {
	case StateBoot:
		return o.stepBoot()
	case StateStorageInit:
		return o.stepStorageInit()
	case StateSensorInit:
		return o.stepSensorInit(ctx)
	case StateNetworkConnect:
		return o.stepNetworkConnect(ctx)
	case StateTimeSync:
		return o.stepTimeSync()
	case StateSensorRead:
		return o.stepSensorRead(ctx)
	case StatePersist:
		return o.stepPersist()
	}
	return StateSleep
}

func (o *Orchestrator) stepBoot() State {
	o.State.WakeCount++
	o.Status.Startup()

	fmt.Fprintln(o.console(), "\n=============================")
	fmt.Fprintln(o.console(), "  thermonode")
	fmt.Fprintf(o.console(), "  Wake #%d\n", o.State.WakeCount)
	fmt.Fprintln(o.console(), "=============================")
	return StateStorageInit
}

// stepStorageInit mounts the persistent filesystem. A failed mount is
// reported on the console only (the log file lives on that filesystem) and
// the cycle carries on; later file operations are attempted regardless.
func (o *Orchestrator) stepStorageInit() State {
	if err := o.Storage.Mount(); err != nil {
		fmt.Fprintln(o.console(), "storage mount failed:", err)
	}
	return StateSensorInit
}

func (o *Orchestrator) stepSensorInit(ctx context.Context) State {
	if err := o.Sensor.Init(ctx); err != nil {
		o.Log.Message("ERROR: " + err.Error())
		o.Status.SensorError()
		return StateSleep
	}
	return StateNetworkConnect
}

// stepNetworkConnect degrades to local-only storage when no network is
// reachable: the reading is still taken and, if valid, kept on flash.
func (o *Orchestrator) stepNetworkConnect(ctx context.Context) State {
	if o.Net.Connect(o.Config.JoinTimeout) {
		return StateTimeSync
	}

	o.Log.Message("No network - storing reading locally only")
	r := o.Sensor.Read(ctx)
	if r.Valid() {
		_ = o.Storage.StoreReading(o.Timestamp(), r)
		o.Log.Message(fmt.Sprintf("Stored locally: %.2f°C", r.TempC))
	}
	o.Status.NetworkError()
	return StateSleep
}

func (o *Orchestrator) stepTimeSync() State {
	if o.syncDue() {
		o.Net.SyncTime(o.State)
	}
	return StateSensorRead
}

// syncDue amortizes the sync exchange: first boot always, then whenever the
// wake counter hits the configured cadence. The RTC drifts across long
// deep-sleep periods, so a synced flag alone is not enough.
func (o *Orchestrator) syncDue() bool {
	if !o.State.TimeSynced {
		return true
	}
	n := o.Config.ResyncEveryWakes
	return n > 0 && o.State.WakeCount%n == 0
}

func (o *Orchestrator) stepSensorRead(ctx context.Context) State {
	o.reading = o.Sensor.Read(ctx)
	return StatePersist
}

func (o *Orchestrator) stepPersist() State {
	if !o.reading.Valid() {
		o.Status.SensorError()
		return StateSleep
	}

	ts := o.Timestamp()
	fmt.Fprintf(o.console(), "Temperature: %.2f°C / %.2f°F\n",
		o.reading.TempC, o.reading.TempC*9.0/5.0+32.0)
	if o.reading.HasHumidity() {
		fmt.Fprintf(o.console(), "Humidity:    %.1f%%\n", o.reading.Humidity)
	}

	_ = o.Storage.StoreReading(ts, o.reading)

	if o.Send.Send(o.reading, ts) {
		o.Status.SentOK()
	} else {
		o.Status.NetworkError()
	}
	return StateSleep
}

// stepSleep is terminal: console flushed, radio off, wake timer armed.
// Execution does not resume here; the next wake starts a fresh Boot.
func (o *Orchestrator) stepSleep() {
	o.Log.Message(fmt.Sprintf("Sleeping for %ds...", int(o.Config.SampleInterval/time.Second)))
	if f, ok := o.Console.(interface{ Flush() error }); ok {
		_ = f.Flush()
	}
	o.Net.Shutdown()
	o.Sleep.DeepSleep(o.Config.SampleInterval)
}

// Timestamp returns the ISO-8601 wall-clock time, or a wake-counter token
// when time has never been synced.
func (o *Orchestrator) Timestamp() string {
	if t, ok := o.Clock.Now(); ok {
		return timex.ISO8601(t)
	}
	return "boot-" + strconv.Itoa(o.State.WakeCount)
}

func (o *Orchestrator) console() io.Writer {
	if o.Console == nil {
		return io.Discard
	}
	return o.Console
}
