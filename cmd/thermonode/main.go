// Command thermonode runs the wake cycle on a host machine: os-backed
// storage, net/http telemetry, the host's own clock, and a simulated probe.
// Deep sleep becomes a timer sleep, a cold start is a process start, and the
// boot state lives in RAM for the lifetime of the process.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"thermonode-go/services/config"
	"thermonode-go/services/cycle"
	"thermonode-go/services/netsession"
	"thermonode-go/services/sensor"
	"thermonode-go/services/status"
	"thermonode-go/services/store"
	"thermonode-go/services/telemetry"
	"thermonode-go/types"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	clock := &hostClock{}
	fs := &store.OSFS{Root: cfg.DataDir}
	logw := &store.Log{FS: fs, Console: os.Stdout, Clock: clock}
	data := &store.Data{FS: fs, Log: logw, Humidity: cfg.Sensor == config.SensorAHT20}

	sig := status.New(&hostPin{})

	var reader sensor.Reader
	switch cfg.Sensor {
	case config.SensorAHT20:
		reader = sensor.NewCombined(newSimCombined(), logw)
	default:
		reader = sensor.NewOneWire(newSimProbe(), logw)
	}

	session := netsession.New(&hostRadio{networks: cfg.Networks}, clock, logw, sig, cfg.Networks)
	session.Servers = cfg.TimeServers

	sender := &telemetry.Sender{
		Poster: telemetry.NewHTTPPoster(cfg.HTTPTimeout),
		Log:    logw,
		URL:    cfg.ServerURL,
		Device: cfg.Device,
	}

	rtc := &memBootStore{}
	state, _ := rtc.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for ctx.Err() == nil {
		orch := &cycle.Orchestrator{
			State:   &state,
			Log:     logw,
			Status:  sig,
			Storage: &mountedStore{fs: fs, data: data},
			Sensor:  reader,
			Net:     session,
			Send:    sender,
			Sleep:   &hostSleeper{ctx: ctx},
			Clock:   clock,
			Console: os.Stdout,
			Config: cycle.Config{
				SampleInterval:   cfg.SampleInterval,
				JoinTimeout:      cfg.JoinTimeout,
				ResyncEveryWakes: cfg.ResyncEveryWakes,
			},
		}
		orch.Run(ctx)
		_ = rtc.Save(state)
	}

	log.Println("Shutting down...")
}

// mountedStore glues the filesystem and data file into the orchestrator's
// storage capability.
type mountedStore struct {
	fs   *store.OSFS
	data *store.Data
}

func (m *mountedStore) Mount() error { return m.fs.Mount() }
func (m *mountedStore) StoreReading(timestamp string, r types.Reading) error {
	return m.data.StoreReading(timestamp, r)
}
