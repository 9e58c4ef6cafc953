package types

// BootState is the small piece of state that survives deep sleep but not a
// full power loss. On ESP32-class hardware it lives in RTC slow memory; the
// host runner keeps it in RAM for the lifetime of the process.
type BootState struct {
	// WakeCount increments exactly once per wake, at the very start of the
	// cycle. A cold start begins at zero, so the first wake observes 1.
	WakeCount int
	// TimeSynced is set true only after a successful time-sync exchange and
	// is never cleared short of a power loss.
	TimeSynced bool
}

// BootStateStore loads and saves BootState at the process boundaries.
// Implementations decide where the state actually lives (RTC memory,
// process RAM, a scratch file).
type BootStateStore interface {
	Load() (BootState, error)
	Save(BootState) error
}
