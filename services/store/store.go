// Package store owns the durable files: a plain-text log and a CSV data
// file, both append-only on a mountable filesystem capability. Logging is
// deliberately failure-tolerant; a cycle must never die because the flash
// is full or the mount failed.
package store

import (
	"io"
	"strconv"
	"time"

	"thermonode-go/errcode"
	"thermonode-go/types"
	"thermonode-go/x/timex"
)

// Default file names, relative to the filesystem root.
const (
	LogFile  = "thermometer.log"
	DataFile = "temperature_data.csv"
)

const (
	csvHeader         = "timestamp,temperature_celsius,humidity_rh"
	csvHeaderTempOnly = "timestamp,temperature_celsius"
)

// Filesystem is the flash-backed storage capability. Mount is expected to
// auto-format on a first or failed mount, as LittleFS-style filesystems do.
type Filesystem interface {
	Mount() error
	Exists(name string) bool
	OpenAppend(name string) (io.WriteCloser, error)
}

// Clock supplies wall-clock time for log line prefixes. The bool result is
// false until time has been synced at least once.
type Clock interface {
	Now() (time.Time, bool)
}

// Log writes `[timestamp] message` lines to the console and appends them to
// the durable log file. File trouble is swallowed: the console copy is the
// one that must always happen.
type Log struct {
	FS      Filesystem
	Console io.Writer
	Clock   Clock
	Path    string // defaults to LogFile
}

// Message logs one line with the best-available timestamp prefix.
func (l *Log) Message(text string) {
	ts := ""
	if l.Clock != nil {
		if t, ok := l.Clock.Now(); ok {
			ts = timex.ISO8601(t)
		}
	}
	line := "[" + ts + "] " + text + "\n"

	if l.Console != nil {
		_, _ = io.WriteString(l.Console, line)
	}
	if l.FS == nil {
		return
	}
	f, err := l.FS.OpenAppend(l.path())
	if err != nil {
		return
	}
	_, _ = io.WriteString(f, line)
	_ = f.Close()
}

func (l *Log) path() string {
	if l.Path != "" {
		return l.Path
	}
	return LogFile
}

// Data appends CSV rows of readings. The header row is written exactly once,
// when the file does not yet exist.
type Data struct {
	FS   Filesystem
	Log  *Log
	Path string // defaults to DataFile
	// Humidity controls whether the humidity column exists at all. Builds
	// with a temperature-only probe leave it false.
	Humidity bool
}

// StoreReading appends one row. An open failure logs an error and drops the
// row; no recovery is attempted.
func (d *Data) StoreReading(timestamp string, r types.Reading) error {
	name := d.pathName()
	exists := d.FS.Exists(name)

	f, err := d.FS.OpenAppend(name)
	if err != nil {
		if d.Log != nil {
			d.Log.Message("Failed to open data file for writing")
		}
		return &errcode.E{C: errcode.StorageError, Op: "store_reading", Err: err}
	}
	defer f.Close()

	if !exists {
		_, _ = io.WriteString(f, d.header()+"\n")
	}
	_, _ = io.WriteString(f, d.row(timestamp, r)+"\n")
	return nil
}

func (d *Data) header() string {
	if d.Humidity {
		return csvHeader
	}
	return csvHeaderTempOnly
}

func (d *Data) row(timestamp string, r types.Reading) string {
	row := timestamp + "," + strconv.FormatFloat(r.TempC, 'f', 2, 64)
	if d.Humidity {
		row += ","
		if r.HasHumidity() {
			row += strconv.FormatFloat(r.Humidity, 'f', 1, 64)
		}
	}
	return row
}

func (d *Data) pathName() string {
	if d.Path != "" {
		return d.Path
	}
	return DataFile
}
