package timex

import "time"

// iso8601 is the timestamp layout used in log lines, CSV rows and the
// outbound payload (seconds resolution, no zone suffix).
const iso8601 = "2006-01-02T15:04:05"

// ISO8601 formats t in the wire/file timestamp layout.
func ISO8601(t time.Time) string { return t.Format(iso8601) }

// NowMs returns Unix milliseconds as int64.
func NowMs() int64 { return time.Now().UnixMilli() }
