// Package telemetry serializes a reading and posts it to the configured
// endpoint. Exactly one attempt per invocation; the deep-sleep interval is
// the retry policy.
package telemetry

import (
	"encoding/json"
	"fmt"
	"strconv"

	"thermonode-go/types"
)

// Poster is the HTTPS transport capability. Implementations carry their own
// bounded request timeout.
type Poster interface {
	Post(url, contentType string, body []byte) (status int, err error)
}

// Logger is the slice of the local log the sender needs.
type Logger interface {
	Message(text string)
}

// payload is the fixed outbound wire shape.
type payload struct {
	Temperature float64  `json:"temperature"`
	Unit        string   `json:"unit"`
	Timestamp   string   `json:"timestamp"`
	Device      string   `json:"device"`
	Humidity    *float64 `json:"humidity,omitempty"`
}

// Sender posts readings for one device to one endpoint.
type Sender struct {
	Poster Poster
	Log    Logger
	URL    string
	Device string
}

// Send posts one reading. Only HTTP 200 counts as success; any other status
// or a transport fault is logged and reported false.
func (s *Sender) Send(r types.Reading, timestamp string) bool {
	p := payload{
		Temperature: r.TempC,
		Unit:        "celsius",
		Timestamp:   timestamp,
		Device:      s.Device,
	}
	if r.HasHumidity() {
		h := r.Humidity
		p.Humidity = &h
	}

	body, err := json.Marshal(p)
	if err != nil {
		s.Log.Message("Server error: " + err.Error())
		return false
	}

	status, err := s.Poster.Post(s.URL, "application/json", body)
	if err != nil {
		s.Log.Message("Server error: " + err.Error())
		return false
	}
	if status != 200 {
		s.Log.Message("Server error: " + strconv.Itoa(status))
		return false
	}

	msg := fmt.Sprintf("Sent %.2f°C", r.TempC)
	if r.HasHumidity() {
		msg += fmt.Sprintf(" / %.1f%% RH", r.Humidity)
	}
	s.Log.Message(msg + " successfully")
	return true
}
