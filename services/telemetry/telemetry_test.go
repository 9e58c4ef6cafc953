package telemetry

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"thermonode-go/types"
)

// Compile-time check.
var _ Poster = (*fakePoster)(nil)

type fakePoster struct {
	status int
	err    error

	url, contentType string
	body             []byte
	calls            int
}

func (p *fakePoster) Post(url, contentType string, body []byte) (int, error) {
	p.calls++
	p.url = url
	p.contentType = contentType
	p.body = body
	return p.status, p.err
}

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

func newSender(p *fakePoster, l *memLog) *Sender {
	return &Sender{Poster: p, Log: l, URL: "https://wifitemp.example.com", Device: "node1"}
}

func TestSendSuccess(t *testing.T) {
	poster := &fakePoster{status: 200}
	log := &memLog{}
	s := newSender(poster, log)

	if !s.Send(types.TemperatureOnly(22.56), "2026-01-02T03:04:05") {
		t.Fatal("send reported failure on HTTP 200")
	}
	if poster.calls != 1 {
		t.Fatalf("posts = %d, want exactly 1", poster.calls)
	}
	if poster.url != s.URL || poster.contentType != "application/json" {
		t.Fatalf("posted to %q as %q", poster.url, poster.contentType)
	}
	if !log.contains("Sent 22.56°C successfully") {
		t.Fatalf("missing success log, got %v", log.lines)
	}

	var got map[string]any
	if err := json.Unmarshal(poster.body, &got); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	if got["temperature"] != 22.56 || got["unit"] != "celsius" ||
		got["timestamp"] != "2026-01-02T03:04:05" || got["device"] != "node1" {
		t.Fatalf("payload %v", got)
	}
	if _, ok := got["humidity"]; ok {
		t.Fatal("humidity key present for a temperature-only reading")
	}
}

func TestSendIncludesHumidityWhenPresent(t *testing.T) {
	poster := &fakePoster{status: 200}
	log := &memLog{}
	s := newSender(poster, log)

	if !s.Send(types.Reading{TempC: 22.56, Humidity: 55}, "t1") {
		t.Fatal("send failed")
	}
	var got map[string]any
	if err := json.Unmarshal(poster.body, &got); err != nil {
		t.Fatal(err)
	}
	if got["humidity"] != 55.0 {
		t.Fatalf("humidity %v, want 55", got["humidity"])
	}
	if !log.contains("Sent 22.56°C / 55.0% RH successfully") {
		t.Fatalf("missing success log, got %v", log.lines)
	}
}

func TestSendNon200IsFailure(t *testing.T) {
	for _, status := range []int{201, 204, 302, 404, 500} {
		poster := &fakePoster{status: status}
		log := &memLog{}
		s := newSender(poster, log)

		if s.Send(types.TemperatureOnly(20), "t1") {
			t.Fatalf("status %d treated as success", status)
		}
		if log.contains("successfully") {
			t.Fatalf("status %d: success claimed in log %v", status, log.lines)
		}
		if !log.contains("Server error:") {
			t.Fatalf("status %d: missing server-error log %v", status, log.lines)
		}
	}
}

func TestSendTransportFault(t *testing.T) {
	poster := &fakePoster{err: errors.New("dial tcp: connection refused")}
	log := &memLog{}
	s := newSender(poster, log)

	if s.Send(types.TemperatureOnly(20), "t1") {
		t.Fatal("transport fault treated as success")
	}
	if !log.contains("Server error: dial tcp") {
		t.Fatalf("missing transport-error log, got %v", log.lines)
	}
	if log.contains("successfully") {
		t.Fatalf("success claimed in log %v", log.lines)
	}
}
