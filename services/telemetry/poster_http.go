package telemetry

import (
	"bytes"
	"net/http"
	"time"
)

// HTTPPoster implements Poster on net/http. It is what the host runner wires
// in; MCU builds substitute their network stack's client behind the same
// interface.
type HTTPPoster struct {
	Client *http.Client
}

var _ Poster = (*HTTPPoster)(nil)

// NewHTTPPoster returns a poster whose requests are bounded by timeout.
func NewHTTPPoster(timeout time.Duration) *HTTPPoster {
	return &HTTPPoster{Client: &http.Client{Timeout: timeout}}
}

func (p *HTTPPoster) Post(url, contentType string, body []byte) (int, error) {
	resp, err := p.Client.Post(url, contentType, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}
